package http

import (
	"net/http"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/service"
)

type ReturnHandler struct {
	returnSvc service.ReturnService
}

func NewReturnHandler(returnSvc service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnSvc: returnSvc}
}

func (h *ReturnHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ProposedAt time.Time `json:"proposed_at"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.Schedule(r.Context(), actorID(r), id, body.ProposedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) ConfirmMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	rt, err := h.returnSvc.ConfirmMeeting(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) RequestDifferentTime(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	rt, err := h.returnSvc.RequestDifferentTime(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) MarkReadyForPickup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.MarkReadyForPickup(r.Context(), actorID(r), id, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Notes     string   `json:"notes"`
		HasDamage bool     `json:"has_damage"`
		Photos    []string `json:"photos"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.SubmitInspection(r.Context(), actorID(r), id, body.Notes, body.HasDamage, body.Photos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		HasDamage   bool     `json:"has_damage"`
		Description string   `json:"description"`
		Photos      []string `json:"photos"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.ConfirmReceipt(r.Context(), actorID(r), id, body.HasDamage, body.Description, body.Photos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Description string   `json:"description"`
		Photos      []string `json:"photos"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.OpenDispute(r.Context(), actorID(r), id, body.Description, body.Photos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ChargeCents int64  `json:"charge_cents"`
		Notes       string `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rt, err := h.returnSvc.ResolveDispute(r.Context(), actorID(r), id, body.ChargeCents, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *ReturnHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Rating int32  `json:"rating"`
		Review string `json:"review"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Rating == 0 {
		writeError(w, apperr.Validation("rating is required"))
		return
	}

	rv, err := h.returnSvc.Rate(r.Context(), actorID(r), id, body.Rating, body.Review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}
