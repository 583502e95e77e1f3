package http

import (
	"net/http"

	"gearshare-backend/internal/service"
)

type ExtensionHandler struct {
	extensionSvc service.ExtensionService
}

func NewExtensionHandler(extensionSvc service.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{extensionSvc: extensionSvc}
}

func (h *ExtensionHandler) Request(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		AdditionalDays int32  `json:"additional_days"`
		Notes          string `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ext, err := h.extensionSvc.Request(r.Context(), actorID(r), rentalID, body.AdditionalDays, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ext)
}

func (h *ExtensionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	ext, err := h.extensionSvc.Approve(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

func (h *ExtensionHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	ext, err := h.extensionSvc.Reject(r.Context(), actorID(r), id, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

func (h *ExtensionHandler) ListByRental(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	exts, err := h.extensionSvc.ListByRental(r.Context(), actorID(r), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"extensions": exts})
}
