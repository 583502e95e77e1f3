package http

import (
	"context"
	"net/http"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRentalInput
	if !decodeBody(w, r, &in) {
		return
	}

	rt, err := h.rentalSvc.Create(r.Context(), actorID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *RentalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Approve)
}

func (h *RentalHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Decline)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Cancel)
}

func (h *RentalHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, rentalID int64) (*domain.RentalRequest, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	rt, err := op(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.rentalSvc.Get(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rentals, total, err := h.rentalSvc.ListRentals(r.Context(), actorID(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals, "total": total})
}

func (h *RentalHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rentals, total, err := h.rentalSvc.ListLendings(r.Context(), actorID(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals, "total": total})
}

func (h *RentalHandler) ReservedRanges(w http.ResponseWriter, r *http.Request) {
	gearID, err := pathID(r, "gearId")
	if err != nil {
		writeError(w, err)
		return
	}

	ranges, err := h.rentalSvc.ReservedRanges(r.Context(), gearID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reserved": ranges})
}

func (h *RentalHandler) Availability(w http.ResponseWriter, r *http.Request) {
	gearID, err := pathID(r, "gearId")
	if err != nil {
		writeError(w, err)
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, apperr.Validation("start must be an RFC 3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, apperr.Validation("end must be an RFC 3339 timestamp"))
		return
	}

	available, err := h.rentalSvc.CheckAvailability(r.Context(), gearID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}
