package http

import (
	"context"
	"net/http"

	"gearshare-backend/internal/service"
)

type PayoutHandler struct {
	payoutSvc service.PayoutService
}

func NewPayoutHandler(payoutSvc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

func (h *PayoutHandler) PendingEarnings(w http.ResponseWriter, r *http.Request) {
	total, count, err := h.payoutSvc.PendingEarnings(r.Context(), actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_cents":  total,
		"rental_count": count,
	})
}

func (h *PayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := h.payoutSvc.CreatePayout(r.Context(), actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.payoutSvc.Get(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	payouts, total, err := h.payoutSvc.List(r.Context(), actorID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts, "total": total})
}

// MarkProcessing, MarkPaid and MarkFailed are the payment collaborator's
// callbacks, admin-gated in the router.
func (h *PayoutHandler) MarkProcessing(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.payoutSvc.MarkProcessing)
}

func (h *PayoutHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.payoutSvc.MarkPaid)
}

func (h *PayoutHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.payoutSvc.MarkFailed)
}

func (h *PayoutHandler) mark(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, payoutID int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := op(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
