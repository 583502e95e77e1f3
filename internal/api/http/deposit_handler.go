package http

import (
	"net/http"

	"gearshare-backend/internal/service"
)

type DepositHandler struct {
	depositSvc service.DepositService
}

func NewDepositHandler(depositSvc service.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

func (h *DepositHandler) Charge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		AmountCents int64  `json:"amount_cents"`
		Reason      string `json:"reason"`
		Notes       string `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	tx, err := h.depositSvc.Charge(r.Context(), actorID(r), id, body.AmountCents, body.Reason, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *DepositHandler) Release(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.depositSvc.Release(r.Context(), actorID(r), id, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *DepositHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := h.depositSvc.Transactions(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *DepositHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	agg, err := h.depositSvc.Aggregate(r.Context(), actorID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
