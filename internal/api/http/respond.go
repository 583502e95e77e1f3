package http

import (
	"encoding/json"
	"net/http"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses. Internal causes
// are logged with detail and surfaced as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict, apperr.KindState:
		status = http.StatusConflict
	case apperr.KindNoEarnings:
		status = http.StatusUnprocessableEntity
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Code: string(kind), Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return false
	}
	return true
}
