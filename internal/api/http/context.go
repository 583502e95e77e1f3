package http

import (
	"context"
	"net/http"
	"strconv"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/security"

	"github.com/gorilla/mux"
)

type contextKey string

const claimsKey contextKey = "claims"

func withClaims(ctx context.Context, claims *security.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func claimsFrom(r *http.Request) *security.UserClaims {
	claims, _ := r.Context().Value(claimsKey).(*security.UserClaims)
	return claims
}

// actorID returns the authenticated actor. The auth middleware guarantees
// the claims are present on every protected route.
func actorID(r *http.Request) int64 {
	if claims := claimsFrom(r); claims != nil {
		return claims.UserID
	}
	return 0
}

func isAdmin(r *http.Request) bool {
	claims := claimsFrom(r)
	return claims != nil && claims.HasRole("admin")
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func queryInt32(r *http.Request, name string, def int32) int32 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return def
	}
	return int32(n)
}

func pagination(r *http.Request) (page, pageSize int32) {
	page = queryInt32(r, "page", 1)
	pageSize = queryInt32(r, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
