package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const ctxUserID ctxKey = "userID"

// WithUser returns a context carrying the authenticated account.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxUserID).(int64)
	return id, ok && id > 0
}

// Middleware rejects requests without a valid session. The token is read
// from a bearer Authorization header first, then from the session cookie.
func Middleware(issuer *Issuer, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				unauthorized(w, "missing session")
				return
			}
			claims, err := issuer.Parse(token)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID)))
		})
	}
}

// Optional attaches the account when the request carries a valid session and
// lets every request through.
func Optional(issuer *Issuer, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r, cookieName); token != "" {
				if claims, err := issuer.Parse(token); err == nil {
					r = r.WithContext(WithUser(r.Context(), claims.UserID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
			return strings.TrimSpace(header[len("bearer "):])
		}
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
