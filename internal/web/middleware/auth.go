package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/controltower/internal/core"
)

// APIKeyAuth guards operator endpoints such as /metrics with the X-API-Key
// header. With required false every request passes. With required true and
// no keys configured every request is rejected.
func APIKeyAuth(required bool, keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				slog.Warn("auth: missing API key", "path", r.URL.Path, "ip", ClientIP(r))
				denyJSON(w, http.StatusUnauthorized, "missing API key", "AUTH_MISSING_KEY")
				return
			}
			if !validAPIKey(key, keys) {
				slog.Warn("auth: invalid API key", "path", r.URL.Path, "ip", ClientIP(r))
				denyJSON(w, http.StatusForbidden, "invalid API key", "AUTH_INVALID_KEY")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validAPIKey compares against every configured key in constant time.
func validAPIKey(key string, keys []string) bool {
	valid := 0
	for _, k := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}

// SessionCookie is the name of the login session cookie.
const SessionCookie = "ct_session"

// SessionToken extracts the session token from the Authorization bearer
// header or, failing that, the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticator resolves a session token. *core.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (core.Principal, error)
}

// Session loads the caller's principal into the request context.
//
// With required true a request without a valid session is rejected with
// 401. With required false (legacy mode) anonymous requests pass through
// and the customer view comes from the query string. A token that is
// present but invalid is rejected in both modes.
func Session(a Authenticator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				if required {
					denyJSON(w, http.StatusUnauthorized, "Authentication required", "AUTH005")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if core.KindOf(err) == core.KindUnauthorized {
					denyJSON(w, http.StatusUnauthorized, err.Error(), "AUTH005")
					return
				}
				slog.Error("session lookup failed", "error", err)
				denyJSON(w, http.StatusInternalServerError, "An unexpected error occurred", "ERR000")
				return
			}

			PublishPrincipal(r, p)
			ctx := core.ContextWithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers that are not signed in as ADMIN.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := core.PrincipalFromContext(r.Context())
		if !ok {
			denyJSON(w, http.StatusUnauthorized, "Authentication required", "AUTH005")
			return
		}
		if !p.IsAdmin() {
			denyJSON(w, http.StatusForbidden, "Admin access is not allowed for this account", "AUTH006")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func denyJSON(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
