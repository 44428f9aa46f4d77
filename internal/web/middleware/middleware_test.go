package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/controltower/internal/core"
)

func echoRemote(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(ClientIP(r)))
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted peer keeps address", nil, "203.0.113.9:5000",
			map[string]string{"X-Real-IP": "198.51.100.1"}, "203.0.113.9"},
		{"trusted prefix uses X-Real-IP", []string{"10.0.0.0/8"}, "10.1.2.3:5000",
			map[string]string{"X-Real-IP": "198.51.100.1"}, "198.51.100.1"},
		{"trusted host uses first forwarded", []string{"10.1.2.3"}, "10.1.2.3:5000",
			map[string]string{"X-Forwarded-For": "198.51.100.7, 10.9.9.9"}, "198.51.100.7"},
		{"trusted without headers", []string{"10.0.0.0/8"}, "10.1.2.3:5000", nil, "10.1.2.3"},
		{"garbage header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:5000",
			map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3"},
		{"invalid trusted entries skipped", []string{"bogus", " "}, "10.1.2.3:5000",
			map[string]string{"X-Real-IP": "198.51.100.1"}, "10.1.2.3"},
		{"ipv6 proxy", []string{"fd00::/8"}, "[fd00::1]:443",
			map[string]string{"X-Real-IP": "2001:db8::5"}, "2001:db8::5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			TrustedRealIP(tt.trusted)(http.HandlerFunc(echoRemote)).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name     string
		required bool
		keys     []string
		key      string
		want     int
	}{
		{"not required", false, nil, "", http.StatusNoContent},
		{"missing", true, []string{"k1"}, "", http.StatusUnauthorized},
		{"wrong", true, []string{"k1"}, "k2", http.StatusForbidden},
		{"valid second key", true, []string{"k1", "k2"}, "k2", http.StatusNoContent},
		{"no keys configured", true, nil, "k1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(tt.required, tt.keys)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SessionToken(req))

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", SessionToken(req))

	req.Header.Set("Authorization", "bearer from-header")
	assert.Equal(t, "from-header", SessionToken(req))
}

type fakeAuth map[string]core.Principal

func (f fakeAuth) Authenticate(_ context.Context, token string) (core.Principal, error) {
	if token == "boom" {
		return core.Principal{}, errors.New("store down")
	}
	p, ok := f[token]
	if !ok {
		return core.Principal{}, core.Errorf(core.KindUnauthorized, "Session expired, authentication required")
	}
	return p, nil
}

func TestSession(t *testing.T) {
	sessions := fakeAuth{
		"admin": {UserID: 1, Email: "admin@tower.test", Role: core.RoleAdmin},
		"emp":   {UserID: 2, Email: "emp@tower.test", Role: core.RoleEmployee},
	}
	whoami := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := core.PrincipalFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(p.Email))
	})

	tests := []struct {
		name     string
		required bool
		admin    bool
		token    string
		code     int
		body     string
	}{
		{"anonymous allowed", false, false, "", http.StatusOK, "anonymous"},
		{"anonymous rejected", true, false, "", http.StatusUnauthorized, ""},
		{"bad token rejected in legacy mode", false, false, "nope", http.StatusUnauthorized, ""},
		{"store failure", true, false, "boom", http.StatusInternalServerError, ""},
		{"valid session", true, false, "emp", http.StatusOK, "emp@tower.test"},
		{"admin route as employee", true, true, "emp", http.StatusForbidden, ""},
		{"admin route as admin", true, true, "admin", http.StatusOK, "admin@tower.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h http.Handler = whoami
			if tt.admin {
				h = RequireAdmin(h)
			}
			h = Session(sessions, tt.required)(h)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit("test", 0)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitCountsPerClient(t *testing.T) {
	h := RateLimit("test", 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1:2000"))
	assert.Equal(t, http.StatusOK, call("192.0.2.2:1000"))
}

func TestLoggerPassesStatusThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		PublishPrincipal(r, core.Principal{Email: "emp@tower.test"})
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
