package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for
// ingestion history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// principal returns the signed-in caller, or nil in legacy mode.
func principal(r *http.Request) *core.Principal {
	if p, ok := core.PrincipalFromContext(r.Context()); ok {
		return &p
	}
	return nil
}

// viewFor derives the request's customer view from the session and the
// customerName parameter. FormValue covers both the query string and
// multipart upload fields.
func viewFor(r *http.Request) (core.View, error) {
	return core.ViewFor(principal(r), r.FormValue("customerName"))
}

// actor is the email recorded as the author of a change.
func actor(r *http.Request) string {
	if p := principal(r); p != nil {
		return p.Email
	}
	return ""
}
