package middleware

import (
	"context"

	"github.com/JonMunkholm/controltower/internal/core"
)

type holderKey struct{}

// principalHolder carries the principal from the session middleware back
// out to Logger, which wraps it.
type principalHolder struct {
	p   core.Principal
	set bool
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}
