// Package identity derives the (user_id, session_id) partition key pair for
// one tool call. Rows in shared tables are scoped to a user by convention:
// every user-scoped table carries a user_id column and statements reference
// :user_id, which the parameter binder fills in from this identity.
package identity

import (
	"context"
	"os"

	"github.com/nourish-labs/mealplan-mcp/config"
)

type Identity struct {
	UserID    string
	SessionID string
}

type ctxKey struct{}

// WithIdentity attaches a caller-supplied identity to the context. The
// embedding runtime sets this once per session; tool handlers pick it up
// via Resolve.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by WithIdentity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Resolve derives the identity for one call. The user id resolves
// context value first, then the configured environment override, then the
// fixed fallback; it is never empty. The session id follows the same order
// but may stay empty.
func Resolve(ctx context.Context, cfg config.IdentityConfig) Identity {
	id, _ := FromContext(ctx)

	if id.UserID == "" {
		id.UserID = os.Getenv(cfg.UserEnv)
	}
	if id.UserID == "" {
		id.UserID = cfg.FallbackUser
	}
	if id.UserID == "" {
		id.UserID = "user"
	}

	if id.SessionID == "" {
		id.SessionID = os.Getenv(cfg.SessionEnv)
	}

	return id
}
