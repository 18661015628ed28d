package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Identity is the authenticated caller as asserted by the identity provider
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// ErrNoIdentity is returned when the context carries no identity
var ErrNoIdentity = goerr.New("no identity in context")

type ctxIdentityKey struct{}

// ContextWithIdentity stores id in ctx
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

// IdentityFromContext returns the identity stored by ContextWithIdentity
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(ctxIdentityKey{}).(*Identity)
	if !ok || id == nil || id.Subject == "" {
		return nil, ErrNoIdentity
	}
	return id, nil
}
