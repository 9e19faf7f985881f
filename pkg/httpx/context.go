package httpx

import (
	"context"

	"github.com/fieldops/salesreport/pkg/jwtx"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
)

// ContextWithIdentity returns a context carrying the verified identity.
// The pipeline and RequireAuth use this instead of mutating the request.
func ContextWithIdentity(ctx context.Context, id jwtx.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the verified identity attached by the
// authentication middleware, if any.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(jwtx.Identity)
	return id, ok
}
