package auth

import "context"

type authorizedContextKey struct{}

// ContextWithAuthorized attaches the per-request authorization statement to
// the context.
func ContextWithAuthorized(ctx context.Context, authorized Authorized) context.Context {
	return context.WithValue(ctx, authorizedContextKey{}, &authorized)
}

// AuthorizedFromContext extracts the authorization statement placed by the
// web layer's authorize middleware.
func AuthorizedFromContext(ctx context.Context) (Authorized, bool) {
	if ctx == nil {
		return Authorized{}, false
	}
	v, ok := ctx.Value(authorizedContextKey{}).(*Authorized)
	if !ok || v == nil {
		return Authorized{}, false
	}
	return *v, true
}
