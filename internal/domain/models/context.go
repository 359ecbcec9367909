package models

import "context"

type claimsCtxKey struct{}

// WithClaims stores validated token claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns claims set by the auth middleware, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsCtxKey{}).(*Claims)
	return claims
}
