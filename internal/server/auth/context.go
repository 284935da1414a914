package auth

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const claimsContextKey contextKey = "authgate/auth:claims"

// WithClaims stores validated claims in ctx.
// Claims are shared and must not be modified by downstream handlers.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims retrieves validated claims from ctx.
// Returns nil, false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UsernameFromContext returns the authenticated username, or "" when the
// request was not authenticated.
func UsernameFromContext(ctx context.Context) string {
	if claims, ok := GetClaims(ctx); ok {
		return claims.Subject
	}
	return ""
}

const requestIDContextKey contextKey = "authgate/auth:request_id"

// maxRequestIDLen bounds a client-supplied correlation id.
const maxRequestIDLen = 128

// RequestIDOrNew returns id if it is 1 to 128 printable, non-space ASCII
// characters, and a fresh UUID otherwise.
func RequestIDOrNew(id string) string {
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.New().String()
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return uuid.New().String()
		}
	}
	return id
}

// WithRequestID stores the correlation id of the current request in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the correlation id, or "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
