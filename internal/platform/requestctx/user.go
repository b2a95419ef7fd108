// Package requestctx carries per-request identity through context.
package requestctx

import (
	"context"
	"strings"
)

type userIDContextKey struct{}

// WithUserID stores the authenticated identity in context. Blank identities
// are not stored.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the identity stored in context, or "".
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userIDContextKey{}).(string)
	return value
}
