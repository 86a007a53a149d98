package domain

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID stores the authenticated caller in the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated caller, or "" when there is none
func GetUserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
