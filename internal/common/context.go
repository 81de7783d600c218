package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyTelegramID contextKey = "telegram_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithTelegramID adds the caller's telegram id to the context
func WithTelegramID(ctx context.Context, telegramID int64) context.Context {
	return context.WithValue(ctx, ContextKeyTelegramID, telegramID)
}

// TelegramIDFromContext extracts the caller's telegram id from context
func TelegramIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ContextKeyTelegramID).(int64)
	return id, ok
}
