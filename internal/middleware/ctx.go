package middleware

import "context"

type ctxKey string

const (
	ContextUserID    ctxKey = "user_id"
	ContextRole      ctxKey = "role"
	ContextRequestID ctxKey = "request_id"

	// Флаг для админов — пропускать все проверки доступа.
	ContextSkipGuards ctxKey = "skip_guards"
)

func WithSkipGuards(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextSkipGuards, true)
}

func SkipGuards(ctx context.Context) bool {
	v := ctx.Value(ContextSkipGuards)
	b, _ := v.(bool)
	return b
}
