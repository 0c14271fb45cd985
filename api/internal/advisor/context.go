package advisor

import "context"

type contextKey string

const contextKeyRequestID contextKey = "requestID"

// WithRequestID tags ctx so log lines and history rows can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
