package middleware

import "context"

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxShopperID contextKey = "shopper_id"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func ShopperIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShopperID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the browsing session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithShopperID injects the authenticated shopper identifier into the context.
func WithShopperID(ctx context.Context, shopperID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopperID, shopperID)
}
