// internal/reqctx/reqctx.go
package reqctx

import "context"

type key int

const (
	keyRequestID key = iota
	keyAuth
)

// AuthContext: личность текущего запроса. Кладётся в контекст один раз, на входе.
type AuthContext struct {
	UserID string
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, keyAuth, auth)
}

func GetAuth(ctx context.Context) (AuthContext, bool) {
	v, ok := ctx.Value(keyAuth).(AuthContext)
	if !ok || v.UserID == "" {
		return AuthContext{}, false
	}
	return v, true
}

func GetUserID(ctx context.Context) (string, bool) {
	a, ok := GetAuth(ctx)
	return a.UserID, ok
}
