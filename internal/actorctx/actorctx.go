// Package actorctx carries the acting identity through context.Context so
// services and log handlers below the HTTP layer can see who is calling.
package actorctx

import "context"

type ctxKey string

const (
	keyIdentityID ctxKey = "identity_id"
	keyRole       ctxKey = "role"
	keyRequestID  ctxKey = "request_id"
)

func WithIdentity(ctx context.Context, identityID, role string) context.Context {
	ctx = context.WithValue(ctx, keyIdentityID, identityID)
	return context.WithValue(ctx, keyRole, role)
}

func IdentityIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyIdentityID).(string)

	return v, ok && v != ""
}

func RoleFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRole).(string)

	return v, ok && v != ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)

	return v, ok && v != ""
}
