package internal

import (
	"context"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
)

type ctxKey string

const (
	ContextUserKey      ctxKey = "userID"
	ContextPrincipalKey ctxKey = "principal"
	ContextSessionKey   ctxKey = "sessionID"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// ContextWithPrincipal stores the principal loaded for this request. The user
// id is stored alongside for log correlation.
func ContextWithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	ctx = context.WithValue(ctx, ContextPrincipalKey, p)
	if p != nil {
		ctx = ContextWithUserID(ctx, p.ID)
	}
	return ctx
}

func PrincipalFromContext(ctx context.Context) (*access.Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*access.Principal)
	return p, ok && p != nil
}

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextSessionKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sid, ok := ctx.Value(ContextSessionKey).(string); ok {
		return sid
	}
	return ""
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
