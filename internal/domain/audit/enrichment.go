package audit

import (
	"context"

	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
)

// Actor identifies who performed an operation.
type Actor struct {
	UserID string
	Email  string
}

// ActorFromContext returns the authenticated user from ctx, or an empty Actor
// for background jobs.
func ActorFromContext(ctx context.Context) Actor {
	u := appctx.GetUser(ctx)
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.UserID, Email: u.Email}
}

// ResolveActorID returns explicit when set, otherwise the authenticated
// user's id. ok is false when neither is available.
func ResolveActorID(ctx context.Context, explicit *id.ID) (id.ID, bool) {
	if explicit != nil && !id.IsNil(*explicit) {
		return *explicit, true
	}
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return id.Nil(), false
	}
	parsed, err := id.Parse(userID)
	if err != nil {
		return id.Nil(), false
	}
	return parsed, true
}
