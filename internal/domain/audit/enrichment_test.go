package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
)

func TestResolveActorID(t *testing.T) {
	userID := id.New()
	explicit := id.New()
	authed := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID.String(), Email: "c@shop.test"})

	got, ok := ResolveActorID(authed, &explicit)
	assert.True(t, ok)
	assert.Equal(t, explicit, got)

	got, ok = ResolveActorID(authed, nil)
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = ResolveActorID(context.Background(), nil)
	assert.False(t, ok)
}

func TestActorFromContext(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u1", Email: "a@shop.test"})

	assert.Equal(t, Actor{UserID: "u1", Email: "a@shop.test"}, ActorFromContext(ctx))
	assert.Equal(t, Actor{}, ActorFromContext(context.Background()))
}
