package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext_HasPermission(t *testing.T) {
	var nobody *UserContext
	cashier := &UserContext{Role: "cashier", Permissions: []string{"bill:create"}}
	admin := &UserContext{Role: "admin", IsAdmin: true}

	assert.False(t, nobody.HasPermission("bill:create"))
	assert.True(t, cashier.HasPermission("bill:create"))
	assert.False(t, cashier.HasPermission("bill:delete"))
	assert.True(t, admin.HasPermission("bill:delete"))
}

func TestAsSystem(t *testing.T) {
	ctx := AsSystem(context.Background())

	assert.Equal(t, SystemUserID, GetUserID(ctx))
	assert.True(t, IsAdmin(ctx))
	assert.Empty(t, GetRole(context.Background()))
}

func TestStartTrace(t *testing.T) {
	ctx := StartTrace(context.Background(), OriginSeed)

	tc := GetTrace(ctx)
	if assert.NotNil(t, tc) {
		assert.Equal(t, OriginSeed, tc.Origin)
		assert.Equal(t, tc.TraceID, RequestID(ctx))
	}
	assert.Empty(t, RequestID(context.Background()))
}
