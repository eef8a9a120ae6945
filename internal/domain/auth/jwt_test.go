package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))
	user := NewUser("Till", "till@shop.test", "x", RoleCashier)

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, "cashier", uc.Role)
	assert.False(t, uc.IsAdmin)
	assert.True(t, uc.HasPermission(PermBillCreate))
	assert.False(t, uc.HasPermission(PermBillDelete))
}

func TestJWT_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))
	user := NewUser("Till", "till@shop.test", "x", RoleCashier)
	token, _, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("different"))
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	expired := NewJWTService(DefaultJWTConfig("s3cret"))
	expired.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.Error(t, err, "expired")

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestRolePermissions(t *testing.T) {
	assert.ElementsMatch(t, AllPermissions, RoleAdmin.Permissions())
	assert.True(t, RoleCashier.Can(PermStockRead))
	assert.False(t, RoleCashier.Can(PermStockAdjust))
	assert.False(t, RoleCashier.Can(PermUserManage))
	assert.False(t, Role("ghost").Can(PermBillRead))

	perms := RoleCashier.Permissions()
	perms[0] = "mutated"
	assert.True(t, RoleCashier.Can(PermBillCreate), "Permissions returns a copy")
}

func TestJWT_RejectsUnknownRoleAndAlg(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))

	ghost := NewUser("Ghost", "ghost@shop.test", "x", Role("owner"))
	token, _, err := svc.GenerateAccessToken(ghost)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorContains(t, err, "owner")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1", "iss": "shoppos", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err, "alg none")
}

func TestJWT_LeewayCoversClockDrift(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))
	token, exp, err := svc.GenerateAccessToken(NewUser("Till", "till@shop.test", "x", RoleCashier))
	require.NoError(t, err)

	svc.now = func() time.Time { return exp.Add(10 * time.Second) }
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)
}
