package auth

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx/txtest"
)

type memUsers struct {
	users  []*User
	logins map[id.ID]int
}

func newMemUsers() *memUsers { return &memUsers{logins: make(map[id.ID]int)} }

func (r *memUsers) Create(_ context.Context, u *User) error {
	for _, other := range r.users {
		if other.Email == u.Email {
			return apperror.NewDuplicate("user", "email", u.Email)
		}
	}
	r.users = append(r.users, u)
	return nil
}

func (r *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("record", "")
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("record", "")
}

func (r *memUsers) List(_ context.Context, f UserFilter) ([]*User, error) {
	out := slices.Clone(r.users)
	slices.SortFunc(out, func(a, b *User) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memUsers) Count(context.Context) (int64, error) { return int64(len(r.users)), nil }

func (r *memUsers) SetActive(ctx context.Context, userID id.ID, active bool) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}

func (r *memUsers) RecordLogin(_ context.Context, userID id.ID) error {
	r.logins[userID]++
	return nil
}

func newTestService() (*Service, *memUsers) {
	repo := newMemUsers()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, &txtest.Manager{}, jwtSvc, ServiceConfig{PasswordMinLength: 6, BcryptCost: bcrypt.MinCost}), repo
}

func asUser(u *User) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:  u.ID.String(),
		Email:   u.Email,
		Role:    string(u.Role),
		IsAdmin: u.IsAdmin(),
	})
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	svc, _ := newTestService()

	admin, err := svc.Register(context.Background(), RegisterRequest{Name: "Owner", Email: " Owner@Shop.test ", Password: "secret1", Role: "cashier"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Equal(t, "owner@shop.test", admin.Email)
	assert.NotEqual(t, "secret1", admin.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Anon", Email: "anon@shop.test", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	cashier, err := svc.Register(asUser(admin), RegisterRequest{Name: "Till 1", Email: "till1@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, cashier.Role)

	_, err = svc.Register(asUser(admin), RegisterRequest{Name: "Dup", Email: "till1@shop.test", Password: "secret1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestRegister_Validation(t *testing.T) {
	svc, repo := newTestService()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Email: "a@b.test", Password: "secret1"}},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.test", Password: "123"}},
		{"bad role", RegisterRequest{Name: "A", Email: "a@b.test", Password: "secret1", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	assert.Empty(t, repo.users)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService()
	admin, err := svc.Register(context.Background(), RegisterRequest{Name: "Owner", Email: "owner@shop.test", Password: "secret1"})
	require.NoError(t, err)

	tokens, user, err := svc.Login(context.Background(), Credentials{Email: "OWNER@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tokens.ExpiresAt, time.Minute)
	assert.Equal(t, 1, repo.logins[admin.ID])

	uc, err := svc.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), uc.UserID)
	assert.True(t, uc.IsAdmin)
	assert.True(t, uc.HasPermission(PermUserManage))

	_, _, err = svc.Login(context.Background(), Credentials{Email: "owner@shop.test", Password: "wrong!!"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, _, err = svc.Login(context.Background(), Credentials{Email: "nobody@shop.test", Password: "secret1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestLogin_DisabledUser(t *testing.T) {
	svc, _ := newTestService()
	admin, err := svc.Register(context.Background(), RegisterRequest{Name: "Owner", Email: "owner@shop.test", Password: "secret1"})
	require.NoError(t, err)
	cashier, err := svc.Register(asUser(admin), RegisterRequest{Name: "Till", Email: "till@shop.test", Password: "secret1"})
	require.NoError(t, err)

	updated, err := svc.SetActive(asUser(admin), cashier.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, _, err = svc.Login(context.Background(), Credentials{Email: "till@shop.test", Password: "secret1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestSetActive_CannotDeactivateSelf(t *testing.T) {
	svc, _ := newTestService()
	admin, err := svc.Register(context.Background(), RegisterRequest{Name: "Owner", Email: "owner@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.SetActive(asUser(admin), admin.ID, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	_, err = svc.SetActive(asUser(admin), id.New(), true)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMe(t *testing.T) {
	svc, _ := newTestService()
	admin, err := svc.Register(context.Background(), RegisterRequest{Name: "Owner", Email: "owner@shop.test", Password: "secret1"})
	require.NoError(t, err)

	me, err := svc.Me(asUser(admin))
	require.NoError(t, err)
	assert.Equal(t, "Owner", me.Name)

	_, err = svc.Me(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
