package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
)

// Till clocks drift; tokens are accepted this far past their expiry.
const clockLeeway = 30 * time.Second

type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration // a shift is the natural session length
}

func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{Secret: secret, Issuer: "shoppos", AccessTokenTTL: 24 * time.Hour}
}

// Claims carry the role, not the permission list: permissions are looked up
// from the role on every request, so changing a role's grants takes effect
// without a new login.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// JWTService issues and checks HS256 access tokens.
type JWTService struct {
	cfg    JWTConfig
	key    []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	s := &JWTService{cfg: cfg, key: []byte(cfg.Secret), now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// GenerateAccessToken signs a token for user and returns its expiry.
func (s *JWTService) GenerateAccessToken(user *User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken verifies raw and resolves the caller. Tokens naming an
// unknown role are rejected.
func (s *JWTService) ValidateToken(raw string) (*appctx.UserContext, error) {
	var claims Claims
	if _, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if _, known := rolePermissions[claims.Role]; !known {
		return nil, fmt.Errorf("token role %q is not known", claims.Role)
	}
	return &appctx.UserContext{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        string(claims.Role),
		Permissions: claims.Role.Permissions(),
		IsAdmin:     claims.Role == RoleAdmin,
	}, nil
}
