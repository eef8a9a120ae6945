package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx"
	"shoppos/internal/domain"
	"shoppos/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides authentication and user management.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService, config ServiceConfig) *Service {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = DefaultServiceConfig().PasswordMinLength
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Register creates a user. While no user exists anyone may register and the
// first account is always an admin; afterwards only admins may register users.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req = req.Normalize()
	if err := req.Validate(s.config.PasswordMinLength); err != nil {
		return nil, err
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *User
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count == 0 {
			role = RoleAdmin
		} else if !appctx.IsAdmin(ctx) {
			return apperror.NewForbidden("only an admin can register users")
		}

		user = NewUser(req.Name, req.Email, string(passwordHash), role)
		if err := s.userRepo.Create(ctx, user); err != nil {
			if apperror.HasCode(err, apperror.CodeDuplicate) || apperror.IsConflict(err) {
				return apperror.NewDuplicate("user", "email", req.Email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return user, nil
}

// Login authenticates a user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Warn(ctx, "password hash check failed", "user_id", user.ID, "error", err)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		logger.Warn(ctx, "record login failed", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return &TokenPair{AccessToken: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	userID, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return s.GetUserByID(ctx, userID)
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, err
	}
	return user, nil
}

// ListUsers lists users.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]*User, error) {
	filter.Limit = domain.ClampLimit(filter.Limit, domain.DefaultLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.userRepo.List(ctx, filter)
}

// SetActive enables or disables a user. An admin cannot disable themself.
func (s *Service) SetActive(ctx context.Context, userID id.ID, active bool) (*User, error) {
	if !active && appctx.GetUserID(ctx) == userID.String() {
		return nil, apperror.NewBusinessRule("you cannot deactivate your own account")
	}

	var user *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("user", userID.String())
			}
			return fmt.Errorf("set user status: %w", err)
		}
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user status changed",
		"user_id", userID,
		"is_active", active,
		"changed_by", appctx.GetUserID(ctx))

	return user, nil
}
