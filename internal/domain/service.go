package domain

import (
	"context"
	"fmt"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/entity"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx"
	"shoppos/pkg/logger"
)

// CatalogService is the write path shared by products, categories and
// customers: validate, persist in a transaction, then run the post-commit
// hooks. Concrete services embed it and add their own queries.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]
	name      string
}

type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string // "product", "category" or "customer" in error messages
}

func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		hooks:     NewHookRegistry[T](),
		name:      cfg.EntityName,
	}
}

func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Create validates and inserts e. WithinCreate hooks share the insert's
// transaction.
func (s *CatalogService[T]) Create(ctx context.Context, e T) error {
	return s.write(ctx, e, "create", AfterCreate, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		return s.hooks.Run(ctx, WithinCreate, e)
	})
}

// Update validates and saves e.
func (s *CatalogService[T]) Update(ctx context.Context, e T) error {
	return s.write(ctx, e, "update", AfterUpdate, func(ctx context.Context) error {
		return s.repo.Update(ctx, e)
	})
}

func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.repo.GetByID(ctx, entityID)
	return e, s.lookupErr(err, entityID)
}

// Deactivate soft-deletes the entity. Bills keep referring to it.
func (s *CatalogService[T]) Deactivate(ctx context.Context, entityID id.ID) error {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.lookupErr(err, entityID)
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Deactivate(ctx, entityID)
	})
	if err != nil {
		return s.lookupErr(err, entityID)
	}
	s.afterCommit(ctx, AfterDelete, e)
	return nil
}

func (s *CatalogService[T]) write(ctx context.Context, e T, op string, after HookEvent, fn func(ctx context.Context) error) error {
	if err := e.Validate(ctx); err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewValidation(err.Error())
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			if apperror.IsAppError(err) {
				return err
			}
			return fmt.Errorf("%s %s: %w", op, s.name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, after, e)
	return nil
}

// afterCommit failures are logged only; the write is already durable.
func (s *CatalogService[T]) afterCommit(ctx context.Context, event HookEvent, e T) {
	if err := s.hooks.Run(ctx, event, e); err != nil {
		logger.Warn(ctx, "post-commit hook failed", "entity", s.name, "event", event.String(), "error", err)
	}
}

// lookupErr names the entity in repository misses, which only say "record".
func (s *CatalogService[T]) lookupErr(err error, entityID id.ID) error {
	switch {
	case err == nil:
		return nil
	case apperror.IsNotFound(err):
		return apperror.NewNotFound(s.name, entityID.String())
	case apperror.IsAppError(err):
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.name)
}
