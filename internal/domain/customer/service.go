package customer

import (
	"context"

	"shoppos/internal/core/id"
	"shoppos/internal/core/tx"
	"shoppos/internal/domain"
)

// Service manages customers.
type Service struct {
	*domain.CatalogService[*Customer]
	repo Repository
}

// NewService creates a customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "customer",
		}),
		repo: repo,
	}
}

// CreateCustomer creates a customer.
func (s *Service) CreateCustomer(ctx context.Context, in Input) (*Customer, error) {
	c := NewCustomer(in.Name)
	in.apply(c)
	if err := s.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCustomer replaces the contact fields of a customer.
func (s *Service) UpdateCustomer(ctx context.Context, customerID id.ID, in Input) (*Customer, error) {
	c, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	c.Touch()
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List searches customers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter.Normalize())
}
