package catalog

import (
	"context"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx"
	"shoppos/internal/domain"
	"shoppos/internal/domain/audit"
)

// InitialStockRecorder logs the opening stock of a new product.
type InitialStockRecorder interface {
	RecordInitialStock(ctx context.Context, productID id.ID, quantity int, createdBy *id.ID) error
}

// ProductService manages products.
type ProductService struct {
	*domain.CatalogService[*Product]
	repo ProductRepository
}

// NewProductService creates a product service. When stock is non-nil the
// initial quantity of a new product is logged as an "in" movement in the
// same transaction as the insert.
func NewProductService(repo ProductRepository, txManager tx.Manager, stock InitialStockRecorder) *ProductService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	if stock != nil {
		base.Hooks().On(domain.WithinCreate, func(ctx context.Context, p *Product) error {
			var createdBy *id.ID
			if uid, ok := audit.ResolveActorID(ctx, nil); ok {
				createdBy = &uid
			}
			return stock.RecordInitialStock(ctx, p.ID, p.StockQuantity, createdBy)
		})
	}

	return &ProductService{CatalogService: base, repo: repo}
}

// CreateProduct creates a product from input.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	p := NewProduct(in.Name, in.Price)
	in.apply(p)
	p.StockQuantity = in.StockQuantity

	if err := s.Create(ctx, p); err != nil {
		return nil, duplicateBarcode(err, p.Barcode)
	}
	return p, nil
}

// UpdateProduct replaces the editable fields of a product.
// Stock quantity is not editable here.
func (s *ProductService) UpdateProduct(ctx context.Context, productID id.ID, in ProductInput) (*Product, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	p.Touch()

	if err := s.Update(ctx, p); err != nil {
		return nil, duplicateBarcode(err, p.Barcode)
	}
	return p, nil
}

// GetByBarcode retrieves an active product by barcode.
func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("product", barcode)
	}
	return p, err
}

// List retrieves products.
func (s *ProductService) List(ctx context.Context, filter ProductFilter) (domain.ListResult[*Product], error) {
	filter.Limit = domain.ClampLimit(filter.Limit, domain.DefaultLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func duplicateBarcode(err error, barcode *string) error {
	if apperror.IsConflict(err) && barcode != nil {
		return apperror.NewDuplicate("product", "barcode", *barcode)
	}
	return err
}

// CategoryService manages categories.
type CategoryService struct {
	*domain.CatalogService[*Category]
	repo CategoryRepository
}

// NewCategoryService creates a category service.
func NewCategoryService(repo CategoryRepository, txManager tx.Manager) *CategoryService {
	return &CategoryService{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "category",
		}),
		repo: repo,
	}
}

// CreateCategory creates a category.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, description *string) (*Category, error) {
	c := NewCategory(name, description)
	if err := s.Create(ctx, c); err != nil {
		return nil, duplicateName(err, c.Name)
	}
	return c, nil
}

// UpdateCategory renames or re-describes a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID id.ID, name string, description *string) (*Category, error) {
	c, err := s.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = description
	c.Touch()

	if err := s.Update(ctx, c); err != nil {
		return nil, duplicateName(err, c.Name)
	}
	return c, nil
}

// List retrieves categories ordered by name.
func (s *CategoryService) List(ctx context.Context, includeInactive bool) ([]*Category, error) {
	return s.repo.List(ctx, includeInactive)
}

func duplicateName(err error, name string) error {
	if apperror.IsConflict(err) {
		return apperror.NewDuplicate("category", "name", name)
	}
	return err
}
