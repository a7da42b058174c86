package products

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
)

type productRepo interface {
	List(ctx context.Context, featuredOnly bool) ([]models.Product, error)
	Find(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Service exposes catalog reads for the storefront and writes for admins.
type Service struct {
	repo productRepo
}

// NewService builds a product service backed by the provided repository.
func NewService(repo productRepo) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &Service{repo: repo}, nil
}

// List returns the catalog, optionally only featured products.
func (s *Service) List(ctx context.Context, featuredOnly bool) ([]models.Product, error) {
	out, err := s.repo.List(ctx, featuredOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "list products")
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "load product")
	}
	return product, nil
}

// Create validates and inserts a new product.
func (s *Service) Create(ctx context.Context, product models.Product) (*models.Product, error) {
	if err := validate(product); err != nil {
		return nil, err
	}
	product.ID = 0
	created, err := s.repo.Create(ctx, &product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "create product")
	}
	return created, nil
}

// Update rewrites an existing product.
func (s *Service) Update(ctx context.Context, id int64, product models.Product) (*models.Product, error) {
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validate(product); err != nil {
		return nil, err
	}
	product.ID = id
	updated, err := s.repo.Update(ctx, &product)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "update product")
	}
	return updated, nil
}

// Delete removes a product by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "delete product")
	}
	return nil
}

func validate(product models.Product) error {
	if product.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if product.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}
	return nil
}
