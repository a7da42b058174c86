package carts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// Gateway is the narrow remote-cart surface the synchronizer drives. Fetch
// reports a missing record with the not-found code, which callers treat as a
// valid state. Delete is idempotent.
type Gateway interface {
	Fetch(ctx context.Context, userID string) (types.CartLines, error)
	Upsert(ctx context.Context, userID string, lines types.CartLines) error
	Delete(ctx context.Context, userID string) error
}

type cartRepo interface {
	Find(ctx context.Context, userID string) (*models.CartRecord, error)
	Upsert(ctx context.Context, userID string, lines types.CartLines) (*models.CartRecord, error)
	Delete(ctx context.Context, userID string) error
}

// Service exposes remote cart record operations with coded errors. It serves
// both the HTTP controllers and, in-process, the Gateway surface.
type Service struct {
	repo cartRepo
}

// NewService builds a cart service backed by the provided repository.
func NewService(repo cartRepo) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &Service{repo: repo}, nil
}

// Fetch returns the persisted cart for the user.
func (s *Service) Fetch(ctx context.Context, userID string) (types.CartLines, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "load cart")
	}
	return record.Cart, nil
}

// Upsert inserts or replaces the user's cart record.
func (s *Service) Upsert(ctx context.Context, userID string, lines types.CartLines) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	for _, line := range lines {
		if line.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive")
		}
	}
	if _, err := s.repo.Upsert(ctx, userID, lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "persist cart")
	}
	return nil
}

// Delete removes the user's cart record; missing records succeed.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "delete cart")
	}
	return nil
}
