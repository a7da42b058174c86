package orders

import (
	"context"
	"fmt"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

type orderRepo interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// cartDeleter clears the remote cart record after checkout.
type cartDeleter interface {
	Delete(ctx context.Context, userID string) error
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	Name    string
	Email   string
	Address string
	Items   types.CartLines
	Total   int64
}

// Service places and lists orders. Checkout is decoupled from cart sync:
// after the order row is written the remote cart record is deleted
// best-effort, and a failure there never rolls the order back.
type Service struct {
	repo  orderRepo
	carts cartDeleter
	logg  *logger.Logger
}

// NewService builds an order service. The cart deleter is optional; without
// it checkout skips the remote cart cleanup.
func NewService(repo orderRepo, carts cartDeleter, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &Service{repo: repo, carts: carts, logg: logg}, nil
}

// PlaceOrder validates the payload, writes the order, and clears the user's
// remote cart.
func (s *Service) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*models.Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "sign in to place an order")
	}
	if input.Name == "" || input.Email == "" || input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and address are required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	var total int64
	for _, line := range input.Items {
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive")
		}
		total += line.Price * int64(line.Qty)
	}
	if total != input.Total {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total does not match items")
	}

	order := models.Order{
		UserID:  userID,
		Name:    input.Name,
		Email:   input.Email,
		Address: input.Address,
		Items:   input.Items,
		Total:   total,
	}
	created, err := s.repo.Create(ctx, &order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "persist order")
	}

	if s.carts != nil {
		if err := s.carts.Delete(ctx, userID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, userID), "post-checkout cart cleanup failed")
		}
	}
	return created, nil
}

// ListByUser returns the user's order history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "list orders")
	}
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}
