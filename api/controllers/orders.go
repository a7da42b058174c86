package controllers

import (
	"net/http"

	"github.com/vinoteca/vinoteca-backend/api/middleware"
	"github.com/vinoteca/vinoteca-backend/api/responses"
	"github.com/vinoteca/vinoteca-backend/api/validators"
	ordersvc "github.com/vinoteca/vinoteca-backend/internal/orders"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

type placeOrderRequest struct {
	Name    string          `json:"name" validate:"required"`
	Email   string          `json:"email" validate:"required,email"`
	Address string          `json:"address" validate:"required"`
	Items   types.CartLines `json:"items" validate:"required,min=1"`
	Total   int64           `json:"total" validate:"min=0"`
}

// PlaceOrder writes the checkout order for the signed-in user.
func PlaceOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "sign in to place an order"))
			return
		}
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceOrder(r.Context(), userID, ordersvc.PlaceOrderInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Address: payload.Address,
			Items:   payload.Items,
			Total:   payload.Total,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the signed-in user's order history.
func ListOrders(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "sign in to view orders"))
			return
		}
		out, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
