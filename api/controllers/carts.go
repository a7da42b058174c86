package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinoteca/vinoteca-backend/api/middleware"
	"github.com/vinoteca/vinoteca-backend/api/responses"
	"github.com/vinoteca/vinoteca-backend/api/validators"
	cartsvc "github.com/vinoteca/vinoteca-backend/internal/carts"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

type cartUpsertRequest struct {
	Cart types.CartLines `json:"cart" validate:"required"`
}

// requireOwnCart rejects callers touching another user's cart record.
func requireOwnCart(r *http.Request) (string, error) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if userID != middleware.UserIDFromContext(r.Context()) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "cannot access another user's cart")
	}
	return userID, nil
}

// FetchCart returns the caller's persisted cart record.
func FetchCart(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := requireOwnCart(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := svc.Fetch(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// UpsertCart replaces the caller's persisted cart record.
func UpsertCart(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := requireOwnCart(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Upsert(r.Context(), userID, payload.Cart); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload.Cart)
	}
}

// DeleteCart removes the caller's persisted cart record.
func DeleteCart(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := requireOwnCart(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
