package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/api/middleware"
	cartsvc "github.com/vinoteca/vinoteca-backend/internal/carts"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

func newCartRouter(t *testing.T, currentUser string) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  user_id TEXT PRIMARY KEY,
  cart TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec("DELETE FROM carts").Error)

	svc, err := cartsvc.NewService(cartsvc.NewRepository(db))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/carts/{userId}", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithUser(req.Context(), currentUser, currentUser+"@example.com", false)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/", FetchCart(svc, nil))
		r.Post("/", UpsertCart(svc, nil))
		r.Delete("/", DeleteCart(svc, nil))
	})
	return r
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error.Code
}

func TestCartRoutesRejectForeignUserID(t *testing.T) {
	router := newCartRouter(t, "u1")

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/carts/u2/", strings.NewReader(`{"cart":[]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, method)
		assert.Equal(t, string(pkgerrors.CodeForbidden), errorCode(t, rec.Body.Bytes()), method)
	}
}

func TestFetchCartMissingRecordIs404(t *testing.T) {
	router := newCartRouter(t, "u1")

	req := httptest.NewRequest(http.MethodGet, "/api/carts/u1/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), errorCode(t, rec.Body.Bytes()))
}

func TestUpsertThenFetchRoundTrip(t *testing.T) {
	router := newCartRouter(t, "u1")

	body := `{"cart":[{"id":1,"name":"Rioja","price":1850,"image":"rioja.jpg","qty":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts/u1/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/carts/u1/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data types.CartLines `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, 2, payload.Data[0].Qty)
}

func TestUpsertCartRejectsInvalidQty(t *testing.T) {
	router := newCartRouter(t, "u1")

	body := `{"cart":[{"id":1,"name":"Rioja","price":1850,"image":"","qty":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts/u1/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCartIsIdempotent(t *testing.T) {
	router := newCartRouter(t, "u1")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/carts/u1/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
