package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  address TEXT NOT NULL,
  items TEXT NOT NULL,
  total INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec("DELETE FROM orders").Error)
	return db
}

type recordingDeleter struct {
	deleted []string
	err     error
}

func (r *recordingDeleter) Delete(ctx context.Context, userID string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, userID)
	return nil
}

func newOrderService(t *testing.T, deleter *recordingDeleter) *Service {
	t.Helper()
	var cd cartDeleter
	if deleter != nil {
		cd = deleter
	}
	svc, err := NewService(NewRepository(setupOrdersTestDB(t)), cd, nil)
	require.NoError(t, err)
	return svc
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		Name:    "Ana García",
		Email:   "ana@example.com",
		Address: "Calle Mayor 1, Madrid",
		Items: types.CartLines{
			{ID: 1, Name: "Rioja", Price: 1850, Qty: 2},
			{ID: 2, Name: "Cava", Price: 990, Qty: 1},
		},
		Total: 1850*2 + 990,
	}
}

func TestPlaceOrderRequiresSignIn(t *testing.T) {
	svc := newOrderService(t, nil)

	_, err := svc.PlaceOrder(context.Background(), "", validInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthenticated, pkgerrors.As(err).Code())
}

func TestPlaceOrderValidatesTotal(t *testing.T) {
	svc := newOrderService(t, nil)

	input := validInput()
	input.Total = 1
	_, err := svc.PlaceOrder(context.Background(), "u1", input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPlaceOrderRejectsEmptyItemsAndBadQty(t *testing.T) {
	svc := newOrderService(t, nil)
	ctx := context.Background()

	input := validInput()
	input.Items = nil
	_, err := svc.PlaceOrder(ctx, "u1", input)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	input = validInput()
	input.Items[0].Qty = 0
	_, err = svc.PlaceOrder(ctx, "u1", input)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPlaceOrderWritesOrderAndClearsRemoteCart(t *testing.T) {
	deleter := &recordingDeleter{}
	svc := newOrderService(t, deleter)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, "u1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(4690), order.Total)
	assert.Equal(t, []string{"u1"}, deleter.deleted)

	out, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Items, 2)
}

func TestPlaceOrderStandsWhenCartCleanupFails(t *testing.T) {
	deleter := &recordingDeleter{err: errors.New("remote down")}
	svc := newOrderService(t, deleter)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, "u2", validInput())
	require.NoError(t, err)
	require.NotNil(t, order)

	out, err := svc.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestListByUserEmptyHistory(t *testing.T) {
	svc := newOrderService(t, nil)

	out, err := svc.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
