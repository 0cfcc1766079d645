package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/app/filters"
	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/pkg/testkit"
)

func newStore(t *testing.T) *repositories.GormStore {
	t.Helper()
	return repositories.NewGormStore(testkit.NewDB(t))
}

func TestCreateCustomer_UniqueIndex(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCustomer(ctx, &models.Customer{Name: "A", Email: "a@example.com"}))
	err := s.CreateCustomer(ctx, &models.Customer{Name: "B", Email: "a@example.com"})

	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

	taken, err := s.EmailTaken(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestFind_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.FindCustomer(context.Background(), 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = s.FindProduct(context.Background(), 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTransaction_RollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx repositories.Store) error {
		require.NoError(t, tx.CreateProduct(ctx, &models.Product{Name: "P", Price: decimal.NewFromInt(1)}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = s.Transaction(ctx, func(tx repositories.Store) error {
			_ = tx.CreateProduct(ctx, &models.Product{Name: "Q", Price: decimal.NewFromInt(1)})
			panic("mid-transaction")
		})
	})

	_, total, err := s.Products(ctx, nil, repositories.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTransaction_NestedRollbackKeepsOuter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx repositories.Store) error {
		require.NoError(t, tx.CreateProduct(ctx, &models.Product{Name: "outer", Price: decimal.NewFromInt(1)}))
		inner := tx.Transaction(ctx, func(tx2 repositories.Store) error {
			_ = tx2.CreateProduct(ctx, &models.Product{Name: "inner", Price: decimal.NewFromInt(1)})
			return errors.New("discard inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	rows, _, err := s.Products(ctx, nil, repositories.Page{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "outer", rows[0].Name)
}

func TestList_NegativeLimitOnlyCounts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: name, Price: decimal.NewFromInt(1)}))
	}

	rows, total, err := s.Products(ctx, nil, repositories.Page{Limit: -1})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.EqualValues(t, 3, total)

	rows, _, err = s.Products(ctx, nil, repositories.Page{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestOrders_PreloadAndRevenue(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	c := &models.Customer{Name: "A", Email: "a@example.com"}
	require.NoError(t, s.CreateCustomer(ctx, c))
	p1 := &models.Product{Name: "One", Price: decimal.RequireFromString("1.25")}
	p2 := &models.Product{Name: "Two", Price: decimal.RequireFromString("2.50")}
	require.NoError(t, s.CreateProduct(ctx, p1))
	require.NoError(t, s.CreateProduct(ctx, p2))

	o := &models.Order{CustomerID: c.ID}
	require.NoError(t, s.CreateOrder(ctx, o))
	require.NoError(t, s.AttachProducts(ctx, o, []models.Product{*p2, *p1}))
	require.NoError(t, s.SetOrderTotal(ctx, o, decimal.RequireFromString("3.75")))

	orders, total, err := s.Orders(ctx, nil, repositories.Page{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "a@example.com", orders[0].Customer.Email)
	require.Len(t, orders[0].Products, 2)
	assert.Equal(t, "One", orders[0].Products[0].Name, "products load in id order")

	sum, err := s.OrderRevenue(ctx, filters.Filter{}.Where("totalAmount", filters.Gte, decimal.NewFromInt(3)))
	require.NoError(t, err)
	assert.Equal(t, "3.75", sum.StringFixed(2))

	err = s.SetOrderTotal(ctx, &models.Order{ID: 999}, decimal.Zero)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRestockBelow(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, st := range []int{0, 9, 10, 50} {
		require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "P", Price: decimal.NewFromInt(1), Stock: st}))
	}

	updated, err := s.RestockBelow(ctx, 10, 5)
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Equal(t, 5, updated[0].Stock)
	assert.Equal(t, 14, updated[1].Stock)
}
