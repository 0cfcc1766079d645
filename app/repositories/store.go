// Package repositories is the persistence boundary of the CRM. Services talk
// to the Store interface; GormStore implements it on top of gorm.
package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-crm/app/filters"
	"github.com/shashiranjanraj/kashvi-crm/app/models"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("repositories: record not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("repositories: duplicate key")
)

// Page selects a window of a filtered list. A zero Limit reads every row; a
// negative Limit reads none and only counts.
type Page struct {
	Offset  int
	Limit   int
	OrderBy string
}

// Store is the create/get/filter/transaction surface the services need.
type Store interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	FindCustomer(ctx context.Context, id uint) (*models.Customer, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Customers(ctx context.Context, f filters.Filter, p Page) ([]models.Customer, int64, error)

	CreateProduct(ctx context.Context, p *models.Product) error
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	Products(ctx context.Context, f filters.Filter, p Page) ([]models.Product, int64, error)
	// RestockBelow adds increment to every product with stock < threshold and
	// returns the updated rows.
	RestockBelow(ctx context.Context, threshold, increment int) ([]models.Product, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	AttachProducts(ctx context.Context, o *models.Order, products []models.Product) error
	SetOrderTotal(ctx context.Context, o *models.Order, total decimal.Decimal) error
	Orders(ctx context.Context, f filters.Filter, p Page) ([]models.Order, int64, error)
	OrderRevenue(ctx context.Context, f filters.Filter) (decimal.Decimal, error)

	// Transaction runs fn in one atomic scope. fn must use the tx Store it is
	// given. A nil return commits; an error or panic rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
