package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-crm/app/filters"
	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
)

func (s *CRM) ListCustomers(ctx context.Context, f filters.CustomerFilter, p repositories.Page) ([]models.Customer, int64, error) {
	rows, total, err := s.store.Customers(ctx, f.Filter(), p)
	return rows, total, readErr(err)
}

func (s *CRM) ListProducts(ctx context.Context, f filters.ProductFilter, p repositories.Page) ([]models.Product, int64, error) {
	rows, total, err := s.store.Products(ctx, f.Filter(), p)
	return rows, total, readErr(err)
}

// ListOrders returns orders with their customer and products loaded.
func (s *CRM) ListOrders(ctx context.Context, f filters.OrderFilter, p repositories.Page) ([]models.Order, int64, error) {
	rows, total, err := s.store.Orders(ctx, f.Filter(), p)
	return rows, total, readErr(err)
}

// Revenue sums total_amount over the orders matching f.
func (s *CRM) Revenue(ctx context.Context, f filters.OrderFilter) (decimal.Decimal, error) {
	sum, err := s.store.OrderRevenue(ctx, f.Filter())
	return sum, readErr(err)
}

func readErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, filters.ErrUnknownField), errors.Is(err, filters.ErrUnsupportedOp):
		return invalidInput(err.Error(), err)
	default:
		return storeFailure(err)
	}
}
