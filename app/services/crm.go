package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/pkg/collection"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/metrics"
)

// CRM implements the customer, product and order operations.
type CRM struct {
	store repositories.Store
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a CRM.
type Option func(*CRM)

// WithClock overrides the time source used for default order dates.
func WithClock(now func() time.Time) Option {
	return func(s *CRM) { s.now = now }
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(log *slog.Logger) Option {
	return func(s *CRM) { s.log = log }
}

func NewCRM(store repositories.Store, opts ...Option) *CRM {
	s := &CRM{store: store, now: time.Now, log: logger.L}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrderInput is the input of CreateOrder. A nil OrderDate means now.
type OrderInput struct {
	CustomerID uint
	ProductIDs []uint
	OrderDate  *time.Time
}

// CreateCustomer validates and inserts one customer in a single atomic scope.
func (s *CRM) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c, err := s.createCustomer(ctx, in)
	metrics.RecordWrite("customer", err)
	if err != nil {
		return nil, err
	}
	s.logFor(ctx).Info("customer created", "customer_id", c.ID)
	return c, nil
}

// BulkCreateCustomers creates each item in its own transaction. A failing
// item is reported as "Record {idx}: {message}" and does not affect others.
// created and errs are ordered independently.
func (s *CRM) BulkCreateCustomers(ctx context.Context, items []CustomerInput) (created []models.Customer, errs []string) {
	created = make([]models.Customer, 0, len(items))
	errs = make([]string, 0)

	for idx, in := range items {
		c, err := s.createCustomer(ctx, in)
		metrics.RecordWrite("customer", err)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Record %d: %s", idx, err.Error()))
			continue
		}
		created = append(created, *c)
	}

	s.logFor(ctx).Info("bulk customers processed", "created", len(created), "failed", len(errs))
	return created, errs
}

func (s *CRM) createCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	var created models.Customer
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		c, err := ValidateCustomer(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := tx.CreateCustomer(ctx, &c); err != nil {
			// The unique index is the authoritative guard when two writers
			// pass the pre-check together.
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrDuplicateEmail
			}
			return storeFailure(err)
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, storeFailure(err)
	}
	return &created, nil
}

// CreateProduct validates and inserts one product.
func (s *CRM) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p, err := ValidateProduct(in)
	if err == nil {
		if err = s.store.CreateProduct(ctx, &p); err != nil {
			err = storeFailure(err)
		}
	}
	metrics.RecordWrite("product", err)
	if err != nil {
		return nil, err
	}

	s.logFor(ctx).Info("product created", "product_id", p.ID, "price", p.Price.String())
	return &p, nil
}

// CreateOrder resolves the references, inserts the order, links the products
// and stores the exact decimal total, all in one transaction.
func (s *CRM) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	var created models.Order

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		customer, products, err := ValidateOrderRefs(ctx, tx, in.CustomerID, in.ProductIDs)
		if err != nil {
			return err
		}

		date := s.now()
		if in.OrderDate != nil {
			date = *in.OrderDate
		}

		order := models.Order{CustomerID: customer.ID, OrderDate: date.UTC(), TotalAmount: decimal.Zero}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return storeFailure(err)
		}
		if err := tx.AttachProducts(ctx, &order, products); err != nil {
			return storeFailure(err)
		}

		total := collection.Reduce(products, decimal.Zero, func(sum decimal.Decimal, p models.Product) decimal.Decimal {
			return sum.Add(p.Price)
		})
		if err := tx.SetOrderTotal(ctx, &order, total); err != nil {
			return storeFailure(err)
		}

		order.Customer = *customer
		order.Products = products
		created = order
		return nil
	})
	metrics.RecordWrite("order", err)
	if err != nil {
		return nil, storeFailure(err)
	}

	metrics.OrderValue.Observe(created.TotalAmount.InexactFloat64())
	s.logFor(ctx).Info("order created",
		"order_id", created.ID, "customer_id", created.CustomerID,
		"products", len(created.Products), "total", created.TotalAmount.StringFixed(2))
	return &created, nil
}

// UpdateLowStockProducts adds increment to every product whose stock is
// below threshold and returns the restocked products.
func (s *CRM) UpdateLowStockProducts(ctx context.Context, threshold, increment int) ([]models.Product, error) {
	if increment <= 0 {
		return nil, invalidInput("increment must be positive", nil)
	}

	var updated []models.Product
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		updated, err = tx.RestockBelow(ctx, threshold, increment)
		return err
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	s.logFor(ctx).Info("low stock products restocked", "count", len(updated), "threshold", threshold)
	return updated, nil
}

// logFor prefers the request-scoped logger carried by ctx.
func (s *CRM) logFor(ctx context.Context) *slog.Logger {
	if l := logger.WithCtx(ctx); l != logger.L {
		return l
	}
	return s.log
}
