package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/kashvi-crm/app/filters"
	"github.com/shashiranjanraj/kashvi-crm/app/models"
)

// GormStore implements Store on a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle (used by health checks).
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// ── Customers ────────────────────────────────────────────────────────────────

func (s *GormStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return translate("create customer", err)
	}
	return nil
}

func (s *GormStore) FindCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, translate("find customer", err)
	}
	return &c, nil
}

func (s *GormStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Customer{}).Where("email = ?", email).Limit(1).Count(&n).Error; err != nil {
		return false, translate("check email", err)
	}
	return n > 0, nil
}

func (s *GormStore) Customers(ctx context.Context, f filters.Filter, p Page) ([]models.Customer, int64, error) {
	var out []models.Customer
	total, err := s.list(ctx, &models.Customer{}, filters.Customers, f, p, &out)
	return out, total, err
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		return translate("create product", err)
	}
	return nil
}

func (s *GormStore) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate("find product", err)
	}
	return &p, nil
}

func (s *GormStore) Products(ctx context.Context, f filters.Filter, p Page) ([]models.Product, int64, error) {
	var out []models.Product
	total, err := s.list(ctx, &models.Product{}, filters.Products, f, p, &out)
	return out, total, err
}

func (s *GormStore) RestockBelow(ctx context.Context, threshold, increment int) ([]models.Product, error) {
	var low []models.Product
	db := s.conn(ctx)
	if err := db.Where("stock < ?", threshold).Order("id").Find(&low).Error; err != nil {
		return nil, translate("find low stock", err)
	}
	if len(low) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(low))
	for i, p := range low {
		ids[i] = p.ID
	}
	if err := db.Model(&models.Product{}).Where("id IN ?", ids).
		Update("stock", gorm.Expr("stock + ?", increment)).Error; err != nil {
		return nil, translate("restock", err)
	}

	var updated []models.Product
	if err := db.Where("id IN ?", ids).Order("id").Find(&updated).Error; err != nil {
		return nil, translate("reload restocked", err)
	}
	return updated, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *GormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(o).Error; err != nil {
		return translate("create order", err)
	}
	return nil
}

func (s *GormStore) AttachProducts(ctx context.Context, o *models.Order, products []models.Product) error {
	if err := s.conn(ctx).Model(o).Omit("Products.*").Association("Products").Append(products); err != nil {
		return translate("attach products", err)
	}
	return nil
}

func (s *GormStore) SetOrderTotal(ctx context.Context, o *models.Order, total decimal.Decimal) error {
	res := s.conn(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Update("total_amount", total)
	if res.Error != nil {
		return translate("set order total", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("repositories: set order total: %w", ErrNotFound)
	}
	o.TotalAmount = total
	return nil
}

func (s *GormStore) Orders(ctx context.Context, f filters.Filter, p Page) ([]models.Order, int64, error) {
	var out []models.Order
	total, err := s.list(ctx, &models.Order{}, filters.Orders, f, p, &out,
		func(db *gorm.DB) *gorm.DB {
			return db.Preload("Customer").Preload("Products", func(db *gorm.DB) *gorm.DB {
				return db.Order("products.id")
			})
		})
	return out, total, err
}

func (s *GormStore) OrderRevenue(ctx context.Context, f filters.Filter) (decimal.Decimal, error) {
	scope, err := filters.Orders.Scope(f)
	if err != nil {
		return decimal.Zero, err
	}

	var sum decimal.NullDecimal
	row := s.conn(ctx).Model(&models.Order{}).Scopes(scope).Select("SUM(orders.total_amount)").Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, translate("sum revenue", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	// Backends without a native decimal sum in floating point; money has two places.
	return sum.Decimal.Round(2), nil
}

// list runs a filtered, counted, paged query over model into dest.
func (s *GormStore) list(ctx context.Context, model interface{}, schema filters.Schema, f filters.Filter, p Page,
	dest interface{}, extra ...func(*gorm.DB) *gorm.DB) (int64, error) {
	scope, err := schema.Scope(f)
	if err != nil {
		return 0, err
	}
	order, err := schema.Order(p.OrderBy)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := s.conn(ctx).Model(model).Scopes(scope).Count(&total).Error; err != nil {
		return 0, translate("count "+schema.Table, err)
	}

	if p.Limit < 0 {
		return total, nil
	}
	q := s.conn(ctx).Model(model).Scopes(scope).Scopes(extra...).Order(order).Offset(p.Offset)
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if err := q.Find(dest).Error; err != nil {
		return 0, translate("list "+schema.Table, err)
	}
	return total, nil
}

// translate maps driver errors onto the package sentinels. gorm's
// TranslateError covers most drivers; the message check catches the rest.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("repositories: %s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("repositories: %s: %w", op, ErrDuplicateKey)
	default:
		return fmt.Errorf("repositories: %s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
