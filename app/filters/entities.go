package filters

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	text  = []Op{Eq, IContains, IStartsWith}
	bound = []Op{Eq, Gte, Lte}
)

// Customers is the filter schema for the customers table.
var Customers = Schema{
	Table: "customers",
	Columns: map[string]Column{
		"name":      {Expr: "customers.name", Ops: text},
		"email":     {Expr: "customers.email", Ops: text},
		"phone":     {Expr: "customers.phone", Ops: text},
		"createdAt": {Expr: "customers.created_at", Ops: bound},
	},
	Sortable: map[string]string{
		"id":        "customers.id",
		"name":      "customers.name",
		"email":     "customers.email",
		"createdAt": "customers.created_at",
	},
}

// Products is the filter schema for the products table.
var Products = Schema{
	Table: "products",
	Columns: map[string]Column{
		"name":  {Expr: "products.name", Ops: text},
		"price": {Expr: "products.price", Ops: bound},
		"stock": {Expr: "products.stock", Ops: bound},
	},
	Sortable: map[string]string{
		"id":    "products.id",
		"name":  "products.name",
		"price": "products.price",
		"stock": "products.stock",
	},
}

// Orders is the filter schema for the orders table. Customer and product
// predicates go through IN subqueries so an order never appears twice.
var Orders = Schema{
	Table: "orders",
	Columns: map[string]Column{
		"totalAmount": {Expr: "orders.total_amount", Ops: bound},
		"orderDate":   {Expr: "orders.order_date", Ops: bound},
		"customerId":  {Expr: "orders.customer_id", Ops: []Op{Eq}},
		"customer.name": {
			Expr:    "c.name",
			Through: "orders.customer_id IN (SELECT c.id FROM customers c WHERE %s)",
			Ops:     text,
		},
		"products.name": {
			Expr:    "p.name",
			Through: "orders.id IN (SELECT op.order_id FROM order_products op JOIN products p ON p.id = op.product_id WHERE %s)",
			Ops:     text,
		},
		"products.id": {
			Expr:    "op.product_id",
			Through: "orders.id IN (SELECT op.order_id FROM order_products op WHERE %s)",
			Ops:     []Op{Eq},
		},
	},
	Sortable: map[string]string{
		"id":          "orders.id",
		"totalAmount": "orders.total_amount",
		"orderDate":   "orders.order_date",
	},
}

// CustomerFilter is the typed form of the customer list filter.
type CustomerFilter struct {
	Name         *string
	Email        *string
	CreatedAtGte *time.Time
	CreatedAtLte *time.Time
	PhonePattern *string
}

// Filter converts the set keys into predicates; nil keys add no constraint.
func (f CustomerFilter) Filter() Filter {
	var out Filter
	if f.Name != nil {
		out = out.Where("name", IContains, *f.Name)
	}
	if f.Email != nil {
		out = out.Where("email", IContains, *f.Email)
	}
	if f.CreatedAtGte != nil {
		out = out.Where("createdAt", Gte, *f.CreatedAtGte)
	}
	if f.CreatedAtLte != nil {
		out = out.Where("createdAt", Lte, *f.CreatedAtLte)
	}
	if f.PhonePattern != nil {
		out = out.Where("phone", IStartsWith, *f.PhonePattern)
	}
	return out
}

// ProductFilter is the typed form of the product list filter.
type ProductFilter struct {
	Name     *string
	PriceGte *decimal.Decimal
	PriceLte *decimal.Decimal
	StockGte *int
	StockLte *int
}

func (f ProductFilter) Filter() Filter {
	var out Filter
	if f.Name != nil {
		out = out.Where("name", IContains, *f.Name)
	}
	if f.PriceGte != nil {
		out = out.Where("price", Gte, *f.PriceGte)
	}
	if f.PriceLte != nil {
		out = out.Where("price", Lte, *f.PriceLte)
	}
	if f.StockGte != nil {
		out = out.Where("stock", Gte, *f.StockGte)
	}
	if f.StockLte != nil {
		out = out.Where("stock", Lte, *f.StockLte)
	}
	return out
}

// OrderFilter is the typed form of the order list filter.
type OrderFilter struct {
	TotalAmountGte *decimal.Decimal
	TotalAmountLte *decimal.Decimal
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	CustomerName   *string
	ProductName    *string
	ProductID      *uint
}

func (f OrderFilter) Filter() Filter {
	var out Filter
	if f.TotalAmountGte != nil {
		out = out.Where("totalAmount", Gte, *f.TotalAmountGte)
	}
	if f.TotalAmountLte != nil {
		out = out.Where("totalAmount", Lte, *f.TotalAmountLte)
	}
	if f.OrderDateGte != nil {
		out = out.Where("orderDate", Gte, *f.OrderDateGte)
	}
	if f.OrderDateLte != nil {
		out = out.Where("orderDate", Lte, *f.OrderDateLte)
	}
	if f.CustomerName != nil {
		out = out.Where("customer.name", IContains, *f.CustomerName)
	}
	if f.ProductName != nil {
		out = out.Where("products.name", IContains, *f.ProductName)
	}
	if f.ProductID != nil {
		out = out.Where("products.id", Eq, *f.ProductID)
	}
	return out
}
