package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order links a customer to one or more products. TotalAmount is the exact
// sum of the product prices at the time the order was placed.
type Order struct {
	ID          uint            `gorm:"primaryKey"                            json:"id"`
	CustomerID  uint            `gorm:"not null;index"                        json:"customer_id"`
	Customer    Customer        `gorm:"constraint:OnDelete:CASCADE"           json:"customer"`
	Products    []Product       `gorm:"many2many:order_products"              json:"products"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	OrderDate   time.Time       `gorm:"not null;index"                        json:"order_date"`
	CreatedAt   time.Time       `gorm:"not null"                              json:"created_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&Customer{}, &Product{}, &Order{}}
}
