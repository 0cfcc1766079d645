package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalogue.
type Product struct {
	ID        uint            `gorm:"primaryKey"                    json:"id"`
	Name      string          `gorm:"size:255;not null;index"       json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"price"`
	Stock     int             `gorm:"not null;default:0"            json:"stock"`
	CreatedAt time.Time       `gorm:"not null"                      json:"created_at"`
}
