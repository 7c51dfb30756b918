package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 货架商品：名称唯一，价格为正，库存非负。
// Rows are hard-deleted; history survives via the name snapshot on sale items.
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock int             `gorm:"not null;default:0" json:"stock"`
}

func (Product) TableName() string { return "products" }
