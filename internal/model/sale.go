package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 结账后生成的销售单：随机 id + 时间戳 + 总额，落库后不可变。
type Sale struct {
	ID    string          `gorm:"size:64;primarykey" json:"id"`
	Date  time.Time       `gorm:"not null;index" json:"date"`
	Total decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem is one line of a sale. ProductID goes NULL when the product is
// deleted; ProductName is the snapshot captured at checkout and survives it.
type SaleItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	SaleID      string          `gorm:"size:64;not null;index" json:"sale_id"`
	ProductID   *uint           `gorm:"index" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Sale    Sale     `gorm:"foreignKey:SaleID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
}

func (SaleItem) TableName() string { return "sale_items" }
