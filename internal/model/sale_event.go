package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleEvent is the audit row written by the Kafka consumer, one per
// completed checkout. SaleID is unique so replayed messages are no-ops.
type SaleEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SaleID    string          `gorm:"size:64;uniqueIndex;not null" json:"sale_id"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	ItemCount int             `gorm:"not null" json:"item_count"`
}

func (SaleEvent) TableName() string { return "sale_events" }
