package queue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleMessage 是结账成功后写入 Kafka 的销售事件。
type SaleMessage struct {
	SaleID    string          `json:"sale_id"`
	Date      time.Time       `json:"date"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (m SaleMessage) Validate() error {
	if m.SaleID == "" {
		return fmt.Errorf("sale_id is required")
	}
	if m.ItemCount <= 0 {
		return fmt.Errorf("item_count must be > 0")
	}
	if m.Total.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("total must be > 0")
	}
	return nil
}
