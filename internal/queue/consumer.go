package queue

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"pos/internal/model"
)

// Consumer 订阅销售事件并落审计表 sale_events。
type Consumer struct {
	r  *kafka.Reader
	db *gorm.DB
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db: db,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var msg SaleMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("consumer unmarshal: %v", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Printf("consumer invalid message: %v", err)
			continue
		}

		event := &model.SaleEvent{
			SaleID:    msg.SaleID,
			Total:     msg.Total,
			ItemCount: msg.ItemCount,
		}

		if err := c.db.Create(event).Error; err != nil {
			// 幂等：重复消息导致 UNIQUE 冲突，直接当作成功
			if errorsLikeUnique(err) {
				continue
			}
			log.Printf("consumer db create: %v", err)
			continue
		}
	}
}

func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
