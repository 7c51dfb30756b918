package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rd "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pos/internal/config"
	"pos/internal/model"
	"pos/internal/queue"
	"pos/internal/router"
	"pos/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SaleEvent{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	if err := seedProducts(db); err != nil {
		log.Fatalf("db seed: %v", err)
	}

	store := newSessionStore(cfg)

	var producer *queue.Producer
	if cfg.EventsEnabled() {
		producer = queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()

		consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, db)
		defer consumer.Close()
		go consumer.Run(context.Background())
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Setup(r, db, store, producer, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func newSessionStore(cfg config.AppConfig) session.Store {
	if cfg.SessionBackend == config.SessionBackendRedis {
		rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return session.NewRedisStore(rdb, cfg.SessionTTL)
	}
	return session.NewMemoryStore()
}

// seedProducts 空库时插入示例商品，方便首次启动直接试用。
func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	samples := []model.Product{
		{Name: "Coffee", Price: decimal.NewFromFloat(3.50), Stock: 100},
		{Name: "Tea", Price: decimal.NewFromFloat(2.50), Stock: 100},
		{Name: "Sandwich", Price: decimal.NewFromFloat(5.99), Stock: 50},
	}
	return db.Create(&samples).Error
}
