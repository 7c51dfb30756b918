package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	// Session storage: cookie name + TTL; carts and flash messages live here.
	SessionBackend string
	SessionCookie  string
	SessionTTL     time.Duration

	RedisAddr string
	RedisDB   int

	// Kafka 销售事件流（可选）：brokers 为空时整条事件链路关闭。
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// EventsEnabled reports whether the sale-event pipeline is configured.
func (c AppConfig) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "pos.db"),
		SessionBackend: getEnv("SESSION_BACKEND", SessionBackendMemory),
		SessionCookie:  getEnv("SESSION_COOKIE", "pos_session"),
		SessionTTL:     24 * time.Hour,
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        0,
		KafkaBrokers:   splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "pos-sales"),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "pos-sale-audit"),
	}

	if cfg.SessionBackend != SessionBackendMemory && cfg.SessionBackend != SessionBackendRedis {
		return AppConfig{}, fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendMemory, SessionBackendRedis)
	}
	if cfg.SessionCookie == "" {
		return AppConfig{}, fmt.Errorf("SESSION_COOKIE must not be empty")
	}

	ttlHour, err := getEnvInt("SESSION_TTL_HOUR", int(cfg.SessionTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SESSION_TTL_HOUR: %w", err)
	}
	if ttlHour <= 0 {
		return AppConfig{}, fmt.Errorf("SESSION_TTL_HOUR must be > 0")
	}
	cfg.SessionTTL = time.Duration(ttlHour) * time.Hour

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	if cfg.EventsEnabled() {
		if cfg.KafkaTopic == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
		}
		if cfg.KafkaGroupID == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
		}
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
