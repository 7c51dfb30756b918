package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	rd "github.com/redis/go-redis/v9"

	"pos/internal/cart"
	rediskey "pos/pkg/redis"
)

// Flash levels, mirrored in the page templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot user-facing message, shown on the next page render.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session 会话载荷：购物车 + 待展示的 flash 消息。
// A missing session loads as the zero value.
type Session struct {
	Cart    cart.Cart `json:"cart"`
	Flashes []Flash   `json:"flashes,omitempty"`
}

// Flash queues a message for the next render.
func (s *Session) Flash(level, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns the queued messages and clears them.
func (s *Session) PopFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}

// Store persists sessions by id. Both backends round-trip the payload as
// JSON so loaded sessions never alias stored state.
type Store interface {
	Load(ctx context.Context, sessionID string) (Session, error)
	Save(ctx context.Context, sessionID string, s Session) error
}

// MemoryStore keeps sessions in process memory. Used by tests and
// single-binary runs without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (Session, error) {
	m.mu.Lock()
	b, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return Session{}, nil
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[sessionID] = b
	m.mu.Unlock()
	return nil
}

// RedisStore keeps sessions in Redis with a rolling TTL, so carts survive
// server restarts for the lifetime of the browser session.
type RedisStore struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewRedisStore(rdb *rd.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (Session, error) {
	b, err := r.rdb.Get(ctx, rediskey.SessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, rediskey.SessionKey(sessionID), b, r.ttl).Err()
}
