package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory picks the idempotency store backend at startup.
// Redis is preferred because its marks are shared across service
// instances; the in-memory store only protects a single process.
type IdempotencyStoreFactory struct {
	redis    config.RedisConfig
	log      *zap.Logger
	fallback bool
}

// IdempotencyStoreFactoryOption configures the factory.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger used to report which backend was chosen.
func WithLogger(log *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.log = log
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store instead of failing startup. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.fallback = allow
	}
}

// NewIdempotencyStoreFactory builds a factory for the given Redis config.
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redis:    cfg,
		log:      zap.NewNop(),
		fallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore connects to Redis, or degrades to the in-memory store when
// fallback is allowed. After a fallback a multi-instance deployment can
// run a follow-up handler twice for the same event, so the degradation is
// logged at warn.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.log.Info("using Redis idempotency store")
		return store, nil
	}
	if !f.fallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	f.log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return f.CreateInMemoryStore(), nil
}

// CreateRedisStore connects to Redis without fallback.
func (f *IdempotencyStoreFactory) CreateRedisStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     f.redis.Host,
		Port:     f.redis.Port,
		Password: f.redis.Password,
		DB:       f.redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis idempotency store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore builds the process-local store.
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}
