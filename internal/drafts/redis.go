package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps drafts as JSON values that expire after the TTL.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL sets how long an untouched draft is kept.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, logger *zap.Logger, opts ...RedisOption) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RedisStore{
		client: client,
		logger: logger,
		prefix: constants.DefaultDraftKeyPrefix,
		ttl:    constants.DefaultDraftTTLHours * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient connects to the configured server and verifies the
// connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save stores the draft and resets its expiry.
func (s *RedisStore) Save(ctx context.Context, sessionID string, draft *planner.AssetPlan) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		s.logger.Error("failed to save draft",
			zap.String("op", "drafts.RedisStore.Save"),
			zap.String("session", sessionID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
	}
	return nil
}

// Load returns the session's draft.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*planner.AssetPlan, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		s.logger.Error("failed to load draft",
			zap.String("op", "drafts.RedisStore.Load"),
			zap.String("session", sessionID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
	}

	var draft planner.AssetPlan
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", sessionID, err)
	}
	return &draft, nil
}

// Delete discards the session's draft.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
	}
	return nil
}
