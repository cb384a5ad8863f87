package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/internal/features"
)

// ErrNotFound is returned when no feature is stored for a key
var ErrNotFound = errors.New("storage: not found")

// RedisConfig holds Redis store settings
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	History     int64
	PoolSize    int
	DialTimeout time.Duration
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisConfig)

func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) { c.Addr = addr }
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
		c.DB = db
	}
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) { c.Prefix = prefix }
}

func WithRedisDialTimeout(d time.Duration) RedisOption {
	return func(c *RedisConfig) { c.DialTimeout = d }
}

// WithSignalHistory caps the stored signals per key
func WithSignalHistory(n int64) RedisOption {
	return func(c *RedisConfig) { c.History = n }
}

// RedisStore keeps the latest feature per market as a JSON string and the
// signal history per pair as a capped list, newest first. Every stored
// signal is also published on the "{prefix}:signals" channel.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	history int64
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Addr:        "localhost:6379",
		Prefix:      "signals",
		History:     500,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, sigerrors.WrapError(fmt.Errorf("redis ping: %w", err), sigerrors.ErrorCategoryNetwork, "redis", "connect")
	}

	return &RedisStore{client: client, prefix: cfg.Prefix, history: cfg.History}, nil
}

func (s *RedisStore) Name() string { return "redis" }

// PublishFeature overwrites the latest feature for its market
func (s *RedisStore) PublishFeature(ctx context.Context, feature features.Feature) error {
	data, err := json.Marshal(feature)
	if err != nil {
		return sigerrors.NewDeliveryError("redis", "publish_feature", err).WithRetryable(false)
	}
	key := s.featureKey(FeatureKey(feature.ConnectorName, feature.TradingPair, feature.FeatureName))
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return sigerrors.NewDeliveryError("redis", "publish_feature", err).WithContext("key", key)
	}
	return nil
}

// PublishSignal prepends the signal to its history and announces it
func (s *RedisStore) PublishSignal(ctx context.Context, signal features.Signal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return sigerrors.NewDeliveryError("redis", "publish_signal", err).WithRetryable(false)
	}
	key := s.signalKey(SignalKey(signal.TradingPair, signal.SignalName))

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		if s.history > 0 {
			pipe.LTrim(ctx, key, 0, s.history-1)
		}
		pipe.Publish(ctx, s.Channel(), data)
		return nil
	})
	if err != nil {
		return sigerrors.NewDeliveryError("redis", "publish_signal", err).WithContext("key", key)
	}
	return nil
}

// LatestFeature reads the last stored feature for a market
func (s *RedisStore) LatestFeature(ctx context.Context, connector, pair, featureName string) (features.Feature, error) {
	var feature features.Feature
	data, err := s.client.Get(ctx, s.featureKey(FeatureKey(connector, pair, featureName))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return feature, ErrNotFound
		}
		return feature, err
	}
	err = json.Unmarshal(data, &feature)
	return feature, err
}

// Signals reads up to limit stored signals, newest first
func (s *RedisStore) Signals(ctx context.Context, pair, signalName string, limit int64) ([]features.Signal, error) {
	if limit <= 0 {
		limit = s.history
	}
	raw, err := s.client.LRange(ctx, s.signalKey(SignalKey(pair, signalName)), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	return decodeSignals(raw)
}

// Channel is the pub/sub channel signals are announced on
func (s *RedisStore) Channel() string {
	return s.prefix + ":signals"
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) featureKey(key string) string {
	return fmt.Sprintf("%s:feature:%s", s.prefix, key)
}

func (s *RedisStore) signalKey(key string) string {
	return fmt.Sprintf("%s:signal:%s", s.prefix, key)
}

func decodeSignals(raw []string) ([]features.Signal, error) {
	signals := make([]features.Signal, 0, len(raw))
	for _, item := range raw {
		var signal features.Signal
		if err := json.Unmarshal([]byte(item), &signal); err != nil {
			return nil, fmt.Errorf("decode signal: %w", err)
		}
		signals = append(signals, signal)
	}
	return signals, nil
}
