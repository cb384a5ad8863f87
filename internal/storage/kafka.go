package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/internal/features"
)

// Message types carried in the Kafka envelope
const (
	MessageFeature = "feature"
	MessageSignal  = "signal"
)

// Envelope is the JSON value of every Kafka message
type Envelope struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Sent    time.Time       `json:"sent"`
	Payload json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig holds producer settings
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	BatchTimeout time.Duration
}

// KafkaOption configures a KafkaPublisher
type KafkaOption func(*KafkaConfig)

func WithKafkaBrokers(brokers ...string) KafkaOption {
	return func(c *KafkaConfig) { c.Brokers = brokers }
}

func WithKafkaTopic(topic string) KafkaOption {
	return func(c *KafkaConfig) { c.Topic = topic }
}

func WithKafkaCompression(compression string) KafkaOption {
	return func(c *KafkaConfig) { c.Compression = compression }
}

// KafkaPublisher streams features and signals to one topic keyed by
// trading pair, so all messages of a pair land on one partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher creates a synchronous producer
func NewKafkaPublisher(opts ...KafkaOption) (*KafkaPublisher, error) {
	cfg := &KafkaConfig{
		Topic:        "directional-signals",
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, sigerrors.NewConfigurationError("kafka", "new_publisher", "brokers are required")
	}
	if cfg.Topic == "" {
		return nil, sigerrors.NewConfigurationError("kafka", "new_publisher", "topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
	}
	return newKafkaPublisher(writer, cfg.Topic), nil
}

func newKafkaPublisher(writer messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) PublishFeature(ctx context.Context, feature features.Feature) error {
	key := FeatureKey(feature.ConnectorName, feature.TradingPair, feature.FeatureName)
	return p.publish(ctx, MessageFeature, feature.TradingPair, key, feature)
}

func (p *KafkaPublisher) PublishSignal(ctx context.Context, signal features.Signal) error {
	key := SignalKey(signal.TradingPair, signal.SignalName)
	return p.publish(ctx, MessageSignal, signal.TradingPair, key, signal)
}

func (p *KafkaPublisher) publish(ctx context.Context, kind, pair, key string, payload interface{}) error {
	msg, err := p.encode(kind, pair, key, payload)
	if err != nil {
		return sigerrors.NewDeliveryError("kafka", "publish_"+kind, err).WithRetryable(false)
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return sigerrors.NewDeliveryError("kafka", "publish_"+kind, err).WithContext("topic", p.topic)
	}
	return nil
}

func (p *KafkaPublisher) encode(kind, pair, key string, payload interface{}) (kafka.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", kind, err)
	}
	sent := p.now().UTC()
	value, err := json.Marshal(Envelope{Type: kind, Key: key, Sent: sent, Payload: body})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal envelope: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strings.ToUpper(pair)),
		Value: value,
		Time:  sent,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(kind)},
		},
	}, nil
}

// Close flushes pending messages and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}
