package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// AppConfig holds process settings read from the environment
type AppConfig struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:"stdout"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Bybit    BybitConfig
	Telegram TelegramConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// BybitConfig selects the Bybit market data endpoint
type BybitConfig struct {
	APIKey    string `envconfig:"BYBIT_API_KEY"`
	APISecret string `envconfig:"BYBIT_API_SECRET"`
	Testnet   bool   `envconfig:"BYBIT_TESTNET" default:"false"`
	Category  string `envconfig:"BYBIT_CATEGORY" default:"linear"`
}

// TelegramConfig configures signal notifications; empty token disables them
type TelegramConfig struct {
	Token     string `envconfig:"TELEGRAM_TOKEN"`
	ChatID    string `envconfig:"TELEGRAM_CHAT_ID"`
	ParseMode string `envconfig:"TELEGRAM_PARSE_MODE" default:"HTML"`
	Silent    bool   `envconfig:"TELEGRAM_SILENT" default:"false"`
}

// RedisConfig configures the feature store; empty address disables it
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Prefix   string `envconfig:"REDIS_PREFIX" default:"signals"`
	History  int64  `envconfig:"REDIS_SIGNAL_HISTORY" default:"500"`
}

// KafkaConfig configures the feature stream; no brokers disables it
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"directional-signals"`
}

// Enabled reports whether notifications are configured
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != ""
}

// Enabled reports whether the Redis store is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Enabled reports whether the Kafka stream is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// LoadAppConfig loads an optional .env file and then reads the environment.
// Variables already set in the environment win over the file.
func LoadAppConfig(envFiles ...string) (*AppConfig, error) {
	_ = godotenv.Load(envFiles...)

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, "config", "environment")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	return &cfg, nil
}
