package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/directional-signals/internal/controller"
	"github.com/ducminhle1904/directional-signals/internal/exchange"
	"github.com/ducminhle1904/directional-signals/internal/monitoring"
	"github.com/ducminhle1904/directional-signals/internal/notifications"
	"github.com/ducminhle1904/directional-signals/internal/storage"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/data"
	"github.com/ducminhle1904/directional-signals/pkg/reporting"
)

// SignalBot owns the controllers of one process and the collaborators
// they share.
type SignalBot struct {
	controllers []*controller.DirectionalController
	sources     *exchange.Sources
	publisher   *storage.MultiPublisher
	memory      *storage.MemoryStore
	health      *monitoring.HealthChecker
	server      *http.Server
	logger      zerolog.Logger
}

// Options are the command line settings the bot is built from
type Options struct {
	DataRoot      string
	DataConnector string
	NoBybit       bool
	StaleAfter    time.Duration
}

// NewSignalBot wires sources, sinks and notifier for every controller
func NewSignalBot(app *config.AppConfig, file *config.File, opts Options, logger zerolog.Logger) (*SignalBot, error) {
	sources := buildSources(app, opts, logger)

	memory := storage.NewMemoryStore(100)
	publisher, err := buildPublisher(app, memory, logger)
	if err != nil {
		return nil, err
	}

	notifier := buildNotifier(app, logger)
	health := monitoring.NewHealthChecker(opts.StaleAfter)

	bot := &SignalBot{
		sources:   sources,
		publisher: publisher,
		memory:    memory,
		health:    health,
		logger:    logger,
	}

	for _, cfg := range file.Controllers {
		copts := []controller.Option{
			controller.WithPublisher(publisher),
			controller.WithHealth(health),
			controller.WithLogger(logger),
		}
		if notifier != nil {
			copts = append(copts, controller.WithNotifier(notifier))
		}
		c, err := controller.New(cfg, sources, copts...)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("controller %s: %w", cfg.ID, err)
		}
		bot.controllers = append(bot.controllers, c)
	}

	if app.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.MetricsHandler())
		mux.Handle("/health", health)
		bot.server = &http.Server{
			Addr:              app.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return bot, nil
}

func buildSources(app *config.AppConfig, opts Options, logger zerolog.Logger) *exchange.Sources {
	sources := exchange.NewSources()
	if !opts.NoBybit {
		sources.Register(exchange.NewBybitSource(app.Bybit))
	}
	if opts.DataRoot != "" {
		sources.Register(data.NewFileSource(opts.DataConnector, opts.DataRoot, logger))
	}
	logger.Info().Strs("connectors", sources.Connectors()).Msg("Candle sources ready")
	return sources
}

// buildPublisher always keeps the in-process store and adds Redis and
// Kafka when they are configured.
func buildPublisher(app *config.AppConfig, memory *storage.MemoryStore, logger zerolog.Logger) (*storage.MultiPublisher, error) {
	publisher := storage.NewMultiPublisher(memory)

	if app.Redis.Enabled() {
		store, err := storage.NewRedisStore(
			storage.WithRedisAddr(app.Redis.Addr),
			storage.WithRedisAuth(app.Redis.Password, app.Redis.DB),
			storage.WithRedisPrefix(app.Redis.Prefix),
			storage.WithSignalHistory(app.Redis.History),
		)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		publisher.Add(store)
		logger.Info().Str("addr", app.Redis.Addr).Str("channel", store.Channel()).Msg("Redis store enabled")
	}

	if app.Kafka.Enabled() {
		writer, err := storage.NewKafkaPublisher(
			storage.WithKafkaBrokers(app.Kafka.Brokers...),
			storage.WithKafkaTopic(app.Kafka.Topic),
		)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		publisher.Add(writer)
		logger.Info().Strs("brokers", app.Kafka.Brokers).Str("topic", app.Kafka.Topic).Msg("Kafka stream enabled")
	}
	return publisher, nil
}

func buildNotifier(app *config.AppConfig, logger zerolog.Logger) notifications.Notifier {
	if !app.Telegram.Enabled() {
		logger.Info().Msg("Telegram notifications disabled (no token configured)")
		return nil
	}
	return notifications.NewTelegramNotifier(app.Telegram.Token, app.Telegram.ChatID, app.Telegram.ParseMode, logger).
		WithSilent(app.Telegram.Silent)
}

// Run serves metrics and drives the controllers until ctx is done
func (b *SignalBot) Run(ctx context.Context) error {
	if b.server != nil {
		go func() {
			b.logger.Info().Str("addr", b.server.Addr).Msg("Metrics server listening")
			if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				b.logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}
	return controller.NewRunner(b.logger, b.controllers...).Run(ctx)
}

// RunOnce evaluates every controller a single time and prints its feature
func (b *SignalBot) RunOnce(ctx context.Context, console *reporting.ConsoleReporter) error {
	var errs []error
	for _, c := range b.controllers {
		if err := c.UpdateProcessedData(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.ID(), err))
		}
		if feature := c.ProcessedData().Feature; feature != nil {
			console.PrintFeature(feature)
		}
	}
	return errors.Join(errs...)
}

// PrintSessionSignals prints the signals emitted by every controller
func (b *SignalBot) PrintSessionSignals(console *reporting.ConsoleReporter) {
	for _, c := range b.controllers {
		cfg := c.Config()
		console.PrintSignals(b.memory.Signals(cfg.TradingPair, c.Calculator().SignalName(), 20))
	}
}

// Shutdown stops the metrics server and closes the sinks
func (b *SignalBot) Shutdown(ctx context.Context) error {
	var errs []error
	if b.server != nil {
		if err := b.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
