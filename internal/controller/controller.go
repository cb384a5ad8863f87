package controller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/internal/logger"
	"github.com/ducminhle1904/directional-signals/internal/monitoring"
	"github.com/ducminhle1904/directional-signals/internal/notifications"
	"github.com/ducminhle1904/directional-signals/internal/storage"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// CandleProvider supplies the candle snapshot of a connector and pair
type CandleProvider interface {
	GetSnapshot(ctx context.Context, connector, pair, interval string, maxRecords int) (*types.Snapshot, error)
}

// ProcessedData is what a controller exposes to the execution side after
// a cycle. It is replaced as a whole on every successful update.
type ProcessedData struct {
	Signal    int
	Intensity float64
	Features  *features.AnnotatedSeries
	Feature   *features.Feature
	Emitted   *features.Signal
	UpdatedAt time.Time
}

// DirectionalController evaluates one indicator family on one market
type DirectionalController struct {
	cfg       config.ControllerConfig
	calc      features.Calculator
	candles   CandleProvider
	publisher storage.Publisher
	notifier  notifications.Notifier
	health    *monitoring.HealthChecker
	logger    zerolog.Logger
	now       func() time.Time

	mu         sync.RWMutex
	processed  ProcessedData
	lastSignal time.Time
}

// Option configures a DirectionalController
type Option func(*DirectionalController)

// WithPublisher delivers every feature and emitted signal to p
func WithPublisher(p storage.Publisher) Option {
	return func(c *DirectionalController) { c.publisher = p }
}

// WithNotifier sends an alert for every newly emitted signal
func WithNotifier(n notifications.Notifier) Option {
	return func(c *DirectionalController) { c.notifier = n }
}

// WithHealth reports cycles to a health checker
func WithHealth(h *monitoring.HealthChecker) Option {
	return func(c *DirectionalController) { c.health = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *DirectionalController) { c.logger = l }
}

// New builds a controller from a resolved config
func New(cfg config.ControllerConfig, candles CandleProvider, opts ...Option) (*DirectionalController, error) {
	if cfg.Indicator == nil {
		if err := cfg.Resolve(); err != nil {
			return nil, err
		}
	}
	calc, err := features.New(cfg.Indicator)
	if err != nil {
		return nil, err
	}

	c := &DirectionalController{
		cfg:     cfg,
		calc:    calc,
		candles: candles,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.ForController(c.logger, cfg.ID, cfg.ConnectorName, cfg.TradingPair, cfg.Interval())
	if c.health != nil {
		c.health.Register(cfg.ID)
	}
	return c, nil
}

// ID returns the controller id
func (c *DirectionalController) ID() string {
	return c.cfg.ID
}

// Config returns the resolved controller config
func (c *DirectionalController) Config() config.ControllerConfig {
	return c.cfg
}

// Calculator returns the indicator family the controller runs
func (c *DirectionalController) Calculator() features.Calculator {
	return c.calc
}

// UpdateProcessedData runs one cycle: fetch candles, compute the annotated
// series, build the feature and optional signal, then publish them. The
// processed data is only replaced when evaluation succeeds; delivery
// failures are logged and returned but keep the new state.
func (c *DirectionalController) UpdateProcessedData(ctx context.Context) error {
	start := c.now()
	err := c.update(ctx)
	if c.health != nil {
		c.health.RecordCycle(c.cfg.ID, err)
	}
	if err != nil {
		sigErr := sigerrors.CategorizeError(err, "controller", "update")
		monitoring.RecordEvaluationFailure(c.cfg.ID, string(sigErr.Category))
		monitoring.RecordError(string(sigErr.Category))
		c.logger.Error().Err(err).Str("category", string(sigErr.Category)).Msg("Cycle failed")
		return err
	}
	c.logger.Debug().Dur("took", c.now().Sub(start)).Msg("Cycle complete")
	return nil
}

func (c *DirectionalController) update(ctx context.Context) error {
	snapshot, err := c.candles.GetSnapshot(ctx, c.cfg.CandlesConnector, c.cfg.CandlesTradingPair, c.cfg.Interval(), c.cfg.MaxRecords)
	if err != nil {
		return err
	}
	// Features are reported under the controller's market, not the candle source's
	if meta := snapshot.Meta(); meta.Connector != c.cfg.ConnectorName || meta.TradingPair != c.cfg.TradingPair {
		snapshot, err = relabel(snapshot, types.SnapshotMeta{
			Connector:   c.cfg.ConnectorName,
			TradingPair: c.cfg.TradingPair,
			Interval:    c.cfg.Interval(),
		})
		if err != nil {
			return err
		}
	}

	if step, err := IntervalDuration(c.cfg.Interval()); err == nil {
		if gaps := snapshot.Gaps(step); len(gaps) > 0 {
			c.logger.Warn().Str("controller", c.cfg.ID).Int("gaps", len(gaps)).
				Time("first", snapshot.Timestamps()[gaps[0]]).Msg("Candles are not evenly spaced")
		}
	}

	began := time.Now()
	series, err := c.calc.Compute(snapshot)
	if err != nil {
		return err
	}
	took := time.Since(began)

	eval := series.Evaluation()
	feature := c.calc.FeatureFromSeries(series)
	signal := c.calc.SignalFromSeries(series, c.cfg.MinIntensity)
	monitoring.RecordEvaluation(c.cfg.ID, string(c.calc.Kind()), int(eval.Direction), eval.Intensity, took)

	c.mu.Lock()
	c.processed = ProcessedData{
		Signal:    int(eval.Direction),
		Intensity: eval.Intensity,
		Features:  series,
		Feature:   feature,
		Emitted:   signal,
		UpdatedAt: c.now(),
	}
	fresh := signal != nil && signal.Timestamp.After(c.lastSignal)
	if fresh {
		c.lastSignal = signal.Timestamp
	}
	c.mu.Unlock()

	c.logger.Info().
		Int("signal", int(eval.Direction)).
		Float64("intensity", eval.Intensity).
		Int("rows", series.Len()).
		Msg("Processed data updated")

	return c.deliver(ctx, feature, signal, fresh)
}

func (c *DirectionalController) deliver(ctx context.Context, feature *features.Feature, signal *features.Signal, fresh bool) error {
	var deliveryErr error
	if c.publisher != nil {
		if err := c.publisher.PublishFeature(ctx, *feature); err != nil {
			c.logger.Warn().Err(err).Msg("Feature delivery failed")
			deliveryErr = err
		}
	}
	if !fresh {
		return deliveryErr
	}

	monitoring.RecordSignal(signal.SignalName, signal.Value)
	c.logger.Info().
		Str("signal_name", signal.SignalName).
		Float64("value", signal.Value).
		Time("bar", signal.Timestamp).
		Msg("Signal emitted")

	if c.publisher != nil {
		if err := c.publisher.PublishSignal(ctx, *signal); err != nil {
			c.logger.Warn().Err(err).Msg("Signal delivery failed")
			deliveryErr = err
		}
	}
	if c.notifier != nil {
		price := feature.Value[features.ValuePrice]
		if err := c.notifier.SendAlert(ctx, notifications.SignalAlert(*signal, c.cfg.ConnectorName, price)); err != nil {
			c.logger.Warn().Err(err).Msg("Signal notification failed")
			deliveryErr = err
		}
	}
	return deliveryErr
}

// ProcessedData returns the state of the last successful cycle
func (c *DirectionalController) ProcessedData() ProcessedData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processed
}

// Signal returns the discrete direction of the last successful cycle
func (c *DirectionalController) Signal() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processed.Signal
}

func relabel(snapshot *types.Snapshot, meta types.SnapshotMeta) (*types.Snapshot, error) {
	names := snapshot.ColumnNames()
	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		values, err := snapshot.Column(name)
		if err != nil {
			return nil, err
		}
		columns[name] = values
	}
	return types.NewSnapshot(meta, snapshot.Timestamps(), columns, 0)
}
