package storage

import (
	"context"
	"errors"

	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/internal/monitoring"
)

// Publisher delivers features and signals to a sink
type Publisher interface {
	Name() string
	PublishFeature(ctx context.Context, feature features.Feature) error
	PublishSignal(ctx context.Context, signal features.Signal) error
	Close() error
}

// MultiPublisher fans out to every sink. A failing sink does not stop the
// others; the joined error reports all failures.
type MultiPublisher struct {
	sinks []Publisher
}

// NewMultiPublisher creates a fan-out over sinks
func NewMultiPublisher(sinks ...Publisher) *MultiPublisher {
	return &MultiPublisher{sinks: sinks}
}

// Add appends a sink
func (m *MultiPublisher) Add(sink Publisher) {
	m.sinks = append(m.sinks, sink)
}

// Len returns the number of sinks
func (m *MultiPublisher) Len() int {
	return len(m.sinks)
}

func (m *MultiPublisher) Name() string { return "multi" }

func (m *MultiPublisher) PublishFeature(ctx context.Context, feature features.Feature) error {
	var errs []error
	for _, sink := range m.sinks {
		err := sink.PublishFeature(ctx, feature)
		monitoring.RecordDelivery(sink.Name(), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) PublishSignal(ctx context.Context, signal features.Signal) error {
	var errs []error
	for _, sink := range m.sinks {
		err := sink.PublishSignal(ctx, signal)
		monitoring.RecordDelivery(sink.Name(), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
