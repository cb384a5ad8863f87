package storage

import (
	"context"
	"sync"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

// MemoryStore keeps the latest feature per key and a bounded signal
// history per key in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	features map[string]features.Feature
	signals  map[string][]features.Signal
	history  int
}

// NewMemoryStore creates a store keeping up to history signals per key
func NewMemoryStore(history int) *MemoryStore {
	return &MemoryStore{
		features: make(map[string]features.Feature),
		signals:  make(map[string][]features.Signal),
		history:  history,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) PublishFeature(_ context.Context, feature features.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[FeatureKey(feature.ConnectorName, feature.TradingPair, feature.FeatureName)] = feature
	return nil
}

func (s *MemoryStore) PublishSignal(_ context.Context, signal features.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := SignalKey(signal.TradingPair, signal.SignalName)
	// newest first
	history := append([]features.Signal{signal}, s.signals[key]...)
	if s.history > 0 && len(history) > s.history {
		history = history[:s.history]
	}
	s.signals[key] = history
	return nil
}

// LatestFeature returns the last feature stored for the key
func (s *MemoryStore) LatestFeature(connector, pair, featureName string) (features.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.features[FeatureKey(connector, pair, featureName)]
	return f, ok
}

// Signals returns up to limit stored signals, newest first
func (s *MemoryStore) Signals(pair, signalName string, limit int) []features.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.signals[SignalKey(pair, signalName)]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return append([]features.Signal(nil), history...)
}

func (s *MemoryStore) Close() error { return nil }
