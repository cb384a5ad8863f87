package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/internal/exchange/bybit"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// Sources routes snapshot requests to the candle source registered for a
// connector name. It is safe for concurrent use.
type Sources struct {
	mu      sync.RWMutex
	sources map[string]CandleSource
}

// NewSources creates a router over the given sources
func NewSources(sources ...CandleSource) *Sources {
	s := &Sources{sources: make(map[string]CandleSource)}
	for _, src := range sources {
		s.Register(src)
	}
	return s
}

// Register adds or replaces the source for src.Name()
func (s *Sources) Register(src CandleSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[normalize(src.Name())] = src
}

// Connectors returns the registered connector names, sorted
func (s *Sources) Connectors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSnapshot fetches candles from the source registered for connector
func (s *Sources) GetSnapshot(ctx context.Context, connector, pair, interval string, maxRecords int) (*types.Snapshot, error) {
	s.mu.RLock()
	src, ok := s.sources[normalize(connector)]
	s.mu.RUnlock()
	if !ok {
		return nil, sigerrors.NewConfigurationError("exchange", "get_snapshot",
			fmt.Sprintf("no candle source for connector %q (available: %s)", connector, strings.Join(s.Connectors(), ", ")))
	}
	return src.GetSnapshot(ctx, pair, interval, maxRecords)
}

// NewBybitSource creates the Bybit kline source from application config
func NewBybitSource(cfg config.BybitConfig) CandleSource {
	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		Testnet:   cfg.Testnet,
		Category:  cfg.Category,
	})
	return bybit.NewKlineSource(client, "bybit")
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
