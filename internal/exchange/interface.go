package exchange

import (
	"context"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// CandleSource serves candle snapshots for one connector
type CandleSource interface {
	Name() string
	GetSnapshot(ctx context.Context, pair, interval string, maxRecords int) (*types.Snapshot, error)
}
