package data

import (
	"io"
	"time"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// SnapshotReader parses candles from a stream into a snapshot
type SnapshotReader interface {
	Read(r io.Reader, meta types.SnapshotMeta) (*types.Snapshot, error)
}

// SnapshotCache holds parsed candle files keyed by path and modification time
type SnapshotCache interface {
	Get(path string, modTime time.Time) (*types.Snapshot, bool)
	Set(path string, modTime time.Time, snapshot *types.Snapshot)
	Clear()
	Size() int
}

// FileLocator finds the candle file of a connector, pair and interval
type FileLocator interface {
	FindDataFile(dataRoot, exchange, symbol, interval string) string
	ConvertIntervalToMinutes(interval string) string
}
