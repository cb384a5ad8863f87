package data

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// FileSource serves snapshots for one connector from CSV files laid out as
// {root}/{connector}/{category}/{symbol}/{interval minutes}/candles.csv.
// Parsed files are cached until their modification time changes.
type FileSource struct {
	connector string
	root      string
	provider  *CSVProvider
	locator   FileLocator
	cache     SnapshotCache
	logger    zerolog.Logger
}

// NewFileSource creates a file-backed candle source for connector
func NewFileSource(connector, root string, logger zerolog.Logger) *FileSource {
	return &FileSource{
		connector: connector,
		root:      root,
		provider:  NewCSVProvider(logger),
		locator:   NewDefaultFileLocator(),
		cache:     NewFileCache(),
		logger:    logger,
	}
}

// Name returns the connector name this source serves
func (s *FileSource) Name() string {
	return s.connector
}

// GetSnapshot loads the candle file for pair and interval and returns its
// most recent maxRecords rows.
func (s *FileSource) GetSnapshot(ctx context.Context, pair, interval string, maxRecords int) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.locator.FindDataFile(s.root, s.connector, pair, interval)
	if path == "" {
		return nil, sigerrors.NewSignalError(sigerrors.ErrorCategorySource, "csv", "get_snapshot",
			fmt.Sprintf("no data file for %s %s %s under %s", s.connector, pair, interval, s.root)).
			WithRetryable(false)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, sigerrors.NewSourceError("csv", "stat", err)
	}
	snapshot, ok := s.cache.Get(path, info.ModTime())
	if !ok {
		meta := types.SnapshotMeta{Connector: s.connector, TradingPair: pair, Interval: interval}
		snapshot, err = s.provider.Load(path, meta)
		if err != nil {
			return nil, err
		}
		s.cache.Set(path, info.ModTime(), snapshot)
		s.logger.Debug().Str("path", path).Int("rows", snapshot.Len()).Msg("Loaded candle file")
	}

	if maxRecords > 0 && snapshot.Len() > maxRecords {
		return trimTo(snapshot, maxRecords)
	}
	return snapshot, nil
}

func trimTo(snapshot *types.Snapshot, maxRecords int) (*types.Snapshot, error) {
	timestamps := snapshot.Timestamps()
	return FilterByDateRange(snapshot, timestamps[len(timestamps)-maxRecords], time.Time{})
}
