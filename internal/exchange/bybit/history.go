package bybit

import (
	"context"
	"time"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// KlineFetcher is the subset of Client used by KlineSource and history paging
type KlineFetcher interface {
	GetKlines(ctx context.Context, params KlineParams) ([]types.OHLCV, error)
}

// HistoryParams selects a closed time range of candles
type HistoryParams struct {
	Category string
	Symbol   string
	Interval KlineInterval
	Start    time.Time
	End      time.Time
	Limit    int           // page size, capped at MaxKlineLimit
	Pause    time.Duration // wait between pages
}

// DownloadHistory pages backwards from End until Start and returns the
// candles with Start <= timestamp <= End, oldest first. progress, when
// set, is called with the running count after every page.
func (c *Client) DownloadHistory(ctx context.Context, params HistoryParams, progress func(int)) ([]types.OHLCV, error) {
	return downloadHistory(ctx, c, params, progress)
}

func downloadHistory(ctx context.Context, client KlineFetcher, params HistoryParams, progress func(int)) ([]types.OHLCV, error) {
	if params.Limit <= 0 || params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	var pages [][]types.OHLCV
	count := 0
	cursor := params.End
	for cursor.After(params.Start) {
		end := cursor
		page, err := client.GetKlines(ctx, KlineParams{
			Category: params.Category,
			Symbol:   params.Symbol,
			Interval: params.Interval,
			End:      &end,
			Limit:    params.Limit,
		})
		if err != nil {
			return nil, toSignalError(err, params.Symbol, string(params.Interval))
		}
		if len(page) == 0 {
			break
		}

		kept := make([]types.OHLCV, 0, len(page))
		for _, candle := range page {
			if candle.Timestamp.Before(params.Start) || candle.Timestamp.After(params.End) {
				continue
			}
			kept = append(kept, candle)
		}
		pages = append(pages, kept)
		count += len(kept)
		if progress != nil {
			progress(count)
		}

		oldest := page[0].Timestamp
		if !oldest.After(params.Start) || !oldest.Before(cursor) {
			break
		}
		cursor = oldest.Add(-time.Millisecond)

		if params.Pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(params.Pause):
			}
		}
	}

	// Pages arrive newest first; each page is already ascending
	candles := make([]types.OHLCV, 0, count)
	for i := len(pages) - 1; i >= 0; i-- {
		candles = append(candles, pages[i]...)
	}
	return candles, nil
}
