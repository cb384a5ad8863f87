package bybit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// pagedKlines serves minute candles the way the kline endpoint pages them:
// the newest limit candles at or before End, ascending.
type pagedKlines struct {
	candles []types.OHLCV
	calls   int
	err     error
}

func newPagedKlines(start time.Time, n int) *pagedKlines {
	p := &pagedKlines{}
	for i := 0; i < n; i++ {
		c := float64(100 + i)
		p.candles = append(p.candles, types.OHLCV{
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
		})
	}
	return p
}

func (p *pagedKlines) GetKlines(_ context.Context, params KlineParams) ([]types.OHLCV, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	to := 0
	for to < len(p.candles) && !p.candles[to].Timestamp.After(*params.End) {
		to++
	}
	from := to - params.Limit
	if from < 0 {
		from = 0
	}
	return p.candles[from:to], nil
}

func TestDownloadHistory_PagesBackwards(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := newPagedKlines(t0, 25)

	var progress []int
	candles, err := downloadHistory(context.Background(), fetcher, HistoryParams{
		Symbol:   "BTCUSDT",
		Interval: Interval1m,
		Start:    t0.Add(2 * time.Minute),
		End:      t0.Add(24 * time.Minute),
		Limit:    10,
	}, func(n int) { progress = append(progress, n) })
	require.NoError(t, err)

	require.Len(t, candles, 23)
	assert.Equal(t, t0.Add(2*time.Minute), candles[0].Timestamp)
	assert.Equal(t, t0.Add(24*time.Minute), candles[22].Timestamp)
	for i := 1; i < len(candles); i++ {
		assert.True(t, candles[i].Timestamp.After(candles[i-1].Timestamp))
	}
	assert.Equal(t, 3, fetcher.calls)
	assert.Equal(t, []int{10, 20, 23}, progress)
}

func TestDownloadHistory_StopsOnEmptyPage(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := newPagedKlines(t0.Add(time.Hour), 5)

	candles, err := downloadHistory(context.Background(), fetcher, HistoryParams{
		Symbol:   "BTCUSDT",
		Interval: Interval1m,
		Start:    t0,
		End:      t0.Add(30 * time.Minute),
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, candles)
	assert.Equal(t, 1, fetcher.calls)
}

func TestDownloadHistory_Error(t *testing.T) {
	fetcher := &pagedKlines{err: errors.New("connection reset")}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := downloadHistory(context.Background(), fetcher, HistoryParams{
		Symbol:   "BTCUSDT",
		Interval: Interval1m,
		Start:    t0,
		End:      t0.Add(time.Hour),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
