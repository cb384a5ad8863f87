package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

// MaxKlineLimit is the largest page the kline endpoint returns
const MaxKlineLimit = 1000

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
	Interval1M  KlineInterval = "M"
)

var intervals = map[string]KlineInterval{
	"1m":  Interval1m,
	"3m":  Interval3m,
	"5m":  Interval5m,
	"15m": Interval15m,
	"30m": Interval30m,
	"1h":  Interval1h,
	"2h":  Interval2h,
	"4h":  Interval4h,
	"6h":  Interval6h,
	"12h": Interval12h,
	"1d":  Interval1d,
	"1w":  Interval1w,
	"1M":  Interval1M,
}

// ParseInterval maps a candle interval such as "5m" or "1h" to Bybit's kline interval
func ParseInterval(interval string) (KlineInterval, error) {
	interval = strings.TrimSpace(interval)
	if k, ok := intervals[interval]; ok {
		return k, nil
	}
	// "1M" is a month, every other unit is case-insensitive
	if k, ok := intervals[strings.ToLower(interval)]; ok {
		return k, nil
	}
	return "", sigerrors.NewConfigurationError("bybit", "parse_interval",
		fmt.Sprintf("unsupported interval %q", interval))
}

// CloseTime returns when a candle opened at start closes
func (k KlineInterval) CloseTime(start time.Time) time.Time {
	switch k {
	case Interval1d:
		return start.AddDate(0, 0, 1)
	case Interval1w:
		return start.AddDate(0, 0, 7)
	case Interval1M:
		return start.AddDate(0, 1, 0)
	}
	minutes, err := strconv.Atoi(string(k))
	if err != nil {
		return start
	}
	return start.Add(time.Duration(minutes) * time.Minute)
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

func (p KlineParams) request() map[string]interface{} {
	params := map[string]interface{}{
		"category": p.Category,
		"symbol":   p.Symbol,
		"interval": string(p.Interval),
		"limit":    p.Limit,
	}
	if p.End != nil {
		params["end"] = p.End.UnixMilli()
	}
	return params
}

// GetKlines fetches candles from Bybit in ascending time order
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]types.OHLCV, error) {
	if params.Category == "" {
		params.Category = c.category
	}
	if params.Limit <= 0 {
		params.Limit = 200
	}
	if params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	var candles []types.OHLCV
	err := Retry(ctx, c.retry, func() error {
		result, err := c.httpClient.NewUtaBybitServiceWithParams(params.request()).GetMarketKline(ctx)
		if err != nil {
			return fmt.Errorf("failed to get klines: %w", err)
		}
		candles, err = parseKlineResponse(result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return candles, nil
}

// parseKlineResponse converts a kline response into ascending candles.
// Bybit lists the newest candle first.
func parseKlineResponse(response interface{}) ([]types.OHLCV, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return nil, fmt.Errorf("invalid response type %T", response)
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	candles := make([]types.OHLCV, 0, len(klineResult.List))
	for i := len(klineResult.List) - 1; i >= 0; i-- {
		candle, err := parseKlineRow(klineResult.List[i])
		if err != nil {
			return nil, sigerrors.NewDataError("bybit", "parse_klines", err.Error())
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKlineRow reads [startTime, open, high, low, close, volume, turnover]
func parseKlineRow(row []string) (types.OHLCV, error) {
	if len(row) < 6 {
		return types.OHLCV{}, fmt.Errorf("kline row has %d fields, expected at least 6", len(row))
	}

	start, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid start time %q", row[0])
	}

	var values [5]float64
	for i := range values {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q", klineFields[i], row[i+1])
		}
		values[i] = v
	}

	return types.OHLCV{
		Timestamp: time.UnixMilli(start).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

var klineFields = [5]string{types.ColumnOpen, types.ColumnHigh, types.ColumnLow, types.ColumnClose, types.ColumnVolume}

// KlineSource serves candle snapshots for one connector name backed by Bybit
type KlineSource struct {
	client    KlineFetcher
	connector string
	now       func() time.Time
}

// NewKlineSource creates a snapshot source; connector is recorded in every
// snapshot's metadata.
func NewKlineSource(client KlineFetcher, connector string) *KlineSource {
	if connector == "" {
		connector = "bybit"
	}
	return &KlineSource{client: client, connector: connector, now: time.Now}
}

// WithClock replaces the clock used to tell closed candles from the one
// still forming
func (s *KlineSource) WithClock(now func() time.Time) *KlineSource {
	s.now = now
	return s
}

// Name returns the connector name this source serves
func (s *KlineSource) Name() string {
	return s.connector
}

// GetSnapshot returns the most recent maxRecords closed candles for pair at
// interval. The kline list ends with the bar that is still forming; that
// bar is dropped so the latest row is always the last closed candle.
func (s *KlineSource) GetSnapshot(ctx context.Context, pair, interval string, maxRecords int) (*types.Snapshot, error) {
	klineInterval, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	if maxRecords <= 0 {
		maxRecords = types.DefaultMaxRecords
	}

	candles, err := s.client.GetKlines(ctx, KlineParams{
		Symbol:   symbol(pair),
		Interval: klineInterval,
		Limit:    maxRecords + 1,
	})
	if err != nil {
		return nil, toSignalError(err, pair, interval)
	}
	candles = dropOpenCandle(candles, klineInterval, s.now())

	meta := types.SnapshotMeta{Connector: s.connector, TradingPair: pair, Interval: interval}
	return types.NewSnapshotFromCandles(meta, candles, maxRecords)
}

// dropOpenCandle removes the trailing candle when it has not closed at now
func dropOpenCandle(candles []types.OHLCV, interval KlineInterval, now time.Time) []types.OHLCV {
	if len(candles) == 0 {
		return candles
	}
	last := candles[len(candles)-1]
	if interval.CloseTime(last.Timestamp).After(now) {
		return candles[:len(candles)-1]
	}
	return candles
}

// symbol turns "BTC-USDT" style pairs into Bybit symbols
func symbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pair), "-", ""))
}
