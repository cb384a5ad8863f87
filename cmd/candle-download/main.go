package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/directional-signals/cmd/common"
	"github.com/ducminhle1904/directional-signals/internal/exchange/bybit"
	"github.com/ducminhle1904/directional-signals/internal/logger"
	"github.com/ducminhle1904/directional-signals/pkg/data"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

const appName = "candle-download"

// historyClient downloads a closed range of candles for one category
type historyClient interface {
	DownloadHistory(ctx context.Context, params bybit.HistoryParams, progress func(int)) ([]types.OHLCV, error)
}

type job struct {
	category string
	symbol   string
	interval string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)

	symbols := fs.String("symbols", "BTCUSDT", "Comma-separated trading pairs")
	intervals := fs.String("intervals", "1m", "Comma-separated candle intervals (1m, 5m, 1h, 4h, 1d, ...)")
	categories := fs.String("categories", "linear", "Comma-separated market categories (spot, linear, inverse)")
	outDir := fs.String("outdir", "data", "Data root; files go to {outdir}/bybit/{category}/{pair}/{minutes}/candles.csv")
	start := fs.String("start", "", "First candle (YYYY-MM-DD or RFC3339, default one year before -end)")
	end := fs.String("end", "", "Last candle (YYYY-MM-DD or RFC3339, default now)")
	limit := fs.Int("limit", bybit.MaxKlineLimit, "Candles per request")
	pause := fs.Duration("pause", 500*time.Millisecond, "Wait between requests")
	testnet := fs.Bool("testnet", false, "Use the Bybit testnet")

	formatter := common.NewUsageFormatter(appName, "Download Bybit candles into the local data layout").
		AddExample(appName+" -symbols BTCUSDT,ETHUSDT -intervals 1m,5m -start 2024-01-01", "Two pairs at two intervals since January").
		AddExample(appName+" -categories spot -intervals 1h -outdir data", "One year of hourly spot candles")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(appName, flags, fs, formatter) {
		return nil
	}

	validator := common.NewFlagValidator().ValidateInt("limit", *limit, 1, bybit.MaxKlineLimit)
	jobs, err := buildJobs(*symbols, *intervals, *categories)
	if err != nil {
		validator.AddError(err.Error())
	}
	from, to, err := dateRange(*start, *end, time.Now().UTC())
	if err != nil {
		validator.AddError(err.Error())
	}
	if err := validator.GetError(); err != nil {
		return err
	}

	level := "info"
	if *flags.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, "console", level)

	ctx, cancel := common.SignalContext(context.Background())
	defer cancel()

	// Downloads issue many requests against the public rate limit
	retry := bybit.DefaultRetryConfig()
	retry.MaxRetries = 6
	retry.MaxDelay = 30 * time.Second
	clients := func(category string) historyClient {
		return bybit.NewClient(bybit.Config{Testnet: *testnet, Category: category}).WithRetryConfig(retry)
	}
	return downloadAll(ctx, clients, jobs, *outDir, from, to, *limit, *pause, log)
}

// buildJobs expands the comma lists into every category, symbol and
// interval combination.
func buildJobs(symbols, intervals, categories string) ([]job, error) {
	symList := splitList(symbols, strings.ToUpper)
	intList := splitList(intervals, strings.TrimSpace)
	catList := splitList(categories, strings.ToLower)
	if len(symList) == 0 || len(intList) == 0 || len(catList) == 0 {
		return nil, errors.New("-symbols, -intervals and -categories must not be empty")
	}
	for _, interval := range intList {
		if _, err := bybit.ParseInterval(interval); err != nil {
			return nil, err
		}
	}

	var jobs []job
	for _, category := range catList {
		for _, symbol := range symList {
			for _, interval := range intList {
				jobs = append(jobs, job{category: category, symbol: symbol, interval: interval})
			}
		}
	}
	return jobs, nil
}

func splitList(s string, fold func(string) string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := fold(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// dateRange resolves -start and -end; a missing end is now and a missing
// start is one year before the end.
func dateRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	from, err := common.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := common.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 0)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("-start %s is not before -end %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}

// downloadAll runs every job in turn. A failed job is logged and skipped;
// the failures are returned together once all jobs ran.
func downloadAll(ctx context.Context, clients func(category string) historyClient, jobs []job, outDir string, from, to time.Time, limit int, pause time.Duration, log zerolog.Logger) error {
	log.Info().
		Int("jobs", len(jobs)).
		Time("from", from).
		Time("to", to).
		Str("outdir", outDir).
		Msg("🚀 Downloading Bybit candles")

	var errs []error
	written := 0
	for _, j := range jobs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		jobLog := log.With().Str("category", j.category).Str("symbol", j.symbol).Str("interval", j.interval).Logger()

		interval, _ := bybit.ParseInterval(j.interval)
		candles, err := clients(j.category).DownloadHistory(ctx, bybit.HistoryParams{
			Category: j.category,
			Symbol:   j.symbol,
			Interval: interval,
			Start:    from,
			End:      to,
			Limit:    limit,
			Pause:    pause,
		}, func(n int) {
			jobLog.Debug().Int("candles", n).Msg("page received")
		})
		if err != nil {
			jobLog.Error().Err(err).Msg("❌ Download failed")
			errs = append(errs, fmt.Errorf("%s %s %s: %w", j.category, j.symbol, j.interval, err))
			continue
		}

		path := data.CandlePath(outDir, "bybit", j.category, j.symbol, j.interval)
		if err := data.WriteCandlesCSV(path, candles); err != nil {
			jobLog.Error().Err(err).Msg("❌ Save failed")
			errs = append(errs, err)
			continue
		}
		written++

		event := jobLog.Info().Int("candles", len(candles)).Str("path", path)
		if len(candles) > 0 {
			event = event.Time("first", candles[0].Timestamp).Time("last", candles[len(candles)-1].Timestamp)
		}
		event.Msg("💾 Candles saved")
	}

	log.Info().Int("written", written).Int("failed", len(errs)).Msg("🎉 Downloads finished")
	return errors.Join(errs...)
}
