package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ducminhle1904/directional-signals/cmd/common"
	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/internal/logger"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/data"
	"github.com/ducminhle1904/directional-signals/pkg/reporting"
	"github.com/ducminhle1904/directional-signals/pkg/types"
)

const appName = "signal-replay"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)

	configPath := fs.String("config", "", "Controller file; replays the controller chosen with -id")
	id := fs.String("id", "", "Controller id in -config")
	kind := fs.String("kind", "bollinger", "Indicator kind when no -config is given")
	params := fs.String("params", "", "Indicator params as inline YAML, e.g. \"{length: 20, mult: 2.5}\"")
	connector := fs.String("connector", "bybit", "Connector name")
	pair := fs.String("pair", "BTCUSDT", "Trading pair")
	interval := fs.String("interval", "", "Candle interval (defaults to the -data directory name, then the indicator's)")
	minIntensity := fs.Float64("min-intensity", config.DefaultMinIntensity, "Minimum intensity of an emitted signal")

	dataPath := fs.String("data", "", "Candle CSV file")
	dataRoot := fs.String("data-root", "data", "Root of {connector}/{category}/{pair}/{minutes}/candles.csv when -data is empty")
	start := fs.String("start", "", "Replay bars from this time (YYYY-MM-DD or RFC3339)")
	end := fs.String("end", "", "Replay bars up to this time (YYYY-MM-DD or RFC3339)")
	period := fs.String("period", "", "Replay only the trailing period, e.g. 30d or 2w")

	xlsxPath := fs.String("xlsx", "", "Write the annotated series and signals to this workbook")
	csvPath := fs.String("csv", "", "Write the annotated series to this CSV file")
	jsonPath := fs.String("json", "", "Write the final feature and signals to this JSON file")
	printSignals := fs.Bool("signals", false, "Print every emitted signal")
	logDir := fs.String("log-dir", "", "Write the replay log to {dir}/{pair}_{interval}_{date}.log instead of stderr")

	formatter := common.NewUsageFormatter(appName, "Replay indicator evaluators over historical candles").
		AddExample(appName+" -kind rsi -pair ETHUSDT -interval 5m", "RSI with defaults on local Bybit data").
		AddExample(appName+" -kind bollinger -params \"{length: 30, mult: 2.5}\" -data candles.csv -xlsx out.xlsx", "Custom bands with a workbook").
		AddExample(appName+" -config configs/controllers.yml -id ema_crossover_BTCUSDT_1m -period 30d", "A configured controller over the last 30 days")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(appName, flags, fs, formatter) {
		return nil
	}

	validator := common.NewFlagValidator().
		ValidateFloat("min-intensity", *minIntensity, 0, 1).
		ValidateFile("config", *configPath, false).
		ValidateFile("data", *dataPath, false)
	if *period != "" && (*start != "" || *end != "") {
		validator.AddError("-period cannot be combined with -start or -end")
	}
	if err := validator.GetError(); err != nil {
		return err
	}

	var (
		cfg config.ControllerConfig
		err error
	)
	if *configPath != "" {
		cfg, err = controllerFromFile(*configPath, *id)
	} else {
		if *interval == "" && *dataPath != "" {
			*interval = reporting.ExtractIntervalFromPath(*dataPath)
		}
		cfg, err = controllerFromFlags(*kind, *connector, *pair, *interval, *params, types.DefaultMaxRecords, *minIntensity)
	}
	if err != nil {
		return err
	}

	calc, err := features.New(cfg.Indicator)
	if err != nil {
		return err
	}

	level := "warn"
	if *flags.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, "console", level)
	if *logDir != "" {
		path := logger.SessionFilePath(*logDir, cfg.TradingPair, cfg.Interval(), time.Now().UTC())
		fileLog, closer, err := logger.New(logger.Config{Level: level, Format: "json", Output: path})
		if err != nil {
			return err
		}
		defer closer.Close()
		log = fileLog
	}

	path := *dataPath
	if path == "" {
		path = data.NewDefaultFileLocator().FindDataFile(*dataRoot, cfg.CandlesConnector, cfg.CandlesTradingPair, cfg.Interval())
		if path == "" {
			return fmt.Errorf("no candle file for %s %s %s under %s", cfg.CandlesConnector, cfg.CandlesTradingPair, cfg.Interval(), *dataRoot)
		}
	}

	meta := types.SnapshotMeta{Connector: cfg.ConnectorName, TradingPair: cfg.TradingPair, Interval: cfg.Interval()}
	snapshot, err := data.NewCSVProvider(log).Load(path, meta)
	if err != nil {
		return err
	}
	if snapshot, err = trim(snapshot, *start, *end, *period); err != nil {
		return err
	}
	if snapshot.Len() == 0 {
		return fmt.Errorf("no candles to replay in %s", path)
	}
	log.Debug().Str("controller", cfg.ID).Str("path", path).Int("bars", snapshot.Len()).Msg("Replaying candles")

	result, err := Replay(calc, snapshot, cfg.MinIntensity)
	if err != nil {
		return err
	}

	console := reporting.NewConsoleReporter(os.Stdout)
	console.PrintReplaySummary(reporting.Summarize(calc, result.Series, result.Signals))
	console.PrintFeature(result.Feature)
	if *printSignals {
		console.PrintSignals(result.Signals)
	}

	outDir := reporting.DefaultOutputDir(cfg.TradingPair, cfg.Interval())
	*xlsxPath = outputPath(outDir, *xlsxPath)
	*csvPath = outputPath(outDir, *csvPath)
	*jsonPath = outputPath(outDir, *jsonPath)

	if *xlsxPath != "" {
		if err := reporting.WriteSeriesXLSX(result.Series, result.Signals, *xlsxPath); err != nil {
			return err
		}
		fmt.Printf("📁 Workbook written to %s\n", *xlsxPath)
	}
	if *csvPath != "" {
		if err := reporting.WriteSeriesCSV(result.Series, *csvPath); err != nil {
			return err
		}
		fmt.Printf("📁 Series written to %s\n", *csvPath)
	}
	if *jsonPath != "" {
		report := reporting.FeatureReport{Feature: result.Feature, Signals: result.Signals}
		if err := reporting.WriteReportJSON(report, *jsonPath); err != nil {
			return err
		}
		fmt.Printf("📁 Report written to %s\n", *jsonPath)
	}
	return nil
}

// outputPath places a bare file name under dir
func outputPath(dir, name string) string {
	if name == "" || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(dir, name)
}

func trim(snapshot *types.Snapshot, start, end, period string) (*types.Snapshot, error) {
	if period != "" {
		d, err := common.ParseDuration(period)
		if err != nil {
			return nil, err
		}
		return data.FilterByPeriod(snapshot, d)
	}

	from, err := common.ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := common.ParseDate(end)
	if err != nil {
		return nil, err
	}
	return data.FilterByDateRange(snapshot, from, to)
}
