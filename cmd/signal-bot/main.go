package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ducminhle1904/directional-signals/cmd/common"
	"github.com/ducminhle1904/directional-signals/pkg/config"
	"github.com/ducminhle1904/directional-signals/pkg/reporting"
)

const appName = "signal-bot"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := common.RegisterCommonFlags(fs)
	configPath := fs.String("config", "configs/controllers.yml", "Controller definitions (YAML)")
	dataRoot := fs.String("data-root", "", "Serve candles from CSV files under this directory")
	dataConnector := fs.String("data-connector", "csv", "Connector name of the CSV candle source")
	noBybit := fs.Bool("no-bybit", false, "Do not register the Bybit candle source")
	staleAfter := fs.Duration("stale-after", 15*time.Minute, "Report a controller as stale after this long without a cycle")
	once := fs.Bool("once", false, "Evaluate every controller once, print the features and exit")
	prompts := fs.String("prompts", "", "Print the parameter prompts of an indicator kind and exit")

	formatter := common.NewUsageFormatter(appName, "Directional signal controllers over live candles").
		AddExample(appName+" -config configs/controllers.yml", "Run every controller on Bybit candles").
		AddExample(appName+" -once -no-bybit -data-root data -config configs/local.yml", "Evaluate local CSV candles once").
		AddExample(appName+" -prompts bollinger", "Show the Bollinger parameters")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(appName, flags, fs, formatter) {
		return nil
	}

	console := reporting.NewConsoleReporter(os.Stdout)
	if *prompts != "" {
		kind, err := config.ParseKind(*prompts)
		if err != nil {
			return err
		}
		console.PrintPrompts(kind)
		return nil
	}

	validator := common.NewFlagValidator().
		ValidateFile("config", *configPath, true).
		ValidateDirectory("data-root", *dataRoot, false)
	if *noBybit && *dataRoot == "" {
		validator.AddError("-no-bybit needs -data-root")
	}
	if err := validator.GetError(); err != nil {
		return err
	}

	app, err := config.LoadAppConfig(*flags.EnvFile)
	if err != nil {
		return err
	}
	logger, closer, err := common.NewLogger(app, *flags.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	file, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}
	console.PrintControllers(file.Controllers)

	bot, err := NewSignalBot(app, file, Options{
		DataRoot:      *dataRoot,
		DataConnector: *dataConnector,
		NoBybit:       *noBybit,
		StaleAfter:    *staleAfter,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bot.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Shutdown incomplete")
		}
	}()

	ctx, stop := common.SignalContext(context.Background())
	defer stop()

	if *once {
		return bot.RunOnce(ctx, console)
	}

	logger.Info().
		Int("controllers", len(file.Controllers)).
		Str("version", common.GetFullVersion()).
		Msg("Signal bot started")
	err = bot.Run(ctx)
	bot.PrintSessionSignals(console)
	logger.Info().Msg("Signal bot stopped")
	return err
}
