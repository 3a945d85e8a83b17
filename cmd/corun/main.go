// Package main is the entry point for corun.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/samdwyer/corun/data"
	"github.com/samdwyer/corun/internal/config"
	"github.com/samdwyer/corun/internal/game"
	"github.com/samdwyer/corun/internal/logging"
	"github.com/samdwyer/corun/internal/telemetry"
)

type options struct {
	configPath  string
	logPath     string
	writeConfig bool
	headless    bool
	seed        int64
	frames      int
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	// Load .env file for local development
	// This makes CORUN_OTLP_ENDPOINT and CORUN_OTLP_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	if opts.writeConfig {
		if err := os.WriteFile(opts.configPath, data.SampleConfig, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote %s\n", opts.configPath)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logOut, closeLog, err := openLog(opts.logPath, cfg.Game.Headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	logger, level, err := logging.New(cfg.Log, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		// Set up OTEL environment variables from our .env variables
		setupOTelEnv()
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
		if err != nil {
			// Continue without telemetry - game still works
			logger.Warn("telemetry setup failed, running without tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("telemetry shutdown failed", "error", err)
				}
			}()
		}
	}

	gameOpts := []game.Option{game.WithLogger(logger, level)}
	if updates, err := config.Watch(ctx, opts.configPath, logger); err != nil {
		logger.Warn("config hot reload disabled", "path", opts.configPath, "error", err)
	} else {
		gameOpts = append(gameOpts, game.WithConfigUpdates(updates))
	}

	g, err := game.New(cfg, gameOpts...)
	if err != nil {
		logger.Error("failed to initialize game", "error", err)
		fmt.Fprintf(os.Stderr, "Error: failed to initialize game: %v\n", err)
		return 1
	}
	if err := g.Run(ctx); err != nil {
		logger.Error("game error", "error", err)
		return 1
	}
	logger.Info("game over", "phase", g.Phase().String(), "frames", g.Frame())
	return 0
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "corun.toml", "Path to configuration file")
	flag.StringVar(&opts.logPath, "log", "", "Log file (default stderr when headless, corun.log otherwise)")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "Write the default configuration to -config and exit")
	flag.BoolVar(&opts.headless, "headless", false, "Run without a terminal screen")
	flag.Int64Var(&opts.seed, "seed", 0, "Override game.seed")
	flag.IntVar(&opts.frames, "frames", 0, "Override game.max_frames")
	flag.Parse()
	return opts
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config.Config, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Game.Headless = opts.headless
		case "seed":
			cfg.Game.Seed = opts.seed
		case "frames":
			cfg.Game.MaxFrames = opts.frames
		}
	})
}

// openLog picks the log destination. The terminal belongs to the screen
// unless the game is headless.
func openLog(path string, headless bool) (io.Writer, func(), error) {
	if path == "" {
		if headless {
			return os.Stderr, func() {}, nil
		}
		path = "corun.log"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	if endpoint := os.Getenv("CORUN_OTLP_ENDPOINT"); endpoint != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", endpoint)
	}

	// Build the headers here - the .env file may have an unexpanded
	// variable reference that doesn't work
	apiKey := os.Getenv("CORUN_OTLP_API_KEY")
	dataset := os.Getenv("CORUN_OTLP_DATASET")
	if dataset == "" {
		dataset = "corun" // default dataset name
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
