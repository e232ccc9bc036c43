package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forecast-scraper/analyzer"
	"forecast-scraper/api"
	"forecast-scraper/cache"
	"forecast-scraper/collector"
	"forecast-scraper/datasource"
	"forecast-scraper/extractor"
	"forecast-scraper/history"
	"forecast-scraper/tabulate"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultConfigFile = "config.yaml"

func main() {
	// Parse command line arguments
	configFile := flag.String("config", defaultConfigFile, "Path to configuration file")
	schedule := flag.String("schedule", "", "Cron spec for repeated runs (overrides config)")
	serve := flag.Bool("serve", false, "Serve the forecast API until interrupted")
	quiet := flag.Bool("quiet", false, "Do not print the console report")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	setupLogging("info")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	config, err := loadConfig(*configFile, explicitConfig)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *schedule != "" {
		config.Schedule = *schedule
	}
	if err := config.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogging(config.LogLevel)

	var report io.Writer = os.Stdout
	if *quiet {
		report = nil
	}

	if err := run(config, *serve, report); err != nil {
		slog.Error("forecast run failed", "kind", errorKind(err), "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the defaults when the
// default file is absent
func loadConfig(path string, explicit bool) (*datasource.Config, error) {
	config := datasource.DefaultConfig()
	_, statErr := os.Stat(path)
	if explicit || !errors.Is(statErr, fs.ErrNotExist) {
		loaded, err := datasource.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		slog.Info("no config file found, using defaults", "path", path)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func run(config *datasource.Config, serve bool, report io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nws := datasource.NewNWSPageSource(
		config.Source.BaseURL,
		config.Location.Latitude,
		config.Location.Longitude,
		config.Source.UserAgent,
		config.Source.Timeout,
	)
	limited := datasource.NewRateLimitedPageSource(nws, config.Source.RateLimitRPS, config.Source.RateLimitBurst)
	source := cache.NewCachedPageSource(limited, config.Source.CacheTTL)

	opts, store, err := collectorOptions(config, report)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	c := collector.NewCollector(source, opts)

	if !serve && config.Schedule == "" {
		_, err := c.Run(ctx)
		return err
	}
	if serve && store == nil {
		return errors.New("serving the API requires history.enabled")
	}

	if config.Schedule != "" {
		stopSchedule, err := c.Schedule(ctx, config.Schedule)
		if err != nil {
			return err
		}
		defer stopSchedule()
	}

	if !serve {
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(store, c, config.Server.Port, config.Server.AllowedOrigins)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// collectorOptions builds the pipeline options and opens the run archive
// when history is enabled. The returned store is nil otherwise.
func collectorOptions(config *datasource.Config, report io.Writer) (collector.Options, *history.Store, error) {
	opts := collector.Options{
		Location:   config.Location.Name,
		Markup:     extractor.DefaultMarkup(),
		OutputPath: config.Output.Path,
		Sheet:      config.Output.Sheet,
		Report:     report,
	}
	if !config.History.Enabled {
		return opts, nil, nil
	}

	store, err := history.New(config.History.DBPath)
	if err != nil {
		return collector.Options{}, nil, fmt.Errorf("failed to open history: %w", err)
	}
	opts.Archive = store
	opts.Retention = config.History.Retention
	return opts, store, nil
}

// errorKind names the failure class of a pipeline error for the log
func errorKind(err error) string {
	var (
		netErr   *datasource.NetworkError
		shapeErr *extractor.MarkupShapeError
		alignErr *tabulate.AlignmentError
		parseErr *analyzer.TemperatureParseError
	)
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &shapeErr):
		return "markup_shape"
	case errors.As(err, &alignErr):
		return "alignment"
	case errors.As(err, &parseErr):
		return "temperature_parse"
	default:
		return "internal"
	}
}
