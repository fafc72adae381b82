package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-snap-search/config"
	"github.com/aluiziolira/go-snap-search/export"
	"github.com/aluiziolira/go-snap-search/models"
	"github.com/aluiziolira/go-snap-search/scraper"
)

func main() {
	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("SNAPSEARCH_OUTPUT"); ok {
		outputDefault = value
	}
	formatDefault := defaultCfg.OutputFormat
	if value, ok := config.EnvString("SNAPSEARCH_FORMAT"); ok {
		formatDefault = value
	}
	maxProfilesDefault := defaultCfg.MaxProfiles
	if value, ok, err := config.EnvInt("SNAPSEARCH_MAX_PROFILES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SNAPSEARCH_MAX_PROFILES: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxProfilesDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SNAPSEARCH_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Search endpoint base URL")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", formatDefault, "Output format: json, jsonl, csv, html, xml, or excel")
	maxProfiles := flag.Int("max-profiles", maxProfilesDefault, "Maximum profiles kept per keyword")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Request timeout (seconds)")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum retry attempts per request")
	retryBackoffMs := flag.Int("retry-backoff", int(defaultCfg.RetryBackoff/time.Millisecond), "Initial retry backoff (milliseconds)")
	retryBackoffMaxMs := flag.Int("retry-backoff-max", int(defaultCfg.RetryBackoffMax/time.Millisecond), "Maximum retry backoff (milliseconds)")
	proxy := flag.String("proxy", "", "Proxy URL for search requests")
	cacheSize := flag.Int("cache-size", defaultCfg.CacheSize, "Keyword payload cache size")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	configFile := flag.String("config", "", "Optional YAML config file")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	setLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			slog.Error("loading config file", slog.Any("error", err))
			os.Exit(1)
		}
	}
	applyFlags(cfg, *baseURL, *outputFile, *outputFormat, *maxProfiles, *timeoutSec, *maxRetries, *retryBackoffMs, *retryBackoffMaxMs, *proxy, *cacheSize, *metricsAddr, *verbose)

	keywords := flag.Args()
	if len(keywords) == 0 {
		keywords = cfg.Keywords
	}
	if len(keywords) == 0 {
		fmt.Fprintln(os.Stderr, "usage: snapsearch [flags] keyword [keyword ...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Exporter construction validates the format before any search work.
	exporter, err := export.NewExporter(cfg.OutputFile, cfg.OutputFormat)
	if err != nil {
		slog.Error("creating exporter", slog.Any("error", err))
		os.Exit(1)
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting search",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("keywords", len(keywords)),
		slog.String("format", cfg.OutputFormat),
	)

	result := s.SearchAll(ctx, keywords)

	records := make([]map[string]any, 0, len(result.Profiles))
	for _, profile := range result.Profiles {
		records = append(records, profile.Record())
	}
	if err := exporter.Export(records); err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, cfg.OutputFile)
}

func applyFlags(cfg *config.Config, baseURL, outputFile, outputFormat string, maxProfiles, timeoutSec, maxRetries, retryBackoffMs, retryBackoffMaxMs int, proxy string, cacheSize int, metricsAddr string, verbose bool) {
	seen := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		seen[f.Name] = true
	})

	// Explicit flags beat the config file; untouched flags keep whatever
	// the file (or the defaults) provided.
	if seen["base-url"] || cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if seen["output"] || cfg.OutputFile == "" {
		cfg.OutputFile = outputFile
	}
	if seen["format"] || cfg.OutputFormat == "" {
		cfg.OutputFormat = strings.ToLower(outputFormat)
	}
	if seen["max-profiles"] {
		cfg.MaxProfiles = maxProfiles
	}
	if seen["timeout"] {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if seen["max-retries"] {
		cfg.MaxRetries = maxRetries
	}
	if seen["retry-backoff"] {
		cfg.RetryBackoff = time.Duration(retryBackoffMs) * time.Millisecond
	}
	if seen["retry-backoff-max"] {
		cfg.RetryBackoffMax = time.Duration(retryBackoffMaxMs) * time.Millisecond
	}
	if seen["proxy"] {
		cfg.Proxy = proxy
	}
	if seen["cache-size"] {
		cfg.CacheSize = cacheSize
	}
	if seen["metrics-addr"] {
		cfg.MetricsAddr = metricsAddr
	}
	if verbose {
		cfg.Verbose = true
	}
}

func printSummary(result *models.SearchResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Search complete")

	fmt.Printf("  Keywords:      %d\n", result.KeywordCount)
	fmt.Printf("  Profiles:      %d\n", len(result.Profiles))
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	if result.SkippedRecords > 0 {
		fmt.Printf("  Skipped:       %d\n", result.SkippedRecords)
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
