// CyberSentinel Gateway: the resilient facade between the browser and
// the analysis service. Serves every operation from the remote service
// when it can, and from local state when it cannot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piyawatSritavong/cybersentinel/internal/config"
	"github.com/piyawatSritavong/cybersentinel/internal/gateway"
	"github.com/piyawatSritavong/cybersentinel/internal/notify"
	"github.com/piyawatSritavong/cybersentinel/internal/onboarding"
	"github.com/piyawatSritavong/cybersentinel/internal/sentinel"
	"github.com/piyawatSritavong/cybersentinel/internal/store"
	"github.com/piyawatSritavong/cybersentinel/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cybersentinel-gateway %s (%s)\n", version, commit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTraceProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	st := store.New(log.Named("store"))

	creds := sentinel.NewCredentials(func() string {
		if v := os.Getenv("SENTINEL_API_KEY"); v != "" {
			return v
		}
		return cfg.APIKey
	})
	client := sentinel.NewClient(cfg.SentinelURL, creds, log.Named("sentinel"))

	channels := notify.FromConfig(cfg)
	for name := range channels {
		log.Info("local notification channel configured", zap.String("channel", name))
	}

	settings, err := openSettings(cfg.DataDir, log)
	if err != nil {
		log.Fatal("open settings store", zap.Error(err))
	}
	defer func() { _ = settings.Close() }()

	// Best-effort local scheduler: when a job comes due it is handed to
	// the analysis service as a squad run. Failures are logged and the
	// job advances to its next slot regardless.
	sched := store.NewScheduler(st, func(ctx context.Context, squad, task string) error {
		_, err := client.Post(ctx, "/v1/agents/run", map[string]string{
			"squad": squad,
			"task":  task,
		})
		return err
	}, log.Named("scheduler"))
	sched.Start(ctx)

	srv := gateway.New(cfg, log.Named("gateway"), st, client, creds, settings, channels)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("gateway server", zap.Error(err))
	}
}

// openSettings opens the SQLite-backed settings store, falling back to
// an in-memory store when the data directory is unusable.
func openSettings(dataDir string, log *zap.Logger) (*onboarding.Store, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		log.Warn("data dir unavailable, settings will not persist", zap.Error(err))
		return onboarding.NewMemoryStore(), nil
	}
	s, err := onboarding.NewStore(filepath.Join(dataDir, "onboarding.db"))
	if err != nil {
		log.Warn("settings db unavailable, settings will not persist", zap.Error(err))
		return onboarding.NewMemoryStore(), nil
	}
	return s, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
