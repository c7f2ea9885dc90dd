package main

import (
	"context"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/shmap-go/internal/config"
	"github.com/yndnr/shmap-go/internal/infra/buildinfo"
	"github.com/yndnr/shmap-go/internal/infra/confloader"
	"github.com/yndnr/shmap-go/internal/infra/shutdown"
	"github.com/yndnr/shmap-go/internal/infra/tlsroots"
	"github.com/yndnr/shmap-go/internal/shm"
	"github.com/yndnr/shmap-go/internal/telemetry/logger"
	"github.com/yndnr/shmap-go/internal/telemetry/metric"
	"github.com/yndnr/shmap-go/pkg/keygen"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		once        = flag.Bool("once", false, "Run a single sweep and exit")
		dryRun      = flag.Bool("dry-run", false, "Report removals without performing them")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("shmap-sweeper %s\n", buildinfo.String())
		return nil
	}

	overrides := map[string]any{}
	if *dryRun {
		overrides["gc.dry_run"] = true
	}
	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting shmap-sweeper",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile,
		"dir", cfg.Store.Dir,
		"namespace", cfg.Store.Namespace,
		"interval", cfg.GC.Interval,
		"dry_run", cfg.GC.DryRun)

	opts, err := config.StoreOptions(cfg)
	if err != nil {
		return err
	}
	if key, _ := cfg.Security.Key(); key != nil {
		log.Info("value encryption enabled",
			"cipher", cfg.Security.Cipher,
			"key_fingerprint", keygen.Fingerprint(key))
	}
	opts = append(opts, shmap.WithLogger(log), shmap.WithoutInitialSweep())

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		reg, adapter, err := initMetrics(cfg)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		opts = append(opts, shmap.WithMetrics(adapter))
		metricsServer = newMetricsServer(cfg.Metrics.Addr, reg)
	}

	store, err := shmap.New(opts...)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if *once {
		return sweep(context.Background(), store, cfg.GC.DryRun, log)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	ctx := shutdownHandler.Context()

	// Sweeper loop; the hook waits for an in-flight sweep to finish.
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop(ctx, store, cfg.GC.Interval, cfg.GC.DryRun, log)
	}()
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("waiting for sweeper to stop")
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if metricsServer != nil {
		if cfg.Metrics.TLSEnabled() {
			if err := initMetricsTLS(ctx, metricsServer, cfg.Metrics, log); err != nil {
				return fmt.Errorf("init metrics tls: %w", err)
			}
		}
		go func() {
			log.Info("metrics server listening", "addr", metricsServer.Addr, "tls", metricsServer.TLSConfig != nil)

			var err error
			if metricsServer.TLSConfig != nil {
				err = metricsServer.ListenAndServeTLS("", "")
			} else {
				err = metricsServer.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsServer.Shutdown(ctx)
		})
	}

	reload := shutdown.NewReloadHandler()
	reload.OnReload(func() {
		reloadLogLevel(*configFile, log)
	})
	go reload.Listen(ctx)

	if *configFile != "" {
		watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
		if err != nil {
			return fmt.Errorf("init config watcher: %w", err)
		}
		if err := watcher.Watch(*configFile); err != nil {
			watcher.Stop()
			return fmt.Errorf("watch config: %w", err)
		}
		watcher.OnChange(func(string) { reload.Reload() })
		watcher.StartAsync()
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	log.Info("sweeper started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("sweeper stopped gracefully")
	return nil
}

// initMetrics registers the store adapter and the segment collector.
func initMetrics(cfg *config.Config) (*metric.Registry, *metric.Adapter, error) {
	dir, err := shm.NewDir(cfg.Store.Dir)
	if err != nil {
		return nil, nil, err
	}

	reg := metric.NewRegistry()
	adapter := metric.NewAdapter(reg.Registerer(), cfg.Metrics.Namespace, "store", nil)
	collector := metric.NewCollector(dir, cfg.Store.Namespace, cfg.Metrics.Namespace, "store")
	if err := reg.Registerer().Register(collector); err != nil {
		return nil, nil, err
	}
	return reg, adapter, nil
}

func newMetricsServer(addr string, reg *metric.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// initMetricsTLS loads the endpoint's key pair and optional client CAs and
// keeps the key pair fresh until ctx is cancelled.
func initMetricsTLS(ctx context.Context, srv *http.Server, cfg config.MetricsSection, log logger.Logger) error {
	kp, err := tlsroots.LoadKeyPair(cfg.TLSCertFile, cfg.TLSKeyFile, log)
	if err != nil {
		return err
	}

	var clientCAs *x509.CertPool
	if cfg.ClientCAFile != "" {
		if clientCAs, err = tlsroots.LoadClientCAs(cfg.ClientCAFile); err != nil {
			return err
		}
	}
	srv.TLSConfig = tlsroots.ServerConfig(kp, clientCAs)

	go func() {
		if err := kp.Watch(ctx); err != nil {
			log.Error("certificate watcher stopped", "error", err)
		}
	}()
	return nil
}

// loop sweeps immediately and then on every tick until ctx is cancelled.
func loop(ctx context.Context, store *shmap.Store, interval time.Duration, dryRun bool, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := sweep(ctx, store, dryRun, log); err != nil && ctx.Err() == nil {
			log.Error("sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweep runs one sweep tagged with a fresh operation ID.
func sweep(ctx context.Context, store *shmap.Store, dryRun bool, log logger.Logger) error {
	ctx = logger.WithOpID(logger.WithLogger(ctx, log), ulid.Make().String())
	l := logger.L(ctx)

	report, err := store.Sweep(ctx, shmap.SweepOptions{DryRun: dryRun})
	if err != nil {
		return err
	}

	removed := report.Removed
	if report.DryRun {
		removed = report.Planned
	}
	for _, r := range removed {
		l.Debug("segment reclaimed", "name", r.Name, "key", r.Key, "reason", r.Reason, "dry_run", report.DryRun)
	}
	l.Info("sweep completed",
		"live", len(report.Live),
		"removed", len(report.Removed),
		"planned", len(report.Planned),
		"skipped", len(report.Skipped),
		"failed", report.Failed,
		"duration", report.Duration)
	return nil
}

// reloadLogLevel re-reads the configuration and applies its log level.
// Other settings need a restart.
func reloadLogLevel(path string, log logger.Logger) {
	cfg, err := config.Load(path, nil)
	if err != nil {
		log.Error("reload config failed", "error", err)
		return
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Error("reload log level failed", "error", err)
		return
	}
	log.Info("log level reloaded", "level", logger.GetLevel())
}
