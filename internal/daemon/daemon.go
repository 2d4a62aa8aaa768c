package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spikewise/spikewise/internal/api"
	"github.com/spikewise/spikewise/internal/app/engine"
	"github.com/spikewise/spikewise/internal/app/points"
	"github.com/spikewise/spikewise/internal/app/tracker"
	"github.com/spikewise/spikewise/internal/health"
	"github.com/spikewise/spikewise/internal/infra/gemini"
	_ "github.com/spikewise/spikewise/internal/infra/metrics" // Register Prometheus metrics
	"github.com/spikewise/spikewise/internal/infra/sqlite"
)

// Daemon is the core Spikewise runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Tracker *tracker.Service
	Server  *api.Server
	Health  *health.Checker
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = spikewiseHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var ai tracker.InsightSource
	if cfg.AI.APIKey != "" {
		ai = gemini.New(cfg.AI.APIKey, cfg.AI.Model, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	} else {
		log.Printf("[daemon] no Gemini API key configured, insights come from heuristics")
	}

	svc := tracker.New(db, points.NewService(db), engine.NewCalculator(nil), ai, nil)
	checker := health.NewChecker(db, dataDir)

	srv := api.NewServer(svc, checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		DB:      db,
		Tracker: svc,
		Server:  srv,
		Health:  checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Spikewise serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
