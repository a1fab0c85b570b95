// Command apiserver serves the hydrogen bond profiling HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hbond-profiler/internal/bootstrap"
	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/hbond-profiler/internal/interfaces/http"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; HBPROF_* environment variables apply either way")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting hbond-profiler API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	if configPath != "" {
		if err := watchLogLevel(configPath, logger); err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	gin.SetMode(cfg.Server.Mode)
	rc, limiter := routerConfig(cfg, infra, logger)
	if limiter != nil {
		defer limiter.Stop()
	}
	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(rc), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

//Personal.AI order the ending
