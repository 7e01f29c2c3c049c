package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kerem-kaynak/ja-analysis/pkg/config"
	"github.com/kerem-kaynak/ja-analysis/pkg/handler"
	"github.com/kerem-kaynak/ja-analysis/pkg/logger"
	"github.com/kerem-kaynak/ja-analysis/pkg/metrics"
	"github.com/kerem-kaynak/ja-analysis/pkg/reload"
	"github.com/kerem-kaynak/ja-analysis/pkg/service"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analysis service",
		"port", cfg.Server.Port,
		"dictionaries", len(cfg.Dictionaries),
		"indexes", len(cfg.Indexes),
	)

	svc, err := service.New(cfg)
	if err != nil {
		slog.Error("failed to build indexes", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.Register(svc)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	if cfg.Kafka.Enabled {
		listener := reload.NewListener(cfg.Kafka, svc)
		go func() {
			// Start closes the reader once ctx is done.
			if err := listener.Start(ctx); err != nil {
				slog.Error("reload listener stopped", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()
	handler.New(svc).Register(mux)

	var chain http.Handler = mux
	chain = handler.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = handler.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analysis service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analysis service stopped")
}
