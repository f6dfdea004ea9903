package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/vpspanel/internal/adapter/driven/kiwivm"
	httphandler "github.com/ericfisherdev/vpspanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/vpspanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/vpspanel/internal/application"
	"github.com/ericfisherdev/vpspanel/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Load configuration (fail fast on malformed credentials).
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 2. Compile the page templates before anything is published.
	pages, err := webhandler.NewRenderer()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	// 3. Publish the configuration for the process lifetime.
	if err := config.Init(cfg); err != nil {
		return err
	}
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"upstream_url", cfg.UpstreamURL,
		"upstream_timeout", cfg.UpstreamTimeout,
		"accounts", len(cfg.Credentials),
	)

	// 4. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Wire adapters and services.
	client := kiwivm.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, logger)
	statusSvc := application.NewStatusService(config.Global(), client, logger)

	r := chi.NewRouter()
	httphandler.ApplyMiddleware(r, logger)
	httphandler.RegisterAPIRoutes(r, httphandler.NewHandler(statusSvc, logger))
	webhandler.RegisterRoutes(r, webhandler.NewHandler(statusSvc, pages, logger))

	// 6. Bind before serving so address errors abort startup.
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal or server failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 8. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
