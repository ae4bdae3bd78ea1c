// Command routeserver runs the HTTP surface spec.md §6 names: the input
// map page, the output page, embedded SVG markers, and the POST /run
// route-computation endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfreeman451/routepath/config"
	"github.com/mfreeman451/routepath/httpapi"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfgPath := os.Getenv("ROUTEPATH_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "bind", cfg.BindAddress, "overpass", cfg.OverpassURL)

	srv, err := httpapi.NewServer(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.BindAddress,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.BindAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	}

	return nil
}
