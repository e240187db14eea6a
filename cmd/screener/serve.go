package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/screener/internal/api"
	"github.com/newthinker/screener/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan on an interval and serve reports over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "time between scans (overrides server.interval)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if serveInterval > 0 {
		cfg.Server.Interval = serveInterval
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	a, err := app.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info("starting screener server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("interval", cfg.Server.Interval),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: cfg.Metrics.Path,
	}, api.Dependencies{
		App:     a,
		Metrics: a.Metrics(),
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	go func() {
		if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("screening loop stopped", zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down screener server")
	a.Stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
