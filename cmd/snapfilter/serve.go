package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dudu/snapfilter/internal/config"
	"github.com/dudu/snapfilter/internal/screenshot"
	"github.com/dudu/snapfilter/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the frame filtering API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	store, err := newScreenshotStore()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(
		server.WithFiber(config.NewFiber()),
		server.WithLogger(log),
		server.WithValidator(config.NewValidator()),
		server.WithProcessor(eng.pipeline),
		server.WithScreenshotStore(store),
		server.WithRateLimit(cfg.RateLimit),
		server.WithJPEGQuality(cfg.JPEGQuality),
		server.WithDebug(cfg.Debug),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newScreenshotStore() (screenshot.Store, error) {
	switch cfg.ScreenshotBackend {
	case config.BackendS3:
		store, err := screenshot.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return screenshot.NewDiskStore(cfg.ScreenshotDir, log), nil
	}
}
