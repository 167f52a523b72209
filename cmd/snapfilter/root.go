package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudu/snapfilter/internal/config"
	"github.com/dudu/snapfilter/internal/logger"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// cfg and log are set up before any subcommand runs
	cfg *config.Config
	log *logrus.Logger

	envFile   string
	logLevel  string
	assetsDir string
)

var rootCmd = &cobra.Command{
	Use:           "snapfilter",
	Short:         "Face-tracking filter overlays for camera frames",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}

		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags win over the environment
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("assets") {
			cfg.AssetsDir = assetsDir
		}

		log = logger.New(cfg.LogLevel, cfg.LogFile)
		return nil
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default: .env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets", "static/filters", "Filter asset directory")
}
