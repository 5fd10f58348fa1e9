// Package cli implements oactl, the operator command line for the office
// action pipeline.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"oaresponse/internal/app"
	"oaresponse/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "oactl",
	Short: "Operator tooling for the office action response pipeline",
	Long: `oactl runs pipeline operations directly against the configured stores,
bypassing the HTTP API and its per-user ownership checks.

Configuration is read from the environment (and .env) exactly as the server
reads it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads .env and the environment, then validates the result
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withApp assembles the services with ownership checks disabled and hands
// them to fn
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, newLogger(), app.Options{Trusted: true})
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}
	defer a.Close()
	return fn(a)
}
