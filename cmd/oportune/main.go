// Package main contains the oportune CLI commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/oportune/internal/builder"
	"github.com/futig/oportune/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"

	envName   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "oportune",
		Short: "Improvement opportunities for business cases",
		Long: `oportune turns a business case and a list of improvement directions into
a spreadsheet of improvement opportunities, using a knowledge base and a
language model.

Configuration is read from .env.<env> and the process environment.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "local", "environment to load (.env.<env>)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the pipeline for a single command.
func setup(ctx context.Context) (*builder.Pipeline, *zap.Logger, error) {
	cfg, err := config.Load(envName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := builder.SetupLogger(logLevel, logFormat)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := builder.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, logger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "oportune", version)
		},
	}
}
