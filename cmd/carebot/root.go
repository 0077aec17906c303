package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/carelog/carebot/internal/config"
	"github.com/carelog/carebot/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "carebot",
	Short: "CareBot — a conversational assistant for family caregivers",
	Long: `CareBot answers questions about the people you care for.
Factual answers come straight from the care record store; everything
else is handled conversationally with durable per-session memory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
