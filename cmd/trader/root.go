package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"recall-trader/internal/logger"
	"recall-trader/internal/trace"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "LLM-driven ETH/SOL trading pipeline for the Recall Network",
	Long: `trader runs a periodic trading decision pipeline: it fetches market
history, computes technical indicators, asks an LLM oracle for a decision,
risk-checks the proposal, and dispatches approved trades to the Recall API.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run trading cycles on a fixed interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoop(cmd.Context())
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single trading cycle and print the cycle record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func runLoop(ctx context.Context) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	compressOldLogs(ctx)

	runner := initializeRunner(ctx, cfg)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Trader started", "mode", cfg.Mode, "poll_seconds", cfg.PollSeconds)

	// Cycles run strictly one at a time; a tick that fires while a cycle is
	// in flight waits for the next select pass.
	for {
		select {
		case <-tick.C:
			rec := runner.Run(ctx)
			logger.Info(ctx, "Cycle finished", "log_id", rec.LogID, "status", rec.Status)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func runOnce(ctx context.Context) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	compressOldLogs(ctx)

	runner := initializeRunner(ctx, cfg)
	rec := runner.Run(ctx)

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
