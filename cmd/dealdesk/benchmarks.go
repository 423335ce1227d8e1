package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/dealdesk/infrastructure/benchmark"
	"github.com/ahrav/dealdesk/internal/logger"
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Show the benchmark dataset status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBenchmarks(cmd)
	},
}

func init() {
	rootCmd.AddCommand(benchmarksCmd)

	benchmarksCmd.Flags().Bool("reload", false, "force a reload from the configured source")
}

func runBenchmarks(cmd *cobra.Command) error {
	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	table := benchmark.NewTable(benchmark.Config{
		Path:         cfg.Benchmark.Path,
		URL:          cfg.Benchmark.URL,
		FetchTimeout: cfg.Benchmark.FetchTimeout,
	}, log, nil)

	info := table.SourceInfo()
	if reload, _ := cmd.Flags().GetBool("reload"); reload {
		if info, err = table.Reload(cmd.Context()); err != nil {
			return fmt.Errorf("reloading benchmarks: %w", err)
		}
	}

	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
