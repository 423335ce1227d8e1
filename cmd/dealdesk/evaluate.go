package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ahrav/dealdesk/infrastructure/benchmark"
	"github.com/ahrav/dealdesk/infrastructure/extract"
	"github.com/ahrav/dealdesk/infrastructure/llm"
	"github.com/ahrav/dealdesk/internal/application"
	"github.com/ahrav/dealdesk/internal/logger"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [files...]",
	Short: "Evaluate pitch documents and print the structured report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("output", "o", "", "write the report JSON to a file instead of stdout")
	evaluateCmd.Flags().Duration("timeout", 5*time.Minute, "overall evaluation timeout")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	coordinator := buildCoordinator(cfg, log)

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result := coordinator.EvaluateFiles(ctx, args)

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, payload, 0o600); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		log.Info("report written", zap.String("path", output))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

// buildCoordinator assembles the pipeline from configuration. A
// missing API key degrades to pattern-only extraction with the
// fallback analysis; it is not fatal.
func buildCoordinator(cfg application.Config, log *zap.Logger) *application.Coordinator {
	store := benchmark.NewTable(benchmark.Config{
		Path:         cfg.Benchmark.Path,
		URL:          cfg.Benchmark.URL,
		FetchTimeout: cfg.Benchmark.FetchTimeout,
	}, log, nil)

	deps := application.Dependencies{
		Texts:    extract.NewFileTextExtractor(),
		Patterns: extract.NewMetricExtractor(),
		Entities: extract.NewPatternEntityExtractor(),
		Store:    store,
	}

	if cfg.LLM.APIKey == "" {
		log.Warn("no LLM API key configured, running with pattern extraction only")
		return application.NewCoordinator(deps, cfg.MaxConcurrentFiles, log, nil)
	}

	client, err := llm.NewClient(cfg.LLM.Provider, llm.ClientConfig{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
		Middleware: []llm.Middleware{
			llm.RateLimitMiddleware(rate.Limit(cfg.LLM.RequestsPerSecond), cfg.LLM.Burst),
			llm.RetryMiddleware(cfg.LLM.MaxRetries, 500*time.Millisecond, 10*time.Second),
			llm.TimeoutMiddleware(cfg.LLM.Timeout),
		},
	})
	if err != nil {
		log.Warn("LLM client unavailable, running degraded", zap.Error(err))
		return application.NewCoordinator(deps, cfg.MaxConcurrentFiles, log, nil)
	}

	analyst := llm.NewAnalyst(client, log)
	deps.Analyzer = analyst
	deps.Metrics = analyst
	deps.Cohorts = analyst
	deps.Estimator = analyst

	log.Info("LLM collaborators enabled",
		zap.String("provider", cfg.LLM.Provider), zap.String("model", client.GetModel()))
	return application.NewCoordinator(deps, cfg.MaxConcurrentFiles, log, nil)
}
