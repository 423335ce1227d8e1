package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahrav/dealdesk/internal/application"
)

const app = "dealdesk"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "dealdesk scores startup pitch documents against cohort benchmarks",
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("benchmark.url", "BENCHMARK_CSV_URL"); err != nil {
		log.Fatalf("binding BENCHMARK_CSV_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("llm.api_key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is dealdesk.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("logging.debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("json"))
}

// getConfig loads the YAML config file when one is given, then applies
// flag and environment overrides through viper.
func getConfig() (application.Config, error) {
	cfg := application.DefaultConfig()

	if cfgFile != "" {
		loaded, err := application.LoadConfig(cfgFile)
		if err != nil {
			return application.Config{}, err
		}
		cfg = loaded
	}

	if url := viper.GetString("benchmark.url"); url != "" {
		cfg.Benchmark.URL = url
	}
	if key := viper.GetString("llm.api_key"); key != "" {
		cfg.LLM.APIKey = key
	}
	cfg.Logging.Debug = viper.GetBool("logging.debug")
	cfg.Logging.JSON = viper.GetBool("logging.json")

	return cfg, nil
}
