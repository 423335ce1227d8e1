// Command generate_benchmarks writes a synthetic benchmark CSV
// covering every sector/stage cohort in the closed vocabulary. The
// output is development data: production benchmarks should come from a
// curated dataset.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ahrav/dealdesk/internal/domain"
)

var sectors = []string{"saas", "fintech", "healthtech", "ecommerce", "ai-ml", "edtech", "logistics", "hr-tech"}

var stages = []string{"pre-seed", "seed", "series-a", "series-b", "series-c", "growth"}

// seedBaselines are per-metric medians for a seed-stage saas company.
// Other cohorts scale from these.
var seedBaselines = map[domain.MetricKey]float64{
	domain.MetricARR:          250_000,
	domain.MetricMRR:          20_000,
	domain.MetricGrowthYoY:    1.00,
	domain.MetricGrowthMoM:    0.10,
	domain.MetricChurnRate:    0.04,
	domain.MetricGrossMargin:  0.70,
	domain.MetricCAC:          300,
	domain.MetricLTV:          1_200,
	domain.MetricRunwayMonths: 14,
	domain.MetricHeadcount:    10,
}

// stageScale multiplies currency-like metrics as companies mature;
// rate-like metrics use gentler adjustments below.
var stageScale = map[string]float64{
	"pre-seed": 0.15,
	"seed":     1.0,
	"series-a": 6.0,
	"series-b": 28.0,
	"series-c": 80.0,
	"growth":   200.0,
}

func main() {
	var (
		outputPath = flag.String("output", "data/benchmarks.csv", "Output CSV path")
		seed       = flag.Int64("seed", 42, "Random seed for jitter")
		jitter     = flag.Float64("jitter", 0.10, "Relative jitter applied per sector")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if dir := filepath.Dir(*outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# Synthetic benchmark dataset for development; regenerate with cmd/generate_benchmarks.")

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sector", "stage", "metric", "median", "p25", "p75"}); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	rows := 0
	for _, sector := range sectors {
		// A stable per-sector tilt keeps cohorts distinguishable
		// without hand-curating every cell.
		tilt := 1 + (rng.Float64()*2-1)*(*jitter)
		for _, stage := range stages {
			for _, metric := range domain.NumericMetricKeys {
				median := cohortMedian(metric, stage) * tilt
				p25, p75 := quartiles(metric, median)
				record := []string{
					sector, stage, string(metric),
					formatValue(median), formatValue(p25), formatValue(p75),
				}
				if err := w.Write(record); err != nil {
					log.Fatalf("Failed to write row: %v", err)
				}
				rows++
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush CSV: %v", err)
	}

	fmt.Printf("Generated benchmark dataset:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Cohorts: %d\n", len(sectors)*len(stages))
	fmt.Printf("- Rows: %d\n", rows)
}

// cohortMedian scales the seed baseline to a stage. Currency metrics
// track company size; rates and durations drift more slowly.
func cohortMedian(metric domain.MetricKey, stage string) float64 {
	base := seedBaselines[metric]
	scale := stageScale[stage]

	switch metric {
	case domain.MetricARR, domain.MetricMRR, domain.MetricLTV, domain.MetricCAC:
		return base * scale
	case domain.MetricHeadcount:
		return base * (1 + scale/3)
	case domain.MetricRunwayMonths:
		return base * (1 + scale/100)
	case domain.MetricGrowthYoY, domain.MetricGrowthMoM:
		// Growth compresses as companies mature.
		return base / (1 + scale/20)
	case domain.MetricChurnRate:
		return base / (1 + scale/40)
	default:
		return base
	}
}

func quartiles(metric domain.MetricKey, median float64) (float64, float64) {
	spread := 0.5
	if !metric.HigherIsBetter() {
		spread = 0.4
	}
	return median * (1 - spread), median * (1 + spread)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
