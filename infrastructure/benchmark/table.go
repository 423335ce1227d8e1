// Package benchmark implements the in-memory benchmark dataset backing
// metric comparisons: a CSV-sourced table of (sector, stage, metric)
// rows held behind an atomically swapped snapshot, so reloads never
// expose a partially parsed table to concurrent readers.
package benchmark

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

var _ ports.BenchmarkStore = (*Table)(nil)

// Source origins reported in BenchmarkSourceInfo.
const (
	sourceLocal = "local"
	sourceURL   = "url"
	sourceError = "error"
)

const defaultFetchTimeout = 20 * time.Second

// snapshot is one immutable generation of the table. Lookups index into
// it without locking; Reload builds a fresh snapshot and swaps the
// pointer only after the whole parse succeeded.
type snapshot struct {
	rows  []domain.BenchmarkRow
	index map[rowKey]domain.BenchmarkRow
	info  domain.BenchmarkSourceInfo
}

type rowKey struct {
	sector string
	stage  string
	metric domain.MetricKey
}

// Config controls where the table loads its rows from. URL takes
// precedence when set; Path is the local fallback.
type Config struct {
	Path string `yaml:"path" validate:"required_without=URL"`
	URL  string `yaml:"url"`

	// FetchTimeout bounds URL fetches. Zero means the default.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Table is the CSV-backed benchmark store. It is safe for concurrent
// use: reads go through an atomic snapshot pointer and Reload is
// idempotent.
type Table struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger

	current atomic.Pointer[snapshot]

	reloads *prometheus.CounterVec
	lookups *prometheus.CounterVec
	rowsNow prometheus.Gauge
}

// NewTable creates a benchmark table and performs the initial load.
// A failed initial load is not fatal: the table starts empty and
// reports the failure through SourceInfo, matching the reload contract.
// A nil registerer falls back to the default Prometheus registry.
func NewTable(cfg Config, log *zap.Logger, reg prometheus.Registerer) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	t := &Table{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
		reloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchmark_table_reloads_total",
				Help: "Total number of benchmark table reload attempts.",
			},
			[]string{"result", "origin"},
		),
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchmark_table_lookups_total",
				Help: "Total number of benchmark row lookups.",
			},
			[]string{"found"},
		),
		rowsNow: factory.NewGauge(prometheus.GaugeOpts{
			Name: "benchmark_table_rows",
			Help: "Number of rows in the active benchmark snapshot.",
		}),
	}
	t.current.Store(&snapshot{
		index: map[rowKey]domain.BenchmarkRow{},
		info:  domain.BenchmarkSourceInfo{Source: sourceLocal, Path: cfg.Path},
	})

	if _, err := t.Reload(context.Background()); err != nil {
		log.Warn("initial benchmark load failed", zap.Error(err))
	}
	return t
}

// Lookup returns the row for an exact (sector, stage, metric) match
// against the active snapshot.
func (t *Table) Lookup(sector, stage string, metric domain.MetricKey) (domain.BenchmarkRow, bool) {
	snap := t.current.Load()
	row, ok := snap.index[rowKey{sector: sector, stage: stage, metric: metric}]
	t.lookups.WithLabelValues(strconv.FormatBool(ok)).Inc()
	return row, ok
}

// SourceInfo describes the active snapshot.
func (t *Table) SourceInfo() domain.BenchmarkSourceInfo {
	return t.current.Load().info
}

// Reload repopulates the table from the configured source: the URL when
// set, otherwise the local file. On any failure, or an empty result,
// the previously loaded rows stay active and the returned source info
// records the error; state is never emptied by a failed reload.
func (t *Table) Reload(ctx context.Context) (domain.BenchmarkSourceInfo, error) {
	rows, info, err := t.load(ctx)
	now := time.Now().UTC()

	if err != nil || len(rows) == 0 {
		if err == nil {
			err = fmt.Errorf("benchmark source yielded no rows")
		}
		prev := t.current.Load()
		failed := domain.BenchmarkSourceInfo{
			Source:   sourceError,
			Path:     t.cfg.Path,
			URL:      t.cfg.URL,
			Rows:     len(prev.rows),
			LoadedAt: now,
			Error:    err.Error(),
		}
		// Keep the previous rows; only the status changes.
		t.current.Store(&snapshot{rows: prev.rows, index: prev.index, info: failed})
		t.reloads.WithLabelValues("error", info.Source).Inc()
		t.log.Warn("benchmark reload failed, keeping previous rows",
			zap.Int("rows", len(prev.rows)), zap.Error(err))
		return failed, err
	}

	index := make(map[rowKey]domain.BenchmarkRow, len(rows))
	for _, row := range rows {
		index[rowKey{sector: row.Sector, stage: row.Stage, metric: row.Metric}] = row
	}
	info.Rows = len(rows)
	info.LoadedAt = now

	t.current.Store(&snapshot{rows: rows, index: index, info: info})
	t.rowsNow.Set(float64(len(rows)))
	t.reloads.WithLabelValues("success", info.Source).Inc()
	t.log.Info("benchmark table reloaded",
		zap.String("origin", info.Source), zap.Int("rows", len(rows)))
	return info, nil
}

// load fetches and parses rows from the configured source.
func (t *Table) load(ctx context.Context) ([]domain.BenchmarkRow, domain.BenchmarkSourceInfo, error) {
	if t.cfg.URL != "" {
		rows, err := t.loadFromURL(ctx, t.cfg.URL)
		return rows, domain.BenchmarkSourceInfo{Source: sourceURL, URL: t.cfg.URL}, err
	}
	rows, err := t.loadFromFile(t.cfg.Path)
	return rows, domain.BenchmarkSourceInfo{Source: sourceLocal, Path: t.cfg.Path}, err
}

func (t *Table) loadFromFile(path string) ([]domain.BenchmarkRow, error) {
	if path == "" {
		return nil, fmt.Errorf("no benchmark source configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmark file: %w", err)
	}
	return parseRows(string(data))
}

func (t *Table) loadFromURL(ctx context.Context, url string) ([]domain.BenchmarkRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build benchmark request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmark csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch benchmark csv: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read benchmark response: %w", err)
	}
	return parseRows(string(body))
}

// parseRows decodes the benchmark CSV. A UTF-8 BOM is tolerated and
// lines starting with '#' are comments. Expected header:
// sector,stage,metric,median,p25,p75.
func parseRows(raw string) ([]domain.BenchmarkRow, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	var filtered []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		filtered = append(filtered, line)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(filtered, "\n")))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse benchmark csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("benchmark csv has no data rows")
	}

	header := map[string]int{}
	for i, col := range records[0] {
		header[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, required := range []string{"sector", "stage", "metric", "median", "p25", "p75"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("benchmark csv missing column %q", required)
		}
	}

	rows := make([]domain.BenchmarkRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(header) {
			continue
		}
		median, err1 := strconv.ParseFloat(strings.TrimSpace(rec[header["median"]]), 64)
		p25, err2 := strconv.ParseFloat(strings.TrimSpace(rec[header["p25"]]), 64)
		p75, err3 := strconv.ParseFloat(strings.TrimSpace(rec[header["p75"]]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			// Malformed rows are skipped, not fatal; the comparison
			// layer additionally rejects rows with inverted quartiles.
			continue
		}
		rows = append(rows, domain.BenchmarkRow{
			Sector: strings.TrimSpace(rec[header["sector"]]),
			Stage:  strings.TrimSpace(rec[header["stage"]]),
			Metric: domain.MetricKey(strings.TrimSpace(rec[header["metric"]])),
			Median: median,
			P25:    p25,
			P75:    p75,
		})
	}
	return rows, nil
}
