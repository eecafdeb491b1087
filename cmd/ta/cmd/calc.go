package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/ta/config"
	"github.com/rustyeddy/ta/indicators"
	"github.com/rustyeddy/ta/journal"
	"github.com/rustyeddy/ta/market"
	"github.com/rustyeddy/ta/pkg/id"
	"github.com/rustyeddy/ta/registry"
)

type calcFlags struct {
	ConfigPath  string
	DataPath    string
	Format      string
	Indicators  []string
	Params      string
	DBPath      string
	RunsFile    string
	OutputsFile string
	CSVPath     string
	MetricsFile string
	Workers     int
}

func newCalcCmd(rc *rootConfig) *cobra.Command {
	f := &calcFlags{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate indicators over a candle file",
		Long: `Calc loads a candle series and runs every requested indicator over it.

Indicators come from --config or from repeated --indicator flags. Flags
override the config file, which is overridden by TA_* environment variables.

Examples:
  ta calc --data bars.csv --indicator ADX --params '{"period":14}'
  ta calc --config run.yaml --db runs.sqlite --csv out.csv
  ta calc --data bars.json --indicator ATR --indicator BBANDS --csv -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, rc)
			if err != nil {
				return err
			}
			return runCalc(cmd, rc, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "run configuration file (YAML or JSON)")
	cmd.Flags().StringVarP(&f.DataPath, "data", "d", "", "candle file (CSV with header or JSON array)")
	cmd.Flags().StringVar(&f.Format, "format", "", "candle file format: csv|json (default from extension)")
	cmd.Flags().StringArrayVarP(&f.Indicators, "indicator", "i", nil, "indicator to calculate (repeatable)")
	cmd.Flags().StringVarP(&f.Params, "params", "p", "", `JSON parameters for every --indicator, e.g. '{"period":14}'`)
	cmd.Flags().StringVar(&f.DBPath, "db", "", "SQLite journal database")
	cmd.Flags().StringVar(&f.RunsFile, "runs-file", "", "CSV journal of runs")
	cmd.Flags().StringVar(&f.OutputsFile, "outputs-file", "", "CSV journal of output values")
	cmd.Flags().StringVar(&f.CSVPath, "csv", "", "write outputs side by side to this CSV file (- for stdout)")
	cmd.Flags().StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "concurrent calculations (default GOMAXPROCS)")

	return cmd
}

// resolve layers the config file, the environment and the flags, in that
// order, and validates the result.
func (f *calcFlags) resolve(cmd *cobra.Command, rc *rootConfig) (*config.Config, error) {
	cfg := &config.Config{}
	if f.ConfigPath != "" {
		loaded, err := config.LoadFromFile(f.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.LoadEnv(rc.EnvFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path = f.DataPath
	}
	if flags.Changed("format") {
		cfg.Data.Format = f.Format
	}
	if flags.Changed("db") {
		cfg.Journal.DBPath = f.DBPath
	}
	if flags.Changed("runs-file") {
		cfg.Journal.RunsFile = f.RunsFile
	}
	if flags.Changed("outputs-file") {
		cfg.Journal.OutputsFile = f.OutputsFile
	}
	if flags.Changed("csv") {
		cfg.Output.CSVPath = f.CSVPath
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.TextfilePath = f.MetricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = f.Workers
	}

	if len(f.Indicators) > 0 {
		var params indicators.Params
		if f.Params != "" {
			if err := json.Unmarshal([]byte(f.Params), &params); err != nil {
				return nil, fmt.Errorf("--params: %w", err)
			}
		}
		cfg.Indicators = cfg.Indicators[:0]
		for _, name := range f.Indicators {
			cfg.Indicators = append(cfg.Indicators, config.IndicatorConfig{Name: name, Params: params.Clone()})
		}
	} else if f.Params != "" {
		return nil, fmt.Errorf("--params needs at least one --indicator")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadSeries(cfg *config.Config) (market.Series, error) {
	switch cfg.DataFormat() {
	case "json":
		return market.LoadJSON(cfg.Data.Path)
	default:
		return market.LoadCSV(cfg.Data.Path)
	}
}

func runCalc(cmd *cobra.Command, rc *rootConfig, cfg *config.Config) error {
	log := rc.logger.With().Str("component", "calc").Logger()

	s, err := loadSeries(cfg)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Data.Path, err)
	}
	log.Info().Str("data", cfg.Data.Path).Int("bars", s.Len()).Msg("series loaded")

	promReg := prometheus.NewRegistry()
	reg, err := registry.NewDefault(
		registry.WithLogger(&rc.logger),
		registry.WithRegistry(promReg),
		registry.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return err
	}

	reqs := make([]registry.Request, 0, len(cfg.Indicators))
	for _, ic := range cfg.Indicators {
		reqs = append(reqs, registry.Request{Name: ic.Name, Params: ic.Params})
	}

	start := time.Now()
	results := labelResults(reg.Calculate(cmd.Context(), s, reqs))

	runID := id.NewRunID()
	log = log.With().Str("run_id", runID).Logger()

	var failed error
	for _, res := range results {
		if res.Err != nil {
			failed = errors.Join(failed, fmt.Errorf("%s: %w", res.Label, res.Err))
		}
	}

	if err := record(cfg, runID, start, s, results); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	if cfg.Output.CSVPath != "" {
		if err := writeWide(cmd.OutOrStdout(), cfg.Output.CSVPath, results); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if cfg.Output.CSVPath != "-" {
		printSummary(cmd.OutOrStdout(), runID, results)
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.TextfilePath, promReg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	log.Info().
		Int("requests", len(reqs)).
		Dur("elapsed", time.Since(start)).
		Bool("ok", failed == nil).
		Msg("run complete")

	return failed
}

// record journals the run and every successful output.
func record(cfg *config.Config, runID string, created time.Time, s market.Series, results []labeledResult) error {
	var journals []journal.Journal
	defer func() {
		for _, j := range journals {
			_ = j.Close()
		}
	}()

	if cfg.Journal.DBPath != "" {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		journals = append(journals, j)
	}
	if cfg.Journal.RunsFile != "" {
		j, err := journal.NewCSV(cfg.Journal.RunsFile, cfg.Journal.OutputsFile)
		if err != nil {
			return fmt.Errorf("open csv journal: %w", err)
		}
		journals = append(journals, j)
	}
	if len(journals) == 0 {
		return nil
	}

	run := journal.Run{
		RunID:   runID,
		Created: created,
		Source:  filepath.Base(cfg.Data.Path),
		Bars:    s.Len(),
	}
	for _, res := range results {
		if res.Err == nil {
			run.Indicators = append(run.Indicators, res.Label)
		}
	}

	for _, j := range journals {
		if err := j.RecordRun(run); err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			if err := j.RecordOutput(runID, res.Label, res.Output); err != nil {
				return err
			}
		}
	}

	for _, j := range journals {
		if err := j.Close(); err != nil {
			return err
		}
	}
	journals = nil
	return nil
}

// labeledResult carries the name a result is journaled and exported under.
type labeledResult struct {
	registry.Result
	Label string
}

// labelResults names each result by its upper-cased indicator. Repeats of
// the same indicator in one run get a #n suffix in request order, so ADX,
// ADX#2, ADX#3.
func labelResults(results []registry.Result) []labeledResult {
	out := make([]labeledResult, len(results))
	seen := make(map[string]int, len(results))
	for i, res := range results {
		name := strings.ToUpper(strings.TrimSpace(res.Request.Name))
		seen[name]++
		label := name
		if n := seen[name]; n > 1 {
			label = fmt.Sprintf("%s#%d", name, n)
		}
		out[i] = labeledResult{Result: res, Label: label}
	}
	return out
}

func writeWide(stdout io.Writer, path string, results []labeledResult) error {
	var cols []journal.Column
	for _, res := range results {
		if res.Err == nil {
			cols = append(cols, journal.Column{Indicator: res.Label, Output: res.Output})
		}
	}

	if path == "-" {
		return journal.WriteCSV(stdout, cols)
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := journal.WriteCSV(fh, cols); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func printSummary(w io.Writer, runID string, results []labeledResult) {
	fmt.Fprintf(w, "run %s\n", runID)
	for _, res := range results {
		name := res.Label
		if res.Err != nil {
			fmt.Fprintf(w, "  %-9s error: %v\n", name, res.Err)
			continue
		}
		fmt.Fprintf(w, "  %-9s warmup=%d last=%s\n", name, res.Output.Warmup(), lastValues(res.Output))
	}
}

func lastValues(out indicators.Output) string {
	var parts []string
	out.Each(func(key string, values []float64) {
		v := "NaN"
		if n := len(values); n > 0 && !math.IsNaN(values[n-1]) {
			v = fmt.Sprintf("%.4f", values[n-1])
		}
		if key != "" {
			v = key + "=" + v
		}
		parts = append(parts, v)
	})
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
