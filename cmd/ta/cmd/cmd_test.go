package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ta/journal"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "absent.env"), "--no-color"))

	err := root.Execute()
	return out.String(), err
}

func writeBars(t *testing.T, dir string, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("time,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		c := 100 + float64(i) + 2*math.Sin(float64(i)/3)
		fmt.Fprintf(&b, "2024-01-%02dT00:00:00Z,%.4f,%.4f,%.4f,%.4f,%d\n", i%28+1, c-0.5, c+1.5, c-1.5, c, 1000+10*i)
	}

	path := filepath.Join(dir, "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ta version "+version)
}

func TestCalcWritesEverything(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 30)
	db := filepath.Join(dir, "runs.sqlite")
	wide := filepath.Join(dir, "out.csv")
	prom := filepath.Join(dir, "ta.prom")
	runsFile := filepath.Join(dir, "runs.csv")
	outputsFile := filepath.Join(dir, "outputs.csv")

	out, err := execute(t, "calc",
		"--data", bars,
		"-i", "ATR", "-i", "aroon",
		"--params", `{"period":5}`,
		"--db", db,
		"--csv", wide,
		"--metrics-file", prom,
		"--runs-file", runsFile,
		"--outputs-file", outputsFile,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "ATR")
	assert.Contains(t, out, "warmup=4")

	lines := readLines(t, wide)
	require.Len(t, lines, 31)
	assert.Equal(t, "idx,ATR,AROON.aroon_down,AROON.aroon_up", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,,,"))

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `ta_calculations_total{indicator="ATR",outcome="ok"} 1`)
	assert.Contains(t, string(metrics), `ta_calculations_total{indicator="AROON",outcome="ok"} 1`)

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	runs, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "bars.csv", runs[0].Source)
	assert.Equal(t, 30, runs[0].Bars)
	assert.Equal(t, []string{"ATR", "AROON"}, runs[0].Indicators)

	atr, err := j.LoadOutput(runs[0].RunID, "ATR")
	require.NoError(t, err)
	assert.Equal(t, 30, atr.Len())
	assert.Equal(t, 4, atr.Warmup())

	// header plus 30 ATR values plus 2x30 AROON values
	assert.Len(t, readLines(t, outputsFile), 1+30+60)
	assert.Len(t, readLines(t, runsFile), 2)
}

func TestCalcCSVToStdout(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 10)

	out, err := execute(t, "calc", "--data", bars, "-i", "AVGPRICE", "--csv", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "idx,AVGPRICE", lines[0])
	assert.NotContains(t, out, "run ", "no summary mixed into csv output")
}

func TestCalcFromConfig(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 40)
	wide := filepath.Join(dir, "out.csv")

	cfgPath := filepath.Join(dir, "run.yaml")
	doc := fmt.Sprintf(`
data:
  path: %s
indicators:
  - name: BBANDS
    params:
      period: 10
  - name: ADOSC
output:
  csv_path: %s
`, bars, wide)
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0644))

	_, err := execute(t, "calc", "--config", cfgPath)
	require.NoError(t, err)

	lines := readLines(t, wide)
	require.Len(t, lines, 41)
	assert.Equal(t, "idx,BBANDS.lower_band,BBANDS.middle_band,BBANDS.upper_band,ADOSC", lines[0])
}

func TestCalcRepeatedIndicator(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 40)
	db := filepath.Join(dir, "runs.sqlite")
	wide := filepath.Join(dir, "out.csv")
	runsFile := filepath.Join(dir, "runs.csv")
	outputsFile := filepath.Join(dir, "outputs.csv")

	cfgPath := filepath.Join(dir, "run.yaml")
	doc := fmt.Sprintf(`
data:
  path: %s
indicators:
  - name: ADX
    params:
      period: 5
  - name: adx
    params:
      period: 10
  - name: ATR
journal:
  db_path: %s
  runs_file: %s
  outputs_file: %s
output:
  csv_path: %s
`, bars, db, runsFile, outputsFile, wide)
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0644))

	out, err := execute(t, "calc", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ADX#2")

	lines := readLines(t, wide)
	require.Len(t, lines, 41)
	assert.Equal(t, "idx,ADX,ADX#2,ATR", lines[0])

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	runs, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"ADX", "ADX#2", "ATR"}, runs[0].Indicators)

	first, err := j.LoadOutput(runs[0].RunID, "ADX")
	require.NoError(t, err)
	second, err := j.LoadOutput(runs[0].RunID, "ADX#2")
	require.NoError(t, err)
	assert.Equal(t, 8, first.Warmup())
	assert.Equal(t, 18, second.Warmup())

	// header plus three single outputs of 40 values
	assert.Len(t, readLines(t, outputsFile), 1+3*40)

	out, err = execute(t, "runs", "show", runs[0].RunID, "--db", db, "-i", "adx#2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "idx,ADX#2\n"))

	_, err = execute(t, "runs", "show", runs[0].RunID, "--db", db, "-i", "ADX#3")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestCalcFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 20)

	cfgPath := filepath.Join(dir, "run.yaml")
	doc := fmt.Sprintf("data:\n  path: %s\nindicators:\n  - name: ADX\n", bars)
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0644))

	out, err := execute(t, "calc", "--config", cfgPath, "-i", "AD", "--csv", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "idx,AD\n"))
}

func TestCalcErrors(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 10)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no data",
			args: []string{"calc", "-i", "ATR"},
			want: "data.path is required",
		},
		{
			name: "no indicators",
			args: []string{"calc", "--data", bars},
			want: "at least one indicator is required",
		},
		{
			name: "params without indicator",
			args: []string{"calc", "--data", bars, "--params", `{"period":3}`},
			want: "--params needs at least one --indicator",
		},
		{
			name: "bad params json",
			args: []string{"calc", "--data", bars, "-i", "ATR", "--params", `{period}`},
			want: "--params",
		},
		{
			name: "missing file",
			args: []string{"calc", "--data", filepath.Join(dir, "nope.csv"), "-i", "ATR"},
			want: "open bars",
		},
		{
			name: "unknown indicator",
			args: []string{"calc", "--data", bars, "-i", "FOO"},
			want: "unknown indicator",
		},
		{
			name: "invalid parameter",
			args: []string{"calc", "--data", bars, "-i", "ATR", "--params", `{"period":0}`},
			want: "Parameter 'period' must be a positive integer",
		},
		{
			name: "period beyond data",
			args: []string{"calc", "--data", bars, "-i", "ATR", "--params", `{"period":11}`},
			want: "Wrong parameter length. 'period' > data length. (11 > 10)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCalcPartialFailureStillWrites(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 10)
	wide := filepath.Join(dir, "out.csv")

	_, err := execute(t, "calc", "--data", bars, "-i", "AD", "-i", "FOO", "--csv", wide)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOO")

	lines := readLines(t, wide)
	assert.Equal(t, "idx,AD", lines[0])
	assert.Len(t, lines, 11)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	for _, name := range []string{"AD", "ADOSC", "ADX", "ADXR", "APO", "AROON", "ATR", "AVGPRICE", "BBANDS"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "HIGH,LOW,CLOSE")
}

func TestListByTag(t *testing.T) {
	out, err := execute(t, "list", "--tag", "use_case=volatility_measurement")
	require.NoError(t, err)
	assert.Contains(t, out, "ATR")
	assert.Contains(t, out, "BBANDS")
	assert.NotContains(t, out, "ADX")

	out, err = execute(t, "list", "--tag", "use_case=nothing_like_this")
	require.NoError(t, err)
	assert.Contains(t, out, "no indicators match")

	_, err = execute(t, "list", "--tag", "volatility")
	assert.Error(t, err)
}

func TestListVerbose(t *testing.T) {
	out, err := execute(t, "list", "--tag", "output_format=band", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "tags:")
	assert.Contains(t, out, `"period":20`)
	assert.Contains(t, out, "WithinData(period, CLOSE)")
}

func TestRuns(t *testing.T) {
	dir := t.TempDir()
	bars := writeBars(t, dir, 12)
	db := filepath.Join(dir, "runs.sqlite")

	_, err := execute(t, "calc", "--data", bars, "-i", "AVGPRICE", "-i", "AD", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "runs", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	fields := strings.Fields(lines[1])
	require.NotEmpty(t, fields)
	runID := fields[0]
	assert.Contains(t, lines[1], "AVGPRICE,AD")

	out, err = execute(t, "runs", "show", runID, "--db", db)
	require.NoError(t, err)
	shown := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, shown, 13)
	assert.Equal(t, "idx,AVGPRICE,AD", shown[0])

	out, err = execute(t, "runs", "show", runID, "--db", db, "-i", "ad")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "idx,AD\n"))

	_, err = execute(t, "runs", "show", "01HZZZZZZZZZZZZZZZZZZZZZZZ", "--db", db)
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	out, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "config", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "[ADX ATR BBANDS]")

	_, err = execute(t, "config", "validate")
	assert.Error(t, err, "--file is required")
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	assert.ErrorContains(t, err, "log level")
}
