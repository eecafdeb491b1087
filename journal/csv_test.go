package journal

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ta/indicators"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	records, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runsPath := filepath.Join(dir, "runs.csv")
	outputsPath := filepath.Join(dir, "outputs.csv")

	j, err := NewCSV(runsPath, outputsPath)
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	assert.Equal(t, [][]string{{"run_id", "created_at", "source", "bars", "indicators"}}, readCSV(t, runsPath))
	assert.Equal(t, [][]string{{"run_id", "indicator", "series", "idx", "value"}}, readCSV(t, outputsPath))
}

func TestCSVJournalRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runsPath := filepath.Join(dir, "runs.csv")
	outputsPath := filepath.Join(dir, "outputs.csv")

	j, err := NewCSV(runsPath, outputsPath)
	require.NoError(t, err)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordRun(Run{RunID: "R1", Created: created, Source: "bars.csv", Bars: 2, Indicators: []string{"AD", "AROON"}}))
	require.NoError(t, j.RecordOutput("R1", "AD", indicators.NewSingle([]float64{0, 366.5})))
	require.NoError(t, j.RecordOutput("R1", "AROON", indicators.NewMulti(
		[]string{indicators.AroonDown, indicators.AroonUp},
		map[string][]float64{
			indicators.AroonDown: {math.NaN(), 50},
			indicators.AroonUp:   {math.NaN(), 100},
		},
	)))
	require.NoError(t, j.Close())

	runs := readCSV(t, runsPath)
	require.Len(t, runs, 2)
	assert.Equal(t, []string{"R1", "2024-01-02T03:04:05Z", "bars.csv", "2", "AD,AROON"}, runs[1])

	outputs := readCSV(t, outputsPath)
	require.Len(t, outputs, 7)
	assert.Equal(t, []string{"R1", "AD", "", "1", "366.5"}, outputs[2])
	assert.Equal(t, []string{"R1", "AROON", "aroon_down", "0", ""}, outputs[3])
	assert.Equal(t, []string{"R1", "AROON", "aroon_up", "1", "100"}, outputs[6])
}

func TestWriteCSV(t *testing.T) {
	nan := math.NaN()
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Column{
		{Indicator: "ATR", Output: indicators.NewSingle([]float64{nan, 1.25, 1.5})},
		{Indicator: "BBANDS", Output: indicators.NewMulti(
			[]string{indicators.LowerBand, indicators.UpperBand},
			map[string][]float64{
				indicators.LowerBand: {nan, nan, 9},
				indicators.UpperBand: {nan, nan, 11},
			},
		)},
	})
	require.NoError(t, err)

	want := "idx,ATR,BBANDS.lower_band,BBANDS.upper_band\n" +
		"0,,,\n" +
		"1,1.25,,\n" +
		"2,1.5,9,11\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVRejectsRaggedColumns(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Column{
		{Indicator: "A", Output: indicators.NewSingle([]float64{1, 2})},
		{Indicator: "B", Output: indicators.NewSingle([]float64{1})},
	})
	assert.Error(t, err)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "idx\n", buf.String())
}
