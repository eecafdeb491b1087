package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ta/indicators"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "csv", cfg.Data.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	require.Len(t, cfg.Indicators, 3)
	assert.Equal(t, "ADX", cfg.Indicators[0].Name)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() []IndicatorConfig {
		return []IndicatorConfig{{Name: "ATR"}}
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  []string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "missing data path",
			config: &Config{
				Indicators: valid(),
			},
			wantErr: true,
			errMsg:  []string{"data.path is required"},
		},
		{
			name: "unknown format",
			config: &Config{
				Data:       DataConfig{Path: "bars.parquet", Format: "parquet"},
				Indicators: valid(),
			},
			wantErr: true,
			errMsg:  []string{"data.format must be 'csv' or 'json'"},
		},
		{
			name: "no indicators",
			config: &Config{
				Data: DataConfig{Path: "bars.csv"},
			},
			wantErr: true,
			errMsg:  []string{"at least one indicator is required"},
		},
		{
			name: "blank indicator name",
			config: &Config{
				Data:       DataConfig{Path: "bars.csv"},
				Indicators: []IndicatorConfig{{Name: "ATR"}, {Name: "  "}},
			},
			wantErr: true,
			errMsg:  []string{"indicators[1].name is required"},
		},
		{
			name: "half a csv journal",
			config: &Config{
				Data:       DataConfig{Path: "bars.csv"},
				Indicators: valid(),
				Journal:    JournalConfig{RunsFile: "runs.csv"},
			},
			wantErr: true,
			errMsg:  []string{"runs_file and outputs_file must be set together"},
		},
		{
			name: "bad log level",
			config: &Config{
				Data:       DataConfig{Path: "bars.csv"},
				Indicators: valid(),
				LogLevel:   "loud",
			},
			wantErr: true,
			errMsg:  []string{"log_level"},
		},
		{
			name: "negative workers",
			config: &Config{
				Data:       DataConfig{Path: "bars.csv"},
				Indicators: valid(),
				Workers:    -1,
			},
			wantErr: true,
			errMsg:  []string{"workers must not be negative"},
		},
		{
			name:    "every problem reported",
			config:  &Config{Data: DataConfig{Format: "xml"}, LogLevel: "loud"},
			wantErr: true,
			errMsg: []string{
				"data.path is required",
				"data.format must be 'csv' or 'json'",
				"at least one indicator is required",
				"log_level",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				for _, msg := range tt.errMsg {
					assert.Contains(t, err.Error(), msg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Metrics.TextfilePath = "ta.prom"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Data, loaded.Data)
			assert.Equal(t, cfg.Journal, loaded.Journal)
			assert.Equal(t, cfg.Output, loaded.Output)
			assert.Equal(t, cfg.Metrics, loaded.Metrics)
			require.Len(t, loaded.Indicators, len(cfg.Indicators))

			// numbers come back as whatever the codec picks; decoding
			// into the typed schema is what matters
			var p struct {
				Period int     `json:"period"`
				Mult   float64 `json:"std_dev_multiplier"`
			}
			require.NoError(t, indicators.Decode(loaded.Indicators[2].Params, &p))
			assert.Equal(t, 20, p.Period)
			assert.Equal(t, 2.0, p.Mult)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
data:
  path: bars.json
indicators:
  - name: adosc
    params:
      short_period: 3
      long_period: 10
  - name: AVGPRICE
journal:
  db_path: runs.db
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.DataFormat())
	assert.Equal(t, "runs.db", cfg.Journal.DBPath)
	require.Len(t, cfg.Indicators, 2)
	assert.Equal(t, "adosc", cfg.Indicators[0].Name)
	assert.Nil(t, cfg.Indicators[1].Params)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestDataFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
	}{
		{"bars.csv", "", "csv"},
		{"bars.JSON", "", "json"},
		{"bars.txt", "", "csv"},
		{"bars.txt", "JSON", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			c := &Config{Data: DataConfig{Path: tt.path, Format: tt.format}}
			assert.Equal(t, tt.want, c.DataFormat())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TA_DATA_PATH", "env.csv")
	t.Setenv("TA_DB_PATH", "env.db")
	t.Setenv("TA_LOG_LEVEL", "warn")
	t.Setenv("TA_CSV_PATH", "")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "env.csv", cfg.Data.Path)
	assert.Equal(t, "env.db", cfg.Journal.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "./indicators.csv", cfg.Output.CSVPath, "empty values do not override")
}

func TestLoadEnvFile(t *testing.T) {
	// godotenv.Load never overrides variables that are already set, so
	// make sure these start out unset and are cleaned up afterwards
	t.Setenv("TA_DATA_PATH", "")
	t.Setenv("TA_CSV_PATH", "")
	require.NoError(t, os.Unsetenv("TA_DATA_PATH"))
	require.NoError(t, os.Unsetenv("TA_CSV_PATH"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TA_DATA_PATH=dotenv.csv\nTA_CSV_PATH=out.csv\n"), 0644))

	cfg := Default()
	require.NoError(t, cfg.LoadEnv(path))
	assert.Equal(t, "dotenv.csv", cfg.Data.Path)
	assert.Equal(t, "out.csv", cfg.Output.CSVPath)

	missing := Default()
	assert.NoError(t, missing.LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
}
