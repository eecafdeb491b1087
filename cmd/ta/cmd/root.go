package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootConfig holds the persistent flags shared by every subcommand.
type rootConfig struct {
	LogLevel string
	NoColor  bool
	EnvFile  string

	logger zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &rootConfig{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "ta",
		Short: "Technical indicators over OHLCV candle series",
		Long: `ta computes technical indicators (ADX, ADXR, APO, AROON, ATR, AVGPRICE,
BBANDS, AD, ADOSC) over candle data read from CSV or JSON files.

Results can be written to a wide CSV file, journaled to SQLite and
exported as Prometheus textfile metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.NoColor, "no-color", false, "Disable colored log output")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env", ".env", "dotenv file with TA_* overrides (skipped when missing)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(rc.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		rc.logger = newLogger(cmd, level, rc.NoColor)
		return nil
	}

	cmd.AddCommand(
		newCalcCmd(rc),
		newListCmd(rc),
		newRunsCmd(rc),
		newConfigCmd(rc),
		newVersionCmd(),
	)

	return cmd
}

func newLogger(cmd *cobra.Command, level zerolog.Level, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}
