// Package journal persists calculation runs and their outputs.
package journal

import (
	"time"

	"github.com/rustyeddy/ta/indicators"
)

// Run describes one invocation of a batch of indicators over a series.
type Run struct {
	RunID      string
	Created    time.Time
	Source     string // where the bars came from, usually a file path
	Bars       int
	Indicators []string
}

type Journal interface {
	RecordRun(Run) error
	RecordOutput(runID, indicator string, out indicators.Output) error
	Close() error
}
