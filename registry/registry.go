// Package registry indexes indicators by name and tag and runs batches of
// calculations over one candle series.
package registry

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/ta/indicators"
	"github.com/rustyeddy/ta/market"
)

// ErrUnknownIndicator is returned for a request naming no registered indicator.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Request names one calculation of a batch.
type Request struct {
	Name   string
	Params indicators.Params
}

// Result pairs a Request with its output or error.
type Result struct {
	Request  Request
	Output   indicators.Output
	Err      error
	Duration time.Duration
}

// Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]indicators.Indicator
	logger     *zerolog.Logger
	metrics    *Metrics
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	workers    int
}

type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zerolog.Logger) Option {
	return func(r *Registry) {
		logger := l.With().Str("component", "registry").Logger()
		r.logger = &logger
	}
}

// WithRegisterer records metrics on reg instead of a private registry. When
// reg can also gather, such as a *prometheus.Registry, Gatherer reads from it.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.registerer = reg
		if g, ok := reg.(prometheus.Gatherer); ok {
			r.gatherer = g
		}
	}
}

// WithGatherer sets what Gatherer returns, for registerers that cannot
// gather themselves.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(r *Registry) {
		r.gatherer = g
	}
}

// WithRegistry records and gathers metrics on reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Registry) {
		r.registerer = reg
		r.gatherer = reg
	}
}

// WithWorkers bounds how many calculations of a batch run at once.
func WithWorkers(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) (*Registry, error) {
	nop := zerolog.Nop()
	r := &Registry{
		byName:  make(map[string]indicators.Indicator),
		logger:  &nop,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registerer == nil {
		reg := prometheus.NewRegistry()
		r.registerer = reg
		if r.gatherer == nil {
			r.gatherer = reg
		}
	}
	if r.gatherer == nil {
		r.gatherer = prometheus.Gatherers{}
	}

	m, err := NewMetrics(r.registerer)
	if err != nil {
		return nil, fmt.Errorf("registry metrics: %w", err)
	}
	r.metrics = m
	return r, nil
}

// NewDefault returns a registry holding every built-in indicator.
func NewDefault(opts ...Option) (*Registry, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	for _, ind := range indicators.All() {
		if err := r.Register(ind); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Register adds ind under its short name. Short names are unique, ignoring
// case.
func (r *Registry) Register(ind indicators.Indicator) error {
	k := key(ind.ShortName())
	if k == "" {
		return errors.New("register: indicator has no short name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[k]; ok {
		return fmt.Errorf("register %s: already registered", k)
	}
	r.byName[k] = ind
	r.logger.Debug().Str("indicator", k).Msg("registered")
	return nil
}

// Get looks up an indicator by short name, ignoring case.
func (r *Registry) Get(name string) (indicators.Indicator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ind, ok := r.byName[key(name)]
	return ind, ok
}

// List returns every indicator sorted by short name.
func (r *Registry) List() []indicators.Indicator {
	r.mu.RLock()
	out := make([]indicators.Indicator, 0, len(r.byName))
	for _, ind := range r.byName {
		out = append(out, ind)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b indicators.Indicator) int {
		return strings.Compare(a.ShortName(), b.ShortName())
	})
	return out
}

// ByTag returns the indicators carrying all of tags, sorted by short name.
// With no tags it returns everything.
func (r *Registry) ByTag(tags ...indicators.Tag) []indicators.Indicator {
	var out []indicators.Indicator
	for _, ind := range r.List() {
		if ind.Tags().HasAll(tags...) {
			out = append(out, ind)
		}
	}
	return out
}

// Gatherer exposes the metrics of the registry. It gathers nothing when
// metrics go to a registerer that cannot gather and no WithGatherer was set.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// Calculate runs every request against s. Requests are independent and run
// concurrently; results come back in request order. A failed request never
// affects the others. Once ctx is done no new calculation starts and the
// remaining results carry ctx.Err().
func (r *Registry) Calculate(ctx context.Context, s market.Series, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	r.metrics.BatchSize.Observe(float64(len(reqs)))

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, req := range reqs {
		results[i].Request = req

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			r.metrics.CalculationsTotal.WithLabelValues(key(req.Name), OutcomeCanceled).Inc()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(res *Result) {
			defer wg.Done()
			defer func() { <-sem }()
			r.calculate(ctx, s, res)
		}(&results[i])
	}

	wg.Wait()
	return results
}

func (r *Registry) calculate(ctx context.Context, s market.Series, res *Result) {
	name := key(res.Request.Name)
	if err := ctx.Err(); err != nil {
		res.Err = err
		r.metrics.CalculationsTotal.WithLabelValues(name, OutcomeCanceled).Inc()
		return
	}

	ind, ok := r.Get(name)
	if !ok {
		res.Err = fmt.Errorf("%w: %q", ErrUnknownIndicator, res.Request.Name)
		r.metrics.CalculationsTotal.WithLabelValues(name, OutcomeUnknown).Inc()
		r.logger.Warn().Str("indicator", res.Request.Name).Msg("unknown indicator")
		return
	}

	start := time.Now()
	res.Output, res.Err = ind.Calculate(s, res.Request.Params)
	res.Duration = time.Since(start)

	r.metrics.CalculationDuration.WithLabelValues(name).Observe(res.Duration.Seconds())
	r.metrics.CalculationsTotal.WithLabelValues(name, outcome(res.Err)).Inc()

	if res.Err != nil {
		r.logger.Warn().
			Err(res.Err).
			Str("indicator", name).
			Str("params", res.Request.Params.String()).
			Msg("calculation failed")
		return
	}
	r.logger.Debug().
		Str("indicator", name).
		Int("bars", res.Output.Len()).
		Int("warmup", res.Output.Warmup()).
		Dur("took", res.Duration).
		Msg("calculated")
}

// CalculateByTags runs every indicator carrying all of tags with the same
// params. Indicators ignore parameter keys they do not declare.
func (r *Registry) CalculateByTags(ctx context.Context, s market.Series, params indicators.Params, tags ...indicators.Tag) []Result {
	var reqs []Request
	for _, ind := range r.ByTag(tags...) {
		reqs = append(reqs, Request{Name: ind.ShortName(), Params: params.Clone()})
	}
	return r.Calculate(ctx, s, reqs)
}

func outcome(err error) string {
	switch indicators.KindOf(err) {
	case 0:
		if err == nil {
			return OutcomeOK
		}
		return OutcomeCalculationError
	case indicators.InvalidInput:
		return OutcomeInvalidInput
	case indicators.InvalidParameters:
		return OutcomeInvalidParams
	}
	return OutcomeCalculationError
}
