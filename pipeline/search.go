package pipeline

import (
	"context"
	"runtime"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/storage"
	"github.com/colorfulnotion/intcode/vmerrors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const cacheKind = "amp"

// Result is the signal one phase ordering produced.
type Result struct {
	Signal int64   `json:"signal"`
	Phases []int64 `json:"phases"`
}

// SearchResult holds the best ordering and every ordering tried, in generation order.
type SearchResult struct {
	Best   Result   `json:"best"`
	All    []Result `json:"all"`
	Cached bool     `json:"-"`
}

type config struct {
	parallelism int
	cache       *storage.ResultCache
	vmOpts      []intcode.Option
}

type Option func(*config)

// WithParallelism bounds how many networks run at once. Values below 1 mean GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(c *config) { c.parallelism = n }
}

// WithCache looks results up in, and stores them to, c.
func WithCache(c *storage.ResultCache) Option {
	return func(cfg *config) { cfg.cache = c }
}

// WithMachineOptions passes opts to every machine the search creates.
func WithMachineOptions(opts ...intcode.Option) Option {
	return func(c *config) { c.vmOpts = append(c.vmOpts, opts...) }
}

// Permutations returns every ordering of set (Heap's algorithm). The input is not modified.
func Permutations(set []int64) [][]int64 {
	a := slices.Clone(set)
	var out [][]int64
	var generate func(k int)
	generate = func(k int) {
		if k <= 1 {
			out = append(out, slices.Clone(a))
			return
		}
		generate(k - 1)
		for i := 0; i < k-1; i++ {
			if k%2 == 0 {
				a[i], a[k-1] = a[k-1], a[i]
			} else {
				a[0], a[k-1] = a[k-1], a[0]
			}
			generate(k - 1)
		}
	}
	generate(len(a))
	return out
}

// MaxSignal runs a network for every ordering of set and returns the highest final
// signal. Ties go to the ordering generated first.
func MaxSignal(ctx context.Context, prog []int64, set []int64, opts ...Option) (*SearchResult, error) {
	cfg := config{parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parallelism < 1 {
		cfg.parallelism = runtime.GOMAXPROCS(0)
	}
	if len(set) == 0 {
		return nil, vmerrors.ErrEmptyPhaseSet
	}

	ctx, span := tracer.Start(ctx, "pipeline.MaxSignal")
	defer span.End()
	span.SetAttributes(attribute.Int64Slice("set", set), attribute.Int("parallelism", cfg.parallelism))

	if cfg.cache != nil {
		var cached SearchResult
		found, err := cfg.cache.Lookup(cacheKind, prog, set, &cached)
		if err != nil {
			log.Warn(log.PipelineMonitoring, "cache lookup failed", "err", err)
		} else if found {
			cached.Cached = true
			span.SetAttributes(attribute.Bool("cached", true))
			return &cached, nil
		}
	}

	perms := Permutations(set)
	results := make([]Result, len(perms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for i, phases := range perms {
		g.Go(func() error {
			signal, err := RunFeedback(gctx, prog, phases, cfg.vmOpts...)
			if err != nil {
				return err
			}
			results[i] = Result{Signal: signal, Phases: phases}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := &SearchResult{Best: results[0], All: results}
	for _, r := range results[1:] {
		if r.Signal > res.Best.Signal {
			res.Best = r
		}
	}
	log.Info(log.PipelineMonitoring, "phase search complete", "orderings", len(results), "signal", res.Best.Signal, "phases", res.Best.Phases)
	span.SetAttributes(attribute.Int64("signal", res.Best.Signal))

	if cfg.cache != nil {
		if err := cfg.cache.Store(cacheKind, prog, set, res); err != nil {
			log.Warn(log.PipelineMonitoring, "cache store failed", "err", err)
		}
	}
	return res, nil
}
