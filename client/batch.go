package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Nioron07/Easy-Acumatica/odata"
)

// Call is one deferred operation of a batch run.
type Call struct {
	// Description identifies the call in results and error messages,
	// conventionally "service.operation".
	Description string
	Run         func(ctx context.Context) (any, error)
}

// Result is the outcome of one call within a batch, in submission order.
type Result struct {
	Index       int
	Description string
	Value       any
	Err         error
	Elapsed     time.Duration
}

// Stats summarizes one batch execution.
type Stats struct {
	Total       int
	Succeeded   int
	Failed      int
	Elapsed     time.Duration
	AverageCall time.Duration
	MinCall     time.Duration
	MaxCall     time.Duration
	Concurrency int
}

// Batch runs independent API calls concurrently with bounded parallelism.
// Calls execute at most once; Execute on an already-run batch returns the
// cached results. Deadlines come from the caller's context.
type Batch struct {
	calls       []Call
	concurrency int
	failFast    bool

	executed bool
	results  []Result
	stats    Stats
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency bounds the number of calls in flight at once.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFailFast makes Execute stop scheduling new calls and return the first
// failure instead of collecting every error into the results.
func WithFailFast() BatchOption {
	return func(b *Batch) { b.failFast = true }
}

// NewBatch creates an empty batch. The default concurrency is 10.
func NewBatch(opts ...BatchOption) *Batch {
	b := &Batch{concurrency: 10}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends a deferred call and returns the batch for chaining.
func (b *Batch) Add(description string, run func(ctx context.Context) (any, error)) *Batch {
	b.calls = append(b.calls, Call{Description: description, Run: run})
	return b
}

// Len returns the number of calls in the batch.
func (b *Batch) Len() int { return len(b.calls) }

// Execute runs every call and returns the results in submission order.
// Without fail-fast the returned error is nil and per-call failures live in
// the results; with fail-fast the first failure cancels the remaining calls
// and is returned.
func (b *Batch) Execute(ctx context.Context) ([]Result, error) {
	if b.executed {
		return b.results, nil
	}
	b.executed = true
	b.results = make([]Result, len(b.calls))

	start := time.Now()
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(b.concurrency)
	for i, call := range b.calls {
		i, call := i, call
		grp.Go(func() error {
			callStart := time.Now()
			value, err := call.Run(gctx)
			b.results[i] = Result{
				Index:       i,
				Description: call.Description,
				Value:       value,
				Err:         err,
				Elapsed:     time.Since(callStart),
			}
			if err != nil && b.failFast {
				return errors.Wrapf(err, "batch: call %d (%s)", i, call.Description)
			}
			return nil
		})
	}
	err := grp.Wait()
	b.stats = b.summarize(time.Since(start))
	return b.results, err
}

func (b *Batch) summarize(elapsed time.Duration) Stats {
	s := Stats{
		Total:       len(b.results),
		Elapsed:     elapsed,
		Concurrency: min(b.concurrency, len(b.calls)),
	}
	var callTime time.Duration
	for _, r := range b.results {
		if r.Err == nil {
			s.Succeeded++
		} else {
			s.Failed++
		}
		callTime += r.Elapsed
		if r.Elapsed > s.MaxCall {
			s.MaxCall = r.Elapsed
		}
		if s.MinCall == 0 || r.Elapsed < s.MinCall {
			s.MinCall = r.Elapsed
		}
	}
	if s.Total > 0 {
		s.AverageCall = callTime / time.Duration(s.Total)
	}
	return s
}

// Results returns the outcome of every call in submission order.
func (b *Batch) Results() []Result { return b.results }

// Stats returns the statistics of the last execution.
func (b *Batch) Stats() Stats { return b.stats }

// Succeeded returns the values of every successful call, in order.
func (b *Batch) Succeeded() []any {
	var values []any
	for _, r := range b.results {
		if r.Err == nil {
			values = append(values, r.Value)
		}
	}
	return values
}

// Failed returns the results of every failed call, in order.
func (b *Batch) Failed() []Result {
	var failed []Result
	for _, r := range b.results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// RetryFailed builds a new batch containing only the failed calls of an
// executed batch, keeping this batch's options.
func (b *Batch) RetryFailed(opts ...BatchOption) *Batch {
	retry := &Batch{concurrency: b.concurrency, failFast: b.failFast}
	for _, opt := range opts {
		opt(retry)
	}
	for _, r := range b.results {
		if r.Err != nil {
			retry.calls = append(retry.calls, b.calls[r.Index])
		}
	}
	return retry
}

// BatchGetByKeys builds a batch fetching one record per key set through the
// service.
func BatchGetByKeys(s *Service, keySets [][]string, opts odata.QueryOptions, bopts ...BatchOption) *Batch {
	b := NewBatch(bopts...)
	for _, keys := range keySets {
		keys := keys
		b.Add(ServiceName(s.entity)+".get_by_keys", func(ctx context.Context) (any, error) {
			return s.GetByKeys(ctx, keys, opts)
		})
	}
	return b
}

// BatchGetList builds a batch running one filtered list query per option
// set through the service.
func BatchGetList(s *Service, optSets []odata.QueryOptions, bopts ...BatchOption) *Batch {
	b := NewBatch(bopts...)
	for _, opts := range optSets {
		opts := opts
		b.Add(ServiceName(s.entity)+".get_list", func(ctx context.Context) (any, error) {
			return s.GetList(ctx, opts)
		})
	}
	return b
}
