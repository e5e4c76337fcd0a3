// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// Config controls the record pipeline.
type Config struct {
	Threads  int          // number of worker goroutines (>=1)
	OnResult func(Result) // optional; called once per input from a single goroutine
}

// Run processes every input with ex and returns the kept records in input
// order together with a summary. Per-record failures (including panics inside
// ex) never stop the batch; they are counted and reported through OnResult.
// The only error returned is context cancellation.
func Run(ctx context.Context, cfg Config, inputs []Input, ex Extractor) ([]Record, Summary, error) {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	type job struct {
		index int
		in    Input
	}
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan Result, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					r := process(ctx, ex, j.index, j.in)
					if r.Failure != nil && isCancel(r.Failure.Err) && ctx.Err() != nil {
						return
					}
					select {
					case results <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: results arrive out of order; slot them by input index.
	var (
		slots = make([]*Record, len(inputs))
		sum   Summary
		cwg   sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for r := range results {
			sum.add(r)
			slots[r.Index] = r.Record
			if cfg.OnResult != nil {
				cfg.OnResult(r)
			}
		}
	}()

	// Feed work
feed:
	for i, in := range inputs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, in: in}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return nil, sum, ctx.Err()
	}

	kept := make([]Record, 0, sum.Kept)
	for _, rec := range slots {
		if rec != nil {
			kept = append(kept, *rec)
		}
	}
	return kept, sum, nil
}

// process runs both structures of one record. The record is kept only when
// both produce a map.
func process(ctx context.Context, ex Extractor, index int, in Input) (res Result) {
	res = Result{Index: index, Input: in}
	side := Experimental
	defer func() {
		if p := recover(); p != nil {
			res.Record = nil
			res.Failure = &Failure{Side: side, Reason: Internal, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	exp, err := ex.Extract(ctx, in.Sequence, in.ExperimentalPath)
	if err != nil {
		res.Failure = &Failure{Side: side, Reason: Classify(err), Err: err}
		return res
	}
	side = Predicted
	pred, err := ex.Extract(ctx, in.Sequence, in.PredictedPath)
	if err != nil {
		res.Failure = &Failure{Side: side, Reason: Classify(err), Err: err}
		return res
	}
	res.Record = &Record{
		ID:           in.ID,
		Sequence:     in.Sequence,
		Label:        in.Label,
		Experimental: exp,
		Predicted:    pred,
	}
	return res
}
