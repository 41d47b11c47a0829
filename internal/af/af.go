// Package af defines the adaptive-filter contract and the sequential
// execution engine shared by every equalizer and carrier-recovery
// algorithm in this repository.
//
// A filter is a (state, input) -> (state, output) recursion:
//
//	type Filter[S, I, O any] interface {
//	    Init() (S, error)
//	    Update(step int, state S, in I) (S, O, error)
//	}
//
// Update must be pure and deterministic: the same (step, state, input)
// always yields the same (state, output), and the previous state is never
// mutated. Stateless re-application of learned parameters to data (the
// "apply" operation) stays on each concrete algorithm because its
// signature is algorithm-specific.
//
// Fold threads state through a time-ordered input sequence. Time steps are
// strictly sequential; only independent lanes (see Replicate) may run in
// parallel.
package af

import (
	"errors"
	"fmt"
)

// ErrDiverged is returned (wrapped, with the step index) when non-finite
// values appear in a filter's state. Divergence is terminal: the fold
// stops and surfaces it, never masks it.
var ErrDiverged = errors.New("af: filter state diverged")

// Diverged wraps ErrDiverged with the failing step index.
func Diverged(step int) error {
	return fmt.Errorf("step %d: %w", step, ErrDiverged)
}

// Filter is the uniform adaptive-filter contract.
//
// S is the algorithm-specific state record, I the per-step input, O the
// per-step diagnostic output.
type Filter[S, I, O any] interface {
	// Init produces the initial state from the filter's configuration.
	Init() (S, error)

	// Update consumes one input at the given step index and returns the
	// successor state together with a diagnostic output. It must not
	// mutate the passed state.
	Update(step int, state S, in I) (S, O, error)
}

// SinkFn receives one output per step, in step order, as the fold produces
// it. Returning an error aborts the fold.
type SinkFn[O any] func(step int, out O) error

// FoldSink runs the filter over inputs starting at step0, threading each
// returned state into the next call and streaming every output to sink.
// It returns the next unused step index and the final state.
//
// Memory use is O(1) beyond the caller's own sink, so sequences of
// effectively unbounded length can be processed with the trace offloaded
// as it is produced.
func FoldSink[S, I, O any](f Filter[S, I, O], step0 int, state S, inputs []I, sink SinkFn[O]) (int, S, error) {
	step := step0
	for _, in := range inputs {
		next, out, err := f.Update(step, state, in)
		if err != nil {
			return step, state, err
		}
		if sink != nil {
			if err := sink(step, out); err != nil {
				return step, state, fmt.Errorf("af: sink at step %d: %w", step, err)
			}
		}
		state = next
		step++
	}
	return step, state, nil
}

// Fold runs the filter over inputs starting at step0 and collects the
// output trace in order. It returns the next unused step index, the final
// state, and one output per input.
func Fold[S, I, O any](f Filter[S, I, O], step0 int, state S, inputs []I) (int, S, []O, error) {
	outs := make([]O, 0, len(inputs))
	step, final, err := FoldSink(f, step0, state, inputs, func(_ int, out O) error {
		outs = append(outs, out)
		return nil
	})
	return step, final, outs, err
}
