// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package af provides the public API for the adaptive-filter contract and
// its execution engines.
//
// Every adaptive algorithm in Coheq implements Filter: an Init that
// produces the starting state and an Update that consumes one input and
// returns the next state plus a diagnostic output. Fold threads a state
// through an input sequence; Replicate lifts a filter to L independent
// lanes sharing one step counter.
//
// Example:
//
//	eq, _ := equalize.NewCMA(equalize.CMAConfig{})
//	s0, _ := eq.Init()
//	_, final, outs, err := af.Fold[*equalize.CMAState, equalize.Frame, equalize.CMAOut](eq, 0, s0, frames)
package af

import (
	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/parallel"
)

// ErrDiverged marks a filter whose state left the finite domain; wrap it
// with Diverged to carry the failing step.
var ErrDiverged = af.ErrDiverged

// Diverged returns an ErrDiverged annotated with the failing step.
func Diverged(step int) error {
	return af.Diverged(step)
}

// Filter is the contract every adaptive algorithm satisfies.
type Filter[S, I, O any] = af.Filter[S, I, O]

// SinkFn consumes one per-step output; returning an error aborts the fold.
type SinkFn[O any] = af.SinkFn[O]

// FoldSink folds a filter over an input sequence, streaming outputs into
// the sink. It returns the next unused step index and the final state.
func FoldSink[S, I, O any](f Filter[S, I, O], step0 int, state S, inputs []I, sink SinkFn[O]) (int, S, error) {
	return af.FoldSink(f, step0, state, inputs, sink)
}

// Fold folds a filter over an input sequence, collecting every per-step
// output.
func Fold[S, I, O any](f Filter[S, I, O], step0 int, state S, inputs []I) (int, S, []O, error) {
	return af.Fold(f, step0, state, inputs)
}

// Lanes runs n independent copies of a filter over a batch axis.
type Lanes[S, I, O any] = af.Lanes[S, I, O]

// ParallelConfig controls worker fan-out of replicated lanes.
type ParallelConfig = parallel.Config

// DefaultParallelConfig enables parallel lane updates sized to the
// machine.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Replicate lifts a filter to n independent lanes.
func Replicate[S, I, O any](f Filter[S, I, O], n int, cfg ParallelConfig) (*Lanes[S, I, O], error) {
	return af.Replicate(f, n, cfg)
}

// SplitLanes transposes per-lane input sequences into per-step lane rows,
// the input shape Lanes.Update expects.
func SplitLanes[I any](lanes [][]I) ([][]I, error) {
	return af.SplitLanes(lanes)
}
