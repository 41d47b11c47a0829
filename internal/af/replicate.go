package af

import (
	"fmt"

	"github.com/coheq-dsp/coheq/internal/parallel"
)

// Lanes lifts a filter to L independent copies over an extra lane axis.
// All lanes share the wrapped filter's hyperparameters but never share
// state, so the result is behaviorally identical to L separate single-lane
// runs. Used for polarization/channel diversity and parallel parameter
// scans.
//
// Lanes itself satisfies Filter[[]S, []I, []O], so it composes with Fold
// like any other filter.
type Lanes[S, I, O any] struct {
	inner Filter[S, I, O]
	n     int
	par   parallel.Config
}

// Replicate wraps f into an n-lane filter. Lane updates are pure, so they
// may execute on parallel workers per cfg; pass a disabled config for
// strictly sequential lane iteration.
func Replicate[S, I, O any](f Filter[S, I, O], n int, cfg parallel.Config) (*Lanes[S, I, O], error) {
	if f == nil {
		return nil, fmt.Errorf("af: Replicate requires a filter")
	}
	if n < 1 {
		return nil, fmt.Errorf("af: Replicate requires at least one lane, got %d", n)
	}
	return &Lanes[S, I, O]{inner: f, n: n, par: cfg}, nil
}

// NumLanes returns the lane count.
func (l *Lanes[S, I, O]) NumLanes() int { return l.n }

// Init initializes every lane independently.
func (l *Lanes[S, I, O]) Init() ([]S, error) {
	states := make([]S, l.n)
	for i := range states {
		s, err := l.inner.Init()
		if err != nil {
			return nil, fmt.Errorf("af: lane %d init: %w", i, err)
		}
		states[i] = s
	}
	return states, nil
}

// Update advances every lane by one step. len(states) and len(ins) must
// both equal the lane count. The error of the lowest-indexed failing lane
// is returned.
func (l *Lanes[S, I, O]) Update(step int, states []S, ins []I) ([]S, []O, error) {
	if len(states) != l.n {
		return nil, nil, fmt.Errorf("af: lane state count %d, want %d", len(states), l.n)
	}
	if len(ins) != l.n {
		return nil, nil, fmt.Errorf("af: lane input count %d, want %d", len(ins), l.n)
	}

	next := make([]S, l.n)
	outs := make([]O, l.n)
	err := parallel.ForErr(l.n, func(i int) error {
		s, o, err := l.inner.Update(step, states[i], ins[i])
		if err != nil {
			return fmt.Errorf("af: lane %d: %w", i, err)
		}
		next[i] = s
		outs[i] = o
		return nil
	}, l.par)
	if err != nil {
		return nil, nil, err
	}
	return next, outs, nil
}

// SplitLanes regroups per-step lane inputs from per-lane sequences:
// given lanes[l][t], it returns steps[t][l] suitable for folding a Lanes
// filter. All lanes must have equal length.
func SplitLanes[I any](lanes [][]I) ([][]I, error) {
	if len(lanes) == 0 {
		return nil, nil
	}
	n := len(lanes[0])
	for i, lane := range lanes {
		if len(lane) != n {
			return nil, fmt.Errorf("af: lane %d has %d steps, want %d", i, len(lane), n)
		}
	}
	steps := make([][]I, n)
	for t := 0; t < n; t++ {
		row := make([]I, len(lanes))
		for i := range lanes {
			row[i] = lanes[i][t]
		}
		steps[t] = row
	}
	return steps, nil
}
