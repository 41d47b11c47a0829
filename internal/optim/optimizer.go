// Package optim implements reusable gradient-descent optimizers for
// complex-valued parameters.
//
// This package provides:
//   - Optimizer interface: one Step call per time index
//   - SGD, Momentum, Nesterov: first-order methods
//   - AdaGrad, RMSProp: accumulated squared-gradient scaling
//   - Adam, AdaMax: moment estimation with bias correction
//
// None of the adaptive-filter recursions in this repository require these
// optimizers (each carries its own bespoke update rule); they are provided
// as an independent numeric utility for parameter sweeps and offline
// fitting around the filters.
//
// All losses in this domain are real-valued functions of complex
// parameters, so descent directions conjugate the supplied Wirtinger
// gradient where a first moment is accumulated, and squared-gradient
// accumulators use |g|^2.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: sched.Constant(1e-3)})
//	for step, g := range grads {
//	    if err := opt.Step(step, params, g); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"fmt"

	"github.com/coheq-dsp/coheq/internal/sched"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Step applies one gradient update to params in place. The step index
// drives learning-rate schedules and bias correction, so callers must pass
// consecutive indices for schedule-dependent optimizers to behave as
// documented.
type Optimizer interface {
	Step(step int, params, grads []complex128) error
}

// rate normalizes an optional schedule to a callable, defaulting to a
// constant when unset.
func rate(s sched.Schedule, def float64) sched.Schedule {
	if s == nil {
		return sched.Constant(def)
	}
	return s
}

func checkLens(name string, params, grads []complex128) error {
	if len(params) != len(grads) {
		return fmt.Errorf("optim: %s: params length %d does not match grads length %d",
			name, len(params), len(grads))
	}
	return nil
}
