// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers over complex
// parameter vectors, for callers composing their own update rules on top
// of the closed-form gradients the equalizers expose.
//
// # Overview
//
// This package contains:
//   - SGD, Momentum, Nesterov: first-order methods
//   - AdaGrad, RMSProp: accumulated squared-magnitude scaling
//   - Adam, AdaMax: moment estimation with bias correction
//   - Optimizer interface for custom methods
//
// All optimizers step parameters in place against Wirtinger gradients:
// the descent direction of a real loss over complex parameters is the
// conjugate gradient, which every Step applies internally.
//
// # Basic Usage
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: sched.Constant(1e-3)})
//	for step, g := range grads {
//	    if err := opt.Step(step, params, g); err != nil {
//	        return err
//	    }
//	}
package optim
