package optim

import (
	"math"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/sched"
)

// AdaGrad implements adaptive subgradient descent with optional momentum.
//
// Update rule:
//
//	gsq   += |grad|^2
//	m      = (1-momentum) * conj(grad)/sqrt(gsq) + momentum * m
//	param  = param - lr(step) * m
//
// Elements with a zero accumulator contribute no update, matching the
// usual zero-safe AdaGrad formulation.
type AdaGrad struct {
	lr       sched.Schedule
	momentum float64
	gsq      []float64
	m        []complex128
}

// AdaGradConfig holds configuration for AdaGrad.
type AdaGradConfig struct {
	LR       sched.Schedule // Learning rate schedule (default: constant 0.01)
	Momentum float64        // Momentum coefficient (default: 0.9)
}

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad {
	if config.Momentum == 0 {
		config.Momentum = 0.9
	}
	return &AdaGrad{lr: rate(config.LR, 0.01), momentum: config.Momentum}
}

// Step applies one AdaGrad update to params in place.
func (a *AdaGrad) Step(step int, params, grads []complex128) error {
	if err := checkLens("adagrad", params, grads); err != nil {
		return err
	}
	if a.gsq == nil {
		a.gsq = make([]float64, len(params))
		a.m = make([]complex128, len(params))
	}
	lr := complex(a.lr(step), 0)
	for i, g := range grads {
		a.gsq[i] += real(g)*real(g) + imag(g)*imag(g)
		var scaled complex128
		if a.gsq[i] > 0 {
			scaled = cmplx.Conj(g) * complex(1/math.Sqrt(a.gsq[i]), 0)
		}
		a.m[i] = complex(1-a.momentum, 0)*scaled + complex(a.momentum, 0)*a.m[i]
		params[i] -= lr * a.m[i]
	}
	return nil
}

// RMSProp implements root-mean-square gradient scaling.
//
// Update rule:
//
//	avg    = gamma * avg + (1-gamma) * |grad|^2
//	param  = param - lr(step) * conj(grad) / sqrt(avg + eps)
type RMSProp struct {
	lr    sched.Schedule
	gamma float64
	eps   float64
	avg   []float64
}

// RMSPropConfig holds configuration for RMSProp.
type RMSPropConfig struct {
	LR    sched.Schedule // Learning rate schedule (default: constant 0.01)
	Gamma float64        // Squared-gradient decay (default: 0.9)
	Eps   float64        // Numerical stability term (default: 1e-8)
}

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	if config.Gamma == 0 {
		config.Gamma = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &RMSProp{lr: rate(config.LR, 0.01), gamma: config.Gamma, eps: config.Eps}
}

// Step applies one RMSProp update to params in place.
func (r *RMSProp) Step(step int, params, grads []complex128) error {
	if err := checkLens("rmsprop", params, grads); err != nil {
		return err
	}
	if r.avg == nil {
		r.avg = make([]float64, len(params))
	}
	lr := r.lr(step)
	for i, g := range grads {
		a2 := real(g)*real(g) + imag(g)*imag(g)
		r.avg[i] = r.gamma*r.avg[i] + (1-r.gamma)*a2
		params[i] -= complex(lr/math.Sqrt(r.avg[i]+r.eps), 0) * cmplx.Conj(g)
	}
	return nil
}
