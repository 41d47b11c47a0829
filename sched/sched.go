// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sched provides the public API for step-indexed scalar and
// boolean schedules, the knobs of every adaptive algorithm in Coheq:
// learning rates, training windows and mode switches.
//
// Example:
//
//	lr, _ := sched.PiecewiseConstant([]int{1000}, []float64{1e-4, 1e-5})
//	train := sched.Before(500)
package sched

import (
	"github.com/coheq-dsp/coheq/internal/sched"
)

// Schedule maps a step index to a scalar.
type Schedule = sched.Schedule

// Flag maps a step index to a boolean mode.
type Flag = sched.Flag

// Constant returns v for every step.
func Constant(v float64) Schedule {
	return sched.Constant(v)
}

// PiecewiseConstant returns values[k] while step is in
// [boundaries[k-1], boundaries[k]); each boundary belongs to the segment
// it starts. Boundaries must be strictly increasing and one shorter than
// values.
func PiecewiseConstant(boundaries []int, values []float64) (Schedule, error) {
	return sched.PiecewiseConstant(boundaries, values)
}

// ExponentialDecay returns v * rate^(step/decaySteps).
func ExponentialDecay(v, decaySteps, rate float64) Schedule {
	return sched.ExponentialDecay(v, decaySteps, rate)
}

// InverseTimeDecay returns v / (1 + rate*step/decaySteps), with the ratio
// floored when staircase is set.
func InverseTimeDecay(v, decaySteps, rate float64, staircase bool) Schedule {
	return sched.InverseTimeDecay(v, decaySteps, rate, staircase)
}

// PolynomialDecay interpolates from v to final over decaySteps with the
// given power, then holds final.
func PolynomialDecay(v, decaySteps, final, power float64) Schedule {
	return sched.PolynomialDecay(v, decaySteps, final, power)
}

// FlagConstant returns v for every step.
func FlagConstant(v bool) Flag {
	return sched.FlagConstant(v)
}

// Before is true for steps < n.
func Before(n int) Flag {
	return sched.Before(n)
}

// After is true for steps >= n.
func After(n int) Flag {
	return sched.After(n)
}
