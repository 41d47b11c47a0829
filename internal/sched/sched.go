// Package sched provides step-indexed control schedules for adaptive
// filters: scalar schedules for learning rates and boolean flags for mode
// switches (training windows, lock-gain windows).
//
// A schedule is a pure function of the step index; the same index always
// yields the same value.
package sched

import (
	"fmt"
	"math"
)

// Schedule maps a step index to a scalar control value.
type Schedule func(step int) float64

// Flag maps a step index to a boolean mode switch.
type Flag func(step int) bool

// Constant returns v for every step.
func Constant(v float64) Schedule {
	return func(int) float64 { return v }
}

// PiecewiseConstant returns values[k] for boundaries[k-1] <= step < boundaries[k],
// with values[0] before the first boundary and the last value from the last
// boundary onward. Boundary indices themselves select the following value.
//
// len(values) must be len(boundaries)+1 and boundaries must be strictly
// increasing.
func PiecewiseConstant(boundaries []int, values []float64) (Schedule, error) {
	if len(values) != len(boundaries)+1 {
		return nil, fmt.Errorf("sched: need %d values for %d boundaries, got %d",
			len(boundaries)+1, len(boundaries), len(values))
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, fmt.Errorf("sched: boundaries must be strictly increasing, got %v", boundaries)
		}
	}
	bs := append([]int(nil), boundaries...)
	vs := append([]float64(nil), values...)
	return func(step int) float64 {
		k := 0
		for _, b := range bs {
			if step >= b {
				k++
			}
		}
		return vs[k]
	}, nil
}

// ExponentialDecay returns v * rate^(step/decaySteps).
func ExponentialDecay(v, decaySteps, rate float64) Schedule {
	return func(step int) float64 {
		return v * math.Pow(rate, float64(step)/decaySteps)
	}
}

// InverseTimeDecay returns v / (1 + rate*step/decaySteps). With staircase
// set, step/decaySteps is floored so the rate decays in discrete intervals.
func InverseTimeDecay(v, decaySteps, rate float64, staircase bool) Schedule {
	if staircase {
		return func(step int) float64 {
			return v / (1 + rate*float64(int(float64(step)/decaySteps)))
		}
	}
	return func(step int) float64 {
		return v / (1 + rate*float64(step)/decaySteps)
	}
}

// PolynomialDecay interpolates from v to final over decaySteps steps with
// the given power, then holds final.
func PolynomialDecay(v, decaySteps, final, power float64) Schedule {
	return func(step int) float64 {
		s := float64(step)
		if s > decaySteps {
			s = decaySteps
		}
		mult := math.Pow(1-s/decaySteps, power)
		return mult*(v-final) + final
	}
}

// FlagConstant returns v for every step.
func FlagConstant(v bool) Flag {
	return func(int) bool { return v }
}

// Before is true for steps strictly below n. Typical use: truth-aided
// training for the first n steps, blind afterwards.
func Before(n int) Flag {
	return func(step int) bool { return step < n }
}

// After is true for steps at or above n.
func After(n int) Flag {
	return func(step int) bool { return step >= n }
}
