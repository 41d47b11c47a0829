// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package carrier provides the public API for carrier recovery: the CPANE
// extended Kalman filter tracking combined phase and amplitude noise, and
// a joint phase plus frequency-offset EKF.
//
// Example:
//
//	obs, _ := carrier.MakeObs(y, x, train)
//	c, _ := carrier.NewCPANE(carrier.CPANEConfig{Const: qpsk})
//	s0, _ := c.Init()
//	_, final, outs, err := af.Fold[*carrier.CPANEState, carrier.Obs, carrier.CPANEOut](c, 0, s0, obs)
package carrier

import (
	"github.com/coheq-dsp/coheq/internal/carrier"
)

// ErrShape is wrapped by every shape-validation failure in this package.
var ErrShape = carrier.ErrShape

// Obs is the per-step input of a carrier tracker.
type Obs = carrier.Obs

// MakeObs pairs received samples with optional truth and training-mask
// streams, padding shorter streams and rejecting longer ones.
func MakeObs(y, x []complex128, train []bool) ([]Obs, error) {
	return carrier.MakeObs(y, x, train)
}

// Derotate applies per-sample phase estimates to a signal.
func Derotate(psi []float64, y []complex128) ([]complex128, error) {
	return carrier.Derotate(psi, y)
}

// CPANE is the scalar EKF tracking combined carrier phase and amplitude
// noise.
type (
	CPANE       = carrier.CPANE
	CPANEConfig = carrier.CPANEConfig
	CPANEState  = carrier.CPANEState
	CPANEOut    = carrier.CPANEOut
)

// NewCPANE creates a CPANE tracker.
func NewCPANE(config CPANEConfig) (*CPANE, error) {
	return carrier.NewCPANE(config)
}

// PhaseFreqEKF is the two-state EKF jointly tracking carrier phase and
// frequency offset.
type (
	PhaseFreqEKF    = carrier.PhaseFreqEKF
	PhaseFreqConfig = carrier.PhaseFreqConfig
	PhaseFreqState  = carrier.PhaseFreqState
	PhaseFreqOut    = carrier.PhaseFreqOut
)

// NewPhaseFreqEKF creates a joint phase/frequency tracker.
func NewPhaseFreqEKF(config PhaseFreqConfig) (*PhaseFreqEKF, error) {
	return carrier.NewPhaseFreqEKF(config)
}
