// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package equalize provides the public API for online adaptive
// equalization: blind and decision-directed MIMO equalizers plus the
// framing helpers that window a signal into their input blocks.
//
// Algorithms:
//   - CMA: constant-modulus blind equalizer
//   - MUCMA: multiuser CMA with a cross-correlation penalty
//   - RDE: radius-directed equalizer for multi-ring constellations
//   - DDLMS: decision-directed LMS with joint gain/phase/bias tracking
//   - ANF: adaptive notch filter for narrowband interference
//
// Example:
//
//	blocks, _ := equalize.FrameSignal(y, 19, 1, -1)
//	frames, _ := equalize.MakeFrames(blocks, nil, nil)
//	eq, _ := equalize.NewCMA(equalize.CMAConfig{Const: qpsk})
//	s0, _ := eq.Init()
//	_, final, outs, err := af.Fold[*equalize.CMAState, equalize.Frame, equalize.CMAOut](eq, 0, s0, frames)
package equalize

import (
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/equalize"
)

// ErrShape is wrapped by every shape-validation failure in this package.
var ErrShape = equalize.ErrShape

// Frame is the per-step input of every MIMO equalizer.
type Frame = equalize.Frame

// MakeFrames pairs windowed blocks with optional truth and training-mask
// streams, padding shorter streams and rejecting longer ones.
func MakeFrames(blocks []*cx.Matrix, truth [][]complex128, train []bool) ([]Frame, error) {
	return equalize.MakeFrames(blocks, truth, train)
}

// RefTap returns the default zero-delay reference tap for a filter length.
func RefTap(taps int) int {
	return equalize.RefTap(taps)
}

// ZeroDelayPads returns the head/tail padding that centers a filter's
// group delay on the reference tap.
func ZeroDelayPads(taps, stride, refTap int) (head, tail int, err error) {
	return equalize.ZeroDelayPads(taps, stride, refTap)
}

// FrameSignal windows a [time][channels] signal into [taps][channels]
// blocks with zero-delay-centered padding.
func FrameSignal(y *cx.Matrix, taps, stride, refTap int) ([]*cx.Matrix, error) {
	return equalize.FrameSignal(y, taps, stride, refTap)
}

// WeightInit selects the initial MIMO weight tensor.
type WeightInit = equalize.WeightInit

const (
	// InitCentralSpike places a unit spike on each channel's reference tap.
	InitCentralSpike = equalize.InitCentralSpike
	// InitZeros leaves the tensor all-zero.
	InitZeros = equalize.InitZeros
)

// NewWeights builds a [channels][channels][taps] weight tensor.
func NewWeights(channels, taps int, kind WeightInit) (*cx.Tensor, error) {
	return equalize.NewWeights(channels, taps, kind)
}

// Combine runs the MIMO FIR combiner over one block.
func Combine(w *cx.Tensor, u *cx.Matrix) []complex128 {
	return equalize.Combine(w, u)
}

// EqualizeBlock applies a weight tensor (or trajectory) to a block
// sequence.
func EqualizeBlock(ws []*cx.Tensor, us []*cx.Matrix) (*cx.Matrix, error) {
	return equalize.EqualizeBlock(ws, us)
}

// Unitarize rebuilds the second output channel of a 2x2 tensor from the
// first, keeping a unitary per-tap structure.
func Unitarize(w *cx.Tensor) (*cx.Tensor, error) {
	return equalize.Unitarize(w)
}

// CMA is the constant-modulus blind equalizer.
type (
	CMA       = equalize.CMA
	CMAConfig = equalize.CMAConfig
	CMAState  = equalize.CMAState
	CMAOut    = equalize.CMAOut
)

// NewCMA creates a CMA equalizer.
func NewCMA(config CMAConfig) (*CMA, error) {
	return equalize.NewCMA(config)
}

// MUCMA is the multiuser constant-modulus equalizer.
type (
	MUCMA        = equalize.MUCMA
	MUCMAConfig  = equalize.MUCMAConfig
	MUCMAState   = equalize.MUCMAState
	MUCMAOut     = equalize.MUCMAOut
	MUCMAVariant = equalize.MUCMAVariant
)

const (
	// MUCMABiasCorrected compensates the zero-initialization bias of the
	// correlation EMA.
	MUCMABiasCorrected = equalize.MUCMABiasCorrected
	// MUCMARaw uses the EMA as accumulated.
	MUCMARaw = equalize.MUCMARaw
)

// NewMUCMA creates an MU-CMA equalizer.
func NewMUCMA(config MUCMAConfig) (*MUCMA, error) {
	return equalize.NewMUCMA(config)
}

// RDE is the radius-directed equalizer.
type (
	RDE       = equalize.RDE
	RDEConfig = equalize.RDEConfig
	RDEState  = equalize.RDEState
	RDEOut    = equalize.RDEOut
)

// NewRDE creates an RDE equalizer.
func NewRDE(config RDEConfig) (*RDE, error) {
	return equalize.NewRDE(config)
}

// DDLMS is the decision-directed LMS equalizer.
type (
	DDLMS          = equalize.DDLMS
	DDLMSConfig    = equalize.DDLMSConfig
	DDLMSState     = equalize.DDLMSState
	DDLMSOut       = equalize.DDLMSOut
	LockGainPolicy = equalize.LockGainPolicy
)

const (
	// LockGainResetUnity resets the end-to-end gain to unity.
	LockGainResetUnity = equalize.LockGainResetUnity
	// LockGainPreserveGain folds |f|*|s| into the taps.
	LockGainPreserveGain = equalize.LockGainPreserveGain
)

// NewDDLMS creates a DD-LMS equalizer.
func NewDDLMS(config DDLMSConfig) (*DDLMS, error) {
	return equalize.NewDDLMS(config)
}

// ANF is the two-tap adaptive notch filter.
type (
	ANF       = equalize.ANF
	ANFConfig = equalize.ANFConfig
	ANFState  = equalize.ANFState
	ANFOut    = equalize.ANFOut
)

// NewANF creates an adaptive notch filter.
func NewANF(config ANFConfig) (*ANF, error) {
	return equalize.NewANF(config)
}
