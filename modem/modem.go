// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package modem provides the public API for reference constellations and
// the scalars derived from them: named QAM sets normalized to unit power,
// ring radii, the constant-modulus target R2, and nearest-symbol
// decisions.
//
// Example:
//
//	set, _ := modem.Const("16QAM")
//	r2 := modem.R2(set) // 1.32
//	d := modem.Decide(set, y)
package modem

import (
	"github.com/coheq-dsp/coheq/internal/modem"
)

// Const returns a named constellation normalized to unit mean power.
// Supported names: QPSK, 4QAM, 16QAM, 64QAM, 256QAM.
func Const(name string) ([]complex128, error) {
	return modem.Const(name)
}

// GrayQAM builds a gray-coded square QAM constellation of order m,
// normalized to unit mean power.
func GrayQAM(m int) ([]complex128, error) {
	return modem.GrayQAM(m)
}

// Power returns the mean symbol power E|s|^2.
func Power(syms []complex128) float64 {
	return modem.Power(syms)
}

// R2 returns the constant-modulus target E|s|^4 / E|s|^2.
func R2(syms []complex128) float64 {
	return modem.R2(syms)
}

// Radii returns the distinct symbol magnitudes in ascending order.
func Radii(syms []complex128) []float64 {
	return modem.Radii(syms)
}

// DecideIndex returns the index of the symbol nearest to y.
func DecideIndex(syms []complex128, y complex128) int {
	return modem.DecideIndex(syms, y)
}

// Decide returns the symbol nearest to y.
func Decide(syms []complex128, y complex128) complex128 {
	return modem.Decide(syms, y)
}

// NearestRadius returns the ring radius nearest to r.
func NearestRadius(radii []float64, r float64) float64 {
	return modem.NearestRadius(radii, r)
}
