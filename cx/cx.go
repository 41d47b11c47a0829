// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cx provides the public API for the complex-valued containers
// shared by all Coheq signal processing components.
//
// The package defines two dense row-major containers:
//   - Matrix: a [rows][cols] complex matrix, used for signals and blocks
//   - Tensor: a [d0][d1][d2] complex tensor, used for MIMO weight banks
//
// Example:
//
//	y := cx.ZerosMatrix(1024, 2) // two-channel signal
//	w := cx.ZerosTensor(2, 2, 19)
package cx

import (
	"github.com/coheq-dsp/coheq/internal/cx"
)

// Matrix is a dense row-major complex matrix.
type Matrix = cx.Matrix

// Tensor is a dense complex rank-3 tensor.
type Tensor = cx.Tensor

// NewMatrix wraps existing data into a rows x cols matrix.
func NewMatrix(rows, cols int, data []complex128) (*Matrix, error) {
	return cx.NewMatrix(rows, cols, data)
}

// ZerosMatrix allocates a zero rows x cols matrix.
func ZerosMatrix(rows, cols int) *Matrix {
	return cx.ZerosMatrix(rows, cols)
}

// NewTensor wraps existing data into a d0 x d1 x d2 tensor.
func NewTensor(d0, d1, d2 int, data []complex128) (*Tensor, error) {
	return cx.NewTensor(d0, d1, d2, data)
}

// ZerosTensor allocates a zero d0 x d1 x d2 tensor.
func ZerosTensor(d0, d1, d2 int) *Tensor {
	return cx.ZerosTensor(d0, d1, d2)
}

// R2C pairs adjacent columns of a real matrix into complex columns:
// a [n][2k] real matrix becomes an n x k complex matrix.
func R2C(r [][]float64) (*Matrix, error) {
	return cx.R2C(r)
}

// C2R splits every complex column into adjacent real/imaginary columns,
// the exact inverse of R2C.
func C2R(c *Matrix) [][]float64 {
	return cx.C2R(c)
}

// Abs2 returns |z|^2 without the square root.
func Abs2(z complex128) float64 {
	return cx.Abs2(z)
}

// IsFinite reports whether both parts of z are finite.
func IsFinite(z complex128) bool {
	return cx.IsFinite(z)
}

// AllFinite reports whether every element is finite.
func AllFinite(zs []complex128) bool {
	return cx.AllFinite(zs)
}
