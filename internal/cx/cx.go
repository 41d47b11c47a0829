// Package cx provides the complex-valued matrix and tensor types shared by
// the equalizer and carrier-recovery packages.
//
// Two shapes cover the whole core:
//   - Matrix: a [rows][cols] complex block, used for windowed sample frames
//     ([taps][channels]) and for real<->complex reshaping.
//   - Tensor: a [d0][d1][d2] complex block, used for MIMO weight tensors
//     ([outChannels][inChannels][taps]).
//
// Values are stored flat in row-major order. Both types are plain values:
// algorithm updates clone and replace rather than mutating shared state.
package cx

import (
	"fmt"
	"math"
)

// Matrix is a dense rows x cols complex matrix in row-major order.
type Matrix struct {
	Rows, Cols int
	Data       []complex128
}

// NewMatrix wraps data as a rows x cols matrix.
// The slice is taken over, not copied.
func NewMatrix(rows, cols int, data []complex128) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("cx: negative matrix shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("cx: matrix data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// ZerosMatrix allocates a zero-filled rows x cols matrix.
func ZerosMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]complex128, rows*cols)}
}

// At returns the element at (r, c).
func (m *Matrix) At(r, c int) complex128 { return m.Data[r*m.Cols+c] }

// Set writes the element at (r, c).
func (m *Matrix) Set(r, c int, v complex128) { m.Data[r*m.Cols+c] = v }

// Row returns the r-th row as a subslice of the backing data.
func (m *Matrix) Row(r int) []complex128 { return m.Data[r*m.Cols : (r+1)*m.Cols] }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]complex128, len(m.Data))
	copy(data, m.Data)
	return &Matrix{Rows: m.Rows, Cols: m.Cols, Data: data}
}

// Equal reports whether two matrices have identical shape and elements.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	for i, v := range m.Data {
		if v != o.Data[i] {
			return false
		}
	}
	return true
}

// Tensor is a dense d0 x d1 x d2 complex tensor in row-major order.
// Weight tensors index it as [outChannel][inChannel][tap].
type Tensor struct {
	D0, D1, D2 int
	Data       []complex128
}

// NewTensor wraps data as a d0 x d1 x d2 tensor.
// The slice is taken over, not copied.
func NewTensor(d0, d1, d2 int, data []complex128) (*Tensor, error) {
	if d0 < 0 || d1 < 0 || d2 < 0 {
		return nil, fmt.Errorf("cx: negative tensor shape %dx%dx%d", d0, d1, d2)
	}
	if len(data) != d0*d1*d2 {
		return nil, fmt.Errorf("cx: tensor data length %d does not match shape %dx%dx%d", len(data), d0, d1, d2)
	}
	return &Tensor{D0: d0, D1: d1, D2: d2, Data: data}, nil
}

// ZerosTensor allocates a zero-filled d0 x d1 x d2 tensor.
func ZerosTensor(d0, d1, d2 int) *Tensor {
	return &Tensor{D0: d0, D1: d1, D2: d2, Data: make([]complex128, d0*d1*d2)}
}

// At returns the element at (i, j, k).
func (t *Tensor) At(i, j, k int) complex128 { return t.Data[(i*t.D1+j)*t.D2+k] }

// Set writes the element at (i, j, k).
func (t *Tensor) Set(i, j, k int, v complex128) { t.Data[(i*t.D1+j)*t.D2+k] = v }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]complex128, len(t.Data))
	copy(data, t.Data)
	return &Tensor{D0: t.D0, D1: t.D1, D2: t.D2, Data: data}
}

// Equal reports whether two tensors have identical shape and elements.
func (t *Tensor) Equal(o *Tensor) bool {
	if t.D0 != o.D0 || t.D1 != o.D1 || t.D2 != o.D2 {
		return false
	}
	for i, v := range t.Data {
		if v != o.Data[i] {
			return false
		}
	}
	return true
}

// Abs2 returns |z|^2 without the square root of cmplx.Abs.
func Abs2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

// IsFinite reports whether both parts of z are finite.
func IsFinite(z complex128) bool {
	return !math.IsNaN(real(z)) && !math.IsInf(real(z), 0) &&
		!math.IsNaN(imag(z)) && !math.IsInf(imag(z), 0)
}

// AllFinite reports whether every element of zs is finite.
func AllFinite(zs []complex128) bool {
	for _, z := range zs {
		if !IsFinite(z) {
			return false
		}
	}
	return true
}
