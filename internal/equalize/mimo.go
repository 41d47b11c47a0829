package equalize

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/cx"
)

// ErrShape is wrapped by every shape-validation failure in this package.
var ErrShape = errors.New("equalize: shape mismatch")

// WeightInit selects the initial MIMO weight tensor.
type WeightInit int

const (
	// InitCentralSpike zeroes the tensor and places a unit spike on the
	// reference tap of each channel's own filter, the identity response.
	InitCentralSpike WeightInit = iota
	// InitZeros leaves the tensor all-zero.
	InitZeros
)

// NewWeights builds a [channels][channels][taps] weight tensor.
func NewWeights(channels, taps int, kind WeightInit) (*cx.Tensor, error) {
	if channels < 1 || taps < 1 {
		return nil, fmt.Errorf("%w: weight tensor needs channels >= 1 and taps >= 1, got %dx%d",
			ErrShape, channels, taps)
	}
	w := cx.ZerosTensor(channels, channels, taps)
	switch kind {
	case InitZeros:
	case InitCentralSpike:
		ctap := RefTap(taps)
		for i := 0; i < channels; i++ {
			w.Set(i, i, ctap, 1)
		}
	default:
		return nil, fmt.Errorf("equalize: unknown weight init %d", kind)
	}
	return w, nil
}

// checkWeights validates the square channel dimensions of a weight tensor.
func checkWeights(w *cx.Tensor) error {
	if w == nil {
		return fmt.Errorf("%w: nil weight tensor", ErrShape)
	}
	if w.D0 != w.D1 {
		return fmt.Errorf("%w: channel dims of weight tensor must be square, got %dx%dx%d",
			ErrShape, w.D0, w.D1, w.D2)
	}
	return nil
}

// checkBlock validates a sample block against a weight tensor.
func checkBlock(w *cx.Tensor, u *cx.Matrix) error {
	if u == nil {
		return fmt.Errorf("%w: nil sample block", ErrShape)
	}
	if u.Rows != w.D2 || u.Cols != w.D1 {
		return fmt.Errorf("%w: block %dx%d does not match weights %dx%dx%d",
			ErrShape, u.Rows, u.Cols, w.D0, w.D1, w.D2)
	}
	return nil
}

// Combine runs the MIMO FIR combiner v[i] = sum_{j,t} w[i][j][t] * u[t][j]
// over a [taps][channels] block. Shapes must have been validated.
func Combine(w *cx.Tensor, u *cx.Matrix) []complex128 {
	v := make([]complex128, w.D0)
	for i := 0; i < w.D0; i++ {
		var acc complex128
		row := w.Data[i*w.D1*w.D2 : (i+1)*w.D1*w.D2]
		for j := 0; j < w.D1; j++ {
			taps := row[j*w.D2 : (j+1)*w.D2]
			for t, wt := range taps {
				acc += wt * u.At(t, j)
			}
		}
		v[i] = acc
	}
	return v
}

// EqualizeBlock applies weight tensors to a block sequence: one tensor is
// broadcast over all blocks, or a trajectory supplies one tensor per
// block. The result is a [time][channels] matrix.
func EqualizeBlock(ws []*cx.Tensor, us []*cx.Matrix) (*cx.Matrix, error) {
	if len(ws) == 0 {
		return nil, fmt.Errorf("%w: no weight tensors", ErrShape)
	}
	if len(ws) != 1 && len(ws) != len(us) {
		return nil, fmt.Errorf("%w: %d weight tensors for %d blocks", ErrShape, len(ws), len(us))
	}
	for _, w := range ws {
		if err := checkWeights(w); err != nil {
			return nil, err
		}
	}

	out := cx.ZerosMatrix(len(us), ws[0].D0)
	for k, u := range us {
		w := ws[0]
		if len(ws) > 1 {
			w = ws[k]
		}
		if err := checkBlock(w, u); err != nil {
			return nil, fmt.Errorf("block %d: %w", k, err)
		}
		copy(out.Row(k), Combine(w, u))
	}
	return out, nil
}

// Unitarize rebuilds the second output channel of a 2x2 weight tensor from
// the first so the per-tap response keeps a unitary structure:
//
//	w[1][0][t] = -conj(w[0][1][T-1-t])
//	w[1][1][t] =  conj(w[0][0][T-1-t])
//
// This guards against both polarizations converging onto the same source.
// Any channel count other than 2 is an explicit error.
func Unitarize(w *cx.Tensor) (*cx.Tensor, error) {
	if err := checkWeights(w); err != nil {
		return nil, err
	}
	if w.D0 != 2 {
		return nil, fmt.Errorf("%w: unitarize is defined for 2x2 channel tensors only, got %dx%d",
			ErrShape, w.D0, w.D1)
	}
	out := w.Clone()
	last := w.D2 - 1
	for t := 0; t <= last; t++ {
		out.Set(1, 0, t, -cmplx.Conj(w.At(0, 1, last-t)))
		out.Set(1, 1, t, cmplx.Conj(w.At(0, 0, last-t)))
	}
	return out, nil
}
