// Package modem provides reference constellation tables and the derived
// scalars the equalizer and carrier-recovery decision logic consumes:
// the constant-modulus factor R2 = E|s|^4 / E|s|^2, the set of ring radii,
// and nearest-symbol decisions.
//
// All tables are normalized to unit average power.
package modem

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// radiusTol merges ring magnitudes that differ only by rounding.
const radiusTol = 1e-9

// Const returns the named constellation, normalized to unit average power.
// Supported names: QPSK (alias 4QAM), 16QAM, 64QAM, 256QAM.
func Const(name string) ([]complex128, error) {
	switch strings.ToUpper(name) {
	case "QPSK", "4QAM":
		return GrayQAM(4)
	case "16QAM":
		return GrayQAM(16)
	case "64QAM":
		return GrayQAM(64)
	case "256QAM":
		return GrayQAM(256)
	default:
		return nil, fmt.Errorf("modem: unknown constellation %q", name)
	}
}

// GrayQAM builds a gray-coded square m-QAM constellation normalized to unit
// average power. m must be an even power of two (4, 16, 64, 256, ...).
func GrayQAM(m int) ([]complex128, error) {
	if m < 4 || m&(m-1) != 0 {
		return nil, fmt.Errorf("modem: QAM order must be a power of two >= 4, got %d", m)
	}
	bits := 0
	for v := m; v > 1; v >>= 1 {
		bits++
	}
	if bits%2 != 0 {
		return nil, fmt.Errorf("modem: QAM order must be square, got %d", m)
	}
	side := 1 << (bits / 2)

	syms := make([]complex128, m)
	for i := 0; i < m; i++ {
		hi := i >> (bits / 2)
		lo := i & (side - 1)
		re := 2*grayDecode(hi) - side + 1
		im := 2*grayDecode(lo) - side + 1
		syms[i] = complex(float64(re), float64(im))
	}

	scale := math.Sqrt(Power(syms))
	for i := range syms {
		syms[i] /= complex(scale, 0)
	}
	return syms, nil
}

// grayDecode converts a gray codeword back to its binary index.
func grayDecode(g int) int {
	b := 0
	for ; g > 0; g >>= 1 {
		b ^= g
	}
	return b
}

// Power returns the mean squared magnitude of the symbol set.
func Power(syms []complex128) float64 {
	if len(syms) == 0 {
		return 0
	}
	var sum float64
	for _, s := range syms {
		sum += real(s)*real(s) + imag(s)*imag(s)
	}
	return sum / float64(len(syms))
}

// R2 returns the constant-modulus target E|s|^4 / E|s|^2 of the symbol set.
func R2(syms []complex128) float64 {
	var p2, p4 float64
	for _, s := range syms {
		a2 := real(s)*real(s) + imag(s)*imag(s)
		p2 += a2
		p4 += a2 * a2
	}
	if p2 == 0 {
		return 0
	}
	return p4 / p2
}

// Radii returns the sorted set of distinct ring magnitudes of the symbol
// set, deduplicated within a small tolerance.
func Radii(syms []complex128) []float64 {
	mags := make([]float64, 0, len(syms))
	for _, s := range syms {
		mags = append(mags, cmplx.Abs(s))
	}
	sort.Float64s(mags)

	out := mags[:0]
	for _, r := range mags {
		if len(out) == 0 || r-out[len(out)-1] > radiusTol {
			out = append(out, r)
		}
	}
	return append([]float64(nil), out...)
}

// DecideIndex returns the index of the symbol nearest to y.
func DecideIndex(syms []complex128, y complex128) int {
	best := 0
	bestDist := math.Inf(1)
	for i, s := range syms {
		d := y - s
		dist := real(d)*real(d) + imag(d)*imag(d)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// Decide returns the symbol nearest to y.
func Decide(syms []complex128, y complex128) complex128 {
	return syms[DecideIndex(syms, y)]
}

// NearestRadius returns the element of radii closest to r. radii must be
// non-empty.
func NearestRadius(radii []float64, r float64) float64 {
	best := radii[0]
	bestDist := math.Abs(r - best)
	for _, cand := range radii[1:] {
		if d := math.Abs(r - cand); d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}
