package cx_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/cx"
)

func TestMatrixIndexing(t *testing.T) {
	m := cx.ZerosMatrix(3, 2)
	m.Set(2, 1, 4-5i)
	m.Set(0, 0, 1i)

	assert.Equal(t, 4-5i, m.At(2, 1))
	assert.Equal(t, 0+1i, m.At(0, 0))
	assert.Equal(t, []complex128{4 - 5i}, m.Row(2)[1:])
}

func TestNewMatrixShapeMismatch(t *testing.T) {
	_, err := cx.NewMatrix(2, 2, make([]complex128, 3))
	require.Error(t, err)
}

func TestTensorIndexing(t *testing.T) {
	w := cx.ZerosTensor(2, 2, 3)
	w.Set(1, 0, 2, 7+1i)

	assert.Equal(t, 7+1i, w.At(1, 0, 2))
	assert.Equal(t, complex128(0), w.At(0, 1, 2))
}

func TestCloneIsDeep(t *testing.T) {
	w := cx.ZerosTensor(1, 1, 2)
	w.Set(0, 0, 0, 1)
	c := w.Clone()
	c.Set(0, 0, 0, 9)

	assert.Equal(t, complex128(1), w.At(0, 0, 0))
	assert.True(t, w.Equal(w.Clone()))
	assert.False(t, w.Equal(c))
}

// TestR2CRoundTrip checks that real->complex->real reshaping is lossless
// for any even-width real input.
func TestR2CRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := make([][]float64, 4)
	for i := range r {
		r[i] = make([]float64, 6)
		for j := range r[i] {
			r[i][j] = rng.NormFloat64()
		}
	}

	c, err := cx.R2C(r)
	require.NoError(t, err)
	require.Equal(t, 4, c.Rows)
	require.Equal(t, 3, c.Cols)

	back := cx.C2R(c)
	require.Equal(t, r, back)
}

// TestC2RRoundTrip checks the complex->real->complex direction.
func TestC2RRoundTrip(t *testing.T) {
	c := cx.ZerosMatrix(2, 2)
	c.Set(0, 0, 1-1i)
	c.Set(0, 1, 2+3i)
	c.Set(1, 0, -4i)
	c.Set(1, 1, 5)

	back, err := cx.R2C(cx.C2R(c))
	require.NoError(t, err)
	assert.True(t, c.Equal(back))
}

func TestR2COddWidth(t *testing.T) {
	_, err := cx.R2C([][]float64{{1, 2, 3}})
	require.Error(t, err)
}

func TestR2CRaggedRows(t *testing.T) {
	_, err := cx.R2C([][]float64{{1, 2}, {1, 2, 3, 4}})
	require.Error(t, err)
}

func TestFiniteness(t *testing.T) {
	assert.True(t, cx.IsFinite(1+2i))
	assert.False(t, cx.IsFinite(complex(math.NaN(), 0)))
	assert.False(t, cx.IsFinite(complex(0, math.Inf(1))))
	assert.True(t, cx.AllFinite([]complex128{1, 2i}))
	assert.False(t, cx.AllFinite([]complex128{1, complex(math.Inf(-1), 0)}))
}

func TestAbs2(t *testing.T) {
	assert.InDelta(t, 25.0, cx.Abs2(3+4i), 1e-15)
}
