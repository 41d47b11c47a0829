package sched_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/sched"
)

func TestConstant(t *testing.T) {
	s := sched.Constant(0.25)
	assert.Equal(t, 0.25, s(0))
	assert.Equal(t, 0.25, s(1<<20))
}

// TestPiecewiseConstantBoundaries checks that schedule(i) == values[k] for
// boundaries[k-1] <= i < boundaries[k], including the exact boundary
// indices.
func TestPiecewiseConstantBoundaries(t *testing.T) {
	s, err := sched.PiecewiseConstant([]int{100, 200}, []float64{1e-3, 1e-4, 1e-5})
	require.NoError(t, err)

	assert.Equal(t, 1e-3, s(0))
	assert.Equal(t, 1e-3, s(99))
	assert.Equal(t, 1e-4, s(100)) // boundary index selects the next value
	assert.Equal(t, 1e-4, s(199))
	assert.Equal(t, 1e-5, s(200))
	assert.Equal(t, 1e-5, s(10000))
}

func TestPiecewiseConstantValidation(t *testing.T) {
	_, err := sched.PiecewiseConstant([]int{10}, []float64{1})
	require.Error(t, err)

	_, err = sched.PiecewiseConstant([]int{20, 10}, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestExponentialDecay(t *testing.T) {
	s := sched.ExponentialDecay(1.0, 10, 0.5)
	assert.InDelta(t, 1.0, s(0), 1e-12)
	assert.InDelta(t, 0.5, s(10), 1e-12)
	assert.InDelta(t, 0.25, s(20), 1e-12)
}

func TestInverseTimeDecay(t *testing.T) {
	s := sched.InverseTimeDecay(1.0, 10, 1.0, false)
	assert.InDelta(t, 1.0, s(0), 1e-12)
	assert.InDelta(t, 0.5, s(10), 1e-12)

	stair := sched.InverseTimeDecay(1.0, 10, 1.0, true)
	assert.InDelta(t, 1.0, stair(9), 1e-12) // still in the first interval
	assert.InDelta(t, 0.5, stair(10), 1e-12)
}

func TestPolynomialDecay(t *testing.T) {
	s := sched.PolynomialDecay(1.0, 100, 0.1, 1.0)
	assert.InDelta(t, 1.0, s(0), 1e-12)
	assert.InDelta(t, 0.55, s(50), 1e-12)
	assert.InDelta(t, 0.1, s(100), 1e-12)
	assert.InDelta(t, 0.1, s(500), 1e-12) // held after decaySteps
}

func TestFlags(t *testing.T) {
	assert.True(t, sched.FlagConstant(true)(123))
	assert.False(t, sched.FlagConstant(false)(0))

	train := sched.Before(1000)
	assert.True(t, train(0))
	assert.True(t, train(999))
	assert.False(t, train(1000))

	lock := sched.After(500)
	assert.False(t, lock(499))
	assert.True(t, lock(500))
}
