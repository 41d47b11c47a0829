package equalize_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/equalize"
	"github.com/coheq-dsp/coheq/internal/modem"
	"github.com/coheq-dsp/coheq/internal/sched"
)

func TestRDEDefaultRadii(t *testing.T) {
	eq, err := equalize.NewRDE(equalize.RDEConfig{})
	require.NoError(t, err)

	// Normalized 16QAM has three rings.
	radii := eq.Radii()
	require.Len(t, radii, 3)
	assert.True(t, radii[0] < radii[1] && radii[1] < radii[2])
	assert.InDelta(t, 1.0, radii[1], 1e-9)
}

func TestRDERadiiValidation(t *testing.T) {
	_, err := equalize.NewRDE(equalize.RDEConfig{Radii: []float64{1, -2}})
	require.Error(t, err)

	_, err = equalize.NewRDE(equalize.RDEConfig{Radii: []float64{0}})
	require.Error(t, err)
}

// singleTapRDE builds a 1-channel, 1-tap RDE whose output equals the input
// sample scaled by the lone weight, making update directions observable.
func singleTapRDE(t *testing.T, radii []float64, lr float64) (*equalize.RDE, *equalize.RDEState) {
	t.Helper()
	w, err := equalize.NewWeights(1, 1, equalize.InitCentralSpike)
	require.NoError(t, err)
	eq, err := equalize.NewRDE(equalize.RDEConfig{
		Radii: radii,
		LR:    sched.Constant(lr),
		W0:    w,
	})
	require.NoError(t, err)
	st, err := eq.Init()
	require.NoError(t, err)
	return eq, st
}

func TestRDEBlindRingSelection(t *testing.T) {
	eq, st := singleTapRDE(t, []float64{1, 2}, 1e-2)

	u := cx.ZerosMatrix(1, 1)
	u.Set(0, 0, 1.1) // nearest ring 1: modulus too large, weight shrinks

	next, out, err := eq.Update(0, st, equalize.Frame{U: u})
	require.NoError(t, err)
	assert.InDelta(t, 1.1*1.1-1, out.Loss, 1e-12)
	assert.Less(t, real(next.W.At(0, 0, 0)), real(st.W.At(0, 0, 0)))

	u.Set(0, 0, 1.8) // nearest ring 2: modulus too small, weight grows
	next, out, err = eq.Update(0, st, equalize.Frame{U: u})
	require.NoError(t, err)
	assert.InDelta(t, 4-1.8*1.8, out.Loss, 1e-12)
	assert.Greater(t, real(next.W.At(0, 0, 0)), real(st.W.At(0, 0, 0)))
}

func TestRDEDataAidedOverridesRing(t *testing.T) {
	eq, st := singleTapRDE(t, []float64{1, 2}, 1e-2)

	// Blind mode would pick ring 1 for modulus 1.1 and shrink; truth with
	// modulus 2 forces the larger target, so the weight grows instead.
	u := cx.ZerosMatrix(1, 1)
	u.Set(0, 0, 1.1)
	next, _, err := eq.Update(0, st, equalize.Frame{
		U: u, X: []complex128{2}, Train: true,
	})
	require.NoError(t, err)
	assert.Greater(t, real(next.W.At(0, 0, 0)), real(st.W.At(0, 0, 0)))
}

func TestRDETruthLengthMismatch(t *testing.T) {
	eq, st := singleTapRDE(t, []float64{1}, 1e-2)

	u := cx.ZerosMatrix(1, 1)
	_, _, err := eq.Update(0, st, equalize.Frame{
		U: u, X: []complex128{1, 1}, Train: true,
	})
	require.ErrorIs(t, err, equalize.ErrShape)
}

// TestRDEDataAidedConvergence runs data-aided RDE over 16QAM through a
// mild rotation and checks the radius error trends down.
func TestRDEDataAidedConvergence(t *testing.T) {
	const n, taps = 3000, 5
	rng := rand.New(rand.NewSource(3))
	qam, err := modem.Const("16QAM")
	require.NoError(t, err)

	x := randSymbols(rng, qam, n, 2)
	y := rotateMix(x, 0.2)

	blocks, err := equalize.FrameSignal(y, taps, 1, -1)
	require.NoError(t, err)

	truth := make([][]complex128, n)
	train := make([]bool, n)
	for i := range truth {
		truth[i] = x.Row(i)
		train[i] = true
	}
	frames, err := equalize.MakeFrames(blocks, truth, train)
	require.NoError(t, err)

	eq, err := equalize.NewRDE(equalize.RDEConfig{
		Taps:  taps,
		LR:    sched.Constant(5e-4),
		Const: qam,
	})
	require.NoError(t, err)

	s0, err := eq.Init()
	require.NoError(t, err)
	_, _, outs, err := af.Fold[*equalize.RDEState, equalize.Frame, equalize.RDEOut](eq, 0, s0, frames)
	require.NoError(t, err)

	losses := make([]float64, n)
	for i, o := range outs {
		losses[i] = o.Loss
	}
	early := meanOf(losses[:300])
	late := meanOf(losses[n-300:])
	assert.Less(t, late, early, "early %v late %v", early, late)
}

func TestRDEDivergenceSurfaces(t *testing.T) {
	eq, st := singleTapRDE(t, []float64{1}, 1e-2)

	u := cx.ZerosMatrix(1, 1)
	u.Set(0, 0, complex(math.Inf(1), 0))
	_, _, err := eq.Update(2, st, equalize.Frame{U: u})
	require.ErrorIs(t, err, af.ErrDiverged)
}
