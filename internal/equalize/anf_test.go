package equalize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/equalize"
	"github.com/coheq-dsp/coheq/internal/sched"
)

func TestANFConfigValidation(t *testing.T) {
	_, err := equalize.NewANF(equalize.ANFConfig{F0: 1e3})
	require.Error(t, err, "missing sample rate")

	_, err = equalize.NewANF(equalize.ANFConfig{F0: 1e3, SampleRate: -1})
	require.Error(t, err)
}

// TestANFCancelsInterferer feeds a pure sinusoid at the notch frequency
// and checks the residual collapses once the taps adapt.
func TestANFCancelsInterferer(t *testing.T) {
	const (
		f0 = 1e3
		sr = 1e5
		n  = 5000
	)
	nf, err := equalize.NewANF(equalize.ANFConfig{
		F0:         f0,
		SampleRate: sr,
		LR:         sched.Constant(0.01),
	})
	require.NoError(t, err)

	in := make([]float64, n)
	for i := range in {
		in[i] = 0.8 * math.Sin(2*math.Pi*f0*float64(i)/sr+0.4)
	}

	s0, err := nf.Init()
	require.NoError(t, err)
	_, final, outs, err := af.Fold[*equalize.ANFState, float64, equalize.ANFOut](nf, 0, s0, in)
	require.NoError(t, err)
	require.Len(t, outs, n)
	assert.Equal(t, n, final.N)

	var tail float64
	for _, o := range outs[n-500:] {
		tail += math.Abs(o.E)
	}
	tail /= 500
	assert.Less(t, tail, 0.02, "steady-state residual")

	// Early residual is the raw interferer.
	assert.InDelta(t, in[0], outs[0].E, 1e-12)
}

// TestANFCounterSurvivesStateHandoff checks the regressor phase follows
// the state's sample counter, not the step index, so a resumed run stays
// aligned.
func TestANFCounterSurvivesStateHandoff(t *testing.T) {
	nf, err := equalize.NewANF(equalize.ANFConfig{F0: 2e3, SampleRate: 1e5})
	require.NoError(t, err)

	in := make([]float64, 40)
	for i := range in {
		in[i] = math.Cos(2 * math.Pi * 2e3 * float64(i) / 1e5)
	}

	s0, err := nf.Init()
	require.NoError(t, err)
	_, full, fullOuts, err := af.Fold[*equalize.ANFState, float64, equalize.ANFOut](nf, 0, s0, in)
	require.NoError(t, err)

	// Same stream in two halves; the second fold restarts at step 0.
	_, mid, _, err := af.Fold[*equalize.ANFState, float64, equalize.ANFOut](nf, 0, s0, in[:20])
	require.NoError(t, err)
	_, resumed, resumedOuts, err := af.Fold[*equalize.ANFState, float64, equalize.ANFOut](nf, 0, mid, in[20:])
	require.NoError(t, err)

	assert.Equal(t, full.W, resumed.W)
	assert.Equal(t, full.N, resumed.N)
	for i, o := range resumedOuts {
		assert.Equal(t, fullOuts[20+i], o, "sample %d", 20+i)
	}
}

func TestANFApply(t *testing.T) {
	nf, err := equalize.NewANF(equalize.ANFConfig{F0: 1e3, SampleRate: 1e5})
	require.NoError(t, err)

	ys := []float64{1, 2, 3}
	es := []float64{0.5, 1, 1.5}
	out, err := nf.Apply(es, ys)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 1.5}, out)

	_, err = nf.Apply([]float64{1}, ys)
	require.ErrorIs(t, err, equalize.ErrShape)
}

func TestANFDivergenceSurfaces(t *testing.T) {
	nf, err := equalize.NewANF(equalize.ANFConfig{F0: 1e3, SampleRate: 1e5})
	require.NoError(t, err)
	s0, err := nf.Init()
	require.NoError(t, err)

	_, _, err = nf.Update(3, s0, math.NaN())
	require.ErrorIs(t, err, af.ErrDiverged)
}
