package equalize

import (
	"fmt"
	"math"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/sched"
)

// ANF is a two-tap adaptive notch filter that cancels a narrowband
// interferer of known frequency from a real-valued sample stream. The
// regressor is the sinusoid pair x = [A*cos(w0*n*T + phi), A*sin(w0*n*T +
// phi)], the interference estimate y = <w, x>, and the taps follow the LMS
// recursion w <- w + 2*lr(step)*e*x with e = d - y.
//
// The sinusoid phase runs on the state's own sample counter, so a filter
// resumed from a saved state stays phase-continuous regardless of the step
// index it is driven with.
//
// References:
//
//	[1] Widrow et al., "Adaptive noise cancelling: Principles and
//	    applications", Proceedings of the IEEE 63.12 (1975).
//	[2] Li et al., Optics Express 26.18 (2018).
type ANF struct {
	omega0 float64 // 2*pi*f0
	period float64 // 1/sr
	amp    float64
	phi    float64
	lr     sched.Schedule
}

// ANFConfig holds configuration for the adaptive notch filter.
type ANFConfig struct {
	F0         float64        // Interferer frequency in Hz (required)
	SampleRate float64        // Sample rate in Hz (required)
	Amplitude  float64        // Regressor amplitude (default: 1)
	Phi        float64        // Regressor phase offset (default: 0)
	LR         sched.Schedule // Learning rate (default: constant 1e-4)
}

// NewANF creates an adaptive notch filter.
func NewANF(config ANFConfig) (*ANF, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("equalize: ANF sample rate must be positive, got %v", config.SampleRate)
	}
	if config.Amplitude == 0 {
		config.Amplitude = 1
	}
	return &ANF{
		omega0: 2 * math.Pi * config.F0,
		period: 1 / config.SampleRate,
		amp:    config.Amplitude,
		phi:    config.Phi,
		lr:     lrOrDefault(config.LR, 1e-4),
	}, nil
}

// ANFState is the notch filter state: the two sinusoid taps and the sample
// counter driving the regressor phase.
type ANFState struct {
	W [2]float64
	N int
}

// ANFOut carries the interference estimate and the notched residual for
// one sample.
type ANFOut struct {
	Y float64
	E float64
}

// Init builds the initial state: zero taps, counter at zero.
func (a *ANF) Init() (*ANFState, error) {
	return &ANFState{}, nil
}

// Update advances the recursion by one sample.
func (a *ANF) Update(step int, st *ANFState, d float64) (*ANFState, ANFOut, error) {
	arg := a.omega0*float64(st.N)*a.period + a.phi
	x0 := a.amp * math.Cos(arg)
	x1 := a.amp * math.Sin(arg)
	y := st.W[0]*x0 + st.W[1]*x1
	e := d - y
	if !isFinite(e) {
		return nil, ANFOut{}, af.Diverged(step)
	}
	g := 2 * a.lr(step) * e
	next := &ANFState{
		W: [2]float64{st.W[0] + g*x0, st.W[1] + g*x1},
		N: st.N + 1,
	}
	return next, ANFOut{Y: y, E: e}, nil
}

// Apply subtracts the per-sample residuals from a signal, leaving the
// extracted interference estimate.
func (a *ANF) Apply(es, ys []float64) ([]float64, error) {
	if len(es) != len(ys) {
		return nil, fmt.Errorf("%w: %d residuals for %d samples", ErrShape, len(es), len(ys))
	}
	out := make([]float64, len(ys))
	for n := range ys {
		out[n] = ys[n] - es[n]
	}
	return out, nil
}
