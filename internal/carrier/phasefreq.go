package carrier

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/modem"
)

// PhaseFreqEKF is a two-state extended Kalman filter jointly tracking
// carrier phase and frequency offset. The state x = [phase, freq] follows
// the fixed linear transition
//
//	A = | 1 1 |
//	    | 0 1 |
//
// and the observation is the received sample split into its real and
// imaginary parts, linearized around rhat = d*exp(i*phase_p):
//
//	H = | -Im(rhat) 0 |
//	    |  Re(rhat) 0 |
//
// The noise covariances are fixed; there is no adaptive-noise step.
//
// References:
//
//	[1] Jain et al., IEEE Photonics Journal 9.1 (2017).
//	[2] Lin & Chang, IEEE ISCAS (2006).
type PhaseFreqEKF struct {
	q        *mat.Dense
	r        *mat.Dense
	p0       float64
	constSet []complex128
	phase0   float64
	freq0    float64
}

// PhaseFreqConfig holds configuration for the joint phase/frequency EKF.
type PhaseFreqConfig struct {
	QPhase float64      // phase process noise (default: 1e-3)
	QFreq  float64      // frequency process noise (default: 1e-7)
	R      float64      // per-quadrature measurement noise (default: 1e-2)
	P0     float64      // initial state covariance (default: 1)
	Const  []complex128 // decision constellation (default: 16QAM)
	Phase0 float64      // initial phase estimate in radians
	Freq0  float64      // initial frequency offset in radians per sample
}

// NewPhaseFreqEKF creates a joint phase/frequency tracker.
func NewPhaseFreqEKF(config PhaseFreqConfig) (*PhaseFreqEKF, error) {
	if config.QPhase == 0 {
		config.QPhase = 1e-3
	}
	if config.QFreq == 0 {
		config.QFreq = 1e-7
	}
	if config.R == 0 {
		config.R = 1e-2
	}
	if config.P0 == 0 {
		config.P0 = 1
	}
	if config.QPhase < 0 || config.QFreq < 0 || config.R < 0 || config.P0 < 0 {
		return nil, fmt.Errorf("carrier: EKF noise covariances must be nonnegative")
	}
	constSet := config.Const
	if len(constSet) == 0 {
		var err error
		if constSet, err = modem.Const("16QAM"); err != nil {
			return nil, err
		}
	}
	return &PhaseFreqEKF{
		q:        mat.NewDense(2, 2, []float64{config.QPhase, 0, 0, config.QFreq}),
		r:        mat.NewDense(2, 2, []float64{config.R, 0, 0, config.R}),
		p0:       config.P0,
		constSet: constSet,
		phase0:   config.Phase0,
		freq0:    config.Freq0,
	}, nil
}

// PhaseFreqState is the filter state: the corrected state vector
// [phase, freq] and its 2x2 error covariance.
type PhaseFreqState struct {
	X *mat.VecDense
	P *mat.Dense
}

// PhaseFreqOut is the per-step output: the predicted (pre-correction)
// phase and frequency offset, matching the sample the step consumed.
type PhaseFreqOut struct {
	Phase float64
	Freq  float64
}

// Init builds the initial state.
func (e *PhaseFreqEKF) Init() (*PhaseFreqState, error) {
	return &PhaseFreqState{
		X: mat.NewVecDense(2, []float64{e.phase0, e.freq0}),
		P: mat.NewDense(2, 2, []float64{e.p0, 0, 0, e.p0}),
	}, nil
}

// Update advances the recursion by one observation.
func (e *PhaseFreqEKF) Update(step int, st *PhaseFreqState, in Obs) (*PhaseFreqState, PhaseFreqOut, error) {
	// Predict: phase accumulates the frequency offset.
	phaseP := st.X.AtVec(0) + st.X.AtVec(1)
	freqP := st.X.AtVec(1)

	a := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	var pP mat.Dense
	pP.Mul(a, st.P)
	pP.Mul(&pP, a.T())
	pP.Add(&pP, e.q)

	pp := cmplx.Exp(complex(0, phaseP))
	var d complex128
	if in.Train {
		d = in.X
	} else {
		d = modem.Decide(e.constSet, in.Y*cmplx.Conj(pp))
	}
	rhat := d * pp

	h := mat.NewDense(2, 2, []float64{
		-imag(rhat), 0,
		real(rhat), 0,
	})
	innov := mat.NewVecDense(2, []float64{
		real(in.Y - rhat),
		imag(in.Y - rhat),
	})

	var s mat.Dense
	s.Mul(h, &pP)
	s.Mul(&s, h.T())
	s.Add(&s, e.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return nil, PhaseFreqOut{}, fmt.Errorf("carrier: innovation covariance singular at step %d: %w", step, err)
	}

	var k mat.Dense
	k.Mul(&pP, h.T())
	k.Mul(&k, &sInv)

	var corr mat.VecDense
	corr.MulVec(&k, innov)

	xC := mat.NewVecDense(2, []float64{phaseP + corr.AtVec(0), freqP + corr.AtVec(1)})
	if math.IsNaN(xC.AtVec(0)) || math.IsInf(xC.AtVec(0), 0) {
		return nil, PhaseFreqOut{}, af.Diverged(step)
	}

	var kh mat.Dense
	kh.Mul(&k, h)
	kh.Mul(&kh, &pP)
	var pC mat.Dense
	pC.Sub(&pP, &kh)

	return &PhaseFreqState{X: xC, P: &pC}, PhaseFreqOut{Phase: phaseP, Freq: freqP}, nil
}

// Apply derotates a signal by the per-sample phase estimates.
func (e *PhaseFreqEKF) Apply(phases []float64, y []complex128) ([]complex128, error) {
	return Derotate(phases, y)
}
