package carrier

import (
	"fmt"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/modem"
)

// CPANE is a scalar extended Kalman filter tracking the combined carrier
// phase and amplitude noise Psi of a single channel. Per step it predicts,
// decides a symbol against the EMA-smoothed phase, linearizes the
// observation y = d*exp(i*Psi) around the prediction and corrects:
//
//	H = i*d*exp(i*Psi_p)
//	K = P_p*conj(H) / (H*P_p*conj(H) + R)
//	Psi_c = Psi_p + K*(y - d*exp(i*Psi_p))
//
// By default the process and measurement noise estimates Q and R adapt by
// exponential forgetting from the realized innovation statistics;
// FixedNoise freezes them at their configured values.
//
// References:
//
//	[1] Pakala & Schmauss, Optics Express 24.6 (2016).
//	[2] Akhlaghi, Zhou & Huang, IEEE PES General Meeting (2017).
type CPANE struct {
	alpha    float64
	beta     float64
	q0, r0   complex128
	akf      bool
	constSet []complex128
	psi0     complex128
}

// CPANEConfig holds configuration for the CPANE tracker.
type CPANEConfig struct {
	Alpha      float64      // noise forgetting factor (default: 0.99)
	Beta       float64      // decision-phase EMA decay (default: 0.6)
	Q          complex128   // initial process noise (default: 1e-4)
	R          complex128   // initial measurement noise (default: 1e-2)
	FixedNoise bool         // freeze Q and R at their initial values
	Const      []complex128 // decision constellation (default: 16QAM)
	Psi0       complex128   // initial phase estimate (default: 0)
}

// NewCPANE creates a CPANE tracker.
func NewCPANE(config CPANEConfig) (*CPANE, error) {
	if config.Alpha == 0 {
		config.Alpha = 0.99
	}
	if config.Alpha <= 0 || config.Alpha >= 1 {
		return nil, fmt.Errorf("carrier: CPANE alpha must be in (0, 1), got %v", config.Alpha)
	}
	if config.Beta == 0 {
		config.Beta = 0.6
	}
	if config.Beta <= 0 || config.Beta >= 1 {
		return nil, fmt.Errorf("carrier: CPANE beta must be in (0, 1), got %v", config.Beta)
	}
	if config.Q == 0 {
		config.Q = complex(1e-4, 0)
	}
	if config.R == 0 {
		config.R = complex(1e-2, 0)
	}
	constSet := config.Const
	if len(constSet) == 0 {
		var err error
		if constSet, err = modem.Const("16QAM"); err != nil {
			return nil, err
		}
	}
	return &CPANE{
		alpha:    config.Alpha,
		beta:     config.Beta,
		q0:       config.Q,
		r0:       config.R,
		akf:      !config.FixedNoise,
		constSet: constSet,
		psi0:     config.Psi0,
	}, nil
}

// CPANEState is the tracker state: corrected phase Psi, its error
// covariance P, the EMA phase PsiA used for decisions, and the current
// noise estimates.
type CPANEState struct {
	Psi  complex128
	P    complex128
	PsiA complex128
	Q    complex128
	R    complex128
}

// CPANEOut is the per-step diagnostic output: the pre-update phase
// estimate and the noise estimates in effect for the step.
type CPANEOut struct {
	Psi complex128
	Q   complex128
	R   complex128
}

// Init builds the initial state. The covariance starts at the imaginary
// unit, which biases the first corrections toward the phase direction.
func (c *CPANE) Init() (*CPANEState, error) {
	return &CPANEState{Psi: c.psi0, P: 1i, Q: c.q0, R: c.r0}, nil
}

// Update advances the recursion by one observation.
func (c *CPANE) Update(step int, st *CPANEState, in Obs) (*CPANEState, CPANEOut, error) {
	psiP := st.Psi
	pP := st.P + st.Q
	psiA := complex(c.beta, 0)*st.PsiA + complex(1-c.beta, 0)*st.Psi

	var d complex128
	if in.Train {
		d = in.X
	} else {
		d = modem.Decide(c.constSet, in.Y*cmplx.Exp(-1i*psiA))
	}

	h := 1i * d * cmplx.Exp(1i*psiP)
	k := pP * cmplx.Conj(h) / (h*pP*cmplx.Conj(h) + st.R)
	v := in.Y - d*cmplx.Exp(1i*psiP)

	out := CPANEOut{Psi: st.Psi, Q: st.Q, R: st.R}

	psiC := psiP + k*v
	if !cx.IsFinite(psiC) {
		return nil, CPANEOut{}, af.Diverged(step)
	}
	pC := (1 - k*h) * pP

	q, r := st.Q, st.R
	if c.akf {
		kv := k * v
		e := in.Y - d*cmplx.Exp(1i*psiC)
		q = complex(c.alpha, 0)*st.Q + complex(1-c.alpha, 0)*kv*cmplx.Conj(kv)
		r = complex(c.alpha, 0)*st.R + complex(1-c.alpha, 0)*(e*cmplx.Conj(e)+h*pP*cmplx.Conj(h))
	}

	return &CPANEState{Psi: psiC, P: pC, PsiA: psiA, Q: q, R: r}, out, nil
}

// Apply derotates a signal by a per-sample phase trajectory:
// out[n] = y[n] * exp(-i*psi[n]).
func (c *CPANE) Apply(psi, y []complex128) ([]complex128, error) {
	if len(psi) != len(y) {
		return nil, fmt.Errorf("%w: %d phase estimates for %d samples", ErrShape, len(psi), len(y))
	}
	out := make([]complex128, len(y))
	for n := range y {
		out[n] = y[n] * cmplx.Exp(-1i*psi[n])
	}
	return out, nil
}
