package equalize

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/modem"
	"github.com/coheq-dsp/coheq/internal/sched"
)

// LockGainPolicy selects the conserved quantity of lock-gain
// renormalization. The reference behavior is underspecified, so both
// readings are available.
type LockGainPolicy int

const (
	// LockGainResetUnity normalizes the per-channel tap energy to one and
	// strips f and s to unit magnitude, resetting the end-to-end gain to
	// unity.
	LockGainResetUnity LockGainPolicy = iota
	// LockGainPreserveGain folds |f|*|s| into the taps before stripping f
	// and s to unit magnitude, conserving the end-to-end product w*f*s.
	LockGainPreserveGain
)

// DDLMS is the decision-directed LMS equalizer with joint tracking of a
// per-channel gain/phase pair (f, s), a DC bias b, and a smoothed f*s
// estimate used only for symbol decisions. Per step:
//
//	v = MIMO(w, u);  k = v*f;  c = k*s;  z = c + b;  q = v*fshat + b
//	d = truth (train flag) or nearest constellation point to q
//
// with closed-form error terms
//
//	e_w = (d-b)*psi - v   where psi = conj(f)/|f| * conj(s)/|s|
//	e_f = d - b - k;  e_s = d - b - c;  e_b = d - z
//
// Gradients are energy-normalized, and the f/s gradients are
// magnitude-clamped (phase preserved) before being applied. The bias term
// absorbs a varying DC component.
//
// Reference: Mori, Zhang & Kikuchi, Optics Express 20.24 (2012).
type DDLMS struct {
	channels, taps     int
	lrW, lrF, lrS, lrB sched.Schedule
	gradMaxF, gradMaxS float64
	eps                float64
	beta               float64
	constSet           []complex128
	init               WeightInit
	w0                 *cx.Tensor
	lockGain           sched.Flag
	policy             LockGainPolicy
}

// DDLMSConfig holds configuration for DD-LMS.
type DDLMSConfig struct {
	Channels int            // MIMO size (default: 2)
	Taps     int            // FIR taps per channel pair (default: 31)
	LRW      sched.Schedule // Weight rate (default: constant 1/64)
	LRF      sched.Schedule // Fast gain/phase rate (default: constant 1/128)
	LRS      sched.Schedule // Slow gain/phase rate (default: constant 0)
	LRB      sched.Schedule // Bias rate (default: constant 1/2048)
	GradMaxF float64        // f-gradient magnitude clamp (default: 50)
	GradMaxS float64        // s-gradient magnitude clamp (default: 50)
	Eps      float64        // Normalization guard (default: 1e-8)
	Beta     float64        // fshat EMA decay (default: 0, track f*s directly)
	Const    []complex128   // Decision constellation (default: 16QAM)
	Init     WeightInit     // Weight init (default: central spike)
	W0       *cx.Tensor     // Optional explicit initial weights
	LockGain sched.Flag     // Lock-gain mode schedule (default: never)
	Policy   LockGainPolicy // Lock-gain conservation policy (default: reset to unity)
}

// NewDDLMS creates a DD-LMS equalizer.
func NewDDLMS(config DDLMSConfig) (*DDLMS, error) {
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.Taps == 0 {
		config.Taps = 31
	}
	if config.GradMaxF == 0 {
		config.GradMaxF = 50
	}
	if config.GradMaxS == 0 {
		config.GradMaxS = 50
	}
	if config.Eps == 0 {
		config.Eps = epsDefault
	}
	if config.Beta < 0 || config.Beta >= 1 {
		return nil, fmt.Errorf("equalize: DD-LMS beta must be in [0, 1), got %v", config.Beta)
	}
	if config.Policy != LockGainResetUnity && config.Policy != LockGainPreserveGain {
		return nil, fmt.Errorf("equalize: unknown lock-gain policy %d", config.Policy)
	}
	constSet := config.Const
	if len(constSet) == 0 {
		var err error
		if constSet, err = modem.Const("16QAM"); err != nil {
			return nil, err
		}
	}
	if config.W0 != nil {
		if err := checkWeights(config.W0); err != nil {
			return nil, err
		}
		config.Channels = config.W0.D0
		config.Taps = config.W0.D2
	}
	return &DDLMS{
		channels: config.Channels,
		taps:     config.Taps,
		lrW:      lrOrDefault(config.LRW, 1.0/64),
		lrF:      lrOrDefault(config.LRF, 1.0/128),
		lrS:      lrOrDefault(config.LRS, 0),
		lrB:      lrOrDefault(config.LRB, 1.0/2048),
		gradMaxF: config.GradMaxF,
		gradMaxS: config.GradMaxS,
		eps:      config.Eps,
		beta:     config.Beta,
		constSet: constSet,
		init:     config.Init,
		w0:       config.W0,
		lockGain: flagOrDefault(config.LockGain, false),
		policy:   config.Policy,
	}, nil
}

// DDLMSState bundles the weight tensor with the per-channel correction
// scalars: fast gain/phase f, slow gain/phase s, DC bias b, and the
// smoothed product fshat used for decisions.
type DDLMSState struct {
	W     *cx.Tensor
	F     []complex128
	S     []complex128
	B     []complex128
	FSHat []complex128
}

// DDLMSOut is the per-step diagnostic output: the pre-update parameters
// (shared, not copied), the decided symbols, and the squared decision
// error.
type DDLMSOut struct {
	W    *cx.Tensor
	F    []complex128
	S    []complex128
	B    []complex128
	D    []complex128
	Loss float64
}

// Init builds the initial state: f = s = fshat = 1, b = 0 per channel.
func (d *DDLMS) Init() (*DDLMSState, error) {
	w := d.w0
	if w == nil {
		var err error
		if w, err = NewWeights(d.channels, d.taps, d.init); err != nil {
			return nil, err
		}
	} else {
		w = w.Clone()
	}
	ones := func() []complex128 {
		v := make([]complex128, d.channels)
		for i := range v {
			v[i] = 1
		}
		return v
	}
	return &DDLMSState{
		W:     w,
		F:     ones(),
		S:     ones(),
		B:     make([]complex128, d.channels),
		FSHat: ones(),
	}, nil
}

// Update advances the recursion by one step.
func (d *DDLMS) Update(step int, st *DDLMSState, in Frame) (*DDLMSState, DDLMSOut, error) {
	if err := checkBlock(st.W, in.U); err != nil {
		return nil, DDLMSOut{}, err
	}
	dims := d.channels
	if in.Train && len(in.X) != dims {
		return nil, DDLMSOut{}, fmt.Errorf("%w: %d truth symbols for %d channels", ErrShape, len(in.X), dims)
	}

	w := st.W
	f := st.F
	s := st.S
	if d.lockGain(step) {
		w, f, s = d.applyLockGain(st)
	}

	v := Combine(w, in.U)
	k := make([]complex128, dims)
	c := make([]complex128, dims)
	z := make([]complex128, dims)
	q := make([]complex128, dims)
	dec := make([]complex128, dims)
	var loss float64
	for i := 0; i < dims; i++ {
		k[i] = v[i] * f[i]
		c[i] = k[i] * s[i]
		z[i] = c[i] + st.B[i]
		q[i] = v[i]*st.FSHat[i] + st.B[i]
		if in.Train {
			dec[i] = in.X[i]
		} else {
			dec[i] = modem.Decide(d.constSet, q[i])
		}
		loss += cx.Abs2(z[i] - dec[i])
	}
	if !isFinite(loss) {
		return nil, DDLMSOut{}, af.Diverged(step)
	}
	out := DDLMSOut{W: w, F: f, S: s, B: st.B, D: dec, Loss: loss}

	var uEnergy float64
	for _, u := range in.U.Data {
		uEnergy += cx.Abs2(u)
	}

	// Per-channel error terms and energy-normalized gradients.
	lrW := complex(d.lrW(step)/(uEnergy+d.eps), 0)
	nw := w.Clone()
	nf := make([]complex128, dims)
	ns := make([]complex128, dims)
	nb := make([]complex128, dims)
	for i := 0; i < dims; i++ {
		psi := unitConj(f[i], d.eps) * unitConj(s[i], d.eps)
		ew := (dec[i]-st.B[i])*psi - v[i]
		ef := dec[i] - st.B[i] - k[i]
		es := dec[i] - st.B[i] - c[i]
		eb := dec[i] - z[i]

		gf := -ef * cmplx.Conj(v[i]) / complex(cx.Abs2(v[i])+d.eps, 0)
		gs := -es * cmplx.Conj(k[i]) / complex(cx.Abs2(k[i])+d.eps, 0)
		gb := -eb

		// f and s are less regulated than w; clamping their gradient
		// magnitude keeps occasional wrong decisions from kicking the
		// correction scalars.
		gf = clampMag(gf, d.gradMaxF)
		gs = clampMag(gs, d.gradMaxS)

		coeff := lrW * ew
		for j := 0; j < dims; j++ {
			for t := 0; t < d.taps; t++ {
				// gw = -e_w * conj(u) / (|u|^2 + eps); subtracting lr*gw
				// adds the correlation term.
				nw.Set(i, j, t, nw.At(i, j, t)+coeff*cmplx.Conj(in.U.At(t, j)))
			}
		}
		nf[i] = f[i] - complex(d.lrF(step), 0)*gf
		ns[i] = s[i] - complex(d.lrS(step), 0)*gs
		nb[i] = st.B[i] - complex(d.lrB(step), 0)*gb
	}

	// fshat smooths the updated product f*s for the next decision probe.
	nfs := make([]complex128, dims)
	for i := 0; i < dims; i++ {
		nfs[i] = complex(d.beta, 0)*st.FSHat[i] + complex(1-d.beta, 0)*(nf[i]*ns[i])
	}

	return &DDLMSState{W: nw, F: nf, S: ns, B: nb, FSHat: nfs}, out, nil
}

// applyLockGain renormalizes (w, f, s) according to the configured policy,
// returning fresh values and leaving the state untouched.
func (d *DDLMS) applyLockGain(st *DDLMSState) (*cx.Tensor, []complex128, []complex128) {
	dims := d.channels
	w := st.W.Clone()
	f := make([]complex128, dims)
	s := make([]complex128, dims)
	for i := 0; i < dims; i++ {
		var energy float64
		for j := 0; j < dims; j++ {
			for t := 0; t < d.taps; t++ {
				energy += cx.Abs2(w.At(i, j, t))
			}
		}
		norm := math.Sqrt(energy)

		var factor complex128
		switch d.policy {
		case LockGainPreserveGain:
			// Fold |f|*|s| into the taps: the end-to-end product keeps its
			// magnitude while f and s collapse to pure phases.
			factor = complex(cmplx.Abs(st.F[i])*cmplx.Abs(st.S[i]), 0)
		default:
			// Reset the channel's aggregate tap energy to one.
			factor = complex(1/(norm+d.eps), 0)
		}
		for j := 0; j < dims; j++ {
			for t := 0; t < d.taps; t++ {
				w.Set(i, j, t, w.At(i, j, t)*factor)
			}
		}
		f[i] = st.F[i] / complex(cmplx.Abs(st.F[i])+d.eps, 0)
		s[i] = st.S[i] / complex(cmplx.Abs(st.S[i])+d.eps, 0)
	}
	return w, f, s
}

// Apply re-applies learned parameters to a block sequence:
// z = MIMO(w, u)*f*s + b per step, with a single state broadcast or a
// trajectory of one state per block.
func (d *DDLMS) Apply(states []*DDLMSState, us []*cx.Matrix) (*cx.Matrix, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no states", ErrShape)
	}
	if len(states) != 1 && len(states) != len(us) {
		return nil, fmt.Errorf("%w: %d states for %d blocks", ErrShape, len(states), len(us))
	}
	out := cx.ZerosMatrix(len(us), d.channels)
	for n, u := range us {
		st := states[0]
		if len(states) > 1 {
			st = states[n]
		}
		if err := checkBlock(st.W, u); err != nil {
			return nil, fmt.Errorf("block %d: %w", n, err)
		}
		v := Combine(st.W, u)
		row := out.Row(n)
		for i := range v {
			row[i] = v[i]*st.F[i]*st.S[i] + st.B[i]
		}
	}
	return out, nil
}

// unitConj returns conj(z)/|z| with an epsilon guard, the unit phasor that
// cancels z's phase.
func unitConj(z complex128, eps float64) complex128 {
	return cmplx.Conj(z) / complex(cmplx.Abs(z)+eps, 0)
}

// clampMag limits the magnitude of g to maxMag, preserving its phase.
func clampMag(g complex128, maxMag float64) complex128 {
	if a := cmplx.Abs(g); a > maxMag {
		return g * complex(maxMag/a, 0)
	}
	return g
}
