package equalize

import (
	"fmt"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/modem"
	"github.com/coheq-dsp/coheq/internal/sched"
)

// MUCMAVariant selects how the cross-correlation EMA enters the gradient.
// The two variants are deliberately kept as distinct configurations, not
// unified behind one canonical choice.
type MUCMAVariant int

const (
	// MUCMABiasCorrected divides the EMA by (1 - beta^step) before use,
	// compensating the zero-initialization bias of early steps.
	MUCMABiasCorrected MUCMAVariant = iota
	// MUCMARaw uses the EMA as accumulated.
	MUCMARaw
)

// MUCMA is the multiuser constant-modulus equalizer: CMA with an added
// penalty that discourages correlated outputs across channel pairs at
// nonzero delay, which keeps both polarizations from converging onto the
// same source.
//
// It tracks a delay line z of the last delta outputs and an exponential
// moving average r[i][m][d] ~ E[v_i(n) * conj(v_m(n-d))]; the combined
// objective is
//
//	loss = sum_i ||v_i|^2 - R2|^2 + 2*(sum_{i,m,d} |r^|^2 - sum_{i,d} |r^_ii|^2)
//
// References:
//
//	[1] Papadias & Paulraj, IEEE Signal Processing Letters 4.6 (1997).
//	[2] Vgenis et al., IEEE Photonics Technology Letters 22.1 (2010).
type MUCMA struct {
	channels, taps int
	delta          int
	beta           float64
	lr             sched.Schedule
	r2             float64
	variant        MUCMAVariant
	w0             *cx.Tensor
}

// MUCMAConfig holds configuration for MU-CMA.
type MUCMAConfig struct {
	Channels int            // MIMO size (default: 2)
	Taps     int            // FIR taps per channel pair (default: 19)
	Delta    int            // Delay-line depth (default: 6)
	Beta     float64        // Correlation EMA decay (default: 0.999)
	LR       sched.Schedule // Learning rate (default: constant 1e-4)
	R2       float64        // Constant-modulus target (default: 1.32)
	Const    []complex128   // Optional constellation; overrides R2
	Variant  MUCMAVariant   // Bias-corrected (default) or raw EMA
	W0       *cx.Tensor     // Optional explicit initial weights
}

// NewMUCMA creates an MU-CMA equalizer.
func NewMUCMA(config MUCMAConfig) (*MUCMA, error) {
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.Taps == 0 {
		config.Taps = 19
	}
	if config.Delta == 0 {
		config.Delta = 6
	}
	if config.Delta < 1 {
		return nil, fmt.Errorf("equalize: MU-CMA delay-line depth must be >= 1, got %d", config.Delta)
	}
	if config.Beta == 0 {
		config.Beta = 0.999
	}
	if config.Beta <= 0 || config.Beta >= 1 {
		return nil, fmt.Errorf("equalize: MU-CMA beta must be in (0, 1), got %v", config.Beta)
	}
	if config.Variant != MUCMABiasCorrected && config.Variant != MUCMARaw {
		return nil, fmt.Errorf("equalize: unknown MU-CMA variant %d", config.Variant)
	}
	r2 := config.R2
	if len(config.Const) > 0 {
		r2 = modem.R2(config.Const)
	} else if r2 == 0 {
		r2 = 1.32
	}
	if config.W0 != nil {
		if err := checkWeights(config.W0); err != nil {
			return nil, err
		}
		config.Channels = config.W0.D0
		config.Taps = config.W0.D2
	}
	return &MUCMA{
		channels: config.Channels,
		taps:     config.Taps,
		delta:    config.Delta,
		beta:     config.Beta,
		lr:       lrOrDefault(config.LR, 1e-4),
		r2:       r2,
		variant:  config.Variant,
		w0:       config.W0,
	}, nil
}

// MUCMAState carries the weight tensor, the output delay line (rows are
// ages: row 0 is the newest output), the correlation EMA tensor
// [channels][channels][delta], and the running beta power for bias
// correction.
type MUCMAState struct {
	W       *cx.Tensor
	Z       *cx.Matrix
	R       *cx.Tensor
	BetaPow float64
}

// MUCMAOut is the per-step diagnostic output; W is the pre-update tensor,
// shared not copied.
type MUCMAOut struct {
	W    *cx.Tensor
	Loss float64
}

// Init builds the initial state: central-spike weights unless W0 was
// given, an empty delay line and a zero correlation tensor.
func (m *MUCMA) Init() (*MUCMAState, error) {
	w := m.w0
	if w == nil {
		var err error
		if w, err = NewWeights(m.channels, m.taps, InitCentralSpike); err != nil {
			return nil, err
		}
	} else {
		w = w.Clone()
	}
	return &MUCMAState{
		W:       w,
		Z:       cx.ZerosMatrix(m.delta, m.channels),
		R:       cx.ZerosTensor(m.channels, m.channels, m.delta),
		BetaPow: m.beta,
	}, nil
}

// Update advances the recursion by one step. MU-CMA is blind; frame truth
// and train flag are ignored.
func (m *MUCMA) Update(step int, st *MUCMAState, in Frame) (*MUCMAState, MUCMAOut, error) {
	if err := checkBlock(st.W, in.U); err != nil {
		return nil, MUCMAOut{}, err
	}
	dims := m.channels
	v := Combine(st.W, in.U)

	// Shift the delay line: the current output becomes age 0.
	z := cx.ZerosMatrix(m.delta, dims)
	copy(z.Row(0), v)
	for d := 1; d < m.delta; d++ {
		copy(z.Row(d), st.Z.Row(d-1))
	}

	// EMA of the instantaneous correlation r[i][m][d] = z[0][i]*conj(z[d][m]).
	r := cx.ZerosTensor(dims, dims, m.delta)
	for i := 0; i < dims; i++ {
		for mm := 0; mm < dims; mm++ {
			for d := 0; d < m.delta; d++ {
				inst := z.At(0, i) * cmplx.Conj(z.At(d, mm))
				r.Set(i, mm, d, complex(m.beta, 0)*st.R.At(i, mm, d)+complex(1-m.beta, 0)*inst)
			}
		}
	}

	rhat := r
	if m.variant == MUCMABiasCorrected {
		rhat = r.Clone()
		scale := complex(1/(1-st.BetaPow), 0)
		for i := range rhat.Data {
			rhat.Data[i] *= scale
		}
	}

	// Correlation energy per channel pair, and the multiuser penalty that
	// counts only cross terms.
	var total, self float64
	for i := 0; i < dims; i++ {
		for mm := 0; mm < dims; mm++ {
			var e float64
			for d := 0; d < m.delta; d++ {
				e += cx.Abs2(rhat.At(i, mm, d))
			}
			total += e
			if i == mm {
				self += e
			}
		}
	}

	var lcma float64
	resid := make([]float64, dims)
	for i, vi := range v {
		resid[i] = cx.Abs2(vi) - m.r2
		lcma += resid[i] * resid[i]
	}
	loss := lcma + 2*(total-self)
	if !isFinite(loss) {
		return nil, MUCMAOut{}, af.Diverged(step)
	}
	out := MUCMAOut{W: st.W, Loss: loss}

	// Both gradient terms share the conj(u) factor, so fold them into one
	// per-channel coefficient: 4*v_i*(|v_i|^2-R2) from the CMA term plus
	// sum_{m != i, d} 4*rhat[i][m][d]*z[d][m] from the cross penalty.
	coeff := make([]complex128, dims)
	for i := 0; i < dims; i++ {
		coeff[i] = complex(4*resid[i], 0) * v[i]
		for mm := 0; mm < dims; mm++ {
			if mm == i {
				continue
			}
			for d := 0; d < m.delta; d++ {
				coeff[i] += 4 * rhat.At(i, mm, d) * z.At(d, mm)
			}
		}
	}

	lr := complex(m.lr(step), 0)
	w := st.W.Clone()
	for i := 0; i < dims; i++ {
		for j := 0; j < dims; j++ {
			for t := 0; t < m.taps; t++ {
				w.Set(i, j, t, w.At(i, j, t)-lr*coeff[i]*cmplx.Conj(in.U.At(t, j)))
			}
		}
	}

	return &MUCMAState{W: w, Z: z, R: r, BetaPow: st.BetaPow * m.beta}, out, nil
}

// Apply batch-equalizes a block sequence with a fixed tensor or a weight
// trajectory.
func (m *MUCMA) Apply(ws []*cx.Tensor, us []*cx.Matrix) (*cx.Matrix, error) {
	return EqualizeBlock(ws, us)
}
