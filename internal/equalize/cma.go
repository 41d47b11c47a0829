package equalize

import (
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/af"
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/modem"
	"github.com/coheq-dsp/coheq/internal/sched"
)

// CMA is the constant-modulus blind equalizer. Per step it combines the
// block to v = MIMO(w, u), scores the deviation of every |v[i]|^2 from the
// constant-modulus target R2, and descends the Wirtinger gradient:
//
//	loss = sum_i |R2 - |v[i]|^2|
//	w[i][j][t] -= lr(step) * sign(|v[i]|^2 - R2) * v[i] * conj(u[t][j])
//
// Reference: Godard, "Self-recovering equalization and carrier tracking in
// two-dimensional data communication systems" (1980).
type CMA struct {
	channels, taps int
	lr             sched.Schedule
	r2             float64
	init           WeightInit
	w0             *cx.Tensor
}

// CMAConfig holds configuration for CMA.
type CMAConfig struct {
	Channels int            // MIMO size (default: 2)
	Taps     int            // FIR taps per channel pair (default: 19)
	LR       sched.Schedule // Learning rate (default: constant 1e-4)
	R2       float64        // Constant-modulus target (default: 1.32)
	Const    []complex128   // Optional constellation; overrides R2 with E|s|^4/E|s|^2
	Init     WeightInit     // Weight init (default: central spike)
	W0       *cx.Tensor     // Optional explicit initial weights; overrides Init
}

// NewCMA creates a CMA equalizer, deriving R2 from the constellation when
// one is supplied.
func NewCMA(config CMAConfig) (*CMA, error) {
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.Taps == 0 {
		config.Taps = 19
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
	if _, err := NewWeights(config.Channels, config.Taps, config.Init); err != nil {
		return nil, err
	}
	return &CMA{
		channels: config.Channels,
		taps:     config.Taps,
		lr:       lrOrDefault(config.LR, 1e-4),
		r2:       r2,
		init:     config.Init,
		w0:       config.W0,
	}, nil
}

// CMAState is the CMA filter state: the weight tensor alone.
type CMAState struct {
	W *cx.Tensor
}

// CMAOut is the per-step diagnostic output. W is the pre-update tensor of
// that step and is shared, not copied; treat it as read-only.
type CMAOut struct {
	W    *cx.Tensor
	Loss float64
}

// R2 returns the constant-modulus target in use.
func (c *CMA) R2() float64 { return c.r2 }

// Init builds the initial state.
func (c *CMA) Init() (*CMAState, error) {
	if c.w0 != nil {
		return &CMAState{W: c.w0.Clone()}, nil
	}
	w, err := NewWeights(c.channels, c.taps, c.init)
	if err != nil {
		return nil, err
	}
	return &CMAState{W: w}, nil
}

// Update advances the recursion by one step. The truth symbols and train
// flag of the frame are ignored; CMA is blind.
func (c *CMA) Update(step int, st *CMAState, in Frame) (*CMAState, CMAOut, error) {
	if err := checkBlock(st.W, in.U); err != nil {
		return nil, CMAOut{}, err
	}

	v := Combine(st.W, in.U)
	var loss float64
	resid := make([]float64, len(v))
	for i, vi := range v {
		resid[i] = cx.Abs2(vi) - c.r2
		loss += abs(resid[i])
	}
	if !isFinite(loss) {
		return nil, CMAOut{}, af.Diverged(step)
	}
	out := CMAOut{W: st.W, Loss: loss}

	lr := complex(c.lr(step), 0)
	w := st.W.Clone()
	for i := 0; i < w.D0; i++ {
		coeff := lr * complex(sign(resid[i]), 0) * v[i]
		for j := 0; j < w.D1; j++ {
			for t := 0; t < w.D2; t++ {
				w.Set(i, j, t, w.At(i, j, t)-coeff*cmplx.Conj(in.U.At(t, j)))
			}
		}
	}
	return &CMAState{W: w}, out, nil
}

// Apply batch-equalizes a block sequence with a fixed tensor (len 1) or a
// weight trajectory.
func (c *CMA) Apply(ws []*cx.Tensor, us []*cx.Matrix) (*cx.Matrix, error) {
	return EqualizeBlock(ws, us)
}
