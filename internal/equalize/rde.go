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

// RDE is the radius-directed equalizer: CMA generalized to multi-ring
// constellations. Per step and per channel the squared-radius target is
// the nearest constellation ring to the current output modulus (blind
// mode), or the true symbol's squared radius when the frame's train flag
// is set (data-aided mode). The mode is a per-step property of the input,
// not a one-time toggle.
//
// Reference: Fatadin, Ives & Savory, Journal of Lightwave Technology 27.15
// (2009).
type RDE struct {
	channels, taps int
	lr             sched.Schedule
	radii          []float64
	init           WeightInit
	w0             *cx.Tensor
}

// RDEConfig holds configuration for RDE.
type RDEConfig struct {
	Channels int            // MIMO size (default: 2)
	Taps     int            // FIR taps per channel pair (default: 31)
	LR       sched.Schedule // Learning rate (default: constant 2^-15)
	Const    []complex128   // Constellation defining the rings (default: 16QAM)
	Radii    []float64      // Explicit ring radii; overrides Const
	Init     WeightInit     // Weight init (default: central spike)
	W0       *cx.Tensor     // Optional explicit initial weights
}

// NewRDE creates an RDE equalizer.
func NewRDE(config RDEConfig) (*RDE, error) {
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.Taps == 0 {
		config.Taps = 31
	}
	radii := config.Radii
	if len(radii) == 0 {
		c := config.Const
		if len(c) == 0 {
			var err error
			if c, err = modem.Const("16QAM"); err != nil {
				return nil, err
			}
		}
		radii = modem.Radii(c)
	}
	for _, r := range radii {
		if r <= 0 {
			return nil, fmt.Errorf("equalize: RDE ring radii must be positive, got %v", r)
		}
	}
	if config.W0 != nil {
		if err := checkWeights(config.W0); err != nil {
			return nil, err
		}
		config.Channels = config.W0.D0
		config.Taps = config.W0.D2
	}
	return &RDE{
		channels: config.Channels,
		taps:     config.Taps,
		lr:       lrOrDefault(config.LR, math.Exp2(-15)),
		radii:    radii,
		init:     config.Init,
		w0:       config.W0,
	}, nil
}

// RDEState is the RDE filter state: the weight tensor alone.
type RDEState struct {
	W *cx.Tensor
}

// RDEOut is the per-step diagnostic output; W is the pre-update tensor,
// shared not copied.
type RDEOut struct {
	W    *cx.Tensor
	Loss float64
}

// Radii returns the ring radii in use.
func (r *RDE) Radii() []float64 { return append([]float64(nil), r.radii...) }

// Init builds the initial state.
func (r *RDE) Init() (*RDEState, error) {
	if r.w0 != nil {
		return &RDEState{W: r.w0.Clone()}, nil
	}
	w, err := NewWeights(r.channels, r.taps, r.init)
	if err != nil {
		return nil, err
	}
	return &RDEState{W: w}, nil
}

// Update advances the recursion by one step.
func (r *RDE) Update(step int, st *RDEState, in Frame) (*RDEState, RDEOut, error) {
	if err := checkBlock(st.W, in.U); err != nil {
		return nil, RDEOut{}, err
	}

	v := Combine(st.W, in.U)
	if in.Train && len(in.X) != len(v) {
		return nil, RDEOut{}, fmt.Errorf("%w: %d truth symbols for %d channels", ErrShape, len(in.X), len(v))
	}
	var loss float64
	resid := make([]float64, len(v))
	for i, vi := range v {
		var target float64
		if in.Train {
			target = cx.Abs2(in.X[i])
		} else {
			ring := modem.NearestRadius(r.radii, cmplx.Abs(vi))
			target = ring * ring
		}
		resid[i] = cx.Abs2(vi) - target
		loss += abs(resid[i])
	}
	if !isFinite(loss) {
		return nil, RDEOut{}, af.Diverged(step)
	}
	out := RDEOut{W: st.W, Loss: loss}

	lr := complex(r.lr(step), 0)
	w := st.W.Clone()
	for i := 0; i < w.D0; i++ {
		coeff := lr * complex(sign(resid[i]), 0) * v[i]
		for j := 0; j < w.D1; j++ {
			for t := 0; t < w.D2; t++ {
				w.Set(i, j, t, w.At(i, j, t)-coeff*cmplx.Conj(in.U.At(t, j)))
			}
		}
	}
	return &RDEState{W: w}, out, nil
}

// Apply batch-equalizes a block sequence with a fixed tensor or a weight
// trajectory.
func (r *RDE) Apply(ws []*cx.Tensor, us []*cx.Matrix) (*cx.Matrix, error) {
	return EqualizeBlock(ws, us)
}
