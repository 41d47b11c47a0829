package optim_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/optim"
	"github.com/coheq-dsp/coheq/internal/sched"
)

// quadGrad is the Wirtinger gradient dL/dz of L = |z - target|^2, i.e.
// conj(z - target); descending with conj(grad) moves z toward target.
func quadGrad(z, target complex128) complex128 {
	return cmplx.Conj(z - target)
}

func TestSGDStep(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: sched.Constant(0.1)})
	params := []complex128{2 + 1i}
	grads := []complex128{1 - 1i}

	require.NoError(t, opt.Step(0, params, grads))

	// param -= lr * conj(grad) = (2+1i) - 0.1*(1+1i)
	assert.InDelta(t, 1.9, real(params[0]), 1e-12)
	assert.InDelta(t, 0.9, imag(params[0]), 1e-12)
}

func TestSGDLengthMismatch(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{})
	err := opt.Step(0, make([]complex128, 2), make([]complex128, 3))
	require.Error(t, err)
}

func TestMomentumAccumulates(t *testing.T) {
	opt := optim.NewMomentum(optim.MomentumConfig{LR: sched.Constant(0.1), Mass: 0.9})
	params := []complex128{1}
	grads := []complex128{1}

	require.NoError(t, opt.Step(0, params, grads))
	// v1 = 1, x1 = 1 - 0.1 = 0.9
	assert.InDelta(t, 0.9, real(params[0]), 1e-12)

	require.NoError(t, opt.Step(1, params, grads))
	// v2 = 0.9 + 1 = 1.9, x2 = 0.9 - 0.19 = 0.71
	assert.InDelta(t, 0.71, real(params[0]), 1e-12)
}

func TestAdamFirstStepMagnitude(t *testing.T) {
	lr := 0.001
	opt := optim.NewAdam(optim.AdamConfig{LR: sched.Constant(lr)})
	params := []complex128{0}
	grads := []complex128{100i}

	require.NoError(t, opt.Step(0, params, grads))

	// After bias correction the first Adam step has magnitude ~lr
	// regardless of the gradient scale.
	assert.InDelta(t, lr, cmplx.Abs(params[0]), lr*1e-3)
}

func TestOptimizersConvergeOnQuadratic(t *testing.T) {
	target := 3 - 2i
	cases := []struct {
		name  string
		opt   optim.Optimizer
		steps int
		tol   float64
	}{
		{"sgd", optim.NewSGD(optim.SGDConfig{LR: sched.Constant(0.1)}), 200, 1e-6},
		{"momentum", optim.NewMomentum(optim.MomentumConfig{LR: sched.Constant(0.02), Mass: 0.9}), 400, 1e-4},
		{"nesterov", optim.NewNesterov(optim.NesterovConfig{LR: sched.Constant(0.02), Mass: 0.9}), 400, 1e-4},
		// The sign-like adaptive methods take ~lr sized steps even near the
		// optimum, so they settle into an lr-scale neighborhood rather than
		// converging exactly; tolerances reflect that.
		{"adagrad", optim.NewAdaGrad(optim.AdaGradConfig{LR: sched.Constant(0.5), Momentum: 0.5}), 3000, 5e-2},
		{"rmsprop", optim.NewRMSProp(optim.RMSPropConfig{LR: sched.Constant(0.01)}), 3000, 5e-2},
		{"adam", optim.NewAdam(optim.AdamConfig{LR: sched.Constant(0.01)}), 3000, 5e-2},
		{"adamax", optim.NewAdaMax(optim.AdaMaxConfig{LR: sched.Constant(0.01)}), 3000, 5e-2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := []complex128{0}
			for step := 0; step < tc.steps; step++ {
				grads := []complex128{quadGrad(params[0], target)}
				require.NoError(t, tc.opt.Step(step, params, grads))
			}
			assert.Less(t, cmplx.Abs(params[0]-target), tc.tol,
				"final distance %v", cmplx.Abs(params[0]-target))
		})
	}
}

func TestScheduledLR(t *testing.T) {
	s, err := sched.PiecewiseConstant([]int{1}, []float64{1.0, 0.0})
	require.NoError(t, err)
	opt := optim.NewSGD(optim.SGDConfig{LR: s})

	params := []complex128{1}
	require.NoError(t, opt.Step(0, params, []complex128{1}))
	moved := params[0]
	require.NoError(t, opt.Step(1, params, []complex128{1}))

	// Zero rate after the boundary freezes the parameter.
	assert.Equal(t, moved, params[0])
	assert.False(t, math.IsNaN(real(params[0])))
}
