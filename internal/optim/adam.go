package optim

import (
	"math"
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/sched"
)

// Adam implements adaptive moment estimation for complex parameters.
//
// Update rule:
//
//	m     = beta1 * m + (1-beta1) * conj(grad)   // first moment
//	v     = beta2 * v + (1-beta2) * |grad|^2     // second moment (real)
//	mhat  = m / (1 - beta1^(step+1))             // bias correction
//	vhat  = v / (1 - beta2^(step+1))
//	param = param - lr(step) * mhat / (sqrt(vhat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
type Adam struct {
	lr           sched.Schedule
	beta1, beta2 float64
	eps          float64
	m            []complex128
	v            []float64
}

// AdamConfig holds configuration for Adam.
type AdamConfig struct {
	LR    sched.Schedule // Learning rate schedule (default: constant 0.001)
	Betas [2]float64     // Moment decay rates (default: [0.9, 0.999])
	Eps   float64        // Numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer with default hyperparameters where
// unset.
func NewAdam(config AdamConfig) *Adam {
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    rate(config.LR, 0.001),
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Step applies one Adam update to params in place. Moment buffers are
// allocated lazily; bias correction uses step+1 so step 0 is the first
// update.
func (a *Adam) Step(step int, params, grads []complex128) error {
	if err := checkLens("adam", params, grads); err != nil {
		return err
	}
	if a.m == nil {
		a.m = make([]complex128, len(params))
		a.v = make([]float64, len(params))
	}
	lr := a.lr(step)
	bc1 := 1 - math.Pow(a.beta1, float64(step+1))
	bc2 := 1 - math.Pow(a.beta2, float64(step+1))
	for i, g := range grads {
		a2 := real(g)*real(g) + imag(g)*imag(g)
		a.m[i] = complex(a.beta1, 0)*a.m[i] + complex(1-a.beta1, 0)*cmplx.Conj(g)
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*a2
		mhat := a.m[i] / complex(bc1, 0)
		vhat := a.v[i] / bc2
		params[i] -= mhat * complex(lr/(math.Sqrt(vhat)+a.eps), 0)
	}
	return nil
}

// AdaMax implements the infinity-norm variant of Adam.
//
// Update rule:
//
//	m     = beta1 * m + (1-beta1) * conj(grad)
//	u     = max(beta2 * u, |grad|)
//	param = param - (lr(step) / (1 - beta1^(step+1))) * m / (u + eps)
type AdaMax struct {
	lr           sched.Schedule
	beta1, beta2 float64
	eps          float64
	m            []complex128
	u            []float64
}

// AdaMaxConfig holds configuration for AdaMax.
type AdaMaxConfig struct {
	LR    sched.Schedule // Learning rate schedule (default: constant 0.001)
	Betas [2]float64     // Moment decay rates (default: [0.9, 0.999])
	Eps   float64        // Numerical stability term (default: 1e-8)
}

// NewAdaMax creates a new AdaMax optimizer.
func NewAdaMax(config AdaMaxConfig) *AdaMax {
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &AdaMax{
		lr:    rate(config.LR, 0.001),
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Step applies one AdaMax update to params in place.
func (a *AdaMax) Step(step int, params, grads []complex128) error {
	if err := checkLens("adamax", params, grads); err != nil {
		return err
	}
	if a.m == nil {
		a.m = make([]complex128, len(params))
		a.u = make([]float64, len(params))
	}
	lr := a.lr(step) / (1 - math.Pow(a.beta1, float64(step+1)))
	for i, g := range grads {
		a.m[i] = complex(a.beta1, 0)*a.m[i] + complex(1-a.beta1, 0)*cmplx.Conj(g)
		a.u[i] = math.Max(a.beta2*a.u[i], cmplx.Abs(g))
		params[i] -= a.m[i] * complex(lr/(a.u[i]+a.eps), 0)
	}
	return nil
}
