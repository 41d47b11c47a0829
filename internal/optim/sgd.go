package optim

import (
	"math/cmplx"

	"github.com/coheq-dsp/coheq/internal/sched"
)

// SGD implements plain stochastic gradient descent.
//
// Update rule:
//
//	param = param - lr(step) * conj(grad)
type SGD struct {
	lr sched.Schedule
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR sched.Schedule // Learning rate schedule (default: constant 0.01)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return &SGD{lr: rate(config.LR, 0.01)}
}

// Step applies one SGD update to params in place.
func (s *SGD) Step(step int, params, grads []complex128) error {
	if err := checkLens("sgd", params, grads); err != nil {
		return err
	}
	lr := complex(s.lr(step), 0)
	for i, g := range grads {
		params[i] -= lr * cmplx.Conj(g)
	}
	return nil
}

// Momentum implements SGD with classical momentum.
//
// Update rule:
//
//	velocity = mass * velocity + conj(grad)
//	param    = param - lr(step) * velocity
type Momentum struct {
	lr   sched.Schedule
	mass float64
	vel  []complex128
}

// MomentumConfig holds configuration for Momentum.
type MomentumConfig struct {
	LR   sched.Schedule // Learning rate schedule (default: constant 0.01)
	Mass float64        // Momentum coefficient (default: 0.9)
}

// NewMomentum creates a new Momentum optimizer.
func NewMomentum(config MomentumConfig) *Momentum {
	if config.Mass == 0 {
		config.Mass = 0.9
	}
	return &Momentum{lr: rate(config.LR, 0.01), mass: config.Mass}
}

// Step applies one momentum update to params in place. The velocity buffer
// is allocated lazily on first use.
func (m *Momentum) Step(step int, params, grads []complex128) error {
	if err := checkLens("momentum", params, grads); err != nil {
		return err
	}
	if m.vel == nil {
		m.vel = make([]complex128, len(params))
	}
	lr := complex(m.lr(step), 0)
	mass := complex(m.mass, 0)
	for i, g := range grads {
		m.vel[i] = mass*m.vel[i] + cmplx.Conj(g)
		params[i] -= lr * m.vel[i]
	}
	return nil
}

// Nesterov implements SGD with Nesterov momentum.
//
// Update rule:
//
//	velocity = mass * velocity + conj(grad)
//	param    = param - lr(step) * (mass * velocity + conj(grad))
type Nesterov struct {
	lr   sched.Schedule
	mass float64
	vel  []complex128
}

// NesterovConfig holds configuration for Nesterov.
type NesterovConfig struct {
	LR   sched.Schedule // Learning rate schedule (default: constant 0.01)
	Mass float64        // Momentum coefficient (default: 0.9)
}

// NewNesterov creates a new Nesterov optimizer.
func NewNesterov(config NesterovConfig) *Nesterov {
	if config.Mass == 0 {
		config.Mass = 0.9
	}
	return &Nesterov{lr: rate(config.LR, 0.01), mass: config.Mass}
}

// Step applies one Nesterov update to params in place.
func (n *Nesterov) Step(step int, params, grads []complex128) error {
	if err := checkLens("nesterov", params, grads); err != nil {
		return err
	}
	if n.vel == nil {
		n.vel = make([]complex128, len(params))
	}
	lr := complex(n.lr(step), 0)
	mass := complex(n.mass, 0)
	for i, g := range grads {
		gc := cmplx.Conj(g)
		n.vel[i] = mass*n.vel[i] + gc
		params[i] -= lr * (mass*n.vel[i] + gc)
	}
	return nil
}
