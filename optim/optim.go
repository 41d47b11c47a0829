// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/coheq-dsp/coheq/internal/optim"
)

// Optimizer steps a complex parameter vector against its gradient.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD is plain gradient descent.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Momentum is gradient descent with a velocity accumulator.
type Momentum = optim.Momentum

// MomentumConfig contains configuration for the Momentum optimizer.
type MomentumConfig = optim.MomentumConfig

// NewMomentum creates a new Momentum optimizer.
func NewMomentum(config MomentumConfig) *Momentum {
	return optim.NewMomentum(config)
}

// Nesterov is momentum with a lookahead correction.
type Nesterov = optim.Nesterov

// NesterovConfig contains configuration for the Nesterov optimizer.
type NesterovConfig = optim.NesterovConfig

// NewNesterov creates a new Nesterov optimizer.
func NewNesterov(config NesterovConfig) *Nesterov {
	return optim.NewNesterov(config)
}

// AdaGrad scales steps by accumulated squared gradient magnitudes.
type AdaGrad = optim.AdaGrad

// AdaGradConfig contains configuration for the AdaGrad optimizer.
type AdaGradConfig = optim.AdaGradConfig

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad {
	return optim.NewAdaGrad(config)
}

// RMSProp scales steps by an EMA of squared gradient magnitudes.
type RMSProp = optim.RMSProp

// RMSPropConfig contains configuration for the RMSProp optimizer.
type RMSPropConfig = optim.RMSPropConfig

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	return optim.NewRMSProp(config)
}

// Adam (Adaptive Moment Estimation)

// Adam combines first- and second-moment EMAs with bias correction.
type Adam = optim.Adam

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// AdaMax is Adam with an infinity-norm second moment.
type AdaMax = optim.AdaMax

// AdaMaxConfig contains configuration for the AdaMax optimizer.
type AdaMaxConfig = optim.AdaMaxConfig

// NewAdaMax creates a new AdaMax optimizer.
func NewAdaMax(config AdaMaxConfig) *AdaMax {
	return optim.NewAdaMax(config)
}
