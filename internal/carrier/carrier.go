// Package carrier implements carrier recovery for coherent receivers:
// EKF-based joint phase/amplitude-noise tracking (CPANE) and a joint
// phase plus frequency-offset EKF. Both follow the same sequential
// recursion contract as the equalizers and plug into the fold engine.
package carrier

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// ErrShape is wrapped by every shape-validation failure in this package.
var ErrShape = errors.New("carrier: shape mismatch")

// Obs is the per-step input of a carrier tracker: one received sample plus
// the optional training inputs.
type Obs struct {
	Y     complex128 // received sample
	X     complex128 // truth symbol; zero when absent
	Train bool       // true selects the truth symbol over the decision
}

// MakeObs pairs received samples with optional truth-symbol and
// training-mask streams. Shorter streams are padded (zero symbols, false
// flags) to the signal length; longer streams are rejected.
func MakeObs(y, x []complex128, train []bool) ([]Obs, error) {
	n := len(y)
	if len(x) > n {
		return nil, fmt.Errorf("carrier: truth stream length %d exceeds signal length %d", len(x), n)
	}
	if len(train) > n {
		return nil, fmt.Errorf("carrier: training mask length %d exceeds signal length %d", len(train), n)
	}
	obs := make([]Obs, n)
	for i, yi := range y {
		obs[i] = Obs{Y: yi}
		if i < len(x) {
			obs[i].X = x[i]
		}
		if i < len(train) {
			obs[i].Train = train[i]
		}
	}
	return obs, nil
}

// Derotate applies per-sample phase estimates to a signal:
// out[n] = y[n] * exp(-i*psi[n]).
func Derotate(psi []float64, y []complex128) ([]complex128, error) {
	if len(psi) != len(y) {
		return nil, fmt.Errorf("%w: %d phase estimates for %d samples", ErrShape, len(psi), len(y))
	}
	out := make([]complex128, len(y))
	for n := range y {
		out[n] = y[n] * cmplx.Exp(complex(0, -psi[n]))
	}
	return out, nil
}
