package equalize

import (
	"math"

	"github.com/coheq-dsp/coheq/internal/sched"
)

// epsDefault guards magnitude normalizations and energy-normalized
// gradients against division by an exact zero.
const epsDefault = 1e-8

func lrOrDefault(s sched.Schedule, def float64) sched.Schedule {
	if s == nil {
		return sched.Constant(def)
	}
	return s
}

func flagOrDefault(f sched.Flag, def bool) sched.Flag {
	if f == nil {
		return sched.FlagConstant(def)
	}
	return f
}

func abs(x float64) float64 { return math.Abs(x) }

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
