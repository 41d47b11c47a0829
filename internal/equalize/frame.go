package equalize

import (
	"fmt"

	"github.com/coheq-dsp/coheq/internal/cx"
)

// Frame is the normalized per-step input of every MIMO equalizer: one
// windowed sample block plus the optional training inputs, defaulted when
// absent (zero truth symbols, blind mode).
type Frame struct {
	U     *cx.Matrix   // [taps][channels] windowed samples
	X     []complex128 // truth symbols, one per channel; zeros when absent
	Train bool         // true selects data-aided updates for this step
}

// MakeFrames pairs windowed sample blocks with optional truth-symbol and
// training-mask streams. Shorter streams are padded (zero symbols, false
// flags) to the signal length; streams longer than the signal are
// rejected. All blocks must share one [taps][channels] shape.
func MakeFrames(blocks []*cx.Matrix, truth [][]complex128, train []bool) ([]Frame, error) {
	n := len(blocks)
	if len(truth) > n {
		return nil, fmt.Errorf("equalize: truth stream length %d exceeds signal length %d", len(truth), n)
	}
	if len(train) > n {
		return nil, fmt.Errorf("equalize: training mask length %d exceeds signal length %d", len(train), n)
	}

	frames := make([]Frame, n)
	for i, u := range blocks {
		if u == nil {
			return nil, fmt.Errorf("equalize: block %d is nil", i)
		}
		if u.Rows != blocks[0].Rows || u.Cols != blocks[0].Cols {
			return nil, fmt.Errorf("equalize: block %d shape %dx%d differs from %dx%d",
				i, u.Rows, u.Cols, blocks[0].Rows, blocks[0].Cols)
		}
		x := make([]complex128, u.Cols)
		if i < len(truth) {
			if len(truth[i]) != u.Cols {
				return nil, fmt.Errorf("equalize: truth %d has %d symbols, want %d channels",
					i, len(truth[i]), u.Cols)
			}
			copy(x, truth[i])
		}
		frames[i] = Frame{U: u, X: x}
		if i < len(train) {
			frames[i].Train = train[i]
		}
	}
	return frames, nil
}

// RefTap returns the default reference tap (taps+1)/2 - 1, the filter's
// nominal zero-delay center.
func RefTap(taps int) int { return (taps+1)/2 - 1 }

// ZeroDelayPads returns the head/tail zero padding that centers a filter's
// group delay on the reference tap, so output sample k aligns with input
// sample k*stride. A negative refTap selects the default RefTap(taps).
func ZeroDelayPads(taps, stride, refTap int) (head, tail int, err error) {
	if taps < 1 || stride < 1 {
		return 0, 0, fmt.Errorf("equalize: invalid taps %d / stride %d", taps, stride)
	}
	if refTap < 0 {
		refTap = RefTap(taps)
	}
	if refTap >= taps {
		return 0, 0, fmt.Errorf("equalize: reference tap %d outside %d taps", refTap, taps)
	}
	delay := (refTap+stride)/stride - 1 // ceil((refTap+1)/stride) - 1
	head = delay * stride
	tail = taps - stride*(delay+1)
	if tail < 0 {
		return 0, 0, fmt.Errorf("equalize: reference tap %d incompatible with stride %d", refTap, stride)
	}
	return head, tail, nil
}

// FrameSignal windows a [time][channels] signal into [taps][channels]
// blocks advancing by stride samples, padded with zeros so the filter's
// group delay lands on refTap (negative selects the default). For a
// stride-s signal of n samples it yields n/s blocks.
func FrameSignal(y *cx.Matrix, taps, stride, refTap int) ([]*cx.Matrix, error) {
	head, tail, err := ZeroDelayPads(taps, stride, refTap)
	if err != nil {
		return nil, err
	}

	padded := y.Rows + head + tail
	if padded < taps {
		return nil, fmt.Errorf("equalize: signal of %d samples too short for %d taps", y.Rows, taps)
	}
	count := (padded-taps)/stride + 1

	at := func(r, c int) complex128 {
		r -= head
		if r < 0 || r >= y.Rows {
			return 0
		}
		return y.At(r, c)
	}

	blocks := make([]*cx.Matrix, count)
	for k := 0; k < count; k++ {
		u := cx.ZerosMatrix(taps, y.Cols)
		for t := 0; t < taps; t++ {
			for c := 0; c < y.Cols; c++ {
				u.Set(t, c, at(k*stride+t, c))
			}
		}
		blocks[k] = u
	}
	return blocks, nil
}
