package equalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/equalize"
)

func TestRefTap(t *testing.T) {
	assert.Equal(t, 0, equalize.RefTap(1))
	assert.Equal(t, 2, equalize.RefTap(5))
	assert.Equal(t, 9, equalize.RefTap(19))
	assert.Equal(t, 15, equalize.RefTap(32))
}

func TestZeroDelayPads(t *testing.T) {
	tests := []struct {
		name               string
		taps, stride, ref  int
		wantHead, wantTail int
	}{
		{"default center stride 1", 5, 1, -1, 2, 2},
		{"default center stride 2", 19, 2, -1, 8, 9},
		{"explicit first tap", 5, 1, 0, 0, 4},
		{"explicit last tap", 5, 1, 4, 4, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			head, tail, err := equalize.ZeroDelayPads(tc.taps, tc.stride, tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHead, head)
			assert.Equal(t, tc.wantTail, tail)
		})
	}
}

func TestZeroDelayPadsErrors(t *testing.T) {
	_, _, err := equalize.ZeroDelayPads(0, 1, -1)
	require.Error(t, err)

	_, _, err = equalize.ZeroDelayPads(5, 0, -1)
	require.Error(t, err)

	_, _, err = equalize.ZeroDelayPads(5, 1, 5) // reference tap out of range
	require.Error(t, err)

	_, _, err = equalize.ZeroDelayPads(3, 2, 2) // negative tail
	require.Error(t, err)
}

func TestFrameSignalAlignment(t *testing.T) {
	const n, channels, taps = 8, 2, 5
	y := cx.ZerosMatrix(n, channels)
	for r := 0; r < n; r++ {
		for c := 0; c < channels; c++ {
			y.Set(r, c, complex(float64(r+1), float64(c)))
		}
	}

	blocks, err := equalize.FrameSignal(y, taps, 1, -1)
	require.NoError(t, err)
	require.Len(t, blocks, n)

	// Output sample k sits on the reference tap of block k.
	ref := equalize.RefTap(taps)
	for k, u := range blocks {
		require.Equal(t, taps, u.Rows)
		require.Equal(t, channels, u.Cols)
		for c := 0; c < channels; c++ {
			assert.Equal(t, y.At(k, c), u.At(ref, c), "block %d channel %d", k, c)
		}
	}

	// Leading rows of the first block are zero padding.
	assert.Equal(t, complex128(0), blocks[0].At(0, 0))
	assert.Equal(t, complex128(0), blocks[0].At(1, 0))
}

func TestFrameSignalStride(t *testing.T) {
	y := cx.ZerosMatrix(16, 2)
	blocks, err := equalize.FrameSignal(y, 5, 2, -1)
	require.NoError(t, err)
	assert.Len(t, blocks, 8)
}

func TestFrameSignalTooShort(t *testing.T) {
	y := cx.ZerosMatrix(1, 2)
	_, err := equalize.FrameSignal(y, 9, 1, 8) // head 8, tail 0: padded 9 == taps
	require.NoError(t, err)

	_, err = equalize.FrameSignal(cx.ZerosMatrix(1, 2), 9, 9, 0)
	require.Error(t, err)
}

func TestMakeFramesPadsShortStreams(t *testing.T) {
	blocks := []*cx.Matrix{
		cx.ZerosMatrix(3, 2), cx.ZerosMatrix(3, 2), cx.ZerosMatrix(3, 2),
	}
	truth := [][]complex128{{1, -1}}
	train := []bool{true, true}

	frames, err := equalize.MakeFrames(blocks, truth, train)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, []complex128{1, -1}, frames[0].X)
	assert.True(t, frames[0].Train)
	assert.True(t, frames[1].Train)

	// Padded tail: zero truth, blind mode.
	assert.Equal(t, []complex128{0, 0}, frames[2].X)
	assert.False(t, frames[2].Train)
}

func TestMakeFramesRejectsLongStreams(t *testing.T) {
	blocks := []*cx.Matrix{cx.ZerosMatrix(3, 2)}

	_, err := equalize.MakeFrames(blocks, [][]complex128{{1, 1}, {1, 1}}, nil)
	require.Error(t, err)

	_, err = equalize.MakeFrames(blocks, nil, []bool{true, false})
	require.Error(t, err)
}

func TestMakeFramesValidatesShapes(t *testing.T) {
	_, err := equalize.MakeFrames([]*cx.Matrix{nil}, nil, nil)
	require.Error(t, err)

	_, err = equalize.MakeFrames(
		[]*cx.Matrix{cx.ZerosMatrix(3, 2), cx.ZerosMatrix(4, 2)}, nil, nil)
	require.Error(t, err)

	_, err = equalize.MakeFrames(
		[]*cx.Matrix{cx.ZerosMatrix(3, 2)}, [][]complex128{{1}}, nil)
	require.Error(t, err)
}
