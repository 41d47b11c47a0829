package cx

import "fmt"

// R2C packs a real [n][2m] matrix into a complex [n][m] matrix, pairing
// adjacent columns as (real, imag):
//
//	[[0, 0, 1, -1],          [[0+0i, 1-1i],
//	 [2, -2, 3, -3]]   =>     [2-2i, 3-3i]]
//
// The width must be even.
func R2C(r [][]float64) (*Matrix, error) {
	rows := len(r)
	if rows == 0 {
		return ZerosMatrix(0, 0), nil
	}
	width := len(r[0])
	if width%2 != 0 {
		return nil, fmt.Errorf("cx: R2C requires an even width, got %d", width)
	}
	cols := width / 2
	out := ZerosMatrix(rows, cols)
	for i, row := range r {
		if len(row) != width {
			return nil, fmt.Errorf("cx: R2C row %d has width %d, want %d", i, len(row), width)
		}
		for j := 0; j < cols; j++ {
			out.Set(i, j, complex(row[2*j], row[2*j+1]))
		}
	}
	return out, nil
}

// C2R unpacks a complex [n][m] matrix into a real [n][2m] matrix, the exact
// inverse of R2C.
func C2R(c *Matrix) [][]float64 {
	out := make([][]float64, c.Rows)
	for i := 0; i < c.Rows; i++ {
		row := make([]float64, 2*c.Cols)
		for j := 0; j < c.Cols; j++ {
			z := c.At(i, j)
			row[2*j] = real(z)
			row[2*j+1] = imag(z)
		}
		out[i] = row
	}
	return out
}
