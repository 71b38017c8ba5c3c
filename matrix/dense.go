package matrix

import (
	"fmt"
	"math"
)

// Dense is a row-major Matrix backed by a single flat slice.
type Dense struct {
	r, c int
	data []float64
}

var _ Matrix = (*Dense)(nil)

// NewDense allocates an r x c Dense matrix initialized to zeros.
// Returns ErrInvalidDimensions if rows or cols is not strictly positive.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

func (m *Dense) Rows() int { return m.r }
func (m *Dense) Cols() int { return m.c }

func (m *Dense) index(i, j int) (int, error) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return 0, fmt.Errorf("Dense(%d,%d): %w", i, j, ErrOutOfRange)
	}

	return i*m.c + j, nil
}

func (m *Dense) At(i, j int) (float64, error) {
	off, err := m.index(i, j)
	if err != nil {
		return 0, err
	}

	return m.data[off], nil
}

func (m *Dense) Set(i, j int, v float64) error {
	off, err := m.index(i, j)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("Dense(%d,%d): %w", i, j, ErrNaNInf)
	}

	m.data[off] = v

	return nil
}

func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}
