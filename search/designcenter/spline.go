// spline.go - natural cubic spline interpolation of the p_target/step
// config support points across max_samples iterations (spec.md §4.4.5).
//
// The interior second-derivative system is tridiagonal and diagonally
// dominant, so it is solved via matrix/ops.LU plus forward/back
// substitution rather than a hand-rolled Thomas-algorithm sweep — reusing
// the same decomposition the pack's own linear-algebra layer already
// provides, rather than adding a numerics dependency the pack never
// shows.
package designcenter

import (
	"errors"
	"fmt"

	"github.com/kpnflow/dse/matrix"
	"github.com/kpnflow/dse/matrix/ops"
)

// ErrTooFewPoints indicates a spline was requested over fewer than two
// support points.
var ErrTooFewPoints = errors.New("designcenter: cubic spline needs at least 2 support points")

// SplinePoint is one (x, y) support point; x values must be strictly
// increasing.
type SplinePoint struct {
	X, Y float64
}

// spline is a fitted natural cubic spline: Eval interpolates at any x
// within [points[0].X, points[len-1].X], clamping outside that range to
// the nearest endpoint's value.
type spline struct {
	points []SplinePoint
	second []float64 // M_i, the second derivative at each support point
}

// fitNaturalCubicSpline computes the natural cubic spline through points
// (M_0 = M_{n-1} = 0 at the endpoints).
func fitNaturalCubicSpline(points []SplinePoint) (*spline, error) {
	n := len(points)
	if n < 2 {
		return nil, ErrTooFewPoints
	}

	second := make([]float64, n)
	if n == 2 {
		return &spline{points: points, second: second}, nil
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = points[i+1].X - points[i].X
	}

	// Interior system is (n-2)x(n-2): unknowns M_1..M_{n-2}.
	size := n - 2

	a, err := matrix.NewDense(size, size)
	if err != nil {
		return nil, fmt.Errorf("fitNaturalCubicSpline: %w", err)
	}

	b := make([]float64, size)

	for row := 0; row < size; row++ {
		i := row + 1 // support-point index this row solves for

		if row > 0 {
			_ = a.Set(row, row-1, h[i-1])
		}
		_ = a.Set(row, row, 2*(h[i-1]+h[i]))
		if row < size-1 {
			_ = a.Set(row, row+1, h[i])
		}

		b[row] = 6 * ((points[i+1].Y-points[i].Y)/h[i] - (points[i].Y-points[i-1].Y)/h[i-1])
	}

	x, err := solveSquare(a, b)
	if err != nil {
		return nil, fmt.Errorf("fitNaturalCubicSpline: %w", err)
	}

	for row := 0; row < size; row++ {
		second[row+1] = x[row]
	}

	return &spline{points: points, second: second}, nil
}

// solveSquare solves A x = b via ops.LU decomposition plus forward and
// back substitution (L is unit lower triangular, U is upper triangular).
func solveSquare(a matrix.Matrix, b []float64) ([]float64, error) {
	n := len(b)

	l, u, err := ops.LU(a)
	if err != nil {
		return nil, err
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			lik, _ := l.At(i, k)
			sum -= lik * y[k]
		}
		y[i] = sum
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			uik, _ := u.At(i, k)
			sum -= uik * x[k]
		}
		uii, _ := u.At(i, i)
		if uii == 0 {
			return nil, fmt.Errorf("solveSquare: singular system at row %d", i)
		}
		x[i] = sum / uii
	}

	return x, nil
}

// Eval interpolates the spline at x, clamping to the nearest endpoint's y
// value when x falls outside the support points' range.
func (s *spline) Eval(x float64) float64 {
	n := len(s.points)

	if x <= s.points[0].X {
		return s.points[0].Y
	}
	if x >= s.points[n-1].X {
		return s.points[n-1].Y
	}

	i := 0
	for i < n-2 && x > s.points[i+1].X {
		i++
	}

	h := s.points[i+1].X - s.points[i].X
	a := (s.points[i+1].X - x) / h
	bFrac := (x - s.points[i].X) / h

	return a*s.points[i].Y + bFrac*s.points[i+1].Y +
		((a*a*a-a)*s.second[i]+(bFrac*bFrac*bFrac-bFrac)*s.second[i+1])*(h*h)/6
}
