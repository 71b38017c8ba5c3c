// Package ops holds matrix decompositions that sit above the base Matrix
// type but are only needed by one caller, so they live apart from the
// core matrix package rather than growing its API surface.
package ops

import (
	"fmt"

	"github.com/kpnflow/dse/matrix"
)

// LU performs Doolittle LU decomposition of a square matrix m: L is unit
// lower triangular, U is upper triangular, and L*U == m. Returns
// ErrDimensionMismatch if m is not square. Used by
// search/designcenter's cubic-spline fit to solve the tridiagonal
// second-derivative system (SPEC_FULL.md §4.4.5).
//
// Complexity: O(n^3) time, O(n^2) space.
func LU(m matrix.Matrix) (matrix.Matrix, matrix.Matrix, error) {
	n := m.Rows()
	if n != m.Cols() {
		return nil, nil, fmt.Errorf("LU: %dx%d: %w", n, m.Cols(), matrix.ErrDimensionMismatch)
	}

	l, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, nil, fmt.Errorf("LU: %w", err)
	}

	u, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, nil, fmt.Errorf("LU: %w", err)
	}

	for i := 0; i < n; i++ {
		_ = l.Set(i, i, 1)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				lik, _ := l.At(i, k)
				ukj, _ := u.At(k, j)
				sum += lik * ukj
			}

			aij, _ := m.At(i, j)
			_ = u.Set(i, j, aij-sum)
		}

		for j := i + 1; j < n; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				ljk, _ := l.At(j, k)
				uki, _ := u.At(k, i)
				sum += ljk * uki
			}

			aji, _ := m.At(j, i)
			uii, _ := u.At(i, i)
			_ = l.Set(j, i, (aji-sum)/uii)
		}
	}

	return l, u, nil
}
