package ops_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/matrix"
	"github.com/kpnflow/dse/matrix/ops"
)

func TestLU_RejectsNonSquareMatrix(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	_, _, err = ops.LU(m)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// buildTridiagonal mirrors the shape designcenter's spline fit solves:
// diagonally dominant, symmetric, tridiagonal.
func buildTridiagonal(t *testing.T, diag, off []float64) matrix.Matrix {
	t.Helper()

	n := len(diag)
	a, err := matrix.NewDense(n, n)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.NoError(t, a.Set(i, i, diag[i]))
		if i > 0 {
			require.NoError(t, a.Set(i, i-1, off[i-1]))
			require.NoError(t, a.Set(i-1, i, off[i-1]))
		}
	}

	return a
}

func TestLU_ReconstructsOriginalMatrix(t *testing.T) {
	a := buildTridiagonal(t, []float64{4, 6, 5}, []float64{1, 2})

	l, u, err := ops.LU(a)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				lik, _ := l.At(i, k)
				ukj, _ := u.At(k, j)
				sum += lik * ukj
			}

			want, _ := a.At(i, j)
			require.InDelta(t, want, sum, 1e-9)
		}
	}
}

func TestLU_LowerIsUnitLowerTriangular(t *testing.T) {
	a := buildTridiagonal(t, []float64{4, 6, 5}, []float64{1, 2})

	l, _, err := ops.LU(a)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		diag, _ := l.At(i, i)
		require.Equal(t, 1.0, diag)

		for j := i + 1; j < 3; j++ {
			v, _ := l.At(i, j)
			require.Equal(t, 0.0, v, "L must be lower triangular")
		}
	}
}
