package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/matrix"
)

// buildSymmetric is the same double-centered-squared-dissimilarity shape
// represent.embedProcessors feeds to EigenSym: small, symmetric, real.
func buildSymmetric(t *testing.T, rows [][]float64) matrix.Matrix {
	t.Helper()

	n := len(rows)
	d, err := matrix.NewDense(n, n)
	require.NoError(t, err)

	for i, row := range rows {
		for j, v := range row {
			require.NoError(t, d.Set(i, j, v))
		}
	}

	return d
}

func TestEigenSym_DiagonalMatrixReturnsItsOwnEntries(t *testing.T) {
	m := buildSymmetric(t, [][]float64{
		{2, 0, 0},
		{0, 5, 0},
		{0, 0, 1},
	})

	vals, vecs, err := matrix.EigenSym(m, 1e-9, 100)
	require.NoError(t, err)
	require.Len(t, vals, 3)

	seen := map[float64]bool{}
	for _, v := range vals {
		seen[math.Round(v*1e6)/1e6] = true
	}
	require.True(t, seen[2] && seen[5] && seen[1])
	require.Equal(t, 3, vecs.Rows())
	require.Equal(t, 3, vecs.Cols())
}

func TestEigenSym_ReconstructsAvEqualsLambdaV(t *testing.T) {
	m := buildSymmetric(t, [][]float64{
		{2, 1},
		{1, 2},
	})

	vals, vecs, err := matrix.EigenSym(m, 1e-9, 100)
	require.NoError(t, err)

	for col := 0; col < 2; col++ {
		v := make([]float64, 2)
		for i := 0; i < 2; i++ {
			v[i], _ = vecs.At(i, col)
		}

		for i := 0; i < 2; i++ {
			av := 0.0
			for j := 0; j < 2; j++ {
				aij, _ := m.At(i, j)
				av += aij * v[j]
			}
			require.InDelta(t, vals[col]*v[i], av, 1e-6)
		}
	}
}

func TestEigenSym_RejectsAsymmetricInput(t *testing.T) {
	m := buildSymmetric(t, [][]float64{
		{1, 2},
		{0, 1},
	})

	_, _, err := matrix.EigenSym(m, 1e-9, 100)
	require.ErrorIs(t, err, matrix.ErrNotSymmetric)
}

func TestEigenSym_RejectsNonSquareInput(t *testing.T) {
	d, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	_, _, err = matrix.EigenSym(d, 1e-9, 100)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestEigenSym_TooFewIterationsFailsToConverge(t *testing.T) {
	m := buildSymmetric(t, [][]float64{
		{4, 3, 1},
		{3, 5, 2},
		{1, 2, 6},
	})

	_, _, err := matrix.EigenSym(m, 1e-12, 0)
	require.ErrorIs(t, err, matrix.ErrEigenFailed)
}
