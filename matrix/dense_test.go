package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/matrix"
)

func TestNewDense_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(3, -1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_SetAtRoundTrips(t *testing.T) {
	d, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, d.Set(1, 2, 4.5))

	v, err := d.At(1, 2)
	require.NoError(t, err)
	require.Equal(t, 4.5, v)

	v, err = d.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 0.0, v)
}

func TestDense_AtSetRejectOutOfRangeIndices(t *testing.T) {
	d, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = d.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	err = d.Set(0, -1, 1)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestDense_SetRejectsNaNAndInf(t *testing.T) {
	d, err := matrix.NewDense(1, 1)
	require.NoError(t, err)

	err = d.Set(0, 0, math.NaN())
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestDense_CloneIsIndependent(t *testing.T) {
	d, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	require.NoError(t, d.Set(0, 0, 1))

	clone := d.Clone()
	require.NoError(t, d.Set(0, 0, 99))

	v, err := clone.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v, "mutating the original must not affect the clone")
}

func TestDense_ImplementsMatrixInterface(t *testing.T) {
	var _ matrix.Matrix = (*matrix.Dense)(nil)
}

func TestDense_ErrorsUnwrapToSentinels(t *testing.T) {
	d, err := matrix.NewDense(1, 1)
	require.NoError(t, err)

	_, err = d.At(5, 5)
	require.True(t, errors.Is(err, matrix.ErrOutOfRange))
}
