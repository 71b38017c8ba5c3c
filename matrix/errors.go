package matrix

import "errors"

// Sentinel errors returned by this package. Algorithms return these
// directly or wrap them with fmt.Errorf("%w", ...); callers match via
// errors.Is, never by string comparison.
var (
	// ErrInvalidDimensions is returned when requested dimensions are not
	// strictly positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange is returned by At/Set when an index falls outside
	// [0, Rows()) or [0, Cols()).
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNaNInf is returned by Set when v is NaN or +/-Inf.
	ErrNaNInf = errors.New("matrix: NaN or Inf value")

	// ErrDimensionMismatch is returned when an operation's operands
	// disagree on shape (e.g. LU on a non-square matrix).
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNotSymmetric is returned by EigenSym when the input violates
	// symmetry beyond the caller's tolerance.
	ErrNotSymmetric = errors.New("matrix: matrix is not symmetric within tolerance")

	// ErrEigenFailed is returned by EigenSym when the Jacobi sweep does
	// not converge within the given iteration budget.
	ErrEigenFailed = errors.New("matrix: eigendecomposition did not converge")
)
