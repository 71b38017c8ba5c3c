package matrix

import "math"

// EigenSym computes all eigenvalues and eigenvectors of a real symmetric
// matrix m via the classical Jacobi rotation method. It returns the
// eigenvalues and a matrix Q whose columns are the corresponding
// eigenvectors. tol bounds both the symmetry check and the convergence
// test (the sweep stops once every off-diagonal entry is below tol);
// maxIter caps the number of sweeps. Used by
// represent.embedProcessors to turn a processor dissimilarity matrix
// into MDS coordinates (SPEC_FULL.md §4.2).
//
// Complexity: O(maxIter * n^3) time, O(n^2) space.
func EigenSym(m Matrix, tol float64, maxIter int) ([]float64, Matrix, error) {
	n := m.Rows()
	if n != m.Cols() {
		return nil, nil, ErrDimensionMismatch
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			aij, _ := m.At(i, j)
			aji, _ := m.At(j, i)
			if math.Abs(aij-aji) > tol {
				return nil, nil, ErrNotSymmetric
			}
		}
	}

	a := m.Clone()
	q, err := NewDense(n, n)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < n; i++ {
		_ = q.Set(i, i, 1.0)
	}

	converged := false

	for iter := 0; iter < maxIter; iter++ {
		p, qIdx, maxOff := 0, 1, 0.0

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				v, _ := a.At(i, j)
				if off := math.Abs(v); off > maxOff {
					maxOff, p, qIdx = off, i, j
				}
			}
		}

		if maxOff < tol {
			converged = true
			break
		}

		app, _ := a.At(p, p)
		aqq, _ := a.At(qIdx, qIdx)
		apq, _ := a.At(p, qIdx)

		theta := (aqq - app) / (2 * apq)
		t := math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
		c := 1.0 / math.Sqrt(t*t+1)
		s := t * c

		rotate(a, p, qIdx, c, s, n)
		rotateEigenvectors(q, p, qIdx, c, s, n)
	}

	if !converged {
		return nil, nil, ErrEigenFailed
	}

	eigvals := make([]float64, n)
	for i := 0; i < n; i++ {
		eigvals[i], _ = a.At(i, i)
	}

	return eigvals, q, nil
}

// rotate applies the Jacobi rotation (c, s) for pivot (p, q) to the
// working matrix a, zeroing a[p,q]/a[q,p].
func rotate(a Matrix, p, q int, c, s float64, n int) {
	app, _ := a.At(p, p)
	aqq, _ := a.At(q, q)
	apq, _ := a.At(p, q)

	newApp := c*c*app - 2*s*c*apq + s*s*aqq
	newAqq := s*s*app + 2*s*c*apq + c*c*aqq

	_ = a.Set(p, p, newApp)
	_ = a.Set(q, q, newAqq)
	_ = a.Set(p, q, 0)
	_ = a.Set(q, p, 0)

	for i := 0; i < n; i++ {
		if i == p || i == q {
			continue
		}

		aip, _ := a.At(i, p)
		aiq, _ := a.At(i, q)

		newIP := c*aip - s*aiq
		newIQ := s*aip + c*aiq

		_ = a.Set(i, p, newIP)
		_ = a.Set(p, i, newIP)
		_ = a.Set(i, q, newIQ)
		_ = a.Set(q, i, newIQ)
	}
}

// rotateEigenvectors accumulates the same rotation into the orthogonal
// eigenvector matrix q.
func rotateEigenvectors(q Matrix, p, qIdx int, c, s float64, n int) {
	for i := 0; i < n; i++ {
		qip, _ := q.At(i, p)
		qiq, _ := q.At(i, qIdx)

		newIP := c*qip - s*qiq
		newIQ := s*qip + c*qiq

		_ = q.Set(i, p, newIP)
		_ = q.Set(i, qIdx, newIQ)
	}
}
