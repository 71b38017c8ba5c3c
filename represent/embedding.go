package represent

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/matrix"
	"github.com/kpnflow/dse/platform"
)

// MetricEmbedding layers a classical multidimensional-scaling embedding of
// the platform's processors on top of SimpleVector's discrete encoding:
// ToVector/FromVector/Crossover/Approximate/Canonical behave exactly as
// SimpleVector (the feasible set is the same integer lattice), but
// Distance compares each process slot's two candidate processors by their
// embedded coordinates rather than by raw index difference, so processors
// that are numerically adjacent but operationally dissimilar (e.g. very
// different clock frequencies) are correctly scored as far apart. No
// engine and no part of cmd/kpnctl constructs one; the CLI always builds a
// SimpleVector.
type MetricEmbedding struct {
	*SimpleVector

	// coords[i] is the embedded coordinate of sv.processors[i].
	coords [][]float64
}

// NewMetricEmbedding builds a MetricEmbedding over plat and kg. dims is the
// embedding dimensionality (clamped to at most |processors|-1); a
// processor's embedded coordinates are derived from classical MDS over a
// pairwise-dissimilarity matrix that compares frequency (normalized to the
// platform's fastest processor) and processor type.
func NewMetricEmbedding(plat *platform.Platform, kg *kpn.Graph, includeChannels bool, dims int, periodic bool) (*MetricEmbedding, error) {
	sv, err := NewSimpleVector(plat, kg, includeChannels, 2, periodic)
	if err != nil {
		return nil, err
	}

	coords, err := embedProcessors(sv.processors, dims)
	if err != nil {
		return nil, fmt.Errorf("NewMetricEmbedding: %w", err)
	}

	return &MetricEmbedding{SimpleVector: sv, coords: coords}, nil
}

// embedProcessors runs classical MDS over the processors' pairwise
// dissimilarity matrix and returns each processor's coordinate in the
// resulting embedding space.
func embedProcessors(processors []*platform.Processor, dims int) ([][]float64, error) {
	n := len(processors)
	if n == 1 {
		return [][]float64{{0}}, nil
	}

	if dims > n-1 {
		dims = n - 1
	}
	if dims < 1 {
		dims = 1
	}

	dissim, err := dissimilarityMatrix(processors)
	if err != nil {
		return nil, err
	}

	b, err := doubleCenterSquared(dissim, n)
	if err != nil {
		return nil, err
	}

	eigvals, eigvecs, err := matrix.EigenSym(b, 1e-9, 100)
	if err != nil {
		return nil, fmt.Errorf("embedProcessors: eigendecomposition: %w", err)
	}

	order := topEigenIndices(eigvals, dims)

	coords := make([][]float64, n)
	for i := 0; i < n; i++ {
		coords[i] = make([]float64, len(order))

		for d, idx := range order {
			lambda := eigvals[idx]
			if lambda < 0 {
				lambda = 0
			}

			v, err := eigvecs.At(i, idx)
			if err != nil {
				return nil, fmt.Errorf("embedProcessors: eigenvector(%d,%d): %w", i, idx, err)
			}

			coords[i][d] = v * math.Sqrt(lambda)
		}
	}

	return coords, nil
}

// dissimilarityMatrix builds the n×n processor dissimilarity matrix:
// normalized frequency difference plus a fixed penalty for a type
// mismatch, so same-type processors at similar frequencies embed close
// together and cross-type processors stay apart regardless of frequency.
func dissimilarityMatrix(processors []*platform.Processor) (matrix.Matrix, error) {
	n := len(processors)

	maxFreq := 0.0
	for _, p := range processors {
		if p.FreqHz > maxFreq {
			maxFreq = p.FreqHz
		}
	}
	if maxFreq == 0 {
		maxFreq = 1
	}

	const typeMismatchPenalty = 1.0

	d, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			freqDiff := math.Abs(processors[i].FreqHz-processors[j].FreqHz) / maxFreq

			dissim := freqDiff
			if processors[i].Type != processors[j].Type {
				dissim += typeMismatchPenalty
			}

			if err := d.Set(i, j, dissim); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// doubleCenterSquared computes B = -1/2 J D² J, the classical-MDS input
// matrix, where J = I - (1/n) ones(n,n).
func doubleCenterSquared(d matrix.Matrix, n int) (matrix.Matrix, error) {
	sq, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, err := d.At(i, j)
			if err != nil {
				return nil, err
			}

			if err := sq.Set(i, j, v*v); err != nil {
				return nil, err
			}
		}
	}

	rowMean := make([]float64, n)
	grandMean := 0.0

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, _ := sq.At(i, j)
			rowMean[i] += v
			grandMean += v
		}

		rowMean[i] /= float64(n)
	}

	grandMean /= float64(n * n)

	b, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, _ := sq.At(i, j)

			centered := -0.5 * (v - rowMean[i] - rowMean[j] + grandMean)
			if err := b.Set(i, j, centered); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

// topEigenIndices returns the indices of the k largest eigenvalues, in
// descending order.
func topEigenIndices(eigvals []float64, k int) []int {
	idx := make([]int, len(eigvals))
	for i := range idx {
		idx[i] = i
	}

	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			if eigvals[idx[j]] > eigvals[idx[i]] {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
	}

	if k > len(idx) {
		k = len(idx)
	}

	return idx[:k]
}

// Distance overrides SimpleVector's raw L^p norm: for each process slot,
// the two candidate processors' embedded coordinates are compared by
// Euclidean distance; channel slots (if present) fall back to raw index
// difference, since no primitive embedding is built.
func (me *MetricEmbedding) Distance(a, b Vector) float64 {
	sum := 0.0
	nProc := len(me.processOrder)

	for i := 0; i < nProc && i < len(a); i++ {
		ca, cb := me.coords[a[i]], me.coords[b[i]]

		d2 := 0.0
		for k := range ca {
			diff := ca[k] - cb[k]
			d2 += diff * diff
		}

		sum += d2
	}

	for i := nProc; i < len(a); i++ {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}

	return math.Sqrt(sum)
}

// UniformFromBall samples using the embedded Distance in place of
// SimpleVector's raw L^p norm, otherwise following the same perturb-and-
// reject scan.
func (me *MetricEmbedding) UniformFromBall(center Vector, radius float64, count int, rng *rand.Rand) []Vector {
	if count <= 0 {
		return nil
	}

	bounds := me.Bounds()
	seen := map[string]bool{key(center): true}
	out := make([]Vector, 0, count)

	const maxAttempts = 64

	for len(out) < count {
		progressed := false

		for attempt := 0; attempt < maxAttempts && len(out) < count; attempt++ {
			cand := me.perturb(center, radius, bounds, rng)

			if me.Distance(center, cand) > radius {
				continue
			}

			k := key(cand)
			if seen[k] {
				continue
			}

			seen[k] = true
			out = append(out, cand)
			progressed = true
		}

		if !progressed {
			break
		}
	}

	return out
}

var _ Representation = (*SimpleVector)(nil)
var _ Representation = (*MetricEmbedding)(nil)
