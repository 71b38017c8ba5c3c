package represent

import (
	"errors"
	"math/rand/v2"

	"github.com/kpnflow/dse/mapping"
)

// Sentinel errors for representation construction and decoding.
var (
	// ErrEmptyPlatform indicates a representation was built over a platform
	// with no processors.
	ErrEmptyPlatform = errors.New("represent: platform has no processors")

	// ErrVectorLength indicates a vector's length does not match Dims().
	ErrVectorLength = errors.New("represent: vector length mismatch")

	// ErrSlotOutOfRange indicates a vector slot's value exceeds its
	// bound (the cardinality of processors or primitives available to it).
	ErrSlotOutOfRange = errors.New("represent: vector slot out of range")

	// ErrCrossoverWidth indicates a crossover width k exceeds the number of
	// process slots (spec.md §4.4.2: "k = crossover_rate must be ≤
	// |processes|").
	ErrCrossoverWidth = errors.New("represent: crossover width exceeds process slot count")
)

// Vector is a point in the mapping representation's integer lattice: one
// slot per process (a processor index) optionally followed by one slot
// per channel (a primitive index), per spec.md §3.
type Vector []int

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)

	return out
}

// Representation is the shared contract every representation variant
// implements (spec.md §4.2).
type Representation interface {
	// Dims returns the vector length: |processes| (+|channels| if this
	// representation includes channel slots).
	Dims() int

	// Bounds returns, per slot, the exclusive upper bound (slot values lie
	// in [0, Bounds()[i])).
	Bounds() []int

	// ToVector encodes a mapping as a vector.
	ToVector(m *mapping.Mapping) (Vector, error)

	// FromVector decodes a vector into a full mapping.
	FromVector(v Vector) (*mapping.Mapping, error)

	// Distance computes d(a, b).
	Distance(a, b Vector) float64

	// UniformFromBall samples up to count distinct lattice points within
	// radius of center under Distance, using rng for randomness.
	UniformFromBall(center Vector, radius float64, count int, rng *rand.Rand) []Vector

	// Crossover exchanges a contiguous slice of size k between a and b,
	// returning the two offspring.
	Crossover(a, b Vector, k int, rng *rand.Rand) (Vector, Vector, error)

	// Approximate snaps a real-valued point into the discrete feasible set.
	Approximate(x []float64) Vector

	// Canonical returns a unique representative of v's symmetry class, or v
	// itself unchanged if no platform symmetries are known.
	Canonical(v Vector) Vector
}
