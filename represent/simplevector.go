package represent

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
)

// SimpleVector is the direct index encoding: one slot per process (in
// canonical name order) giving a processor index, optionally followed by
// one slot per channel giving a primitive index. Distance is the L^p norm
// with configurable P (default 2, Euclidean).
type SimpleVector struct {
	plat *platform.Platform
	kg   *kpn.Graph

	processOrder []string
	channelOrder []string

	processors []*platform.Processor
	primitives []*platform.Primitive

	procIndex map[string]int
	primIndex map[string]int

	includeChannels bool
	p               float64
	periodic        bool
}

// NewSimpleVector builds a SimpleVector over plat and kg. p is the L^p
// norm's exponent (2 for Euclidean, 1 for Manhattan); periodic toggles
// whether UniformFromBall wraps each slot's domain instead of clamping at
// its edges.
func NewSimpleVector(plat *platform.Platform, kg *kpn.Graph, includeChannels bool, p float64, periodic bool) (*SimpleVector, error) {
	processors := plat.Processors()
	if len(processors) == 0 {
		return nil, ErrEmptyPlatform
	}

	primitives := plat.Primitives()

	procIndex := make(map[string]int, len(processors))
	for i, pr := range processors {
		procIndex[pr.Name] = i
	}

	primIndex := make(map[string]int, len(primitives))
	for i, pr := range primitives {
		primIndex[pr.Name] = i
	}

	if p <= 0 {
		p = 2
	}

	return &SimpleVector{
		plat:            plat,
		kg:              kg,
		processOrder:    kg.Processes(),
		channelOrder:    kg.Channels(),
		processors:      processors,
		primitives:      primitives,
		procIndex:       procIndex,
		primIndex:       primIndex,
		includeChannels: includeChannels,
		p:               p,
		periodic:        periodic,
	}, nil
}

// Dims implements Representation.
func (sv *SimpleVector) Dims() int {
	if sv.includeChannels {
		return len(sv.processOrder) + len(sv.channelOrder)
	}

	return len(sv.processOrder)
}

// Bounds implements Representation.
func (sv *SimpleVector) Bounds() []int {
	out := make([]int, 0, sv.Dims())

	for range sv.processOrder {
		out = append(out, len(sv.processors))
	}

	if sv.includeChannels {
		for range sv.channelOrder {
			out = append(out, len(sv.primitives))
		}
	}

	return out
}

// ToVector implements Representation.
func (sv *SimpleVector) ToVector(m *mapping.Mapping) (Vector, error) {
	v, err := m.ToList(sv.processOrder, sv.procIndex, sv.channelOrder, sv.primIndex, sv.includeChannels)
	if err != nil {
		return nil, fmt.Errorf("SimpleVector.ToVector: %w", err)
	}

	return Vector(v), nil
}

// FromVector implements Representation. The scheduler for each process is
// resolved as the first (name-sorted) scheduler bound to the chosen
// processor — the vector itself only carries a processor index, per
// spec.md §3's representation contract, so scheduler/priority are derived
// rather than encoded.
func (sv *SimpleVector) FromVector(v Vector) (*mapping.Mapping, error) {
	if len(v) != sv.Dims() {
		return nil, fmt.Errorf("SimpleVector.FromVector: want %d slots, got %d: %w", sv.Dims(), len(v), ErrVectorLength)
	}

	m := mapping.New()

	for i, procName := range sv.processOrder {
		idx := v[i]
		if idx < 0 || idx >= len(sv.processors) {
			return nil, fmt.Errorf("SimpleVector.FromVector: process %q slot %d: %w", procName, idx, ErrSlotOutOfRange)
		}

		proc := sv.processors[idx]

		sched, err := sv.schedulerFor(proc)
		if err != nil {
			return nil, fmt.Errorf("SimpleVector.FromVector: process %q: %w", procName, err)
		}

		m.Processes[procName] = mapping.ProcessAssignment{Scheduler: sched.Name, Processor: proc.Name}
	}

	if sv.includeChannels {
		base := len(sv.processOrder)

		for i, chName := range sv.channelOrder {
			idx := v[base+i]
			if idx < 0 || idx >= len(sv.primitives) {
				return nil, fmt.Errorf("SimpleVector.FromVector: channel %q slot %d: %w", chName, idx, ErrSlotOutOfRange)
			}

			m.Channels[chName] = mapping.ChannelAssignment{Primitive: sv.primitives[idx].Name}
		}
	}

	return m, nil
}

func (sv *SimpleVector) schedulerFor(proc *platform.Processor) (*platform.Scheduler, error) {
	for _, sched := range sv.plat.Schedulers() {
		if sched.Contains(proc) {
			return sched, nil
		}
	}

	return nil, platform.ErrSchedulerNotFound
}

// Distance implements Representation as the L^p norm over slot
// differences.
func (sv *SimpleVector) Distance(a, b Vector) float64 {
	sum := 0.0

	for i := range a {
		d := math.Abs(float64(a[i] - b[i]))
		sum += math.Pow(d, sv.p)
	}

	return math.Pow(sum, 1/sv.p)
}

// UniformFromBall samples up to count distinct lattice points within
// radius of center, by repeated per-slot random perturbation followed by
// rejection sampling against Distance — a deterministic-per-call-sequence
// scan driven entirely by rng, in the style of a seeded local search
// neighborhood scan.
func (sv *SimpleVector) UniformFromBall(center Vector, radius float64, count int, rng *rand.Rand) []Vector {
	if count <= 0 {
		return nil
	}

	bounds := sv.Bounds()
	seen := map[string]bool{key(center): true}
	out := make([]Vector, 0, count)

	const maxAttempts = 64

	for len(out) < count {
		progressed := false

		for attempt := 0; attempt < maxAttempts && len(out) < count; attempt++ {
			cand := sv.perturb(center, radius, bounds, rng)

			if sv.Distance(center, cand) > radius {
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

func (sv *SimpleVector) perturb(center Vector, radius float64, bounds []int, rng *rand.Rand) Vector {
	cand := center.Clone()
	r := int(math.Ceil(radius))
	if r < 1 {
		r = 1
	}

	for i := range cand {
		delta := rng.IntN(2*r+1) - r
		next := cand[i] + delta

		if sv.periodic {
			next = ((next % bounds[i]) + bounds[i]) % bounds[i]
		} else {
			if next < 0 {
				next = 0
			}
			if next >= bounds[i] {
				next = bounds[i] - 1
			}
		}

		cand[i] = next
	}

	return cand
}

// Crossover implements Representation: a single contiguous run of k
// process slots is swapped between a and b, starting at a position chosen
// uniformly by rng. Channel slots, if present, are left untouched — a
// crossover width is defined over processes per spec.md §4.4.2.
func (sv *SimpleVector) Crossover(a, b Vector, k int, rng *rand.Rand) (Vector, Vector, error) {
	nProc := len(sv.processOrder)
	if k <= 0 || k > nProc {
		return nil, nil, fmt.Errorf("Crossover: k=%d, |processes|=%d: %w", k, nProc, ErrCrossoverWidth)
	}

	start := 0
	if nProc-k > 0 {
		start = rng.IntN(nProc - k + 1)
	}

	outA, outB := a.Clone(), b.Clone()
	for i := start; i < start+k; i++ {
		outA[i], outB[i] = outB[i], outA[i]
	}

	return outA, outB, nil
}

// Approximate implements Representation: each slot is rounded to the
// nearest integer and clamped to its bound.
func (sv *SimpleVector) Approximate(x []float64) Vector {
	bounds := sv.Bounds()
	out := make(Vector, len(x))

	for i, xi := range x {
		n := int(math.Round(xi))

		if n < 0 {
			n = 0
		}
		if n >= bounds[i] {
			n = bounds[i] - 1
		}

		out[i] = n
	}

	return out
}

// Canonical implements Representation. SimpleVector does not model
// platform symmetries, so it returns v unchanged.
func (sv *SimpleVector) Canonical(v Vector) Vector {
	return v.Clone()
}

func key(v Vector) string {
	b := make([]byte, 0, len(v)*4)

	for _, x := range v {
		b = append(b, []byte(fmt.Sprintf("%d,", x))...)
	}

	return string(b)
}
