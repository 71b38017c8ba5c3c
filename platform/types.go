// Package platform defines the in-memory model of a heterogeneous hardware
// platform: processors (grouped by integer processor-group id), schedulers
// bound to a subset of processors, and communication primitives advertising
// which (source, sinks) processor tuples they support.
//
// Platform values are built once (via Builder) and treated as read-only
// afterwards — every search-engine worker shares the same *Platform without
// locking, the same way lvlath's core.Graph is built once and cloned rather
// than mutated concurrently.
package platform

import (
	"errors"
	"sort"
)

// Sentinel errors for platform construction and lookup.
var (
	// ErrEmptyName indicates a processor, scheduler, or primitive was given
	// the empty string as a name.
	ErrEmptyName = errors.New("platform: name is empty")

	// ErrDuplicateName indicates two processors, schedulers, or primitives
	// share a name.
	ErrDuplicateName = errors.New("platform: duplicate name")

	// ErrProcessorNotFound indicates a reference to an unknown processor.
	ErrProcessorNotFound = errors.New("platform: processor not found")

	// ErrSchedulerNotFound indicates a reference to an unknown scheduler.
	ErrSchedulerNotFound = errors.New("platform: scheduler not found")

	// ErrPrimitiveNotFound indicates a reference to an unknown primitive.
	ErrPrimitiveNotFound = errors.New("platform: primitive not found")

	// ErrNoPower indicates an energy objective was requested against a
	// processor with no power model attached.
	ErrNoPower = errors.New("platform: processor has no power model")
)

// Processor is one compute resource: a name, a type tag (shared by
// processors that run the same trace-generator processor-type stream), a
// clock frequency, an optional power model, and load/store context-switch
// costs in cycles.
type Processor struct {
	Name string
	Type string

	FreqHz float64

	// HasPower is false when no power model was supplied; Energy-objective
	// search must be demoted to a warning per spec.md §7, not fail outright.
	HasPower              bool
	StaticPowerW          float64
	DynamicPowerPerCycleW float64

	LoadCycles  uint64
	StoreCycles uint64

	// Groups lists every processor-group id this processor belongs to.
	Groups []int
}

// Ticks converts a cycle count into elapsed ticks (picoseconds) for this
// processor's frequency. A fractional tick count is truncated, except that
// any positive cycle count costs at least one tick; zero cycles cost zero
// ticks.
func (p *Processor) Ticks(cycles uint64) uint64 {
	if cycles == 0 || p.FreqHz <= 0 {
		return 0
	}

	const picosPerSecond = 1e12

	ticks := uint64(float64(cycles) / p.FreqHz * picosPerSecond)
	if ticks == 0 {
		ticks = 1
	}

	return ticks
}

// Scheduler binds a scheduling policy name to a fixed subset of processors.
type Scheduler struct {
	Name       string
	Policy     string
	Processors []*Processor
}

// Contains reports whether proc is bound to this scheduler.
func (s *Scheduler) Contains(proc *Processor) bool {
	for _, p := range s.Processors {
		if p == proc {
			return true
		}
	}

	return false
}

// Primitive is a communication primitive: it advertises, via Suitable, which
// (source-processor, sink-processors) tuples it supports, plus fixed
// read/write costs in ticks and the processor-group-like PrimitiveGroup id
// used by the trace graph's slowest-primitive policy (spec.md §4.1).
type Primitive struct {
	Name           string
	PrimitiveGroup int
	ReadCostTicks  uint64
	WriteCostTicks uint64

	// suitable, when non-nil, restricts which (source, sinks) tuples this
	// primitive supports. A nil suitable means "supports everything" (used
	// by tests and by trivial single-primitive platforms).
	suitable func(src *Processor, sinks []*Processor) bool
}

// NewPrimitive builds a Primitive. suitable may be nil to accept every
// (source, sinks) tuple.
func NewPrimitive(name string, group int, readCost, writeCost uint64, suitable func(src *Processor, sinks []*Processor) bool) *Primitive {
	return &Primitive{
		Name:           name,
		PrimitiveGroup: group,
		ReadCostTicks:  readCost,
		WriteCostTicks: writeCost,
		suitable:       suitable,
	}
}

// Suitable reports whether this primitive can carry a channel whose source
// maps to src and whose sinks map to sinks.
func (pr *Primitive) Suitable(src *Processor, sinks []*Processor) bool {
	if pr.suitable == nil {
		return true
	}

	return pr.suitable(src, sinks)
}

// Platform is the immutable collection of processors, schedulers, and
// primitives assembled by Builder.Build.
type Platform struct {
	processors map[string]*Processor
	schedulers map[string]*Scheduler
	primitives map[string]*Primitive

	// processorGroups maps a processor-group id to the processors tagged
	// with it, precomputed at build time for O(1) lookup by the trace
	// graph's slowest-processor policy.
	processorGroups map[int][]*Processor

	// primitiveGroups maps a primitive-group id to the primitives tagged
	// with it.
	primitiveGroups map[int][]*Primitive
}

// Processor returns the named processor, or (nil, ErrProcessorNotFound).
func (p *Platform) Processor(name string) (*Processor, error) {
	proc, ok := p.processors[name]
	if !ok {
		return nil, ErrProcessorNotFound
	}

	return proc, nil
}

// Scheduler returns the named scheduler, or (nil, ErrSchedulerNotFound).
func (p *Platform) Scheduler(name string) (*Scheduler, error) {
	sch, ok := p.schedulers[name]
	if !ok {
		return nil, ErrSchedulerNotFound
	}

	return sch, nil
}

// Primitive returns the named primitive, or (nil, ErrPrimitiveNotFound).
func (p *Platform) Primitive(name string) (*Primitive, error) {
	pr, ok := p.primitives[name]
	if !ok {
		return nil, ErrPrimitiveNotFound
	}

	return pr, nil
}

// Processors returns every processor in the platform in a stable,
// name-sorted order.
func (p *Platform) Processors() []*Processor {
	out := make([]*Processor, 0, len(p.processors))
	for _, name := range p.sortedProcessorNames() {
		out = append(out, p.processors[name])
	}

	return out
}

// Schedulers returns every scheduler in the platform in a stable,
// name-sorted order.
func (p *Platform) Schedulers() []*Scheduler {
	names := make([]string, 0, len(p.schedulers))
	for name := range p.schedulers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Scheduler, 0, len(names))
	for _, name := range names {
		out = append(out, p.schedulers[name])
	}

	return out
}

// Primitives returns every primitive in the platform in a stable,
// name-sorted order.
func (p *Platform) Primitives() []*Primitive {
	names := make([]string, 0, len(p.primitives))
	for name := range p.primitives {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Primitive, 0, len(names))
	for _, name := range names {
		out = append(out, p.primitives[name])
	}

	return out
}

// ProcessorGroup returns the processors tagged with the given group id, in
// platform-build order (not re-sorted: the trace graph's tie-break on
// lowest frequency operates over this slice directly).
func (p *Platform) ProcessorGroup(id int) []*Processor {
	return p.processorGroups[id]
}

// PrimitiveGroup returns the primitives tagged with the given group id.
func (p *Platform) PrimitiveGroup(id int) []*Primitive {
	return p.primitiveGroups[id]
}

func (p *Platform) sortedProcessorNames() []string {
	names := make([]string, 0, len(p.processors))
	for name := range p.processors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
