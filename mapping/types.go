// Package mapping defines the Mapping type: a partial or total function
// from KPN processes to (scheduler, processor, priority) triples, and from
// channels to (primitive, capacity) pairs, together with the invariant
// checks spec.md §3 requires of a valid mapping.
package mapping

import (
	"errors"
	"fmt"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/platform"
)

// Sentinel errors for mapping construction and validation.
var (
	// ErrProcessNotMapped indicates an operation required a process
	// mapping that is absent.
	ErrProcessNotMapped = errors.New("mapping: process not mapped")

	// ErrChannelNotMapped indicates an operation required a channel
	// mapping that is absent.
	ErrChannelNotMapped = errors.New("mapping: channel not mapped")

	// ErrProcessorNotInScheduler indicates a process's chosen processor
	// does not belong to its chosen scheduler's processor set.
	ErrProcessorNotInScheduler = errors.New("mapping: processor not bound to scheduler")

	// ErrPrimitiveNotSuitable indicates a channel's chosen primitive does
	// not support the (source, sinks) processor tuple induced by the
	// process mapping.
	ErrPrimitiveNotSuitable = errors.New("mapping: primitive not suitable for induced processor tuple")
)

// ProcessAssignment is where one process is mapped: which scheduler, which
// processor (which must belong to that scheduler), and a scheduling
// priority.
type ProcessAssignment struct {
	Scheduler string
	Processor string
	Priority  int
}

// ChannelAssignment is where one channel is mapped: which communication
// primitive, and what buffer capacity (0 means unbounded/unspecified).
type ChannelAssignment struct {
	Primitive string
	Capacity  uint64
}

// Mapping is a partial or total function from processes/channels to their
// assignments.
type Mapping struct {
	Processes map[string]ProcessAssignment
	Channels  map[string]ChannelAssignment
}

// New returns an empty Mapping ready to be populated.
func New() *Mapping {
	return &Mapping{
		Processes: make(map[string]ProcessAssignment),
		Channels:  make(map[string]ChannelAssignment),
	}
}

// Clone returns a deep copy safe to mutate independently of m.
func (m *Mapping) Clone() *Mapping {
	out := New()

	for k, v := range m.Processes {
		out.Processes[k] = v
	}

	for k, v := range m.Channels {
		out.Channels[k] = v
	}

	return out
}

// IsTotal reports whether every process in g and every channel in g has an
// assignment.
func (m *Mapping) IsTotal(g *kpn.Graph) bool {
	for _, p := range g.Processes() {
		if _, ok := m.Processes[p]; !ok {
			return false
		}
	}

	for _, c := range g.Channels() {
		if _, ok := m.Channels[c]; !ok {
			return false
		}
	}

	return true
}

// Validate checks both invariants from spec.md §3:
//
//   - every mapped process's processor belongs to its scheduler's
//     processor set;
//   - every mapped channel's primitive is suitable for the
//     (source-processor, sink-processors) tuple induced by the process
//     mapping.
//
// Only entries actually present in m are checked — Validate accepts
// partial mappings.
func (m *Mapping) Validate(plat *platform.Platform, g *kpn.Graph) error {
	for procName, asg := range m.Processes {
		if err := validateProcessAssignment(plat, procName, asg); err != nil {
			return err
		}
	}

	for chName, asg := range m.Channels {
		if err := m.validateChannelAssignment(plat, g, chName, asg); err != nil {
			return err
		}
	}

	return nil
}

func validateProcessAssignment(plat *platform.Platform, procName string, asg ProcessAssignment) error {
	sched, err := plat.Scheduler(asg.Scheduler)
	if err != nil {
		return fmt.Errorf("Validate: process %q: %w", procName, err)
	}

	proc, err := plat.Processor(asg.Processor)
	if err != nil {
		return fmt.Errorf("Validate: process %q: %w", procName, err)
	}

	if !sched.Contains(proc) {
		return fmt.Errorf("Validate: process %q: %w", procName, ErrProcessorNotInScheduler)
	}

	return nil
}

func (m *Mapping) validateChannelAssignment(plat *platform.Platform, g *kpn.Graph, chName string, asg ChannelAssignment) error {
	ch, err := g.Channel(chName)
	if err != nil {
		return fmt.Errorf("Validate: channel %q: %w", chName, err)
	}

	prim, err := plat.Primitive(asg.Primitive)
	if err != nil {
		return fmt.Errorf("Validate: channel %q: %w", chName, err)
	}

	srcProc, ok := m.Processes[ch.Source]
	if !ok {
		// Source not yet mapped: nothing to validate against yet.
		return nil
	}

	src, err := plat.Processor(srcProc.Processor)
	if err != nil {
		return fmt.Errorf("Validate: channel %q source: %w", chName, err)
	}

	sinks := make([]*platform.Processor, 0, len(ch.Sinks))

	for _, sinkName := range ch.Sinks {
		sinkAsg, ok := m.Processes[sinkName]
		if !ok {
			// A sink not yet mapped: suitability cannot be fully checked
			// yet, so skip (this is a partial mapping).
			return nil
		}

		sink, err := plat.Processor(sinkAsg.Processor)
		if err != nil {
			return fmt.Errorf("Validate: channel %q sink: %w", chName, err)
		}

		sinks = append(sinks, sink)
	}

	if !prim.Suitable(src, sinks) {
		return fmt.Errorf("Validate: channel %q: %w", chName, ErrPrimitiveNotSuitable)
	}

	return nil
}

// ToList returns m as an integer tuple, built by resolving each
// process/channel (in the caller-supplied canonical order) to an integer
// index via the supplied resolvers. includeChannels controls whether
// channel slots are appended. The oracle's cache does not use this tuple;
// it keys by names (see oracle.Cache).
func (m *Mapping) ToList(processOrder []string, processorIndex map[string]int, channelOrder []string, primitiveIndex map[string]int, includeChannels bool) ([]int, error) {
	out := make([]int, 0, len(processOrder)+len(channelOrder))

	for _, p := range processOrder {
		asg, ok := m.Processes[p]
		if !ok {
			return nil, fmt.Errorf("ToList: process %q: %w", p, ErrProcessNotMapped)
		}

		idx, ok := processorIndex[asg.Processor]
		if !ok {
			return nil, fmt.Errorf("ToList: process %q: %w", p, ErrProcessorNotInScheduler)
		}

		out = append(out, idx)
	}

	if !includeChannels {
		return out, nil
	}

	for _, c := range channelOrder {
		asg, ok := m.Channels[c]
		if !ok {
			return nil, fmt.Errorf("ToList: channel %q: %w", c, ErrChannelNotMapped)
		}

		idx, ok := primitiveIndex[asg.Primitive]
		if !ok {
			return nil, fmt.Errorf("ToList: channel %q: %w", c, ErrPrimitiveNotSuitable)
		}

		out = append(out, idx)
	}

	return out, nil
}
