package oracle

import (
	"fmt"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/trace"
	"github.com/kpnflow/dse/tracegraph"
)

// Result is a single mapping's evaluation, per spec.md §6's oracle output
// record.
type Result struct {
	ExecTime      uint64 // picoseconds
	StaticEnergy  float64
	DynamicEnergy float64
	Resources     map[string]int // processor type -> count of distinct processors used
}

// Simulator evaluates one fully-resolved mapping. TraceGraphSimulator is
// the in-repo reference implementation; spec.md §1 treats the actual
// discrete-event simulator as an external, opaque collaborator behind this
// same interface.
type Simulator interface {
	Simulate(m *mapping.Mapping) (Result, error)
}

// TraceGraphSimulator evaluates a mapping by building its trace graph and
// taking the critical path length as exec_time — the longest-path
// computation the spec defines as an equally valid alternative to full
// discrete-event simulation (spec.md §1).
type TraceGraphSimulator struct {
	KG         *kpn.Graph
	Platform   *platform.Platform
	GenFactory func() trace.Generator
	Policy     tracegraph.Policy
}

// Simulate implements Simulator.
func (s *TraceGraphSimulator) Simulate(m *mapping.Mapping) (Result, error) {
	em, err := elementMappingFor(m, s.Platform, s.KG)
	if err != nil {
		return Result{}, fmt.Errorf("TraceGraphSimulator.Simulate: %w", err)
	}

	tg, err := tracegraph.Build(s.KG, s.GenFactory(), em, s.Platform, s.Policy)
	if err != nil {
		return Result{}, fmt.Errorf("TraceGraphSimulator.Simulate: %w", err)
	}

	cp, err := tg.CriticalPath()
	if err != nil {
		return Result{}, fmt.Errorf("TraceGraphSimulator.Simulate: %w", err)
	}

	static, dynamic := s.energy(m, cp.Length)

	return Result{
		ExecTime:      cp.Length,
		StaticEnergy:  static,
		DynamicEnergy: dynamic,
		Resources:     s.resources(m),
	}, nil
}

// energy estimates static and dynamic energy from each mapped process's
// processor power model, treating every mapped processor as busy for the
// full critical-path duration — a coarse upper bound appropriate when no
// full simulator is wired in, since exact per-process busy time requires
// the external simulator's event trace (spec.md §1 Non-goals).
func (s *TraceGraphSimulator) energy(m *mapping.Mapping, execTimePicos uint64) (static, dynamic float64) {
	seconds := float64(execTimePicos) / 1e12

	for _, asg := range m.Processes {
		proc, err := s.Platform.Processor(asg.Processor)
		if err != nil || !proc.HasPower {
			continue
		}

		static += proc.StaticPowerW * seconds
		dynamic += proc.DynamicPowerPerCycleW * seconds
	}

	return static, dynamic
}

func (s *TraceGraphSimulator) resources(m *mapping.Mapping) map[string]int {
	seen := make(map[string]bool)
	out := make(map[string]int)

	for _, asg := range m.Processes {
		if seen[asg.Processor] {
			continue
		}
		seen[asg.Processor] = true

		proc, err := s.Platform.Processor(asg.Processor)
		if err != nil {
			continue
		}

		out[proc.Type]++
	}

	return out
}

// elementMappingFor decomposes a resolved mapping into the
// process/channel group lists tracegraph.Build needs: a process's groups
// are every processor-group its chosen processor belongs to, and a
// channel's groups are its chosen primitive's single group — the trace
// graph's slowest-resource policy then picks conservatively within
// whichever of those groups actually applies.
func elementMappingFor(m *mapping.Mapping, plat *platform.Platform, kg *kpn.Graph) (tracegraph.ElementMapping, error) {
	em := tracegraph.ElementMapping{
		ProcessGroups: make(map[string][]int, len(kg.Processes())),
		ChannelGroups: make(map[string][]int, len(kg.Channels())),
	}

	for _, p := range kg.Processes() {
		asg, ok := m.Processes[p]
		if !ok {
			return tracegraph.ElementMapping{}, fmt.Errorf("elementMappingFor: process %q: %w", p, mapping.ErrProcessNotMapped)
		}

		proc, err := plat.Processor(asg.Processor)
		if err != nil {
			return tracegraph.ElementMapping{}, fmt.Errorf("elementMappingFor: process %q: %w", p, err)
		}

		em.ProcessGroups[p] = proc.Groups
	}

	for _, c := range kg.Channels() {
		asg, ok := m.Channels[c]
		if !ok {
			return tracegraph.ElementMapping{}, fmt.Errorf("elementMappingFor: channel %q: %w", c, mapping.ErrChannelNotMapped)
		}

		prim, err := plat.Primitive(asg.Primitive)
		if err != nil {
			return tracegraph.ElementMapping{}, fmt.Errorf("elementMappingFor: channel %q: %w", c, err)
		}

		em.ChannelGroups[c] = []int{prim.PrimitiveGroup}
	}

	return em, nil
}
