// random.go - RandomMapper: a from-scratch, constraint-respecting random
// mapping generator (spec.md §4.5).
//
// Canonical model:
//   - For each process (canonical, sorted order): pick uniformly among the
//     platform's non-empty schedulers, then uniformly among that
//     scheduler's processors; assign a random scheduling priority.
//   - For each channel (canonical, sorted order): resolve the induced
//     (source, sinks) processor tuple from the process assignments made
//     above, then pick uniformly among the primitives Suitable for that
//     tuple; fail with ErrNoSuitablePrimitive if none qualify.
//   - resourceFirst biases the processor pick toward core types already
//     used by an earlier process, to minimize the distinct resource count.
//
// Determinism: given the same *rand.Rand stream and the same platform/KPN,
// RandomMapper is deterministic — processes and channels are always
// visited in their canonical sorted order.
package generate

import (
	"fmt"
	"math/rand/v2"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
)

// maxPriority bounds the random scheduling priority RandomMapper assigns a
// process; spec.md leaves the priority domain unspecified beyond "a random
// priority", so a small fixed range keeps priorities meaningful without
// implying an unstated scheduler semantics.
const maxPriority = 16

// resourceFirstWeight is the relative sampling weight given to a processor
// whose type has already been used by another process, versus 1 for an
// unused type — biasing RandomMapper's resourceFirst mode toward reusing
// core types already committed to, without ever excluding a fresh type.
const resourceFirstWeight = 8.0

// RandomMapper builds a total mapping from scratch over every process and
// channel in kg. If resourceFirst is true, processor choice is biased
// toward core types already used elsewhere in the mapping.
func RandomMapper(plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand, resourceFirst bool) (*mapping.Mapping, error) {
	m := mapping.New()

	proc := RandomProcStage{ResourceFirst: resourceFirst}
	if err := proc.AssignProcesses(m, plat, kg, rng); err != nil {
		return nil, fmt.Errorf("RandomMapper: %w", err)
	}

	com := RandomComStage{}
	if err := com.AssignChannels(m, plat, kg, rng); err != nil {
		return nil, fmt.Errorf("RandomMapper: %w", err)
	}

	return m, nil
}

// RandomProcStage is the "Random" process-assignment stage: it assigns
// every process in kg that m does not already map, leaving existing
// assignments untouched — used standalone by RandomMapper and as the
// completion stage inside PartialMapper.
type RandomProcStage struct {
	ResourceFirst bool
}

// AssignProcesses implements ProcStage.
func (s RandomProcStage) AssignProcesses(m *mapping.Mapping, plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand) error {
	schedulers := nonEmptySchedulers(plat)
	if len(schedulers) == 0 {
		return ErrNoSchedulers
	}

	usedTypes := make(map[string]bool)
	for _, asg := range m.Processes {
		if proc, err := plat.Processor(asg.Processor); err == nil {
			usedTypes[proc.Type] = true
		}
	}

	for _, name := range kg.Processes() {
		if _, ok := m.Processes[name]; ok {
			continue
		}

		sched := schedulers[rng.IntN(len(schedulers))]
		proc := pickProcessor(sched.Processors, usedTypes, s.ResourceFirst, rng)
		usedTypes[proc.Type] = true

		m.Processes[name] = mapping.ProcessAssignment{
			Scheduler: sched.Name,
			Processor: proc.Name,
			Priority:  rng.IntN(maxPriority),
		}
	}

	return nil
}

// RandomComStage is the "Random" channel-primitive stage: it assigns every
// channel in kg that m does not already map, given that both endpoints'
// processes are already mapped.
type RandomComStage struct{}

// AssignChannels implements ComStage.
func (s RandomComStage) AssignChannels(m *mapping.Mapping, plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand) error {
	for _, name := range kg.Channels() {
		if _, ok := m.Channels[name]; ok {
			continue
		}

		ch, err := kg.Channel(name)
		if err != nil {
			return fmt.Errorf("RandomComStage: %w", err)
		}

		src, sinks, err := endpointProcessors(m, plat, ch)
		if err != nil {
			return fmt.Errorf("RandomComStage: channel %q: %w", name, err)
		}

		suitable := suitablePrimitives(plat, src, sinks)
		if len(suitable) == 0 {
			return fmt.Errorf("RandomComStage: channel %q: %w", name, ErrNoSuitablePrimitive)
		}

		prim := suitable[rng.IntN(len(suitable))]
		m.Channels[name] = mapping.ChannelAssignment{Primitive: prim.Name}
	}

	return nil
}

func endpointProcessors(m *mapping.Mapping, plat *platform.Platform, ch *kpn.Channel) (*platform.Processor, []*platform.Processor, error) {
	srcAsg, ok := m.Processes[ch.Source]
	if !ok {
		return nil, nil, fmt.Errorf("source %q: %w", ch.Source, ErrProcessMissingAssignment)
	}

	src, err := plat.Processor(srcAsg.Processor)
	if err != nil {
		return nil, nil, err
	}

	sinks := make([]*platform.Processor, 0, len(ch.Sinks))
	for _, sinkName := range ch.Sinks {
		sinkAsg, ok := m.Processes[sinkName]
		if !ok {
			return nil, nil, fmt.Errorf("sink %q: %w", sinkName, ErrProcessMissingAssignment)
		}

		sink, err := plat.Processor(sinkAsg.Processor)
		if err != nil {
			return nil, nil, err
		}

		sinks = append(sinks, sink)
	}

	return src, sinks, nil
}

func suitablePrimitives(plat *platform.Platform, src *platform.Processor, sinks []*platform.Processor) []*platform.Primitive {
	out := make([]*platform.Primitive, 0)

	for _, prim := range plat.Primitives() {
		if prim.Suitable(src, sinks) {
			out = append(out, prim)
		}
	}

	return out
}

func nonEmptySchedulers(plat *platform.Platform) []*platform.Scheduler {
	out := make([]*platform.Scheduler, 0)

	for _, sched := range plat.Schedulers() {
		if len(sched.Processors) > 0 {
			out = append(out, sched)
		}
	}

	return out
}

// pickProcessor samples one processor from candidates, weighting toward
// processors whose type is already in usedTypes by resourceFirstWeight
// when resourceFirst is set, and uniformly otherwise.
func pickProcessor(candidates []*platform.Processor, usedTypes map[string]bool, resourceFirst bool, rng *rand.Rand) *platform.Processor {
	if !resourceFirst || len(candidates) == 1 {
		return candidates[rng.IntN(len(candidates))]
	}

	weights := make([]float64, len(candidates))
	total := 0.0

	for i, proc := range candidates {
		w := 1.0
		if usedTypes[proc.Type] {
			w = resourceFirstWeight
		}
		weights[i] = w
		total += w
	}

	draw := rng.Float64() * total
	acc := 0.0

	for i, w := range weights {
		acc += w
		if draw <= acc {
			return candidates[i]
		}
	}

	return candidates[len(candidates)-1]
}
