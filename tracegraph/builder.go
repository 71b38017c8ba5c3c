package tracegraph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/trace"
)

// procState tracks one process's construction progress across rounds.
type procState struct {
	segIndex   int  // 1-based index of the last firing node created (0 = none yet)
	lastNodeID int64
	terminated bool

	hasLast        bool
	lastCycles     uint64 // cycles of the last segment, if it was a compute segment
	lastWasWrite   bool
	lastWriteNode  int64 // node id of the write-channel event created for the last segment, if lastWasWrite
}

// chanState tracks one channel's read/write event counters, shared across
// every process that touches the channel (spec.md §4.1 step 1).
//
// events maps a transfer index to the node id representing it. Reads and
// writes advance independent counters (reads, writes) but share this same
// index->node space: a write at index i and a later read at index i
// resolve to the identical node, which is how the construction correlates
// a producer's write with the consumer(s) unblocked by it, rather than
// creating two disjoint per-direction event nodes.
type chanState struct {
	reads, writes int
	events        map[int]int64
}

// Build constructs a trace graph from kg, pulling segments from gen under
// the slowest-resource choice implied by em, using plat to resolve
// processor/primitive groups. See spec.md §4.1 for the construction
// algorithm this follows step for step.
func Build(kg *kpn.Graph, gen trace.Generator, em ElementMapping, plat *platform.Platform, policy Policy) (*Graph, error) {
	tg := &Graph{
		g:      simple.NewWeightedDirectedGraph(0, 0),
		nodes:  make(map[int64]nodeInfo),
		edgeOf: make(map[[2]int64]*edgeAttr),
	}

	tg.sourceID = tg.newNodeID()
	tg.nodes[tg.sourceID] = nodeInfo{Name: "V_s"}
	tg.g.AddNode(simple.Node(tg.sourceID))

	tg.sinkID = tg.newNodeID()
	tg.nodes[tg.sinkID] = nodeInfo{Name: "V_e"}
	tg.g.AddNode(simple.Node(tg.sinkID))

	procs := kg.Processes()

	procStates := make(map[string]*procState, len(procs))
	for _, p := range procs {
		procStates[p] = &procState{}
	}

	chanStates := make(map[string]*chanState, len(kg.Channels()))
	for _, c := range kg.Channels() {
		chanStates[c] = &chanState{events: make(map[int]int64)}
	}

	b := &buildCtx{tg: tg, kg: kg, gen: gen, em: em, plat: plat, policy: policy, procStates: procStates, chanStates: chanStates}

	if err := b.run(procs); err != nil {
		return nil, err
	}

	b.connectLeavesToSink()

	return tg, nil
}

type buildCtx struct {
	tg         *Graph
	kg         *kpn.Graph
	gen        trace.Generator
	em         ElementMapping
	plat       *platform.Platform
	policy     Policy
	procStates map[string]*procState
	chanStates map[string]*chanState
}

// run drives the round-robin loop (spec.md §4.1 step 2) until every
// process has terminated.
func (b *buildCtx) run(procs []string) error {
	for {
		active := 0

		for _, p := range procs {
			st := b.procStates[p]
			if st.terminated {
				continue
			}

			active++

			if err := b.step(p, st); err != nil {
				return err
			}
		}

		if active == 0 {
			return nil
		}
	}
}

// step performs one round's worth of work for process p: pick its slowest
// processor, pull the next segment, and wire it into the graph.
func (b *buildCtx) step(p string, st *procState) error {
	proc, err := slowestProcessor(b.plat, b.em.ProcessGroups[p])
	if err != nil {
		return fmt.Errorf("Build: process %q: %w", p, err)
	}

	seg, err := b.gen.NextSegment(p, proc.Type)
	if err != nil {
		return fmt.Errorf("Build: process %q: next segment: %w", p, err)
	}

	if seg.Kind() == trace.KindTerminate {
		st.terminated = true

		return nil
	}

	return b.addFiringNode(p, proc, seg, st)
}

// addFiringNode implements spec.md §4.1 steps 4–8 for one newly-produced
// segment.
func (b *buildCtx) addFiringNode(p string, proc *platform.Processor, seg trace.Segment, st *procState) error {
	i := st.segIndex
	nodeID := b.tg.newNodeID()
	name := fmt.Sprintf("%s_%d", p, i+1)
	b.tg.nodes[nodeID] = nodeInfo{Name: name, KPNElement: p}
	b.tg.g.AddNode(simple.Node(nodeID))

	if i == 0 {
		b.tg.addEdge(b.tg.sourceID, nodeID, RootOrLeaf, 0, 0)
	} else {
		weight := uint64(0)
		if st.lastCycles > 0 {
			weight = proc.Ticks(st.lastCycles)
		}

		b.tg.addEdge(st.lastNodeID, nodeID, SequentialOrder, weight, st.lastCycles)
	}

	if st.hasLast && st.lastWasWrite {
		readCost, err := b.readCost(p)
		if err != nil {
			return err
		}

		b.tg.addEdge(st.lastWriteNode, nodeID, UnblockRead, readCost, 0)
	}

	writeNode, wroteTo, err := b.wireCurrentAccess(p, nodeID, seg)
	if err != nil {
		return err
	}

	st.segIndex = i + 1
	st.lastNodeID = nodeID
	st.hasLast = true
	st.lastCycles = seg.Cycles()
	st.lastWasWrite = wroteTo
	st.lastWriteNode = writeNode

	return nil
}

// wireCurrentAccess implements spec.md §4.1 steps 6–7: if the current
// segment is a write, create a BlockRead edge to the write-counter's
// channel-event node; if it is a read, create a ReadAfterCompute edge to
// the read-counter's channel-event node. Returns the write-event node id
// (if any) so the caller can remember it for the next round's UnblockRead
// edge.
func (b *buildCtx) wireCurrentAccess(p string, nodeID int64, seg trace.Segment) (writeNode int64, wroteTo bool, err error) {
	switch seg.Kind() {
	case trace.KindWrite:
		ch, _ := seg.Channel()

		writeCost, err := b.writeCost(p, seg)
		if err != nil {
			return 0, false, err
		}

		cs := b.chanStates[ch]
		evID := b.channelEventNode(ch, cs, cs.writes)
		b.tg.addEdge(nodeID, evID, BlockRead, writeCost, 0)
		cs.writes++

		return evID, true, nil

	case trace.KindRead:
		ch, _ := seg.Channel()

		writeCost, err := b.writeCost(p, seg)
		if err != nil {
			return 0, false, err
		}

		cs := b.chanStates[ch]
		evID := b.channelEventNode(ch, cs, cs.reads)
		b.tg.addEdge(nodeID, evID, ReadAfterCompute, writeCost, 0)
		cs.reads++

		return 0, false, nil

	default:
		return 0, false, nil
	}
}

// channelEventNode returns the node representing the idx-th transfer on
// channel ch, creating it on first reference. A write and a read that land
// on the same idx (their independent counters happening to coincide) share
// this one node — the mechanism by which a writer's BlockRead and a
// reader's ReadAfterCompute both anchor to the same synchronization point
// that the writer's own next firing later unblocks from (see readCost).
func (b *buildCtx) channelEventNode(ch string, cs *chanState, idx int) int64 {
	if id, ok := cs.events[idx]; ok {
		return id
	}

	id := b.tg.newNodeID()
	b.tg.nodes[id] = nodeInfo{Name: fmt.Sprintf("r_%s_%d", ch, idx), KPNElement: ch, IsChannel: true}
	b.tg.g.AddNode(simple.Node(id))
	cs.events[idx] = id

	return id
}

// readCost resolves the slowest primitive's read cost for the UnblockRead
// edge into process p's current firing node. Per spec.md §4.1 step 5, the
// channel is the one p's PRIOR segment wrote to, not one the current
// segment accesses; the caller knows that channel only through
// st.lastWriteNode's metadata, so this looks it up there.
func (b *buildCtx) readCost(p string) (uint64, error) {
	ch := b.tg.nodes[b.procStates[p].lastWriteNode].KPNElement

	prim, err := b.channelPrimitive(ch)
	if err != nil {
		return 0, err
	}

	return prim.ReadCostTicks, nil
}

func (b *buildCtx) writeCost(p string, seg trace.Segment) (uint64, error) {
	ch, _ := seg.Channel()

	prim, err := b.channelPrimitive(ch)
	if err != nil {
		return 0, err
	}

	return prim.WriteCostTicks, nil
}

func (b *buildCtx) channelPrimitive(ch string) (*platform.Primitive, error) {
	prim, err := slowestPrimitive(b.plat, b.em.ChannelGroups[ch], b.policy)
	if err != nil {
		return nil, fmt.Errorf("Build: channel %q: %w", ch, err)
	}

	return prim, nil
}

// connectLeavesToSink implements spec.md §4.1 step 9: once every process
// has terminated, every node with no successor (other than V_e itself) is
// connected to V_e with a zero-weight RootOrLeaf edge.
func (b *buildCtx) connectLeavesToSink() {
	ids := make([]int64, 0, len(b.tg.nodes))
	for id := range b.tg.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if id == b.tg.sinkID {
			continue
		}

		if b.tg.g.From(id).Len() == 0 {
			b.tg.addEdge(id, b.tg.sinkID, RootOrLeaf, 0, 0)
		}
	}
}

func (tg *Graph) newNodeID() int64 {
	id := tg.nextID
	tg.nextID++

	return id
}

// addEdge adds a directed edge from→to with the given kind/weight/cycles,
// recording both the gonum weighted edge (for path algorithms) and the
// extra attributes gonum does not carry.
func (tg *Graph) addEdge(from, to int64, kind EdgeKind, weight, cycles uint64) {
	tg.g.SetWeightedEdge(weightedEdge(from, to, float64(weight)))
	tg.edgeOf[[2]int64{from, to}] = &edgeAttr{Kind: kind, Weight: weight, Cycles: cycles}
}

// weightedEdge builds a gonum simple.WeightedEdge between two bare node
// ids, without requiring the caller to hold simple.Node values.
func weightedEdge(from, to int64, weight float64) simple.WeightedEdge {
	return simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: weight}
}
