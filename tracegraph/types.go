// Package tracegraph builds the weighted DAG whose longest (source→sink)
// path length is a mapping's execution time under a worst-case
// (slowest-available) per-group resource choice, and supports fast
// re-weighting of that path under a partial remapping.
//
// The DAG itself is backed by gonum's simple.WeightedDirectedGraph — gonum
// nodes only carry an int64 id, so per-node metadata (which KPN element a
// node belongs to, its firing index) lives alongside it in a plain map.
package tracegraph

import (
	"errors"

	"gonum.org/v1/gonum/graph/simple"
)

// EdgeKind tags why an edge exists, matching spec.md §3's trace-graph edge
// taxonomy.
type EdgeKind int

const (
	// SequentialOrder connects consecutive firing segments of one process.
	SequentialOrder EdgeKind = iota
	// ReadAfterCompute connects a firing segment to the channel-read event
	// it performs.
	ReadAfterCompute
	// BlockRead connects a firing segment to the channel-write event it
	// performs (the writer blocks on the primitive's write cost).
	BlockRead
	// UnblockRead connects a channel-write event back into the writer's
	// next firing segment, once the write unblocks.
	UnblockRead
	// BlockWrite is reserved for future buffer-size modeling; construction
	// never emits it today and change_element_mapping treats it as a
	// documented no-op.
	BlockWrite
	// RootOrLeaf connects the source/sink sentinels to the graph's real
	// roots and leaves.
	RootOrLeaf
)

// String renders the edge kind for debugging and error messages.
func (k EdgeKind) String() string {
	switch k {
	case SequentialOrder:
		return "SequentialOrder"
	case ReadAfterCompute:
		return "ReadAfterCompute"
	case BlockRead:
		return "BlockRead"
	case UnblockRead:
		return "UnblockRead"
	case BlockWrite:
		return "BlockWrite"
	case RootOrLeaf:
		return "RootOrLeaf"
	default:
		return "Unknown"
	}
}

// Sentinel errors for trace-graph construction and queries.
var (
	// ErrNoProcessorInGroups indicates none of a process's assigned
	// processor groups contain any processor.
	ErrNoProcessorInGroups = errors.New("tracegraph: no processor available in assigned groups")

	// ErrNoPrimitiveInGroups indicates none of a channel's assigned
	// primitive groups contain any primitive.
	ErrNoPrimitiveInGroups = errors.New("tracegraph: no primitive available in assigned groups")

	// ErrCriticalPathNotComputed indicates change_element_mapping was
	// called before critical_path().
	ErrCriticalPathNotComputed = errors.New("tracegraph: critical path not computed yet")

	// ErrCyclic indicates a cycle was detected while ordering the graph —
	// construction never introduces one, so this signals a caller bug if
	// ever seen (e.g. an edge added outside Build).
	ErrCyclic = errors.New("tracegraph: graph is cyclic")
)

// edgeAttr is the extra per-edge data gonum's plain weighted edge does not
// carry.
type edgeAttr struct {
	Kind   EdgeKind
	Weight uint64
	// Cycles is the pre-map cycle count for SequentialOrder edges, kept so
	// change_element_mapping can recompute the weight under a new
	// processor-group assignment without re-running the trace.
	Cycles uint64
}

// nodeInfo is the per-node metadata gonum's plain node id does not carry.
type nodeInfo struct {
	Name       string // display name, e.g. "p_3" or "r_c0_1"
	KPNElement string // process or channel name this node belongs to
	IsChannel  bool
}

// Policy configures the slowest-resource selection rules used during
// construction and reweighting.
type Policy struct {
	// CostAwarePrimitive switches the primitive-slowness rule from the
	// spec-mandated max(group_id) proxy to an actual argmax(write_cost)
	// comparison. Defaults to false to preserve spec.md §4.1/§9's
	// documented (and intentionally preserved) behavior.
	CostAwarePrimitive bool
}

// ElementMapping is the mapping decomposed into per-process processor
// groups and per-channel primitive groups — the third Build argument.
type ElementMapping struct {
	ProcessGroups map[string][]int
	ChannelGroups map[string][]int
}

// Graph is a constructed trace graph. After Build, edge weights change only
// via ChangeElementMapping; CriticalPath also writes state, recording the
// path it found for ChangeElementMapping to use.
type Graph struct {
	g *simple.WeightedDirectedGraph

	nodes map[int64]nodeInfo
	// edgeOf maps an ordered (from, to) pair to its attributes; gonum
	// exposes WeightedEdge.Weight() but not our Kind/Cycles extras.
	edgeOf map[[2]int64]*edgeAttr

	sourceID int64
	sinkID   int64
	nextID   int64

	// cachedPath is populated by CriticalPath and consumed by
	// ChangeElementMapping.
	cachedPath []int64
}

// SourceID returns the id of the V_s sentinel node.
func (tg *Graph) SourceID() int64 { return tg.sourceID }

// SinkID returns the id of the V_e sentinel node.
func (tg *Graph) SinkID() int64 { return tg.sinkID }

// NodeName returns the display name of a node, for debugging/tests.
func (tg *Graph) NodeName(id int64) string { return tg.nodes[id].Name }
