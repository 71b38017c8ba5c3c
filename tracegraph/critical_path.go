package tracegraph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/kpnflow/dse/platform"
)

// CriticalPathResult is the return value of Graph.CriticalPath: the
// deduplicated, path-order list of KPN element names the path touches,
// the path's total weight, and the full ordered node-id path (sentinels
// included) used internally by ChangeElementMapping.
type CriticalPathResult struct {
	Elements []string
	Length   uint64
	Nodes    []int64
}

// CriticalPath returns the longest (V_s→V_e) path: standard DAG
// longest-path via topological order, per spec.md §4.1.
func (tg *Graph) CriticalPath() (CriticalPathResult, error) {
	order, err := topo.Sort(tg.g)
	if err != nil {
		return CriticalPathResult{}, fmt.Errorf("CriticalPath: %w", ErrCyclic)
	}

	dist := make(map[int64]uint64, len(order))
	prev := make(map[int64]int64, len(order))
	hasPrev := make(map[int64]bool, len(order))

	for _, n := range order {
		id := n.ID()

		preds := tg.g.To(id)
		for preds.Next() {
			from := preds.Node().ID()

			attr := tg.edgeOf[[2]int64{from, id}]
			if attr == nil {
				continue
			}

			cand := dist[from] + attr.Weight
			if !hasPrev[id] || cand > dist[id] {
				dist[id] = cand
				prev[id] = from
				hasPrev[id] = true
			}
		}
	}

	pathNodes := tg.walkBack(prev, hasPrev)
	elements := dedupElements(tg, pathNodes)

	tg.cachedPath = pathNodes

	return CriticalPathResult{Elements: elements, Length: dist[tg.sinkID], Nodes: pathNodes}, nil
}

func (tg *Graph) walkBack(prev map[int64]int64, hasPrev map[int64]bool) []int64 {
	path := []int64{tg.sinkID}
	cur := tg.sinkID

	for hasPrev[cur] {
		cur = prev[cur]
		path = append(path, cur)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

func dedupElements(tg *Graph, pathNodes []int64) []string {
	elements := make([]string, 0, len(pathNodes))
	seen := make(map[string]bool, len(pathNodes))

	for _, id := range pathNodes {
		if id == tg.sourceID || id == tg.sinkID {
			continue
		}

		el := tg.nodes[id].KPNElement
		if el == "" || seen[el] {
			continue
		}

		seen[el] = true
		elements = append(elements, el)
	}

	return elements
}

// ChangeElementMapping recomputes the weight of every cached-critical-path
// edge that refers to element, under the new group assignment
// newGroupIDs, and returns the recomputed total path length. If
// definitive, the new weights are persisted into the graph; otherwise the
// recomputation is a pure, side-effect-free query — calling it twice
// returns the same value (spec.md §8).
//
// CriticalPath must have been called at least once, or
// ErrCriticalPathNotComputed is returned. BlockWrite edges are reserved
// for future buffer-size modeling and are never touched here (spec.md
// §4.1).
func (tg *Graph) ChangeElementMapping(element string, newGroupIDs []int, plat *platform.Platform, policy Policy, definitive bool) (uint64, error) {
	if tg.cachedPath == nil {
		return 0, ErrCriticalPathNotComputed
	}

	total := uint64(0)

	for i := 1; i < len(tg.cachedPath); i++ {
		from, to := tg.cachedPath[i-1], tg.cachedPath[i]

		attr, ok := tg.edgeOf[[2]int64{from, to}]
		if !ok {
			continue
		}

		weight, err := tg.reweight(from, to, attr, element, newGroupIDs, plat, policy)
		if err != nil {
			return 0, err
		}

		total += weight

		if definitive {
			attr.Weight = weight
			tg.g.SetWeightedEdge(weightedEdge(from, to, float64(weight)))
		}
	}

	return total, nil
}

// reweight recomputes a single cached-path edge's weight if it refers to
// element, or returns its existing weight unchanged otherwise.
func (tg *Graph) reweight(from, to int64, attr *edgeAttr, element string, newGroupIDs []int, plat *platform.Platform, policy Policy) (uint64, error) {
	switch attr.Kind {
	case SequentialOrder:
		if tg.nodes[from].KPNElement != element {
			return attr.Weight, nil
		}

		if attr.Cycles == 0 {
			return 0, nil
		}

		proc, err := slowestProcessor(plat, newGroupIDs)
		if err != nil {
			return 0, fmt.Errorf("ChangeElementMapping: %w", err)
		}

		return proc.Ticks(attr.Cycles), nil

	case BlockRead, ReadAfterCompute:
		if tg.nodes[to].KPNElement != element {
			return attr.Weight, nil
		}

		prim, err := slowestPrimitive(plat, newGroupIDs, policy)
		if err != nil {
			return 0, fmt.Errorf("ChangeElementMapping: %w", err)
		}

		return prim.WriteCostTicks, nil

	case UnblockRead:
		if tg.nodes[from].KPNElement != element {
			return attr.Weight, nil
		}

		prim, err := slowestPrimitive(plat, newGroupIDs, policy)
		if err != nil {
			return 0, fmt.Errorf("ChangeElementMapping: %w", err)
		}

		return prim.ReadCostTicks, nil

	case BlockWrite, RootOrLeaf:
		return attr.Weight, nil

	default:
		return attr.Weight, nil
	}
}
