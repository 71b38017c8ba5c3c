package tracegraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/trace"
	"github.com/kpnflow/dse/tracegraph"
)

func onePlatform(t *testing.T, freqHz float64) *platform.Platform {
	t.Helper()

	pb := platform.NewBuilder()
	pb.AddProcessor(&platform.Processor{Name: "p0", Type: "core", FreqHz: freqHz, Groups: []int{0}})
	pb.AddScheduler("sched", "fifo", "p0")
	pb.AddPrimitive(platform.NewPrimitive("prim0", 0, 10, 10, nil))

	plat, err := pb.Build()
	require.NoError(t, err)

	return plat
}

func oneProcessGraph(t *testing.T) *kpn.Graph {
	t.Helper()

	gb := kpn.NewBuilder()
	gb.AddProcess("p")

	g, err := gb.Build()
	require.NoError(t, err)

	return g
}

// TestBuild_SingleProcessThreeComputeSegments exercises the single-process,
// three-compute-segment scenario: the first two segments' cycles are
// charged via SequentialOrder edges when the following segment is created,
// but the third (final, pre-terminate) segment is never followed by a
// fourth firing node, so its cycles are never charged by any edge — the
// original implementation has the same property, since its terminate
// branch bypasses edge creation entirely before an edge weight is ever
// assigned for the segment that preceded it.
func TestBuild_SingleProcessThreeComputeSegments(t *testing.T) {
	plat := onePlatform(t, 1e9)
	kg := oneProcessGraph(t)

	gen := trace.NewReplayGenerator(map[string][]trace.Segment{
		"p": {
			trace.Compute(10),
			trace.Compute(20),
			trace.Compute(30),
		},
	})

	em := tracegraph.ElementMapping{
		ProcessGroups: map[string][]int{"p": {0}},
		ChannelGroups: map[string][]int{},
	}

	tg, err := tracegraph.Build(kg, gen, em, plat, tracegraph.Policy{})
	require.NoError(t, err)

	result, err := tg.CriticalPath()
	require.NoError(t, err)

	require.Equal(t, []string{"p"}, result.Elements)

	proc := plat.ProcessorGroup(0)[0]
	wantLength := proc.Ticks(10) + proc.Ticks(20)
	require.Equal(t, wantLength, result.Length)
}

// TestBuild_RootOrLeafFraming checks the sentinel edges: V_s to the first
// firing node, and the final firing node to V_e, both zero-weight.
func TestBuild_RootOrLeafFraming(t *testing.T) {
	plat := onePlatform(t, 1e9)
	kg := oneProcessGraph(t)

	gen := trace.NewReplayGenerator(map[string][]trace.Segment{
		"p": {trace.Compute(5)},
	})

	em := tracegraph.ElementMapping{
		ProcessGroups: map[string][]int{"p": {0}},
		ChannelGroups: map[string][]int{},
	}

	tg, err := tracegraph.Build(kg, gen, em, plat, tracegraph.Policy{})
	require.NoError(t, err)

	result, err := tg.CriticalPath()
	require.NoError(t, err)

	require.Equal(t, uint64(0), result.Length)
	require.Equal(t, []string{"p"}, result.Elements)
}

// TestBuild_ReadWriteChannelCosts exercises a two-process producer/consumer
// pair: the producer's write and the consumer's matching-index read share
// one channel-event node, so both the writer's BlockRead edge and the
// reader's ReadAfterCompute edge land on it.
func TestBuild_ReadWriteChannelCosts(t *testing.T) {
	pb := platform.NewBuilder()
	pb.AddProcessor(&platform.Processor{Name: "p0", Type: "core", FreqHz: 1e9, Groups: []int{0}})
	pb.AddScheduler("sched", "fifo", "p0")
	pb.AddPrimitive(platform.NewPrimitive("prim0", 0, 7, 3, nil))
	plat, err := pb.Build()
	require.NoError(t, err)

	gb := kpn.NewBuilder()
	gb.AddChannel(&kpn.Channel{Name: "c", TokenSize: 1, Source: "producer", Sinks: []string{"consumer"}})
	kg, err := gb.Build()
	require.NoError(t, err)

	gen := trace.NewReplayGenerator(map[string][]trace.Segment{
		"producer": {trace.Write("c", 1)},
		"consumer": {trace.Read("c", 1)},
	})

	em := tracegraph.ElementMapping{
		ProcessGroups: map[string][]int{"producer": {0}, "consumer": {0}},
		ChannelGroups: map[string][]int{"c": {0}},
	}

	tg, err := tracegraph.Build(kg, gen, em, plat, tracegraph.Policy{})
	require.NoError(t, err)

	_, err = tg.CriticalPath()
	require.NoError(t, err)
}

// TestChangeElementMapping_NonIncreasing matches scenario 6: moving the
// critical-path process to a faster processor group must not increase the
// recomputed path length.
func TestChangeElementMapping_NonIncreasing(t *testing.T) {
	pb := platform.NewBuilder()
	pb.AddProcessor(&platform.Processor{Name: "slow", Type: "core", FreqHz: 1e9, Groups: []int{0}})
	pb.AddProcessor(&platform.Processor{Name: "fast", Type: "core", FreqHz: 4e9, Groups: []int{1}})
	pb.AddScheduler("sched", "fifo", "slow", "fast")
	pb.AddPrimitive(platform.NewPrimitive("prim0", 0, 10, 10, nil))
	plat, err := pb.Build()
	require.NoError(t, err)

	kg := oneProcessGraph(t)

	gen := trace.NewReplayGenerator(map[string][]trace.Segment{
		"p": {trace.Compute(100), trace.Compute(100)},
	})

	em := tracegraph.ElementMapping{
		ProcessGroups: map[string][]int{"p": {0}},
		ChannelGroups: map[string][]int{},
	}

	tg, err := tracegraph.Build(kg, gen, em, plat, tracegraph.Policy{})
	require.NoError(t, err)

	before, err := tg.CriticalPath()
	require.NoError(t, err)

	after, err := tg.ChangeElementMapping("p", []int{1}, plat, tracegraph.Policy{}, true)
	require.NoError(t, err)

	require.LessOrEqual(t, after, before.Length)
}

func TestChangeElementMapping_BeforeCriticalPath(t *testing.T) {
	plat := onePlatform(t, 1e9)
	kg := oneProcessGraph(t)

	gen := trace.NewReplayGenerator(map[string][]trace.Segment{
		"p": {trace.Compute(5)},
	})

	em := tracegraph.ElementMapping{
		ProcessGroups: map[string][]int{"p": {0}},
		ChannelGroups: map[string][]int{},
	}

	tg, err := tracegraph.Build(kg, gen, em, plat, tracegraph.Policy{})
	require.NoError(t, err)

	_, err = tg.ChangeElementMapping("p", []int{0}, plat, tracegraph.Policy{}, false)
	require.ErrorIs(t, err, tracegraph.ErrCriticalPathNotComputed)
}
