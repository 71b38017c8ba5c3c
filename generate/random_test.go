package generate_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/generate"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
)

func producerConsumerPlatform(t *testing.T, suitable func(src *platform.Processor, sinks []*platform.Processor) bool) *platform.Platform {
	t.Helper()

	plat, err := platform.NewBuilder().
		AddProcessor(&platform.Processor{Name: "p0", Type: "cpu", FreqHz: 1e9, Groups: []int{0}}).
		AddProcessor(&platform.Processor{Name: "p1", Type: "dsp", FreqHz: 2e9, Groups: []int{0}}).
		AddScheduler("sched", "fifo", "p0", "p1").
		AddPrimitive(platform.NewPrimitive("bus", 0, 1, 1, suitable)).
		Build()
	require.NoError(t, err)

	return plat
}

func producerConsumerKPN(t *testing.T) *kpn.Graph {
	t.Helper()

	g, err := kpn.NewBuilder().
		AddProcess("producer").
		AddProcess("consumer").
		AddChannel(&kpn.Channel{Name: "c", TokenSize: 1, Source: "producer", Sinks: []string{"consumer"}}).
		Build()
	require.NoError(t, err)

	return g
}

func TestRandomMapper_ProducesValidTotalMapping(t *testing.T) {
	plat := producerConsumerPlatform(t, nil)
	kg := producerConsumerKPN(t)
	rng := rand.New(rand.NewPCG(1, 2))

	m, err := generate.RandomMapper(plat, kg, rng, false)
	require.NoError(t, err)
	require.True(t, m.IsTotal(kg))
	require.NoError(t, m.Validate(plat, kg))
}

func TestRandomMapper_Deterministic(t *testing.T) {
	plat := producerConsumerPlatform(t, nil)
	kg := producerConsumerKPN(t)

	m1, err := generate.RandomMapper(plat, kg, rand.New(rand.NewPCG(7, 9)), false)
	require.NoError(t, err)

	m2, err := generate.RandomMapper(plat, kg, rand.New(rand.NewPCG(7, 9)), false)
	require.NoError(t, err)

	require.Equal(t, m1, m2)
}

func TestRandomMapper_NoSuitablePrimitiveErrors(t *testing.T) {
	neverSuitable := func(src *platform.Processor, sinks []*platform.Processor) bool { return false }

	plat := producerConsumerPlatform(t, neverSuitable)
	kg := producerConsumerKPN(t)
	rng := rand.New(rand.NewPCG(1, 2))

	_, err := generate.RandomMapper(plat, kg, rng, false)
	require.ErrorIs(t, err, generate.ErrNoSuitablePrimitive)
}

func TestRandomMapper_ResourceFirstReusesCoreType(t *testing.T) {
	plat, err := platform.NewBuilder().
		AddProcessor(&platform.Processor{Name: "cpu0", Type: "cpu", FreqHz: 1e9, Groups: []int{0}}).
		AddProcessor(&platform.Processor{Name: "cpu1", Type: "cpu", FreqHz: 1e9, Groups: []int{0}}).
		AddProcessor(&platform.Processor{Name: "dsp0", Type: "dsp", FreqHz: 1e9, Groups: []int{0}}).
		AddScheduler("sched", "fifo", "cpu0", "cpu1", "dsp0").
		AddPrimitive(platform.NewPrimitive("bus", 0, 1, 1, nil)).
		Build()
	require.NoError(t, err)

	kg, err := kpn.NewBuilder().AddProcess("a").AddProcess("b").AddProcess("c").AddProcess("d").Build()
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(42, 7))

	m, err := generate.RandomMapper(plat, kg, rng, true)
	require.NoError(t, err)

	distinctTypes := make(map[string]bool)
	for _, asg := range m.Processes {
		proc, err := plat.Processor(asg.Processor)
		require.NoError(t, err)
		distinctTypes[proc.Type] = true
	}

	require.LessOrEqual(t, len(distinctTypes), 2, "resourceFirst should tend to reuse a processor type across several processes")
}

// singleProcessStage maps only the named process, leaving the rest of the
// graph's processes unmapped for the random completion stage.
type singleProcessStage struct {
	name      string
	scheduler string
	processor string
}

func (s singleProcessStage) AssignProcesses(m *mapping.Mapping, _ *platform.Platform, _ *kpn.Graph, _ *rand.Rand) error {
	m.Processes[s.name] = mapping.ProcessAssignment{Scheduler: s.scheduler, Processor: s.processor}
	return nil
}

func TestPartialMapper_CompletesUnmappedProcessesAndChannels(t *testing.T) {
	plat := producerConsumerPlatform(t, nil)
	kg := producerConsumerKPN(t)
	rng := rand.New(rand.NewPCG(3, 4))

	pm := generate.NewPartialMapper(singleProcessStage{name: "producer", scheduler: "sched", processor: "p0"}, nil)

	m, err := pm.Build(plat, kg, rng)
	require.NoError(t, err)
	require.True(t, m.IsTotal(kg))
	require.Equal(t, "p0", m.Processes["producer"].Processor)
	require.NoError(t, m.Validate(plat, kg))
}

func TestPartialMapper_MissingProcessAssignmentErrors(t *testing.T) {
	plat := producerConsumerPlatform(t, nil)
	kg := producerConsumerKPN(t)
	rng := rand.New(rand.NewPCG(3, 4))

	// A Com stage that runs before any process is assigned must fail: the
	// channel's endpoints have no processor to resolve yet.
	pm := generate.NewPartialMapper(nil, generate.RandomComStage{})

	_, err := pm.Build(plat, kg, rng)
	require.ErrorIs(t, err, generate.ErrProcessMissingAssignment)
}
