package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
)

func testPlatform(t *testing.T) *platform.Platform {
	t.Helper()

	p0 := &platform.Processor{Name: "p0", FreqHz: 1e9, Groups: []int{0}}
	p1 := &platform.Processor{Name: "p1", FreqHz: 1e9, Groups: []int{0}}

	prim := platform.NewPrimitive("prim0", 0, 1, 1, nil)

	plat, err := platform.NewBuilder().
		AddProcessor(p0).
		AddProcessor(p1).
		AddScheduler("sched0", "fifo", "p0", "p1").
		AddPrimitive(prim).
		Build()
	require.NoError(t, err)

	return plat
}

func testGraph(t *testing.T) *kpn.Graph {
	t.Helper()

	g, err := kpn.NewBuilder().
		AddChannel(&kpn.Channel{Name: "c0", Source: "producer", Sinks: []string{"consumer"}}).
		Build()
	require.NoError(t, err)

	return g
}

func TestMapping_ValidatePartial(t *testing.T) {
	plat := testPlatform(t)

	m := mapping.New()
	m.Processes["producer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "p0"}

	require.NoError(t, m.Validate(plat, testGraph(t)))
}

func TestMapping_ValidateTotal(t *testing.T) {
	plat := testPlatform(t)
	g := testGraph(t)

	m := mapping.New()
	m.Processes["producer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "p0"}
	m.Processes["consumer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "p1"}
	m.Channels["c0"] = mapping.ChannelAssignment{Primitive: "prim0"}

	require.NoError(t, m.Validate(plat, g))
	require.True(t, m.IsTotal(g))
}

func TestMapping_ProcessorNotInScheduler(t *testing.T) {
	plat, err := platform.NewBuilder().
		AddProcessor(&platform.Processor{Name: "p0"}).
		AddProcessor(&platform.Processor{Name: "ghost"}).
		AddScheduler("sched0", "fifo", "p0").
		Build()
	require.NoError(t, err)

	m := mapping.New()
	m.Processes["producer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "ghost"}

	err = m.Validate(plat, testGraph(t))
	require.ErrorIs(t, err, mapping.ErrProcessorNotInScheduler)
}

func TestMapping_PrimitiveNotSuitable(t *testing.T) {
	plat := testPlatform(t)
	prim, err := plat.Primitive("prim0")
	require.NoError(t, err)
	_ = prim

	unsuitable := platform.NewPrimitive("unsuitable", 1, 1, 1, func(src *platform.Processor, sinks []*platform.Processor) bool {
		return false
	})

	plat2, err := platform.NewBuilder().
		AddProcessor(&platform.Processor{Name: "p0"}).
		AddProcessor(&platform.Processor{Name: "p1"}).
		AddScheduler("sched0", "fifo", "p0", "p1").
		AddPrimitive(unsuitable).
		Build()
	require.NoError(t, err)

	m := mapping.New()
	m.Processes["producer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "p0"}
	m.Processes["consumer"] = mapping.ProcessAssignment{Scheduler: "sched0", Processor: "p1"}
	m.Channels["c0"] = mapping.ChannelAssignment{Primitive: "unsuitable"}

	err = m.Validate(plat2, testGraph(t))
	require.ErrorIs(t, err, mapping.ErrPrimitiveNotSuitable)
}

func TestMapping_ToList(t *testing.T) {
	g := testGraph(t)

	m := mapping.New()
	m.Processes["producer"] = mapping.ProcessAssignment{Processor: "p0"}
	m.Processes["consumer"] = mapping.ProcessAssignment{Processor: "p1"}
	m.Channels["c0"] = mapping.ChannelAssignment{Primitive: "prim0"}

	processorIndex := map[string]int{"p0": 0, "p1": 1}
	primitiveIndex := map[string]int{"prim0": 0}

	list, err := m.ToList(g.Processes(), processorIndex, g.Channels(), primitiveIndex, true)
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 0}, list) // consumer, producer (sorted), then c0
}

func TestMapping_ToListMissing(t *testing.T) {
	m := mapping.New()

	_, err := m.ToList([]string{"p"}, nil, nil, nil, false)
	require.ErrorIs(t, err, mapping.ErrProcessNotMapped)
}
