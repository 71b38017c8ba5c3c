package randomwalk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search/randomwalk"
)

func twoProcPlatform(t *testing.T) *platform.Platform {
	t.Helper()

	plat, err := platform.NewBuilder().
		AddProcessor(&platform.Processor{Name: "p0", Type: "cpu", FreqHz: 1e9, Groups: []int{0}}).
		AddProcessor(&platform.Processor{Name: "p1", Type: "cpu", FreqHz: 2e9, Groups: []int{0}}).
		AddScheduler("sched", "fifo", "p0", "p1").
		AddPrimitive(platform.NewPrimitive("bus", 0, 1, 1, nil)).
		Build()
	require.NoError(t, err)

	return plat
}

func twoProcGraph(t *testing.T) *kpn.Graph {
	t.Helper()

	g, err := kpn.NewBuilder().AddProcess("a").AddProcess("b").Build()
	require.NoError(t, err)

	return g
}

// preferP1Simulator rewards mappings that put every process on "p1",
// letting tests assert that random walk actually surfaces the optimum
// among the few reachable vectors in this tiny search space.
type preferP1Simulator struct{}

func (preferP1Simulator) Simulate(m *mapping.Mapping) (oracle.Result, error) {
	ticks := uint64(0)
	for _, asg := range m.Processes {
		if asg.Processor != "p1" {
			ticks++
		}
	}

	return oracle.Result{ExecTime: 1000 + ticks*100}, nil
}

func TestEngine_RunFindsTheOptimalTwoProcessorMapping(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	o := oracle.NewOracle(preferP1Simulator{}, sv, 4, 16)

	e := randomwalk.New(o, sv, plat, kg, randomwalk.Config{N: 64, Seed: 1, ResourceFirst: false})

	outcome, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1000), outcome.BestResult.ExecTime)
	require.Equal(t, 64, outcome.Evaluations)
}

func TestEngine_RunIsDeterministicForAFixedSeed(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	run := func() represent.Vector {
		o := oracle.NewOracle(preferP1Simulator{}, sv, 4, 16)
		e := randomwalk.New(o, sv, plat, kg, randomwalk.Config{N: 8, Seed: 42})
		outcome, err := e.Run(context.Background())
		require.NoError(t, err)
		return outcome.Best
	}

	require.Equal(t, run(), run())
}
