package graddescent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search/graddescent"
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

func TestEngine_RunNeverWorsensTheBest(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	o := oracle.NewOracle(preferP1Simulator{}, sv, 2, 64)

	e := graddescent.New(o, sv, plat, kg, graddescent.Config{
		StepSize:   1,
		Iterations: 10,
		Seed:       5,
	})

	outcome, err := e.Run(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, outcome.BestResult.ExecTime, uint64(1200))
	require.Greater(t, outcome.Evaluations, 1)
}

func TestEngine_RunRejectsNonPositiveIterations(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	o := oracle.NewOracle(preferP1Simulator{}, sv, 1, 16)

	e := graddescent.New(o, sv, plat, kg, graddescent.Config{StepSize: 1, Iterations: 0})

	_, err = e.Run(context.Background())
	require.Error(t, err)
}
