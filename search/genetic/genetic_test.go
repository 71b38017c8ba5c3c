package genetic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search/genetic"
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

func TestEngine_RunConvergesToTheOptimum(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	o := oracle.NewOracle(preferP1Simulator{}, sv, 4, 64)

	e := genetic.New(o, sv, plat, kg, genetic.Config{
		Mu:              4,
		Lambda:          12,
		Generations:     20,
		CxPB:            0.7,
		MutPB:           0.3,
		TournSize:       2,
		CrossoverRate:   1,
		MutationRadius0: 1,
		Strategy:        genetic.MuPlusLambda,
		Seed:            7,
	})

	outcome, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1000), outcome.BestResult.ExecTime)
	require.Greater(t, outcome.Evaluations, 0)
}

func TestEngine_RunRejectsOversizedCrossoverRate(t *testing.T) {
	plat := twoProcPlatform(t)
	kg := twoProcGraph(t)

	sv, err := represent.NewSimpleVector(plat, kg, false, 2, false)
	require.NoError(t, err)

	o := oracle.NewOracle(preferP1Simulator{}, sv, 2, 16)

	e := genetic.New(o, sv, plat, kg, genetic.Config{
		Mu:              2,
		Lambda:          4,
		Generations:     1,
		CrossoverRate:   99,
		MutationRadius0: 1,
		Seed:            1,
	})

	_, err = e.Run(context.Background())
	require.Error(t, err)
}
