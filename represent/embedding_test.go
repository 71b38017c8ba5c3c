package represent_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/represent"
)

func TestMetricEmbedding_DistancePrefersSameFrequency(t *testing.T) {
	plat := twoProcTwoProcPlatform(t)
	kg := twoProcKPN(t)

	me, err := represent.NewMetricEmbedding(plat, kg, false, 2, false)
	require.NoError(t, err)

	// p0 (1GHz) and p1 (2GHz): moving one process from p0 to p1 while
	// leaving the other at p0 should report nonzero distance from the
	// all-p0 mapping, since the two processors are not embedded at the
	// same point.
	zero := represent.Vector{0, 0}
	moved := represent.Vector{1, 0}

	require.Greater(t, me.Distance(zero, moved), 0.0)
	require.Equal(t, 0.0, me.Distance(zero, zero.Clone()))
}

func TestMetricEmbedding_RoundTripMatchesSimpleVector(t *testing.T) {
	plat := twoProcTwoProcPlatform(t)
	kg := twoProcKPN(t)

	me, err := represent.NewMetricEmbedding(plat, kg, false, 2, false)
	require.NoError(t, err)

	m := mapping.New()
	m.Processes["a"] = mapping.ProcessAssignment{Scheduler: "sched", Processor: "p1"}
	m.Processes["b"] = mapping.ProcessAssignment{Scheduler: "sched", Processor: "p0"}

	v, err := me.ToVector(m)
	require.NoError(t, err)

	back, err := me.FromVector(v)
	require.NoError(t, err)
	require.Equal(t, "p1", back.Processes["a"].Processor)
}
