package trace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/trace"
)

func TestSegment_Compute(t *testing.T) {
	s := trace.Compute(42)
	require.Equal(t, trace.KindCompute, s.Kind())
	require.Equal(t, uint64(42), s.Cycles())

	_, err := s.Channel()
	require.ErrorIs(t, err, trace.ErrChannelAccessOnCompute)
}

func TestSegment_ReadWrite(t *testing.T) {
	r := trace.Read("c0", 4)
	ch, err := r.Channel()
	require.NoError(t, err)
	require.Equal(t, "c0", ch)

	tok, err := r.Tokens()
	require.NoError(t, err)
	require.Equal(t, uint64(4), tok)

	w := trace.Write("c1", 8)
	require.Equal(t, trace.KindWrite, w.Kind())
}

func TestSegment_Terminate(t *testing.T) {
	s := trace.Terminate()
	require.Equal(t, trace.KindTerminate, s.Kind())
}

func TestReplayGenerator(t *testing.T) {
	g := trace.NewReplayGenerator(map[string][]trace.Segment{
		"p": {trace.Compute(10), trace.Write("c0", 1)},
	})

	s1, err := g.NextSegment("p", "cpu")
	require.NoError(t, err)
	require.Equal(t, trace.KindCompute, s1.Kind())

	s2, err := g.NextSegment("p", "cpu")
	require.NoError(t, err)
	require.Equal(t, trace.KindWrite, s2.Kind())

	s3, err := g.NextSegment("p", "cpu")
	require.NoError(t, err)
	require.Equal(t, trace.KindTerminate, s3.Kind())

	g.Reset(nil)
	s1again, err := g.NextSegment("p", "cpu")
	require.NoError(t, err)
	require.Equal(t, trace.KindCompute, s1again.Kind())

	_, err = g.NextSegment("ghost", "cpu")
	require.ErrorIs(t, err, trace.ErrUnknownProcess)
}
