package kpn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/kpn"
)

func TestBuilder_Build(t *testing.T) {
	g, err := kpn.NewBuilder().
		AddProcess("producer").
		AddProcess("consumer").
		AddChannel(&kpn.Channel{Name: "c0", TokenSize: 4, Source: "producer", Sinks: []string{"consumer"}}).
		Build()
	require.NoError(t, err)

	require.Equal(t, []string{"consumer", "producer"}, g.Processes())
	require.Equal(t, []string{"c0"}, g.Channels())

	producer, err := g.Process("producer")
	require.NoError(t, err)
	require.Equal(t, []string{"c0"}, producer.Outgoing)

	consumer, err := g.Process("consumer")
	require.NoError(t, err)
	require.Equal(t, []string{"c0"}, consumer.Incoming)
}

func TestBuilder_ChannelNoSinks(t *testing.T) {
	_, err := kpn.NewBuilder().
		AddChannel(&kpn.Channel{Name: "c0", Source: "p"}).
		Build()
	require.ErrorIs(t, err, kpn.ErrNoSinks)
}

func TestBuilder_DuplicateChannel(t *testing.T) {
	_, err := kpn.NewBuilder().
		AddChannel(&kpn.Channel{Name: "c0", Source: "p", Sinks: []string{"q"}}).
		AddChannel(&kpn.Channel{Name: "c0", Source: "p", Sinks: []string{"q"}}).
		Build()
	require.ErrorIs(t, err, kpn.ErrDuplicateName)
}

func TestBuilder_MultiSinkFanOut(t *testing.T) {
	g, err := kpn.NewBuilder().
		AddChannel(&kpn.Channel{Name: "bcast", Source: "p", Sinks: []string{"q", "r"}}).
		Build()
	require.NoError(t, err)

	q, err := g.Process("q")
	require.NoError(t, err)
	require.Equal(t, []string{"bcast"}, q.Incoming)

	r, err := g.Process("r")
	require.NoError(t, err)
	require.Equal(t, []string{"bcast"}, r.Incoming)
}
