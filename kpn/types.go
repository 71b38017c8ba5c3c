// Package kpn models a Kahn Process Network application: a set of
// processes and a set of FIFO channels. Each channel has exactly one
// source process and one or more sink processes; the (process, channel)
// relation forms a bipartite DAG over firings but may itself contain
// cycles over processes (feedback loops are ordinary KPN applications).
package kpn

import "errors"

// Sentinel errors for graph construction and lookup.
var (
	// ErrEmptyName indicates a process or channel was given the empty
	// string as a name.
	ErrEmptyName = errors.New("kpn: name is empty")

	// ErrDuplicateName indicates two processes or two channels share a name.
	ErrDuplicateName = errors.New("kpn: duplicate name")

	// ErrProcessNotFound indicates a reference to an unknown process.
	ErrProcessNotFound = errors.New("kpn: process not found")

	// ErrChannelNotFound indicates a reference to an unknown channel.
	ErrChannelNotFound = errors.New("kpn: channel not found")

	// ErrNoSinks indicates a channel was declared with zero sink processes.
	ErrNoSinks = errors.New("kpn: channel has no sinks")
)

// Process is one KPN process: a name plus the ordered names of the
// channels it writes to (Outgoing) and reads from (Incoming), in the
// order Builder.Build encountered those channels. The canonical process
// ordering is the sorted process names (Graph.Processes), independent of
// these slices.
type Process struct {
	Name     string
	Outgoing []string
	Incoming []string
}

// Channel is one FIFO channel: a token size, exactly one source process,
// and one or more sink processes.
type Channel struct {
	Name      string
	TokenSize uint64
	Source    string
	Sinks     []string
}

// Graph is an immutable KPN application assembled by Builder.Build.
type Graph struct {
	processes map[string]*Process
	channels  map[string]*Channel

	// order is the canonical, sorted process-name order used everywhere a
	// stable process enumeration is required (mapping vectors, trace graph
	// round-robin firing order is independent of this but the
	// representation's process slot order is not).
	order []string

	// channelOrder is the analogous canonical, sorted channel-name order.
	channelOrder []string
}

// Process returns the named process, or (nil, ErrProcessNotFound).
func (g *Graph) Process(name string) (*Process, error) {
	p, ok := g.processes[name]
	if !ok {
		return nil, ErrProcessNotFound
	}

	return p, nil
}

// Channel returns the named channel, or (nil, ErrChannelNotFound).
func (g *Graph) Channel(name string) (*Channel, error) {
	c, ok := g.channels[name]
	if !ok {
		return nil, ErrChannelNotFound
	}

	return c, nil
}

// Processes returns every process name in canonical (sorted) order.
func (g *Graph) Processes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}

// Channels returns every channel name in canonical (sorted) order.
func (g *Graph) Channels() []string {
	out := make([]string, len(g.channelOrder))
	copy(out, g.channelOrder)

	return out
}
