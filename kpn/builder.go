package kpn

import (
	"fmt"
	"sort"
)

// Builder assembles a Graph from processes and channels added in any
// order. Build resolves Outgoing/Incoming back-references from the
// channel's Source/Sinks so callers only need to declare channels once.
type Builder struct {
	processes []string
	channels  []*Channel
}

// NewBuilder returns an empty KPN graph Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddProcess registers a process by name.
func (b *Builder) AddProcess(name string) *Builder {
	b.processes = append(b.processes, name)

	return b
}

// AddChannel registers a channel; its Source and Sinks processes need not
// have been added yet with AddProcess — Build adds them implicitly if
// absent, mirroring how a KPN description typically only lists channels.
func (b *Builder) AddChannel(c *Channel) *Builder {
	b.channels = append(b.channels, c)

	return b
}

// Build validates and returns the immutable Graph.
func (b *Builder) Build() (*Graph, error) {
	procSet := make(map[string]*Process)

	for _, name := range b.processes {
		if name == "" {
			return nil, fmt.Errorf("Build: process: %w", ErrEmptyName)
		}

		if _, dup := procSet[name]; dup {
			return nil, fmt.Errorf("Build: process %q: %w", name, ErrDuplicateName)
		}

		procSet[name] = &Process{Name: name}
	}

	channels := make(map[string]*Channel, len(b.channels))

	for _, c := range b.channels {
		if c.Name == "" {
			return nil, fmt.Errorf("Build: channel: %w", ErrEmptyName)
		}

		if _, dup := channels[c.Name]; dup {
			return nil, fmt.Errorf("Build: channel %q: %w", c.Name, ErrDuplicateName)
		}

		if len(c.Sinks) == 0 {
			return nil, fmt.Errorf("Build: channel %q: %w", c.Name, ErrNoSinks)
		}

		channels[c.Name] = c

		src := procOrCreate(procSet, c.Source)
		src.Outgoing = append(src.Outgoing, c.Name)

		for _, sinkName := range c.Sinks {
			sink := procOrCreate(procSet, sinkName)
			sink.Incoming = append(sink.Incoming, c.Name)
		}
	}

	order := make([]string, 0, len(procSet))
	for name := range procSet {
		order = append(order, name)
	}
	sort.Strings(order)

	channelOrder := make([]string, 0, len(channels))
	for name := range channels {
		channelOrder = append(channelOrder, name)
	}
	sort.Strings(channelOrder)

	return &Graph{
		processes:    procSet,
		channels:     channels,
		order:        order,
		channelOrder: channelOrder,
	}, nil
}

func procOrCreate(procs map[string]*Process, name string) *Process {
	p, ok := procs[name]
	if !ok {
		p = &Process{Name: name}
		procs[name] = p
	}

	return p
}
