package platform

import "fmt"

// Builder assembles a Platform from processors, schedulers, and primitives
// added in any order, then resolves cross-references and group indexes in
// Build. Mirrors lvlath's builder.BuildGraph contract: validate early,
// never panic, wrap errors with the constructing step's context.
type Builder struct {
	processors []*Processor
	schedulers []schedulerSpec
	primitives []*Primitive
}

type schedulerSpec struct {
	name, policy string
	procNames    []string
}

// NewBuilder returns an empty platform Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddProcessor registers a processor. Groups may be empty.
func (b *Builder) AddProcessor(p *Processor) *Builder {
	b.processors = append(b.processors, p)

	return b
}

// AddScheduler registers a scheduler bound to the named processors; the
// processors must be registered (by name) before Build is called.
func (b *Builder) AddScheduler(name, policy string, processorNames ...string) *Builder {
	b.schedulers = append(b.schedulers, schedulerSpec{name: name, policy: policy, procNames: processorNames})

	return b
}

// AddPrimitive registers a communication primitive.
func (b *Builder) AddPrimitive(p *Primitive) *Builder {
	b.primitives = append(b.primitives, p)

	return b
}

// Build resolves all references and returns the immutable Platform, or the
// first validation error encountered.
func (b *Builder) Build() (*Platform, error) {
	plat := &Platform{
		processors:      make(map[string]*Processor, len(b.processors)),
		schedulers:      make(map[string]*Scheduler, len(b.schedulers)),
		primitives:      make(map[string]*Primitive, len(b.primitives)),
		processorGroups: make(map[int][]*Processor),
		primitiveGroups: make(map[int][]*Primitive),
	}

	if err := b.buildProcessors(plat); err != nil {
		return nil, err
	}

	if err := b.buildSchedulers(plat); err != nil {
		return nil, err
	}

	if err := b.buildPrimitives(plat); err != nil {
		return nil, err
	}

	return plat, nil
}

func (b *Builder) buildProcessors(plat *Platform) error {
	for _, p := range b.processors {
		if p.Name == "" {
			return fmt.Errorf("Build: processor: %w", ErrEmptyName)
		}

		if _, dup := plat.processors[p.Name]; dup {
			return fmt.Errorf("Build: processor %q: %w", p.Name, ErrDuplicateName)
		}

		plat.processors[p.Name] = p

		for _, g := range p.Groups {
			plat.processorGroups[g] = append(plat.processorGroups[g], p)
		}
	}

	return nil
}

func (b *Builder) buildSchedulers(plat *Platform) error {
	for _, spec := range b.schedulers {
		if spec.name == "" {
			return fmt.Errorf("Build: scheduler: %w", ErrEmptyName)
		}

		if _, dup := plat.schedulers[spec.name]; dup {
			return fmt.Errorf("Build: scheduler %q: %w", spec.name, ErrDuplicateName)
		}

		procs := make([]*Processor, 0, len(spec.procNames))

		for _, pn := range spec.procNames {
			proc, ok := plat.processors[pn]
			if !ok {
				return fmt.Errorf("Build: scheduler %q references %q: %w", spec.name, pn, ErrProcessorNotFound)
			}

			procs = append(procs, proc)
		}

		plat.schedulers[spec.name] = &Scheduler{Name: spec.name, Policy: spec.policy, Processors: procs}
	}

	return nil
}

func (b *Builder) buildPrimitives(plat *Platform) error {
	for _, p := range b.primitives {
		if p.Name == "" {
			return fmt.Errorf("Build: primitive: %w", ErrEmptyName)
		}

		if _, dup := plat.primitives[p.Name]; dup {
			return fmt.Errorf("Build: primitive %q: %w", p.Name, ErrDuplicateName)
		}

		plat.primitives[p.Name] = p
		plat.primitiveGroups[p.PrimitiveGroup] = append(plat.primitiveGroups[p.PrimitiveGroup], p)
	}

	return nil
}
