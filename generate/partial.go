// partial.go - PartialMapper: the Proc ∘ Com ∘ Random composition
// (spec.md §4.5).
package generate

import (
	"fmt"
	"math/rand/v2"

	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/platform"
)

// ProcStage assigns processes — typically a subset, producing a partial
// mapping that a later stage completes.
type ProcStage interface {
	AssignProcesses(m *mapping.Mapping, plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand) error
}

// ComStage assigns channels, given that the process assignments it needs
// are already present in m.
type ComStage interface {
	AssignChannels(m *mapping.Mapping, plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand) error
}

// PartialMapper composes a process-assignment stage and a channel stage,
// then a final random stage fills whatever either left unmapped — the
// Proc ∘ Com ∘ Random pipeline spec.md §4.5 describes.
type PartialMapper struct {
	Proc ProcStage
	Com  ComStage

	// ResourceFirst controls the trailing random stage's processor bias
	// when it has to complete any process Proc left unmapped.
	ResourceFirst bool
}

// NewPartialMapper returns a PartialMapper running proc then com before
// the random completion stage.
func NewPartialMapper(proc ProcStage, com ComStage) *PartialMapper {
	return &PartialMapper{Proc: proc, Com: com}
}

// Build runs the pipeline over a fresh mapping and returns the completed
// total mapping.
func (p *PartialMapper) Build(plat *platform.Platform, kg *kpn.Graph, rng *rand.Rand) (*mapping.Mapping, error) {
	m := mapping.New()

	if p.Proc != nil {
		if err := p.Proc.AssignProcesses(m, plat, kg, rng); err != nil {
			return nil, fmt.Errorf("PartialMapper: process stage: %w", err)
		}
	}

	if p.Com != nil {
		if err := p.Com.AssignChannels(m, plat, kg, rng); err != nil {
			return nil, fmt.Errorf("PartialMapper: channel stage: %w", err)
		}
	}

	random := RandomProcStage{ResourceFirst: p.ResourceFirst}
	if err := random.AssignProcesses(m, plat, kg, rng); err != nil {
		return nil, fmt.Errorf("PartialMapper: random completion: %w", err)
	}

	if err := (RandomComStage{}).AssignChannels(m, plat, kg, rng); err != nil {
		return nil, fmt.Errorf("PartialMapper: random completion: %w", err)
	}

	return m, nil
}
