package tracegraph

import (
	"fmt"

	"github.com/kpnflow/dse/platform"
)

// slowestProcessor picks, among the union of the given processor-group
// ids' processors, the one with the lowest frequency (the longest
// ticks-per-cycle), tie-broken by lowest name — spec.md §4.1's
// slowest-resource policy for processors.
func slowestProcessor(plat *platform.Platform, groups []int) (*platform.Processor, error) {
	var best *platform.Processor

	for _, gid := range groups {
		for _, p := range plat.ProcessorGroup(gid) {
			if best == nil || p.FreqHz < best.FreqHz || (p.FreqHz == best.FreqHz && p.Name < best.Name) {
				best = p
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("slowestProcessor: groups %v: %w", groups, ErrNoProcessorInGroups)
	}

	return best, nil
}

// slowestPrimitive picks a representative primitive for the given
// primitive-group ids under policy. The default (non-cost-aware) rule
// picks the candidate group with the highest numeric id and returns its
// lowest-named primitive — an explicit, spec-mandated design choice (the
// group id is used as a proxy for cost rather than comparing actual
// read/write costs; see spec.md §9). Setting
// Policy.CostAwarePrimitive selects the slowest primitive by actual write
// cost instead.
func slowestPrimitive(plat *platform.Platform, groups []int, policy Policy) (*platform.Primitive, error) {
	if policy.CostAwarePrimitive {
		return slowestPrimitiveByCost(plat, groups)
	}

	return slowestPrimitiveByGroupID(plat, groups)
}

func slowestPrimitiveByGroupID(plat *platform.Platform, groups []int) (*platform.Primitive, error) {
	maxGroup, found := -1, false

	for _, gid := range groups {
		if len(plat.PrimitiveGroup(gid)) == 0 {
			continue
		}

		if !found || gid > maxGroup {
			maxGroup, found = gid, true
		}
	}

	if !found {
		return nil, fmt.Errorf("slowestPrimitive: groups %v: %w", groups, ErrNoPrimitiveInGroups)
	}

	var best *platform.Primitive

	for _, p := range plat.PrimitiveGroup(maxGroup) {
		if best == nil || p.Name < best.Name {
			best = p
		}
	}

	return best, nil
}

func slowestPrimitiveByCost(plat *platform.Platform, groups []int) (*platform.Primitive, error) {
	var best *platform.Primitive

	for _, gid := range groups {
		for _, p := range plat.PrimitiveGroup(gid) {
			if best == nil || p.WriteCostTicks > best.WriteCostTicks ||
				(p.WriteCostTicks == best.WriteCostTicks && p.Name < best.Name) {
				best = p
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("slowestPrimitive: groups %v: %w", groups, ErrNoPrimitiveInGroups)
	}

	return best, nil
}
