package platform

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonProcessor, jsonScheduler, and jsonPrimitive mirror Processor,
// Scheduler, and Primitive's exported fields, minus the unexported
// Suitable closure — a loaded platform's primitives accept every
// (source, sinks) tuple, matching the nil-suitable default every
// in-repo test and example platform already uses.
type jsonProcessor struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	FreqHz float64 `json:"freq_hz"`

	HasPower              bool    `json:"has_power"`
	StaticPowerW          float64 `json:"static_power_w"`
	DynamicPowerPerCycleW float64 `json:"dynamic_power_per_cycle_w"`

	LoadCycles  uint64 `json:"load_cycles"`
	StoreCycles uint64 `json:"store_cycles"`

	Groups []int `json:"groups"`
}

type jsonScheduler struct {
	Name       string   `json:"name"`
	Policy     string   `json:"policy"`
	Processors []string `json:"processors"`
}

type jsonPrimitive struct {
	Name           string `json:"name"`
	PrimitiveGroup int    `json:"primitive_group"`
	ReadCostTicks  uint64 `json:"read_cost_ticks"`
	WriteCostTicks uint64 `json:"write_cost_ticks"`
}

type jsonPlatform struct {
	Processors []jsonProcessor `json:"processors"`
	Schedulers []jsonScheduler `json:"schedulers"`
	Primitives []jsonPrimitive `json:"primitives"`
}

// LoadJSON decodes a platform description from r and assembles it through
// Builder, so every construction-time invariant (empty names, duplicate
// names, dangling scheduler references) is enforced exactly once, in one
// place, whether the caller built the Platform programmatically or loaded
// it from a file.
func LoadJSON(r io.Reader) (*Platform, error) {
	var doc jsonPlatform
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("platform: LoadJSON: %w", err)
	}

	b := NewBuilder()

	for _, p := range doc.Processors {
		b.AddProcessor(&Processor{
			Name:                  p.Name,
			Type:                  p.Type,
			FreqHz:                p.FreqHz,
			HasPower:              p.HasPower,
			StaticPowerW:          p.StaticPowerW,
			DynamicPowerPerCycleW: p.DynamicPowerPerCycleW,
			LoadCycles:            p.LoadCycles,
			StoreCycles:           p.StoreCycles,
			Groups:                p.Groups,
		})
	}

	for _, s := range doc.Schedulers {
		b.AddScheduler(s.Name, s.Policy, s.Processors...)
	}

	for _, p := range doc.Primitives {
		b.AddPrimitive(NewPrimitive(p.Name, p.PrimitiveGroup, p.ReadCostTicks, p.WriteCostTicks, nil))
	}

	plat, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("platform: LoadJSON: %w", err)
	}

	return plat, nil
}
