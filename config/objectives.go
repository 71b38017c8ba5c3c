package config

import (
	"log/slog"
	"strings"

	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/search/genetic"
)

// ResolveObjectives parses c.Objectives ("exec_time,energy") into the
// []genetic.Objective the search engines weigh fitness by, demoting
// "energy" to a dropped objective (logged, not fatal) when plat has no
// processor with a power model — spec.md §7 class 1's documented
// exception to "configuration errors are fatal".
func (c *Config) ResolveObjectives(plat *platform.Platform, logger *slog.Logger) ([]genetic.Objective, error) {
	var out []genetic.Objective

	for _, name := range strings.Split(c.Objectives, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		switch name {
		case "exec_time":
			out = append(out, genetic.Objective{
				Name:    "exec_time",
				Extract: func(r oracle.Result) float64 { return float64(r.ExecTime) },
			})
		case "energy":
			if !anyProcessorHasPower(plat) {
				logger.Warn("energy objective demoted: platform has no power model", "objective", "energy")
				continue
			}

			out = append(out, genetic.Objective{
				Name:    "energy",
				Extract: func(r oracle.Result) float64 { return r.StaticEnergy + r.DynamicEnergy },
			})
		default:
			logger.Warn("unknown objective ignored", "objective", name)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoObjectives
	}

	return out, nil
}

func anyProcessorHasPower(plat *platform.Platform) bool {
	for _, p := range plat.Processors() {
		if p.HasPower {
			return true
		}
	}

	return false
}
