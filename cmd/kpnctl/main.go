// Command kpnctl assembles a platform, a KPN application, and a trace
// source into a resolved run, dispatches to the requested search engine
// (spec.md §4.4), and persists the resulting mapping, best time, cache,
// and (for the genetic engine) evolutionary logbook (spec.md §6).
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kpnflow/dse/config"
	"github.com/kpnflow/dse/internal/klog"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/mapping"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search"
	"github.com/kpnflow/dse/search/anneal"
	"github.com/kpnflow/dse/search/designcenter"
	"github.com/kpnflow/dse/search/genetic"
	"github.com/kpnflow/dse/search/graddescent"
	"github.com/kpnflow/dse/search/randomwalk"
	"github.com/kpnflow/dse/trace"
	"github.com/kpnflow/dse/tracegraph"
)

func main() {
	if err := run(os.Args[0], os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "kpnctl:", err)
		os.Exit(1)
	}
}

func run(progName string, args []string) error {
	cfg, err := config.ParseFlags(progName, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := klog.New(slog.LevelInfo, os.Stderr)

	plat, kg, gen, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	if err := cfg.ValidateAgainstGraph(len(kg.Processes())); err != nil {
		return err
	}

	repr, err := represent.NewSimpleVector(plat, kg, cfg.IncludeChannels, cfg.EmbeddingP, cfg.Periodic)
	if err != nil {
		return fmt.Errorf("kpnctl: build representation: %w", err)
	}

	sim := &oracle.TraceGraphSimulator{
		KG:         kg,
		Platform:   plat,
		GenFactory: func() trace.Generator { return gen },
		Policy:     tracegraph.Policy{CostAwarePrimitive: cfg.CostAwarePrimitive},
	}

	jobs := cfg.Jobs
	if !cfg.Parallel {
		jobs = 1
	}

	o := oracle.NewOracle(sim, repr, jobs, cfg.ChunkSize)

	engine, err := buildEngine(cfg, o, repr, plat, kg, logger)
	if err != nil {
		return err
	}

	outcome, err := engine.Run(context.Background())
	if err != nil {
		return fmt.Errorf("kpnctl: search: %w", err)
	}

	return persistArtifacts(cfg, repr, outcome, o, engine)
}

// loadInputs decodes the platform, KPN graph, and trace generator named
// by cfg's paths.
func loadInputs(cfg *config.Config) (*platform.Platform, *kpn.Graph, trace.Generator, error) {
	platFile, err := os.Open(cfg.PlatformPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: open platform: %w", err)
	}
	defer platFile.Close()

	plat, err := platform.LoadJSON(platFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: load platform: %w", err)
	}

	kpnFile, err := os.Open(cfg.KPNPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: open kpn: %w", err)
	}
	defer kpnFile.Close()

	kg, err := kpn.LoadJSON(kpnFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: load kpn: %w", err)
	}

	traceFile, err := os.Open(cfg.TracePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: open trace: %w", err)
	}
	defer traceFile.Close()

	gen, err := trace.LoadReplayJSON(traceFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("kpnctl: load trace: %w", err)
	}

	return plat, kg, gen, nil
}

// buildEngine dispatches cfg.Mapper to the matching search.Engine
// constructor (spec.md §4.4).
func buildEngine(cfg *config.Config, o *oracle.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, logger *slog.Logger) (search.Engine, error) {
	switch cfg.Mapper {
	case config.RandomWalk:
		return randomwalk.New(o, repr, plat, kg, randomwalk.Config{
			N:             cfg.RandomWalk.N,
			Seed:          cfg.RandomSeed,
			ResourceFirst: cfg.ResourceFirst,
		}), nil

	case config.Genetic:
		objectives, err := cfg.ResolveObjectives(plat, logger)
		if err != nil {
			return nil, err
		}

		strategy := genetic.MuPlusLambda
		if cfg.Genetic.CommaStrategy {
			strategy = genetic.MuCommaLambda
		}

		return genetic.New(o, repr, plat, kg, genetic.Config{
			Mu:              cfg.Genetic.Mu,
			Lambda:          cfg.Genetic.Lambda,
			Generations:     cfg.Genetic.Generations,
			CxPB:            cfg.Genetic.CxPB,
			MutPB:           cfg.Genetic.MutPB,
			TournSize:       cfg.Genetic.TournSize,
			CrossoverRate:   cfg.Genetic.CrossoverRate,
			MutationRadius0: cfg.Genetic.MutationRadius0,
			Strategy:        strategy,
			Objectives:      objectives,
			Seed:            cfg.RandomSeed,
			ResourceFirst:   cfg.ResourceFirst,
		}), nil

	case config.SimAnneal:
		return anneal.New(o, repr, plat, kg, anneal.Config{
			T0:             cfg.Anneal.T0,
			TFinal:         cfg.Anneal.TFinal,
			CoolingP:       cfg.Anneal.CoolingP,
			MutationRadius: cfg.Anneal.MutationRadius,
			Seed:           cfg.RandomSeed,
			ResourceFirst:  cfg.ResourceFirst,
		}), nil

	case config.GradDescent:
		return graddescent.New(o, repr, plat, kg, graddescent.Config{
			StepSize:      cfg.GradDescent.StepSize,
			Iterations:    cfg.GradDescent.Iterations,
			Seed:          cfg.RandomSeed,
			ResourceFirst: cfg.ResourceFirst,
		}), nil

	case config.DesignCenter:
		return designcenter.New(o, repr, plat, kg, designcenter.Config{
			MaxSamples:    cfg.DesignCenter.MaxSamples,
			AdaptSamples:  cfg.DesignCenter.AdaptSamples,
			Threshold:     cfg.DesignCenter.Threshold,
			PTarget:       cfg.DesignCenter.PTarget,
			StepWidth:     cfg.DesignCenter.StepWidth,
			PThreshold:    cfg.DesignCenter.PThreshold,
			Seed:          cfg.RandomSeed,
			ResourceFirst: cfg.ResourceFirst,
		}), nil

	default:
		return nil, config.ErrUnknownMapper
	}
}

// persistArtifacts writes the best mapping, best_time.txt, the shared
// cache (if requested), and (genetic only) the Hall-of-Fame logbook,
// mirroring spec.md §6's "Persisted artifacts" list.
func persistArtifacts(cfg *config.Config, repr represent.Representation, outcome search.Outcome, o *oracle.Oracle, engine search.Engine) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("kpnctl: outdir: %w", err)
	}

	best, err := repr.FromVector(outcome.Best)
	if err != nil {
		return fmt.Errorf("kpnctl: decode best mapping: %w", err)
	}

	if err := writeMappingJSON(filepath.Join(cfg.OutDir, "mapping.json"), best); err != nil {
		return err
	}

	bestTimeMillis := float64(outcome.BestResult.ExecTime) / 1e9
	if err := os.WriteFile(filepath.Join(cfg.OutDir, "best_time.txt"), []byte(fmt.Sprintf("%g\n", bestTimeMillis)), 0o644); err != nil {
		return fmt.Errorf("kpnctl: write best_time.txt: %w", err)
	}

	if cfg.DumpCache {
		if err := writeCache(filepath.Join(cfg.OutDir, "mapping_cache.csv"), o); err != nil {
			return err
		}
	}

	if cfg.RecordStats && cfg.Mapper == config.Genetic {
		if ga, ok := engine.(*genetic.Engine); ok {
			if err := writeLogbook(filepath.Join(cfg.OutDir, "evolutionary_logbook.txt"), ga); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeMappingJSON(path string, m *mapping.Mapping) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kpnctl: write mapping: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("kpnctl: write mapping: %w", err)
	}

	return nil
}

func writeCache(path string, o *oracle.Oracle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kpnctl: write cache: %w", err)
	}
	defer f.Close()

	if err := o.Cache().Dump(f); err != nil {
		return fmt.Errorf("kpnctl: write cache: %w", err)
	}

	return nil
}

func writeLogbook(path string, ga *genetic.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kpnctl: write logbook: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"hall_of_fame_index", "vector"}); err != nil {
		return fmt.Errorf("kpnctl: write logbook: %w", err)
	}

	for i, v := range ga.HallOfFame {
		row := make([]string, 0, len(v)+1)
		row = append(row, fmt.Sprintf("%d", i))
		for _, slot := range v {
			row = append(row, fmt.Sprintf("%d", slot))
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("kpnctl: write logbook: %w", err)
		}
	}

	return w.Error()
}
