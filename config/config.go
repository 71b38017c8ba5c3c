// Package config resolves the one object kpnflow's core reads: command
// line flags plus an optional YAML overlay, merged into a single Config
// and validated per spec.md §7's configuration-error taxonomy before any
// search engine runs.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kpnflow/dse/search/designcenter"
)

// Sentinel errors for configuration-time validation (spec.md §7 class 1:
// configuration errors, surfaced and fatal before search starts).
var (
	// ErrUnknownMapper indicates --mapper named a strategy kpnflow does
	// not implement.
	ErrUnknownMapper = errors.New("config: unknown mapper")

	// ErrNoObjectives indicates every requested objective was dropped
	// (e.g. "energy" requested against a platform with no power model,
	// and nothing else was asked for).
	ErrNoObjectives = errors.New("config: no objectives enabled")

	// ErrCrossoverRate indicates crossover_rate exceeds the process
	// count of the loaded KPN graph.
	ErrCrossoverRate = errors.New("config: crossover_rate exceeds process count")
)

// Mapper names the five search strategies spec.md §4.4 defines.
type Mapper string

// Mapper values, matching spec.md §6's --mapper enum exactly.
const (
	RandomWalk   Mapper = "random_walk"
	Genetic      Mapper = "genetic"
	SimAnneal    Mapper = "sa"
	GradDescent  Mapper = "gd"
	DesignCenter Mapper = "dc"
)

func (m Mapper) valid() bool {
	switch m {
	case RandomWalk, Genetic, SimAnneal, GradDescent, DesignCenter:
		return true
	default:
		return false
	}
}

// RandomWalkConfig holds 4.4.1's single tunable.
type RandomWalkConfig struct {
	N int `yaml:"n"`
}

// GeneticConfig holds 4.4.2's tunables.
type GeneticConfig struct {
	Mu              int     `yaml:"mu"`
	Lambda          int     `yaml:"lambda"`
	Generations     int     `yaml:"generations"`
	CxPB            float64 `yaml:"cxpb"`
	MutPB           float64 `yaml:"mutpb"`
	TournSize       int     `yaml:"tournsize"`
	CrossoverRate   int     `yaml:"crossover_rate"`
	MutationRadius0 float64 `yaml:"mutation_radius0"`
	CommaStrategy   bool    `yaml:"comma_strategy"`
}

// AnnealConfig holds 4.4.3's tunables.
type AnnealConfig struct {
	T0             float64 `yaml:"t0"`
	TFinal         float64 `yaml:"t_final"`
	CoolingP       float64 `yaml:"cooling_p"`
	MutationRadius float64 `yaml:"mutation_radius"`
}

// GradDescentConfig holds 4.4.4's tunables.
type GradDescentConfig struct {
	StepSize   float64 `yaml:"stepsize"`
	Iterations int     `yaml:"gd_iterations"`
}

// DesignCenterConfig holds 4.4.5's tunables. PTarget/StepWidth are parsed
// from "x:y,x:y,..." support-point lists (see ParseSplinePoints).
type DesignCenterConfig struct {
	MaxSamples   int                         `yaml:"max_samples"`
	AdaptSamples int                         `yaml:"adapt_samples"`
	Threshold    uint64                      `yaml:"threshold"`
	PTarget      []designcenter.SplinePoint  `yaml:"-"`
	PTargetRaw   string                      `yaml:"p_target"`
	StepWidth    []designcenter.SplinePoint  `yaml:"-"`
	StepWidthRaw string                      `yaml:"step_width"`
	PThreshold   float64                     `yaml:"p_threshold"`
}

// Config is the fully resolved run description: every flag spec.md §6
// lists (common + engine-specific), post-overlay, pre-validation.
type Config struct {
	PlatformPath string `yaml:"platform"`
	KPNPath      string `yaml:"kpn"`
	TracePath    string `yaml:"trace"`
	Mapper       Mapper `yaml:"mapper"`
	OutDir       string `yaml:"outdir"`
	RandomSeed   uint64 `yaml:"random_seed"`
	Parallel     bool   `yaml:"parallel"`
	Jobs         int    `yaml:"jobs"`
	ChunkSize    int    `yaml:"chunk_size"`
	DumpCache    bool   `yaml:"dump_cache"`
	RecordStats  bool   `yaml:"record_statistics"`

	IncludeChannels    bool    `yaml:"include_channels"`
	EmbeddingP         float64 `yaml:"embedding_p"`
	Periodic           bool    `yaml:"periodic"`
	ResourceFirst      bool    `yaml:"resource_first"`
	CostAwarePrimitive bool    `yaml:"cost_aware_primitive"`
	Objectives         string  `yaml:"objectives"`

	RandomWalk   RandomWalkConfig   `yaml:"random_walk"`
	Genetic      GeneticConfig      `yaml:"genetic"`
	Anneal       AnnealConfig       `yaml:"anneal"`
	GradDescent  GradDescentConfig  `yaml:"grad_descent"`
	DesignCenter DesignCenterConfig `yaml:"design_center"`

	// configPath is the optional --config overlay path; kept so a second
	// ParseFlags-then-overlay pass is never required.
	configPath string
}

// ParseFlags builds a Config from args (normally os.Args[1:]) using a
// fresh FlagSet, so repeated calls (as in tests) never collide with
// flag.CommandLine or each other.
func ParseFlags(progName string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	cfg := &Config{}

	fs.StringVar(&cfg.PlatformPath, "platform", "", "path to a platform JSON description")
	fs.StringVar(&cfg.KPNPath, "kpn", "", "path to a KPN application JSON description")
	fs.StringVar(&cfg.TracePath, "trace", "", "path to a recorded trace JSON description")
	fs.StringVar(&cfg.configPath, "config", "", "optional YAML overlay (flags still win if repeated)")
	mapperFlag := fs.String("mapper", string(RandomWalk), "random_walk|genetic|sa|gd|dc")
	fs.StringVar(&cfg.OutDir, "outdir", ".", "directory for persisted run artifacts")
	fs.Uint64Var(&cfg.RandomSeed, "random_seed", 0, "top-level RNG seed")
	fs.BoolVar(&cfg.Parallel, "parallel", true, "evaluate mappings concurrently through the oracle")
	fs.IntVar(&cfg.Jobs, "jobs", 1, "oracle worker count")
	fs.IntVar(&cfg.ChunkSize, "chunk_size", 16, "oracle dispatch wave size")
	fs.BoolVar(&cfg.DumpCache, "dump_cache", false, "write mapping_cache.csv on exit")
	fs.BoolVar(&cfg.RecordStats, "record_statistics", false, "write evolutionary_logbook.txt (genetic only)")

	fs.BoolVar(&cfg.IncludeChannels, "include_channels", false, "include channel slots in the representation")
	fs.Float64Var(&cfg.EmbeddingP, "embedding_p", 2, "Minkowski p for the vector distance metric")
	fs.BoolVar(&cfg.Periodic, "periodic", false, "treat processor/primitive slots as toroidal")
	fs.BoolVar(&cfg.ResourceFirst, "resource_first", false, "bias random generation toward reused core types")
	fs.BoolVar(&cfg.CostAwarePrimitive, "cost_aware_primitive", false, "use argmax(write_cost) instead of max(group_id) for slowest-primitive policy")
	fs.StringVar(&cfg.Objectives, "objectives", "exec_time", "comma-separated objective list: exec_time,energy")

	fs.IntVar(&cfg.RandomWalk.N, "n", 100, "[random_walk] sample count")

	fs.IntVar(&cfg.Genetic.Mu, "mu", 20, "[genetic] population size")
	fs.IntVar(&cfg.Genetic.Lambda, "lambda", 60, "[genetic] offspring size (conventionally 3*mu)")
	fs.IntVar(&cfg.Genetic.Generations, "generations", 50, "[genetic] generation count")
	fs.Float64Var(&cfg.Genetic.CxPB, "cxpb", 0.7, "[genetic] crossover probability")
	fs.Float64Var(&cfg.Genetic.MutPB, "mutpb", 0.3, "[genetic] mutation probability")
	fs.IntVar(&cfg.Genetic.TournSize, "tournsize", 3, "[genetic] tournament size")
	fs.IntVar(&cfg.Genetic.CrossoverRate, "crossover_rate", 1, "[genetic] crossover width k")
	fs.Float64Var(&cfg.Genetic.MutationRadius0, "mutation_radius0", 1, "[genetic] starting mutation ball radius")
	fs.BoolVar(&cfg.Genetic.CommaStrategy, "comma_strategy", false, "[genetic] use mu,lambda instead of mu+lambda")

	fs.Float64Var(&cfg.Anneal.T0, "t0", 100, "[sa] starting temperature")
	fs.Float64Var(&cfg.Anneal.TFinal, "t_final", 1, "[sa] final temperature")
	fs.Float64Var(&cfg.Anneal.CoolingP, "cooling_p", 0.9, "[sa] cooling factor in (0,1)")
	fs.Float64Var(&cfg.Anneal.MutationRadius, "sa_mutation_radius", 1, "[sa] proposal ball radius")

	fs.Float64Var(&cfg.GradDescent.StepSize, "stepsize", 1, "[gd] gradient step size")
	fs.IntVar(&cfg.GradDescent.Iterations, "gd_iterations", 50, "[gd] iteration budget")

	fs.IntVar(&cfg.DesignCenter.MaxSamples, "max_samples", 20, "[dc] outer iteration count")
	fs.IntVar(&cfg.DesignCenter.AdaptSamples, "adapt_samples", 16, "[dc] inner sample batch size")
	fs.Uint64Var(&cfg.DesignCenter.Threshold, "dc_threshold", 0, "[dc] feasibility exec_time threshold")
	fs.StringVar(&cfg.DesignCenter.PTargetRaw, "p_target", "0:0.8", "[dc] spline support points \"x:y,x:y,...\"")
	fs.StringVar(&cfg.DesignCenter.StepWidthRaw, "step_width", "0:0.5", "[dc] spline support points \"x:y,x:y,...\"")
	fs.Float64Var(&cfg.DesignCenter.PThreshold, "p_threshold", 0.5, "[dc] minimum empirical hitting probability")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: ParseFlags: %w", err)
	}

	cfg.Mapper = Mapper(*mapperFlag)

	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	if cfg.configPath != "" {
		if err := cfg.applyOverlay(cfg.configPath, visited); err != nil {
			return nil, err
		}
	}

	var err error
	cfg.DesignCenter.PTarget, err = ParseSplinePoints(cfg.DesignCenter.PTargetRaw)
	if err != nil {
		return nil, fmt.Errorf("config: p_target: %w", err)
	}

	cfg.DesignCenter.StepWidth, err = ParseSplinePoints(cfg.DesignCenter.StepWidthRaw)
	if err != nil {
		return nil, fmt.Errorf("config: step_width: %w", err)
	}

	return cfg, nil
}

// applyOverlay decodes a YAML file at path into a scratch Config and
// copies over only the fields whose flag was not explicitly passed on the
// command line — flags always win over the overlay, matching the doc
// comment on --config.
func (c *Config) applyOverlay(path string, visited map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: overlay %q: %w", path, err)
	}
	defer f.Close()

	var overlay Config
	if err := yaml.NewDecoder(f).Decode(&overlay); err != nil {
		return fmt.Errorf("config: overlay %q: %w", path, err)
	}

	mergeOverlay(c, &overlay, visited)

	return nil
}

// Validate checks spec.md §7 class-1 configuration errors that do not
// require the loaded KPN graph (crossover_rate's bound is checked
// separately by ValidateAgainstGraph once nProcesses is known).
func (c *Config) Validate() error {
	if !c.Mapper.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMapper, c.Mapper)
	}

	if c.Objectives == "" {
		return ErrNoObjectives
	}

	return nil
}

// ValidateAgainstGraph checks crossover_rate <= nProcesses (spec.md
// §4.4.2), once the KPN graph's process count is known.
func (c *Config) ValidateAgainstGraph(nProcesses int) error {
	if c.Mapper == Genetic && c.Genetic.CrossoverRate > nProcesses {
		return fmt.Errorf("%w: crossover_rate=%d processes=%d", ErrCrossoverRate, c.Genetic.CrossoverRate, nProcesses)
	}

	return nil
}
