// Package genetic implements the multi-objective mu+lambda / mu,lambda
// genetic algorithm search engine (spec.md §4.4.2): tournament selection,
// representation-level crossover and ball-sample mutation, and a Pareto
// Hall of Fame tracked across generations.
package genetic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/kpnflow/dse/generate"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search"
)

// Strategy selects how the next generation is formed.
type Strategy int

const (
	// MuPlusLambda keeps the best µ individuals across parents+offspring.
	MuPlusLambda Strategy = iota
	// MuCommaLambda keeps the best µ individuals from offspring only.
	MuCommaLambda
)

// Objective extracts one minimization target from a Result; Name is used
// only for diagnostics.
type Objective struct {
	Name    string
	Extract func(oracle.Result) float64
}

// DefaultObjectives is the single-objective exec_time configuration most
// callers want; additional objectives (energy, per-core-type resource
// counts) compose by appending more Objective values.
func DefaultObjectives() []Objective {
	return []Objective{
		{Name: "exec_time", Extract: func(r oracle.Result) float64 { return float64(r.ExecTime) }},
	}
}

// Config holds the GA's tunables (spec.md §4.4.2).
type Config struct {
	Mu         int
	Lambda     int // conventionally 3*Mu; the engine does not enforce the ratio
	Generations int
	CxPB       float64
	MutPB      float64
	TournSize  int

	// CrossoverRate is k, the crossover width; must be <= |processes|.
	CrossoverRate int

	// MutationRadius0 is the initial ball radius r0 mutation samples
	// from; it grows by 1.1x on a failed distinct-neighbor search, up to
	// 10000*r0 before mutation reports failure (spec.md §8 boundary).
	MutationRadius0 float64

	Strategy   Strategy
	Objectives []Objective

	Seed          uint64
	ResourceFirst bool
}

// individual is one population member: its vector and its (already
// evaluated) per-objective fitness.
type individual struct {
	vector  represent.Vector
	result  oracle.Result
	fitness []float64
	rank    int
}

// Engine runs one genetic-algorithm search.
type Engine struct {
	Oracle search.Oracle
	Repr   represent.Representation
	Plat   *platform.Platform
	KG     *kpn.Graph
	Cfg    Config

	// HallOfFame is the Pareto front seen across every completed
	// generation, updated in place after each Run call's final
	// generation — exposed for callers that want to inspect the
	// non-dominated set directly rather than only Outcome.Best.
	HallOfFame []represent.Vector
}

// New builds a genetic Engine.
func New(o search.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, cfg Config) *Engine {
	if len(cfg.Objectives) == 0 {
		cfg.Objectives = DefaultObjectives()
	}

	return &Engine{Oracle: o, Repr: repr, Plat: plat, KG: kg, Cfg: cfg}
}

// Run implements search.Engine.
func (e *Engine) Run(ctx context.Context) (search.Outcome, error) {
	if e.Cfg.Mu <= 0 || e.Cfg.Lambda <= 0 {
		return search.Outcome{}, fmt.Errorf("genetic.Run: Mu and Lambda must be positive")
	}

	if e.Cfg.CrossoverRate > len(e.KG.Processes()) {
		return search.Outcome{}, fmt.Errorf("genetic.Run: crossover_rate %d exceeds process count %d",
			e.Cfg.CrossoverRate, len(e.KG.Processes()))
	}

	rng := rand.New(rand.NewPCG(e.Cfg.Seed, e.Cfg.Seed^0x2545f4914f6cdd1d))

	pop, err := e.seedPopulation(ctx, rng, e.Cfg.Mu)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("genetic.Run: %w", err)
	}

	evaluations := len(pop)

	var front []individual

	for gen := 0; gen < e.Cfg.Generations; gen++ {
		offspring, err := e.makeOffspring(ctx, rng, pop)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("genetic.Run: generation %d: %w", gen, err)
		}
		evaluations += len(offspring)

		var pool []individual
		switch e.Cfg.Strategy {
		case MuCommaLambda:
			pool = offspring
		default:
			pool = append(append([]individual{}, pop...), offspring...)
		}

		rankNonDominated(pool, e.Cfg.Objectives)
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].rank < pool[j].rank })

		if len(pool) > e.Cfg.Mu {
			pool = pool[:e.Cfg.Mu]
		}
		pop = pool

		front = paretoFront(append(append([]individual{}, front...), pop...), e.Cfg.Objectives)
	}

	e.HallOfFame = make([]represent.Vector, len(front))
	for i, ind := range front {
		e.HallOfFame[i] = ind.vector
	}

	best := pop[0]
	for _, ind := range pop {
		if search.Less(ind.result, best.result) {
			best = ind
		}
	}

	return search.Outcome{Best: best.vector, BestResult: best.result, Evaluations: evaluations}, nil
}

func (e *Engine) seedPopulation(ctx context.Context, rng *rand.Rand, n int) ([]individual, error) {
	vectors := make([]represent.Vector, n)

	for i := 0; i < n; i++ {
		m, err := generate.RandomMapper(e.Plat, e.KG, rng, e.Cfg.ResourceFirst)
		if err != nil {
			return nil, err
		}

		v, err := e.Repr.ToVector(m)
		if err != nil {
			return nil, err
		}

		vectors[i] = v
	}

	return e.evaluate(ctx, vectors)
}

func (e *Engine) evaluate(ctx context.Context, vectors []represent.Vector) ([]individual, error) {
	results, err := e.Oracle.Evaluate(ctx, vectors)
	if err != nil {
		return nil, err
	}

	out := make([]individual, len(vectors))
	for i, v := range vectors {
		out[i] = individual{vector: v, result: results[i], fitness: extractFitness(results[i], e.Cfg.Objectives)}
	}

	return out, nil
}

func extractFitness(r oracle.Result, objs []Objective) []float64 {
	f := make([]float64, len(objs))
	for i, o := range objs {
		f[i] = o.Extract(r)
	}

	return f
}

// makeOffspring produces Lambda children via tournament selection,
// crossover, and ball-sample mutation, then evaluates them in one batch.
func (e *Engine) makeOffspring(ctx context.Context, rng *rand.Rand, pop []individual) ([]individual, error) {
	children := make([]represent.Vector, 0, e.Cfg.Lambda)

	for len(children) < e.Cfg.Lambda {
		p1 := tournamentSelect(pop, e.Cfg.TournSize, rng)
		p2 := tournamentSelect(pop, e.Cfg.TournSize, rng)

		c1, c2 := p1.vector.Clone(), p2.vector.Clone()

		if rng.Float64() < e.Cfg.CxPB {
			a, b, err := e.Repr.Crossover(p1.vector, p2.vector, e.Cfg.CrossoverRate, rng)
			if err == nil {
				c1, c2 = a, b
			}
		}

		if rng.Float64() < e.Cfg.MutPB {
			c1, err := e.mutate(c1, rng)
			if err != nil {
				return nil, err
			}
			children = append(children, c1)
		} else {
			children = append(children, c1)
		}

		if len(children) < e.Cfg.Lambda {
			if rng.Float64() < e.Cfg.MutPB {
				mutated, err := e.mutate(c2, rng)
				if err != nil {
					return nil, err
				}
				children = append(children, mutated)
			} else {
				children = append(children, c2)
			}
		}
	}

	return e.evaluate(ctx, children)
}

// mutationGrowthBound is the factor by which a failed mutation's ball
// radius may grow before mutation gives up (spec.md §8: "r > 10000·r₀").
const mutationGrowthBound = 10000.0

// ErrMutationExhausted indicates a mutation could not find a distinct
// neighbor before its ball radius exceeded 10000 times its starting
// radius — the boundary behavior spec.md §8 requires.
var ErrMutationExhausted = fmt.Errorf("genetic: mutation radius exceeded %gx its starting value without finding a distinct neighbor", mutationGrowthBound)

func (e *Engine) mutate(v represent.Vector, rng *rand.Rand) (represent.Vector, error) {
	r0 := e.Cfg.MutationRadius0
	if r0 <= 0 {
		r0 = 1.0
	}

	for r := r0; r <= r0*mutationGrowthBound; r *= 1.1 {
		samples := e.Repr.UniformFromBall(v, r, 8, rng)
		for _, s := range samples {
			if !equalVector(s, v) {
				return s, nil
			}
		}
	}

	return nil, ErrMutationExhausted
}

func equalVector(a, b represent.Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func tournamentSelect(pop []individual, size int, rng *rand.Rand) individual {
	if size < 1 {
		size = 1
	}

	best := pop[rng.IntN(len(pop))]
	for i := 1; i < size; i++ {
		cand := pop[rng.IntN(len(pop))]
		if cand.rank < best.rank {
			best = cand
		}
	}

	return best
}

// dominates reports whether a dominates b: no worse in every objective
// and strictly better in at least one (minimization).
func dominates(a, b []float64) bool {
	betterInAny := false

	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			betterInAny = true
		}
	}

	return betterInAny
}

// rankNonDominated assigns each individual its Pareto rank in place (rank
// 0 is the non-dominated front, rank 1 is dominated only by rank 0, ...).
func rankNonDominated(pop []individual, objs []Objective) {
	n := len(pop)
	dominatedBy := make([][]int, n)
	dominationCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(pop[i].fitness, pop[j].fitness) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if dominates(pop[j].fitness, pop[i].fitness) {
				dominationCount[i]++
			}
		}
	}

	rank := 0
	remaining := n

	assigned := make([]bool, n)
	for remaining > 0 {
		var front []int
		for i := 0; i < n; i++ {
			if !assigned[i] && dominationCount[i] == 0 {
				front = append(front, i)
			}
		}

		if len(front) == 0 {
			// Defensive: cycles cannot occur under strict dominance, but
			// guard against an infinite loop on unexpected input.
			for i := 0; i < n; i++ {
				if !assigned[i] {
					front = append(front, i)
				}
			}
		}

		for _, i := range front {
			pop[i].rank = rank
			assigned[i] = true
			remaining--
			for _, j := range dominatedBy[i] {
				dominationCount[j]--
			}
		}

		rank++
	}
}

// paretoFront returns the non-dominated subset of pop.
func paretoFront(pop []individual, objs []Objective) []individual {
	rankNonDominated(pop, objs)

	out := make([]individual, 0, len(pop))
	for _, ind := range pop {
		if ind.rank == 0 {
			out = append(out, ind)
		}
	}

	return dedupeFront(out)
}

func dedupeFront(pop []individual) []individual {
	seen := make(map[string]bool, len(pop))
	out := make([]individual, 0, len(pop))

	for _, ind := range pop {
		key := fmt.Sprint(ind.vector)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ind)
	}

	return out
}
