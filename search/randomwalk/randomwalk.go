// Package randomwalk implements the random-walk search engine: it samples
// N i.i.d. full mappings via generate.RandomMapper, evaluates all of them
// through the oracle, and returns the minimum-exec_time mapping
// (spec.md §4.4.1). It has no adaptivity — every sample is independent of
// every other.
package randomwalk

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/kpnflow/dse/generate"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search"
)

// Config holds the random walk's tunables.
type Config struct {
	// N is the number of i.i.d. mappings to sample.
	N int

	// Seed seeds the walk's RNG stream; Seed==0 is a valid, deterministic
	// seed like any other (no implicit time-based fallback).
	Seed uint64

	// ResourceFirst biases generate.RandomMapper's processor choice
	// toward core types already used elsewhere in the same mapping.
	ResourceFirst bool
}

// Engine runs one random-walk search.
type Engine struct {
	Oracle search.Oracle
	Repr   represent.Representation
	Plat   *platform.Platform
	KG     *kpn.Graph
	Cfg    Config
}

// New builds a random-walk Engine.
func New(o search.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, cfg Config) *Engine {
	return &Engine{Oracle: o, Repr: repr, Plat: plat, KG: kg, Cfg: cfg}
}

// Run implements search.Engine.
func (e *Engine) Run(ctx context.Context) (search.Outcome, error) {
	if e.Cfg.N <= 0 {
		return search.Outcome{}, fmt.Errorf("randomwalk.Run: N must be positive, got %d", e.Cfg.N)
	}

	rng := rand.New(rand.NewPCG(e.Cfg.Seed, e.Cfg.Seed^0x9e3779b97f4a7c15))

	vectors := make([]represent.Vector, e.Cfg.N)
	for i := 0; i < e.Cfg.N; i++ {
		m, err := generate.RandomMapper(e.Plat, e.KG, rng, e.Cfg.ResourceFirst)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("randomwalk.Run: sample %d: %w", i, err)
		}

		v, err := e.Repr.ToVector(m)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("randomwalk.Run: sample %d: %w", i, err)
		}

		vectors[i] = v
	}

	results, err := e.Oracle.Evaluate(ctx, vectors)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("randomwalk.Run: %w", err)
	}

	bestIdx := 0
	for i := 1; i < len(results); i++ {
		if search.Less(results[i], results[bestIdx]) {
			bestIdx = i
		}
	}

	return search.Outcome{
		Best:        vectors[bestIdx],
		BestResult:  results[bestIdx],
		Evaluations: len(results),
	}, nil
}
