// Package anneal implements simulated annealing (spec.md §4.4.3): propose
// a ball-sample move from the current mapping, accept unconditionally if
// it is faster, otherwise accept with probability exp(-Δ / (T_i*c0/2));
// track a rejection counter that resets on any acceptance and terminates
// the run once it reaches R_max.
package anneal

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kpnflow/dse/generate"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search"
)

// Config holds simulated annealing's tunables (spec.md §4.4.3).
type Config struct {
	T0, TFinal float64
	CoolingP   float64 // cooling factor p in (0,1)

	MutationRadius float64

	Seed          uint64
	ResourceFirst bool
}

// Engine runs one simulated-annealing search.
type Engine struct {
	Oracle search.Oracle
	Repr   represent.Representation
	Plat   *platform.Platform
	KG     *kpn.Graph
	Cfg    Config
}

// New builds a simulated-annealing Engine.
func New(o search.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, cfg Config) *Engine {
	return &Engine{Oracle: o, Repr: repr, Plat: plat, KG: kg, Cfg: cfg}
}

// Run implements search.Engine.
func (e *Engine) Run(ctx context.Context) (search.Outcome, error) {
	nProcs := len(e.KG.Processes())
	nProcessors := len(e.Plat.Processors())

	if nProcessors < 2 {
		return search.Outcome{}, fmt.Errorf("anneal.Run: need at least 2 processors, got %d", nProcessors)
	}

	rMax := nProcs * (nProcessors - 1)
	if rMax <= 0 {
		return search.Outcome{}, fmt.Errorf("anneal.Run: R_max computed as %d, must be positive", rMax)
	}

	rng := rand.New(rand.NewPCG(e.Cfg.Seed, e.Cfg.Seed^0xff51afd7ed558ccd))

	cur, err := generate.RandomMapper(e.Plat, e.KG, rng, e.Cfg.ResourceFirst)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("anneal.Run: %w", err)
	}

	curVec, err := e.Repr.ToVector(cur)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("anneal.Run: %w", err)
	}

	curResult, err := e.evaluate1(ctx, curVec)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("anneal.Run: %w", err)
	}

	c0 := float64(curResult.ExecTime)
	if c0 == 0 {
		c0 = 1
	}

	best, bestResult := curVec, curResult

	evaluations := 1
	rejections := 0

	for i := 0; rejections < rMax; i++ {
		temperature := e.Cfg.T0 * math.Pow(e.Cfg.CoolingP, float64(i/rMax))

		samples := e.Repr.UniformFromBall(curVec, e.Cfg.MutationRadius, 1, rng)
		if len(samples) == 0 {
			rejections++
			continue
		}

		candVec := samples[0]
		candResult, err := e.evaluate1(ctx, candVec)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("anneal.Run: iteration %d: %w", i, err)
		}
		evaluations++

		delta := float64(candResult.ExecTime) - float64(curResult.ExecTime)

		accept := false
		switch {
		case delta < 0:
			accept = true
		default:
			prob := math.Exp(-delta / (0.5 * temperature * c0))
			accept = rng.Float64() < prob
		}

		if accept {
			curVec, curResult = candVec, candResult
			rejections = 0

			if search.Less(curResult, bestResult) {
				best, bestResult = curVec, curResult
			}
		} else if temperature <= e.Cfg.TFinal {
			rejections++
		} else {
			rejections = 0
		}
	}

	return search.Outcome{Best: best, BestResult: bestResult, Evaluations: evaluations}, nil
}

func (e *Engine) evaluate1(ctx context.Context, v represent.Vector) (oracle.Result, error) {
	results, err := e.Oracle.Evaluate(ctx, []represent.Vector{v})
	if err != nil {
		return oracle.Result{}, err
	}

	return results[0], nil
}
