// Package graddescent implements discrete gradient descent (spec.md
// §4.4.4): for each coordinate, a forward/backward finite difference
// estimates the partial derivative (one-sided at the box boundary), and
// the vector steps along the approximated negative gradient until it hits
// a local zero gradient or a fixed iteration budget.
package graddescent

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/kpnflow/dse/generate"
	"github.com/kpnflow/dse/kpn"
	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/platform"
	"github.com/kpnflow/dse/represent"
	"github.com/kpnflow/dse/search"
)

// Config holds gradient descent's tunables.
type Config struct {
	StepSize   float64
	Iterations int

	Seed          uint64
	ResourceFirst bool
}

// Engine runs one gradient-descent search.
type Engine struct {
	Oracle search.Oracle
	Repr   represent.Representation
	Plat   *platform.Platform
	KG     *kpn.Graph
	Cfg    Config
}

// New builds a gradient-descent Engine.
func New(o search.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, cfg Config) *Engine {
	return &Engine{Oracle: o, Repr: repr, Plat: plat, KG: kg, Cfg: cfg}
}

// Run implements search.Engine.
func (e *Engine) Run(ctx context.Context) (search.Outcome, error) {
	if e.Cfg.Iterations <= 0 {
		return search.Outcome{}, fmt.Errorf("graddescent.Run: Iterations must be positive")
	}

	rng := rand.New(rand.NewPCG(e.Cfg.Seed, e.Cfg.Seed^0x94d049bb133111eb))

	m, err := generate.RandomMapper(e.Plat, e.KG, rng, e.Cfg.ResourceFirst)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("graddescent.Run: %w", err)
	}

	v, err := e.Repr.ToVector(m)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("graddescent.Run: %w", err)
	}

	bounds := e.Repr.Bounds()

	best := v.Clone()
	bestResult, err := e.evaluate1(ctx, best)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("graddescent.Run: %w", err)
	}
	bestCost := float64(bestResult.ExecTime)
	evaluations := 1

	for iter := 0; iter < e.Cfg.Iterations; iter++ {
		grad, evals, err := e.estimateGradient(ctx, v, bounds)
		evaluations += evals
		if err != nil {
			return search.Outcome{}, fmt.Errorf("graddescent.Run: iteration %d: %w", iter, err)
		}

		if isZero(grad) {
			break
		}

		if bestCost == 0 {
			bestCost = 1
		}

		next := make([]float64, len(v))
		for i := range v {
			next[i] = float64(v[i]) - (e.Cfg.StepSize/bestCost)*grad[i]
		}

		candidate := e.Repr.Approximate(next)

		candResult, err := e.evaluate1(ctx, candidate)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("graddescent.Run: iteration %d: %w", iter, err)
		}
		evaluations++

		v = candidate
		if float64(candResult.ExecTime) < bestCost {
			best = candidate
			bestResult = candResult
			bestCost = float64(candResult.ExecTime)
		}
	}

	return search.Outcome{Best: best, BestResult: bestResult, Evaluations: evaluations}, nil
}

// estimateGradient computes one finite-difference partial per coordinate:
// forward difference at the lower boundary (v_i == 0), backward
// difference at the upper boundary (v_i == bound-1), and a centered
// difference otherwise (spec.md §8's boundary behavior applies to both
// one-sided ends; centered is the natural interior choice).
func (e *Engine) estimateGradient(ctx context.Context, v represent.Vector, bounds []int) ([]float64, int, error) {
	grad := make([]float64, len(v))
	evals := 0

	for i := range v {
		lo := v[i] > 0
		hi := v[i] < bounds[i]-1

		var plus, minus float64
		var haveMinus, havePlus bool

		if hi {
			cand := v.Clone()
			cand[i]++
			r, err := e.evaluate1(ctx, cand)
			if err != nil {
				return nil, evals, err
			}
			evals++
			plus = float64(r.ExecTime)
			havePlus = true
		}

		if lo {
			cand := v.Clone()
			cand[i]--
			r, err := e.evaluate1(ctx, cand)
			if err != nil {
				return nil, evals, err
			}
			evals++
			minus = float64(r.ExecTime)
			haveMinus = true
		}

		switch {
		case havePlus && haveMinus:
			grad[i] = (plus - minus) / 2
		case havePlus:
			cur, err := e.evaluate1(ctx, v)
			if err != nil {
				return nil, evals, err
			}
			evals++
			grad[i] = plus - float64(cur.ExecTime)
		case haveMinus:
			cur, err := e.evaluate1(ctx, v)
			if err != nil {
				return nil, evals, err
			}
			evals++
			grad[i] = float64(cur.ExecTime) - minus
		default:
			grad[i] = 0
		}
	}

	return grad, evals, nil
}

func isZero(grad []float64) bool {
	for _, g := range grad {
		if g != 0 {
			return false
		}
	}

	return true
}

func (e *Engine) evaluate1(ctx context.Context, v represent.Vector) (oracle.Result, error) {
	results, err := e.Oracle.Evaluate(ctx, []represent.Vector{v})
	if err != nil {
		return oracle.Result{}, err
	}

	return results[0], nil
}
