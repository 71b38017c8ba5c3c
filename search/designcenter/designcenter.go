// Package designcenter implements design centering (spec.md §4.4.5):
// search for a mapping near the center of a large feasible region (one
// where nearby mappings also meet an exec_time threshold), tracking a
// center/radius pair whose radius targets a hitting probability and step
// width interpolated, via a natural cubic spline, from config support
// points spanning the run's iteration count.
package designcenter

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

// Config holds design centering's tunables (spec.md §4.4.5).
type Config struct {
	// MaxSamples is the outer iteration count.
	MaxSamples int

	// AdaptSamples (K) is each iteration's inner sampling batch size.
	AdaptSamples int

	// Threshold is the exec_time a sample must not exceed to count as
	// feasible.
	Threshold uint64

	// PTarget and StepWidth are cubic-spline support points (X in
	// [0, MaxSamples-1]) giving the target hitting probability and the
	// center/radius step width at each iteration.
	PTarget   []SplinePoint
	StepWidth []SplinePoint

	// PThreshold is the minimum empirical hitting probability a
	// (center, radius) pair must reach to be eligible as the returned
	// center.
	PThreshold float64

	Seed          uint64
	ResourceFirst bool
}

// Engine runs one design-centering search.
type Engine struct {
	Oracle search.Oracle
	Repr   represent.Representation
	Plat   *platform.Platform
	KG     *kpn.Graph
	Cfg    Config

	// BestRadius and BestEmpiricalP describe the returned center's
	// feasibility margin, set after Run completes.
	BestRadius     float64
	BestEmpiricalP float64
}

// New builds a design-centering Engine.
func New(o search.Oracle, repr represent.Representation, plat *platform.Platform, kg *kpn.Graph, cfg Config) *Engine {
	return &Engine{Oracle: o, Repr: repr, Plat: plat, KG: kg, Cfg: cfg}
}

// Run implements search.Engine.
func (e *Engine) Run(ctx context.Context) (search.Outcome, error) {
	if e.Cfg.MaxSamples <= 0 || e.Cfg.AdaptSamples <= 0 {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: MaxSamples and AdaptSamples must be positive")
	}

	pTargetSpline, err := fitNaturalCubicSpline(e.Cfg.PTarget)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: p_target spline: %w", err)
	}

	stepSpline, err := fitNaturalCubicSpline(e.Cfg.StepWidth)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: step spline: %w", err)
	}

	rng := rand.New(rand.NewPCG(e.Cfg.Seed, e.Cfg.Seed^0xd6e8feb86659fd93))

	seed, err := generate.RandomMapper(e.Plat, e.KG, rng, e.Cfg.ResourceFirst)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: %w", err)
	}

	centerVec, err := e.Repr.ToVector(seed)
	if err != nil {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: %w", err)
	}

	centerFloat := make([]float64, len(centerVec))
	for i, x := range centerVec {
		centerFloat[i] = float64(x)
	}

	radius := 1.0

	var (
		bestCenter     represent.Vector
		bestRadius     float64
		bestEmpiricalP float64
		haveBest       bool
		evaluations    int
	)

	for iter := 0; iter < e.Cfg.MaxSamples; iter++ {
		pTarget := pTargetSpline.Eval(float64(iter))
		step := stepSpline.Eval(float64(iter))

		current := e.Repr.Approximate(centerFloat)
		samples := e.Repr.UniformFromBall(current, radius, e.Cfg.AdaptSamples, rng)
		if len(samples) == 0 {
			continue
		}

		results, err := e.Oracle.Evaluate(ctx, samples)
		if err != nil {
			return search.Outcome{}, fmt.Errorf("designcenter.Run: iteration %d: %w", iter, err)
		}
		evaluations += len(results)

		feasible := make([]represent.Vector, 0, len(samples))
		for i, r := range results {
			if r.ExecTime <= e.Cfg.Threshold {
				feasible = append(feasible, samples[i])
			}
		}

		empiricalP := float64(len(feasible)) / float64(len(samples))

		if empiricalP >= e.Cfg.PThreshold && (!haveBest || radius > bestRadius) {
			haveBest = true
			bestCenter = current
			bestRadius = radius
			bestEmpiricalP = empiricalP
		}

		if len(feasible) > 0 {
			centroid := centroidOf(feasible)
			for i := range centerFloat {
				centerFloat[i] += step * (centroid[i] - centerFloat[i])
			}
		}

		radius *= 1 + step*(empiricalP-pTarget)
		if radius < 0 {
			radius = 0
		}
	}

	if !haveBest {
		bestCenter = e.Repr.Approximate(centerFloat)
		bestRadius = radius
	}

	e.BestRadius = bestRadius
	e.BestEmpiricalP = bestEmpiricalP

	results, err := e.Oracle.Evaluate(ctx, []represent.Vector{bestCenter})
	if err != nil {
		return search.Outcome{}, fmt.Errorf("designcenter.Run: final evaluation: %w", err)
	}
	evaluations++

	return search.Outcome{Best: bestCenter, BestResult: results[0], Evaluations: evaluations}, nil
}

func centroidOf(vectors []represent.Vector) []float64 {
	dims := len(vectors[0])
	sum := make([]float64, dims)

	for _, v := range vectors {
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	for i := range sum {
		sum[i] /= float64(len(vectors))
	}

	return sum
}
