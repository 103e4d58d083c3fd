package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/layout"
	"github.com/pthm-cable/flux/systems"
)

// Fitness weights.
const (
	escapeWeight    = 0.5
	noAbsorbPenalty = 10.0
	warmupSec       = 1.0 // transient before the first particles reach a sink
)

// runResult holds the lifecycle totals from one run after warmup.
type runResult struct {
	stats systems.StepStats
}

// AgeMean returns the mean particle age at absorption.
func (r runResult) AgeMean() float64 {
	if r.stats.Absorbed == 0 {
		return 0
	}
	return r.stats.AbsorbedAge / float64(r.stats.Absorbed)
}

// AbsorbedFraction returns the share of removed particles that reached a sink.
func (r runResult) AbsorbedFraction() float64 {
	removed := r.stats.Absorbed + r.stats.Escaped + r.stats.NonFinite
	if removed == 0 {
		return 0
	}
	return float64(r.stats.Absorbed) / float64(removed)
}

// FitnessEvaluator runs headless field simulations and scores them against
// a target absorption age.
type FitnessEvaluator struct {
	params      *ParamVector
	base        systems.FieldParams
	layoutCfg   layout.Params
	stage       string
	bounds      r2.Vec
	seeds       []int64
	durationSec float64
	dt          float64
	targetAge   float64

	mu   sync.Mutex
	last runResult
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, base systems.FieldParams, layoutCfg layout.Params,
	stage string, bounds r2.Vec, seeds []int64, durationSec, dt, targetAge float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		base:        base,
		layoutCfg:   layoutCfg,
		stage:       stage,
		bounds:      bounds,
		seeds:       seeds,
		durationSec: durationSec,
		dt:          dt,
		targetAge:   targetAge,
	}
}

// Last returns the aggregated result from the most recent evaluation.
func (fe *FitnessEvaluator) Last() (ageMean, absorbedFrac float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last.AgeMean(), fe.last.AbsorbedFraction()
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fp := fe.params.Apply(fe.base, x)

	// Seeds are independent runs; each owns its layout and engine
	results := make([]runResult, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(fp, s)
		}(i, seed)
	}
	wg.Wait()

	var total runResult
	for i, r := range results {
		if errs[i] != nil {
			return math.Inf(1)
		}
		total.stats.Add(r.stats)
	}

	fe.mu.Lock()
	fe.last = total
	fe.mu.Unlock()

	return fe.computeFitness(total)
}

// runSimulation steps one layout and engine for the configured duration.
func (fe *FitnessEvaluator) runSimulation(fp systems.FieldParams, seed int64) (runResult, error) {
	l, err := layout.New(fe.stage, fe.bounds, fe.layoutCfg)
	if err != nil {
		return runResult{}, err
	}
	ps := systems.NewParticleSystem(fp, fe.bounds, rand.New(rand.NewSource(seed)))

	var result runResult
	var elapsed float64
	for elapsed < fe.durationSec {
		l.Update(fe.dt)
		st := ps.Update(fe.dt, l.Nodes())
		elapsed += fe.dt
		if elapsed > warmupSec {
			result.stats.Add(st)
		}
	}
	return result, nil
}

// computeFitness scores a run: squared relative error of the mean absorption
// age plus a penalty for particles lost to escape or numeric blowup.
func (fe *FitnessEvaluator) computeFitness(r runResult) float64 {
	if r.stats.Absorbed == 0 {
		return noAbsorbPenalty
	}
	ageErr := (r.AgeMean() - fe.targetAge) / fe.targetAge
	lost := 1 - r.AbsorbedFraction()
	return ageErr*ageErr + escapeWeight*lost*lost
}
