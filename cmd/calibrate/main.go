// Package main searches field tuning (force cap and drag) for a stage so that
// particles reach sinks after a target mean age, and writes the result as a
// layout profile.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/layout"
	"github.com/pthm-cable/flux/systems"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	ForceCap     float64 `csv:"force_cap"`
	Drag         float64 `csv:"drag"`
	AgeMean      float64 `csv:"absorbed_age_mean"`
	AbsorbedFrac float64 `csv:"absorbed_fraction"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	stage := flag.String("stage", "static", "Stage to calibrate")
	targetAge := flag.Float64("target-age", 1.5, "Target mean particle age at absorption (seconds)")
	duration := flag.Float64("duration", 10, "Simulated seconds per run")
	dt := flag.Float64("dt", 1.0/60.0, "Simulation timestep in seconds")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *targetAge <= 0 || *duration <= 0 || *dt <= 0 {
		log.Fatal("--target-age, --duration and --dt must be positive")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	if _, ok := baseCfg.Derived.StageIndex[*stage]; !ok {
		log.Fatalf("unknown stage %q (have %v)", *stage, baseCfg.Layouts.Stages)
	}

	params := NewParamVector()
	fieldCfg := baseCfg.FieldFor(*stage)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params,
		systems.FieldParamsFromConfig(fieldCfg),
		layout.ParamsFromConfig(baseCfg.Layouts),
		*stage, baseCfg.Derived.Bounds, evalSeeds,
		*duration, *dt, *targetAge)

	initX := params.Normalize(params.Clamp(params.Extract(fieldCfg)))

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	headerWritten := false
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append(bestParams[:0], raw...)
			}

			ageMean, absorbedFrac := evaluator.Last()
			rows := []evalRow{{
				Eval:         evalCount,
				Fitness:      fitness,
				ForceCap:     raw[0],
				Drag:         raw[1],
				AgeMean:      ageMean,
				AbsorbedFrac: absorbedFrac,
			}}
			if headerWritten {
				err = gocsv.MarshalWithoutHeaders(rows, logFile)
			} else {
				err = gocsv.Marshal(rows, logFile)
				headerWritten = true
			}
			if err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: age=%.3fs absorbed=%.2f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, ageMean, absorbedFrac, fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}
	method := &optimize.NelderMead{}

	fmt.Printf("Calibrating stage %q: target age %.2fs, %d seeds x %.0fs, max_evals=%d\n",
		*stage, *targetAge, *seeds, *duration, *maxEvals)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, *stage, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
