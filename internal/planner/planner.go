package planner

import (
	"fmt"
	"math"
)

// Plan captures the derived upscale geometry for one run. It is computed once
// and never mutated afterwards.
type Plan struct {
	SourceWidth  int
	SourceHeight int
	TargetWidth  int
	TargetHeight int
	ScaleFactor  float64
	StepCount    int
}

// Compute derives the plan for enlarging a sourceW x sourceH image to at
// least targetW x targetH using sequential fixed-factor magnification calls.
// StepCount is the smallest k >= 0 such that perCallFactor^k covers the
// larger of the two axis ratios; a source already at or beyond the target
// scale plans zero steps.
func Compute(sourceW, sourceH, targetW, targetH int, perCallFactor float64) (Plan, error) {
	if sourceW <= 0 || sourceH <= 0 {
		return Plan{}, fmt.Errorf("source dimensions must be positive, got %dx%d", sourceW, sourceH)
	}
	if targetW <= 0 || targetH <= 0 {
		return Plan{}, fmt.Errorf("target dimensions must be positive, got %dx%d", targetW, targetH)
	}
	if perCallFactor <= 1 {
		return Plan{}, fmt.Errorf("per-call factor must exceed 1, got %g", perCallFactor)
	}

	scale := math.Max(
		float64(targetW)/float64(sourceW),
		float64(targetH)/float64(sourceH),
	)

	return Plan{
		SourceWidth:  sourceW,
		SourceHeight: sourceH,
		TargetWidth:  targetW,
		TargetHeight: targetH,
		ScaleFactor:  scale,
		StepCount:    stepsFor(scale, perCallFactor),
	}, nil
}

// stepsFor computes ceil(log_factor(scale)) floored at zero, then nudges the
// result to absorb floating point error near exact powers.
func stepsFor(scale, factor float64) int {
	if scale <= 1 {
		return 0
	}
	steps := int(math.Ceil(math.Log(scale) / math.Log(factor)))
	if steps < 0 {
		steps = 0
	}
	for steps > 0 && math.Pow(factor, float64(steps-1)) >= scale {
		steps--
	}
	for math.Pow(factor, float64(steps)) < scale {
		steps++
	}
	return steps
}
