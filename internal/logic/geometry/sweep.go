package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// MaxSweepSamples caps the number of distances a sweep evaluates.
const MaxSweepSamples = 2000

// SweepPlan is a range of candidate distances to evaluate.
type SweepPlan struct {
	From float64 // first distance (m)
	To   float64 // last distance (m), inclusive
	Step float64 // spacing (m)
}

// SweepSample is the coverage test at one distance.
type SweepSample struct {
	Distance     float64 `json:"distance"`
	YawSpanDeg   float64 `json:"yaw_span_deg"`
	PitchSpanDeg float64 `json:"pitch_span_deg"`
	Covered      bool    `json:"covered"`
}

// DefaultSweepPlan starts at the auto-search start distance and covers
// 10 m in 0.1 m steps.
func DefaultSweepPlan(box Box, fov FieldOfView) SweepPlan {
	from := StartDistance(box, fov, SearchOptions{})
	return SweepPlan{From: from, To: from + 10, Step: 0.1}
}

// CalculateSweep runs the coverage test at every distance of the plan,
// without stopping at the first covered one. It shows how the angular spans
// evolve with distance, including non-monotonic stretches.
func CalculateSweep(box Box, fov FieldOfView, mount MountingParameters, plan SweepPlan) ([]SweepSample, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if err := fov.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(plan.Step) || plan.Step <= 0 {
		return nil, fmt.Errorf("sweep step must be > 0, got %g", plan.Step)
	}
	if !isFinite(plan.From) || plan.From <= 0 || !isFinite(plan.To) || plan.To < plan.From {
		return nil, fmt.Errorf("sweep range must satisfy 0 < from <= to, got %g..%g", plan.From, plan.To)
	}

	// The epsilon keeps the last distance when (To-From)/Step lands just below an integer.
	// Compared in float64: tiny steps overflow int.
	n := math.Floor((plan.To-plan.From)/plan.Step+1e-9) + 1
	count := MaxSweepSamples
	if n < MaxSweepSamples {
		count = int(n)
	}

	height := mount.ClampedHeight()
	corners := box.Corners()
	samples := make([]SweepSample, 0, count)
	for i := 0; i < count; i++ {
		d := plan.From + float64(i)*plan.Step
		span := measureSpan(corners, r3.Vector{X: 0, Y: height, Z: -d})
		samples = append(samples, SweepSample{
			Distance:     d,
			YawSpanDeg:   radToDeg(span.yawSpan()),
			PitchSpanDeg: radToDeg(span.pitchSpan()),
			Covered:      span.fits(fov, DefaultTolerance),
		})
	}
	return samples, nil
}

// FirstCovered returns the first covered sample, if any.
func FirstCovered(samples []SweepSample) (SweepSample, bool) {
	for _, s := range samples {
		if s.Covered {
			return s, true
		}
	}
	return SweepSample{}, false
}
