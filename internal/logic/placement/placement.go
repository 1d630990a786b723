// Package placement turns a sensor/scene selection into a mounting report:
// it runs the coverage engine and checks the result against the sensor's
// published depth range and resolution.
package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/cjeanneret/DepthMount/internal/catalog"
	"github.com/cjeanneret/DepthMount/internal/debug"
	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

// Warning is a condition the operator should see next to the result.
type Warning string

const (
	WarnCoverageGap       Warning = "coverage_gap"       // manual distance does not cover the box
	WarnNoSolution        Warning = "no_solution"        // auto search found nothing up to the ceiling
	WarnOutOfRange        Warning = "out_of_range"       // required range exceeds sensor max
	WarnBeyondRecommended Warning = "beyond_recommended" // required range exceeds recommended max
	WarnTooClose          Warning = "too_close"          // part of the box is nearer than sensor min
)

// Request is a fully resolved planning input.
type Request struct {
	Sensor     *catalog.Sensor
	Scene      *catalog.Scene
	Resolution *catalog.Resolution // optional; enables the pixel footprint
	Mount      geometry.MountingParameters
}

// Footprint is the size one depth pixel covers at the required range.
type Footprint struct {
	HorizontalMm float64 `json:"horizontal_mm"`
	VerticalMm   float64 `json:"vertical_mm"`
	AtRangeM     float64 `json:"at_range_m"`
}

// Report is the planner output.
type Report struct {
	SensorID   string                      `json:"sensor_id"`
	SceneID    string                      `json:"scene_id"`
	Resolution string                      `json:"resolution,omitempty"`
	Box        geometry.Box                `json:"box"`
	FOV        geometry.FieldOfView        `json:"fov"`
	Mount      geometry.MountingParameters `json:"mount"`
	Verdict    geometry.Verdict            `json:"verdict"`

	// RequiredRangeM is the farthest corner depth along the view axis.
	// Zero when there is no solution.
	RequiredRangeM    float64 `json:"required_range_m"`
	SensorMaxRangeM   float64 `json:"sensor_max_range_m"`
	RecommendedRangeM float64 `json:"recommended_range_m,omitempty"`

	Footprint *Footprint `json:"footprint,omitempty"`
	Warnings  []Warning  `json:"warnings"`

	// CoverageRatio is reserved for a volumetric coverage figure. It is
	// never computed and always nil.
	CoverageRatio *float64 `json:"coverage_ratio"`
}

// HasWarning reports whether w was raised.
func (r *Report) HasWarning(w Warning) bool {
	for _, x := range r.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

// Plan runs the coverage engine for req and annotates the verdict.
func Plan(req Request, opts geometry.SearchOptions) (*Report, error) {
	if req.Sensor == nil || req.Scene == nil {
		return nil, errors.New("placement: sensor and scene are required")
	}
	fov, err := req.Sensor.FieldOfView()
	if err != nil {
		return nil, err
	}
	box := req.Scene.Box()

	debug.Section("Coverage")
	debug.Step(1, fmt.Sprintf("sensor %s, scene %s", req.Sensor.ID, req.Scene.ID))
	debug.PrintStruct("box", box)
	debug.PrintStruct("fov", fov)
	debug.PrintStruct("mount", req.Mount)

	if req.Mount.Mode != geometry.DistanceManual {
		full := opts.WithDefaults()
		debug.Search(geometry.StartDistance(box, fov, full), full.Ceiling, full.Step)
	}
	traceSweep(box, fov, req.Mount)

	v, err := geometry.ComputeCoverage(box, fov, req.Mount, opts)
	if err != nil {
		return nil, fmt.Errorf("placement %s/%s: %w", req.Sensor.ID, req.Scene.ID, err)
	}

	rep := &Report{
		SensorID:          req.Sensor.ID,
		SceneID:           req.Scene.ID,
		Box:               box,
		FOV:               fov,
		Mount:             req.Mount,
		Verdict:           v,
		SensorMaxRangeM:   req.Sensor.DepthRange.Max,
		RecommendedRangeM: req.Sensor.DepthRange.RecommendedMax,
		Warnings:          []Warning{},
	}
	if req.Resolution != nil {
		rep.Resolution = req.Resolution.Name()
	}

	sol := v.Solution
	switch {
	case v.Mode == geometry.DistanceManual && !v.Feasible:
		rep.Warnings = append(rep.Warnings, WarnCoverageGap)
	case v.Mode == geometry.DistanceAuto && !v.Feasible:
		rep.Warnings = append(rep.Warnings, WarnNoSolution)
	}

	if sol != nil {
		rep.RequiredRangeM = sol.FarthestDepth
		rep.Warnings = append(rep.Warnings, rangeWarnings(req.Sensor.DepthRange, sol)...)
		if req.Resolution != nil {
			rep.Footprint = footprint(fov, *req.Resolution, sol.FarthestDepth)
		}
		debug.Step(2, "frustum")
		debug.Verbose("near=%.3f far=%.3f yaw=%.2f° pitch=%.2f°", sol.Near, sol.Far, sol.YawDeg, sol.PitchDeg)
	}

	distance := 0.0
	if sol != nil {
		distance = sol.Distance
	}
	debug.Verdict(string(v.Mode), v.Feasible, distance, v.Iterations)
	for _, w := range rep.Warnings {
		debug.Info("warning: %s", w)
	}
	return rep, nil
}

func rangeWarnings(r catalog.DepthRange, sol *geometry.FrustumSolution) []Warning {
	var out []Warning
	if sol.FarthestDepth > r.Max {
		out = append(out, WarnOutOfRange)
	} else if r.RecommendedMax > 0 && sol.FarthestDepth > r.RecommendedMax {
		out = append(out, WarnBeyondRecommended)
	}
	if sol.NearestDepth < r.Min {
		out = append(out, WarnTooClose)
	}
	return out
}

// footprint is the plane extent at rangeM divided by the pixel count.
func footprint(fov geometry.FieldOfView, res catalog.Resolution, rangeM float64) *Footprint {
	if res.Width <= 0 || res.Height <= 0 || rangeM <= 0 {
		return nil
	}
	w, h := geometry.PlaneExtent(fov, rangeM)
	return &Footprint{
		HorizontalMm: w * 1000 / float64(res.Width),
		VerticalMm:   h * 1000 / float64(res.Height),
		AtRangeM:     rangeM,
	}
}

// traceSweep logs the span at every coarse distance. Trace level only.
func traceSweep(box geometry.Box, fov geometry.FieldOfView, mount geometry.MountingParameters) {
	if !debug.IsEnabled(debug.LevelTrace) {
		return
	}
	samples, err := geometry.CalculateSweep(box, fov, mount, geometry.DefaultSweepPlan(box, fov))
	if err != nil {
		debug.Error(err)
		return
	}
	for _, s := range samples {
		debug.Candidate(s.Distance, s.YawSpanDeg, s.PitchSpanDeg, s.Covered)
	}
}

// RoundMm rounds meters to whole millimeters for display.
func RoundMm(m float64) int {
	return int(math.Round(m * 1000))
}
