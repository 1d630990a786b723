package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Search defaults. The scan walks from the start distance to the ceiling
// in fixed steps, so at most ~5000 candidates are evaluated.
const (
	DefaultStep         = 0.02  // m between candidate distances
	DefaultCeiling      = 100.0 // m, last candidate distance
	DefaultMinStart     = 0.3   // m, floor for the first candidate
	DefaultTolerance    = 1e-4  // rad, slack on the span test
	DefaultMargin       = 0.2   // m added around the box on near/far
	DefaultMinNear      = 0.1   // m, near plane floor
	DefaultMinDepthSpan = 0.5   // m, minimum far-near gap

	// MaxSearchIterations bounds (Ceiling-MinStart)/Step for any options.
	MaxSearchIterations = 100000

	// MinMountingHeight is the lowest camera height the engine will use.
	// Lower (or non-finite) heights are clamped, never rejected.
	MinMountingHeight = 0.2
)

var (
	ErrInvalidBox      = errors.New("box dimensions must be positive and finite")
	ErrInvalidFOV      = errors.New("field of view must be within (0, 180) degrees")
	ErrInvalidDistance = errors.New("manual distance must be positive and finite")
	ErrInvalidMode     = errors.New("unknown distance mode")
	ErrInvalidOptions  = errors.New("invalid search options")
)

// DistanceMode selects how the mounting distance is chosen.
type DistanceMode string

const (
	DistanceAuto   DistanceMode = "auto"
	DistanceManual DistanceMode = "manual"
)

// ParseDistanceMode accepts "auto" or "manual". The empty string means auto.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch DistanceMode(s) {
	case "", DistanceAuto:
		return DistanceAuto, nil
	case DistanceManual:
		return DistanceManual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Box is the measurement volume. It is centered on the origin in x and z,
// with its floor at y=0.
type Box struct {
	Width  float64 `json:"width"`  // along x
	Depth  float64 `json:"depth"`  // along z
	Height float64 `json:"height"` // along y
}

// Validate reports ErrInvalidBox for non-positive or non-finite dimensions.
func (b Box) Validate() error {
	for _, v := range []float64{b.Width, b.Depth, b.Height} {
		if !isFinite(v) || v <= 0 {
			return fmt.Errorf("%w: %gx%gx%g", ErrInvalidBox, b.Width, b.Depth, b.Height)
		}
	}
	return nil
}

// Corners returns the 8 corners of the box.
func (b Box) Corners() [8]r3.Vector {
	hw, hd, h := b.Width/2, b.Depth/2, b.Height
	return [8]r3.Vector{
		{X: -hw, Y: 0, Z: -hd},
		{X: hw, Y: 0, Z: -hd},
		{X: -hw, Y: h, Z: -hd},
		{X: hw, Y: h, Z: -hd},
		{X: -hw, Y: 0, Z: hd},
		{X: hw, Y: 0, Z: hd},
		{X: -hw, Y: h, Z: hd},
		{X: hw, Y: h, Z: hd},
	}
}

// ReferenceCorner is the corner local offsets are measured from.
func (b Box) ReferenceCorner() r3.Vector {
	return r3.Vector{X: b.Width / 2, Y: 0, Z: b.Depth / 2}
}

// FieldOfView holds full (not half) aperture angles in degrees.
type FieldOfView struct {
	HorizontalDeg float64 `json:"horizontal_deg"`
	VerticalDeg   float64 `json:"vertical_deg"`
}

// Validate reports ErrInvalidFOV unless both angles are within (0, 180).
func (f FieldOfView) Validate() error {
	for _, v := range []float64{f.HorizontalDeg, f.VerticalDeg} {
		if !isFinite(v) || v <= 0 || v >= 180 {
			return fmt.Errorf("%w: H=%g V=%g", ErrInvalidFOV, f.HorizontalDeg, f.VerticalDeg)
		}
	}
	return nil
}

func (f FieldOfView) horizontalRad() float64 { return degToRad(f.HorizontalDeg) }
func (f FieldOfView) verticalRad() float64   { return degToRad(f.VerticalDeg) }

// MountingParameters are the operator's placement inputs.
type MountingParameters struct {
	HeightM         float64      `json:"height_m"`
	Mode            DistanceMode `json:"mode"`
	ManualDistanceM float64      `json:"manual_distance_m,omitempty"` // manual mode only
}

// ClampedHeight returns HeightM, raised to MinMountingHeight when needed.
func (m MountingParameters) ClampedHeight() float64 {
	if !isFinite(m.HeightM) || m.HeightM < MinMountingHeight {
		return MinMountingHeight
	}
	return m.HeightM
}

// SearchOptions tunes the distance scan and the frustum margins.
// Zero fields take the package defaults.
type SearchOptions struct {
	Step         float64
	Ceiling      float64
	MinStart     float64
	Tolerance    float64
	Margin       float64
	MinNear      float64
	MinDepthSpan float64
}

// DefaultSearchOptions returns the standard search constants.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Step:         DefaultStep,
		Ceiling:      DefaultCeiling,
		MinStart:     DefaultMinStart,
		Tolerance:    DefaultTolerance,
		Margin:       DefaultMargin,
		MinNear:      DefaultMinNear,
		MinDepthSpan: DefaultMinDepthSpan,
	}
}

// WithDefaults replaces every zero field with its package default.
func (o SearchOptions) WithDefaults() SearchOptions {
	d := DefaultSearchOptions()
	if o.Step == 0 {
		o.Step = d.Step
	}
	if o.Ceiling == 0 {
		o.Ceiling = d.Ceiling
	}
	if o.MinStart == 0 {
		o.MinStart = d.MinStart
	}
	if o.Tolerance == 0 {
		o.Tolerance = d.Tolerance
	}
	if o.Margin == 0 {
		o.Margin = d.Margin
	}
	if o.MinNear == 0 {
		o.MinNear = d.MinNear
	}
	if o.MinDepthSpan == 0 {
		o.MinDepthSpan = d.MinDepthSpan
	}
	return o
}

// Validate checks options after defaulting. The scan from MinStart to
// Ceiling must fit in MaxSearchIterations steps.
func (o SearchOptions) Validate() error {
	switch {
	case !isFinite(o.Step) || o.Step <= 0:
		return fmt.Errorf("%w: step %g", ErrInvalidOptions, o.Step)
	case !isFinite(o.MinStart) || o.MinStart <= 0:
		return fmt.Errorf("%w: min start %g", ErrInvalidOptions, o.MinStart)
	case !isFinite(o.Ceiling) || o.Ceiling < o.MinStart:
		return fmt.Errorf("%w: ceiling %g below min start %g", ErrInvalidOptions, o.Ceiling, o.MinStart)
	case o.Tolerance < 0 || o.Margin < 0 || o.MinNear <= 0 || o.MinDepthSpan <= 0:
		return fmt.Errorf("%w: tolerance/margin/near/span out of range", ErrInvalidOptions)
	}
	if n := (o.Ceiling - o.MinStart) / o.Step; n > MaxSearchIterations {
		return fmt.Errorf("%w: step %g needs %.0f candidates, max %d", ErrInvalidOptions, o.Step, n, MaxSearchIterations)
	}
	return nil
}

// Offset is a camera position relative to the box's reference corner.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FrustumSolution describes the sensor pose and its view volume.
type FrustumSolution struct {
	CameraPosition r3.Vector `json:"camera_position"`
	ViewDirection  r3.Vector `json:"view_direction"` // unit length
	Distance       float64   `json:"distance"`       // camera is at z = -Distance

	Near       float64 `json:"near"`
	Far        float64 `json:"far"`
	NearWidth  float64 `json:"near_width"`
	NearHeight float64 `json:"near_height"`
	FarWidth   float64 `json:"far_width"`
	FarHeight  float64 `json:"far_height"`

	// Corner projections on the view axis, before margins.
	NearestDepth  float64 `json:"nearest_depth"`
	FarthestDepth float64 `json:"farthest_depth"`

	YawDeg       float64 `json:"yaw_deg"`
	PitchDeg     float64 `json:"pitch_deg"` // negative looks down
	TiltDeg      float64 `json:"tilt_deg"`  // downward angle, >= 0
	YawSpanDeg   float64 `json:"yaw_span_deg"`
	PitchSpanDeg float64 `json:"pitch_span_deg"`

	LocalOffsetM  Offset `json:"local_offset_m"`
	LocalOffsetMm Offset `json:"local_offset_mm"`
}

// Verdict is the engine result. In auto mode an infeasible verdict has no
// Solution. In manual mode Solution is always set and Feasible tells
// whether it covers the box.
type Verdict struct {
	Mode          DistanceMode     `json:"mode"`
	Feasible      bool             `json:"feasible"`
	Solution      *FrustumSolution `json:"solution,omitempty"`
	StartDistance float64          `json:"start_distance"`
	Iterations    int              `json:"iterations"`
}

// StartDistance is the first distance the auto scan tries: the distance at
// which the box width alone fills the horizontal aperture at zero pitch,
// floored at opts.MinStart.
func StartDistance(box Box, fov FieldOfView, opts SearchOptions) float64 {
	opts = opts.WithDefaults()
	byWidth := (box.Width / 2) / math.Tan(fov.horizontalRad()/2)
	return math.Max(byWidth, opts.MinStart)
}

// ComputeCoverage finds (auto) or checks (manual) the mounting distance at
// which the sensor's field of view contains every corner of the box.
// Errors are returned only for invalid inputs; an uncovered box is a
// Verdict with Feasible false.
func ComputeCoverage(box Box, fov FieldOfView, mount MountingParameters, opts SearchOptions) (Verdict, error) {
	if err := box.Validate(); err != nil {
		return Verdict{}, err
	}
	if err := fov.Validate(); err != nil {
		return Verdict{}, err
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Verdict{}, err
	}
	mode, err := ParseDistanceMode(string(mount.Mode))
	if err != nil {
		return Verdict{}, err
	}

	height := mount.ClampedHeight()
	corners := box.Corners()
	start := StartDistance(box, fov, opts)

	if mode == DistanceManual {
		d := mount.ManualDistanceM
		if !isFinite(d) || d <= 0 {
			return Verdict{}, fmt.Errorf("%w: %g", ErrInvalidDistance, d)
		}
		pos := r3.Vector{X: 0, Y: height, Z: -d}
		span := measureSpan(corners, pos)
		covered := span.fits(fov, opts.Tolerance)
		sol := buildSolution(box, fov, corners, pos, d, span, opts)
		return Verdict{
			Mode:          DistanceManual,
			Feasible:      covered,
			Solution:      &sol,
			StartDistance: start,
			Iterations:    1,
		}, nil
	}

	v := Verdict{Mode: DistanceAuto, StartDistance: start}
	for i := 0; ; i++ {
		d := start + float64(i)*opts.Step
		if d > opts.Ceiling {
			break
		}
		v.Iterations++
		pos := r3.Vector{X: 0, Y: height, Z: -d}
		span := measureSpan(corners, pos)
		if !span.fits(fov, opts.Tolerance) {
			continue
		}
		sol := buildSolution(box, fov, corners, pos, d, span, opts)
		v.Feasible = true
		v.Solution = &sol
		return v, nil
	}
	return v, nil
}

// angularSpan is the bounding cone of the corners seen from a camera
// position, in radians.
type angularSpan struct {
	minYaw, maxYaw     float64
	minPitch, maxPitch float64
}

// cornerAngles returns yaw (about the vertical axis, 0 along +z) and pitch
// (above the horizontal plane) of p seen from pos.
func cornerAngles(p, pos r3.Vector) (yaw, pitch float64) {
	rel := p.Sub(pos)
	horizontal := math.Hypot(rel.X, rel.Z)
	return math.Atan2(rel.X, rel.Z), math.Atan2(rel.Y, horizontal)
}

func measureSpan(corners [8]r3.Vector, pos r3.Vector) angularSpan {
	s := angularSpan{
		minYaw: math.Inf(1), maxYaw: math.Inf(-1),
		minPitch: math.Inf(1), maxPitch: math.Inf(-1),
	}
	for _, c := range corners {
		yaw, pitch := cornerAngles(c, pos)
		s.minYaw = math.Min(s.minYaw, yaw)
		s.maxYaw = math.Max(s.maxYaw, yaw)
		s.minPitch = math.Min(s.minPitch, pitch)
		s.maxPitch = math.Max(s.maxPitch, pitch)
	}
	return s
}

func (s angularSpan) yawSpan() float64   { return s.maxYaw - s.minYaw }
func (s angularSpan) pitchSpan() float64 { return s.maxPitch - s.minPitch }

// center is the auto-aim direction: the angular midpoint of the cone.
func (s angularSpan) center() (yaw, pitch float64) {
	return (s.minYaw + s.maxYaw) / 2, (s.minPitch + s.maxPitch) / 2
}

func (s angularSpan) fits(fov FieldOfView, tolerance float64) bool {
	return s.yawSpan() <= fov.horizontalRad()+tolerance &&
		s.pitchSpan() <= fov.verticalRad()+tolerance
}

// directionFromAngles is the unit vector for a yaw/pitch pair.
func directionFromAngles(yaw, pitch float64) r3.Vector {
	return r3.Vector{
		X: math.Sin(yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: math.Cos(yaw) * math.Cos(pitch),
	}.Normalize()
}

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }
func radToDeg(r float64) float64 { return r * 180.0 / math.Pi }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
