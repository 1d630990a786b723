package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// PlaneExtent returns the width and height of the frustum cross-section at
// distance planeDist along the view axis.
// Formula: size = 2 × tan(fov/2) × planeDist
func PlaneExtent(fov FieldOfView, planeDist float64) (width, height float64) {
	width = 2 * math.Tan(fov.horizontalRad()/2) * planeDist
	height = 2 * math.Tan(fov.verticalRad()/2) * planeDist
	return width, height
}

// buildSolution aims the camera at the cone center and derives the near/far
// planes that bracket the box, plus the local-frame report.
func buildSolution(box Box, fov FieldOfView, corners [8]r3.Vector, pos r3.Vector, distance float64, span angularSpan, opts SearchOptions) FrustumSolution {
	yaw, pitch := span.center()
	dir := directionFromAngles(yaw, pitch)

	minProj, maxProj := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		p := c.Sub(pos).Dot(dir)
		minProj = math.Min(minProj, p)
		maxProj = math.Max(maxProj, p)
	}

	near := math.Max(opts.MinNear, minProj-opts.Margin)
	far := math.Max(near+opts.MinDepthSpan, maxProj+opts.Margin)
	nearW, nearH := PlaneExtent(fov, near)
	farW, farH := PlaneExtent(fov, far)

	local := localOffset(box, pos)
	pitchDeg := radToDeg(pitch)

	return FrustumSolution{
		CameraPosition: pos,
		ViewDirection:  dir,
		Distance:       distance,
		Near:           near,
		Far:            far,
		NearWidth:      nearW,
		NearHeight:     nearH,
		FarWidth:       farW,
		FarHeight:      farH,
		NearestDepth:   minProj,
		FarthestDepth:  maxProj,
		YawDeg:         radToDeg(yaw),
		PitchDeg:       pitchDeg,
		TiltDeg:        TiltFromPitch(pitchDeg),
		YawSpanDeg:     radToDeg(span.yawSpan()),
		PitchSpanDeg:   radToDeg(span.pitchSpan()),
		LocalOffsetM:   local,
		LocalOffsetMm:  Offset{X: local.X * 1000, Y: local.Y * 1000, Z: local.Z * 1000},
	}
}

// localOffset expresses pos relative to the box's reference corner:
// x and z point from the camera toward the corner, y is height above it.
func localOffset(box Box, pos r3.Vector) Offset {
	origin := box.ReferenceCorner()
	return Offset{
		X: origin.X - pos.X,
		Y: pos.Y - origin.Y,
		Z: origin.Z - pos.Z,
	}
}

// TiltFromPitch converts a signed pitch (negative = looking down) to the
// downward tilt shown to operators. Level or upward views report zero.
func TiltFromPitch(pitchDeg float64) float64 {
	return math.Max(0, -pitchDeg)
}
