package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Segment is a line segment in world coordinates.
type Segment struct {
	From r3.Vector `json:"from"`
	To   r3.Vector `json:"to"`
}

// forward is the sensor's local viewing axis.
var forward = r3.Vector{X: 0, Y: 0, Z: 1}

// FrustumCorners returns the near and far rectangles in world coordinates,
// each ordered top-left, top-right, bottom-right, bottom-left as seen
// from the sensor.
func FrustumCorners(sol FrustumSolution) (near, far [4]r3.Vector) {
	local := func(w, h, d float64) [4]r3.Vector {
		hw, hh := w/2, h/2
		return [4]r3.Vector{
			{X: -hw, Y: hh, Z: d},
			{X: hw, Y: hh, Z: d},
			{X: hw, Y: -hh, Z: d},
			{X: -hw, Y: -hh, Z: d},
		}
	}
	ln := local(sol.NearWidth, sol.NearHeight, sol.Near)
	lf := local(sol.FarWidth, sol.FarHeight, sol.Far)
	for i := 0; i < 4; i++ {
		near[i] = toWorld(sol, ln[i])
		far[i] = toWorld(sol, lf[i])
	}
	return near, far
}

// Wireframe returns the 16 segments of the sensor gizmo: four rays from the
// camera to the near corners, the near rectangle, the four near-to-far
// edges and the far rectangle.
func Wireframe(sol FrustumSolution) []Segment {
	near, far := FrustumCorners(sol)
	apex := sol.CameraPosition

	segs := make([]Segment, 0, 16)
	for i := 0; i < 4; i++ {
		segs = append(segs, Segment{From: apex, To: near[i]})
	}
	for i := 0; i < 4; i++ {
		segs = append(segs, Segment{From: near[i], To: near[(i+1)%4]})
	}
	for i := 0; i < 4; i++ {
		segs = append(segs, Segment{From: near[i], To: far[i]})
	}
	for i := 0; i < 4; i++ {
		segs = append(segs, Segment{From: far[i], To: far[(i+1)%4]})
	}
	return segs
}

// toWorld maps a point in the sensor frame (+z forward) to world
// coordinates using the shortest rotation from +z onto the view direction.
func toWorld(sol FrustumSolution, p r3.Vector) r3.Vector {
	return rotateOnto(forward, sol.ViewDirection, p).Add(sol.CameraPosition)
}

// rotateOnto rotates p by the minimal rotation taking unit vector from onto
// unit vector to (Rodrigues' formula).
func rotateOnto(from, to, p r3.Vector) r3.Vector {
	cosT := from.Dot(to)
	axis := from.Cross(to)
	sinT := axis.Norm()
	if sinT < 1e-12 {
		if cosT > 0 {
			return p
		}
		// Opposite vectors: half turn about y.
		return r3.Vector{X: -p.X, Y: p.Y, Z: -p.Z}
	}
	k := axis.Mul(1 / sinT)
	return p.Mul(cosT).
		Add(k.Cross(p).Mul(sinT)).
		Add(k.Mul(k.Dot(p) * (1 - cosT)))
}

// Angles returns the yaw and pitch (degrees) of direction v, using the same
// convention as the coverage search.
func Angles(v r3.Vector) (yawDeg, pitchDeg float64) {
	return radToDeg(math.Atan2(v.X, v.Z)), radToDeg(math.Atan2(v.Y, math.Hypot(v.X, v.Z)))
}
