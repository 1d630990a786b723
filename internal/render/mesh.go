package render

import (
	"bufio"
	"fmt"
	"io"
	"math"

	sdfrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

// DefaultMeshCells is the marching cubes resolution per solid.
const DefaultMeshCells = 48

// Sensor body size used for the mesh (m): width, height, length along the view axis.
var sensorBody = v3.Vec{X: 0.12, Y: 0.04, Z: 0.06}

// Triangle is one facet in world coordinates.
type Triangle [3]r3.Vector

// Normal is the unit facet normal (right-hand winding).
func (t Triangle) Normal() r3.Vector {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if n.Norm() == 0 {
		return r3.Vector{}
	}
	return n.Normalize()
}

// Mesh returns the facets of the volume, the sensor body and the frustum.
// The two solids are tessellated with marching cubes; the frustum is a
// closed six-sided hull built from its corners.
func Mesh(box geometry.Box, sol geometry.FrustumSolution, cells int) ([]Triangle, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	volume, err := sdf.Box3D(v3.Vec{X: box.Width, Y: box.Height, Z: box.Depth}, 0)
	if err != nil {
		return nil, fmt.Errorf("volume solid: %w", err)
	}
	// Box3D is centered on the origin; the volume's floor sits at y=0.
	volume = sdf.Transform3D(volume, sdf.Translate3d(v3.Vec{X: 0, Y: box.Height / 2, Z: 0}))

	body, err := sdf.Box3D(sensorBody, 0)
	if err != nil {
		return nil, fmt.Errorf("sensor solid: %w", err)
	}
	yaw, pitch := geometry.Angles(sol.ViewDirection)
	pose := sdf.Translate3d(v3.Vec{X: sol.CameraPosition.X, Y: sol.CameraPosition.Y, Z: sol.CameraPosition.Z}).
		Mul(sdf.RotateY(degToRad(yaw))).
		Mul(sdf.RotateX(-degToRad(pitch)))
	body = sdf.Transform3D(body, pose)

	var out []Triangle
	for _, s := range []sdf.SDF3{volume, body} {
		for _, tri := range sdfrender.ToTriangles(s, sdfrender.NewMarchingCubesUniform(cells)) {
			var t Triangle
			for j := 0; j < 3; j++ {
				v := tri[j]
				t[j] = r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
			}
			out = append(out, t)
		}
	}
	return append(out, frustumHull(sol)...), nil
}

// frustumHull returns 12 outward-facing triangles for the truncated pyramid.
func frustumHull(sol geometry.FrustumSolution) []Triangle {
	n, f := geometry.FrustumCorners(sol)
	quad := func(a, b, c, d r3.Vector) []Triangle {
		return []Triangle{{a, b, c}, {a, c, d}}
	}
	// Caps and sides wind so normals point out of the hull.
	var out []Triangle
	out = append(out, quad(n[0], n[1], n[2], n[3])...)
	out = append(out, quad(f[0], f[3], f[2], f[1])...)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		out = append(out, quad(n[i], f[i], f[j], n[j])...)
	}
	return out
}

// WriteSTL writes the mesh as ASCII STL.
func WriteSTL(w io.Writer, box geometry.Box, sol geometry.FrustumSolution, cells int) (int, error) {
	tris, err := Mesh(box, sol, cells)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "solid depthmount")
	for _, t := range tris {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range t {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintln(bw, "endsolid depthmount")
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write stl: %w", err)
	}
	return len(tris), nil
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
