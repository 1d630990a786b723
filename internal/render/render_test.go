package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

var (
	testBox = geometry.Box{Width: 4, Depth: 6, Height: 3}
	testFOV = geometry.FieldOfView{HorizontalDeg: 87, VerticalDeg: 58}
)

func solve(t *testing.T) geometry.FrustumSolution {
	t.Helper()
	v, err := geometry.ComputeCoverage(testBox, testFOV, geometry.MountingParameters{HeightM: 2.2}, geometry.DefaultSearchOptions())
	require.NoError(t, err)
	require.NotNil(t, v.Solution)
	return *v.Solution
}

// ---------- Views ----------

func TestSaveViews(t *testing.T) {
	sol := solve(t)
	files, err := SaveViews(filepath.Join(t.TempDir(), "court.png"), testBox, sol)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.True(t, strings.HasSuffix(files[0], "court_side.png"))
	assert.True(t, strings.HasSuffix(files[1], "court_top.png"))
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestSaveViews_NoExtension(t *testing.T) {
	_, err := SaveViews(filepath.Join(t.TempDir(), "court"), testBox, solve(t))
	assert.Error(t, err)
}

func TestSegments(t *testing.T) {
	segs := Segments(testBox, solve(t))
	require.Len(t, segs, 28)

	frustum := 0
	for _, s := range segs[:12] {
		assert.False(t, s.Frustum)
		// Box edges are axis-aligned and match one of the box dimensions.
		l := s.To.Sub(s.From).Norm()
		assert.Truef(t, l == testBox.Width || l == testBox.Depth || l == testBox.Height, "edge length %v", l)
	}
	for _, s := range segs {
		if s.Frustum {
			frustum++
		}
	}
	assert.Equal(t, 16, frustum)
}

// ---------- Chart ----------

func TestWriteSweepChart(t *testing.T) {
	samples, err := geometry.CalculateSweep(testBox, testFOV, geometry.MountingParameters{HeightM: 2.2}, geometry.DefaultSweepPlan(testBox, testFOV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSweepChart(&buf, "sprint-lane / D435", samples, testFOV))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "yaw span")
	assert.Contains(t, html, "vertical FOV")
}

func TestWriteSweepChart_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteSweepChart(&buf, "empty", nil, testFOV))
}

// ---------- Mesh ----------

func TestFrustumHull_OutwardNormals(t *testing.T) {
	sol := solve(t)
	hull := frustumHull(sol)
	require.Len(t, hull, 12)

	near, far := geometry.FrustumCorners(sol)
	var center r3.Vector
	for i := 0; i < 4; i++ {
		center = center.Add(near[i]).Add(far[i])
	}
	center = center.Mul(1.0 / 8)

	for i, tri := range hull {
		centroid := tri[0].Add(tri[1]).Add(tri[2]).Mul(1.0 / 3)
		assert.Positivef(t, tri.Normal().Dot(centroid.Sub(center)), "facet %d faces inward", i)
	}
}

func TestWriteSTL(t *testing.T) {
	sol := solve(t)
	var buf bytes.Buffer
	n, err := WriteSTL(&buf, testBox, sol, 16)
	require.NoError(t, err)

	assert.Greater(t, n, 12, "solids should add facets beyond the frustum hull")
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "solid depthmount\n"))
	assert.True(t, strings.HasSuffix(out, "endsolid depthmount\n"))
	assert.Equal(t, n, strings.Count(out, "facet normal"))
	assert.Equal(t, 3*n, strings.Count(out, "vertex "))
}

func TestTriangle_NormalDegenerate(t *testing.T) {
	p := r3.Vector{X: 1, Y: 1, Z: 1}
	assert.Equal(t, r3.Vector{}, Triangle{p, p, p}.Normal())
}
