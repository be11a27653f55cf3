package meshlevel

import (
	"fmt"

	"github.com/fogleman/delaunay"
	"github.com/mastercactapus/gcam/coord"
)

// ErrTooFewPoints is returned when a mesh cannot be triangulated.
var ErrTooFewPoints = fmt.Errorf("%w: need at least 3 points to create a mesh", coord.ErrInvalidInput)

// Mesh is a triangulated height map built from probed points.
type Mesh struct {
	min, max  coord.Point
	triangles []coord.Triangle
}

// OffsetFrom returns a copy of points with z subtracted, turning probed
// heights into offsets relative to a reference height.
func OffsetFrom(z float64, points []coord.Point) []coord.Point {
	res := make([]coord.Point, len(points))
	for i, p := range points {
		p.Z -= z
		res[i] = p
	}
	return res
}

// mergeXY returns the distinct XY positions of points in order of first
// appearance, with the mean height probed at each.
func mergeXY(points []coord.Point) ([]delaunay.Point, map[delaunay.Point]float64) {
	count := make(map[delaunay.Point]int, len(points))
	heights := make(map[delaunay.Point]float64, len(points))
	res := make([]delaunay.Point, 0, len(points))
	for _, p := range points {
		key := delaunay.Point{X: p.X, Y: p.Y}
		if count[key] == 0 {
			res = append(res, key)
		}
		count[key]++
		heights[key] += p.Z
	}
	for k, n := range count {
		heights[k] /= float64(n)
	}
	return res, heights
}

// NewMesh triangulates points by their XY position. Repeated XY positions
// are averaged into one vertex.
func NewMesh(points []coord.Point) (*Mesh, error) {
	vertices, heights := mergeXY(points)
	if len(vertices) < 3 {
		return nil, ErrTooFewPoints
	}

	tri, err := delaunay.Triangulate(vertices)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", coord.ErrInvalidInput, err)
	}

	mesh := &Mesh{
		min: coord.Point{X: vertices[0].X, Y: vertices[0].Y},
		max: coord.Point{X: vertices[0].X, Y: vertices[0].Y},
	}
	for _, v := range vertices {
		mesh.min.X, mesh.max.X = minMax(mesh.min.X, mesh.max.X, v.X)
		mesh.min.Y, mesh.max.Y = minMax(mesh.min.Y, mesh.max.Y, v.Y)
	}

	vertex := func(i int) coord.Point {
		d := tri.Points[tri.Triangles[i]]
		return coord.Point{X: d.X, Y: d.Y, Z: heights[d]}
	}
	mesh.triangles = make([]coord.Triangle, 0, len(tri.Triangles)/3)
	for i := 0; i < len(tri.Triangles); i += 3 {
		mesh.triangles = append(mesh.triangles, coord.Triangle{
			A: vertex(i),
			B: vertex(i + 1),
			C: vertex(i + 2),
		})
	}

	return mesh, nil
}

func minMax(lo, hi, v float64) (float64, float64) {
	if v < lo {
		lo = v
	}
	if v > hi {
		hi = v
	}
	return lo, hi
}

// Bounds returns the XY corners of the probed area.
func (m *Mesh) Bounds() (min, max coord.Point) { return m.min, m.max }

func (m *Mesh) Triangles() []coord.Triangle {
	res := make([]coord.Triangle, len(m.triangles))
	copy(res, m.triangles)
	return res
}

// OffsetZ returns the interpolated height at x,y, or false outside the mesh.
func (m *Mesh) OffsetZ(x, y float64) (bool, float64) {
	if x < m.min.X-coord.Epsilon || m.max.X+coord.Epsilon < x ||
		y < m.min.Y-coord.Epsilon || m.max.Y+coord.Epsilon < y {
		return false, 0
	}
	for _, t := range m.triangles {
		if t.ContainsXY(x, y) {
			return true, t.Z(x, y)
		}
	}

	return false, 0
}
