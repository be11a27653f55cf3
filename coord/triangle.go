package coord

import (
	"math"
)

const (
	// Epsilon is the max error when checking containment.
	Epsilon   = 0.001
	epsilonSq = Epsilon * Epsilon
)

// Triangle is a facet of a probed surface.
type Triangle struct{ A, B, C Point }

// ContainsXY returns true if the 2D projection of the triangle
// has the point x,y (within Epsilon of an edge counts).
func (t Triangle) ContainsXY(x, y float64) bool {
	p := Point{X: x, Y: y}
	if !t.boundsXY(p) {
		return false
	}
	// either winding
	s1, s2, s3 := edgeSide(t.A, t.B, p), edgeSide(t.B, t.C, p), edgeSide(t.C, t.A, p)
	if (s1 >= 0 && s2 >= 0 && s3 >= 0) || (s1 <= 0 && s2 <= 0 && s3 <= 0) {
		return true
	}
	return segmentDistSqXY(t.A, t.B, p) <= epsilonSq ||
		segmentDistSqXY(t.B, t.C, p) <= epsilonSq ||
		segmentDistSqXY(t.C, t.A, p) <= epsilonSq
}

// Z will give the Z-coordinate on the plane defined by the triangle
// where it intersects x,y.
func (t Triangle) Z(x, y float64) float64 {
	n := t.C.Sub(t.A).Cross(t.B.Sub(t.A))
	d := n.Dot(t.C)
	return (d - n.X*x - n.Y*y) / n.Z
}

// adapted from https://totologic.blogspot.com/2014/01/accurate-point-in-triangle-test.html

func edgeSide(a, b, p Point) float64 {
	return (b.Y-a.Y)*(p.X-a.X) + (a.X-b.X)*(p.Y-a.Y)
}

func (t Triangle) boundsXY(p Point) bool {
	minX := math.Min(t.A.X, math.Min(t.B.X, t.C.X)) - Epsilon
	maxX := math.Max(t.A.X, math.Max(t.B.X, t.C.X)) + Epsilon
	minY := math.Min(t.A.Y, math.Min(t.B.Y, t.C.Y)) - Epsilon
	maxY := math.Max(t.A.Y, math.Max(t.B.Y, t.C.Y)) + Epsilon
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

func segmentDistSqXY(a, b, p Point) float64 {
	abX, abY := b.X-a.X, b.Y-a.Y
	apX, apY := p.X-a.X, p.Y-a.Y
	lenSq := abX*abX + abY*abY
	dot := (apX*abX + apY*abY) / lenSq
	switch {
	case dot < 0:
		return apX*apX + apY*apY
	case dot <= 1:
		return apX*apX + apY*apY - dot*dot*lenSq
	}
	bpX, bpY := p.X-b.X, p.Y-b.Y
	return bpX*bpX + bpY*bpY
}
