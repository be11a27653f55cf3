package coord

import (
	"math"
)

// Point is a Cartesian position in millimeters.
type Point struct{ X, Y, Z float64 }

// Equal reports exact equality.
func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y && p.Z == b.Z
}

// ApproxEqual reports whether every component of p is within tol of b.
func (p Point) ApproxEqual(b Point, tol float64) bool {
	return math.Abs(p.X-b.X) <= tol && math.Abs(p.Y-b.Y) <= tol && math.Abs(p.Z-b.Z) <= tol
}

func (p Point) Cross(op Point) Point {
	return Point{
		p.Y*op.Z - p.Z*op.Y,
		p.Z*op.X - p.X*op.Z,
		p.X*op.Y - p.Y*op.X,
	}
}
func (p Point) Dot(op Point) float64 {
	return p.X*op.X + p.Y*op.Y + p.Z*op.Z
}
func (p Point) Mul(val float64) Point {
	p.X *= val
	p.Y *= val
	p.Z *= val
	return p
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	p.Z += target.Z
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	p.Z -= target.Z
	return p
}

// Norm is the length of p as a vector.
func (p Point) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Distance returns the 3D distance between p and target.
func (p Point) Distance(target Point) float64 {
	return target.Sub(p).Norm()
}

// DistanceXY will return the 2D distance to p from (x,y).
func (p Point) DistanceXY(x, y float64) float64 {
	return math.Hypot(x-p.X, y-p.Y)
}
