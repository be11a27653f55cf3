package coord

import "math"

// Quaternion is a rotation W + Xi + Yj + Zk.
type Quaternion struct{ W, X, Y, Z float64 }

// Identity is the zero rotation.
var Identity = Quaternion{W: 1}

// AxisAngle returns the rotation of theta radians about axis.
//
// axis does not need to be normalized.
func AxisAngle(axis Point, theta float64) Quaternion {
	n := axis.Norm()
	if n == 0 {
		return Identity
	}
	s := math.Sin(theta/2) / n
	return Quaternion{
		W: math.Cos(theta / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// Mul composes q then r (the Hamilton product q*r).
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns q scaled to unit length. The zero quaternion becomes
// Identity.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Conjugate is the inverse of a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Rotate applies q to the vector p.
func (q Quaternion) Rotate(p Point) Point {
	r := q.Mul(Quaternion{X: p.X, Y: p.Y, Z: p.Z}).Mul(q.Conjugate())
	return Point{X: r.X, Y: r.Y, Z: r.Z}
}

// ApproxEqual reports whether q and r describe the same rotation within tol.
// q and -q are the same rotation.
func (q Quaternion) ApproxEqual(r Quaternion, tol float64) bool {
	same := math.Abs(q.W-r.W) <= tol && math.Abs(q.X-r.X) <= tol &&
		math.Abs(q.Y-r.Y) <= tol && math.Abs(q.Z-r.Z) <= tol
	if same {
		return true
	}
	return math.Abs(q.W+r.W) <= tol && math.Abs(q.X+r.X) <= tol &&
		math.Abs(q.Y+r.Y) <= tol && math.Abs(q.Z+r.Z) <= tol
}
