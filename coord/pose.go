package coord

import (
	"fmt"
	"strings"

	"github.com/mastercactapus/gcam/units"
)

// Pose is a commanded machine position: one value per axis.
type Pose struct {
	X, Y, Z units.Length
	A, B, C units.Angle
	U, V, W units.Length
}

// Sub returns the per-axis delta p - o.
func (p Pose) Sub(o Pose) Pose {
	return Pose{
		X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z,
		A: p.A - o.A, B: p.B - o.B, C: p.C - o.C,
		U: p.U - o.U, V: p.V - o.V, W: p.W - o.W,
	}
}

// Add returns the per-axis sum p + o.
func (p Pose) Add(o Pose) Pose {
	return Pose{
		X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z,
		A: p.A + o.A, B: p.B + o.B, C: p.C + o.C,
		U: p.U + o.U, V: p.V + o.V, W: p.W + o.W,
	}
}

// Scale multiplies every axis by f.
func (p Pose) Scale(f float64) Pose {
	return Pose{
		X: p.X * units.Length(f), Y: p.Y * units.Length(f), Z: p.Z * units.Length(f),
		A: p.A * units.Angle(f), B: p.B * units.Angle(f), C: p.C * units.Angle(f),
		U: p.U * units.Length(f), V: p.V * units.Length(f), W: p.W * units.Length(f),
	}
}

// Lerp moves from p towards target by t (0 is p, 1 is target).
func (p Pose) Lerp(target Pose, t float64) Pose {
	return p.Add(target.Sub(p).Scale(t))
}

// Get returns the raw value of an axis: millimeters for linear axes and
// radians for rotary ones.
func (p Pose) Get(a Axis) float64 {
	switch a {
	case X:
		return float64(p.X)
	case Y:
		return float64(p.Y)
	case Z:
		return float64(p.Z)
	case A:
		return float64(p.A)
	case B:
		return float64(p.B)
	case C:
		return float64(p.C)
	case U:
		return float64(p.U)
	case V:
		return float64(p.V)
	case W:
		return float64(p.W)
	}
	return 0
}

// Offset returns the value of a single axis as an Offset.
func (p Pose) Offset(a Axis) Offset {
	if a.IsRotary() {
		return R(a, units.Angle(p.Get(a)))
	}
	return L(a, units.Length(p.Get(a)))
}

// With returns a copy of p with the axis in o set to its value.
func (p Pose) With(o Offset) (Pose, error) {
	if err := o.Validate(); err != nil {
		return p, err
	}
	switch o.Axis {
	case X:
		p.X = o.length
	case Y:
		p.Y = o.length
	case Z:
		p.Z = o.length
	case A:
		p.A = o.angle
	case B:
		p.B = o.angle
	case C:
		p.C = o.angle
	case U:
		p.U = o.length
	case V:
		p.V = o.length
	case W:
		p.W = o.length
	default:
		return p, fmt.Errorf("%w: axis %d", ErrInvariant, o.Axis)
	}
	return p, nil
}

// Translate returns a copy of p with o added to its axis.
func (p Pose) Translate(o Offset) (Pose, error) {
	var delta Pose
	delta, err := delta.With(o)
	if err != nil {
		return p, err
	}
	return p.Add(delta), nil
}

// Point returns the X, Y and Z components in millimeters.
func (p Pose) Point() Point {
	return Point{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

func (p Pose) String() string {
	var b strings.Builder
	for i, a := range Axes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Offset(a).String())
	}
	return b.String()
}
