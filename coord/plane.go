package coord

import (
	"fmt"
	"strings"
)

// Plane is an arc / canned cycle plane selection.
type Plane byte

const (
	PlaneXY Plane = iota
	PlaneZX
	PlaneYZ
	PlaneUV
	PlaneWU
	PlaneVW
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneZX:
		return "ZX"
	case PlaneYZ:
		return "YZ"
	case PlaneUV:
		return "UV"
	case PlaneWU:
		return "WU"
	case PlaneVW:
		return "VW"
	}
	return fmt.Sprintf("Plane(%d)", byte(p))
}

func (p *Plane) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "XY", "G17":
		*p = PlaneXY
	case "ZX", "XZ", "G18":
		*p = PlaneZX
	case "YZ", "G19":
		*p = PlaneYZ
	case "UV", "G17.1":
		*p = PlaneUV
	case "WU", "UW", "G18.1":
		*p = PlaneWU
	case "VW", "G19.1":
		*p = PlaneVW
	default:
		return fmt.Errorf("%w: unknown plane %q", ErrInvalidInput, b)
	}
	return nil
}

// Auxiliary is true for the U/V/W planes.
func (p Plane) Auxiliary() bool { return p == PlaneUV || p == PlaneWU || p == PlaneVW }

// Normal returns the unit normal of a primary plane.
func (p Plane) Normal() (Point, error) {
	switch p {
	case PlaneXY:
		return Point{Z: 1}, nil
	case PlaneZX:
		return Point{Y: 1}, nil
	case PlaneYZ:
		return Point{X: 1}, nil
	}
	return Point{}, fmt.Errorf("%w: plane %s has no Cartesian normal", ErrUnsupported, p)
}

// Helix returns the axis orthogonal to a primary plane.
func (p Plane) Helix() (Axis, error) {
	switch p {
	case PlaneXY:
		return Z, nil
	case PlaneZX:
		return Y, nil
	case PlaneYZ:
		return X, nil
	}
	return 0, fmt.Errorf("%w: plane %s has no helix axis", ErrUnsupported, p)
}

// InPlane returns the two in-plane axes of a primary plane, ordered so that a
// positive rotation from the first towards the second is counter-clockwise
// when viewed from the positive helix axis.
func (p Plane) InPlane() (Axis, Axis, error) {
	switch p {
	case PlaneXY:
		return X, Y, nil
	case PlaneZX:
		return Z, X, nil
	case PlaneYZ:
		return Y, Z, nil
	}
	return 0, 0, fmt.Errorf("%w: plane %s is not a primary plane", ErrUnsupported, p)
}

// PlaneFromNormal selects the primary plane whose normal component is set.
func PlaneFromNormal(n Point) (Plane, error) {
	switch {
	case n.Z == 1:
		return PlaneXY, nil
	case n.Y == 1:
		return PlaneZX, nil
	case n.X == 1:
		return PlaneYZ, nil
	}
	return 0, fmt.Errorf("%w: unsupported arc plane normal %v", ErrInvalidInput, n)
}

// Direction is an arc direction viewed from the positive helix axis.
type Direction byte

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	if d == Clockwise {
		return "Clockwise"
	}
	return "Counter-Clockwise"
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "cw", "clockwise", "g2":
		*d = Clockwise
	case "ccw", "counterclockwise", "counter-clockwise", "g3":
		*d = CounterClockwise
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, b)
	}
	return nil
}
