package coord

import (
	"fmt"

	"github.com/mastercactapus/gcam/units"
)

// Axis identifies one of the nine machine axes.
type Axis byte

const (
	X Axis = iota
	Y
	Z
	A
	B
	C
	U
	V
	W
)

// Axes lists every axis in canonical order.
var Axes = [...]Axis{X, Y, Z, A, B, C, U, V, W}

const axisLetters = "XYZABCUVW"

// ParseAxis returns the axis for a word letter.
func ParseAxis(letter byte) (Axis, error) {
	for i := 0; i < len(axisLetters); i++ {
		if axisLetters[i] == letter {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown axis %q", ErrInvalidInput, letter)
}

// Letter returns the G-code word letter for the axis.
func (a Axis) Letter() byte {
	if !a.Valid() {
		return '?'
	}
	return axisLetters[a]
}

func (a Axis) String() string { return string(a.Letter()) }

func (a Axis) Valid() bool { return a <= W }

// IsRotary is true for A, B and C.
func (a Axis) IsRotary() bool { return a == A || a == B || a == C }

// IsLinear is true for X, Y, Z, U, V and W.
func (a Axis) IsLinear() bool { return a.Valid() && !a.IsRotary() }

// IsAuxiliary is true for U, V and W, whose Cartesian mapping is undefined.
func (a Axis) IsAuxiliary() bool { return a == U || a == V || a == W }

// An Offset is a requested value for a single axis.
type Offset struct {
	Axis Axis

	length units.Length
	angle  units.Angle
	rotary bool
}

// L returns a linear offset.
func L(axis Axis, v units.Length) Offset { return Offset{Axis: axis, length: v} }

// R returns a rotary offset.
func R(axis Axis, v units.Angle) Offset { return Offset{Axis: axis, angle: v, rotary: true} }

// Length returns the linear value of the offset.
func (o Offset) Length() units.Length { return o.length }

// Angle returns the rotary value of the offset.
func (o Offset) Angle() units.Angle { return o.angle }

// Validate checks the value kind matches the axis kind.
func (o Offset) Validate() error {
	switch {
	case !o.Axis.Valid():
		return fmt.Errorf("%w: unknown axis %d", ErrInvalidInput, o.Axis)
	case o.Axis.IsRotary() && !o.rotary:
		return fmt.Errorf("%w: axis %s takes an angle", ErrInvalidInput, o.Axis)
	case o.Axis.IsLinear() && o.rotary:
		return fmt.Errorf("%w: axis %s takes a length", ErrInvalidInput, o.Axis)
	}
	return nil
}

func (o Offset) String() string {
	if o.rotary {
		return o.Axis.String() + o.angle.String()
	}
	return o.Axis.String() + o.length.String()
}
