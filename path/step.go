// Package path expands machine moves into discrete position + orientation
// samples for simulation and visualization.
//
// Every function here is pure; concurrent calls are safe as long as each
// call owns its inputs.
package path

import (
	"fmt"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/limits"
)

// StepTolerance is the per-component tolerance used by Step.Equal, in
// millimeters for position and unitless for orientation.
//
// Steps used to be compared exactly, which made the forced endpoint depend on
// rounding noise from the interpolation.
const StepTolerance = 1e-9

// Step is a single sample of a path: where the tool is and how it is
// oriented.
type Step struct {
	Position    coord.Point
	Orientation coord.Quaternion
}

// Equal reports whether s and o are the same sample within StepTolerance.
func (s Step) Equal(o Step) bool {
	return s.Position.ApproxEqual(o.Position, StepTolerance) &&
		s.Orientation.ApproxEqual(o.Orientation, StepTolerance)
}

func (s Step) String() string {
	q := s.Orientation
	return fmt.Sprintf("position: (%g, %g, %g) orientation: (%g, %g, %g, %g)",
		s.Position.X, s.Position.Y, s.Position.Z, q.W, q.X, q.Y, q.Z)
}

var (
	unitX = coord.Point{X: 1}
	unitY = coord.Point{Y: 1}
	unitZ = coord.Point{Z: 1}
)

// StepFromPose converts a pose into a Step, visiting axes in the order given.
//
// A, B and C are composed as rotations about X, Y and Z, each applied only
// when non-zero. U, V and W have no Cartesian mapping; a non-zero value on an
// available auxiliary axis is ErrUnsupported.
func StepFromPose(p coord.Pose, axes limits.AvailableAxes) (Step, error) {
	s := Step{Orientation: coord.Identity}
	for _, a := range axes.Axes() {
		switch a {
		case coord.X:
			s.Position.X = p.X.Millimeters()
		case coord.Y:
			s.Position.Y = p.Y.Millimeters()
		case coord.Z:
			s.Position.Z = p.Z.Millimeters()
		case coord.A:
			if p.A != 0 {
				s.Orientation = s.Orientation.Mul(coord.AxisAngle(unitX, p.A.Radians()).Normalize())
			}
		case coord.B:
			if p.B != 0 {
				s.Orientation = s.Orientation.Mul(coord.AxisAngle(unitY, p.B.Radians()).Normalize())
			}
		case coord.C:
			if p.C != 0 {
				s.Orientation = s.Orientation.Mul(coord.AxisAngle(unitZ, p.C.Radians()).Normalize())
			}
		case coord.U, coord.V, coord.W:
			if p.Get(a) != 0 {
				return Step{}, fmt.Errorf("%w: axis %s has no cartesian mapping", coord.ErrUnsupported, a)
			}
		default:
			return Step{}, fmt.Errorf("%w: axis %d", coord.ErrInvariant, a)
		}
	}
	s.Orientation = s.Orientation.Normalize()
	return s, nil
}
