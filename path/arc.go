package path

import (
	"fmt"
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/units"
)

// ArcTolerance is how far, in millimeters, the start and end radius of an arc
// may differ.
const ArcTolerance = 1e-8

var (
	// ErrUnsupportedPlane is returned for arcs outside the XY, ZX and YZ planes.
	ErrUnsupportedPlane = fmt.Errorf("%w: unsupported arc plane", coord.ErrInvalidInput)

	// ErrDegenerateArc is returned when the center is not equidistant from
	// the start and end points.
	ErrDegenerateArc = fmt.Errorf("%w: arc center not equidistant from start and end points", coord.ErrInvalidInput)
)

// arcFrame maps poses into a plane's (u, v, helix) coordinates and back.
type arcFrame struct {
	u, v, h coord.Axis
}

func newArcFrame(normal coord.Point) (arcFrame, error) {
	plane, err := coord.PlaneFromNormal(normal)
	if err != nil {
		return arcFrame{}, fmt.Errorf("%w: normal %v", ErrUnsupportedPlane, normal)
	}
	u, v, err := plane.InPlane()
	if err != nil {
		return arcFrame{}, fmt.Errorf("%w: %v", ErrUnsupportedPlane, err)
	}
	h, err := plane.Helix()
	if err != nil {
		return arcFrame{}, fmt.Errorf("%w: %v", ErrUnsupportedPlane, err)
	}
	return arcFrame{u: u, v: v, h: h}, nil
}

func pointAxis(p coord.Point, a coord.Axis) float64 {
	switch a {
	case coord.X:
		return p.X
	case coord.Y:
		return p.Y
	case coord.Z:
		return p.Z
	}
	return 0
}

// project returns the in-plane coordinates of p.
func (f arcFrame) project(p coord.Point) (float64, float64) {
	return pointAxis(p, f.u), pointAxis(p, f.v)
}

// place returns pose with its in-plane axes set to (u, v) and its helix axis
// set to h, all in millimeters.
func (f arcFrame) place(pose coord.Pose, u, v, h float64) (coord.Pose, error) {
	var err error
	for _, o := range []coord.Offset{
		coord.L(f.u, units.Millimeters(u)),
		coord.L(f.v, units.Millimeters(v)),
		coord.L(f.h, units.Millimeters(h)),
	} {
		pose, err = pose.With(o)
		if err != nil {
			return pose, err
		}
	}
	return pose, nil
}

// ExpandArc samples a circular or helical move from start to end about
// center.
//
// The plane is chosen by which component of normal is set (Z for XY, Y for
// ZX, X for YZ). turns counts full revolutions, 1 being a plain arc. When the
// start and end angles coincide the arc is a full circle. Rotary and auxiliary
// axes are interpolated linearly, as in ExpandLinear. The last step is always
// the end pose.
func ExpandArc(start, end coord.Pose, center coord.Point, dir coord.Direction, normal coord.Point, turns int, axes limits.AvailableAxes, density float64) (Path, error) {
	if err := checkDensity(density); err != nil {
		return Path{}, err
	}
	if turns < 1 {
		return Path{}, fmt.Errorf("%w: arc turns must be at least 1, got %d", coord.ErrInvalidInput, turns)
	}
	frame, err := newArcFrame(normal)
	if err != nil {
		return Path{}, err
	}
	sn, err := StepFromPose(end, axes)
	if err != nil {
		return Path{}, err
	}

	su, sv := frame.project(start.Point())
	eu, ev := frame.project(end.Point())
	cu, cv := frame.project(center)

	r := math.Hypot(su-cu, sv-cv)
	if math.Abs(r-math.Hypot(eu-cu, ev-cv)) > ArcTolerance {
		return Path{}, fmt.Errorf("%w: start radius %g, end radius %g", ErrDegenerateArc, r, math.Hypot(eu-cu, ev-cv))
	}

	startTheta := math.Atan2(sv-cv, su-cu)
	endTheta := math.Atan2(ev-cv, eu-cu)
	delta := endTheta - startTheta
	switch dir {
	case coord.Clockwise:
		if delta > 0 {
			delta -= 2 * math.Pi
		}
	case coord.CounterClockwise:
		if delta < 0 {
			delta += 2 * math.Pi
		}
	default:
		return Path{}, fmt.Errorf("%w: arc direction %d", coord.ErrInvariant, dir)
	}
	if delta == 0 {
		delta = 2 * math.Pi
		if dir == coord.Clockwise {
			delta = -delta
		}
	}
	sweep := 2*math.Pi*float64(turns-1) + math.Abs(delta)

	startHelix := pointAxis(start.Point(), frame.h)
	helix := pointAxis(end.Point(), frame.h) - startHelix

	turnsEquiv := sweep / (2 * math.Pi)
	pitch := helix / turnsEquiv
	length := 2 * math.Pi * turnsEquiv * math.Sqrt(r*r+math.Pow(pitch/(2*math.Pi), 2))

	n, err := stepCount(length, length*density)
	if err != nil {
		return Path{}, err
	}
	dTheta := sweep / float64(n)
	if delta < 0 {
		dTheta = -dTheta
	}

	rest := end.Sub(start)
	p := Path{
		Steps:  make([]Step, 0, n+1),
		Length: units.Millimeters(length),
	}
	for i := 0; i < n; i++ {
		scale := float64(i) / float64(n)
		theta := startTheta + dTheta*float64(i)

		pose := start.Add(rest.Scale(scale))
		pose, err = frame.place(pose,
			cu+r*math.Cos(theta),
			cv+r*math.Sin(theta),
			startHelix+helix*scale,
		)
		if err != nil {
			return Path{}, err
		}

		step, err := StepFromPose(pose, axes)
		if err != nil {
			return Path{}, err
		}
		p.Steps = append(p.Steps, step)
	}
	p.finish(sn)

	return p, nil
}
