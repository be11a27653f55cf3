package machine

import (
	"fmt"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/units"
)

// length converts l into program units.
func (m *Machine) length(l units.Length) float64 {
	if m.state.Units == Imperial {
		return l.Inches()
	}
	return l.Millimeters()
}

// word returns the axis word for o in program units. Angles are written in
// degrees.
func (m *Machine) word(o coord.Offset) gcode.Word {
	w := gcode.Word{W: o.Axis.Letter()}
	if o.Axis.IsRotary() {
		w.Arg = o.Angle().Degrees()
	} else {
		w.Arg = m.length(o.Length())
	}
	return w
}

// move validates offsets and returns the resulting pose and axis words.
// Nothing is changed.
func (m *Machine) move(offsets []coord.Offset) (coord.Pose, []gcode.Word, error) {
	if len(offsets) == 0 {
		return coord.Pose{}, nil, fmt.Errorf("%w: move without axes", coord.ErrInvalidInput)
	}

	var seen [len(coord.Axes)]bool
	pose := m.state.Pose
	words := make([]gcode.Word, 0, len(offsets))
	for _, o := range offsets {
		if err := o.Validate(); err != nil {
			return coord.Pose{}, nil, err
		}
		if err := m.cfg.Axes.Validate(o.Axis); err != nil {
			return coord.Pose{}, nil, err
		}
		if seen[o.Axis] {
			return coord.Pose{}, nil, fmt.Errorf("%w: axis %s repeated", coord.ErrInvalidInput, o.Axis)
		}
		seen[o.Axis] = true

		var err error
		if m.state.Motion == Incremental {
			pose, err = pose.Translate(o)
		} else {
			pose, err = pose.With(o)
		}
		if err != nil {
			return coord.Pose{}, nil, err
		}
		if o.Axis.IsLinear() {
			if err := m.cfg.Travel.Validate(o.Axis, pose.Offset(o.Axis).Length()); err != nil {
				return coord.Pose{}, nil, err
			}
		}
		words = append(words, m.word(o))
	}
	return pose, words, nil
}

// checkCutting rejects feed moves that cannot cut.
func (m *Machine) checkCutting(offsets []coord.Offset) error {
	if m.state.SpindleRotation == Stop {
		return ErrSpindleStopped
	}
	if m.state.FeedRate == 0 {
		return ErrZeroFeedRate
	}
	if m.state.FeedRateMode != UnitsPerMinute {
		return nil
	}

	rotaryOnly := true
	for _, o := range offsets {
		if o.Axis.IsLinear() {
			rotaryOnly = false
		}
	}
	for _, o := range offsets {
		var err error
		switch {
		case rotaryOnly:
			err = m.cfg.FeedRate.ValidateAngular(o.Axis, units.DegreesPerMinute(m.state.FeedRate))
		case o.Axis.IsLinear() && m.state.Units == Imperial:
			err = m.cfg.FeedRate.ValidateLinear(o.Axis, units.InchesPerMinute(m.state.FeedRate))
		case o.Axis.IsLinear():
			err = m.cfg.FeedRate.ValidateLinear(o.Axis, units.MillimetersPerMinute(m.state.FeedRate))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// inverseTimeWord returns the per-move F word required in inverse time mode.
func (m *Machine) inverseTimeWord() (gcode.Word, string, bool) {
	if m.state.FeedRateMode != InverseTime {
		return gcode.Word{}, "", false
	}
	return gcode.Word{W: 'F', Arg: m.state.FeedRate}, m.feedMeaning(m.state.FeedRate), true
}

// Target returns the pose a Rapid or Linear with offsets would end at.
// Nothing is emitted.
func (m *Machine) Target(offsets ...coord.Offset) (coord.Pose, error) {
	if err := m.check(); err != nil {
		return coord.Pose{}, err
	}
	pose, _, err := m.move(offsets)
	return pose, err
}

// Rapid moves at traverse rate. Offsets are absolute or incremental
// according to the motion mode.
func (m *Machine) Rapid(offsets ...coord.Offset) error {
	if err := m.check(); err != nil {
		return err
	}
	pose, words, err := m.move(offsets)
	if err != nil {
		return err
	}
	m.state.Pose = pose
	m.emit("", append([]gcode.Word{g0}, words...)...)
	return nil
}

// Linear is a straight cutting move at the active feed rate.
func (m *Machine) Linear(offsets ...coord.Offset) error {
	if err := m.check(); err != nil {
		return err
	}
	if err := m.checkCutting(offsets); err != nil {
		return err
	}
	pose, words, err := m.move(offsets)
	if err != nil {
		return err
	}

	line := append([]gcode.Word{g1}, words...)
	var comment string
	if f, c, ok := m.inverseTimeWord(); ok {
		line = append(line, f)
		comment = c
	}
	m.state.Pose = pose
	m.emit(comment, line...)
	return nil
}

// ArcMove is a circular or helical move in the active plane.
type ArcMove struct {
	Direction coord.Direction

	// Helix is the axis orthogonal to the plane: Z for XY, Y for ZX and X
	// for YZ.
	Helix coord.Axis

	// End holds end point offsets, as for Linear.
	End []coord.Offset

	// Center holds the in-plane centre offsets, interpreted according to the
	// arc motion mode.
	Center []coord.Offset

	// Turns is the number of revolutions, 1 for a plain arc. Zero means 1.
	Turns int
}

var centerLetter = map[coord.Axis]byte{coord.X: 'I', coord.Y: 'J', coord.Z: 'K'}

// ArcTarget validates a the way Arc does and returns the pose the arc
// would end at. Nothing is emitted.
func (m *Machine) ArcTarget(a ArcMove) (coord.Pose, error) {
	pose, _, _, err := m.arc(a)
	return pose, err
}

// Arc emits a G2/G3 move.
func (m *Machine) Arc(a ArcMove) error {
	pose, line, comment, err := m.arc(a)
	if err != nil {
		return err
	}
	m.state.Pose = pose
	m.emit(comment, line...)
	return nil
}

func (m *Machine) arc(a ArcMove) (coord.Pose, []gcode.Word, string, error) {
	fail := func(err error) (coord.Pose, []gcode.Word, string, error) {
		return coord.Pose{}, nil, "", err
	}
	if err := m.check(); err != nil {
		return fail(err)
	}
	if err := m.checkCutting(a.End); err != nil {
		return fail(err)
	}

	plane := m.state.Plane
	if plane.Auxiliary() {
		return fail(fmt.Errorf("%w: active plane %s", ErrArcPlane, plane))
	}
	helix, err := plane.Helix()
	if err != nil {
		return fail(fmt.Errorf("%w: %v", coord.ErrInvariant, err))
	}
	if a.Helix != helix {
		return fail(fmt.Errorf("%w: helix axis must be %s for %s plane", ErrHelixAxis, helix, plane))
	}
	u, v, err := plane.InPlane()
	if err != nil {
		return fail(fmt.Errorf("%w: %v", coord.ErrInvariant, err))
	}

	turns := a.Turns
	if turns == 0 {
		turns = 1
	}
	if turns < 0 {
		return fail(fmt.Errorf("%w: arc turns %d", coord.ErrInvalidInput, a.Turns))
	}
	if len(a.Center) == 0 {
		return fail(fmt.Errorf("%w: arc without centre", coord.ErrInvalidInput))
	}

	pose, words, err := m.move(a.End)
	if err != nil {
		return fail(err)
	}

	var seen [len(coord.Axes)]bool
	for _, c := range a.Center {
		if err := c.Validate(); err != nil {
			return fail(err)
		}
		if c.Axis != u && c.Axis != v {
			return fail(fmt.Errorf("%w: centre axis %s not in %s plane", coord.ErrInvalidInput, c.Axis, plane))
		}
		if seen[c.Axis] {
			return fail(fmt.Errorf("%w: centre axis %s repeated", coord.ErrInvalidInput, c.Axis))
		}
		seen[c.Axis] = true
		words = append(words, gcode.Word{W: centerLetter[c.Axis], Arg: m.length(c.Length())})
	}

	w := g2
	if a.Direction == coord.CounterClockwise {
		w = g3
	} else if a.Direction != coord.Clockwise {
		return fail(fmt.Errorf("%w: arc direction %d", coord.ErrInvariant, a.Direction))
	}

	line := append([]gcode.Word{w}, words...)
	if turns > 1 {
		line = append(line, gcode.Word{W: 'P', Arg: float64(turns)})
	}
	var comment string
	if f, c, ok := m.inverseTimeWord(); ok {
		line = append(line, f)
		comment = c
	}
	return pose, line, comment, nil
}
