// Package machine tracks the modal state of a CNC controller and writes the
// G-code needed to move it from one state to the next.
//
// Every setter is idempotent: a line is only emitted when the value actually
// changes. A Machine is owned by a single goroutine.
package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/units"
)

// Output receives the emitted program.
type Output interface {
	BeginSection(name string)
	EndSection()
	AddLine(gcode.Line)
}

var _ Output = (*gcode.Program)(nil)

// Config describes the machine being programmed.
type Config struct {
	Type Type

	// Axes defaults to all nine axes.
	Axes     limits.AvailableAxes
	Travel   *limits.Travel
	FeedRate *limits.FeedRate

	// Name prefixes the preamble section name.
	Name string
}

type block struct {
	name  string
	saved State
}

type Machine struct {
	cfg     Config
	out     Output
	state   State
	spindle Spindle
	tools   ToolTable

	blocks []block
	closed bool
}

var (
	g0    = gcode.Word{W: 'G', Arg: 0}
	g1    = gcode.Word{W: 'G', Arg: 1}
	g2    = gcode.Word{W: 'G', Arg: 2}
	g3    = gcode.Word{W: 'G', Arg: 3}
	g17   = gcode.Word{W: 'G', Arg: 17}
	g18   = gcode.Word{W: 'G', Arg: 18}
	g19   = gcode.Word{W: 'G', Arg: 19}
	g17_1 = gcode.Word{W: 'G', Arg: 17.1}
	g18_1 = gcode.Word{W: 'G', Arg: 18.1}
	g19_1 = gcode.Word{W: 'G', Arg: 19.1}
	g20   = gcode.Word{W: 'G', Arg: 20}
	g21   = gcode.Word{W: 'G', Arg: 21}
	g40   = gcode.Word{W: 'G', Arg: 40}
	g49   = gcode.Word{W: 'G', Arg: 49}
	g54   = gcode.Word{W: 'G', Arg: 54}
	g61   = gcode.Word{W: 'G', Arg: 61}
	g61_1 = gcode.Word{W: 'G', Arg: 61.1}
	g64   = gcode.Word{W: 'G', Arg: 64}
	g80   = gcode.Word{W: 'G', Arg: 80}
	g90   = gcode.Word{W: 'G', Arg: 90}
	g90_1 = gcode.Word{W: 'G', Arg: 90.1}
	g91   = gcode.Word{W: 'G', Arg: 91}
	g91_1 = gcode.Word{W: 'G', Arg: 91.1}
	g93   = gcode.Word{W: 'G', Arg: 93}
	g94   = gcode.Word{W: 'G', Arg: 94}
	g95   = gcode.Word{W: 'G', Arg: 95}
	g97   = gcode.Word{W: 'G', Arg: 97}

	m01 = gcode.Word{W: 'M', Arg: 1}
	m02 = gcode.Word{W: 'M', Arg: 2}
	m03 = gcode.Word{W: 'M', Arg: 3}
	m04 = gcode.Word{W: 'M', Arg: 4}
	m05 = gcode.Word{W: 'M', Arg: 5}
	m06 = gcode.Word{W: 'M', Arg: 6}
	m09 = gcode.Word{W: 'M', Arg: 9}
)

// New creates a Machine in the default state for cfg.Type and writes the
// preamble to out.
func New(cfg Config, out Output) (*Machine, error) {
	if cfg.Type != Mill && cfg.Type != Lathe {
		return nil, fmt.Errorf("%w: machine type %d", coord.ErrInvalidInput, cfg.Type)
	}
	if cfg.Name == "" {
		cfg.Name = "gcam"
	}
	m := &Machine{
		cfg:   cfg,
		out:   out,
		state: DefaultState(cfg.Type),
	}
	if err := m.preamble(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) preamble() error {
	name := []string{m.cfg.Name, m.cfg.Type.String()}
	var line gcode.Block

	w, err := planeWord(m.state.Plane)
	if err != nil {
		return err
	}
	name = append(name, m.state.Plane.String())
	line = append(line, w)

	w, err = unitsWord(m.state.Units)
	if err != nil {
		return err
	}
	name = append(name, m.state.Units.String())
	line = append(line, w)

	// cutter compensation, tool length offset, coordinate system 1, canned cycles
	line = append(line, g40, g49, g54, g80)

	w, err = motionWord(m.state.Motion)
	if err != nil {
		return err
	}
	name = append(name, m.state.Motion.String())
	line = append(line, w)

	w, err = arcMotionWord(m.state.ArcMotion)
	if err != nil {
		return err
	}
	name = append(name, m.state.ArcMotion.String()+" Arc")
	line = append(line, w)

	w, err = feedModeWord(m.state.FeedRateMode)
	if err != nil {
		return err
	}
	name = append(name, m.state.FeedRateMode.String())
	line = append(line, w)

	// RPM spindle speed, coolant off, spindle off
	line = append(line, g97, m09, m05)

	m.out.BeginSection(strings.Join(name, "  "))
	m.out.AddLine(gcode.Line{Block: line})
	m.out.EndSection()
	return nil
}

// State returns a copy of the current modal state.
func (m *Machine) State() State { return m.state }

// Type returns the machine type.
func (m *Machine) Type() Type { return m.cfg.Type }

func (m *Machine) check() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Machine) emit(comment string, words ...gcode.Word) {
	m.out.AddLine(gcode.NewLine(comment, words...))
}

// AddTool registers a tool. The tool type must match the machine type.
func (m *Machine) AddTool(id int, tool Tool) (bool, error) {
	switch {
	case m.cfg.Type == Mill && tool.Type != MillTool:
		return false, fmt.Errorf("%w: must use Mill tool with Mill", ErrToolType)
	case m.cfg.Type == Lathe && tool.Type != LatheTool:
		return false, fmt.Errorf("%w: must use Lathe tool with Lathe", ErrToolType)
	}
	return m.tools.AddTool(id, tool), nil
}

func (m *Machine) RemoveTool(id int) bool { return m.tools.RemoveTool(id) }

func (m *Machine) AddSpindleRange(lo, hi uint) { m.spindle.AddRange(lo, hi) }

func (m *Machine) AddSpindleDiscrete(v uint) { m.spindle.AddDiscrete(v) }

func planeWord(p coord.Plane) (gcode.Word, error) {
	switch p {
	case coord.PlaneXY:
		return g17, nil
	case coord.PlaneZX:
		return g18, nil
	case coord.PlaneYZ:
		return g19, nil
	case coord.PlaneUV:
		return g17_1, nil
	case coord.PlaneWU:
		return g18_1, nil
	case coord.PlaneVW:
		return g19_1, nil
	}
	return gcode.Word{}, fmt.Errorf("%w: plane %d", coord.ErrInvariant, p)
}

func unitsWord(u Units) (gcode.Word, error) {
	switch u {
	case Metric:
		return g21, nil
	case Imperial:
		return g20, nil
	}
	return gcode.Word{}, fmt.Errorf("%w: units %d", coord.ErrInvariant, u)
}

func motionWord(mo Motion) (gcode.Word, error) {
	switch mo {
	case Absolute:
		return g90, nil
	case Incremental:
		return g91, nil
	}
	return gcode.Word{}, fmt.Errorf("%w: motion %d", coord.ErrInvariant, mo)
}

func arcMotionWord(mo Motion) (gcode.Word, error) {
	switch mo {
	case Absolute:
		return g90_1, nil
	case Incremental:
		return g91_1, nil
	}
	return gcode.Word{}, fmt.Errorf("%w: arc motion %d", coord.ErrInvariant, mo)
}

func feedModeWord(f FeedRateMode) (gcode.Word, error) {
	switch f {
	case InverseTime:
		return g93, nil
	case UnitsPerMinute:
		return g94, nil
	case UnitsPerRevolution:
		return g95, nil
	}
	return gcode.Word{}, fmt.Errorf("%w: feed rate mode %d", coord.ErrInvariant, f)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// feedMeaning describes what feed f means in the current units and mode.
func (m *Machine) feedMeaning(f float64) string {
	unit := "mm"
	if m.state.Units == Imperial {
		unit = `"`
	}
	switch m.state.FeedRateMode {
	case InverseTime:
		return "Feed Time: " + formatNumber(1/f) + " minutes"
	case UnitsPerRevolution:
		return formatNumber(f) + unit + " per revolution"
	}
	return formatNumber(f) + unit + " per minute"
}

// SetUnits selects the unit system words are written in. Stored positions
// are unaffected.
func (m *Machine) SetUnits(u Units) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.Units == u {
		return nil
	}
	w, err := unitsWord(u)
	if err != nil {
		return err
	}
	m.state.Units = u
	if u == Metric {
		m.emit("Switch to Metric (Millimeters)", w)
	} else {
		m.emit("Switch to Imperial (Inches)", w)
	}
	m.feedMeaningChanged()
	return nil
}

func (m *Machine) feedMeaningChanged() {
	if m.state.FeedRate > 0 {
		m.out.AddLine(gcode.Comment("Active feed rate meaning changed to " + m.feedMeaning(m.state.FeedRate)))
	}
}

func (m *Machine) SetPlane(p coord.Plane) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.Plane == p {
		return nil
	}
	w, err := planeWord(p)
	if err != nil {
		return err
	}
	m.state.Plane = p
	m.emit("Switch to "+p.String()+" Plane", w)
	return nil
}

func (m *Machine) SetMotion(mo Motion) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.Motion == mo {
		return nil
	}
	w, err := motionWord(mo)
	if err != nil {
		return err
	}
	m.state.Motion = mo
	m.emit("Switch to "+mo.String()+" Motion", w)
	return nil
}

func (m *Machine) SetArcMotion(mo Motion) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.ArcMotion == mo {
		return nil
	}
	w, err := arcMotionWord(mo)
	if err != nil {
		return err
	}
	m.state.ArcMotion = mo
	m.emit("Switch to "+mo.String()+" Arc Motion", w)
	return nil
}

func (m *Machine) SetFeedRateMode(f FeedRateMode) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.FeedRateMode == f {
		return nil
	}
	w, err := feedModeWord(f)
	if err != nil {
		return err
	}
	m.state.FeedRateMode = f
	m.emit("Switch to "+f.String()+" Feed Rate Mode", w)
	m.feedMeaningChanged()
	return nil
}

// SetFeedRate sets F in program units. In inverse time mode F is written
// with each move instead.
func (m *Machine) SetFeedRate(f float64) error {
	if err := m.check(); err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("%w: negative feed rate %g", coord.ErrInvalidInput, f)
	}
	if m.state.FeedRate == f {
		return nil
	}
	m.state.FeedRate = f

	var comment string
	if f > 0 {
		comment = m.feedMeaning(f)
	}
	if m.state.FeedRateMode == InverseTime {
		if comment != "" {
			m.out.AddLine(gcode.Comment(comment))
		}
		return nil
	}
	m.emit(comment, gcode.Word{W: 'F', Arg: f})
	return nil
}

// StartSpindle sets the spindle speed (RPM) and direction. The speed is
// normalised to one the spindle can run at; Stop always stores speed 0.
func (m *Machine) StartSpindle(speed uint, r Rotation) error {
	if err := m.check(); err != nil {
		return err
	}
	requested := speed
	speed = m.spindle.Normalise(speed)
	if r == Stop {
		speed = 0
	}
	if m.state.SpindleSpeed == speed && m.state.SpindleRotation == r {
		return nil
	}

	var (
		w       gcode.Word
		comment string
	)
	switch r {
	case Stop:
		m.state.SpindleSpeed = 0
		m.state.SpindleRotation = Stop
		m.emit("Stop Spindle", m05)
		return nil
	case Clockwise:
		w = m03
		comment = "Start Spindle Clockwise "
	case CounterClockwise:
		w = m04
		comment = "Start Spindle Counter Clockwise "
	default:
		return fmt.Errorf("%w: rotation %d", coord.ErrInvariant, r)
	}

	m.state.SpindleSpeed = speed
	m.state.SpindleRotation = r

	comment += strconv.FormatUint(uint64(speed), 10) + " RPM"
	if speed != requested {
		comment += " (" + strconv.FormatUint(uint64(requested), 10) + " RPM Requested)"
	}
	m.emit(comment, w, gcode.Word{W: 'S', Arg: float64(speed)})
	return nil
}

func (m *Machine) StopSpindle() error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.SpindleRotation == Stop && m.state.SpindleSpeed == 0 {
		return nil
	}
	m.state.SpindleSpeed = 0
	m.state.SpindleRotation = Stop
	m.emit("Stop Spindle", m05)
	return nil
}

// SetTool preloads a tool without changing it.
func (m *Machine) SetTool(id int) error {
	if err := m.check(); err != nil {
		return err
	}
	if id == 0 {
		m.emit("Preload empty tool", gcode.Word{W: 'T', Arg: 0})
		return nil
	}
	ok, tool := m.tools.Get(id)
	if !ok {
		return fmt.Errorf("%w: preload tool id %d", ErrUnknownTool, id)
	}
	m.emit("Preload tool "+tool.Name, gcode.Word{W: 'T', Arg: float64(id)})
	return nil
}

// ToolChange loads tool id into the spindle. Id 0 empties the spindle.
func (m *Machine) ToolChange(id int) error {
	if err := m.check(); err != nil {
		return err
	}
	if m.state.Tool == id {
		return nil
	}
	comment := "Empty Spindle"
	if id != 0 {
		ok, tool := m.tools.Get(id)
		if !ok {
			return fmt.Errorf("%w: tool id %d", ErrUnknownTool, id)
		}
		comment = "Switch to tool " + tool.Name
	}
	m.state.Tool = id
	m.emit(comment, gcode.Word{W: 'T', Arg: float64(id)}, m06)
	return nil
}

func (m *Machine) AccuracyExactPath() error {
	if err := m.check(); err != nil {
		return err
	}
	m.emit("Exact Path", g61)
	return nil
}

func (m *Machine) AccuracyExactStop() error {
	if err := m.check(); err != nil {
		return err
	}
	m.emit("Exact Stop", g61_1)
	return nil
}

// AccuracyPathBlending enables path blending, optionally with a P tolerance
// and a Q folding tolerance.
func (m *Machine) AccuracyPathBlending(tolerance ...units.Length) error {
	if err := m.check(); err != nil {
		return err
	}
	line := gcode.Block{g64}
	var comment string
	switch len(tolerance) {
	case 0:
		comment = "Path Blend Without Tolerance"
	case 1:
		comment = "Path Blend With Tolerance"
		line = append(line, gcode.Word{W: 'P', Arg: m.length(tolerance[0])})
	case 2:
		comment = "Path Blend With Tolerance & Folding"
		line = append(line,
			gcode.Word{W: 'P', Arg: m.length(tolerance[0])},
			gcode.Word{W: 'Q', Arg: m.length(tolerance[1])},
		)
	default:
		return fmt.Errorf("%w: path blending takes at most 2 tolerances", coord.ErrInvalidInput)
	}
	m.emit(comment, line...)
	return nil
}

func (m *Machine) OptionalPause(comment string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.emit(comment, m01)
	return nil
}

func (m *Machine) Comment(text string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.out.AddLine(gcode.Comment(text))
	return nil
}

// NewBlock opens a named block, saving the current state.
func (m *Machine) NewBlock(name string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.blocks = append(m.blocks, block{name: name, saved: m.state})
	m.out.BeginSection(name)
	return nil
}

// EndBlock closes the innermost block, re-applying the parts of the saved
// state selected by restore.
//
// The block is always closed. A field that cannot be restored does not stop
// the rest from being restored; the first failure is returned. Moving back
// to a saved position is not supported: if RestorePosition is set and the
// position differs, ErrPositionRestore is returned.
func (m *Machine) EndBlock(restore Restore) error {
	if err := m.check(); err != nil {
		return err
	}
	if len(m.blocks) == 0 {
		return ErrNoBlock
	}
	b := m.blocks[len(m.blocks)-1]

	var restoreErr error
	if restore != RestoreNone {
		m.out.AddLine(gcode.Comment("Restore State"))

		s := b.saved
		steps := []struct {
			mask  Restore
			apply func() error
		}{
			{RestoreUnits, func() error { return m.SetUnits(s.Units) }},
			{RestorePlane, func() error { return m.SetPlane(s.Plane) }},
			{RestoreMotion, func() error { return m.SetMotion(s.Motion) }},
			{RestoreArcMotion, func() error { return m.SetArcMotion(s.ArcMotion) }},
			{RestoreFeedRateMode, func() error { return m.SetFeedRateMode(s.FeedRateMode) }},
			{RestoreFeedRate, func() error { return m.SetFeedRate(s.FeedRate) }},
			{RestoreSpindle, func() error { return m.StartSpindle(s.SpindleSpeed, s.SpindleRotation) }},
			{RestoreTool, func() error { return m.ToolChange(s.Tool) }},
		}
		for _, st := range steps {
			if restore&st.mask == 0 {
				continue
			}
			if err := st.apply(); err != nil && restoreErr == nil {
				restoreErr = fmt.Errorf("restore block %q: %w", b.name, err)
			}
		}
		if restore&RestorePosition != 0 && !posesEqual(m.state.Pose, s.Pose) && restoreErr == nil {
			restoreErr = fmt.Errorf("%w: block %q ends at %v, started at %v", ErrPositionRestore, b.name, m.state.Pose, s.Pose)
		}
	}

	m.blocks = m.blocks[:len(m.blocks)-1]
	m.out.EndSection()
	return restoreErr
}

const poseTolerance = 1e-9

func posesEqual(a, b coord.Pose) bool {
	d := a.Sub(b)
	for _, axis := range coord.Axes {
		if v := d.Get(axis); v > poseTolerance || v < -poseTolerance {
			return false
		}
	}
	return true
}

// Close ends any open blocks and writes the program end. It is safe to call
// more than once; only the first call emits anything.
func (m *Machine) Close() error {
	if m.closed {
		return nil
	}
	for range m.blocks {
		m.out.EndSection()
	}
	m.blocks = nil
	m.emit("End of program.", m02)
	m.closed = true
	return nil
}
