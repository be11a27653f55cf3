package machine

import (
	"fmt"
	"strings"

	"github.com/mastercactapus/gcam/coord"
)

// Type is the kind of machine being programmed.
type Type byte

const (
	Mill Type = iota
	Lathe
)

func (t Type) String() string {
	switch t {
	case Mill:
		return "Mill"
	case Lathe:
		return "Lathe"
	}
	return fmt.Sprintf("Type(%d)", byte(t))
}

func (t *Type) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "mill":
		*t = Mill
	case "lathe":
		*t = Lathe
	default:
		return fmt.Errorf("%w: unknown machine type %q", coord.ErrInvalidInput, b)
	}
	return nil
}

// Units is the unit system words are written in.
type Units byte

const (
	Metric Units = iota
	Imperial
)

func (u Units) String() string {
	switch u {
	case Metric:
		return "Metric"
	case Imperial:
		return "Imperial"
	}
	return fmt.Sprintf("Units(%d)", byte(u))
}

func (u *Units) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "metric", "mm", "g21":
		*u = Metric
	case "imperial", "in", "inch", "g20":
		*u = Imperial
	default:
		return fmt.Errorf("%w: unknown units %q", coord.ErrInvalidInput, b)
	}
	return nil
}

// Motion is the distance mode of linear or arc-centre words.
type Motion byte

const (
	Absolute Motion = iota
	Incremental
)

func (m Motion) String() string {
	switch m {
	case Absolute:
		return "Absolute"
	case Incremental:
		return "Incremental"
	}
	return fmt.Sprintf("Motion(%d)", byte(m))
}

func (m *Motion) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "absolute", "abs":
		*m = Absolute
	case "incremental", "inc", "relative":
		*m = Incremental
	default:
		return fmt.Errorf("%w: unknown motion mode %q", coord.ErrInvalidInput, b)
	}
	return nil
}

// FeedRateMode selects how F words are interpreted.
type FeedRateMode byte

const (
	InverseTime FeedRateMode = iota
	UnitsPerMinute
	UnitsPerRevolution
)

func (f FeedRateMode) String() string {
	switch f {
	case InverseTime:
		return "Inverse Time"
	case UnitsPerMinute:
		return "Units Per Minute"
	case UnitsPerRevolution:
		return "Units Per Revolution"
	}
	return fmt.Sprintf("FeedRateMode(%d)", byte(f))
}

func (f *FeedRateMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "inverse_time", "inverse-time", "g93":
		*f = InverseTime
	case "units_per_minute", "per-minute", "g94":
		*f = UnitsPerMinute
	case "units_per_revolution", "per-revolution", "g95":
		*f = UnitsPerRevolution
	default:
		return fmt.Errorf("%w: unknown feed rate mode %q", coord.ErrInvalidInput, b)
	}
	return nil
}

// Rotation is the spindle direction.
type Rotation byte

const (
	Stop Rotation = iota
	Clockwise
	CounterClockwise
)

func (r Rotation) String() string {
	switch r {
	case Stop:
		return "Stop"
	case Clockwise:
		return "Clockwise"
	case CounterClockwise:
		return "Counter Clockwise"
	}
	return fmt.Sprintf("Rotation(%d)", byte(r))
}

func (r *Rotation) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "stop", "off":
		*r = Stop
	case "cw", "clockwise":
		*r = Clockwise
	case "ccw", "counterclockwise", "counter_clockwise":
		*r = CounterClockwise
	default:
		return fmt.Errorf("%w: unknown spindle rotation %q", coord.ErrInvalidInput, b)
	}
	return nil
}

// Restore selects which parts of the saved state EndBlock re-applies.
type Restore uint

const (
	RestoreUnits Restore = 1 << iota
	RestorePlane
	RestoreMotion
	RestoreArcMotion
	RestoreFeedRateMode
	RestoreFeedRate
	RestoreSpindle
	RestoreTool
	RestorePosition

	RestoreNone Restore = 0
	RestoreAll          = RestoreUnits | RestorePlane | RestoreMotion | RestoreArcMotion |
		RestoreFeedRateMode | RestoreFeedRate | RestoreSpindle | RestoreTool | RestorePosition
)

// State is the modal configuration of the machine.
type State struct {
	Units        Units
	Plane        coord.Plane
	Motion       Motion
	ArcMotion    Motion
	FeedRateMode FeedRateMode

	// FeedRate is the active F value in program units. Its meaning depends
	// on Units and FeedRateMode.
	FeedRate float64

	SpindleSpeed    uint
	SpindleRotation Rotation

	Tool int
	Pose coord.Pose
}

// DefaultState returns the power-on state for a machine type.
func DefaultState(t Type) State {
	s := State{
		Units:        Metric,
		Motion:       Absolute,
		ArcMotion:    Incremental,
		FeedRateMode: UnitsPerMinute,
		Plane:        coord.PlaneXY,
	}
	if t == Lathe {
		s.Plane = coord.PlaneZX
		s.FeedRateMode = UnitsPerRevolution
	}
	return s
}
