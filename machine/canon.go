package machine

import "github.com/mastercactapus/gcam/coord"

// Canon is the set of canonical machining calls a program front end drives.
type Canon interface {
	SetUnits(Units) error
	SetPlane(coord.Plane) error
	SetMotion(Motion) error
	SetArcMotion(Motion) error
	SetFeedRateMode(FeedRateMode) error
	SetFeedRate(float64) error

	StartSpindle(speed uint, r Rotation) error
	StopSpindle() error
	SetTool(id int) error
	ToolChange(id int) error

	Rapid(...coord.Offset) error
	Linear(...coord.Offset) error
	Arc(ArcMove) error

	Comment(string) error
	OptionalPause(string) error
}

var _ Canon = (*Machine)(nil)
