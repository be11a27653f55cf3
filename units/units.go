// Package units provides dimensioned quantities.
//
// Each dimension is its own type so that adding a Length to an Angle does not
// compile. Lengths are stored in millimeters and angles in radians; conversion
// to other unit systems only happens through the named constructors and
// accessors.
package units

import (
	"math"
	"strconv"
)

const (
	mmPerInch  = 25.4
	secPerMin  = 60.0
	radPerTurn = 2 * math.Pi
)

// Length is a distance in millimeters.
type Length float64

// Millimeters returns a Length of v mm.
func Millimeters(v float64) Length { return Length(v) }

// Inches returns a Length of v inches.
func Inches(v float64) Length { return Length(v * mmPerInch) }

func (l Length) Millimeters() float64 { return float64(l) }
func (l Length) Inches() float64      { return float64(l) / mmPerInch }

func (l Length) Abs() Length { return Length(math.Abs(float64(l))) }

// Over returns the time needed to travel l at v.
func (l Length) Over(v Velocity) Time {
	return Time(float64(l) / float64(v))
}

func (l Length) String() string { return format(float64(l)) + "mm" }

// Angle is a plane angle in radians.
type Angle float64

// Degrees returns an Angle of v degrees.
func Degrees(v float64) Angle { return Angle(v * math.Pi / 180) }

// Radians returns an Angle of v radians.
func Radians(v float64) Angle { return Angle(v) }

func (a Angle) Degrees() float64 { return float64(a) * 180 / math.Pi }
func (a Angle) Radians() float64 { return float64(a) }
func (a Angle) Turns() float64   { return float64(a) / radPerTurn }

func (a Angle) Abs() Angle { return Angle(math.Abs(float64(a))) }

// Over returns the time needed to rotate through a at w.
func (a Angle) Over(w AngularVelocity) Time {
	return Time(float64(a) / float64(w))
}

func (a Angle) String() string { return format(a.Degrees()) + "°" }

// Velocity is a linear rate in millimeters per minute.
type Velocity float64

func MillimetersPerMinute(v float64) Velocity { return Velocity(v) }
func InchesPerMinute(v float64) Velocity      { return Velocity(v * mmPerInch) }

func (v Velocity) MillimetersPerMinute() float64 { return float64(v) }
func (v Velocity) InchesPerMinute() float64      { return float64(v) / mmPerInch }

func (v Velocity) String() string { return format(float64(v)) + "mm/min" }

// AngularVelocity is a rotational rate in radians per minute.
type AngularVelocity float64

func DegreesPerMinute(v float64) AngularVelocity {
	return AngularVelocity(v * math.Pi / 180)
}
func RadiansPerMinute(v float64) AngularVelocity { return AngularVelocity(v) }

func (w AngularVelocity) DegreesPerMinute() float64 { return float64(w) * 180 / math.Pi }
func (w AngularVelocity) RadiansPerMinute() float64 { return float64(w) }

func (w AngularVelocity) String() string { return format(w.DegreesPerMinute()) + "°/min" }

// Time is a duration in minutes.
//
// Machine feeds and rapids are quoted per minute, so minutes avoid a
// conversion on every estimate.
type Time float64

func Minutes(v float64) Time { return Time(v) }
func Seconds(v float64) Time { return Time(v / secPerMin) }

func (t Time) Minutes() float64 { return float64(t) }
func (t Time) Seconds() float64 { return float64(t) * secPerMin }

func (t Time) String() string { return format(t.Seconds()) + "s" }

// Volume is a volume in cubic millimeters.
type Volume float64

func CubicMillimeters(v float64) Volume { return Volume(v) }
func CubicInches(v float64) Volume      { return Volume(v * mmPerInch * mmPerInch * mmPerInch) }

func (v Volume) CubicMillimeters() float64 { return float64(v) }
func (v Volume) CubicInches() float64 {
	return float64(v) / (mmPerInch * mmPerInch * mmPerInch)
}

func (v Volume) String() string { return format(float64(v)) + "mm³" }

func format(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
