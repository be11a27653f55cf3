// Package limits describes what a machine can physically do: which axes it
// has, how far they travel and how fast they may move.
//
// A zero (unset) ceiling means unconstrained when validating.
package limits

import (
	"errors"
	"fmt"
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/units"
)

// ErrOutOfBounds is returned when a value exceeds a configured limit.
var ErrOutOfBounds = fmt.Errorf("%w: out of bounds", coord.ErrInvalidInput)

// Travel tracks a work envelope per axis.
type Travel struct {
	limits map[coord.Axis]units.Length
}

func (t *Travel) SetLimit(axis coord.Axis, limit units.Length) {
	if t.limits == nil {
		t.limits = make(map[coord.Axis]units.Length)
	}
	t.limits[axis] = limit.Abs()
}

// MaxTravel returns the limit for axis, or 0 when unspecified.
func (t *Travel) MaxTravel(axis coord.Axis) units.Length {
	if t == nil {
		return 0
	}
	return t.limits[axis]
}

// Validate returns ErrOutOfBounds if |travel| exceeds the axis limit.
func (t *Travel) Validate(axis coord.Axis, travel units.Length) error {
	max := t.MaxTravel(axis)
	if max == 0 || travel.Abs() <= max {
		return nil
	}
	return fmt.Errorf("%w: %s travel %s exceeds %s", ErrOutOfBounds, axis, travel, max)
}

// rates is the shape shared by feed rate ceilings and rapid rates.
type rates struct {
	linear  map[coord.Axis]units.Velocity
	angular map[coord.Axis]units.AngularVelocity
	global  units.Velocity
}

func (r *rates) setLinear(axis coord.Axis, v units.Velocity) {
	if r.linear == nil {
		r.linear = make(map[coord.Axis]units.Velocity)
	}
	r.linear[axis] = v
}

func (r *rates) setAngular(axis coord.Axis, v units.AngularVelocity) {
	if r.angular == nil {
		r.angular = make(map[coord.Axis]units.AngularVelocity)
	}
	r.angular[axis] = v
}

func (r *rates) maxLinear(axis coord.Axis) units.Velocity {
	if v, ok := r.linear[axis]; ok {
		return v
	}
	return r.global
}

func (r *rates) maxAngular(axis coord.Axis) units.AngularVelocity {
	return r.angular[axis]
}

// FeedRate holds cutting feed ceilings.
type FeedRate struct{ r rates }

func (f *FeedRate) SetGlobal(limit units.Velocity) { f.r.global = limit }

func (f *FeedRate) SetLinear(axis coord.Axis, limit units.Velocity) { f.r.setLinear(axis, limit) }

func (f *FeedRate) SetAngular(axis coord.Axis, limit units.AngularVelocity) {
	f.r.setAngular(axis, limit)
}

// MaxLinear returns the ceiling for axis, falling back to the global one.
func (f *FeedRate) MaxLinear(axis coord.Axis) units.Velocity {
	if f == nil {
		return 0
	}
	return f.r.maxLinear(axis)
}

// MaxAngular returns the ceiling for axis, or 0 when unspecified.
func (f *FeedRate) MaxAngular(axis coord.Axis) units.AngularVelocity {
	if f == nil {
		return 0
	}
	return f.r.maxAngular(axis)
}

func (f *FeedRate) ValidateLinear(axis coord.Axis, rate units.Velocity) error {
	max := f.MaxLinear(axis)
	if max == 0 || rate <= max {
		return nil
	}
	return fmt.Errorf("%w: %s feed %s exceeds %s", ErrOutOfBounds, axis, rate, max)
}

func (f *FeedRate) ValidateAngular(axis coord.Axis, rate units.AngularVelocity) error {
	max := f.MaxAngular(axis)
	if max == 0 || rate <= max {
		return nil
	}
	return fmt.Errorf("%w: %s feed %s exceeds %s", ErrOutOfBounds, axis, rate, max)
}

// Rapids holds the maximum traversal rate of each axis.
//
// Rapids move every axis at its own maximum rate until it reaches the
// destination, so a move lasts as long as its slowest axis. Acceleration is
// not considered; durations are estimates.
type Rapids struct{ r rates }

func (r *Rapids) SetGlobal(rate units.Velocity) { r.r.global = rate }

func (r *Rapids) SetLinear(axis coord.Axis, rate units.Velocity) { r.r.setLinear(axis, rate) }

func (r *Rapids) SetAngular(axis coord.Axis, rate units.AngularVelocity) {
	r.r.setAngular(axis, rate)
}

// LinearVelocity returns the rate for axis, falling back to the global one.
func (r *Rapids) LinearVelocity(axis coord.Axis) units.Velocity {
	if r == nil {
		return 0
	}
	return r.r.maxLinear(axis)
}

// AngularVelocity returns the rate for axis, or 0 when unspecified.
func (r *Rapids) AngularVelocity(axis coord.Axis) units.AngularVelocity {
	if r == nil {
		return 0
	}
	return r.r.maxAngular(axis)
}

// Duration estimates how long a rapid from begin to end takes.
func (r *Rapids) Duration(begin, end coord.Pose) (units.Time, error) {
	delta := end.Sub(begin)
	var longest units.Time
	for _, axis := range coord.Axes {
		d := math.Abs(delta.Get(axis))
		if d == 0 {
			continue
		}

		var t units.Time
		if axis.IsRotary() {
			rate := r.AngularVelocity(axis)
			if rate <= 0 {
				return 0, fmt.Errorf("%w: no rapid rate for axis %s", coord.ErrInvalidInput, axis)
			}
			t = units.Angle(d).Over(rate)
		} else {
			rate := r.LinearVelocity(axis)
			if rate <= 0 {
				return 0, fmt.Errorf("%w: no rapid rate for axis %s", coord.ErrInvalidInput, axis)
			}
			t = units.Length(d).Over(rate)
		}
		if t > longest {
			longest = t
		}
	}
	return longest, nil
}

// AvailableAxes is the ordered set of axes a machine exposes.
type AvailableAxes struct {
	axes []coord.Axis
}

var errDuplicateAxis = errors.New("duplicate axis")

// DefaultAxes returns all nine axes in canonical order.
func DefaultAxes() AvailableAxes {
	axes := coord.Axes
	return AvailableAxes{axes: axes[:]}
}

// NewAvailableAxes returns the ordered set axes. Duplicates are rejected.
func NewAvailableAxes(axes ...coord.Axis) (AvailableAxes, error) {
	var seen [len(coord.Axes)]bool
	list := make([]coord.Axis, 0, len(axes))
	for _, a := range axes {
		if !a.Valid() {
			return AvailableAxes{}, fmt.Errorf("%w: unknown axis %d", coord.ErrInvalidInput, a)
		}
		if seen[a] {
			return AvailableAxes{}, fmt.Errorf("%w: %v %s", coord.ErrInvalidInput, errDuplicateAxis, a)
		}
		seen[a] = true
		list = append(list, a)
	}
	return AvailableAxes{axes: list}, nil
}

// ParseAxes parses a string of axis letters such as "XYZA".
func ParseAxes(s string) (AvailableAxes, error) {
	axes := make([]coord.Axis, 0, len(s))
	for i := 0; i < len(s); i++ {
		a, err := coord.ParseAxis(s[i])
		if err != nil {
			return AvailableAxes{}, err
		}
		axes = append(axes, a)
	}
	return NewAvailableAxes(axes...)
}

// Axes returns the axes in order. The zero AvailableAxes is the default set.
func (a AvailableAxes) Axes() []coord.Axis {
	src := a.axes
	if src == nil {
		src = coord.Axes[:]
	}
	res := make([]coord.Axis, len(src))
	copy(res, src)
	return res
}

func (a AvailableAxes) Contains(axis coord.Axis) bool {
	for _, x := range a.Axes() {
		if x == axis {
			return true
		}
	}
	return false
}

// Validate returns an error if the machine does not have axis.
func (a AvailableAxes) Validate(axis coord.Axis) error {
	if a.Contains(axis) {
		return nil
	}
	return fmt.Errorf("%w: axis %s not available", coord.ErrInvalidInput, axis)
}

func (a AvailableAxes) String() string {
	b := make([]byte, 0, len(coord.Axes))
	for _, x := range a.Axes() {
		b = append(b, x.Letter())
	}
	return string(b)
}
