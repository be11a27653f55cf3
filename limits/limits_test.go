package limits

import (
	"errors"
	"testing"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravel_Validate(t *testing.T) {
	var tr Travel
	assert.Equal(t, units.Length(0), tr.MaxTravel(coord.X))
	assert.NoError(t, tr.Validate(coord.X, units.Millimeters(1e6)))

	tr.SetLimit(coord.X, units.Millimeters(300))
	assert.NoError(t, tr.Validate(coord.X, units.Millimeters(-300)))

	err := tr.Validate(coord.X, units.Millimeters(300.1))
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}

func TestFeedRate_MaxLinear(t *testing.T) {
	var f FeedRate
	f.SetGlobal(units.MillimetersPerMinute(1000))
	f.SetLinear(coord.Z, units.MillimetersPerMinute(200))
	f.SetAngular(coord.A, units.DegreesPerMinute(720))

	assert.Equal(t, units.MillimetersPerMinute(1000), f.MaxLinear(coord.X))
	assert.Equal(t, units.MillimetersPerMinute(200), f.MaxLinear(coord.Z))
	assert.Equal(t, units.AngularVelocity(0), f.MaxAngular(coord.B))

	assert.NoError(t, f.ValidateLinear(coord.X, units.MillimetersPerMinute(1000)))
	assert.Error(t, f.ValidateLinear(coord.Z, units.MillimetersPerMinute(201)))
	assert.NoError(t, f.ValidateAngular(coord.B, units.DegreesPerMinute(1e6)))
	assert.Error(t, f.ValidateAngular(coord.A, units.DegreesPerMinute(721)))
}

func TestRapids_Duration(t *testing.T) {
	var r Rapids
	r.SetGlobal(units.MillimetersPerMinute(6000))
	r.SetLinear(coord.Z, units.MillimetersPerMinute(600))
	r.SetAngular(coord.A, units.DegreesPerMinute(3600))

	// X takes 1s, Z takes 2s, A takes 0.5s
	dur, err := r.Duration(coord.Pose{}, coord.Pose{
		X: units.Millimeters(100),
		Z: units.Millimeters(-20),
		A: units.Degrees(30),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2, dur.Seconds(), 1e-9)

	_, err = r.Duration(coord.Pose{}, coord.Pose{B: units.Degrees(1)})
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))

	dur, err = r.Duration(coord.Pose{X: 5}, coord.Pose{X: 5})
	require.NoError(t, err)
	assert.Equal(t, units.Time(0), dur)
}

func TestAvailableAxes(t *testing.T) {
	var zero AvailableAxes
	assert.Equal(t, "XYZABCUVW", zero.String())
	assert.Equal(t, DefaultAxes().Axes(), zero.Axes())

	a, err := ParseAxes("XZA")
	require.NoError(t, err)
	assert.Equal(t, []coord.Axis{coord.X, coord.Z, coord.A}, a.Axes())
	assert.NoError(t, a.Validate(coord.Z))
	assert.True(t, errors.Is(a.Validate(coord.Y), coord.ErrInvalidInput))

	_, err = ParseAxes("XX")
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}
