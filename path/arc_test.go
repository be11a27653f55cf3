package path

import (
	"errors"
	"math"
	"testing"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalZ = coord.Point{Z: 1}

func TestExpandArc_QuarterCCW(t *testing.T) {
	start := coord.Pose{X: 10}
	end := coord.Pose{Y: 10}

	p, err := ExpandArc(start, end, coord.Point{}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 5*math.Pi, p.Length.Millimeters(), 1e-9)
	assert.Len(t, p.Steps, 17)
	assert.True(t, p.First().Position.ApproxEqual(coord.Point{X: 10}, 1e-9))
	assert.True(t, p.Last().Equal(mustStep(t, end)))

	for i, s := range p.Steps {
		assert.InDelta(t, 10, s.Position.DistanceXY(0, 0), 1e-9, "step %d", i)
		assert.GreaterOrEqual(t, s.Position.X, -1e-9)
		assert.GreaterOrEqual(t, s.Position.Y, -1e-9)
	}
	assertNoAdjacentDuplicates(t, p)
}

func TestExpandArc_QuarterCW(t *testing.T) {
	start := coord.Pose{X: 10}
	end := coord.Pose{Y: 10}

	p, err := ExpandArc(start, end, coord.Point{}, coord.Clockwise, normalZ, 1, limits.DefaultAxes(), 1)
	require.NoError(t, err)

	// the long way round, through -Y
	assert.InDelta(t, 15*math.Pi, p.Length.Millimeters(), 1e-9)
	var below bool
	for _, s := range p.Steps {
		if s.Position.Y < -9 {
			below = true
		}
	}
	assert.True(t, below)
	assert.True(t, p.Last().Equal(mustStep(t, end)))
}

func TestExpandArc_FullCircle(t *testing.T) {
	start := coord.Pose{X: 10, Y: 5}

	ccw, err := ExpandArc(start, start, coord.Point{Y: 5}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Pi, ccw.Length.Millimeters(), 1e-9)
	assert.Greater(t, ccw.Steps[1].Position.Y, 5.0)

	cw, err := ExpandArc(start, start, coord.Point{Y: 5}, coord.Clockwise, normalZ, 1, limits.DefaultAxes(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Pi, cw.Length.Millimeters(), 1e-9)
	assert.Less(t, cw.Steps[1].Position.Y, 5.0)

	assert.True(t, cw.Last().Equal(mustStep(t, start)))
}

func TestExpandArc_Helix(t *testing.T) {
	start := coord.Pose{X: 10}
	end := coord.Pose{X: 10, Z: -5}

	p, err := ExpandArc(start, end, coord.Point{}, coord.CounterClockwise, normalZ, 2, limits.DefaultAxes(), 1)
	require.NoError(t, err)

	assert.InDelta(t, math.Hypot(40*math.Pi, 5), p.Length.Millimeters(), 1e-9)
	assert.Equal(t, coord.Point{X: 10, Z: -5}, p.Last().Position)

	for i := 1; i < len(p.Steps); i++ {
		assert.LessOrEqual(t, p.Steps[i].Position.Z, p.Steps[i-1].Position.Z, "step %d", i)
	}
}

func TestExpandArc_PlaneZX(t *testing.T) {
	start := coord.Pose{X: 10, Y: 3}
	end := coord.Pose{Z: 10, Y: 3}

	p, err := ExpandArc(start, end, coord.Point{Y: 3}, coord.Clockwise, coord.Point{Y: 1}, 1, limits.DefaultAxes(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 5*math.Pi, p.Length.Millimeters(), 1e-9)
	for i, s := range p.Steps {
		assert.InDelta(t, 3, s.Position.Y, 1e-9, "step %d", i)
		assert.InDelta(t, 10, math.Hypot(s.Position.X, s.Position.Z), 1e-9, "step %d", i)
	}
	assert.True(t, p.Last().Equal(mustStep(t, end)))
}

func TestExpandArc_PlaneYZ(t *testing.T) {
	start := coord.Pose{Y: 10}
	end := coord.Pose{Z: 10}

	p, err := ExpandArc(start, end, coord.Point{}, coord.CounterClockwise, coord.Point{X: 1}, 1, limits.DefaultAxes(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 5*math.Pi, p.Length.Millimeters(), 1e-9)
	for _, s := range p.Steps {
		assert.InDelta(t, 0, s.Position.X, 1e-9)
	}
}

func TestExpandArc_Rotary(t *testing.T) {
	start := coord.Pose{X: 10}
	end := coord.Pose{Y: 10, A: units.Degrees(90)}

	p, err := ExpandArc(start, end, coord.Point{}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), 4)
	require.NoError(t, err)
	assertNormalized(t, p)
	assert.True(t, p.Last().Equal(mustStep(t, end)))
}

func TestExpandArc_Degenerate(t *testing.T) {
	_, err := ExpandArc(coord.Pose{X: 10}, coord.Pose{Y: 10}, coord.Point{X: 1}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), 1)
	assert.True(t, errors.Is(err, ErrDegenerateArc))
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}

func TestExpandArc_UnsupportedPlane(t *testing.T) {
	_, err := ExpandArc(coord.Pose{X: 10}, coord.Pose{Y: 10}, coord.Point{}, coord.CounterClockwise, coord.Point{X: 0.5, Y: 0.5}, 1, limits.DefaultAxes(), 1)
	assert.True(t, errors.Is(err, ErrUnsupportedPlane))
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}

func TestExpandArc_BadInput(t *testing.T) {
	_, err := ExpandArc(coord.Pose{X: 10}, coord.Pose{Y: 10}, coord.Point{}, coord.CounterClockwise, normalZ, 0, limits.DefaultAxes(), 1)
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))

	_, err = ExpandArc(coord.Pose{X: 10}, coord.Pose{Y: 10}, coord.Point{}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), -1)
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}

func TestExpandArc_TooManySteps(t *testing.T) {
	_, err := ExpandArc(coord.Pose{X: 1e300}, coord.Pose{Y: 1e300}, coord.Point{}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), 1)
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))

	_, err = ExpandArc(coord.Pose{X: 10}, coord.Pose{Y: 10}, coord.Point{}, coord.CounterClockwise, normalZ, 1, limits.DefaultAxes(), MaxSteps)
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
}
