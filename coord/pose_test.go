package coord

import (
	"errors"
	"testing"

	"github.com/mastercactapus/gcam/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPose_Sub(t *testing.T) {
	a := Pose{X: 10, A: units.Degrees(90), W: 3}
	b := Pose{X: 4, A: units.Degrees(30), W: 1}

	d := a.Sub(b)
	assert.Equal(t, units.Length(6), d.X)
	assert.InDelta(t, 60, d.A.Degrees(), 1e-9)
	assert.Equal(t, units.Length(2), d.W)
	assert.Equal(t, a.X, b.Add(d).X)
}

func TestPose_Lerp(t *testing.T) {
	a := Pose{}
	b := Pose{X: 10, Y: 20, C: units.Degrees(90)}

	mid := a.Lerp(b, 0.5)
	assert.Equal(t, units.Length(5), mid.X)
	assert.Equal(t, units.Length(10), mid.Y)
	assert.InDelta(t, 45, mid.C.Degrees(), 1e-9)
}

func TestPose_With(t *testing.T) {
	p, err := Pose{}.With(L(Y, units.Millimeters(4)))
	require.NoError(t, err)
	assert.Equal(t, units.Length(4), p.Y)

	p, err = p.With(R(B, units.Degrees(45)))
	require.NoError(t, err)
	assert.InDelta(t, 45, p.B.Degrees(), 1e-9)

	_, err = p.With(L(A, units.Millimeters(1)))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = p.With(R(X, units.Degrees(1)))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPose_Translate(t *testing.T) {
	p := Pose{Z: 5}
	p, err := p.Translate(L(Z, units.Millimeters(-2)))
	require.NoError(t, err)
	assert.Equal(t, units.Length(3), p.Z)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis('V')
	require.NoError(t, err)
	assert.Equal(t, V, a)
	assert.True(t, a.IsAuxiliary())
	assert.True(t, a.IsLinear())
	assert.True(t, C.IsRotary())
	assert.Equal(t, "B", B.String())

	_, err = ParseAxis('Q')
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPlane_Helix(t *testing.T) {
	h, err := PlaneZX.Helix()
	require.NoError(t, err)
	assert.Equal(t, Y, h)

	_, err = PlaneUV.Helix()
	assert.True(t, errors.Is(err, ErrUnsupported))

	n, err := PlaneYZ.Normal()
	require.NoError(t, err)
	p, err := PlaneFromNormal(n)
	require.NoError(t, err)
	assert.Equal(t, PlaneYZ, p)

	_, err = PlaneFromNormal(Point{X: 0.5})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPlane_UnmarshalText(t *testing.T) {
	var p Plane
	assert.NoError(t, p.UnmarshalText([]byte("g18")))
	assert.Equal(t, PlaneZX, p)
	assert.True(t, errors.Is(p.UnmarshalText([]byte("QQ")), ErrInvalidInput))

	var d Direction
	assert.NoError(t, d.UnmarshalText([]byte("CCW")))
	assert.Equal(t, CounterClockwise, d)
}
