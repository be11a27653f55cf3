package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisAngle(t *testing.T) {
	q := AxisAngle(Point{X: 1}, math.Pi)
	assert.InDelta(t, 0, q.W, 1e-12)
	assert.InDelta(t, 1, q.X, 1e-12)
	assert.InDelta(t, 1, q.Norm(), 1e-12)

	assert.Equal(t, Identity, AxisAngle(Point{}, 1))
}

func TestQuaternion_Rotate(t *testing.T) {
	q := AxisAngle(Point{Z: 1}, math.Pi/2)
	p := q.Rotate(Point{X: 1})
	assert.True(t, p.ApproxEqual(Point{Y: 1}, 1e-12), "got %v", p)
}

func TestQuaternion_Mul(t *testing.T) {
	// two quarter turns about Z are a half turn
	q := AxisAngle(Point{Z: 1}, math.Pi/2)
	h := q.Mul(q)
	assert.True(t, h.ApproxEqual(AxisAngle(Point{Z: 1}, math.Pi), 1e-12))
	assert.True(t, Identity.Mul(q).ApproxEqual(q, 0))
}

func TestQuaternion_ApproxEqual(t *testing.T) {
	q := AxisAngle(Point{Y: 1}, 0.3)
	neg := Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	assert.True(t, q.ApproxEqual(neg, 1e-12))
	assert.False(t, q.ApproxEqual(Identity, 1e-12))
}

func TestQuaternion_Normalize(t *testing.T) {
	q := Quaternion{W: 2}.Normalize()
	assert.Equal(t, Identity, q)
	assert.Equal(t, Identity, Quaternion{}.Normalize())
}
