package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpindle_Normalise(t *testing.T) {
	var s Spindle
	assert.Equal(t, uint(123), s.Normalise(123))

	s.AddRange(24000, 6000)
	s.AddDiscrete(1000)
	s.AddDiscrete(3000)

	assert.Equal(t, uint(12000), s.Normalise(12000))
	assert.Equal(t, uint(24000), s.Normalise(30000))
	assert.Equal(t, uint(6000), s.Normalise(5000))
	assert.Equal(t, uint(3000), s.Normalise(3500))
	assert.Equal(t, uint(1000), s.Normalise(0))
}

func TestToolTable(t *testing.T) {
	var tt ToolTable
	assert.False(t, tt.AddTool(0, Tool{Name: "none"}))
	assert.True(t, tt.AddTool(3, Tool{Name: "ball"}))

	ok, tool := tt.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "ball", tool.Name)

	ok, _ = tt.Get(4)
	assert.False(t, ok)
}

func TestMillSpeeds(t *testing.T) {
	f := MillFeedRate(0.05, 2, 10000)
	assert.InDelta(t, 1000, f.MillimetersPerMinute(), 1e-9)

	rpm := MillSpindleSpeed(100000, 6)
	assert.InDelta(t, 5305.16, rpm, 0.01)
}
