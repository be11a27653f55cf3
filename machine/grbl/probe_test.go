package grbl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/units"
)

func gridOptions() ProbeGridOptions {
	return ProbeGridOptions{
		ProbeOptions: ProbeOptions{
			FeedRate:  units.MillimetersPerMinute(100),
			MaxTravel: units.Millimeters(-5),
		},
		DistanceX:   units.Millimeters(10),
		DistanceY:   units.Millimeters(10),
		Granularity: units.Millimeters(10),
	}
}

func TestProbeGridOptions_QuickProgram(t *testing.T) {
	start := coord.Pose{X: units.Millimeters(1), Y: units.Millimeters(2), Z: units.Millimeters(3)}
	p := gridOptions().quickProgram(start)

	lines := strings.Split(strings.TrimSpace(p.Format(false)), "\n")
	assert.Equal(t, []string{
		"G21",
		"G91 G38.2 Z-5 F100",
		"G90 G53 G0 Z3",
		"G90 G53 G0 X1 Y12",
	}, lines[:4])
	assert.Equal(t, "G90 G53 G0 X1 Y2", lines[len(lines)-1])
	assert.Equal(t, 5, strings.Count(p.Format(false), "G38.2"))
	for _, b := range p.Blocks() {
		assert.NoError(t, b.Validate(), b.String())
	}
}

func TestProbeGridOptions_GridProgram(t *testing.T) {
	start := coord.Pose{Z: units.Millimeters(3)}
	p := gridOptions().gridProgram(start, units.Millimeters(1))

	text := p.Format(false)
	assert.Equal(t, 9, strings.Count(text, "G38.2"))
	assert.Contains(t, text, "G91 G38.2 Z-3 F100")
	assert.Contains(t, text, "G90 G53 G0 X10 Y5")
	assert.True(t, strings.HasSuffix(text, "G90 G53 G0 Z3\nG90 G53 G0 X0 Y0\n"))
}

func TestProbeGridOptions_Validate(t *testing.T) {
	opt := gridOptions()
	opt.Granularity = 0
	assert.ErrorIs(t, opt.validate(), coord.ErrInvalidInput)

	opt = gridOptions()
	opt.FeedRate = 0
	assert.ErrorIs(t, opt.validate(), coord.ErrInvalidInput)
}

// surface answers probe cycles with a plane tilted along X.
type surface struct {
	mx   sync.Mutex
	x, y float64
}

func (s *surface) reply(line string) string {
	s.mx.Lock()
	defer s.mx.Unlock()
	blocks, err := gcode.Parse(line)
	if err != nil || len(blocks) != 1 {
		return "error:1"
	}
	b := blocks[0]
	if ok, v := b.Arg('X'); ok {
		s.x = v
	}
	if ok, v := b.Arg('Y'); ok {
		s.y = v
	}
	for _, w := range b {
		if w == (gcode.Word{W: 'G', Arg: 38.2}) {
			return fmt.Sprintf("[PRB:%.3f,%.3f,%.3f:1]\nok", s.x, s.y, -1+0.1*s.x)
		}
	}
	return "ok"
}

func TestController_ProbeGrid(t *testing.T) {
	s := &surface{x: 1, y: 2}
	dev := newDevice(t, s.reply)
	c := NewController(dev, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, 10*time.Millisecond)

	select {
	case <-c.Updates():
	case <-time.After(time.Second):
		t.Fatal("no status update")
	}

	points, err := c.ProbeGrid(ctx, gridOptions())
	require.NoError(t, err)
	require.Len(t, points, 9)
	assert.InDelta(t, 1, points[0].X, 1e-9)
	assert.InDelta(t, 2, points[0].Y, 1e-9)
	for _, p := range points {
		assert.InDelta(t, -1+0.1*p.X, p.Z, 1e-3)
	}
}

func TestController_ProbeGridNotIdle(t *testing.T) {
	dev := newDevice(t, func(string) string { return "ok" })
	c := NewController(dev, zap.NewNop())

	_, err := c.ProbeGrid(context.Background(), gridOptions())
	assert.ErrorIs(t, err, ErrNotIdle)
}
