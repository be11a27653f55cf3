package job

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/machine"
	"github.com/mastercactapus/gcam/path"
)

const pocketJob = `
machine:
  name: router
  type: mill
  axes: XYZ
  travel: {X: 300, Y: 200, Z: 100}
  feed: {global: 3000}
  rapids: {global: 6000}
  spindle:
    ranges: [[1000, 24000]]
  tools:
    1: {name: 6mm end mill, diameter: 6, flutes: 2}
density: 1
operations:
  - {op: block, name: Pocket}
  - {op: tool, id: 1}
  - {op: spindle, speed: 12000, rotation: cw}
  - {op: feed, value: 1000}
  - {op: rapid, to: {X: 10, Y: 0, Z: 5}}
  - {op: linear, to: {z: 0}}
  - {op: arc, direction: ccw, to: {X: 0, Y: 10}, center: {X: -10}}
  - {op: end_block, restore: [spindle]}
`

func load(t *testing.T, src string) *Job {
	t.Helper()
	j, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	return j
}

func TestJob_Run(t *testing.T) {
	j := load(t, pocketJob)

	var p gcode.Program
	res, err := j.Run(&p, 0)
	require.NoError(t, err)

	require.Len(t, res.Moves, 3)
	assert.Equal(t, 4, res.Moves[0].Index)
	assert.Equal(t, "rapid", res.Moves[0].Kind)
	assert.Equal(t, "linear", res.Moves[1].Kind)
	assert.Equal(t, "arc", res.Moves[2].Kind)

	arc := res.Moves[2].Path
	assert.InDelta(t, 5*math.Pi, float64(arc.Length), 1e-6)
	assert.InDelta(t, 0, arc.Last().Position.X, 1e-9)
	assert.InDelta(t, 10, arc.Last().Position.Y, 1e-9)

	assert.InDelta(t, math.Sqrt(125)+5+5*math.Pi, float64(res.Length), 1e-6)
	assert.InDelta(t, 10.0/6000, res.RapidTime.Minutes(), 1e-12)
	assert.InDelta(t, (5+5*math.Pi)/1000, res.CutTime.Minutes(), 1e-9)

	text := p.Format(true)
	assert.Contains(t, text, "G0 X10 Y0 Z5")
	assert.Contains(t, text, "G3 X0 Y10 I-10")
	assert.Contains(t, text, "M5")
	assert.True(t, strings.HasSuffix(text, "M2 ; End of program.\n"))
	for _, b := range p.Blocks() {
		assert.NoError(t, b.Validate(), b.String())
	}
}

func TestJob_RunDensity(t *testing.T) {
	j := load(t, pocketJob)

	var coarse, fine gcode.Program
	a, err := j.Run(&coarse, 0)
	require.NoError(t, err)
	b, err := j.Run(&fine, 4)
	require.NoError(t, err)

	assert.Greater(t, len(b.Moves[1].Path.Steps), len(a.Moves[1].Path.Steps))
	assert.Equal(t, coarse.Format(true), fine.Format(true))
}

func TestJob_RunImperial(t *testing.T) {
	j := load(t, `
machine: {axes: XYZ}
operations:
  - {op: units, value: imperial}
  - {op: spindle, speed: 1000, rotation: ccw}
  - {op: feed, value: 10}
  - {op: linear, to: {X: 25.4}}
`)
	var p gcode.Program
	res, err := j.Run(&p, 1)
	require.NoError(t, err)

	assert.Contains(t, p.Format(false), "G1 X1")
	require.Len(t, res.Moves, 1)
	assert.InDelta(t, 25.4, float64(res.Moves[0].Path.Length), 1e-9)
	assert.InDelta(t, 0.1, res.CutTime.Minutes(), 1e-9)
	assert.Zero(t, res.RapidTime)
}

func TestJob_RunOperationError(t *testing.T) {
	j := load(t, `
operations:
  - {op: comment, text: start}
  - {op: linear, to: {X: 1}}
`)
	var p gcode.Program
	_, err := j.Run(&p, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, machine.ErrSpindleStopped))
	assert.True(t, errors.Is(err, coord.ErrInvalidInput))
	assert.Contains(t, err.Error(), "operation 1 (linear)")
}

func TestJob_RunExpandError(t *testing.T) {
	j := load(t, `
operations:
  - {op: spindle, speed: 1000, rotation: cw}
  - {op: feed, value: 100}
  - {op: rapid, to: {X: 10}}
  - {op: arc, direction: ccw, to: {X: 0, Y: 10}, center: {X: -1}}
`)
	var p gcode.Program
	res, err := j.Run(&p, 1)
	assert.True(t, errors.Is(err, path.ErrDegenerateArc))
	assert.Contains(t, err.Error(), "operation 3 (arc)")
	assert.NotContains(t, p.Format(false), "G3")
	assert.Len(t, res.Moves, 1)

	j = load(t, `
operations:
  - {op: rapid, to: {X: 1, U: 5}}
`)
	p = gcode.Program{}
	_, err = j.Run(&p, 1)
	assert.True(t, errors.Is(err, coord.ErrUnsupported))
	assert.NotContains(t, p.Format(false), "G0")
}

func TestJob_RunTravel(t *testing.T) {
	j := load(t, `
machine:
  travel: {X: 10}
operations:
  - {op: rapid, to: {X: 20}}
`)
	var p gcode.Program
	_, err := j.Run(&p, 1)
	assert.True(t, errors.Is(err, limits.ErrOutOfBounds))
}

func TestJob_RunMesh(t *testing.T) {
	j := load(t, `
machine: {axes: XYZ}
mesh:
  reference: -65
  granularity: 2
  points: [[0, 0, -64], [100, 0, -64], [0, 100, -64], [100, 100, -64]]
operations:
  - {op: rapid, to: {X: 10, Y: 30}}
  - {op: spindle, speed: 1000, rotation: cw}
  - {op: feed, value: 500}
  - {op: linear, to: {X: 20}}
`)
	var p gcode.Program
	res, err := j.Run(&p, 0.1)
	require.NoError(t, err)

	lin := res.Moves[1].Path
	for _, s := range lin.Steps {
		assert.InDelta(t, 1, s.Position.Z, 1e-9)
	}
	for i := 1; i < len(lin.Steps); i++ {
		d := lin.Steps[i-1].Position.DistanceXY(lin.Steps[i].Position.X, lin.Steps[i].Position.Y)
		assert.LessOrEqual(t, d, 2+1e-9)
	}
	assert.InDelta(t, 10, float64(lin.Length), 1e-9)
}

func TestJob_RunRotary(t *testing.T) {
	j := load(t, `
machine:
  axes: XYZA
  rapids: {global: 1000, angular: {A: 3600}}
operations:
  - {op: rapid, to: {A: 90}}
`)
	var p gcode.Program
	res, err := j.Run(&p, 1)
	require.NoError(t, err)

	assert.Contains(t, p.Format(false), "G0 A90")
	assert.InDelta(t, 90.0/3600, res.RapidTime.Minutes(), 1e-9)
	assert.Zero(t, res.Length)
}

func TestLoad_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"UnknownOp":     "operations: [{op: drill}]",
		"MissingOp":     "operations: [{text: hi}]",
		"UnknownField":  "operations: [{op: comment, txt: hi}]",
		"BadEnum":       "operations: [{op: units, value: furlongs}]",
		"UnknownTopKey": "machines: {}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			assert.True(t, errors.Is(err, coord.ErrInvalidInput), "%v", err)
		})
	}
}

func TestJob_RunMachineErrors(t *testing.T) {
	for name, src := range map[string]string{
		"Axes":       "machine: {axes: XYQ}",
		"RotaryFeed": "machine: {feed: {linear: {A: 10}}}",
		"ToolType":   "machine: {tools: {1: {type: lathe}}}",
		"ToolID":     "machine: {tools: {0: {name: none}}}",
		"MachineTyp": "machine: {type: printer}",
	} {
		t.Run(name, func(t *testing.T) {
			j := load(t, src)
			var p gcode.Program
			_, err := j.Run(&p, 1)
			assert.True(t, errors.Is(err, coord.ErrInvalidInput), "%v", err)
		})
	}
}
