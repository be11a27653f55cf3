package job

import (
	"fmt"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/machine"
	"github.com/mastercactapus/gcam/meshlevel"
	"github.com/mastercactapus/gcam/path"
	"github.com/mastercactapus/gcam/units"
)

// DefaultDensity is used when neither Run nor the job file set one.
const DefaultDensity = 1.0

// Move is the expanded path of one motion operation.
type Move struct {
	// Index is the position of the operation in the job.
	Index int
	Kind  string
	Path  path.Path
}

// Result summarises a run.
type Result struct {
	Moves []Move

	// Length is the total length of all expanded paths, rapids included.
	Length units.Length

	// RapidTime estimates time spent in rapids. It is zero when the job
	// configures no rapid rates.
	RapidTime units.Time

	// CutTime estimates time spent in feed moves. Moves in units per
	// revolution mode are not counted.
	CutTime units.Time
}

type runner struct {
	m       *machine.Machine
	axes    limits.AvailableAxes
	rapids  *limits.Rapids
	timed   bool
	density float64
	level   *meshlevel.MeshLeveler

	index int
	kind  string
	res   *Result
}

// Run emits the job into out and expands every move with density samples
// per unit of travel. A density <= 0 uses the job's own, then
// DefaultDensity.
//
// On error the program holds everything emitted up to the failing
// operation.
func (j *Job) Run(out *gcode.Program, density float64) (*Result, error) {
	if density <= 0 {
		density = j.Density
	}
	if density <= 0 {
		density = DefaultDensity
	}

	axes, travel, feed, rapids, err := j.Machine.limits()
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}
	level, err := j.Mesh.leveler()
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	m, err := j.Machine.newMachine(out, axes, travel, feed)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}

	r := &runner{
		m:       m,
		axes:    axes,
		rapids:  rapids,
		timed:   j.Machine.hasRapids(),
		density: density,
		level:   level,
		res:     &Result{},
	}
	for i, op := range j.ops {
		r.index = i
		r.kind = op.kind()
		if err := op.apply(r); err != nil {
			return r.res, fmt.Errorf("operation %d (%s): %w", i, op.kind(), err)
		}
	}
	if err := m.Close(); err != nil {
		return r.res, err
	}
	return r.res, nil
}

func (r *runner) add(p path.Path) {
	if r.level != nil {
		p = r.level.Level(p)
	}
	r.res.Moves = append(r.res.Moves, Move{Index: r.index, Kind: r.kind, Path: p})
	r.res.Length += p.Length
}

func (r *runner) expand(start, end coord.Pose) (path.Path, error) {
	return path.ExpandLinear(start, end, r.axes, r.density)
}

// rapid expands a rapid and estimates its duration. Nothing is recorded.
func (r *runner) rapid(start, end coord.Pose) (path.Path, units.Time, error) {
	p, err := r.expand(start, end)
	if err != nil {
		return path.Path{}, 0, err
	}
	if !r.timed {
		return p, 0, nil
	}
	t, err := r.rapids.Duration(start, end)
	if err != nil {
		return path.Path{}, 0, err
	}
	return p, t, nil
}

func (r *runner) arc(start, end coord.Pose, center coord.Point, dir coord.Direction, state machine.State, turns int) (path.Path, error) {
	normal, err := state.Plane.Normal()
	if err != nil {
		return path.Path{}, err
	}
	if turns == 0 {
		turns = 1
	}
	return path.ExpandArc(start, end, center, dir, normal, turns, r.axes, r.density)
}

// cut records a feed move already emitted by the machine.
func (r *runner) cut(p path.Path) {
	s := r.m.State()
	switch s.FeedRateMode {
	case machine.InverseTime:
		r.res.CutTime += units.Minutes(1 / s.FeedRate)
	case machine.UnitsPerMinute:
		v := units.MillimetersPerMinute(s.FeedRate)
		if s.Units == machine.Imperial {
			v = units.InchesPerMinute(s.FeedRate)
		}
		r.res.CutTime += p.Length.Over(v)
	}
	r.add(p)
}
