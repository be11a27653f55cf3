package grbl

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/units"
)

var (
	ErrNotIdle     = errors.New("machine not idle")
	ErrNoProbeData = errors.New("no probe data returned")
	ErrProbeFailed = errors.New("probe did not trigger")
)

// ProbeOptions configure a straight Z probe.
type ProbeOptions struct {
	FeedRate units.Velocity

	// MaxTravel is the relative Z distance to probe, negative for down.
	MaxTravel units.Length
}

// ProbeGridOptions configure a grid of Z probes starting at the current
// position and extending DistanceX by DistanceY.
type ProbeGridOptions struct {
	ProbeOptions

	DistanceX, DistanceY units.Length

	// Granularity is the longest distance between two probe points.
	Granularity units.Length
}

func (opt ProbeGridOptions) validate() error {
	if opt.FeedRate <= 0 || opt.MaxTravel == 0 {
		return fmt.Errorf("%w: probe needs a feed rate and travel", coord.ErrInvalidInput)
	}
	if opt.DistanceX <= 0 || opt.DistanceY <= 0 || opt.Granularity <= 0 {
		return fmt.Errorf("%w: probe grid needs positive size and granularity", coord.ErrInvalidInput)
	}
	return nil
}

var (
	g0   = gcode.Word{W: 'G', Arg: 0}
	g53  = gcode.Word{W: 'G', Arg: 53}
	g90  = gcode.Word{W: 'G', Arg: 90}
	g91  = gcode.Word{W: 'G', Arg: 91}
	g382 = gcode.Word{W: 'G', Arg: 38.2}
)

func mm(l units.Length) float64 { return l.Millimeters() }

// probe adds a probe cycle followed by a lift to the machine Z height lift.
func (opt ProbeOptions) probe(p *gcode.Program, lift units.Length) {
	p.AddLine(gcode.NewLine("", g91, g382,
		gcode.Word{W: 'Z', Arg: mm(opt.MaxTravel)},
		gcode.Word{W: 'F', Arg: opt.FeedRate.MillimetersPerMinute()},
	))
	p.AddLine(gcode.NewLine("", g90, g53, g0, gcode.Word{W: 'Z', Arg: mm(lift)}))
}

func goToXY(p *gcode.Program, x, y units.Length) {
	p.AddLine(gcode.NewLine("", g90, g53, g0,
		gcode.Word{W: 'X', Arg: mm(x)},
		gcode.Word{W: 'Y', Arg: mm(y)},
	))
}

// quickProgram probes the corners and center of the grid from the starting
// height. The point at start is probed first.
func (opt ProbeGridOptions) quickProgram(start coord.Pose) *gcode.Program {
	var p gcode.Program
	p.AddLine(gcode.NewLine("", gcode.Word{W: 'G', Arg: 21}))
	opt.probe(&p, start.Z)

	probe := func(x, y units.Length) {
		goToXY(&p, start.X+x, start.Y+y)
		opt.probe(&p, start.Z)
	}
	probe(0, opt.DistanceY)
	probe(opt.DistanceX/2, opt.DistanceY/2)
	probe(opt.DistanceX, 0)
	probe(opt.DistanceX, opt.DistanceY)
	goToXY(&p, start.X, start.Y)
	return &p
}

// gridProgram probes in a serpentine so that no two points are farther than
// Granularity apart, lifting to height between points and returning to start
// afterwards.
func (opt ProbeGridOptions) gridProgram(start coord.Pose, height units.Length) *gcode.Program {
	// travel is measured from the starting height
	opt.MaxTravel += start.Z - height

	xyDist := math.Sqrt(mm(opt.Granularity) * mm(opt.Granularity) / 2)
	xCount := int(math.Ceil(mm(opt.DistanceX) / xyDist))
	yCount := int(math.Ceil(mm(opt.DistanceY) / xyDist))

	var p gcode.Program
	p.AddLine(gcode.NewLine("", gcode.Word{W: 'G', Arg: 21}))
	p.AddLine(gcode.NewLine("", g90, g53, g0, gcode.Word{W: 'Z', Arg: mm(height)}))
	for y := 0; y <= yCount; y++ {
		for x := 0; x <= xCount; x++ {
			xVal := opt.DistanceX / units.Length(xCount) * units.Length(x)
			if y%2 != 0 {
				xVal = opt.DistanceX - xVal
			}
			goToXY(&p, start.X+xVal, start.Y+opt.DistanceY/units.Length(yCount)*units.Length(y))
			opt.probe(&p, height)
		}
	}
	p.AddLine(gcode.NewLine("", g90, g53, g0, gcode.Word{W: 'Z', Arg: mm(start.Z)}))
	goToXY(&p, start.X, start.Y)
	return &p
}

// collect returns the probes reported since the last reset, failing if any
// of them did not trigger.
func (c *Controller) collect() ([]Probe, error) {
	probes := c.Probes()
	if len(probes) == 0 {
		return nil, ErrNoProbeData
	}
	for _, prb := range probes {
		if !prb.Valid {
			return nil, fmt.Errorf("%w at %v", ErrProbeFailed, prb.Pose)
		}
	}
	return probes, nil
}

// ProbeGrid measures the work surface: a quick pass over the corners finds
// the highest point, then a full grid is probed from just above it. The
// returned points are in work coordinates.
func (c *Controller) ProbeGrid(ctx context.Context, opt ProbeGridOptions) ([]coord.Point, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	stat := c.Status()
	if stat.State != "Idle" {
		return nil, fmt.Errorf("%w: %s", ErrNotIdle, stat.State)
	}

	c.ResetProbes()
	if _, err := c.Send(ctx, opt.quickProgram(stat.MPos)); err != nil {
		return nil, err
	}
	quick, err := c.collect()
	if err != nil {
		return nil, err
	}
	maxZ := quick[0].Pose.Z
	for _, prb := range quick[1:] {
		if prb.Pose.Z > maxZ {
			maxZ = prb.Pose.Z
		}
	}

	c.ResetProbes()
	if _, err := c.Send(ctx, opt.gridProgram(stat.MPos, maxZ+units.Millimeters(0.2))); err != nil {
		return nil, err
	}
	grid, err := c.collect()
	if err != nil {
		return nil, err
	}

	wco := c.Status().WCO
	points := make([]coord.Point, len(grid))
	for i, prb := range grid {
		points[i] = prb.Pose.Sub(wco).Point()
	}
	return points, nil
}
