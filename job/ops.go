package job

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/machine"
	"github.com/mastercactapus/gcam/units"
)

// operation is a single decoded job step.
type operation interface {
	kind() string
	apply(r *runner) error
}

type blockOp struct {
	Name string `mapstructure:"name"`
}

type endBlockOp struct {
	Restore []string `mapstructure:"restore"`
}

type unitsOp struct {
	Value machine.Units `mapstructure:"value"`
}

type planeOp struct {
	Value coord.Plane `mapstructure:"value"`
}

type motionOp struct {
	Value machine.Motion `mapstructure:"value"`
}

type arcMotionOp struct {
	Value machine.Motion `mapstructure:"value"`
}

type feedModeOp struct {
	Value machine.FeedRateMode `mapstructure:"value"`
}

type feedOp struct {
	Value float64 `mapstructure:"value"`
}

type spindleOp struct {
	Speed    uint             `mapstructure:"speed"`
	Rotation machine.Rotation `mapstructure:"rotation"`
}

type toolOp struct {
	ID      int  `mapstructure:"id"`
	Preload bool `mapstructure:"preload"`
}

type rapidOp struct {
	To map[string]float64 `mapstructure:"to"`
}

type linearOp struct {
	To map[string]float64 `mapstructure:"to"`
}

type arcOp struct {
	Direction coord.Direction    `mapstructure:"direction"`
	To        map[string]float64 `mapstructure:"to"`
	Center    map[string]float64 `mapstructure:"center"`
	Turns     int                `mapstructure:"turns"`
}

type commentOp struct {
	Text string `mapstructure:"text"`
}

type pauseOp struct {
	Text string `mapstructure:"text"`
}

type accuracyOp struct {
	Mode      string    `mapstructure:"mode"`
	Tolerance []float64 `mapstructure:"tolerance"`
}

func (blockOp) kind() string     { return "block" }
func (endBlockOp) kind() string  { return "end_block" }
func (unitsOp) kind() string     { return "units" }
func (planeOp) kind() string     { return "plane" }
func (motionOp) kind() string    { return "motion" }
func (arcMotionOp) kind() string { return "arc_motion" }
func (feedModeOp) kind() string  { return "feed_mode" }
func (feedOp) kind() string      { return "feed" }
func (spindleOp) kind() string   { return "spindle" }
func (toolOp) kind() string      { return "tool" }
func (rapidOp) kind() string     { return "rapid" }
func (linearOp) kind() string    { return "linear" }
func (arcOp) kind() string       { return "arc" }
func (commentOp) kind() string   { return "comment" }
func (pauseOp) kind() string     { return "pause" }
func (accuracyOp) kind() string  { return "accuracy" }

var newOperation = map[string]func() operation{
	"block":      func() operation { return &blockOp{} },
	"end_block":  func() operation { return &endBlockOp{} },
	"units":      func() operation { return &unitsOp{} },
	"plane":      func() operation { return &planeOp{} },
	"motion":     func() operation { return &motionOp{} },
	"arc_motion": func() operation { return &arcMotionOp{} },
	"feed_mode":  func() operation { return &feedModeOp{} },
	"feed":       func() operation { return &feedOp{} },
	"spindle":    func() operation { return &spindleOp{} },
	"tool":       func() operation { return &toolOp{} },
	"rapid":      func() operation { return &rapidOp{} },
	"linear":     func() operation { return &linearOp{} },
	"arc":        func() operation { return &arcOp{} },
	"comment":    func() operation { return &commentOp{} },
	"pause":      func() operation { return &pauseOp{} },
	"accuracy":   func() operation { return &accuracyOp{} },
}

// decodeOperation picks the operation type from the "op" key and decodes the
// remaining keys into it.
func decodeOperation(raw map[string]interface{}) (operation, error) {
	name, ok := raw["op"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing op", coord.ErrInvalidInput)
	}
	fn, ok := newOperation[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown op %q", coord.ErrInvalidInput, name)
	}

	fields := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k != "op" {
			fields[k] = v
		}
	}

	op := fn()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		Result:      op,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coord.ErrInvalidInput, name, err)
	}
	return op, nil
}

var restoreNames = map[string]machine.Restore{
	"units":      machine.RestoreUnits,
	"plane":      machine.RestorePlane,
	"motion":     machine.RestoreMotion,
	"arc_motion": machine.RestoreArcMotion,
	"feed_mode":  machine.RestoreFeedRateMode,
	"feed":       machine.RestoreFeedRate,
	"spindle":    machine.RestoreSpindle,
	"tool":       machine.RestoreTool,
	"position":   machine.RestorePosition,
	"all":        machine.RestoreAll,
}

func (o *blockOp) apply(r *runner) error { return r.m.NewBlock(o.Name) }

func (o *endBlockOp) apply(r *runner) error {
	mask := machine.RestoreNone
	for _, name := range o.Restore {
		v, ok := restoreNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("%w: unknown restore %q", coord.ErrInvalidInput, name)
		}
		mask |= v
	}
	return r.m.EndBlock(mask)
}

func (o *unitsOp) apply(r *runner) error     { return r.m.SetUnits(o.Value) }
func (o *planeOp) apply(r *runner) error     { return r.m.SetPlane(o.Value) }
func (o *motionOp) apply(r *runner) error    { return r.m.SetMotion(o.Value) }
func (o *arcMotionOp) apply(r *runner) error { return r.m.SetArcMotion(o.Value) }
func (o *feedModeOp) apply(r *runner) error  { return r.m.SetFeedRateMode(o.Value) }
func (o *feedOp) apply(r *runner) error      { return r.m.SetFeedRate(o.Value) }

func (o *spindleOp) apply(r *runner) error {
	if o.Rotation == machine.Stop {
		return r.m.StopSpindle()
	}
	return r.m.StartSpindle(o.Speed, o.Rotation)
}

func (o *toolOp) apply(r *runner) error {
	if o.Preload {
		return r.m.SetTool(o.ID)
	}
	return r.m.ToolChange(o.ID)
}

func (o *rapidOp) apply(r *runner) error {
	offsets, err := parseAxisMap(o.To)
	if err != nil {
		return err
	}
	start := r.m.State().Pose
	end, err := r.m.Target(offsets...)
	if err != nil {
		return err
	}
	p, t, err := r.rapid(start, end)
	if err != nil {
		return err
	}
	if err := r.m.Rapid(offsets...); err != nil {
		return err
	}
	r.res.RapidTime += t
	r.add(p)
	return nil
}

func (o *linearOp) apply(r *runner) error {
	offsets, err := parseAxisMap(o.To)
	if err != nil {
		return err
	}
	start := r.m.State().Pose
	end, err := r.m.Target(offsets...)
	if err != nil {
		return err
	}
	p, err := r.expand(start, end)
	if err != nil {
		return err
	}
	if err := r.m.Linear(offsets...); err != nil {
		return err
	}
	r.cut(p)
	return nil
}

func (o *arcOp) apply(r *runner) error {
	end, err := parseAxisMap(o.To)
	if err != nil {
		return err
	}
	center, err := parseAxisMap(o.Center)
	if err != nil {
		return err
	}

	state := r.m.State()
	// ArcTarget rejects planes without a helix axis.
	helix, _ := state.Plane.Helix()
	move := machine.ArcMove{
		Direction: o.Direction,
		Helix:     helix,
		End:       end,
		Center:    center,
		Turns:     o.Turns,
	}
	target, err := r.m.ArcTarget(move)
	if err != nil {
		return err
	}

	c := state.Pose
	for _, off := range center {
		if state.ArcMotion == machine.Incremental {
			c, err = c.Translate(off)
		} else {
			c, err = c.With(off)
		}
		if err != nil {
			return err
		}
	}
	p, err := r.arc(state.Pose, target, c.Point(), o.Direction, state, o.Turns)
	if err != nil {
		return err
	}
	if err := r.m.Arc(move); err != nil {
		return err
	}
	r.cut(p)
	return nil
}

func (o *commentOp) apply(r *runner) error { return r.m.Comment(o.Text) }
func (o *pauseOp) apply(r *runner) error   { return r.m.OptionalPause(o.Text) }

func (o *accuracyOp) apply(r *runner) error {
	switch strings.ToLower(o.Mode) {
	case "exact_path":
		return r.m.AccuracyExactPath()
	case "exact_stop":
		return r.m.AccuracyExactStop()
	case "blend":
		tol := make([]units.Length, len(o.Tolerance))
		for i, v := range o.Tolerance {
			tol[i] = units.Millimeters(v)
		}
		return r.m.AccuracyPathBlending(tol...)
	}
	return fmt.Errorf("%w: unknown accuracy mode %q", coord.ErrInvalidInput, o.Mode)
}
