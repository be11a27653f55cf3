// Package job loads YAML job files and runs them: every operation drives a
// machine.Machine, and every move is also expanded into a path.Path.
package job

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/machine"
	"github.com/mastercactapus/gcam/meshlevel"
	"github.com/mastercactapus/gcam/units"
)

// Rates holds velocity limits: linear in mm/min, angular in degrees/min.
type Rates struct {
	Global  float64            `yaml:"global"`
	Linear  map[string]float64 `yaml:"linear"`
	Angular map[string]float64 `yaml:"angular"`
}

type SpindleConfig struct {
	Ranges   [][2]uint `yaml:"ranges"`
	Discrete []uint    `yaml:"discrete"`
}

type ToolConfig struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Diameter float64 `yaml:"diameter"`
	Flutes   int     `yaml:"flutes"`
}

// MachineConfig is the machine section of a job file. Lengths are in
// millimeters.
type MachineConfig struct {
	Name    string                `yaml:"name"`
	Type    string                `yaml:"type"`
	Axes    string                `yaml:"axes"`
	Travel  map[string]float64    `yaml:"travel"`
	Feed    Rates                 `yaml:"feed"`
	Rapids  Rates                 `yaml:"rapids"`
	Spindle SpindleConfig         `yaml:"spindle"`
	Tools   map[int]ToolConfig    `yaml:"tools"`
}

// MeshConfig levels every expanded path with a probed height mesh.
type MeshConfig struct {
	// Reference is subtracted from every probed height.
	Reference   float64      `yaml:"reference"`
	Granularity float64      `yaml:"granularity"`
	Points      [][3]float64 `yaml:"points"`
}

// Job is a parsed job file.
type Job struct {
	Machine    MachineConfig            `yaml:"machine"`
	Density    float64                  `yaml:"density"`
	Mesh       *MeshConfig              `yaml:"mesh"`
	Operations []map[string]interface{} `yaml:"operations"`

	ops []operation
}

// Load parses a job file.
func Load(r io.Reader) (*Job, error) {
	var j Job
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("%w: decode job: %v", coord.ErrInvalidInput, err)
	}

	j.ops = make([]operation, 0, len(j.Operations))
	for i, raw := range j.Operations {
		op, err := decodeOperation(raw)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		j.ops = append(j.ops, op)
	}
	return &j, nil
}

// parseAxisMap converts a map keyed by axis letter into offsets in canonical
// axis order. Linear values are millimeters, rotary values degrees.
func parseAxisMap(m map[string]float64) ([]coord.Offset, error) {
	res := make([]coord.Offset, 0, len(m))
	for k, v := range m {
		if len(k) != 1 {
			return nil, fmt.Errorf("%w: axis %q", coord.ErrInvalidInput, k)
		}
		a, err := coord.ParseAxis(strings.ToUpper(k)[0])
		if err != nil {
			return nil, err
		}
		if a.IsRotary() {
			res = append(res, coord.R(a, units.Degrees(v)))
		} else {
			res = append(res, coord.L(a, units.Millimeters(v)))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Axis < res[j].Axis })
	return res, nil
}

func (r Rates) apply(setLinear func(coord.Axis, units.Velocity), setAngular func(coord.Axis, units.AngularVelocity)) error {
	lin, err := parseAxisMap(r.Linear)
	if err != nil {
		return err
	}
	for _, o := range lin {
		if o.Axis.IsRotary() {
			return fmt.Errorf("%w: linear rate for rotary axis %s", coord.ErrInvalidInput, o.Axis)
		}
		setLinear(o.Axis, units.MillimetersPerMinute(o.Length().Millimeters()))
	}
	ang, err := parseAxisMap(r.Angular)
	if err != nil {
		return err
	}
	for _, o := range ang {
		if !o.Axis.IsRotary() {
			return fmt.Errorf("%w: angular rate for linear axis %s", coord.ErrInvalidInput, o.Axis)
		}
		setAngular(o.Axis, units.DegreesPerMinute(o.Angle().Degrees()))
	}
	return nil
}

// limits builds the machine limits described by the config.
func (c MachineConfig) limits() (limits.AvailableAxes, *limits.Travel, *limits.FeedRate, *limits.Rapids, error) {
	axes := limits.DefaultAxes()
	if c.Axes != "" {
		var err error
		axes, err = limits.ParseAxes(strings.ToUpper(c.Axes))
		if err != nil {
			return axes, nil, nil, nil, err
		}
	}

	var travel limits.Travel
	offsets, err := parseAxisMap(c.Travel)
	if err != nil {
		return axes, nil, nil, nil, err
	}
	for _, o := range offsets {
		if o.Axis.IsRotary() {
			return axes, nil, nil, nil, fmt.Errorf("%w: travel limit for rotary axis %s", coord.ErrInvalidInput, o.Axis)
		}
		travel.SetLimit(o.Axis, o.Length())
	}

	var feed limits.FeedRate
	feed.SetGlobal(units.MillimetersPerMinute(c.Feed.Global))
	if err := c.Feed.apply(feed.SetLinear, feed.SetAngular); err != nil {
		return axes, nil, nil, nil, err
	}

	var rapids limits.Rapids
	rapids.SetGlobal(units.MillimetersPerMinute(c.Rapids.Global))
	if err := c.Rapids.apply(rapids.SetLinear, rapids.SetAngular); err != nil {
		return axes, nil, nil, nil, err
	}
	return axes, &travel, &feed, &rapids, nil
}

// hasRapids reports whether any rapid rate is configured.
func (c MachineConfig) hasRapids() bool {
	return c.Rapids.Global > 0 || len(c.Rapids.Linear) > 0 || len(c.Rapids.Angular) > 0
}

// newMachine creates the machine and registers spindle speeds and tools.
func (c MachineConfig) newMachine(out machine.Output, axes limits.AvailableAxes, travel *limits.Travel, feed *limits.FeedRate) (*machine.Machine, error) {
	var typ machine.Type
	if c.Type != "" {
		if err := typ.UnmarshalText([]byte(c.Type)); err != nil {
			return nil, err
		}
	}

	m, err := machine.New(machine.Config{
		Type:     typ,
		Axes:     axes,
		Travel:   travel,
		FeedRate: feed,
		Name:     c.Name,
	}, out)
	if err != nil {
		return nil, err
	}

	for _, r := range c.Spindle.Ranges {
		m.AddSpindleRange(r[0], r[1])
	}
	for _, v := range c.Spindle.Discrete {
		m.AddSpindleDiscrete(v)
	}

	ids := make([]int, 0, len(c.Tools))
	for id := range c.Tools {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		tc := c.Tools[id]
		tool := machine.Tool{
			Name:     tc.Name,
			Diameter: units.Millimeters(tc.Diameter),
			Flutes:   tc.Flutes,
		}
		switch strings.ToLower(tc.Type) {
		case "", "mill":
			tool.Type = machine.MillTool
		case "lathe":
			tool.Type = machine.LatheTool
		default:
			return nil, fmt.Errorf("%w: tool %d type %q", coord.ErrInvalidInput, id, tc.Type)
		}
		ok, err := m.AddTool(id, tool)
		if err != nil {
			return nil, fmt.Errorf("tool %d: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: tool id %d cannot be used", coord.ErrInvalidInput, id)
		}
	}
	return m, nil
}

func (c *MeshConfig) leveler() (*meshlevel.MeshLeveler, error) {
	if c == nil {
		return nil, nil
	}
	points := make([]coord.Point, len(c.Points))
	for i, p := range c.Points {
		points[i] = coord.Point{X: p[0], Y: p[1], Z: p[2]}
	}
	mesh, err := meshlevel.NewMesh(meshlevel.OffsetFrom(c.Reference, points))
	if err != nil {
		return nil, err
	}
	return meshlevel.New(meshlevel.Config{ZOffsetter: mesh, Granularity: c.Granularity}), nil
}
