package path

import (
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/limits"
	"github.com/mastercactapus/gcam/units"
)

// RotaryFallbackSteps is multiplied by the sample density to get the number
// of samples for a move with no Cartesian travel (a pure rotary move).
//
// It is a guess, not derived from the rotary motion itself.
const RotaryFallbackSteps = 8 * math.Pi

// ExpandLinear samples a straight move from start to end at density samples
// per millimeter.
//
// Every axis is interpolated independently by the same fraction. The first
// step is the start pose and the last step is always the end pose. The path
// length is the Cartesian distance between the two; a pure rotary move has
// zero length.
func ExpandLinear(start, end coord.Pose, axes limits.AvailableAxes, density float64) (Path, error) {
	if err := checkDensity(density); err != nil {
		return Path{}, err
	}
	s0, err := StepFromPose(start, axes)
	if err != nil {
		return Path{}, err
	}
	sn, err := StepFromPose(end, axes)
	if err != nil {
		return Path{}, err
	}

	length := s0.Position.Distance(sn.Position)
	total := length * density
	if total < 1 {
		total = RotaryFallbackSteps * density
	}

	n, err := stepCount(length, total)
	if err != nil {
		return Path{}, err
	}

	delta := end.Sub(start)
	p := Path{
		Steps:  make([]Step, 0, n+1),
		Length: units.Millimeters(length),
	}
	for i := 0; i < n; i++ {
		pose := start.Add(delta.Scale(float64(i) / total))
		step, err := StepFromPose(pose, axes)
		if err != nil {
			return Path{}, err
		}
		p.Steps = append(p.Steps, step)
	}
	p.finish(sn)

	return p, nil
}
