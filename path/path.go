package path

import (
	"fmt"
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/units"
)

// Path is an ordered, non-empty sequence of steps approximating a move.
type Path struct {
	Steps  []Step
	Length units.Length
}

// First returns the first step.
func (p Path) First() Step { return p.Steps[0] }

// Last returns the last step.
func (p Path) Last() Step { return p.Steps[len(p.Steps)-1] }

// Append adds the steps of o to p, dropping o's first step when it repeats
// p's last. Lengths are summed.
func (p Path) Append(o Path) Path {
	steps := make([]Step, 0, len(p.Steps)+len(o.Steps))
	steps = append(steps, p.Steps...)
	next := o.Steps
	if len(steps) > 0 && len(next) > 0 && steps[len(steps)-1].Equal(next[0]) {
		next = next[1:]
	}
	return Path{Steps: append(steps, next...), Length: p.Length + o.Length}
}

// finish forces the literal end step onto the path.
func (p *Path) finish(end Step) {
	if len(p.Steps) == 0 || !p.Last().Equal(end) {
		p.Steps = append(p.Steps, end)
	}
}

// MaxSteps is the most samples a single move may expand to.
const MaxSteps = 1000000

// stepCount rounds total up to a sample count, rejecting lengths and
// densities that would not fit in memory.
func stepCount(length, total float64) (int, error) {
	if math.IsInf(length, 0) || math.IsNaN(length) {
		return 0, fmt.Errorf("%w: move length %g is not finite", coord.ErrInvalidInput, length)
	}
	if !(total <= MaxSteps) {
		return 0, fmt.Errorf("%w: move needs %g steps, limit is %d", coord.ErrInvalidInput, total, MaxSteps)
	}
	n := int(math.Ceil(total))
	if n < 1 {
		n = 1
	}
	return n, nil
}

func checkDensity(density float64) error {
	if !(density > 0) || math.IsInf(density, 1) {
		return fmt.Errorf("%w: sample density must be positive, got %g", coord.ErrInvalidInput, density)
	}
	return nil
}
