package machine

// Spindle describes the speeds a spindle can actually run at.
type Spindle struct {
	ranges   [][2]uint
	discrete []uint
}

// AddRange registers a continuous speed range. The bounds may be given in
// either order.
func (s *Spindle) AddRange(lo, hi uint) {
	if lo > hi {
		lo, hi = hi, lo
	}
	s.ranges = append(s.ranges, [2]uint{lo, hi})
}

// AddDiscrete registers a single achievable speed.
func (s *Spindle) AddDiscrete(v uint) {
	s.discrete = append(s.discrete, v)
}

func diff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}

// Normalise returns the achievable speed closest to the requested one.
// With nothing registered the request is returned unchanged. Ties go to the
// first registered candidate.
func (s *Spindle) Normalise(speed uint) uint {
	if len(s.ranges) == 0 && len(s.discrete) == 0 {
		return speed
	}

	best := uint(0)
	bestDiff := ^uint(0)
	consider := func(v uint) {
		if d := diff(v, speed); d < bestDiff {
			best, bestDiff = v, d
		}
	}
	for _, r := range s.ranges {
		switch {
		case speed < r[0]:
			consider(r[0])
		case speed > r[1]:
			consider(r[1])
		default:
			return speed
		}
	}
	for _, v := range s.discrete {
		consider(v)
	}
	return best
}
