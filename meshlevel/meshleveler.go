// Package meshlevel corrects expanded paths for an uneven work surface using
// a probed height mesh.
package meshlevel

import (
	"math"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/path"
)

type MeshLeveler struct {
	granularity float64
	offsetter   ZOffsetter
}

type Config struct {
	ZOffsetter ZOffsetter

	// Granularity is the longest XY distance, in millimeters, between two
	// steps after leveling. Zero keeps the steps as they are.
	Granularity float64
}

func New(cfg Config) *MeshLeveler {
	l := &MeshLeveler{
		granularity: cfg.Granularity,
		offsetter:   cfg.ZOffsetter,
	}
	if l.offsetter == nil {
		l.offsetter = noOffset
	}
	return l
}

// Level returns a copy of p with each step shifted in Z by the offset at its
// XY position. Steps outside the mesh are left as they are. Long XY moves are
// split first so the correction follows the surface. The path length is not
// changed.
func (l *MeshLeveler) Level(p path.Path) path.Path {
	steps := l.split(p.Steps)
	for i, s := range steps {
		ok, z := l.offsetter.OffsetZ(s.Position.X, s.Position.Y)
		if !ok {
			continue
		}
		steps[i].Position.Z += z
	}
	return path.Path{Steps: steps, Length: p.Length}
}

func (l *MeshLeveler) split(steps []path.Step) []path.Step {
	res := make([]path.Step, 0, len(steps))
	for i, s := range steps {
		if i == 0 || l.granularity <= 0 {
			res = append(res, s)
			continue
		}
		prev := steps[i-1]
		dist := prev.Position.DistanceXY(s.Position.X, s.Position.Y)
		if dist <= l.granularity {
			res = append(res, s)
			continue
		}

		n := int(math.Ceil(dist / l.granularity))
		delta := s.Position.Sub(prev.Position).Mul(1 / float64(n))
		for j := 1; j < n; j++ {
			t := float64(j) / float64(n)
			res = append(res, path.Step{
				Position:    prev.Position.Add(delta.Mul(float64(j))),
				Orientation: nlerp(prev.Orientation, s.Orientation, t),
			})
		}
		res = append(res, s)
	}
	return res
}

// nlerp interpolates between two rotations along the shorter arc.
func nlerp(a, b coord.Quaternion, t float64) coord.Quaternion {
	if a.W*b.W+a.X*b.X+a.Y*b.Y+a.Z*b.Z < 0 {
		b = coord.Quaternion{W: -b.W, X: -b.X, Y: -b.Y, Z: -b.Z}
	}
	return coord.Quaternion{
		W: a.W + (b.W-a.W)*t,
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}.Normalize()
}
