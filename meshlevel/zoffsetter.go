package meshlevel

// ZOffsetter gives the height correction at an XY position. It reports false
// where no correction is known.
type ZOffsetter interface {
	OffsetZ(x, y float64) (bool, float64)
}

// ZOffsetFunc adapts a function to a ZOffsetter.
type ZOffsetFunc func(x, y float64) (bool, float64)

func (f ZOffsetFunc) OffsetZ(x, y float64) (bool, float64) { return f(x, y) }

// Flat corrects every position by the same z.
func Flat(z float64) ZOffsetter {
	return ZOffsetFunc(func(x, y float64) (bool, float64) { return true, z })
}

var noOffset = ZOffsetFunc(func(x, y float64) (bool, float64) { return false, 0 })
