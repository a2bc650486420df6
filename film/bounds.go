package film

import (
	"fmt"
	"image"
	"math"

	"toftracer/vmath/vec2"
)

// Bounds2f is an axis-aligned rectangle in continuous coordinates.
type Bounds2f struct {
	Min, Max vec2.T
}

// FullWindow is the crop window covering the whole image.
var FullWindow = Bounds2f{Max: vec2.T{1, 1}}

// Clamp sorts each axis of b and clamps it to [0, 1].
func (b Bounds2f) Clamp() Bounds2f {
	out := b
	for i := 0; i < 2; i++ {
		lo, hi := b.Min[i], b.Max[i]
		if hi < lo {
			lo, hi = hi, lo
		}
		out.Min[i] = math.Min(1, math.Max(0, lo))
		out.Max[i] = math.Min(1, math.Max(0, hi))
	}
	return out
}

func (b Bounds2f) Diagonal() vec2.T {
	return vec2.SubVV(b.Max, b.Min)
}

func (b Bounds2f) String() string {
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}

func toVec(p image.Point) vec2.T {
	return vec2.T{float64(p.X), float64(p.Y)}
}

func floorPoint(v vec2.T) image.Point {
	return image.Pt(int(math.Floor(v[0])), int(math.Floor(v[1])))
}

func ceilPoint(v vec2.T) image.Point {
	return image.Pt(int(math.Ceil(v[0])), int(math.Ceil(v[1])))
}
