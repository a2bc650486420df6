package contact

import (
	"math"

	"toftracer/affinetransform"
	"toftracer/ray"
	"toftracer/vmath/mat33"
	"toftracer/vmath/vec3"
)

// Contact is a ray-surface intersection.  A miss has a NaN T.
type Contact struct {
	T float64
	R ray.Ray
	P vec3.T
	N vec3.T
}

func Miss() Contact {
	return Contact{T: math.NaN()}
}

func (c Contact) Hit() bool {
	return !math.IsNaN(c.T)
}

// Transform applies t to c.  nm is t.NormalMatrix(), passed in so callers can
// compute it once per element.
func (c Contact) Transform(t affinetransform.T, nm mat33.T) Contact {
	result := c

	slope := t.Vector(c.R.Slope)
	scale := slope.Norm()
	result.R = ray.Ray{
		Point: t.Point(c.R.Point),
		Slope: vec3.DivVS(slope, scale),
	}
	result.T = c.T * scale

	result.P = t.Point(c.P)
	result.N = vec3.Normalize(mat33.MulMV(nm, c.N))
	return result
}
