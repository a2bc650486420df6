package ray

import (
	"math"

	"toftracer/affinetransform"
	"toftracer/vmath/vec3"
)

// Span is the parameter interval [Lo, Hi] along a ray.
type Span struct {
	Lo, Hi float64
}

func NaNSpan() Span {
	return Span{math.NaN(), math.NaN()}
}

func (s Span) Overlaps(o Span) bool {
	return !(s.Lo > o.Hi || s.Hi <= o.Lo)
}

func (s Span) Contains(t float64) bool {
	return s.Lo <= t && t <= s.Hi
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

// Ray has a unit Slope, so ray parameters are distances.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.AddVV(r.Point, vec3.MulVS(r.Slope, t))
}

// Segment restricts a ray to a span of parameters.
type Segment struct {
	Ray  Ray
	Span Span
}

// Transform maps s through a.  The slope is renormalized and the span rescaled
// so that parameters remain distances in the new space.
func (s Segment) Transform(a affinetransform.T) Segment {
	slope := a.Vector(s.Ray.Slope)
	scale := slope.Norm()
	return Segment{
		Ray: Ray{
			Point: a.Point(s.Ray.Point),
			Slope: vec3.DivVS(slope, scale),
		},
		Span: Span{s.Span.Lo * scale, s.Span.Hi * scale},
	}
}
