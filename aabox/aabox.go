// Package aabox implements axis-aligned bounding boxes for ray rejection.
package aabox

import (
	"math"

	"toftracer/affinetransform"
	"toftracer/ray"
	"toftracer/vmath/vec3"
)

// T is the product of one span per axis.
type T struct {
	Spans [3]ray.Span
}

// Empty contains nothing; growing it by any point yields that point.
func Empty() T {
	inf := ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)}
	return T{Spans: [3]ray.Span{inf, inf, inf}}
}

// Grow returns the smallest box containing a and p.
func (a T) Grow(p vec3.T) T {
	for i := range a.Spans {
		a.Spans[i].Lo = math.Min(a.Spans[i].Lo, p[i])
		a.Spans[i].Hi = math.Max(a.Spans[i].Hi, p[i])
	}
	return a
}

func (a T) Union(b T) T {
	for i := range a.Spans {
		a.Spans[i].Lo = math.Min(a.Spans[i].Lo, b.Spans[i].Lo)
		a.Spans[i].Hi = math.Max(a.Spans[i].Hi, b.Spans[i].Hi)
	}
	return a
}

// Transform bounds the image of a's corners under t.
func (a T) Transform(t affinetransform.T) T {
	result := Empty()
	for c := 0; c < 8; c++ {
		corner := vec3.T{}
		for i := range corner {
			if c&(1<<i) == 0 {
				corner[i] = a.Spans[i].Lo
			} else {
				corner[i] = a.Spans[i].Hi
			}
		}
		result = result.Grow(t.Point(corner))
	}
	return result
}

// RayTest returns the part of q's span that lies inside a, or a NaN span if
// there is none.
func (a T) RayTest(q ray.Segment) ray.Span {
	cover := q.Span
	for i := 0; i < 3; i++ {
		cur := ray.Span{
			Lo: (a.Spans[i].Lo - q.Ray.Point[i]) / q.Ray.Slope[i],
			Hi: (a.Spans[i].Hi - q.Ray.Point[i]) / q.Ray.Slope[i],
		}
		if cur.Hi < cur.Lo {
			cur.Lo, cur.Hi = cur.Hi, cur.Lo
		}
		if !cover.Overlaps(cur) {
			return ray.NaNSpan()
		}
		cover.Lo = math.Max(cover.Lo, cur.Lo)
		cover.Hi = math.Min(cover.Hi, cur.Hi)
	}
	return cover
}
