// Package geometry holds the model-space shapes scenes are built from.
package geometry

import (
	"math"

	"toftracer/aabox"
	"toftracer/contact"
	"toftracer/ray"
	"toftracer/vmath/vec3"
)

type Geometry interface {
	Bounds() aabox.T

	// RayInto returns the first contact within the query's span, or a miss.
	// Normals face out of the shape.
	RayInto(query ray.Segment) contact.Contact
}

// Sphere is the unit sphere at the origin.
type Sphere struct{}

func (Sphere) Bounds() aabox.T {
	unit := ray.Span{Lo: -1, Hi: 1}
	return aabox.T{Spans: [3]ray.Span{unit, unit, unit}}
}

func (Sphere) RayInto(query ray.Segment) contact.Contact {
	b := vec3.IProd(query.Ray.Slope, query.Ray.Point)
	c := vec3.IProd(query.Ray.Point, query.Ray.Point) - 1.0
	disc := b*b - c
	if disc < 0 {
		return contact.Miss()
	}

	root := math.Sqrt(disc)
	t := -b - root
	if t < query.Span.Lo {
		// Started inside; the far root is the exit.
		t = -b + root
	}
	if !query.Span.Contains(t) {
		return contact.Miss()
	}

	p := query.Ray.Eval(t)
	return contact.Contact{
		T: t,
		R: query.Ray,
		P: p,
		N: vec3.Normalize(p),
	}
}

// Box is a solid axis-aligned box.  Rays starting inside it never hit it.
type Box struct {
	Spans [3]ray.Span
}

func (b *Box) Bounds() aabox.T {
	return aabox.T{Spans: b.Spans}
}

func (b *Box) RayInto(query ray.Segment) contact.Contact {
	cover := ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)}
	hitAxis := vec3.T{}

	for i := 0; i < 3; i++ {
		cur := ray.Span{
			Lo: (b.Spans[i].Lo - query.Ray.Point[i]) / query.Ray.Slope[i],
			Hi: (b.Spans[i].Hi - query.Ray.Point[i]) / query.Ray.Slope[i],
		}

		normalComponent := -1.0
		if cur.Hi < cur.Lo {
			cur.Lo, cur.Hi = cur.Hi, cur.Lo
			normalComponent = 1.0
		}

		if !cover.Overlaps(cur) {
			return contact.Miss()
		}

		if cover.Lo < cur.Lo {
			cover.Lo = cur.Lo
			hitAxis = vec3.T{}
			hitAxis[i] = normalComponent
		}
		if cur.Hi < cover.Hi {
			cover.Hi = cur.Hi
		}
	}

	if !query.Span.Contains(cover.Lo) {
		return contact.Miss()
	}

	return contact.Contact{
		T: cover.Lo,
		R: query.Ray,
		P: query.Ray.Eval(cover.Lo),
		N: hitAxis,
	}
}
