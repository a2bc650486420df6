// Package scene holds the diffuse world the integrators trace against.
package scene

import (
	"math"

	"toftracer/aabox"
	"toftracer/affinetransform"
	"toftracer/camera"
	"toftracer/contact"
	"toftracer/geometry"
	"toftracer/ray"
	"toftracer/spectrum"
	"toftracer/vmath/mat33"
	"toftracer/vmath/vec3"
)

// Epsilon keeps secondary rays from hitting the surface they leave.
const Epsilon = 1e-4

// Material is a Lambertian reflector with optional emission.
type Material struct {
	Albedo   spectrum.T
	Emission spectrum.T
}

type Element struct {
	Geometry geometry.Geometry
	Material Material

	// The transform that takes model space to world space.
	ModelToWorld affinetransform.T
}

// PointLight radiates Intensity (radiance times area per steradian) equally
// in every direction.
type PointLight struct {
	Position  vec3.T
	Intensity spectrum.T
}

type crushedElement struct {
	elt *Element

	worldToModel        affinetransform.T
	modelToWorldNormals mat33.T

	// The element's bounding box in world coordinates.
	worldBounds aabox.T
}

type Scene struct {
	Elements []*Element
	Lights   []PointLight
	Camera   *camera.Pinhole

	crushed []crushedElement
	bounds  aabox.T
}

func (s *Scene) AddElement(e *Element) int {
	s.Elements = append(s.Elements, e)
	return len(s.Elements) - 1
}

func (s *Scene) AddLight(l PointLight) int {
	s.Lights = append(s.Lights, l)
	return len(s.Lights) - 1
}

// Crush precomputes inverse transforms and world bounds.  It must be called
// after the last element is added and before the first query.
func (s *Scene) Crush() {
	s.crushed = s.crushed[:0]
	s.bounds = aabox.Empty()
	for _, e := range s.Elements {
		worldBounds := e.Geometry.Bounds().Transform(e.ModelToWorld)
		s.crushed = append(s.crushed, crushedElement{
			elt:                 e,
			worldToModel:        e.ModelToWorld.Invert(),
			modelToWorldNormals: e.ModelToWorld.NormalMatrix(),
			worldBounds:         worldBounds,
		})
		s.bounds = s.bounds.Union(worldBounds)
	}
}

// Bounds is the world box around every element.  Valid after Crush.
func (s *Scene) Bounds() aabox.T {
	return s.bounds
}

// Intersect returns the nearest contact along q and the element it lies on.
// On a miss the element is nil.
func (s *Scene) Intersect(q ray.Segment) (contact.Contact, *Element) {
	nearest := contact.Miss()
	var hit *Element

	for i := range s.crushed {
		ce := &s.crushed[i]
		if ce.worldBounds.RayTest(q).IsNaN() {
			continue
		}

		mdlQuery := q.Transform(ce.worldToModel)
		c := ce.elt.Geometry.RayInto(mdlQuery)
		if !c.Hit() {
			continue
		}

		worldContact := c.Transform(ce.elt.ModelToWorld, ce.modelToWorldNormals)
		if !q.Span.Contains(worldContact.T) {
			continue
		}
		q.Span.Hi = worldContact.T
		nearest = worldContact
		hit = ce.elt
	}

	return nearest, hit
}

// Visible reports whether the open segment between a and b is unobstructed.
func (s *Scene) Visible(a, b vec3.T) bool {
	d := vec3.SubVV(b, a)
	dist := d.Norm()
	if dist <= 2*Epsilon {
		return true
	}
	q := ray.Segment{
		Ray:  ray.Ray{Point: a, Slope: vec3.DivVS(d, dist)},
		Span: ray.Span{Lo: Epsilon, Hi: dist - Epsilon},
	}
	_, e := s.Intersect(q)
	return e == nil
}

// Trace intersects the ray from p along dir, skipping the first Epsilon.
func (s *Scene) Trace(p, dir vec3.T) (contact.Contact, *Element) {
	return s.Intersect(ray.Segment{
		Ray:  ray.Ray{Point: p, Slope: dir},
		Span: ray.Span{Lo: Epsilon, Hi: math.Inf(1)},
	})
}
