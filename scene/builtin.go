package scene

import (
	"fmt"
	"math"
	"sort"

	"toftracer/affinetransform"
	"toftracer/camera"
	"toftracer/geometry"
	"toftracer/ray"
	"toftracer/spectrum"
	"toftracer/vmath/vec3"
)

var builtins = map[string]func(aspect float64) *Scene{
	"corner":  corner,
	"spheres": spheres,
}

// BuiltinNames lists the scenes Builtin accepts.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a crushed copy of the named scene with a camera matching
// the film's aspect ratio.  Distances are in metres.
func Builtin(name string, aspect float64) (*Scene, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q; want one of %v", name, BuiltinNames())
	}
	if !(aspect > 0) || math.IsInf(aspect, 0) {
		return nil, fmt.Errorf("bad aspect ratio %v", aspect)
	}
	s := build(aspect)
	s.Crush()
	return s, nil
}

func slab(x, y, z ray.Span) geometry.Geometry {
	return &geometry.Box{Spans: [3]ray.Span{x, y, z}}
}

func placed(center, scale vec3.T) affinetransform.T {
	return affinetransform.Compose(affinetransform.Translate(center), affinetransform.Scale(scale))
}

// corner is two walls meeting a floor, with a block in the corner.
func corner(aspect float64) *Scene {
	s := &Scene{}
	white := Material{Albedo: spectrum.Gray(0.7)}

	s.AddElement(&Element{
		Geometry:     slab(ray.Span{Lo: -2, Hi: 2}, ray.Span{Lo: -2, Hi: 2}, ray.Span{Lo: -0.1, Hi: 0}),
		Material:     white,
		ModelToWorld: affinetransform.Identity(),
	})
	s.AddElement(&Element{
		Geometry:     slab(ray.Span{Lo: 2, Hi: 2.1}, ray.Span{Lo: -2, Hi: 2}, ray.Span{Lo: 0, Hi: 3}),
		Material:     white,
		ModelToWorld: affinetransform.Identity(),
	})
	s.AddElement(&Element{
		Geometry:     slab(ray.Span{Lo: -2, Hi: 2}, ray.Span{Lo: 2, Hi: 2.1}, ray.Span{Lo: 0, Hi: 3}),
		Material:     Material{Albedo: spectrum.T{0.2, 0.6, 0.2}},
		ModelToWorld: affinetransform.Identity(),
	})

	unit := ray.Span{Lo: -1, Hi: 1}
	s.AddElement(&Element{
		Geometry:     slab(unit, unit, unit),
		Material:     Material{Albedo: spectrum.T{0.7, 0.15, 0.1}},
		ModelToWorld: placed(vec3.T{1.2, 1.2, 0.35}, vec3.T{0.35, 0.35, 0.35}),
	})

	s.AddLight(PointLight{Position: vec3.T{0, 0, 2.5}, Intensity: spectrum.Gray(4)})
	s.Camera = camera.NewPinhole(vec3.T{-1.5, -1, 1.5}, vec3.T{2, 1.6, 0.6}, vec3.T{0, 0, 1}, math.Pi/3, aspect)
	return s
}

// spheres is three diffuse balls and a small glowing one on a floor.
func spheres(aspect float64) *Scene {
	s := &Scene{}

	s.AddElement(&Element{
		Geometry:     slab(ray.Span{Lo: -5, Hi: 5}, ray.Span{Lo: -5, Hi: 5}, ray.Span{Lo: -0.1, Hi: 0}),
		Material:     Material{Albedo: spectrum.Gray(0.5)},
		ModelToWorld: affinetransform.Identity(),
	})

	balls := []struct {
		center vec3.T
		radius float64
		albedo spectrum.T
	}{
		{center: vec3.T{-1.2, 0, 0.5}, radius: 0.5, albedo: spectrum.T{0.8, 0.2, 0.2}},
		{center: vec3.T{0, 0.8, 0.7}, radius: 0.7, albedo: spectrum.Gray(0.8)},
		{center: vec3.T{1.2, -0.3, 0.4}, radius: 0.4, albedo: spectrum.T{0.2, 0.3, 0.8}},
	}
	for _, b := range balls {
		s.AddElement(&Element{
			Geometry:     geometry.Sphere{},
			Material:     Material{Albedo: b.albedo},
			ModelToWorld: placed(b.center, vec3.T{b.radius, b.radius, b.radius}),
		})
	}
	s.AddElement(&Element{
		Geometry:     geometry.Sphere{},
		Material:     Material{Emission: spectrum.T{4, 3, 1}},
		ModelToWorld: placed(vec3.T{0.3, -0.9, 0.15}, vec3.T{0.15, 0.15, 0.15}),
	})

	s.AddLight(PointLight{Position: vec3.T{-1, -2, 3}, Intensity: spectrum.Gray(8)})
	s.Camera = camera.NewPinhole(vec3.T{0, -4, 1.5}, vec3.T{0, 0, 0.5}, vec3.T{0, 0, 1}, math.Pi/3, aspect)
	return s
}
