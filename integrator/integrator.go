// Package integrator estimates time-resolved radiance arriving at the camera
// of a scene.  Every estimate carries one record per light path it found,
// with the path's total length as the time metric.
package integrator

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"toftracer/integration"
	"toftracer/scene"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"
	"toftracer/vmath/vec3"
)

type Integrator interface {
	// Li estimates the radiance through continuous film position pFilm.
	// Splats carry contributions that belong to other film positions.
	Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat)
}

type Options struct {
	// MaxDepth bounds the number of surface vertices on a path.  Zero means 5.
	MaxDepth int

	// LightSplats adds a light-tracing estimate, delivered as splats.  Only
	// PathToF uses it.
	LightSplats bool

	// SplatWeight multiplies every light-tracing splat.  Set it to the full
	// film's pixel count over the number of pixels sampled, so that light
	// paths cover the film once per sample per pixel.  Zero means 1.
	SplatWeight float64
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return 5
	}
	return o.MaxDepth
}

func (o Options) splatWeight() float64 {
	if o.SplatWeight == 0 {
		return 1
	}
	return o.SplatWeight
}

var constructors = map[string]func(s *scene.Scene, res image.Point, opts Options) Integrator{
	"direct": func(s *scene.Scene, res image.Point, opts Options) Integrator {
		return NewDirectToF(s, res)
	},
	"path": func(s *scene.Scene, res image.Point, opts Options) Integrator {
		return NewPathToF(s, res, opts)
	},
}

// Names lists the integrators Create accepts.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the named integrator for a film of resolution res.
func Create(name string, s *scene.Scene, res image.Point, opts Options) (Integrator, error) {
	c, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q; want one of %v", name, Names())
	}
	if s.Camera == nil {
		return nil, fmt.Errorf("scene has no camera")
	}
	return c(s, res, opts), nil
}

// facing flips n to the side of the surface that incoming came from.
func facing(n, incoming vec3.T) vec3.T {
	if vec3.IProd(n, incoming) > 0 {
		return vec3.Neg(n)
	}
	return n
}

// direct is the radiance leaving a Lambertian point p with normal n towards
// the viewer due to light, and the distance from p to the light.  ok is false
// when the light is below the surface or occluded.
func direct(s *scene.Scene, p, n vec3.T, albedo spectrum.T, light scene.PointLight) (l spectrum.T, dist float64, ok bool) {
	toLight := vec3.SubVV(light.Position, p)
	dist2 := vec3.IProd(toLight, toLight)
	dist = math.Sqrt(dist2)
	cos := vec3.IProd(n, toLight) / dist
	if !(cos > 0) {
		return spectrum.T{}, 0, false
	}
	if !s.Visible(p, light.Position) {
		return spectrum.T{}, 0, false
	}
	l = spectrum.Scale(spectrum.Mul(albedo, light.Intensity), cos/(math.Pi*dist2))
	return l, dist, true
}
