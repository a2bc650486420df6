package integrator

import (
	"image"
	"math/rand"

	"toftracer/integration"
	"toftracer/scene"
	"toftracer/vmath/vec2"
)

// DirectToF lights the first surface each camera ray hits.  Each unoccluded
// light yields a record whose time metric is the camera-surface-light path
// length; an emissive surface yields one more at the camera-surface
// distance.
type DirectToF struct {
	scene *scene.Scene
	res   image.Point
}

func NewDirectToF(s *scene.Scene, res image.Point) *DirectToF {
	return &DirectToF{scene: s, res: res}
}

func (d *DirectToF) Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat) {
	r := d.scene.Camera.FilmToRay(pFilm, d.res)
	c, e := d.scene.Trace(r.Point, r.Slope)
	if e == nil {
		return integration.Result{}, nil
	}

	var result integration.Result
	if !e.Material.Emission.IsBlack() {
		result.Add(integration.Record{Radiance: e.Material.Emission, TimeMetric: c.T})
	}
	if e.Material.Albedo.IsBlack() {
		return result, nil
	}

	n := facing(c.N, r.Slope)
	for _, light := range d.scene.Lights {
		l, dist, ok := direct(d.scene, c.P, n, e.Material.Albedo, light)
		if !ok {
			continue
		}
		result.Add(integration.Record{Radiance: l, TimeMetric: c.T + dist})
	}
	return result, nil
}
