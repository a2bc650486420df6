package integrator

import (
	"image"
	"math"
	"math/rand"

	"toftracer/integration"
	"toftracer/scene"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"
	"toftracer/vmath/vec3"
)

// PathToF traces diffuse camera paths, recording next-event estimates to
// every light at every vertex and emission wherever a path lands on it.
//
// With LightSplats on it also traces one light subpath per sample and
// connects each of its vertices to the camera.  Both estimators then see the
// same point-lit paths, so each is weighted one half.  Emission is only found
// by camera paths and keeps full weight.
type PathToF struct {
	scene *scene.Scene
	res   image.Point
	opts  Options
}

func NewPathToF(s *scene.Scene, res image.Point, opts Options) *PathToF {
	return &PathToF{scene: s, res: res, opts: opts}
}

func (pt *PathToF) lightWeight() float64 {
	if pt.opts.LightSplats && len(pt.scene.Lights) > 0 {
		return 0.5
	}
	return 1
}

func (pt *PathToF) Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat) {
	result := pt.cameraPath(pFilm, rng)
	if pt.lightWeight() == 1 {
		return result, nil
	}
	return result, pt.lightPath(rng)
}

func (pt *PathToF) cameraPath(pFilm vec2.T, rng *rand.Rand) integration.Result {
	var result integration.Result

	r := pt.scene.Camera.FilmToRay(pFilm, pt.res)
	p, dir := r.Point, r.Slope
	beta := spectrum.Gray(1)
	pathLength := 0.0
	w := pt.lightWeight()

	for depth := 0; depth < pt.opts.maxDepth(); depth++ {
		c, e := pt.scene.Trace(p, dir)
		if e == nil {
			break
		}
		pathLength += c.T

		mtl := e.Material
		if !mtl.Emission.IsBlack() {
			result.Add(integration.Record{
				Radiance:   spectrum.Mul(beta, mtl.Emission),
				TimeMetric: pathLength,
			})
		}
		if mtl.Albedo.IsBlack() {
			break
		}

		n := facing(c.N, dir)
		for _, light := range pt.scene.Lights {
			l, dist, ok := direct(pt.scene, c.P, n, mtl.Albedo, light)
			if !ok {
				continue
			}
			result.Add(integration.Record{
				Radiance:   spectrum.Scale(spectrum.Mul(beta, l), w),
				TimeMetric: pathLength + dist,
			})
		}

		// Cosine sampling cancels the cosine and 1/pi of the Lambertian
		// reflectance, leaving the albedo.
		beta = spectrum.Mul(beta, mtl.Albedo)
		p, dir = c.P, vec3.CosineUnitDistribution(n, rng)
	}

	return result
}

func (pt *PathToF) lightPath(rng *rand.Rand) []integration.Splat {
	lights := pt.scene.Lights
	light := lights[rng.Intn(len(lights))]
	cam := pt.scene.Camera

	// Uniform light choice and uniform emission direction.
	beta := spectrum.Scale(light.Intensity, 4*math.Pi*float64(len(lights)))
	p, dir := light.Position, vec3.UniformUnitDistribution(rng)
	pathLength := 0.0
	w := pt.lightWeight() * pt.opts.splatWeight()

	var splats []integration.Splat
	for depth := 0; depth < pt.opts.maxDepth(); depth++ {
		c, e := pt.scene.Trace(p, dir)
		if e == nil {
			break
		}
		pathLength += c.T

		mtl := e.Material
		if mtl.Albedo.IsBlack() {
			break
		}
		n := facing(c.N, dir)

		if pFilm, importance, ok := cam.WorldToFilm(c.P, pt.res); ok {
			toCam := vec3.SubVV(cam.Center, c.P)
			dist := toCam.Norm()
			cos := vec3.IProd(n, toCam) / dist
			if cos > 0 && pt.scene.Visible(c.P, cam.Center) {
				l := spectrum.Scale(spectrum.Mul(beta, mtl.Albedo), w*cos*importance/math.Pi)
				splats = append(splats, integration.Splat{
					PFilm:  pFilm,
					Result: integration.NewResult(integration.Record{Radiance: l, TimeMetric: pathLength + dist}),
				})
			}
		}

		beta = spectrum.Mul(beta, mtl.Albedo)
		p, dir = c.P, vec3.CosineUnitDistribution(n, rng)
	}
	return splats
}
