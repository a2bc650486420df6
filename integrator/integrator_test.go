package integrator

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"toftracer/affinetransform"
	"toftracer/camera"
	"toftracer/geometry"
	"toftracer/integration"
	"toftracer/ray"
	"toftracer/scene"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"
	"toftracer/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var testRes = image.Pt(2, 2)

// floorScene is a grey floor at z=0 seen from 2m straight above, lit from 3m
// straight above.
func floorScene(extra ...*scene.Element) *scene.Scene {
	s := &scene.Scene{}
	s.AddElement(&scene.Element{
		Geometry:     &geometry.Box{Spans: [3]ray.Span{{Lo: -10, Hi: 10}, {Lo: -10, Hi: 10}, {Lo: -1, Hi: 0}}},
		Material:     scene.Material{Albedo: spectrum.Gray(0.5)},
		ModelToWorld: affinetransform.Identity(),
	})
	for _, e := range extra {
		s.AddElement(e)
	}
	s.AddLight(scene.PointLight{Position: vec3.T{0, 0, 3}, Intensity: spectrum.Gray(9)})
	s.Camera = camera.NewPinhole(vec3.T{0, 0, 2}, vec3.T{0, 0, 0}, vec3.T{0, 1, 0}, math.Pi/2, 1)
	s.Crush()
	return s
}

func TestDirectToF(t *testing.T) {
	s := floorScene()
	d := NewDirectToF(s, testRes)

	got, splats := d.Li(vec2.T{1, 1}, rand.New(rand.NewSource(1)))
	if len(splats) != 0 {
		t.Errorf("Direct lighting produced splats")
	}
	// albedo/pi * I * cos / d^2 = 0.5/pi * 9 / 9.
	want := integration.NewResult(integration.Record{Radiance: spectrum.Gray(0.5 / math.Pi), TimeMetric: 5})
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("Bad result; diff (-got +want)\n%s", diff)
	}
}

func TestDirectToFOccludedAndEmissive(t *testing.T) {
	blocker := &scene.Element{
		Geometry:     &geometry.Box{Spans: [3]ray.Span{{Lo: -0.5, Hi: 0.5}, {Lo: -0.5, Hi: 0.5}, {Lo: 2.5, Hi: 2.6}}},
		Material:     scene.Material{Albedo: spectrum.Gray(0.5)},
		ModelToWorld: affinetransform.Identity(),
	}
	d := NewDirectToF(floorScene(blocker), testRes)
	got, _ := d.Li(vec2.T{1, 1}, rand.New(rand.NewSource(1)))
	if len(got.Records) != 0 {
		t.Errorf("Occluded light produced records: %+v", got.Records)
	}

	glow := &scene.Element{
		Geometry:     geometry.Sphere{},
		Material:     scene.Material{Emission: spectrum.Gray(3)},
		ModelToWorld: affinetransform.Translate(vec3.T{0, 0, 0.5}),
	}
	d = NewDirectToF(floorScene(glow), testRes)
	got, _ = d.Li(vec2.T{1, 1}, rand.New(rand.NewSource(1)))
	want := integration.NewResult(integration.Record{Radiance: spectrum.Gray(3), TimeMetric: 0.5})
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("Bad emissive result; diff (-got +want)\n%s", diff)
	}
}

func TestDirectToFMiss(t *testing.T) {
	s := floorScene()
	s.Camera = camera.NewPinhole(vec3.T{0, 0, 2}, vec3.T{0, 0, 5}, vec3.T{0, 1, 0}, math.Pi/2, 1)
	got, _ := NewDirectToF(s, testRes).Li(vec2.T{1, 1}, rand.New(rand.NewSource(1)))
	if len(got.Records) != 0 || !got.Radiance.IsBlack() {
		t.Errorf("Ray into the sky produced %+v", got)
	}
}

func TestPathToFSingleBounceMatchesDirect(t *testing.T) {
	s := floorScene()
	rng := rand.New(rand.NewSource(7))
	d := NewDirectToF(s, testRes)
	p := NewPathToF(s, testRes, Options{MaxDepth: 1})

	for i := 0; i < 20; i++ {
		pFilm := vec2.T{2 * rng.Float64(), 2 * rng.Float64()}
		want, _ := d.Li(pFilm, rng)
		got, splats := p.Li(pFilm, rng)
		if len(splats) != 0 {
			t.Fatalf("Splats without LightSplats")
		}
		if diff := cmp.Diff(got, want, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
			t.Errorf("At %v; diff (-got +want)\n%s", pFilm, diff)
		}
	}
}

func TestPathToFRecordsAreFinite(t *testing.T) {
	s, err := scene.Builtin("corner", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p := NewPathToF(s, testRes, Options{MaxDepth: 4, LightSplats: true})
	rng := rand.New(rand.NewSource(3))

	sawBounce := false
	for i := 0; i < 500; i++ {
		r, splats := p.Li(vec2.T{2 * rng.Float64(), 2 * rng.Float64()}, rng)
		if !r.IsFinite() {
			t.Fatalf("Non-finite result %+v", r)
		}
		if len(r.Records) > 1 {
			sawBounce = true
		}
		for _, sp := range splats {
			if !sp.Result.IsFinite() || !sp.PFilm.IsFinite() {
				t.Fatalf("Non-finite splat %+v", sp)
			}
			if sp.PFilm[0] < 0 || sp.PFilm[0] >= 2 || sp.PFilm[1] < 0 || sp.PFilm[1] >= 2 {
				t.Errorf("Splat off the film at %v", sp.PFilm)
			}
		}
	}
	if !sawBounce {
		t.Errorf("No camera path found more than one record")
	}
}

// The light-tracing estimate, summed over the film, must agree with the
// film-averaged camera estimate.
func TestLightSplatsAgreeWithCameraPaths(t *testing.T) {
	s := floorScene()
	p := NewPathToF(s, testRes, Options{MaxDepth: 1, LightSplats: true})
	rng := rand.New(rand.NewSource(11))

	const n = 100000
	cameraSum, splatSum := 0.0, 0.0
	for i := 0; i < n; i++ {
		r, splats := p.Li(vec2.T{2 * rng.Float64(), 2 * rng.Float64()}, rng)
		cameraSum += r.Radiance.Y()
		for _, sp := range splats {
			splatSum += sp.Result.Radiance.Y()
			if tm := sp.Result.Records[0].TimeMetric; tm < 1 {
				t.Fatalf("Light path shorter than the light-camera distance: %v", tm)
			}
		}
	}

	cameraMean, splatMean := cameraSum/n, splatSum/n
	if math.Abs(splatMean-cameraMean) > 0.05*cameraMean {
		t.Errorf("Estimators disagree; camera mean %v, splat mean %v", cameraMean, splatMean)
	}
}

func TestCreate(t *testing.T) {
	s := floorScene()
	for _, name := range Names() {
		if _, err := Create(name, s, testRes, Options{}); err != nil {
			t.Errorf("Create(%q): %v", name, err)
		}
	}
	if _, err := Create("bdpt", s, testRes, Options{}); err == nil {
		t.Errorf("Expected error for unknown integrator")
	}
	if _, err := Create("direct", &scene.Scene{}, testRes, Options{}); err == nil {
		t.Errorf("Expected error for scene without camera")
	}
}
