package render

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"path/filepath"
	"testing"

	"toftracer/film"
	"toftracer/film/imagefilm"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newFilm(t *testing.T, res image.Point) *film.Accumulator[imagefilm.Pixel] {
	t.Helper()
	fm, err := imagefilm.New(film.Config{
		FullResolution: res,
		Filter:         &filter.Box{R: vec2.T{0.5, 0.5}},
		Filename:       filepath.Join(t.TempDir(), "image.dat"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return fm
}

// gradient returns a radiance that depends on where and with which random
// numbers it was sampled.
type gradient struct{}

func (gradient) Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat) {
	v := pFilm[0] + 2*pFilm[1] + rng.Float64()
	return integration.NewResult(integration.Record{Radiance: spectrum.Gray(v), TimeMetric: v}), nil
}

type constant struct{ l float64 }

func (c constant) Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat) {
	return integration.Result{Radiance: spectrum.Gray(c.l)}, nil
}

// corner splats unit radiance onto pixel (0, 0) for every sample.
type corner struct{}

func (corner) Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat) {
	return integration.Result{}, []integration.Splat{{
		PFilm:  vec2.T{0.5, 0.5},
		Result: integration.Result{Radiance: spectrum.Gray(1)},
	}}
}

func resolveAll(t *testing.T, fm *film.Accumulator[imagefilm.Pixel], splatScale float64) map[image.Point][]float64 {
	t.Helper()
	out := map[image.Point][]float64{}
	b := fm.CroppedPixelBounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(x, y)
			v, err := fm.Resolve(p, splatScale)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			out[p] = v
		}
	}
	return out
}

func TestNewTileGrid(t *testing.T) {
	bounds := image.Rect(-1, -1, 10, 5)
	got := NewTileGrid(bounds, 4)

	want := []Tile{
		{ID: 0, Bounds: image.Rect(-1, -1, 3, 3)},
		{ID: 1, Bounds: image.Rect(3, -1, 7, 3)},
		{ID: 2, Bounds: image.Rect(7, -1, 10, 3)},
		{ID: 3, Bounds: image.Rect(-1, 3, 3, 5)},
		{ID: 4, Bounds: image.Rect(3, 3, 7, 5)},
		{ID: 5, Bounds: image.Rect(7, 3, 10, 5)},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad tiles; diff (-got +want)\n%s", diff)
	}

	if got := NewTileGrid(image.Rectangle{}, 4); len(got) != 0 {
		t.Errorf("Empty bounds gave tiles %v", got)
	}
	if got := NewTileGrid(bounds, 0); len(got) != 0 {
		t.Errorf("Zero tile size gave tiles %v", got)
	}
}

func TestTileGridCoversBoundsOnce(t *testing.T) {
	for _, size := range []int{1, 3, 7, 16, 100} {
		bounds := image.Rect(2, 5, 33, 22)
		seen := map[image.Point]int{}
		for _, tile := range NewTileGrid(bounds, size) {
			if !tile.Bounds.In(bounds) {
				t.Errorf("size %d: tile %v outside %v", size, tile.Bounds, bounds)
			}
			for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
				for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
					seen[image.Pt(x, y)]++
				}
			}
		}
		if len(seen) != bounds.Dx()*bounds.Dy() {
			t.Errorf("size %d: covered %d pixels, want %d", size, len(seen), bounds.Dx()*bounds.Dy())
		}
		for p, n := range seen {
			if n != 1 {
				t.Errorf("size %d: pixel %v covered %d times", size, p, n)
			}
		}
	}
}

func TestSplatScale(t *testing.T) {
	for _, tc := range []struct {
		spp  int
		want float64
	}{
		{spp: 1, want: 1},
		{spp: 4, want: 0.25},
		{spp: 0, want: 1},
	} {
		if got := SplatScale(tc.spp); got != tc.want {
			t.Errorf("SplatScale(%d) = %v, want %v", tc.spp, got, tc.want)
		}
	}
}

func TestRenderFillsEveryPixel(t *testing.T) {
	fm := newFilm(t, image.Pt(7, 5))
	opts := Options{TileSize: 3, SamplesPerPixel: 4, Workers: 3, Seed: 1}
	if err := Render(context.Background(), fm, constant{l: 2}, opts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for p, got := range resolveAll(t, fm, SplatScale(4)) {
		if diff := cmp.Diff(got, []float64{2, 2, 2}, cmpopts.EquateApprox(1e-4, 0)); diff != "" {
			t.Errorf("Pixel %v; diff (-got +want)\n%s", p, diff)
		}
	}
}

func TestRenderIndependentOfWorkerCount(t *testing.T) {
	res := image.Pt(9, 6)
	serial := newFilm(t, res)
	parallel := newFilm(t, res)

	if err := Render(context.Background(), serial, gradient{}, Options{TileSize: 4, SamplesPerPixel: 3, Workers: 1, Seed: 5}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := Render(context.Background(), parallel, gradient{}, Options{TileSize: 4, SamplesPerPixel: 3, Workers: 8, Seed: 5}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(resolveAll(t, serial, 1), resolveAll(t, parallel, 1)); diff != "" {
		t.Errorf("Worker count changed the image; diff (-serial +parallel)\n%s", diff)
	}
}

func TestRenderSplats(t *testing.T) {
	fm := newFilm(t, image.Pt(4, 3))
	const spp = 2
	if err := Render(context.Background(), fm, corner{}, Options{TileSize: 2, SamplesPerPixel: spp, Workers: 4}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := resolveAll(t, fm, SplatScale(spp))
	// Every one of the 12 pixels sent spp splats to the corner.
	if diff := cmp.Diff(got[image.Pt(0, 0)], []float64{12, 12, 12}, cmpopts.EquateApprox(1e-4, 0)); diff != "" {
		t.Errorf("Bad corner pixel; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(got[image.Pt(3, 2)], []float64{0, 0, 0}); diff != "" {
		t.Errorf("Bad far pixel; diff (-got +want)\n%s", diff)
	}
}

type failingFilm struct {
	film.Film
	err error
}

func (f *failingFilm) MergeFilmTile(film.Tile) error { return f.err }

func TestRenderMergeError(t *testing.T) {
	errMerge := errors.New("merge failed")
	fm := &failingFilm{Film: newFilm(t, image.Pt(8, 8)), err: errMerge}

	err := Render(context.Background(), fm, constant{l: 1}, Options{TileSize: 2, Workers: 2})
	if !errors.Is(err, errMerge) {
		t.Errorf("Got error %v, want %v", err, errMerge)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Render(ctx, newFilm(t, image.Pt(8, 8)), constant{l: 1}, Options{TileSize: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Got error %v, want %v", err, context.Canceled)
	}
}
