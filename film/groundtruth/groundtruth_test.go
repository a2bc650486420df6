package groundtruth

import (
	"image"
	"path/filepath"
	"testing"

	"toftracer/film"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newFilm(t *testing.T, res image.Point) *film.Accumulator[Pixel] {
	t.Helper()
	fm, err := New(film.Config{
		FullResolution: res,
		Filter:         &filter.Box{R: vec2.T{0.5, 0.5}},
		Filename:       filepath.Join(t.TempDir(), "groundtruth.dat"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return fm
}

func TestAdmit(t *testing.T) {
	testCases := []struct {
		desc    string
		records []integration.Record
		wantOK  bool
		wantMsg bool
	}{
		{desc: "no records", wantOK: false, wantMsg: true},
		{desc: "one record", records: []integration.Record{{TimeMetric: 1}}, wantOK: true},
		{desc: "extra records", records: []integration.Record{{TimeMetric: 1}, {TimeMetric: 2}}, wantOK: true, wantMsg: true},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			r := integration.NewResult(tc.records...)
			ok, msg := Encoding{}.Admit(&r, false)
			if ok != tc.wantOK || (msg != "") != tc.wantMsg {
				t.Errorf("Admit; got (%v, %q), want ok=%v with message=%v", ok, msg, tc.wantOK, tc.wantMsg)
			}
		})
	}
}

func TestOnlyFirstRecordCounts(t *testing.T) {
	fm := newFilm(t, image.Pt(1, 1))
	tile := fm.NewTile(fm.SampleBounds())
	tile.AddSample(vec2.T{0.5, 0.5}, integration.NewResult(
		integration.Record{Radiance: spectrum.Gray(1), TimeMetric: 2},
		integration.Record{Radiance: spectrum.Gray(100), TimeMetric: 50},
	), 1)

	got := tile.Pixel(image.Pt(0, 0)).Value
	want := Pixel{Distance: 2, Radiance: spectrum.Gray(1), NContributions: 1}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad pixel; diff (-got +want)\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	fm := newFilm(t, image.Pt(2, 1))

	tile := fm.NewTile(fm.SampleBounds())
	tile.AddSample(vec2.T{0.5, 0.5}, integration.NewResult(integration.Record{Radiance: spectrum.Gray(4), TimeMetric: 2}), 1)
	// Dropped: no records.
	tile.AddSample(vec2.T{0.5, 0.5}, integration.Result{Radiance: spectrum.Gray(9)}, 1)
	if err := fm.MergeFilmTile(tile); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	fm.AddSplat(vec2.T{0.5, 0.5}, integration.NewResult(integration.Record{Radiance: spectrum.Gray(2), TimeMetric: 4}))

	got, err := fm.Resolve(image.Pt(0, 0), 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []float64{3, spectrum.Gray(5).Y()}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("Bad resolved pixel; diff (-got +want)\n%s", diff)
	}

	empty, err := fm.Resolve(image.Pt(1, 0), 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Pixel with no contributions was not omitted; got %v", empty)
	}
}

func TestResolveSplatOnly(t *testing.T) {
	fm := newFilm(t, image.Pt(1, 1))
	fm.AddSplat(vec2.T{0.2, 0.7}, integration.NewResult(integration.Record{Radiance: spectrum.Gray(1), TimeMetric: 6}))
	fm.AddSplat(vec2.T{0.9, 0.1}, integration.NewResult(integration.Record{Radiance: spectrum.Gray(1), TimeMetric: 2}))

	got, err := fm.Resolve(image.Pt(0, 0), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []float64{4, spectrum.Gray(2).Y()}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("Bad resolved pixel; diff (-got +want)\n%s", diff)
	}
}
