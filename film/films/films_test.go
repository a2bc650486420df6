package films

import (
	"errors"
	"testing"

	"toftracer/film/histogram"
	"toftracer/filter"
	"toftracer/paramset"
	"toftracer/vmath/vec2"

	"github.com/google/go-cmp/cmp"
)

func TestNames(t *testing.T) {
	want := []string{"groundtruth", "histogram", "image", "signal"}
	if diff := cmp.Diff(Names(), want); diff != "" {
		t.Errorf("Bad names; diff (-got +want)\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	ps, err := paramset.New(map[string]interface{}{
		"xresolution": 3.0,
		"yresolution": 2.0,
		"cropwindow":  []interface{}{0.0, 0.5, 0.0, 1.0},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			fm, err := Create(name, ps, &filter.Box{R: vec2.T{0.5, 0.5}})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			b := fm.SampleBounds()
			if b.Min.X != 0 || b.Max.X != 2 || b.Min.Y != 0 || b.Max.Y != 2 {
				t.Errorf("Bad sample bounds; got %v, want (0,0)-(2,2)", b)
			}
		})
	}
}

func TestCreateErrors(t *testing.T) {
	if _, err := Create("movie", paramset.Empty(), &filter.Box{R: vec2.T{0.5, 0.5}}); err == nil {
		t.Errorf("Expected error for unknown film")
	}

	ps, err := paramset.New(map[string]interface{}{"binsize": 0.0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := Create("histogram", ps, &filter.Box{R: vec2.T{0.5, 0.5}}); !errors.Is(err, histogram.ErrInvalidBinSize) {
		t.Errorf("Bad error; got %v, want ErrInvalidBinSize", err)
	}
}
