package camera

import (
	"image"
	"math"
	"testing"

	"toftracer/vmath/vec2"
	"toftracer/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// testCamera sits at the origin looking down +x with +z up.  Its film spans
// one unit either side horizontally and half a unit vertically.
func testCamera() *Pinhole {
	return NewPinhole(vec3.T{}, vec3.T{1, 0, 0}, vec3.T{0.3, 0, 1}, math.Pi/2, 2)
}

func TestOrientation(t *testing.T) {
	c := testCamera()
	opts := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(c.Eye(), vec3.T{1, 0, 0}, opts); diff != "" {
		t.Errorf("Bad eye; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(c.Left(), vec3.T{0, 1, 0}, opts); diff != "" {
		t.Errorf("Bad left; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(c.Up(), vec3.T{0, 0, 1}, opts); diff != "" {
		t.Errorf("Bad up; diff (-got +want)\n%s", diff)
	}
}

func TestFilmToRay(t *testing.T) {
	c := testCamera()
	res := image.Pt(200, 100)
	opts := cmpopts.EquateApprox(0, 1e-12)

	center := c.FilmToRay(vec2.T{100, 50}, res)
	if diff := cmp.Diff(center.Slope, vec3.T{1, 0, 0}, opts); diff != "" {
		t.Errorf("Bad center ray; diff (-got +want)\n%s", diff)
	}

	topLeft := c.FilmToRay(vec2.T{0, 0}, res)
	if diff := cmp.Diff(topLeft.Slope, vec3.Normalize(vec3.T{1, 1, 0.5}), opts); diff != "" {
		t.Errorf("Bad top-left ray; diff (-got +want)\n%s", diff)
	}
}

func TestWorldToFilmInvertsFilmToRay(t *testing.T) {
	c := testCamera()
	res := image.Pt(200, 100)

	for _, pFilm := range []vec2.T{{100, 50}, {0.5, 0.5}, {199.5, 12}, {37.25, 80}} {
		r := c.FilmToRay(pFilm, res)
		got, _, ok := c.WorldToFilm(r.Eval(3.5), res)
		if !ok {
			t.Errorf("Point on ray through %v did not project", pFilm)
			continue
		}
		if diff := cmp.Diff(got, pFilm, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("Bad projection; diff (-got +want)\n%s", diff)
		}
	}
}

func TestWorldToFilmImportance(t *testing.T) {
	c := testCamera()
	res := image.Pt(200, 100)

	// Film area on the unit plane is 2 x 1.
	testCases := []struct {
		p    vec3.T
		want float64
	}{
		{p: vec3.T{1, 0, 0}, want: 0.5},
		{p: vec3.T{2, 0, 0}, want: 0.125},
		// cos = 1/sqrt(2), distance^2 = 2.
		{p: vec3.T{1, 1, 0}, want: 1 / (2 * math.Pow(1/math.Sqrt2, 3) * 2)},
	}
	for _, tc := range testCases {
		_, got, ok := c.WorldToFilm(tc.p, res)
		if !ok {
			t.Errorf("%v did not project", tc.p)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Bad importance at %v; got %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestWorldToFilmRejects(t *testing.T) {
	c := testCamera()
	res := image.Pt(200, 100)
	for _, p := range []vec3.T{{-1, 0, 0}, {0, 1, 0}, {1, 5, 0}, {1, 0, 0.75}} {
		if pFilm, _, ok := c.WorldToFilm(p, res); ok {
			t.Errorf("%v projected to %v; want rejection", p, pFilm)
		}
	}
}
