package paramset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAndFind(t *testing.T) {
	ps, err := Parse([]byte(`{
		"xresolution": 640,
		"cropwindow": [0, 0.5, 0.25, 1],
		"filename": "out.dat",
		"scale": [2],
		"verbose": true,
		"filter": {"type": "gaussian", "alpha": 3}
	}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := ps.FindOneInt("xresolution", 1280); got != 640 {
		t.Errorf("Bad xresolution; got %d, want 640", got)
	}
	if got := ps.FindOneInt("yresolution", 720); got != 720 {
		t.Errorf("Bad defaulted yresolution; got %d, want 720", got)
	}
	if diff := cmp.Diff(ps.FindFloats("cropwindow"), []float64{0, 0.5, 0.25, 1}); diff != "" {
		t.Errorf("Bad cropwindow; diff (-got +want)\n%s", diff)
	}
	if got := ps.FindOneFloat("scale", 1); got != 2 {
		t.Errorf("Bad scale from one-element list; got %v, want 2", got)
	}
	if got := ps.FindOneString("filename", "x"); got != "out.dat" {
		t.Errorf("Bad filename; got %q, want %q", got, "out.dat")
	}
	if got := ps.FindOneBool("verbose", false); !got {
		t.Errorf("Bad verbose; got %v, want true", got)
	}

	filter := ps.Sub("filter")
	if got := filter.FindOneString("type", "box"); got != "gaussian" {
		t.Errorf("Bad nested type; got %q, want %q", got, "gaussian")
	}
	if got := filter.FindOneFloat("alpha", 2); got != 3 {
		t.Errorf("Bad nested alpha; got %v, want 3", got)
	}
}

func TestMistypedFallsBackToDefault(t *testing.T) {
	ps, err := New(map[string]interface{}{
		"scale":       "bright",
		"cropwindow":  []interface{}{0.0, "x"},
		"filename":    7.0,
		"xresolution": []interface{}{1.0, 2.0},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := ps.FindOneFloat("scale", 1); got != 1 {
		t.Errorf("Bad scale; got %v, want default 1", got)
	}
	if got := ps.FindFloats("cropwindow"); got != nil {
		t.Errorf("Bad cropwindow; got %v, want nil", got)
	}
	if got := ps.FindOneString("filename", "d.dat"); got != "d.dat" {
		t.Errorf("Bad filename; got %q, want default", got)
	}
	if got := ps.FindOneInt("xresolution", 5); got != 5 {
		t.Errorf("Bad xresolution; got %d, want default 5", got)
	}
}

func TestUnused(t *testing.T) {
	ps, err := New(map[string]interface{}{
		"xresolution": 10.0,
		"yresolutoin": 10.0,
		"filename":    "a.dat",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ps.FindOneInt("xresolution", 0)
	ps.FindOneInt("yresolution", 0)
	ps.FindOneString("filename", "")

	if diff := cmp.Diff(ps.Unused(), []string{"yresolutoin"}); diff != "" {
		t.Errorf("Bad unused list; diff (-got +want)\n%s", diff)
	}
}

func TestNilAndEmpty(t *testing.T) {
	var ps *ParamSet
	if got := ps.FindOneFloat("scale", 4); got != 4 {
		t.Errorf("Nil ParamSet lookup; got %v, want default 4", got)
	}
	if got := Empty().Sub("film").FindOneInt("xresolution", 3); got != 3 {
		t.Errorf("Empty Sub lookup; got %v, want default 3", got)
	}
}

func TestSetOverridesNested(t *testing.T) {
	ps, err := Parse([]byte(`{"film": {"filename": "a.dat"}}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	film := ps.Sub("film")
	if err := film.Set("filename", "b.dat"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := ps.Sub("film").FindOneString("filename", ""); got != "b.dat" {
		t.Errorf("Got filename %q, want %q", got, "b.dat")
	}

	empty := Empty()
	if err := empty.Set("xresolution", 64); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := empty.FindOneInt("xresolution", 0); got != 64 {
		t.Errorf("Got xresolution %d, want 64", got)
	}
	if err := empty.Set("bad", make(chan int)); err == nil {
		t.Errorf("Expected error for unsupported value")
	}
}
