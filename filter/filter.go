// Package filter implements the reconstruction filters the film uses to spread
// each point sample over nearby pixels.
package filter

import (
	"fmt"
	"math"

	"toftracer/paramset"
	"toftracer/vmath/vec2"
)

// Filter is a separable-support kernel centred on the origin.  Evaluate is
// only called for points inside [-Radius, Radius].
type Filter interface {
	Radius() vec2.T
	Evaluate(p vec2.T) float64
}

// TableWidth is the per-axis resolution of a Table.
const TableWidth = 16

// Table holds a filter sampled over the positive quadrant of its support, row
// major, with entry (x, y) taken at ((x+0.5)*r.x/TableWidth,
// (y+0.5)*r.y/TableWidth).
type Table [TableWidth * TableWidth]float64

func NewTable(f Filter) *Table {
	r := f.Radius()
	t := &Table{}
	for y := 0; y < TableWidth; y++ {
		for x := 0; x < TableWidth; x++ {
			p := vec2.T{
				(float64(x) + 0.5) * r[0] / TableWidth,
				(float64(y) + 0.5) * r[1] / TableWidth,
			}
			t[y*TableWidth+x] = f.Evaluate(p)
		}
	}
	return t
}

// At returns the entry for the given per-axis table offsets.
func (t *Table) At(ix, iy int) float64 {
	return t[iy*TableWidth+ix]
}

// Box weights every point in its support equally.
type Box struct {
	R vec2.T
}

func (b *Box) Radius() vec2.T { return b.R }

func (b *Box) Evaluate(p vec2.T) float64 { return 1 }

// Triangle falls off linearly to zero at the edge of its support.
type Triangle struct {
	R vec2.T
}

func (t *Triangle) Radius() vec2.T { return t.R }

func (t *Triangle) Evaluate(p vec2.T) float64 {
	return math.Max(0, t.R[0]-math.Abs(p[0])) * math.Max(0, t.R[1]-math.Abs(p[1]))
}

// Gaussian is a Gaussian shifted down so that it reaches zero at the edge of
// its support.
type Gaussian struct {
	R     vec2.T
	Alpha float64

	expX, expY float64
}

func NewGaussian(r vec2.T, alpha float64) *Gaussian {
	return &Gaussian{
		R:     r,
		Alpha: alpha,
		expX:  math.Exp(-alpha * r[0] * r[0]),
		expY:  math.Exp(-alpha * r[1] * r[1]),
	}
}

func (g *Gaussian) Radius() vec2.T { return g.R }

func (g *Gaussian) Evaluate(p vec2.T) float64 {
	return gaussian(p[0], g.Alpha, g.expX) * gaussian(p[1], g.Alpha, g.expY)
}

func gaussian(d, alpha, expv float64) float64 {
	return math.Max(0, math.Exp(-alpha*d*d)-expv)
}

// Create builds the filter described by params.  The "type" parameter selects
// box (default), triangle, or gaussian; "xwidth" and "ywidth" give the radius.
func Create(params *paramset.ParamSet) (Filter, error) {
	name := params.FindOneString("type", "box")

	defWidth := 2.0
	if name == "box" {
		defWidth = 0.5
	}
	r := vec2.T{
		params.FindOneFloat("xwidth", defWidth),
		params.FindOneFloat("ywidth", defWidth),
	}
	if !(r[0] > 0 && r[1] > 0) || !r.IsFinite() {
		return nil, fmt.Errorf("filter %q: radius %v must be positive and finite", name, r)
	}

	switch name {
	case "box":
		return &Box{R: r}, nil
	case "triangle":
		return &Triangle{R: r}, nil
	case "gaussian":
		return NewGaussian(r, params.FindOneFloat("alpha", 2)), nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", name)
	}
}
