package film

import (
	"fmt"
	"image"
	"math"

	"toftracer/filter"
	"toftracer/integration"
	"toftracer/vmath/vec2"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// AccumulatorTile is the Tile implementation shared by every encoding.
type AccumulatorTile[P any] struct {
	enc      Encoding[P]
	warnings *rate.Limiter

	pixelBounds     image.Rectangle
	filterRadius    vec2.T
	invFilterRadius vec2.T
	filterTable     *filter.Table
	pixels          []TilePixel[P]
}

func newTile[P any](f *Accumulator[P], bounds image.Rectangle) *AccumulatorTile[P] {
	t := &AccumulatorTile[P]{
		enc:             f.enc,
		warnings:        f.warnings,
		pixelBounds:     bounds,
		filterRadius:    f.filterRadius,
		invFilterRadius: vec2.T{1 / f.filterRadius[0], 1 / f.filterRadius[1]},
		filterTable:     f.filterTable,
		pixels:          make([]TilePixel[P], bounds.Dx()*bounds.Dy()),
	}
	for i := range t.pixels {
		t.pixels[i].Value = f.enc.NewPixel()
	}
	return t
}

func (t *AccumulatorTile[P]) PixelBounds() image.Rectangle {
	return t.pixelBounds
}

func (t *AccumulatorTile[P]) offset(p image.Point) int {
	return (p.X - t.pixelBounds.Min.X) + (p.Y-t.pixelBounds.Min.Y)*t.pixelBounds.Dx()
}

// Pixel returns the tile pixel at p, which must lie inside the tile.
func (t *AccumulatorTile[P]) Pixel(p image.Point) *TilePixel[P] {
	if !p.In(t.pixelBounds) {
		panic(fmt.Sprintf("film: pixel %v outside tile bounds %v", p, t.pixelBounds))
	}
	return &t.pixels[t.offset(p)]
}

// AddSample spreads one sample over the pixels its filter footprint covers.
func (t *AccumulatorTile[P]) AddSample(pFilm vec2.T, r integration.Result, sampleWeight float64) {
	ok, msg := t.enc.Admit(&r, false)
	if msg != "" && t.warnings.Allow() {
		glog.Warningf("%s film: %s", t.enc.Name(), msg)
	}
	if !ok {
		return
	}

	// Pixel centres sit at half-integer continuous coordinates.
	pDiscrete := vec2.SubVS(pFilm, 0.5)
	p0 := ceilPoint(vec2.SubVV(pDiscrete, t.filterRadius))
	p1 := floorPoint(vec2.AddVV(pDiscrete, t.filterRadius)).Add(image.Pt(1, 1))
	footprint := image.Rectangle{Min: p0, Max: p1}.Intersect(t.pixelBounds)
	if footprint.Empty() {
		return
	}

	var ifxBuf, ifyBuf [filter.TableWidth]int
	ifx := tableOffsets(ifxBuf[:0], footprint.Min.X, footprint.Max.X, pDiscrete[0], t.invFilterRadius[0])
	ify := tableOffsets(ifyBuf[:0], footprint.Min.Y, footprint.Max.Y, pDiscrete[1], t.invFilterRadius[1])

	for y := footprint.Min.Y; y < footprint.Max.Y; y++ {
		row := t.offset(image.Pt(footprint.Min.X, y))
		iy := ify[y-footprint.Min.Y]
		for x := footprint.Min.X; x < footprint.Max.X; x++ {
			filterWeight := t.filterTable.At(ifx[x-footprint.Min.X], iy)
			px := &t.pixels[row+x-footprint.Min.X]
			px.FilterWeightSum += filterWeight
			t.enc.AddSample(&px.Value, &r, sampleWeight, filterWeight)
		}
	}
}

// tableOffsets appends the filter table index for every pixel in [lo, hi)
// relative to the sample position.  Wide filters simply grow dst past its
// initial capacity.
func tableOffsets(dst []int, lo, hi int, center, invRadius float64) []int {
	for i := lo; i < hi; i++ {
		fi := math.Abs((float64(i) - center) * invRadius * filter.TableWidth)
		dst = append(dst, min(int(math.Floor(fi)), filter.TableWidth-1))
	}
	return dst
}
