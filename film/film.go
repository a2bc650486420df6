// Package film accumulates filtered samples and unfiltered splats into a
// whole-image buffer and writes the result out.
//
// The tiling, filtering, merging, and splatting protocol lives here once, in
// Accumulator and AccumulatorTile.  What a pixel stores, and how it is folded,
// combined, and resolved, is supplied by an Encoding; the imagefilm,
// groundtruth, histogram, and signal packages each provide one.
package film

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"toftracer/filter"
	"toftracer/integration"
	"toftracer/spectrum"
	"toftracer/vmath/vec2"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// Film is the whole-image accumulator that rendering algorithms feed.
//
// GetFilmTile and AddSplat may be called from any goroutine.  MergeFilmTile
// serializes on an internal lock.  WriteImage should run once producers have
// finished.
type Film interface {
	FullResolution() image.Point
	SampleBounds() image.Rectangle
	PhysicalExtent() Bounds2f
	GetFilmTile(sampleBounds image.Rectangle) Tile
	MergeFilmTile(t Tile) error
	AddSplat(p vec2.T, r integration.Result)
	SetImage(img []spectrum.T)
	WriteImage(ctx context.Context, splatScale float64) error
}

// Tile is a private buffer for one rendering tile.  It must only be used by
// one goroutine at a time.
type Tile interface {
	PixelBounds() image.Rectangle
	AddSample(p vec2.T, r integration.Result, sampleWeight float64)
}

// Pixel is one film location.  Splat is only touched by AddSplat, never by
// tile merges.
type Pixel[P any] struct {
	Value           P
	FilterWeightSum float64
	Splat           P
}

// TilePixel is one tile location.
type TilePixel[P any] struct {
	Value           P
	FilterWeightSum float64
}

// Encoding supplies the per-pixel payload of a film.
type Encoding[P any] interface {
	// Name identifies the encoding in logs and metrics.
	Name() string

	NewPixel() P

	// Admit decides whether a result is usable at all.  A non-empty message
	// is logged as a warning whether or not the result is admitted.
	Admit(r *integration.Result, splat bool) (ok bool, message string)

	// AddSample folds a filtered contribution into px.
	AddSample(px *P, r *integration.Result, sampleWeight, filterWeight float64)

	// AddSplat folds an unfiltered contribution into px.
	AddSplat(px *P, r *integration.Result)

	// Compatible reports why src cannot be combined with dst, if it can't.
	Compatible(dst, src *P) error

	// Merge adds src into dst.  It is only called after Compatible.
	Merge(dst, src *P)

	// Resolve appends the values written for px to dst.  Returning no values
	// omits the pixel from the output.  It must not modify px.
	Resolve(dst []float64, px *Pixel[P], splatScale, scale float64) ([]float64, error)
}

// ImageLoader is implemented by encodings that can be initialised from a
// precomputed image.
type ImageLoader[P any] interface {
	LoadPixel(px *P, s spectrum.T)
}

// Config is the variant-independent film configuration.
type Config struct {
	FullResolution image.Point

	// CropWindow is in normalized [0,1]^2 image coordinates.  The zero value
	// means the whole image.
	CropWindow Bounds2f

	Filter filter.Filter

	// Filename is a local path or a gs://bucket/object URL.
	Filename string

	// Scale multiplies every written value.  Zero means 1; ConfigFromParams
	// rejects an explicit zero.
	Scale float64

	// Diagonal is the sensor diagonal in millimetres.  Zero means 35.
	Diagonal float64
}

// Accumulator is the Film implementation shared by every encoding.
type Accumulator[P any] struct {
	enc Encoding[P]

	fullResolution     image.Point
	croppedPixelBounds image.Rectangle
	filterRadius       vec2.T
	filterTable        *filter.Table
	diagonal           float64
	filename           string
	scale              float64

	warnings *rate.Limiter

	// mu serializes tile merges, SetImage, and write-out.
	mu         sync.Mutex
	splatLocks shardLocks
	pixels     []Pixel[P]
}

// New validates cfg and allocates the film's pixels.
func New[P any](cfg Config, enc Encoding[P]) (*Accumulator[P], error) {
	if cfg.Filter == nil {
		return nil, errors.New("film: no reconstruction filter")
	}
	if cfg.FullResolution.X <= 0 || cfg.FullResolution.Y <= 0 {
		return nil, fmt.Errorf("film: resolution %v must be positive", cfg.FullResolution)
	}
	if r := cfg.Filter.Radius(); !(r[0] > 0 && r[1] > 0) || !r.IsFinite() {
		return nil, fmt.Errorf("film: filter radius %v must be positive and finite", r)
	}

	if cfg.Scale < 0 || math.IsNaN(cfg.Scale) || math.IsInf(cfg.Scale, 0) {
		return nil, fmt.Errorf("film: scale %v must be positive and finite", cfg.Scale)
	}

	crop := cfg.CropWindow
	if crop == (Bounds2f{}) {
		crop = FullWindow
	}
	crop = crop.Clamp()

	res := toVec(cfg.FullResolution)
	cropped := image.Rectangle{
		Min: ceilPoint(vec2.MulVV(res, crop.Min)),
		Max: ceilPoint(vec2.MulVV(res, crop.Max)),
	}
	if cropped.Empty() {
		glog.Warningf("Film crop window %v leaves no pixels at resolution %v", crop, cfg.FullResolution)
		cropped = image.Rectangle{}
	}

	f := &Accumulator[P]{
		enc:                enc,
		fullResolution:     cfg.FullResolution,
		croppedPixelBounds: cropped,
		filterRadius:       cfg.Filter.Radius(),
		filterTable:        filter.NewTable(cfg.Filter),
		diagonal:           cfg.Diagonal,
		filename:           cfg.Filename,
		scale:              cfg.Scale,
		warnings:           rate.NewLimiter(rate.Every(time.Second), 10),
	}
	if f.diagonal == 0 {
		f.diagonal = 35
	}
	if f.scale == 0 {
		f.scale = 1
	}

	f.pixels = make([]Pixel[P], cropped.Dx()*cropped.Dy())
	for i := range f.pixels {
		f.pixels[i].Value = enc.NewPixel()
		f.pixels[i].Splat = enc.NewPixel()
	}

	glog.V(1).Infof("Created %s film: resolution %v, crop window %v, pixel bounds %v, filter radius %v",
		enc.Name(), cfg.FullResolution, crop, cropped, f.filterRadius)
	return f, nil
}

func (f *Accumulator[P]) Encoding() Encoding[P] {
	return f.enc
}

func (f *Accumulator[P]) FullResolution() image.Point {
	return f.fullResolution
}

func (f *Accumulator[P]) CroppedPixelBounds() image.Rectangle {
	return f.croppedPixelBounds
}

func (f *Accumulator[P]) Filename() string {
	return f.filename
}

// SampleBounds is the region of continuous film coordinates that can
// contribute to a pixel inside the crop.
func (f *Accumulator[P]) SampleBounds() image.Rectangle {
	return image.Rectangle{
		Min: floorPoint(vec2.SubVV(vec2.AddVS(toVec(f.croppedPixelBounds.Min), 0.5), f.filterRadius)),
		Max: ceilPoint(vec2.AddVV(vec2.SubVS(toVec(f.croppedPixelBounds.Max), 0.5), f.filterRadius)),
	}
}

// PhysicalExtent is the sensor area in metres, centred on the optical axis.
func (f *Accumulator[P]) PhysicalExtent() Bounds2f {
	aspect := float64(f.fullResolution.Y) / float64(f.fullResolution.X)
	diag := f.diagonal * 0.001
	x := math.Sqrt(diag * diag / (1 + aspect*aspect))
	y := aspect * x
	return Bounds2f{
		Min: vec2.T{-x / 2, -y / 2},
		Max: vec2.T{x / 2, y / 2},
	}
}

func (f *Accumulator[P]) offset(p image.Point) int {
	return (p.X - f.croppedPixelBounds.Min.X) + (p.Y-f.croppedPixelBounds.Min.Y)*f.croppedPixelBounds.Dx()
}

// Pixel returns the film pixel at p, which must lie inside the cropped pixel
// bounds.  The caller is responsible for synchronization.
func (f *Accumulator[P]) Pixel(p image.Point) *Pixel[P] {
	if !p.In(f.croppedPixelBounds) {
		panic(fmt.Sprintf("film: pixel %v outside cropped bounds %v", p, f.croppedPixelBounds))
	}
	return &f.pixels[f.offset(p)]
}

// GetFilmTile returns a tile covering every pixel that a sample inside
// sampleBounds can reach through the filter.
func (f *Accumulator[P]) GetFilmTile(sampleBounds image.Rectangle) Tile {
	return f.NewTile(sampleBounds)
}

// NewTile is GetFilmTile with a concrete result.
func (f *Accumulator[P]) NewTile(sampleBounds image.Rectangle) *AccumulatorTile[P] {
	p0 := ceilPoint(vec2.SubVV(vec2.SubVS(toVec(sampleBounds.Min), 0.5), f.filterRadius))
	p1 := floorPoint(vec2.AddVV(vec2.SubVS(toVec(sampleBounds.Max), 0.5), f.filterRadius)).Add(image.Pt(1, 1))
	bounds := image.Rectangle{Min: p0, Max: p1}.Intersect(f.croppedPixelBounds)
	return newTile(f, bounds)
}

// MergeFilmTile adds a finished tile into the film.
//
// The whole tile is checked before anything is added, so a mismatch leaves
// the film untouched.  Mismatches are returned as *MismatchError.
func (f *Accumulator[P]) MergeFilmTile(tile Tile) error {
	t, ok := tile.(*AccumulatorTile[P])
	if !ok || t == nil {
		if f.warnings.Allow() {
			glog.Warningf("%s film ignoring merge of foreign tile %T", f.enc.Name(), tile)
		}
		recordTileSkipped(f.enc.Name())
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !t.pixelBounds.In(f.croppedPixelBounds) {
		return fmt.Errorf("film: tile bounds %v exceed cropped bounds %v", t.pixelBounds, f.croppedPixelBounds)
	}

	b := t.pixelBounds
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(x, y)
			if err := f.enc.Compatible(&f.pixels[f.offset(p)].Value, &t.pixels[t.offset(p)].Value); err != nil {
				return newMismatchError("merge", p, err)
			}
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(x, y)
			fp := &f.pixels[f.offset(p)]
			tp := &t.pixels[t.offset(p)]
			f.enc.Merge(&fp.Value, &tp.Value)
			fp.FilterWeightSum += tp.FilterWeightSum
		}
	}

	recordTileMerged(f.enc.Name())
	return nil
}

// SetImage replaces the film contents with img, given in row-major order over
// the cropped pixel bounds.  Encodings that cannot represent a plain image
// ignore the call.
func (f *Accumulator[P]) SetImage(img []spectrum.T) {
	loader, ok := f.enc.(ImageLoader[P])
	if !ok {
		glog.V(1).Infof("%s film has no image representation; SetImage ignored", f.enc.Name())
		return
	}
	if len(img) != len(f.pixels) {
		glog.Warningf("SetImage given %d pixels for a film of %d; ignored", len(img), len(f.pixels))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.pixels {
		px := &f.pixels[i]
		loader.LoadPixel(&px.Value, img[i])
		px.FilterWeightSum = 1

		f.splatLocks.lock(i)
		px.Splat = f.enc.NewPixel()
		f.splatLocks.unlock(i)
	}
}
