package histogram

import (
	"fmt"

	"toftracer/film"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/paramset"
)

type Options struct {
	BinSize     float64
	MaxDistance float64

	// MinRadiance drops written bins below this luminance.
	MinRadiance float64
}

// Encoding stores a Histogram per pixel.
type Encoding struct {
	opts Options
}

func NewEncoding(opts Options) (*Encoding, error) {
	if _, err := New(opts.BinSize, opts.MaxDistance); err != nil {
		return nil, err
	}
	return &Encoding{opts: opts}, nil
}

func NewFilm(cfg film.Config, opts Options) (*film.Accumulator[Histogram], error) {
	enc, err := NewEncoding(opts)
	if err != nil {
		return nil, fmt.Errorf("while configuring histogram film: %w", err)
	}
	return film.New[Histogram](cfg, enc)
}

// Create reads binsize (0.01), maxdistance (20), and minradiance (0) on top
// of the common film parameters.
func Create(params *paramset.ParamSet, f filter.Filter) (*film.Accumulator[Histogram], error) {
	cfg, err := film.ConfigFromParams(params, f)
	if err != nil {
		return nil, err
	}
	return NewFilm(cfg, Options{
		BinSize:     params.FindOneFloat("binsize", 0.01),
		MaxDistance: params.FindOneFloat("maxdistance", 20),
		MinRadiance: params.FindOneFloat("minradiance", 0),
	})
}

func (e *Encoding) Name() string { return "histogram" }

func (e *Encoding) Options() Options { return e.opts }

func (e *Encoding) NewPixel() Histogram {
	h, _ := New(e.opts.BinSize, e.opts.MaxDistance)
	return h
}

// Admit accepts every result; records that miss the histogram are dropped
// individually.
func (e *Encoding) Admit(r *integration.Result, splat bool) (bool, string) {
	return true, ""
}

func (e *Encoding) AddSample(px *Histogram, r *integration.Result, sampleWeight, filterWeight float64) {
	px.Add(r, sampleWeight*filterWeight)
}

func (e *Encoding) AddSplat(px *Histogram, r *integration.Result) {
	px.Add(r, 1)
}

func (e *Encoding) Compatible(dst, src *Histogram) error {
	return dst.Compatible(src)
}

func (e *Encoding) Merge(dst, src *Histogram) {
	dst.Merge(src)
}

// Resolve writes "offset luminance" pairs.  The filtered histogram is
// normalized by the filter weight sum and its own contribution count, the
// splat histogram by its own contribution count and splatScale.  Bins that
// come out non-positive or below MinRadiance are left out.
func (e *Encoding) Resolve(dst []float64, px *film.Pixel[Histogram], splatScale, scale float64) ([]float64, error) {
	invWeight := 1.0
	if px.FilterWeightSum != 0 {
		invWeight = 1 / px.FilterWeightSum
	}
	for k := range px.Value.Bins {
		l := (px.Value.Luminance(k)*invWeight + splatScale*px.Splat.Luminance(k)) * scale
		if l <= 0 || l < e.opts.MinRadiance {
			continue
		}
		dst = append(dst, float64(k)*px.Value.BinSize, l)
	}
	return dst, nil
}
