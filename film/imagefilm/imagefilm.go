// Package imagefilm is the ordinary radiance image: spectral samples are
// accumulated as XYZ and converted to RGB when written.
package imagefilm

import (
	"math"

	"toftracer/film"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/paramset"
	"toftracer/spectrum"
)

type Pixel struct {
	XYZ spectrum.XYZ
}

type Encoding struct{}

func New(cfg film.Config) (*film.Accumulator[Pixel], error) {
	return film.New[Pixel](cfg, Encoding{})
}

func Create(params *paramset.ParamSet, f filter.Filter) (*film.Accumulator[Pixel], error) {
	cfg, err := film.ConfigFromParams(params, f)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (Encoding) Name() string { return "image" }

func (Encoding) NewPixel() Pixel { return Pixel{} }

// Admit accepts every result.  Records are ignored; only the aggregate
// radiance is imaged.
func (Encoding) Admit(r *integration.Result, splat bool) (bool, string) {
	return true, ""
}

func (Encoding) AddSample(px *Pixel, r *integration.Result, sampleWeight, filterWeight float64) {
	xyz := r.Radiance.ToXYZ()
	px.XYZ = spectrum.AddXYZ(px.XYZ, spectrum.ScaleXYZ(xyz, sampleWeight*filterWeight))
}

func (Encoding) AddSplat(px *Pixel, r *integration.Result) {
	px.XYZ = spectrum.AddXYZ(px.XYZ, r.Radiance.ToXYZ())
}

func (Encoding) Compatible(dst, src *Pixel) error { return nil }

func (Encoding) Merge(dst, src *Pixel) {
	dst.XYZ = spectrum.AddXYZ(dst.XYZ, src.XYZ)
}

// Resolve writes r g b.  The filtered estimate is clamped at zero before the
// splats are added.
func (Encoding) Resolve(dst []float64, px *film.Pixel[Pixel], splatScale, scale float64) ([]float64, error) {
	rgb := px.Value.XYZ.ToRGB()
	if px.FilterWeightSum != 0 {
		inv := 1 / px.FilterWeightSum
		for i := range rgb {
			rgb[i] = math.Max(0, rgb[i]*inv)
		}
	}

	splat := px.Splat.XYZ.ToRGB()
	for i := range rgb {
		dst = append(dst, (rgb[i]+splatScale*splat[i])*scale)
	}
	return dst, nil
}

// LoadPixel lets SetImage seed the film from an existing image.
func (Encoding) LoadPixel(px *Pixel, s spectrum.T) {
	px.XYZ = s.ToXYZ()
}
