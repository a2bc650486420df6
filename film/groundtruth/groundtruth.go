// Package groundtruth records, per pixel, the radiance and the mean distance
// of the first time-of-flight record of every sample.  It is a reference
// encoding for checking other films, not a time-resolved signal.
package groundtruth

import (
	"fmt"

	"toftracer/film"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/paramset"
	"toftracer/spectrum"
)

type Pixel struct {
	Distance       float64
	Radiance       spectrum.T
	NContributions int
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

func (Encoding) Name() string { return "groundtruth" }

func (Encoding) NewPixel() Pixel { return Pixel{} }

// Admit requires at least one record and uses only the first.
func (Encoding) Admit(r *integration.Result, splat bool) (bool, string) {
	switch n := len(r.Records); {
	case n == 0:
		return false, "dropping result with no time-of-flight record"
	case n > 1:
		return true, fmt.Sprintf("using the first of %d time-of-flight records", n)
	}
	return true, ""
}

func (Encoding) AddSample(px *Pixel, r *integration.Result, sampleWeight, filterWeight float64) {
	rec := r.Records[0]
	px.Distance += rec.TimeMetric * sampleWeight
	px.Radiance = spectrum.Add(px.Radiance, spectrum.Scale(rec.Radiance, sampleWeight*filterWeight))
	px.NContributions++
}

func (Encoding) AddSplat(px *Pixel, r *integration.Result) {
	rec := r.Records[0]
	px.Distance += rec.TimeMetric
	px.Radiance = spectrum.Add(px.Radiance, rec.Radiance)
	px.NContributions++
}

func (Encoding) Compatible(dst, src *Pixel) error { return nil }

func (Encoding) Merge(dst, src *Pixel) {
	dst.Distance += src.Distance
	dst.Radiance = spectrum.Add(dst.Radiance, src.Radiance)
	dst.NContributions += src.NContributions
}

// Resolve writes the mean distance over every filtered and splatted
// contribution, then the luminance of the filtered radiance plus the scaled
// splat radiance.  Pixels nothing reached are omitted.
func (Encoding) Resolve(dst []float64, px *film.Pixel[Pixel], splatScale, scale float64) ([]float64, error) {
	n := px.Value.NContributions + px.Splat.NContributions
	if n == 0 {
		return dst, nil
	}
	distance := (px.Value.Distance + px.Splat.Distance) / float64(n)

	l := px.Value.Radiance
	if px.FilterWeightSum != 0 {
		l = spectrum.Scale(l, 1/px.FilterWeightSum)
	}
	l = spectrum.Add(l, spectrum.Scale(px.Splat.Radiance, splatScale))

	return append(dst, distance, l.Y()*scale), nil
}
