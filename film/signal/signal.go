// Package signal simulates a continuous-wave time-of-flight camera.  Each
// pixel holds one correlation accumulator per (modulation frequency, phase
// offset) pair.
package signal

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"toftracer/film"
	"toftracer/filter"
	"toftracer/integration"
	"toftracer/paramset"
)

// SpeedOfLight is in metres per second.
const SpeedOfLight = 299792458.0

// Kernel is the correlation of a return delayed by path length d against a
// reference modulated at frequency f with phase offset phi.
func Kernel(f, phi, d float64) float64 {
	return math.Cos(4*math.Pi*f*d/SpeedOfLight + phi)
}

// Bank is the set of (frequency, phase) measurements taken at every pixel.
type Bank struct {
	Frequencies []float64
	Phases      []float64
}

func (b *Bank) Len() int {
	return len(b.Frequencies) * len(b.Phases)
}

func (b *Bank) Equal(o *Bank) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b == o || (slices.Equal(b.Frequencies, o.Frequencies) && slices.Equal(b.Phases, o.Phases))
}

// Pixel holds the accumulators in frequency-major order.
type Pixel struct {
	Bank   *Bank
	Values []float64
}

type Encoding struct {
	bank *Bank
}

func NewEncoding(bank Bank) (*Encoding, error) {
	if bank.Len() == 0 {
		return nil, errors.New("signal film needs at least one frequency and one phase")
	}
	for _, f := range bank.Frequencies {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("signal film: bad modulation frequency %v", f)
		}
	}
	for _, p := range bank.Phases {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("signal film: bad phase offset %v", p)
		}
	}
	b := &Bank{
		Frequencies: slices.Clone(bank.Frequencies),
		Phases:      slices.Clone(bank.Phases),
	}
	return &Encoding{bank: b}, nil
}

func NewFilm(cfg film.Config, bank Bank) (*film.Accumulator[Pixel], error) {
	enc, err := NewEncoding(bank)
	if err != nil {
		return nil, err
	}
	return film.New[Pixel](cfg, enc)
}

// Create reads frequencies (Hz, default [20e6]) and phases (radians, default
// four quadrature offsets) on top of the common film parameters.
func Create(params *paramset.ParamSet, f filter.Filter) (*film.Accumulator[Pixel], error) {
	bank := Bank{
		Frequencies: params.FindFloats("frequencies"),
		Phases:      params.FindFloats("phases"),
	}
	if bank.Frequencies == nil {
		bank.Frequencies = []float64{20e6}
	}
	if bank.Phases == nil {
		bank.Phases = []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	}
	cfg, err := film.ConfigFromParams(params, f)
	if err != nil {
		return nil, err
	}
	return NewFilm(cfg, bank)
}

func (e *Encoding) Name() string { return "signal" }

func (e *Encoding) Bank() *Bank { return e.bank }

func (e *Encoding) NewPixel() Pixel {
	return Pixel{Bank: e.bank, Values: make([]float64, e.bank.Len())}
}

func (e *Encoding) Admit(r *integration.Result, splat bool) (bool, string) {
	return true, ""
}

func (e *Encoding) fold(px *Pixel, r *integration.Result, weight float64) {
	nPhases := len(px.Bank.Phases)
	for _, rec := range r.Records {
		l := weight * rec.Radiance.Y()
		if l == 0 {
			continue
		}
		for i, f := range px.Bank.Frequencies {
			for j, phi := range px.Bank.Phases {
				px.Values[i*nPhases+j] += l * Kernel(f, phi, rec.TimeMetric)
			}
		}
	}
}

func (e *Encoding) AddSample(px *Pixel, r *integration.Result, sampleWeight, filterWeight float64) {
	e.fold(px, r, sampleWeight*filterWeight)
}

func (e *Encoding) AddSplat(px *Pixel, r *integration.Result) {
	e.fold(px, r, 1)
}

func (e *Encoding) Compatible(dst, src *Pixel) error {
	if len(dst.Values) != len(src.Values) {
		return fmt.Errorf("accumulator count %d != %d", len(dst.Values), len(src.Values))
	}
	if !dst.Bank.Equal(src.Bank) {
		return fmt.Errorf("measurement bank %v != %v", dst.Bank, src.Bank)
	}
	return nil
}

func (e *Encoding) Merge(dst, src *Pixel) {
	for i, v := range src.Values {
		dst.Values[i] += v
	}
}

// Resolve writes every accumulator, filter-normalized, with the scaled splat
// added.  Nothing is thresholded.
func (e *Encoding) Resolve(dst []float64, px *film.Pixel[Pixel], splatScale, scale float64) ([]float64, error) {
	invWeight := 1.0
	if px.FilterWeightSum != 0 {
		invWeight = 1 / px.FilterWeightSum
	}
	for i, v := range px.Value.Values {
		dst = append(dst, (v*invWeight+splatScale*px.Splat.Values[i])*scale)
	}
	return dst, nil
}
