// Package histogram bins time-of-flight records by path length.  The film it
// provides stores one Histogram per pixel.
package histogram

import (
	"errors"
	"fmt"
	"math"

	"toftracer/integration"
	"toftracer/spectrum"
)

// ErrInvalidBinSize is returned for bin sizes that are not positive and
// finite.
var ErrInvalidBinSize = errors.New("histogram bin size must be positive and finite")

// Histogram covers [0, BinSize*len(Bins)) in fixed-width bins.
type Histogram struct {
	BinSize float64
	Bins    []spectrum.T

	// NContributions counts the updates that landed in at least one bin.
	NContributions int
}

// New returns an empty histogram with int(maxDistance/binSize) bins.
func New(binSize, maxDistance float64) (Histogram, error) {
	if !(binSize > 0) || math.IsInf(binSize, 0) {
		return Histogram{}, fmt.Errorf("%w: got %v", ErrInvalidBinSize, binSize)
	}
	if !(maxDistance >= 0) || math.IsInf(maxDistance, 0) {
		return Histogram{}, fmt.Errorf("histogram max distance must be non-negative and finite: got %v", maxDistance)
	}
	return Histogram{
		BinSize: binSize,
		Bins:    make([]spectrum.T, int(maxDistance/binSize)),
	}, nil
}

// Bin returns the bin holding t, or false if t is outside the histogram.
// Bin k covers [k*BinSize, (k+1)*BinSize) as computed in floating point.
func (h *Histogram) Bin(t float64) (int, bool) {
	f := math.Floor(t / h.BinSize)
	if !(f >= -1) || f > float64(len(h.Bins)) {
		return 0, false
	}
	k := int(f)
	// The quotient can round across a bin edge; the product decides.
	if float64(k+1)*h.BinSize <= t {
		k++
	} else if float64(k)*h.BinSize > t {
		k--
	}
	if k < 0 || k >= len(h.Bins) {
		return 0, false
	}
	return k, true
}

// Add folds every record of r into its bin with the given weight.  Records
// outside the histogram are dropped.  It reports whether any record landed.
func (h *Histogram) Add(r *integration.Result, weight float64) bool {
	landed := false
	for _, rec := range r.Records {
		k, ok := h.Bin(rec.TimeMetric)
		if !ok {
			continue
		}
		h.Bins[k] = spectrum.Add(h.Bins[k], spectrum.Scale(rec.Radiance, weight))
		landed = true
	}
	if landed {
		h.NContributions++
	}
	return landed
}

// Compatible reports why o cannot be combined with h.
func (h *Histogram) Compatible(o *Histogram) error {
	if h.BinSize != o.BinSize {
		return fmt.Errorf("bin size %v != %v", h.BinSize, o.BinSize)
	}
	if len(h.Bins) != len(o.Bins) {
		return fmt.Errorf("bin count %d != %d", len(h.Bins), len(o.Bins))
	}
	return nil
}

// Merge adds o into h.  The histograms must be compatible.
func (h *Histogram) Merge(o *Histogram) {
	for i := range h.Bins {
		h.Bins[i] = spectrum.Add(h.Bins[i], o.Bins[i])
	}
	h.NContributions += o.NContributions
}

// Luminance is the contribution-normalized luminance of bin k.
func (h *Histogram) Luminance(k int) float64 {
	l := h.Bins[k].Y()
	if h.NContributions > 0 {
		l /= float64(h.NContributions)
	}
	return l
}
