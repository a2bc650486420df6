// Package integration defines the payload a light-transport algorithm hands
// to the film for one sample.
package integration

import (
	"math"

	"toftracer/spectrum"
	"toftracer/vmath/vec2"
)

// Record is one time-of-flight event: a path length (or distance) together
// with the radiance that arrived along it.
type Record struct {
	Radiance   spectrum.T
	TimeMetric float64
}

// Result is the aggregate radiance estimate for one sample plus the
// time-of-flight records that produced it, in the order they were found.
type Result struct {
	Radiance spectrum.T
	Records  []Record
}

// NewResult returns a result whose aggregate radiance is the sum of the
// record radiances.
func NewResult(records ...Record) Result {
	r := Result{Records: records}
	for _, rec := range records {
		r.Radiance = spectrum.Add(r.Radiance, rec.Radiance)
	}
	return r
}

// Add appends rec and folds its radiance into the aggregate.
func (r *Result) Add(rec Record) {
	r.Records = append(r.Records, rec)
	r.Radiance = spectrum.Add(r.Radiance, rec.Radiance)
}

// IsFinite reports whether the aggregate radiance and every record are free
// of NaN and infinite values.
func (r *Result) IsFinite() bool {
	if !r.Radiance.IsFinite() {
		return false
	}
	for _, rec := range r.Records {
		if !rec.Radiance.IsFinite() || math.IsNaN(rec.TimeMetric) || math.IsInf(rec.TimeMetric, 0) {
			return false
		}
	}
	return true
}

// Splat is a result addressed to a film position other than the one being
// sampled, such as a light subpath connected to the camera.
type Splat struct {
	PFilm  vec2.T
	Result Result
}
