// Package spectrum holds the RGB radiance values carried through the
// renderer, along with the tristimulus conversions the film needs at
// read-back.
package spectrum

import "math"

// T is linear RGB radiance.
type T [3]float64

// XYZ is a CIE 1931 tristimulus value.
type XYZ [3]float64

// Gray returns a spectrum with v in every channel.
func Gray(v float64) T {
	return T{v, v, v}
}

func Add(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Mul is the channelwise product.
func Mul(a, b T) T {
	return T{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func Scale(a T, s float64) T {
	return T{a[0] * s, a[1] * s, a[2] * s}
}

// Y is the luminance of s.
func (s T) Y() float64 {
	return 0.212671*s[0] + 0.715160*s[1] + 0.072169*s[2]
}

func (s T) IsBlack() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

func (s T) HasNaNs() bool {
	return math.IsNaN(s[0]) || math.IsNaN(s[1]) || math.IsNaN(s[2])
}

// IsFinite reports whether every channel is neither NaN nor infinite.
func (s T) IsFinite() bool {
	for _, c := range s {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (s T) ToXYZ() XYZ {
	return XYZ{
		0.412453*s[0] + 0.357580*s[1] + 0.180423*s[2],
		0.212671*s[0] + 0.715160*s[1] + 0.072169*s[2],
		0.019334*s[0] + 0.119193*s[1] + 0.950227*s[2],
	}
}

func (x XYZ) ToRGB() T {
	return T{
		3.240479*x[0] - 1.537150*x[1] - 0.498535*x[2],
		-0.969256*x[0] + 1.875991*x[1] + 0.041556*x[2],
		0.055648*x[0] - 0.204043*x[1] + 1.057311*x[2],
	}
}

func AddXYZ(a, b XYZ) XYZ {
	return XYZ{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func ScaleXYZ(a XYZ, s float64) XYZ {
	return XYZ{a[0] * s, a[1] * s, a[2] * s}
}
