package vec2

import "math"

// T is a point or offset on the film plane.
type T [2]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

func (v T) IsFinite() bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) && !math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}

func AddVV(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1]}
}

func SubVV(a, b T) T {
	return T{a[0] - b[0], a[1] - b[1]}
}

func AddVS(a T, b float64) T {
	return T{a[0] + b, a[1] + b}
}

func SubVS(a T, b float64) T {
	return T{a[0] - b, a[1] - b}
}

func MulVS(a T, b float64) T {
	return T{a[0] * b, a[1] * b}
}

// MulVV is the elementwise product.
func MulVV(a, b T) T {
	return T{a[0] * b[0], a[1] * b[1]}
}

func Floor(v T) T {
	return T{math.Floor(v[0]), math.Floor(v[1])}
}

func Ceil(v T) T {
	return T{math.Ceil(v[0]), math.Ceil(v[1])}
}

func Abs(v T) T {
	return T{math.Abs(v[0]), math.Abs(v[1])}
}

func Min(a, b T) T {
	return T{math.Min(a[0], b[0]), math.Min(a[1], b[1])}
}

func Max(a, b T) T {
	return T{math.Max(a[0], b[0]), math.Max(a[1], b[1])}
}
