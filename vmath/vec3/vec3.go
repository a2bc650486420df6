package vec3

import (
	"math"
	"math/rand"
)

type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func Normalize(v T) T {
	return DivVS(v, v.Norm())
}

func AddVV(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func SubVV(a, b T) T {
	return T{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func MulVS(a T, b float64) T {
	return T{a[0] * b, a[1] * b, a[2] * b}
}

func DivVS(a T, b float64) T {
	return T{a[0] / b, a[1] / b, a[2] / b}
}

func Neg(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Reject returns the component of b that is orthogonal to a.
func Reject(a, b T) T {
	return SubVV(b, MulVS(Normalize(a), IProd(a, b)/a.Norm()))
}

func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Distance is the length of the segment between a and b.
func Distance(a, b T) float64 {
	return SubVV(a, b).Norm()
}

func UniformUnitDistribution(rng *rand.Rand) T {
	result := T{}
	for {
		result[0] = 2 * (rng.Float64() - 0.5)
		result[1] = 2 * (rng.Float64() - 0.5)
		result[2] = 2 * (rng.Float64() - 0.5)
		normSquared := IProd(result, result)
		if normSquared <= 1.0 && normSquared != 0.0 {
			break
		}
	}
	return Normalize(result)
}

// HemisphereUnitDistribution samples uniformly from the hemisphere around
// normal.
func HemisphereUnitDistribution(normal T, rng *rand.Rand) T {
	candidate := UniformUnitDistribution(rng)
	if IProd(candidate, normal) < 0.0 {
		candidate = Neg(candidate)
	}
	return candidate
}

// CosineUnitDistribution samples the hemisphere around normal with density
// proportional to the cosine against normal.
func CosineUnitDistribution(normal T, rng *rand.Rand) T {
	for {
		candidate := HemisphereUnitDistribution(normal, rng)
		if rng.Float64() < IProd(normal, candidate) {
			return candidate
		}
	}
}
