// Package affinetransform places models in the world.
package affinetransform

import (
	"toftracer/vmath/mat33"
	"toftracer/vmath/vec3"
)

// T maps p to Linear*p + Offset.
type T struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() T {
	return T{Linear: mat33.Identity()}
}

// Scale stretches each axis independently.
func Scale(s vec3.T) T {
	return T{Linear: mat33.T{s[0], 0, 0, 0, s[1], 0, 0, 0, s[2]}}
}

func Translate(x vec3.T) T {
	return T{Linear: mat33.Identity(), Offset: x}
}

// Compose returns the transform that applies b, then a.
func Compose(a, b T) T {
	return T{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

func (t T) Invert() T {
	inv := mat33.Inverse(t.Linear)
	return T{
		Linear: inv,
		Offset: vec3.Neg(mat33.MulMV(inv, t.Offset)),
	}
}

// NormalMatrix is the inverse transpose of the linear part.  It carries
// surface normals through t.
func (t T) NormalMatrix() mat33.T {
	return mat33.Transpose(mat33.Inverse(t.Linear))
}

func (t T) Point(p vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(t.Linear, p), t.Offset)
}

// Vector transforms a direction, ignoring the offset.
func (t T) Vector(v vec3.T) vec3.T {
	return mat33.MulMV(t.Linear, v)
}
