// Package camera maps between film positions and world-space rays.
package camera

import (
	"image"
	"math"

	"toftracer/ray"
	"toftracer/vmath/mat33"
	"toftracer/vmath/vec2"
	"toftracer/vmath/vec3"
)

// Pinhole looks along the first column of ApertureToWorld, with the second
// column pointing left and the third up.  The film spans Aperture[1] to the
// left and right and Aperture[2] up and down for every Aperture[0] forward.
type Pinhole struct {
	Center          vec3.T
	ApertureToWorld mat33.T
	Aperture        vec3.T
}

// NewPinhole returns a camera at center looking at target.  fov is the
// horizontal field of view in radians; aspect is width over height.
func NewPinhole(center, target, up vec3.T, fov, aspect float64) *Pinhole {
	c := &Pinhole{
		Center:   center,
		Aperture: vec3.T{1, math.Tan(fov / 2), math.Tan(fov/2) / aspect},
	}
	c.Orient(vec3.SubVV(target, center), up)
	return c
}

func (c *Pinhole) Eye() vec3.T  { return c.ApertureToWorld.Column(0) }
func (c *Pinhole) Left() vec3.T { return c.ApertureToWorld.Column(1) }
func (c *Pinhole) Up() vec3.T   { return c.ApertureToWorld.Column(2) }

// Orient points the camera along eye.  up need only be non-parallel to eye;
// the component along eye is rejected to keep the basis orthonormal.
func (c *Pinhole) Orient(eye, up vec3.T) {
	eye = vec3.Normalize(eye)
	up = vec3.Normalize(vec3.Reject(eye, up))
	c.ApertureToWorld = mat33.FromColumns(eye, vec3.CProd(up, eye), up)
}

// FilmToRay returns the ray through continuous film position pFilm on a film
// of the given resolution.  (0, 0) is the top-left corner.
func (c *Pinhole) FilmToRay(pFilm vec2.T, res image.Point) ray.Ray {
	imageCoords := vec3.T{
		1,
		1 - 2*pFilm[0]/float64(res.X),
		1 - 2*pFilm[1]/float64(res.Y),
	}
	apertureCoords := vec3.T{
		imageCoords[0] * c.Aperture[0],
		imageCoords[1] * c.Aperture[1],
		imageCoords[2] * c.Aperture[2],
	}
	return ray.Ray{
		Point: c.Center,
		Slope: vec3.Normalize(mat33.MulMV(c.ApertureToWorld, apertureCoords)),
	}
}

// filmArea is the area of the film on the plane one unit in front of the
// pinhole.
func (c *Pinhole) filmArea() float64 {
	return 4 * c.Aperture[1] * c.Aperture[2] / (c.Aperture[0] * c.Aperture[0])
}

// WorldToFilm projects p onto the film.  It also returns the importance of
// the connection from p to the pinhole, already divided by the squared
// distance and including the cosine at the film, so that a light path
// reaching p with throughput beta contributes beta*f*cos*importance to the
// splat buffer.  ok is false when p is behind the camera or off the film.
func (c *Pinhole) WorldToFilm(p vec3.T, res image.Point) (pFilm vec2.T, importance float64, ok bool) {
	d := vec3.SubVV(p, c.Center)
	local := mat33.MulMV(mat33.Transpose(c.ApertureToWorld), d)
	if local[0] <= 0 {
		return vec2.T{}, 0, false
	}

	x := local[1] / local[0] * c.Aperture[0] / c.Aperture[1]
	y := local[2] / local[0] * c.Aperture[0] / c.Aperture[2]
	pFilm = vec2.T{
		(1 - x) / 2 * float64(res.X),
		(1 - y) / 2 * float64(res.Y),
	}
	if pFilm[0] < 0 || pFilm[0] >= float64(res.X) || pFilm[1] < 0 || pFilm[1] >= float64(res.Y) {
		return vec2.T{}, 0, false
	}

	dist2 := vec3.IProd(d, d)
	cos := local[0] / math.Sqrt(dist2)
	importance = 1 / (c.filmArea() * cos * cos * cos * dist2)
	return pFilm, importance, true
}
