package gfx

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type CubeFace int

// Layer order of every cube texture. Consuming shaders depend on it.
const (
	CubePositiveX = CubeFace(iota)
	CubeNegativeX
	CubePositiveY
	CubeNegativeY
	CubePositiveZ
	CubeNegativeZ
)

const (
	CubeRight = CubePositiveX
	CubeLeft  = CubeNegativeX
	CubeUp    = CubePositiveY
	CubeDown  = CubeNegativeY
	CubeFront = CubePositiveZ
	CubeBack  = CubeNegativeZ
)

var CubeFaces = [6]CubeFace{CubePositiveX, CubeNegativeX, CubePositiveY, CubeNegativeY, CubePositiveZ, CubeNegativeZ}

func (f CubeFace) String() string {
	return [...]string{"+x", "-x", "+y", "-y", "+z", "-z"}[f]
}

// CubeDirection maps texture coordinates s, t in [0,1] of a face to the
// (unnormalized) sampling direction.
// Cube map face reference: https://www.khronos.org/opengl/wiki_opengl/images/CubeMapAxes.png
func CubeDirection(face CubeFace, s, t float32) mgl32.Vec3 {
	sc := 2*s - 1
	tc := 2*t - 1
	switch face {
	case CubePositiveX:
		return mgl32.Vec3{1, -tc, -sc}
	case CubeNegativeX:
		return mgl32.Vec3{-1, -tc, sc}
	case CubePositiveY:
		return mgl32.Vec3{sc, 1, tc}
	case CubeNegativeY:
		return mgl32.Vec3{sc, -1, -tc}
	case CubePositiveZ:
		return mgl32.Vec3{sc, -tc, 1}
	default:
		return mgl32.Vec3{-sc, -tc, -1}
	}
}

// CubeFaceAt is the inverse of CubeDirection, dir does not need to be normalized.
func CubeFaceAt(dir mgl32.Vec3) (face CubeFace, s, t float32) {
	ax := math32.Abs(dir[0])
	ay := math32.Abs(dir[1])
	az := math32.Abs(dir[2])

	var u, v, ma float32
	if ax >= ay && ax >= az {
		if dir[0] >= 0 {
			face, u = CubePositiveX, -dir[2]
		} else {
			face, u = CubeNegativeX, dir[2]
		}
		v, ma = -dir[1], ax
	} else if ay >= az {
		if dir[1] >= 0 {
			face, v = CubePositiveY, dir[2]
		} else {
			face, v = CubeNegativeY, -dir[2]
		}
		u, ma = dir[0], ay
	} else {
		if dir[2] >= 0 {
			face, u = CubePositiveZ, dir[0]
		} else {
			face, u = CubeNegativeZ, -dir[0]
		}
		v, ma = -dir[1], az
	}

	s = u*0.5/ma + 0.5
	t = v*0.5/ma + 0.5
	return
}
