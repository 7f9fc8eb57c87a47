// Package ibl precomputes image based lighting data on a gfx device.
//
// The bakers render full-screen passes into single faces and levels of
// cube textures: a diffuse irradiance cube, a roughness prefiltered specular
// cube and a split-sum BRDF lookup table. Host side reference integrals and
// the .iblenv cube container live here as well.
package ibl

import "errors"

// MaxFaceSize bounds face sizes read from files and bake options.
const MaxFaceSize = 16384

// MaxSpecularSkipLevels bounds SpecularOptions.SkipLevels.
const MaxSpecularSkipLevels = 16

var (
	// ErrFaceMismatch is returned when the six faces of a cube do not agree in size, format or kind
	ErrFaceMismatch = errors.New("cube faces do not match")
	ErrInvalidSize  = errors.New("invalid size")
)
