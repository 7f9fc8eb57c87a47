package ibl

import "skyibl/libutil"

// SpecularMipCount is the number of prefiltered levels for a face size with
// the top skip levels left out. It is never less than one.
func SpecularMipCount(size, skip int) int {
	if size < 1 {
		return 1
	}
	return libutil.MaxI(libutil.Log2I(size)+1-skip, 1)
}

// MipRoughness maps a level in [0, count) linearly to a roughness in [0, 1].
func MipRoughness(level, count int) float32 {
	if count <= 1 {
		return 0
	}
	return float32(level) / float32(count-1)
}

// MipViewportSize continues the halving chain as if the skipped levels existed.
func MipViewportSize(level, count, skip int) int {
	return 1 << (count + skip - 1 - level)
}

// specularBaseSize rounds size down to a power of two, so level sizes follow MipViewportSize.
func specularBaseSize(size int) int {
	return 1 << libutil.Log2I(size)
}
