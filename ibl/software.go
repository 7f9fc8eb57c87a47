package ibl

import (
	"skyibl/gfx"
	"skyibl/libio"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Environment returns the radiance arriving from a normalized direction.
type Environment func(dir mgl32.Vec3) mgl32.Vec3

// tangentFrame builds an orthonormal basis around n, up is swapped when n is nearly parallel to it.
func tangentFrame(n, up, fallback mgl32.Vec3) (tangent, bitangent mgl32.Vec3) {
	if math32.Abs(n.Dot(up)) >= 0.999 {
		up = fallback
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent).Normalize()
	return
}

// transform maps a tangent space vector, z is along n.
func transform(v, tangent, bitangent, n mgl32.Vec3) mgl32.Vec3 {
	return tangent.Mul(v[0]).Add(bitangent.Mul(v[1])).Add(n.Mul(v[2]))
}

// IrradianceAt integrates env over the hemisphere around n with a fixed
// azimuth and elevation spacing.
func IrradianceAt(env Environment, n mgl32.Vec3, stepPhi, stepTheta float32) mgl32.Vec3 {
	n = n.Normalize()
	tangent, bitangent := tangentFrame(n, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1})

	var sum mgl32.Vec3
	var count int
	for phi := float32(0); phi < 2*math32.Pi; phi += stepPhi {
		sinPhi, cosPhi := math32.Sincos(phi)
		for theta := float32(0); theta < 0.5*math32.Pi; theta += stepTheta {
			sinTheta, cosTheta := math32.Sincos(theta)
			ts := mgl32.Vec3{sinTheta * cosPhi, sinTheta * sinPhi, cosTheta}
			dir := transform(ts, tangent, bitangent, n)

			sum = sum.Add(env(dir.Normalize()).Mul(cosTheta * sinTheta))
			count++
		}
	}

	return sum.Mul(math32.Pi / float32(count))
}

// PrefilterAt is the GGX importance sampled convolution of env around n,
// with the view direction equal to n.
func PrefilterAt(env Environment, n mgl32.Vec3, roughness float32, samples int) mgl32.Vec3 {
	n = n.Normalize()
	if roughness == 0 {
		return env(n)
	}
	v := n
	tangent, bitangent := tangentFrame(n, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0})

	var sum mgl32.Vec3
	var totalWeight float32
	for i := 0; i < samples; i++ {
		su, sv := hammersley(uint32(i), uint32(samples))
		h := transform(importanceSampleGGX(su, sv, roughness), tangent, bitangent, n).Normalize()
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		ndotl := n.Dot(l)
		if ndotl > 0 {
			sum = sum.Add(env(l).Mul(ndotl))
			totalWeight += ndotl
		}
	}

	if totalWeight == 0 {
		return env(n)
	}
	return sum.Mul(1 / totalWeight)
}

// IntegrateBRDF evaluates the split-sum scale and bias for one table entry.
func IntegrateBRDF(ndotv, roughness float32, samples int) (scale, bias float32) {
	ndotv = math32.Max(ndotv, 1e-4)
	v := mgl32.Vec3{math32.Sqrt(1 - ndotv*ndotv), 0, ndotv}

	for i := 0; i < samples; i++ {
		su, sv := hammersley(uint32(i), uint32(samples))
		h := importanceSampleGGX(su, sv, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		ndotl := math32.Max(l[2], 0)
		ndoth := math32.Max(h[2], 0)
		vdoth := math32.Max(v.Dot(h), 0)

		if ndotl > 0 {
			g := geometrySmith(ndotv, ndotl, roughness)
			gvis := (g * vdoth) / (ndoth * ndotv)
			fc := math32.Pow(1-vdoth, 5)

			scale += (1 - fc) * gvis
			bias += fc * gvis
		}
	}

	return scale / float32(samples), bias / float32(samples)
}

func geometrySchlickGGX(ndotv, roughness float32) float32 {
	k := (roughness * roughness) / 2
	return ndotv / (ndotv*(1-k) + k)
}

func geometrySmith(ndotv, ndotl, roughness float32) float32 {
	return geometrySchlickGGX(ndotv, roughness) * geometrySchlickGGX(ndotl, roughness)
}

func radicalInverseVdC(bits uint32) float32 {
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(bits) * 2.3283064365386963e-10 // / 0x100000000
}

func hammersley(i, N uint32) (x, y float32) {
	return float32(i) / float32(N), radicalInverseVdC(i)
}

func generateHammersleySequence(count int) [][2]float32 {
	samples := make([][2]float32, count)
	for i := 0; i < count; i++ {
		su, sv := hammersley(uint32(i), uint32(count))
		samples[i][0] = su
		samples[i][1] = sv
	}
	return samples
}

// importanceSampleGGX returns a half vector in tangent space, z is the normal.
func importanceSampleGGX(su, sv float32, roughness float32) mgl32.Vec3 {
	a := roughness * roughness

	phi := 2.0 * math32.Pi * su
	cosTheta := math32.Sqrt((1.0 - sv) / (1.0 + (a*a-1.0)*sv))
	sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

	// from spherical coordinates to cartesian coordinates
	return mgl32.Vec3{math32.Cos(phi) * sinTheta, math32.Sin(phi) * sinTheta, cosTheta}
}

// ConvolveIrradiance bakes an irradiance cube on the host.
func ConvolveIrradiance(env *IblEnv, size int, stepPhi, stepTheta float32) *IblEnv {
	result := make([]float32, 6*size*size*3)
	forEachCubeMapPixel(size, func(face gfx.CubeFace, x, y int, dir mgl32.Vec3, i int) {
		c := IrradianceAt(env.Sample, dir, stepPhi, stepTheta)
		result[i*3+0] = c[0]
		result[i*3+1] = c[1]
		result[i*3+2] = c[2]
	})
	return NewIblEnv(result, size)
}

// ConvolveSpecular prefilters one roughness level on the host.
func ConvolveSpecular(env *IblEnv, size int, roughness float32, samples int) *IblEnv {
	result := make([]float32, 6*size*size*3)
	forEachCubeMapPixel(size, func(face gfx.CubeFace, x, y int, dir mgl32.Vec3, i int) {
		c := PrefilterAt(env.Sample, dir, roughness, samples)
		result[i*3+0] = c[0]
		result[i*3+1] = c[1]
		result[i*3+2] = c[2]
	})
	return NewIblEnv(result, size)
}

// GenerateSwBrdfLut bakes the brdf table on the host. Channel 0 is the scale,
// channel 1 the bias, row 0 is roughness 0.
func GenerateSwBrdfLut(size, samples int) *libio.FloatImage {
	result := make([]float32, size*size*2)
	for y := 0; y < size; y++ {
		roughness := (float32(y) + 0.5) / float32(size)
		for x := 0; x < size; x++ {
			ndotv := (float32(x) + 0.5) / float32(size)
			scale, bias := IntegrateBRDF(ndotv, roughness, samples)
			result[(x+y*size)*2+0] = scale
			result[(x+y*size)*2+1] = bias
		}
	}
	return libio.NewFloatImage(result, 2, size, size)
}
