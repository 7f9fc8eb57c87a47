// Package ibltest provides host implementations of the lighting programs for gfxtest devices.
package ibltest

import (
	"skyibl/gfx"
	"skyibl/gfx/gfxtest"
	"skyibl/ibl"

	"github.com/go-gl/mathgl/mgl32"
)

// Sample counts of the host programs, far lower than the GLSL ones.
var (
	SpecularSamples = 64
	BRDFSamples     = 64
)

// Register installs the irradiance, specular and brdf programs on dev.
func Register(dev *gfxtest.Device) {
	dev.Programs[ibl.ShaderIrradiance] = Irradiance
	dev.Programs[ibl.ShaderSpecular] = Specular
	dev.Programs[ibl.ShaderBRDF] = BRDF
}

// Environment samples the level 0 of the bound EnvironmentMap, black when nothing is bound.
func Environment(ps *gfxtest.Shader) ibl.Environment {
	tex := ps.Texture("EnvironmentMap")
	if tex == nil {
		return func(mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{} }
	}
	return func(dir mgl32.Vec3) mgl32.Vec3 {
		c := tex.SampleCube(dir, 0)
		return mgl32.Vec3{c[0], c[1], c[2]}
	}
}

func Irradiance(ps *gfxtest.Shader, uv mgl32.Vec2) [4]float32 {
	stepPhi, stepTheta := ps.Float("sampleStepPhi"), ps.Float("sampleStepTheta")
	if !(stepPhi > 0) || !(stepTheta > 0) {
		return [4]float32{0, 0, 0, 1}
	}
	n := gfx.CubeDirection(gfx.CubeFace(ps.Int("faceIndex")), uv[0], uv[1])
	c := ibl.IrradianceAt(Environment(ps), n, stepPhi, stepTheta)
	return [4]float32{c[0], c[1], c[2], 1}
}

func Specular(ps *gfxtest.Shader, uv mgl32.Vec2) [4]float32 {
	n := gfx.CubeDirection(gfx.CubeFace(ps.Int("faceIndex")), uv[0], uv[1])
	c := ibl.PrefilterAt(Environment(ps), n, ps.Float("roughness"), SpecularSamples)
	return [4]float32{c[0], c[1], c[2], 1}
}

func BRDF(ps *gfxtest.Shader, uv mgl32.Vec2) [4]float32 {
	scale, bias := ibl.IntegrateBRDF(uv[0], uv[1], BRDFSamples)
	return [4]float32{scale, bias, 0, 1}
}
