package gfxtest_test

import (
	"testing"

	"skyibl/gfx"
	"skyibl/gfx/gfxtest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeDesc(size, levels int) gfx.TextureDesc {
	return gfx.TextureDesc{
		Label:  "cube",
		Kind:   gfx.TextureCube,
		Width:  size,
		Height: size,
		Layers: 6,
		Levels: levels,
		Format: gfx.FormatRGBA16F,
		Usage:  gfx.UsageRenderTarget | gfx.UsageShaderResource,
	}
}

func TestFullscreenDrawCoversViewport(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	dev.Programs["uv"] = func(ps *gfxtest.Shader, uv mgl32.Vec2) [4]float32 {
		return [4]float32{uv[0], uv[1], float32(ps.Int("faceIndex")), 1}
	}

	tex, err := dev.CreateTexture(cubeDesc(4, 3))
	require.NoError(t, err)
	rt, err := dev.CreateRenderTarget(tex, 2, 1)
	require.NoError(t, err)

	vs, err := dev.CreateShader(gfx.ShaderDesc{Name: "fullscreen", Stage: gfx.StageVertex})
	require.NoError(t, err)
	ps, err := dev.CreateShader(gfx.ShaderDesc{Name: "uv", Stage: gfx.StagePixel})
	require.NoError(t, err)

	ctx.SetRenderTargets(rt, nil)
	ctx.SetViewport(gfx.SquareViewport(2))
	vs.Activate()
	ps.Activate()
	ps.SetInt("faceIndex", 7)
	ps.Upload()
	ctx.Draw(3, 0)

	data := tex.(*gfxtest.Texture)
	assert.Equal(t, [4]float32{0.25, 0.25, 7, 1}, data.Pixel(2, 1, 0, 0))
	assert.Equal(t, [4]float32{0.75, 0.75, 7, 1}, data.Pixel(2, 1, 1, 1))
	assert.Equal(t, [4]float32{}, data.Pixel(1, 1, 0, 0))

	draws := ctx.Filter(gfxtest.EventDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, "cube", draws[0].Target)
	assert.Equal(t, 2, draws[0].Layer)
	assert.Equal(t, 1, draws[0].Level)
	assert.False(t, draws[0].HasDepth)
	assert.Equal(t, 7, draws[0].Ints["faceIndex"])

	rt.Release()
	vs.Release()
	ps.Release()
	tex.Release()
	assert.Empty(t, dev.Live())
}

func TestStagedValuesNeedUpload(t *testing.T) {
	dev := gfxtest.NewDevice()
	sh, err := dev.CreateShader(gfx.ShaderDesc{Name: "ps", Stage: gfx.StagePixel})
	require.NoError(t, err)
	sh.SetFloat("roughness", 0.5)
	assert.Zero(t, sh.(*gfxtest.Shader).Float("roughness"))
	sh.Upload()
	assert.Equal(t, float32(0.5), sh.(*gfxtest.Shader).Float("roughness"))
}

func TestFrontCullingDiscardsFullscreenTriangle(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	dev.Programs["white"] = func(*gfxtest.Shader, mgl32.Vec2) [4]float32 {
		return [4]float32{1, 1, 1, 1}
	}
	tex, err := dev.CreateTexture(cubeDesc(2, 1))
	require.NoError(t, err)
	rt, err := dev.CreateRenderTarget(tex, 0, 0)
	require.NoError(t, err)
	ps, err := dev.CreateShader(gfx.ShaderDesc{Name: "white", Stage: gfx.StagePixel})
	require.NoError(t, err)
	rs, err := dev.CreateRasterState(gfx.RasterDesc{Cull: gfx.CullFront, Fill: gfx.FillSolid, DepthClip: true})
	require.NoError(t, err)

	ctx.SetRenderTargets(rt, nil)
	ctx.SetViewport(gfx.SquareViewport(2))
	ctx.SetRasterState(rs)
	ps.Activate()
	ctx.Draw(3, 0)
	assert.Equal(t, [4]float32{}, tex.(*gfxtest.Texture).Pixel(0, 0, 0, 0))
	assert.True(t, ctx.Filter(gfxtest.EventDraw)[0].Culled)

	ctx.SetRasterState(nil)
	assert.Equal(t, gfx.DefaultRasterDesc(), ctx.RasterDesc())
	ctx.Draw(3, 0)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, tex.(*gfxtest.Texture).Pixel(0, 0, 0, 0))
}

func TestFailAfter(t *testing.T) {
	dev := gfxtest.NewDevice()
	dev.FailAfter(gfxtest.OpCreateTexture, 1)

	_, err := dev.CreateTexture(cubeDesc(2, 1))
	require.NoError(t, err)
	_, err = dev.CreateTexture(cubeDesc(2, 1))
	assert.ErrorIs(t, err, gfxtest.ErrInjected)
	assert.Equal(t, 2, dev.Calls(gfxtest.OpCreateTexture))
	assert.Len(t, dev.LiveTextures(), 1)
}

func TestDoubleReleasePanics(t *testing.T) {
	dev := gfxtest.NewDevice()
	s, err := dev.CreateSampler(gfx.SamplerDesc{})
	require.NoError(t, err)
	s.Release()
	assert.Panics(t, s.Release)
}

func TestUpdateTextureQuantizes(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Label: "face", Kind: gfx.Texture2D, Width: 2, Height: 1, Layers: 1, Levels: 1,
		Format: gfx.FormatRGBA8, Usage: gfx.UsageShaderResource,
	})
	require.NoError(t, err)
	require.NoError(t, ctx.UpdateTexture(tex, 0, 0, []uint8{255, 0, 51, 255, 0, 255, 0, 255}))
	assert.Equal(t, [4]float32{1, 0, 0.2, 1}, tex.(*gfxtest.Texture).Pixel(0, 0, 0, 0))

	assert.ErrorIs(t, ctx.UpdateTexture(tex, 0, 0, []uint8{1, 2, 3}), gfx.ErrInvalidDescriptor)
	assert.ErrorIs(t, ctx.UpdateTexture(tex, 0, 0, []int{1}), gfx.ErrUnsupported)
}

func TestSampleCube(t *testing.T) {
	dev := gfxtest.NewDevice()
	tex, err := dev.CreateTexture(cubeDesc(4, 2))
	require.NoError(t, err)
	cube := tex.(*gfxtest.Texture)
	for _, face := range gfx.CubeFaces {
		cube.Fill(int(face), 0, [4]float32{float32(face), 0, 0, 1})
		cube.Fill(int(face), 1, [4]float32{float32(face) + 10, 0, 0, 1})
	}

	for _, face := range gfx.CubeFaces {
		dir := gfx.CubeDirection(face, 0.3, 0.6)
		assert.InDelta(t, float32(face), cube.SampleCube(dir, 0)[0], 1e-5)
		assert.InDelta(t, float32(face)+5, cube.SampleCube(dir, 0.5)[0], 1e-5)
		assert.InDelta(t, float32(face)+10, cube.SampleCube(dir, 4)[0], 1e-5)
	}
}

func TestDefaultBindings(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	rt, ds := ctx.RenderTargets()
	assert.Same(t, ctx.Backbuffer, rt)
	assert.Same(t, ctx.DepthBuffer, ds)
	assert.Equal(t, float32(gfxtest.BackbufferWidth), ctx.Viewport().Width)
	assert.Equal(t, gfx.DefaultDepthDesc(), ctx.DepthDesc())
}
