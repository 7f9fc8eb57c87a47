package ibl_test

import (
	"testing"

	"skyibl/gfx"
	"skyibl/gfx/gfxtest"
	"skyibl/ibl"
	"skyibl/ibl/ibltest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bakeFixture struct {
	dev     *gfxtest.Device
	ctx     *gfxtest.Context
	env     gfx.Texture
	sampler gfx.Sampler
}

func newBakeFixture(t *testing.T, env ibl.Environment, size int) bakeFixture {
	t.Helper()
	dev := gfxtest.NewDevice()
	ibltest.Register(dev)
	ctx := dev.Context()

	tex, err := ibl.UploadIblEnv(dev, ctx, "environment", ibl.GenerateIblEnv(size, env))
	require.NoError(t, err)
	sampler, err := dev.CreateSampler(gfx.SamplerDesc{Mipmaps: true})
	require.NoError(t, err)
	ctx.ResetEvents()

	return bakeFixture{dev: dev, ctx: ctx, env: tex, sampler: sampler}
}

func (f bakeFixture) resident() []string {
	return []string{"sampler", "texture:environment"}
}

func TestBakeIrradianceConstant(t *testing.T) {
	f := newBakeFixture(t, constant(0.3), 4)
	opts := ibl.IrradianceOptions{Size: 4, StepPhi: 0.4, StepTheta: 0.3, Format: gfx.FormatRGBA16F}

	tex, err := ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, opts)
	require.NoError(t, err)
	assert.Equal(t, "irradiance", tex.Desc().Label)
	assert.Equal(t, gfx.TextureCube, tex.Desc().Kind)
	assert.Equal(t, 1, tex.Desc().Levels)

	want := ibl.IrradianceAt(constant(0.3), mgl32.Vec3{0, 0, 1}, opts.StepPhi, opts.StepTheta)
	data := tex.(*gfxtest.Texture)
	for layer := 0; layer < 6; layer++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				c := data.Pixel(layer, 0, x, y)
				assert.InDelta(t, want[0], c[0], 1e-4)
				assert.InDelta(t, want[1], c[1], 1e-4)
				assert.Equal(t, float32(1), c[3])
			}
		}
	}

	draws := f.ctx.Filter(gfxtest.EventDraw)
	require.Len(t, draws, 6)
	for i, ev := range draws {
		assert.Equal(t, "irradiance", ev.Target)
		assert.Equal(t, i, ev.Layer)
		assert.Equal(t, i, ev.Ints["faceIndex"])
		assert.Equal(t, opts.StepPhi, ev.Floats["sampleStepPhi"])
		assert.Equal(t, opts.StepTheta, ev.Floats["sampleStepTheta"])
		assert.Equal(t, gfx.SquareViewport(4), ev.Viewport)
	}

	tex.Release()
	assert.Equal(t, f.resident(), f.dev.Live())
}

func TestBakeIrradianceFollowsEnvironment(t *testing.T) {
	f := newBakeFixture(t, gradient, 4)
	opts := ibl.IrradianceOptions{Size: 2, StepPhi: 0.5, StepTheta: 0.5, Format: gfx.FormatRGBA16F}

	tex, err := ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, opts)
	require.NoError(t, err)
	defer tex.Release()

	// faces looking towards +x receive more red than the ones looking away
	data := tex.(*gfxtest.Texture)
	posX := data.Pixel(int(gfx.CubePositiveX), 0, 0, 0)
	negX := data.Pixel(int(gfx.CubeNegativeX), 0, 0, 0)
	assert.Greater(t, posX[0], negX[0])
}

func TestBakeSpecularPasses(t *testing.T) {
	f := newBakeFixture(t, constant(0.6), 4)
	opts := ibl.SpecularOptions{Size: 8, SkipLevels: 1, Format: gfx.FormatRGBA16F}

	tex, err := ibl.BakeSpecular(f.dev, f.ctx, f.env, f.sampler, opts)
	require.NoError(t, err)
	defer tex.Release()

	desc := tex.Desc()
	assert.Equal(t, "specular", desc.Label)
	assert.Equal(t, 8, desc.Width)
	assert.Equal(t, 3, desc.Levels)

	draws := f.ctx.Filter(gfxtest.EventDraw)
	require.Len(t, draws, 18)
	roughness := []float32{0, 0.5, 1}
	sizes := []int{8, 4, 2}
	for i, ev := range draws {
		level, face := i/6, i%6
		assert.Equal(t, level, ev.Level, "pass %d", i)
		assert.Equal(t, face, ev.Layer, "pass %d", i)
		assert.Equal(t, face, ev.Ints["faceIndex"], "pass %d", i)
		assert.Equal(t, level, ev.Ints["mipLevel"], "pass %d", i)
		assert.Equal(t, roughness[level], ev.Floats["roughness"], "pass %d", i)
		assert.Equal(t, gfx.SquareViewport(sizes[level]), ev.Viewport, "pass %d", i)
	}

	// prefiltering a constant keeps it
	data := tex.(*gfxtest.Texture)
	for level := 0; level < desc.Levels; level++ {
		w, h := data.LevelSize(level)
		for layer := 0; layer < 6; layer++ {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					assert.InDelta(t, 0.6, data.Pixel(layer, level, x, y)[2], 1e-4)
				}
			}
		}
	}
}

func TestBakeSpecularSizes(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	env, err := ibl.UploadIblEnv(dev, ctx, "environment", ibl.GenerateIblEnv(2, gradient))
	require.NoError(t, err)
	sampler, err := dev.CreateSampler(gfx.SamplerDesc{})
	require.NoError(t, err)

	tex, err := ibl.BakeSpecular(dev, ctx, env, sampler, ibl.SpecularOptions{Size: 300, SkipLevels: 3, Format: gfx.FormatRGBA8})
	require.NoError(t, err)
	assert.Equal(t, 256, tex.Desc().Width)
	assert.Equal(t, 6, tex.Desc().Levels)
	draws := ctx.Filter(gfxtest.EventDraw)
	require.Len(t, draws, 36)
	assert.Equal(t, float32(256), draws[0].Viewport.Width)
	assert.Equal(t, float32(8), draws[35].Viewport.Width)
	tex.Release()

	// a single level gets roughness 0 and a viewport clamped to the texture
	ctx.ResetEvents()
	tex, err = ibl.BakeSpecular(dev, ctx, env, sampler, ibl.SpecularOptions{Size: 2, SkipLevels: 5, Format: gfx.FormatRGBA8})
	require.NoError(t, err)
	assert.Equal(t, 1, tex.Desc().Levels)
	draws = ctx.Filter(gfxtest.EventDraw)
	require.Len(t, draws, 6)
	for _, ev := range draws {
		assert.Equal(t, float32(0), ev.Floats["roughness"])
		assert.Equal(t, gfx.SquareViewport(2), ev.Viewport)
	}
	tex.Release()
}

func TestBakeBRDF(t *testing.T) {
	dev := gfxtest.NewDevice()
	ibltest.Register(dev)

	tex, err := ibl.BakeBRDF(dev, dev.Context(), ibl.BRDFOptions{Size: 4})
	require.NoError(t, err)
	defer tex.Release()

	desc := tex.Desc()
	assert.Equal(t, gfx.Texture2D, desc.Kind)
	assert.Equal(t, gfx.FormatRG16, desc.Format)
	assert.Equal(t, 4, desc.Width)

	data := tex.(*gfxtest.Texture)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			scale, bias := ibl.IntegrateBRDF((float32(x)+0.5)/4, (float32(y)+0.5)/4, ibltest.BRDFSamples)
			c := data.Pixel(0, 0, x, y)
			assert.InDelta(t, clamp01(scale), c[0], 2e-5, "x %d y %d", x, y)
			assert.InDelta(t, clamp01(bias), c[1], 2e-5, "x %d y %d", x, y)
		}
	}

	draws := dev.Context().Filter(gfxtest.EventDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, ibl.ShaderBRDF, draws[0].PixelShader)
	assert.Equal(t, gfx.SquareViewport(4), draws[0].Viewport)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func TestBakeValidation(t *testing.T) {
	f := newBakeFixture(t, gradient, 2)

	_, err := ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, ibl.IrradianceOptions{Size: 0, StepPhi: 1, StepTheta: 1, Format: gfx.FormatRGBA8})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)
	_, err = ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, ibl.IrradianceOptions{Size: 2, StepPhi: 0, StepTheta: 1, Format: gfx.FormatRGBA8})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)
	_, err = ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, ibl.IrradianceOptions{Size: 2, StepPhi: 1, StepTheta: 1, Format: gfx.FormatRG16})
	assert.ErrorIs(t, err, gfx.ErrInvalidDescriptor)
	_, err = ibl.BakeSpecular(f.dev, f.ctx, f.env, f.sampler, ibl.SpecularOptions{Size: 4, SkipLevels: -1, Format: gfx.FormatRGBA8})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)
	for _, skip := range []int{ibl.MaxSpecularSkipLevels + 1, 63, 64} {
		_, err = ibl.BakeSpecular(f.dev, f.ctx, f.env, f.sampler, ibl.SpecularOptions{Size: 4, SkipLevels: skip, Format: gfx.FormatRGBA8})
		assert.ErrorIs(t, err, ibl.ErrInvalidSize, "skip %d", skip)
	}
	_, err = ibl.BakeSpecular(f.dev, f.ctx, f.env, f.sampler, ibl.SpecularOptions{Size: ibl.MaxFaceSize + 1, Format: gfx.FormatRGBA8})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)
	_, err = ibl.BakeBRDF(f.dev, f.ctx, ibl.BRDFOptions{})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)
	_, err = ibl.BakeBRDF(f.dev, f.ctx, ibl.BRDFOptions{Size: ibl.MaxFaceSize + 1})
	assert.ErrorIs(t, err, ibl.ErrInvalidSize)

	_, err = ibl.BakeIrradiance(f.dev, f.ctx, nil, f.sampler, ibl.DefaultIrradianceOptions())
	assert.ErrorIs(t, err, gfx.ErrInvalidDescriptor)
	flat, err := f.dev.CreateTexture(faceDesc(2))
	require.NoError(t, err)
	_, err = ibl.BakeSpecular(f.dev, f.ctx, flat, f.sampler, ibl.DefaultSpecularOptions())
	assert.ErrorIs(t, err, gfx.ErrInvalidDescriptor)
	flat.Release()

	assert.Zero(t, f.dev.Calls(gfxtest.OpCreateShader))
	assert.Equal(t, f.resident(), f.dev.Live())
}

func TestBakeFaultsReleaseEverything(t *testing.T) {
	bakes := map[string]func(f bakeFixture) (gfx.Texture, error){
		"irradiance": func(f bakeFixture) (gfx.Texture, error) {
			return ibl.BakeIrradiance(f.dev, f.ctx, f.env, f.sampler, ibl.IrradianceOptions{Size: 2, StepPhi: 1, StepTheta: 1, Format: gfx.FormatRGBA8})
		},
		"specular": func(f bakeFixture) (gfx.Texture, error) {
			return ibl.BakeSpecular(f.dev, f.ctx, f.env, f.sampler, ibl.SpecularOptions{Size: 4, SkipLevels: 1, Format: gfx.FormatRGBA8})
		},
		"brdf": func(f bakeFixture) (gfx.Texture, error) {
			return ibl.BakeBRDF(f.dev, f.ctx, ibl.BRDFOptions{Size: 2})
		},
	}
	ops := []string{gfxtest.OpCreateShader, gfxtest.OpCreateTexture, gfxtest.OpCreateRenderTarget}

	for name, bake := range bakes {
		for _, op := range ops {
			for n := 0; ; n++ {
				f := newBakeFixture(t, gradient, 2)
				f.dev.FailAfter(op, n)
				tex, err := bake(f)
				if err == nil {
					// n is past the number of calls the bake makes
					tex.Release()
					assert.Equal(t, f.resident(), f.dev.Live())
					break
				}
				require.ErrorIs(t, err, gfxtest.ErrInjected, "%s %s after %d", name, op, n)
				assert.Equal(t, f.resident(), f.dev.Live(), "%s %s after %d", name, op, n)
				rt, _ := f.ctx.RenderTargets()
				assert.Same(t, f.ctx.Backbuffer, rt, "%s %s after %d", name, op, n)
			}
		}
	}
}

func TestShaderSources(t *testing.T) {
	for _, id := range []string{
		ibl.ShaderFullscreen, ibl.ShaderIrradiance, ibl.ShaderSpecular, ibl.ShaderBRDF,
		ibl.ShaderSkyVertex, ibl.ShaderSkyPixel, ibl.ShaderSkyPreview,
	} {
		src, err := ibl.ShaderSource(id)
		require.NoError(t, err, id)
		assert.Contains(t, src, "#version 450 core", id)
	}

	dev := gfxtest.NewDevice()
	_, err := ibl.LoadShader(dev, "tonemap")
	assert.Error(t, err)
	assert.Zero(t, dev.Calls(gfxtest.OpCreateShader))

	sh, err := ibl.LoadShader(dev, ibl.ShaderSkyVertex)
	require.NoError(t, err)
	assert.Equal(t, gfx.StageVertex, sh.Stage())
	assert.Equal(t, ibl.ShaderSkyVertex, sh.Name())
	sh.Release()
}
