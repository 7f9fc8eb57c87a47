package sky_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"skyibl/gfx"
	"skyibl/gfx/gfxtest"
	"skyibl/ibl"
	"skyibl/ibl/ibltest"
	"skyibl/sky"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cubeMesh struct{}

func (cubeMesh) Draw(ctx gfx.Context) {
	ctx.DrawIndexed(36, 0, 0)
}

type camera struct {
	view, projection mgl32.Mat4
}

func (c camera) View() mgl32.Mat4       { return c.view }
func (c camera) Projection() mgl32.Mat4 { return c.projection }

func testCamera() camera {
	return camera{
		view:       mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
		projection: mgl32.Perspective(mgl32.DegToRad(90), 4.0/3.0, 0.1, 100),
	}
}

func smallOptions() sky.Options {
	opts := sky.DefaultOptions()
	opts.IrradianceSize = 4
	opts.IrradianceStepPhi = 0.5
	opts.IrradianceStepTheta = 0.5
	opts.SpecularSize = 8
	opts.SpecularSkipLevels = 1
	opts.BRDFSize = 4
	return opts
}

func gradient(dir mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{dir[0]*0.5 + 0.5, dir[1]*0.5 + 0.5, dir[2]*0.5 + 0.5}
}

func writePackedCube(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sky.iblenv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, ibl.EncodeIblEnv(f, ibl.GenerateIblEnv(size, gradient), ibl.OptCompress(0)))
	return path
}

func writeFacePng(t *testing.T, dir string, name string, size int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func createFace(t *testing.T, dev *gfxtest.Device, size int, c [4]uint8) gfx.Texture {
	t.Helper()
	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Label:  "face",
		Kind:   gfx.Texture2D,
		Width:  size,
		Height: size,
		Layers: 1,
		Levels: 1,
		Format: gfx.FormatRGBA8,
		Usage:  gfx.UsageShaderResource,
	})
	require.NoError(t, err)
	pix := make([]uint8, 0, size*size*4)
	for i := 0; i < size*size; i++ {
		pix = append(pix, c[:]...)
	}
	require.NoError(t, dev.Context().UpdateTexture(tex, 0, 0, pix))
	return tex
}

func setup(t *testing.T) (*gfxtest.Device, sky.Resources) {
	t.Helper()
	dev := gfxtest.NewDevice()
	res, err := sky.LoadResources(dev, cubeMesh{})
	require.NoError(t, err)
	return dev, res
}

func TestNewDefaultSizes(t *testing.T) {
	dev, res := setup(t)
	opts := sky.DefaultOptions()
	opts.SpecularSkipLevels = 0

	s, err := sky.New(dev, dev.Context(), sky.FromPackedFile(writePackedCube(t, 16)), res, opts)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, 10, s.SpecularMipLevels())
	assert.Equal(t, 10, s.SpecularMap().Desc().Levels)
	assert.Equal(t, 512, s.SpecularMap().Desc().Width)

	irradiance := s.IrradianceMap().Desc()
	assert.Equal(t, gfx.TextureCube, irradiance.Kind)
	assert.Equal(t, 512, irradiance.Width)
	assert.Equal(t, 1, irradiance.Levels)

	brdf := s.BRDFLookUpTexture().Desc()
	assert.Equal(t, gfx.Texture2D, brdf.Kind)
	assert.Equal(t, 256, brdf.Width)
	assert.Equal(t, 256, brdf.Height)
	assert.Equal(t, gfx.FormatRG16, brdf.Format)

	env := s.EnvironmentMap().Desc()
	assert.Equal(t, gfx.TextureCube, env.Kind)
	assert.Equal(t, 16, env.Width)
}

func TestNewRestoresTargets(t *testing.T) {
	dev, res := setup(t)
	ibltest.Register(dev)
	ctx := dev.Context()

	s, err := sky.New(dev, ctx, sky.FromPackedFile(writePackedCube(t, 8)), res, smallOptions())
	require.NoError(t, err)
	defer s.Release()

	rt, ds := ctx.RenderTargets()
	assert.Same(t, ctx.Backbuffer, rt)
	assert.Same(t, ctx.DepthBuffer, ds)
	assert.Equal(t, float32(gfxtest.BackbufferWidth), ctx.Viewport().Width)
}

func TestFaceOrderPreserved(t *testing.T) {
	dev, res := setup(t)
	colors := [6][4]uint8{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
	}
	var faces [6]gfx.Texture
	for i, c := range colors {
		faces[i] = createFace(t, dev, 2, c)
	}

	s, err := sky.New(dev, dev.Context(), sky.FromFaceTextures(faces), res, smallOptions())
	require.NoError(t, err)
	defer s.Release()

	// the faces may go away once the cube exists
	for _, face := range faces {
		face.Release()
	}

	env := s.EnvironmentMap().(*gfxtest.Texture)
	for i, c := range colors {
		want := [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, 1}
		assert.Equal(t, want, env.Pixel(i, 0, 1, 1), "face %v", gfx.CubeFaces[i])
	}
}

func TestMismatchedFaceTextures(t *testing.T) {
	dev, res := setup(t)
	var faces [6]gfx.Texture
	for i := range faces {
		size := 2
		if i == 3 {
			size = 4
		}
		faces[i] = createFace(t, dev, size, [4]uint8{0, 0, 0, 255})
	}
	baseline := dev.Live()
	before := dev.Calls(gfxtest.OpCreateTexture)

	_, err := sky.New(dev, dev.Context(), sky.FromFaceTextures(faces), res, smallOptions())
	require.ErrorIs(t, err, ibl.ErrFaceMismatch)
	assert.Contains(t, err.Error(), gfx.CubeNegativeY.String())
	assert.Equal(t, before, dev.Calls(gfxtest.OpCreateTexture))
	assert.Equal(t, baseline, dev.Live())
}

func TestMismatchedFaceFiles(t *testing.T) {
	dev, res := setup(t)
	dir := t.TempDir()
	var paths [6]string
	for i, face := range gfx.CubeFaces {
		size := 4
		if face == gfx.CubePositiveZ {
			size = 8
		}
		paths[i] = writeFacePng(t, dir, face.String(), size, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	}
	baseline := dev.Live()
	before := dev.Calls(gfxtest.OpCreateTexture)

	_, err := sky.New(dev, dev.Context(), sky.FromFaceFiles(paths), res, smallOptions())
	require.ErrorIs(t, err, ibl.ErrFaceMismatch)
	assert.Equal(t, before, dev.Calls(gfxtest.OpCreateTexture))
	assert.Equal(t, baseline, dev.Live())
}

func TestFaceFiles(t *testing.T) {
	dev, res := setup(t)
	dir := t.TempDir()
	var paths [6]string
	for i, face := range gfx.CubeFaces {
		paths[i] = writeFacePng(t, dir, face.String(), 4, color.NRGBA{R: uint8(40 * i), A: 255})
	}
	baseline := dev.Live()

	s, err := sky.New(dev, dev.Context(), sky.FromFaceFiles(paths), res, smallOptions())
	require.NoError(t, err)

	env := s.EnvironmentMap().(*gfxtest.Texture)
	for i := range paths {
		assert.Equal(t, float32(40*i)/255, env.Pixel(i, 0, 2, 3)[0])
	}

	// the uploaded face images are temporary
	s.Release()
	assert.Equal(t, baseline, dev.Live())
}

func TestFaultsReleaseEverything(t *testing.T) {
	ops := []string{
		gfxtest.OpCreateRasterState,
		gfxtest.OpCreateDepthState,
		gfxtest.OpCreateTexture,
		gfxtest.OpUpdateTexture,
		gfxtest.OpCreateRenderTarget,
		gfxtest.OpCreateShader,
	}

	dev, res := setup(t)
	path := writePackedCube(t, 4)
	for _, op := range ops {
		dev.FailAfter(op, 1<<30)
	}
	s, err := sky.New(dev, dev.Context(), sky.FromPackedFile(path), res, smallOptions())
	require.NoError(t, err)
	s.Release()
	counts := map[string]int{}
	for _, op := range ops {
		counts[op] = dev.Calls(op)
		require.NotZero(t, counts[op], op)
	}

	for _, op := range ops {
		for n := 0; n < counts[op]; n++ {
			dev, res := setup(t)
			baseline := dev.Live()
			dev.FailAfter(op, n)

			s, err := sky.New(dev, dev.Context(), sky.FromPackedFile(path), res, smallOptions())
			require.ErrorIs(t, err, gfxtest.ErrInjected, "%s after %d", op, n)
			assert.Nil(t, s)
			assert.Equal(t, baseline, dev.Live(), "%s after %d", op, n)

			rt, _ := dev.Context().RenderTargets()
			assert.Same(t, dev.Context().Backbuffer, rt, "%s after %d", op, n)
		}
	}
}

func TestDrawRestoresStates(t *testing.T) {
	dev, res := setup(t)
	ctx := dev.Context()
	s, err := sky.New(dev, ctx, sky.FromPackedFile(writePackedCube(t, 4)), res, smallOptions())
	require.NoError(t, err)
	defer s.Release()

	cam := testCamera()
	ctx.ResetEvents()
	s.Draw(cam)

	draws := ctx.Filter(gfxtest.EventDrawIndexed)
	require.Len(t, draws, 1)
	assert.Equal(t, 36, draws[0].Count)
	assert.Equal(t, gfx.CullFront, draws[0].Raster.Cull)
	assert.Equal(t, gfx.CompareLessEqual, draws[0].Depth.Func)
	assert.True(t, draws[0].Depth.DepthTest)
	assert.Equal(t, ibl.ShaderSkyVertex, draws[0].VertexShader)
	assert.Equal(t, ibl.ShaderSkyPixel, draws[0].PixelShader)
	assert.Equal(t, "backbuffer", draws[0].Target)

	assert.Equal(t, gfx.DefaultRasterDesc(), ctx.RasterDesc())
	assert.Equal(t, gfx.DefaultDepthDesc(), ctx.DepthDesc())

	vs := res.VertexShader.(*gfxtest.Shader)
	view, ok := vs.Matrix("view")
	require.True(t, ok)
	assert.Equal(t, cam.View(), view)
	projection, ok := vs.Matrix("projection")
	require.True(t, ok)
	assert.Equal(t, cam.Projection(), projection)

	ps := res.PixelShader.(*gfxtest.Shader)
	assert.Same(t, s.EnvironmentMap(), ps.Texture("skyTexture"))
	assert.Same(t, res.Sampler, ps.Sampler("samplerOptions"))
}

func TestDrawPreview(t *testing.T) {
	dev, res := setup(t)
	ctx := dev.Context()
	s, err := sky.New(dev, ctx, sky.FromPackedFile(writePackedCube(t, 4)), res, smallOptions())
	require.NoError(t, err)
	defer s.Release()

	ctx.ResetEvents()
	s.DrawPreview(testCamera(), s.SpecularMap(), 2)

	draws := ctx.Filter(gfxtest.EventDrawIndexed)
	require.Len(t, draws, 1)
	assert.Equal(t, ibl.ShaderSkyPreview, draws[0].PixelShader)
	assert.Equal(t, float32(2), draws[0].Floats["lod"])
	assert.Equal(t, gfx.DefaultRasterDesc(), ctx.RasterDesc())

	ctx.ResetEvents()
	s.DrawPreview(testCamera(), nil, 0)
	draws = ctx.Filter(gfxtest.EventDrawIndexed)
	require.Len(t, draws, 1)
	assert.Equal(t, ibl.ShaderSkyPreview, draws[0].PixelShader)
}

func TestBorrowedCubeSurvivesRelease(t *testing.T) {
	dev, res := setup(t)
	ctx := dev.Context()
	cube, err := ibl.UploadIblEnv(dev, ctx, "borrowed", ibl.GenerateIblEnv(4, gradient))
	require.NoError(t, err)

	s, err := sky.New(dev, ctx, sky.FromCube(cube), res, smallOptions())
	require.NoError(t, err)
	assert.Same(t, cube, s.EnvironmentMap())

	s.Release()
	s.Release()
	assert.False(t, cube.(*gfxtest.Texture).Released())
	assert.ElementsMatch(t, []string{
		"texture:borrowed",
		"shader:" + ibl.ShaderSkyVertex,
		"shader:" + ibl.ShaderSkyPixel,
		"sampler",
	}, dev.Live())

	cube.Release()
	res.Release()
	assert.Empty(t, dev.Live())
}

func TestFromCubeRejectsFlatTexture(t *testing.T) {
	dev, res := setup(t)
	flat := createFace(t, dev, 2, [4]uint8{})

	_, err := sky.New(dev, dev.Context(), sky.FromCube(flat), res, smallOptions())
	require.ErrorIs(t, err, gfx.ErrInvalidDescriptor)

	_, err = sky.New(dev, dev.Context(), sky.FromCube(nil), res, smallOptions())
	require.ErrorIs(t, err, gfx.ErrInvalidDescriptor)
}

func TestNewRejectsBadInput(t *testing.T) {
	dev, res := setup(t)
	path := writePackedCube(t, 4)

	opts := smallOptions()
	opts.SpecularSize = 0
	_, err := sky.New(dev, dev.Context(), sky.FromPackedFile(path), res, opts)
	require.ErrorIs(t, err, ibl.ErrInvalidSize)

	broken := res
	broken.Mesh = nil
	_, err = sky.New(dev, dev.Context(), sky.FromPackedFile(path), broken, smallOptions())
	require.ErrorIs(t, err, gfx.ErrInvalidDescriptor)

	broken = res
	broken.VertexShader = res.PixelShader
	_, err = sky.New(dev, dev.Context(), sky.FromPackedFile(path), broken, smallOptions())
	require.ErrorIs(t, err, gfx.ErrInvalidDescriptor)

	_, err = sky.New(dev, dev.Context(), nil, res, smallOptions())
	require.ErrorIs(t, err, gfx.ErrInvalidDescriptor)

	_, err = sky.New(dev, dev.Context(), sky.FromPackedFile(filepath.Join(t.TempDir(), "missing.iblenv")), res, smallOptions())
	require.ErrorIs(t, err, os.ErrNotExist)
}
