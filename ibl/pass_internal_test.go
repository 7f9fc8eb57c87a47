package ibl

import (
	"testing"

	"skyibl/gfx"
	"skyibl/gfx/gfxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPassRenderer(t *testing.T, dev *gfxtest.Device, size, levels int) *passRenderer {
	t.Helper()
	vs, ps, err := loadPassShaders(dev, ShaderIrradiance)
	require.NoError(t, err)
	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Label:  "target",
		Kind:   gfx.TextureCube,
		Width:  size,
		Height: size,
		Layers: 6,
		Levels: levels,
		Format: gfx.FormatRGBA16F,
		Usage:  gfx.UsageRenderTarget | gfx.UsageShaderResource,
	})
	require.NoError(t, err)
	return &passRenderer{dev: dev, ctx: dev.Context(), vs: vs, ps: ps, target: tex}
}

func TestPassRendererRestoresTargets(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	r := newPassRenderer(t, dev, 4, 2)

	custom := gfx.Viewport{X: 3, Y: 4, Width: 20, Height: 10, MaxDepth: 1}
	ctx.SetViewport(custom)
	data := r.target.(*gfxtest.Texture)
	data.Fill(5, 0, [4]float32{1, 1, 1, 1})
	before := len(dev.Live())

	err := r.run([]pass{
		{layer: 2, level: 1, size: 2, setup: func(ps gfx.Shader) { ps.SetInt("faceIndex", 2) }},
		{layer: 5, level: 0, size: 4},
	})
	require.NoError(t, err)

	rt, ds := ctx.RenderTargets()
	assert.Same(t, ctx.Backbuffer, rt)
	assert.Same(t, ctx.DepthBuffer, ds)
	assert.Equal(t, custom, ctx.Viewport())
	assert.Len(t, dev.Live(), before, "render targets must be released")

	var ops []string
	for _, ev := range ctx.Events {
		ops = append(ops, ev.Op)
	}
	assert.Equal(t, []string{
		gfxtest.EventClear, gfxtest.EventDraw, gfxtest.EventFlush,
		gfxtest.EventClear, gfxtest.EventDraw, gfxtest.EventFlush,
	}, ops)

	draws := ctx.Filter(gfxtest.EventDraw)
	assert.Equal(t, 3, draws[0].Count)
	assert.Equal(t, 2, draws[0].Layer)
	assert.Equal(t, 1, draws[0].Level)
	assert.Equal(t, gfx.SquareViewport(2), draws[0].Viewport)
	assert.Equal(t, 2, draws[0].Ints["faceIndex"])
	assert.False(t, draws[0].HasDepth)
	assert.Equal(t, ShaderFullscreen, draws[0].VertexShader)
	assert.Equal(t, ShaderIrradiance, draws[0].PixelShader)
	assert.Equal(t, 5, draws[1].Layer)

	// cleared to transparent black before drawing
	assert.Equal(t, [4]float32{}, data.Pixel(5, 0, 0, 0))
	assert.Equal(t, [4]float32{}, data.Pixel(4, 0, 0, 0))
}

func TestPassRendererRestoresOnFailure(t *testing.T) {
	dev := gfxtest.NewDevice()
	ctx := dev.Context()
	r := newPassRenderer(t, dev, 4, 1)
	before := len(dev.Live())
	dev.FailAfter(gfxtest.OpCreateRenderTarget, 1)

	err := r.run([]pass{{layer: 0, size: 4}, {layer: 1, size: 4}, {layer: 2, size: 4}})
	require.ErrorIs(t, err, gfxtest.ErrInjected)
	assert.ErrorContains(t, err, "layer 1")

	rt, _ := ctx.RenderTargets()
	assert.Same(t, ctx.Backbuffer, rt)
	assert.Equal(t, float32(gfxtest.BackbufferWidth), ctx.Viewport().Width)
	assert.Len(t, dev.Live(), before)
	assert.Len(t, ctx.Filter(gfxtest.EventDraw), 1)
}
