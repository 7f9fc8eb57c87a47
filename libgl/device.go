// Package libgl implements the gfx device contract on OpenGL 4.5 using direct
// state access. The gl context must be current on the calling OS thread for
// every call, including Release.
package libgl

import (
	"fmt"

	"skyibl/gfx"
	"skyibl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"
)

var (
	_ gfx.Device  = (*Device)(nil)
	_ gfx.Context = (*Context)(nil)
)

type Device struct {
	ctx      *Context
	pipeline *shaderPipeline
}

// NewDevice initializes State and GlEnv for the current context. width and
// height are the size of the default framebuffer.
func NewDevice(width, height int) *Device {
	State = NewGlStateManager()
	GlEnv = GetGlEnv()
	liblog.Log.Info("opengl device",
		zap.String("vendor", GlEnv.Vendor),
		zap.String("renderer", GlEnv.Renderer),
		zap.Float32("max_anisotropy", GlEnv.Features.MaxTextureMaxAnisotropy))

	State.Enable(SeamlessCube)
	State.Enable(CullFace)
	State.Enable(DepthTest)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	dev := &Device{pipeline: newPipeline()}
	dev.ctx = newContext(dev, width, height)
	return dev
}

func (dev *Device) Context() *Context {
	return dev.ctx
}

func (dev *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	tex, err := NewTexture(desc)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (dev *Device) CreateRenderTarget(t gfx.Texture, layer, level int) (gfx.RenderTarget, error) {
	tex, ok := t.(*texture)
	if !ok || tex.glId == 0 {
		return nil, fmt.Errorf("%w: render target texture %T is not a live gl texture", gfx.ErrInvalidDescriptor, t)
	}
	desc := tex.desc
	if desc.Usage&gfx.UsageRenderTarget == 0 {
		return nil, fmt.Errorf("%w: texture %q is not a render target", gfx.ErrInvalidDescriptor, desc.Label)
	}
	if layer < 0 || layer >= desc.Layers || level < 0 || level >= desc.Levels {
		return nil, fmt.Errorf("%w: texture %q has no layer %d level %d", gfx.ErrInvalidDescriptor, desc.Label, layer, level)
	}

	fb := NewFramebuffer()
	fb.AttachTextureLayerLevel(tex, layer, level)
	if err := fb.Check(gl.DRAW_FRAMEBUFFER); err != nil {
		fb.Delete()
		return nil, fmt.Errorf("could not complete framebuffer for %q layer %d level %d: %w", desc.Label, layer, level, err)
	}
	fb.SetDebugLabel(fmt.Sprintf("%s[%d:%d]", desc.Label, layer, level))
	return fb, nil
}

func (dev *Device) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	if _, ok := wrapModes[desc.Wrap]; !ok {
		return nil, fmt.Errorf("%w: wrap mode %d", gfx.ErrInvalidDescriptor, desc.Wrap)
	}
	return newSamplerFromDesc(desc), nil
}

type rasterState struct {
	desc gfx.RasterDesc
}

func (*rasterState) Release() {}

type depthState struct {
	desc gfx.DepthDesc
}

func (*depthState) Release() {}

func (dev *Device) CreateRasterState(desc gfx.RasterDesc) (gfx.RasterState, error) {
	if desc.Cull < gfx.CullBack || desc.Cull > gfx.CullNone || desc.Fill < gfx.FillSolid || desc.Fill > gfx.FillWireframe {
		return nil, fmt.Errorf("%w: raster state %+v", gfx.ErrInvalidDescriptor, desc)
	}
	return &rasterState{desc: desc}, nil
}

func (dev *Device) CreateDepthState(desc gfx.DepthDesc) (gfx.DepthState, error) {
	if _, ok := depthFuncs[desc.Func]; !ok {
		return nil, fmt.Errorf("%w: depth compare func %d", gfx.ErrInvalidDescriptor, desc.Func)
	}
	return &depthState{desc: desc}, nil
}

func (dev *Device) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	prog, err := newProgram(dev.pipeline, desc)
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Delete frees the device objects, everything created from it must be released first.
func (dev *Device) Delete() {
	dev.ctx.emptyVertexArray.Delete()
	dev.pipeline.Delete()
}

var depthFuncs = map[gfx.CompareFunc]GlDepthFunc{
	gfx.CompareLess:         DepthFuncLess,
	gfx.CompareLessEqual:    DepthFuncLEqual,
	gfx.CompareEqual:        DepthFuncEqual,
	gfx.CompareGreater:      DepthFuncGreater,
	gfx.CompareGreaterEqual: DepthFuncGEqual,
	gfx.CompareNotEqual:     DepthFuncNotEqual,
	gfx.CompareAlways:       DepthFuncAlways,
	gfx.CompareNever:        DepthFuncNever,
}

type Context struct {
	dev         *Device
	Backbuffer  gfx.RenderTarget
	DepthBuffer gfx.DepthTarget
	rt          gfx.RenderTarget
	ds          gfx.DepthTarget
	vp          gfx.Viewport
	raster      gfx.RasterDesc
	depth       gfx.DepthDesc
	// bound for attribute-less draws
	emptyVertexArray UnboundVertexArray
}

func newContext(dev *Device, width, height int) *Context {
	ctx := &Context{
		dev:              dev,
		Backbuffer:       defaultFramebuffer{},
		DepthBuffer:      defaultDepthbuffer{},
		emptyVertexArray: NewVertexArray(),
	}
	ctx.rt, ctx.ds = ctx.Backbuffer, ctx.DepthBuffer
	ctx.SetViewport(gfx.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1})
	ctx.SetRasterState(nil)
	ctx.SetDepthState(nil)
	return ctx
}

func (ctx *Context) RenderTargets() (gfx.RenderTarget, gfx.DepthTarget) {
	return ctx.rt, ctx.ds
}

func framebufferId(rt gfx.RenderTarget) uint32 {
	switch target := rt.(type) {
	case *framebuffer:
		return target.glId
	case defaultFramebuffer, nil:
		return 0
	}
	panic(fmt.Errorf("render target %T is not from this backend", rt))
}

// SetRenderTargets binds rt for drawing. Only the default framebuffer has a
// depth buffer, a nil ds disables depth testing.
func (ctx *Context) SetRenderTargets(rt gfx.RenderTarget, ds gfx.DepthTarget) {
	ctx.rt, ctx.ds = rt, ds
	State.BindDrawFramebuffer(framebufferId(rt))
	ctx.applyDepth()
}

func (ctx *Context) Viewport() gfx.Viewport {
	return ctx.vp
}

func (ctx *Context) SetViewport(vp gfx.Viewport) {
	ctx.vp = vp
	State.Viewport(int(vp.X), int(vp.Y), int(vp.Width), int(vp.Height))
	State.DepthRange(vp.MinDepth, vp.MaxDepth)
}

func (ctx *Context) ClearRenderTarget(rt gfx.RenderTarget, color [4]float32) {
	gl.ClearNamedFramebufferfv(framebufferId(rt), gl.COLOR, 0, &color[0])
}

func (ctx *Context) UpdateTexture(t gfx.Texture, layer, level int, pix any) error {
	tex, ok := t.(*texture)
	if !ok || tex.glId == 0 {
		return fmt.Errorf("%w: texture %T is not a live gl texture", gfx.ErrInvalidDescriptor, t)
	}
	return tex.Load(layer, level, pix)
}

func (ctx *Context) CopySubresource(d gfx.Texture, dstLayer, dstLevel int, s gfx.Texture, srcLayer, srcLevel int) {
	dst, src := d.(*texture), s.(*texture)
	w, h := src.levelSize(srcLevel)
	// 2d textures address their only layer as z = 0
	gl.CopyImageSubData(
		src.glId, src.target, int32(srcLevel), 0, 0, int32(srcLayer),
		dst.glId, dst.target, int32(dstLevel), 0, 0, int32(dstLayer),
		int32(w), int32(h), 1)
}

func (ctx *Context) SetRasterState(state gfx.RasterState) {
	ctx.raster = gfx.DefaultRasterDesc()
	if state != nil {
		ctx.raster = state.(*rasterState).desc
	}
	switch ctx.raster.Cull {
	case gfx.CullNone:
		State.Disable(CullFace)
	case gfx.CullFront:
		State.Enable(CullFace)
		State.CullFront()
	default:
		State.Enable(CullFace)
		State.CullBack()
	}
	if ctx.raster.Fill == gfx.FillWireframe {
		State.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		State.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	State.SetEnabledIf(DepthClamp, !ctx.raster.DepthClip)
}

func (ctx *Context) SetDepthState(state gfx.DepthState) {
	ctx.depth = gfx.DefaultDepthDesc()
	if state != nil {
		ctx.depth = state.(*depthState).desc
	}
	ctx.applyDepth()
}

func (ctx *Context) applyDepth() {
	State.SetEnabledIf(DepthTest, ctx.depth.DepthTest && ctx.ds != nil)
	State.DepthMask(ctx.depth.DepthWrite)
	State.DepthFunc(depthFuncs[ctx.depth.Func])
}

func (ctx *Context) Draw(vertexCount, firstVertex int) {
	ctx.emptyVertexArray.Bind()
	ctx.dev.pipeline.Bind()
	gl.DrawArrays(gl.TRIANGLES, int32(firstVertex), int32(vertexCount))
}

// DrawIndexed uses the vertex array bound by the mesh, indices are uint32.
func (ctx *Context) DrawIndexed(indexCount, firstIndex, baseVertex int) {
	ctx.dev.pipeline.Bind()
	gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, uintptr(firstIndex*4), int32(baseVertex))
}

func (ctx *Context) Flush() {
	gl.Flush()
}

// Resize updates the default viewport after the window changed size.
func (ctx *Context) Resize(width, height int) {
	if _, ok := ctx.rt.(defaultFramebuffer); ok {
		ctx.SetViewport(gfx.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1})
	}
}
