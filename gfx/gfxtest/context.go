package gfxtest

import (
	"fmt"

	"skyibl/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	EventClear       = "clear"
	EventCopy        = "copy"
	EventUpdate      = "update"
	EventDraw        = "draw"
	EventDrawIndexed = "draw-indexed"
	EventFlush       = "flush"
)

const (
	BackbufferWidth  = 640
	BackbufferHeight = 480
)

// Event is one recorded context call together with the state it ran with.
type Event struct {
	Op string
	// Target is the label of the bound color target, "backbuffer" for the default one
	Target       string
	Layer, Level int
	Viewport     gfx.Viewport
	HasDepth     bool
	VertexShader string
	PixelShader  string
	// Ints and Floats are the values uploaded to the pixel shader
	Ints   map[string]int
	Floats map[string]float32
	Raster gfx.RasterDesc
	Depth  gfx.DepthDesc
	Count  int
	// Culled is set for full-screen draws discarded by front face culling
	Culled bool
}

type Context struct {
	dev         *Device
	Backbuffer  *RenderTarget
	DepthBuffer *DepthTarget
	Events      []Event
	rt          gfx.RenderTarget
	ds          gfx.DepthTarget
	vp          gfx.Viewport
	raster      gfx.RasterDesc
	depth       gfx.DepthDesc
	vs, ps      *Shader
}

func newContext(dev *Device) *Context {
	ctx := &Context{
		dev: dev,
		Backbuffer: &RenderTarget{
			dev:    dev,
			Label:  "backbuffer",
			Width:  BackbufferWidth,
			Height: BackbufferHeight,
		},
		DepthBuffer: &DepthTarget{Label: "depthbuffer"},
		raster:      gfx.DefaultRasterDesc(),
		depth:       gfx.DefaultDepthDesc(),
		vp: gfx.Viewport{
			Width:    BackbufferWidth,
			Height:   BackbufferHeight,
			MaxDepth: 1,
		},
	}
	ctx.rt = ctx.Backbuffer
	ctx.ds = ctx.DepthBuffer
	return ctx
}

func (ctx *Context) RenderTargets() (gfx.RenderTarget, gfx.DepthTarget) {
	return ctx.rt, ctx.ds
}

func (ctx *Context) SetRenderTargets(rt gfx.RenderTarget, ds gfx.DepthTarget) {
	ctx.rt = rt
	ctx.ds = ds
}

func (ctx *Context) Viewport() gfx.Viewport {
	return ctx.vp
}

func (ctx *Context) SetViewport(vp gfx.Viewport) {
	ctx.vp = vp
}

func (ctx *Context) RasterDesc() gfx.RasterDesc {
	return ctx.raster
}

func (ctx *Context) DepthDesc() gfx.DepthDesc {
	return ctx.depth
}

func (ctx *Context) SetRasterState(state gfx.RasterState) {
	if state == nil {
		ctx.raster = gfx.DefaultRasterDesc()
		return
	}
	ctx.raster = state.(*RasterState).Desc
}

func (ctx *Context) SetDepthState(state gfx.DepthState) {
	if state == nil {
		ctx.depth = gfx.DefaultDepthDesc()
		return
	}
	ctx.depth = state.(*DepthState).Desc
}

func (ctx *Context) ClearRenderTarget(rt gfx.RenderTarget, color [4]float32) {
	target := rt.(*RenderTarget)
	if target.Texture != nil {
		target.Texture.Fill(target.Layer, target.Level, color)
	}
	ev := ctx.event(EventClear)
	ev.Target, ev.Layer, ev.Level = target.Label, target.Layer, target.Level
	ctx.Events = append(ctx.Events, ev)
}

func (ctx *Context) UpdateTexture(t gfx.Texture, layer, level int, pix any) error {
	if err := ctx.dev.check(OpUpdateTexture); err != nil {
		return err
	}
	tex := t.(*Texture)
	desc := tex.desc
	if layer < 0 || layer >= desc.Layers || level < 0 || level >= desc.Levels {
		return fmt.Errorf("%w: texture %q has no layer %d level %d", gfx.ErrInvalidDescriptor, desc.Label, layer, level)
	}
	w, h := tex.LevelSize(level)
	channels := desc.Format.Channels()
	count := w * h * channels

	var get func(i int) float32
	switch p := pix.(type) {
	case []uint8:
		if len(p) != count {
			return fmt.Errorf("%w: texture %q expects %d values but got %d", gfx.ErrInvalidDescriptor, desc.Label, count, len(p))
		}
		get = func(i int) float32 { return float32(p[i]) / 0xff }
	case []float32:
		if len(p) != count {
			return fmt.Errorf("%w: texture %q expects %d values but got %d", gfx.ErrInvalidDescriptor, desc.Label, count, len(p))
		}
		get = func(i int) float32 { return p[i] }
	default:
		return fmt.Errorf("%w: pixel type %T", gfx.ErrUnsupported, pix)
	}

	for i := 0; i < w*h; i++ {
		c := [4]float32{0, 0, 0, 1}
		for ch := 0; ch < channels; ch++ {
			c[ch] = get(i*channels + ch)
		}
		tex.SetPixel(layer, level, i%w, i/w, c)
	}

	ev := ctx.event(EventUpdate)
	ev.Target, ev.Layer, ev.Level = desc.Label, layer, level
	ctx.Events = append(ctx.Events, ev)
	return nil
}

func (ctx *Context) CopySubresource(d gfx.Texture, dstLayer, dstLevel int, s gfx.Texture, srcLayer, srcLevel int) {
	dst, src := d.(*Texture), s.(*Texture)
	dw, dh := dst.LevelSize(dstLevel)
	sw, sh := src.LevelSize(srcLevel)
	if dw != sw || dh != sh || dst.desc.Format != src.desc.Format {
		panic(fmt.Errorf("copy from %q (%dx%d %v) to %q (%dx%d %v) does not match", src.desc.Label, sw, sh, src.desc.Format, dst.desc.Label, dw, dh, dst.desc.Format))
	}
	copy(dst.Data(dstLayer, dstLevel), src.Data(srcLayer, srcLevel))

	ev := ctx.event(EventCopy)
	ev.Target, ev.Layer, ev.Level = dst.desc.Label, dstLayer, dstLevel
	ctx.Events = append(ctx.Events, ev)
}

func (ctx *Context) Draw(vertexCount, firstVertex int) {
	ev := ctx.event(EventDraw)
	ev.Count = vertexCount
	target, _ := ctx.rt.(*RenderTarget)
	if target != nil {
		ev.Target, ev.Layer, ev.Level = target.Label, target.Layer, target.Level
	}
	// the vertex shader emits one counter clockwise full-screen triangle
	ev.Culled = vertexCount == 3 && ctx.raster.Cull == gfx.CullFront
	ctx.Events = append(ctx.Events, ev)

	if ev.Culled || vertexCount != 3 || target == nil || target.Texture == nil || ctx.ps == nil {
		return
	}
	program, ok := ctx.dev.Programs[ctx.ps.name]
	if !ok {
		return
	}
	vp := ctx.vp
	for y := 0; y < target.Height; y++ {
		for x := 0; x < target.Width; x++ {
			u := (float32(x) + 0.5 - vp.X) / vp.Width
			v := (float32(y) + 0.5 - vp.Y) / vp.Height
			if u < 0 || u > 1 || v < 0 || v > 1 {
				continue
			}
			c := program(ctx.ps, mgl32.Vec2{u, v})
			target.Texture.SetPixel(target.Layer, target.Level, x, y, c)
		}
	}
}

func (ctx *Context) DrawIndexed(indexCount, firstIndex, baseVertex int) {
	ev := ctx.event(EventDrawIndexed)
	ev.Count = indexCount
	if target, ok := ctx.rt.(*RenderTarget); ok {
		ev.Target, ev.Layer, ev.Level = target.Label, target.Layer, target.Level
	}
	ctx.Events = append(ctx.Events, ev)
}

func (ctx *Context) Flush() {
	ctx.Events = append(ctx.Events, ctx.event(EventFlush))
}

func (ctx *Context) event(op string) Event {
	ev := Event{
		Op:       op,
		Viewport: ctx.vp,
		HasDepth: ctx.ds != nil,
		Raster:   ctx.raster,
		Depth:    ctx.depth,
	}
	if ctx.vs != nil {
		ev.VertexShader = ctx.vs.name
	}
	if ctx.ps != nil {
		ev.PixelShader = ctx.ps.name
		ev.Ints, ev.Floats = ctx.ps.snapshot()
	}
	return ev
}

// Filter returns the recorded events with the given op.
func (ctx *Context) Filter(op string) []Event {
	var events []Event
	for _, ev := range ctx.Events {
		if ev.Op == op {
			events = append(events, ev)
		}
	}
	return events
}

func (ctx *Context) ResetEvents() {
	ctx.Events = nil
}
