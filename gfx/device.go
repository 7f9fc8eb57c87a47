// Package gfx is the contract between the lighting code and a GPU backend.
//
// It models a single immediate context: every call is submitted in order from
// one thread, and the backend never reorders work across a Flush.
package gfx

import "github.com/go-gl/mathgl/mgl32"

type Texture interface {
	Desc() TextureDesc
	Release()
}

// RenderTarget addresses exactly one layer and level of a texture, or a
// backend owned surface such as the default framebuffer.
type RenderTarget interface {
	Release()
}

type DepthTarget interface {
	Release()
}

type Sampler interface {
	Release()
}

type RasterState interface {
	Release()
}

type DepthState interface {
	Release()
}

// Shader is one compiled program stage. Values set on it are staged until
// Upload is called; Activate makes it the current program for its stage.
type Shader interface {
	Name() string
	Stage() Stage
	Activate()
	SetMatrix(name string, m mgl32.Mat4)
	SetInt(name string, v int)
	SetFloat(name string, v float32)
	SetTexture(name string, tex Texture)
	SetSampler(name string, s Sampler)
	Upload()
	Release()
}

type Mesh interface {
	// Draw binds the mesh buffers and issues an indexed draw
	Draw(ctx Context)
}

type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

type Device interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	CreateRenderTarget(tex Texture, layer, level int) (RenderTarget, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	CreateRasterState(desc RasterDesc) (RasterState, error)
	CreateDepthState(desc DepthDesc) (DepthState, error)
	CreateShader(desc ShaderDesc) (Shader, error)
}

type Context interface {
	// RenderTargets returns the currently bound targets. The returned
	// handles are borrowed and must not be released.
	RenderTargets() (RenderTarget, DepthTarget)
	SetRenderTargets(rt RenderTarget, ds DepthTarget)
	Viewport() Viewport
	SetViewport(vp Viewport)
	ClearRenderTarget(rt RenderTarget, color [4]float32)
	// UpdateTexture uploads tightly packed pixels with the channel count of
	// the texture format; pix is []uint8 or []float32.
	UpdateTexture(tex Texture, layer, level int, pix any) error
	// CopySubresource copies a whole level of one layer, both subresources
	// must have the same size and format.
	CopySubresource(dst Texture, dstLayer, dstLevel int, src Texture, srcLayer, srcLevel int)
	// nil restores the default state
	SetRasterState(state RasterState)
	// nil restores the default state
	SetDepthState(state DepthState)
	Draw(vertexCount, firstVertex int)
	DrawIndexed(indexCount, firstIndex, baseVertex int)
	Flush()
}
