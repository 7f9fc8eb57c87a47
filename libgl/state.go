package libgl

import (
	"github.com/go-gl/gl/v4.5-core/gl"
)

type GlCapability uint32

const (
	CullFace     GlCapability = gl.CULL_FACE
	DepthTest    GlCapability = gl.DEPTH_TEST
	DepthClamp   GlCapability = gl.DEPTH_CLAMP
	ScissorTest  GlCapability = gl.SCISSOR_TEST
	Blend        GlCapability = gl.BLEND
	SeamlessCube GlCapability = gl.TEXTURE_CUBE_MAP_SEAMLESS
)

type GlDepthFunc uint32

const (
	DepthFuncNever    GlDepthFunc = gl.NEVER
	DepthFuncLess     GlDepthFunc = gl.LESS
	DepthFuncLEqual   GlDepthFunc = gl.LEQUAL
	DepthFuncGreater  GlDepthFunc = gl.GREATER
	DepthFuncGEqual   GlDepthFunc = gl.GEQUAL
	DepthFuncNotEqual GlDepthFunc = gl.NOTEQUAL
	DepthFuncEqual    GlDepthFunc = gl.EQUAL
	DepthFuncAlways   GlDepthFunc = gl.ALWAYS
)

// GlStateManager mirrors the bits of the gl state this package touches so
// redundant calls can be skipped. It is only valid while every state change
// goes through it.
type GlStateManager struct {
	Caps                              map[GlCapability]bool
	TextureUnits, SamplerUnits        []uint32
	DrawFramebuffer, ReadFramebuffer  uint32
	ProgramPipeline, VertexArray      uint32
	ActiveTextureUnit                 int
	ViewportRect, ScissorRect         [4]int
	DepthRangeValues                  [2]float32
	DepthFuncFn                       GlDepthFunc
	DepthWriteMask                    bool
	CullFaceMask                      uint32
	PolygonModeFront, PolygonModeBack uint32
}

var State *GlStateManager

// NewGlStateManager starts from the gl defaults of a fresh context.
func NewGlStateManager() *GlStateManager {
	return &GlStateManager{
		Caps:             map[GlCapability]bool{},
		TextureUnits:     make([]uint32, 32),
		SamplerUnits:     make([]uint32, 32),
		DepthRangeValues: [2]float32{0, 1},
		DepthFuncFn:      DepthFuncLess,
		DepthWriteMask:   true,
		CullFaceMask:     gl.BACK,
		PolygonModeFront: gl.FILL,
		PolygonModeBack:  gl.FILL,
	}
}

func (s *GlStateManager) Enable(cap GlCapability) {
	if s.Caps[cap] {
		return
	}
	gl.Enable(uint32(cap))
	s.Caps[cap] = true
}

func (s *GlStateManager) Disable(cap GlCapability) {
	if !s.Caps[cap] {
		return
	}
	gl.Disable(uint32(cap))
	s.Caps[cap] = false
}

func (s *GlStateManager) SetEnabledIf(cap GlCapability, enabled bool) {
	if enabled {
		s.Enable(cap)
	} else {
		s.Disable(cap)
	}
}

func (s *GlStateManager) CullFront() {
	if s.CullFaceMask == gl.FRONT {
		return
	}
	gl.CullFace(gl.FRONT)
	s.CullFaceMask = gl.FRONT
}

func (s *GlStateManager) CullBack() {
	if s.CullFaceMask == gl.BACK {
		return
	}
	gl.CullFace(gl.BACK)
	s.CullFaceMask = gl.BACK
}

func (s *GlStateManager) DepthFunc(fn GlDepthFunc) {
	if s.DepthFuncFn == fn {
		return
	}
	gl.DepthFunc(uint32(fn))
	s.DepthFuncFn = fn
}

func (s *GlStateManager) DepthMask(flag bool) {
	if s.DepthWriteMask == flag {
		return
	}
	gl.DepthMask(flag)
	s.DepthWriteMask = flag
}

func (s *GlStateManager) DepthRange(near, far float32) {
	if s.DepthRangeValues == [2]float32{near, far} {
		return
	}
	gl.DepthRangef(near, far)
	s.DepthRangeValues = [2]float32{near, far}
}

func (s *GlStateManager) PolygonMode(face, mode uint32) {
	switch face {
	case gl.FRONT_AND_BACK:
		if s.PolygonModeFront == mode && s.PolygonModeBack == mode {
			return
		}
		s.PolygonModeFront = mode
		s.PolygonModeBack = mode
	case gl.FRONT:
		if s.PolygonModeFront == mode {
			return
		}
		s.PolygonModeFront = mode
	case gl.BACK:
		if s.PolygonModeBack == mode {
			return
		}
		s.PolygonModeBack = mode
	}
	gl.PolygonMode(face, mode)
}

func (s *GlStateManager) BindTextureUnit(unit int, texture uint32) {
	if s.TextureUnits[unit] == texture {
		return
	}
	if GlEnv.UseIntelTextureBindingFix {
		s.ActiveTexture(unit)
		if texture == 0 {
			s.TextureUnits[unit] = texture
			return
		}
		gl.BindTexture(GlEnv.IntelTextureBindingTargets[texture], texture)
		s.TextureUnits[unit] = texture
		return
	}
	gl.BindTextureUnit(uint32(unit), texture)
	s.TextureUnits[unit] = texture
}

func (s *GlStateManager) ActiveTexture(unit int) {
	if s.ActiveTextureUnit == unit {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	s.ActiveTextureUnit = unit
}

func (s *GlStateManager) BindSampler(unit int, sampler uint32) {
	if s.SamplerUnits[unit] == sampler {
		return
	}
	gl.BindSampler(uint32(unit), sampler)
	s.SamplerUnits[unit] = sampler
}

// forgetTexture is called after a texture was deleted, gl unbinds it from every unit.
func (s *GlStateManager) forgetTexture(texture uint32) {
	for i, id := range s.TextureUnits {
		if id == texture {
			s.TextureUnits[i] = 0
		}
	}
}

func (s *GlStateManager) forgetSampler(sampler uint32) {
	for i, id := range s.SamplerUnits {
		if id == sampler {
			s.SamplerUnits[i] = 0
		}
	}
}

// forgetFramebuffer is called after a framebuffer was deleted, gl falls back to
// the default framebuffer for every binding point it was bound to.
func (s *GlStateManager) forgetFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		s.DrawFramebuffer = 0
	}
	if s.ReadFramebuffer == framebuffer {
		s.ReadFramebuffer = 0
	}
}

func (s *GlStateManager) BindFramebuffer(target, framebuffer uint32) {
	if target == gl.DRAW_FRAMEBUFFER {
		s.BindDrawFramebuffer(framebuffer)
	} else if target == gl.READ_FRAMEBUFFER {
		s.BindReadFramebuffer(framebuffer)
	} else {
		if framebuffer == s.DrawFramebuffer && framebuffer == s.ReadFramebuffer {
			return
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		s.DrawFramebuffer = framebuffer
		s.ReadFramebuffer = framebuffer
	}
}

func (s *GlStateManager) BindDrawFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	s.DrawFramebuffer = framebuffer
}

func (s *GlStateManager) BindReadFramebuffer(framebuffer uint32) {
	if s.ReadFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	s.ReadFramebuffer = framebuffer
}

func (s *GlStateManager) BindProgramPipeline(pipeline uint32) {
	if s.ProgramPipeline == pipeline {
		return
	}
	gl.BindProgramPipeline(pipeline)
	s.ProgramPipeline = pipeline
}

func (s *GlStateManager) BindVertexArray(array uint32) {
	if s.VertexArray == array {
		return
	}
	gl.BindVertexArray(array)
	s.VertexArray = array
}

func (s *GlStateManager) Viewport(x, y, w, h int) {
	if s.ViewportRect == [4]int{x, y, w, h} {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	s.ViewportRect = [4]int{x, y, w, h}
}

func (s *GlStateManager) Scissor(x, y, w, h int) {
	if s.ScissorRect == [4]int{x, y, w, h} {
		return
	}
	gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	s.ScissorRect = [4]int{x, y, w, h}
}
