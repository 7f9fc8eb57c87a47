package libgl

import (
	"skyibl/gfx"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type sampler struct {
	glId uint32
}

type UnboundSampler interface {
	LabeledGlObject
	gfx.Sampler
	Id() uint32
	Bind(unit int) BoundSampler
	FilterMode(min, mag int32)
	WrapMode(s, t, r int32)
	AnisotropicFilter(quality float32)
}

type BoundSampler interface {
	UnboundSampler
}

func NewSampler() UnboundSampler {
	var id uint32
	gl.CreateSamplers(1, &id)
	return &sampler{glId: id}
}

// newSamplerFromDesc translates a backend neutral descriptor.
func newSamplerFromDesc(desc gfx.SamplerDesc) UnboundSampler {
	s := NewSampler()
	s.FilterMode(minFilter(desc), magFilter(desc.MagFilter))
	wrap := wrapModes[desc.Wrap]
	s.WrapMode(wrap, wrap, wrap)
	if desc.MaxAnisotropy > 1 {
		s.AnisotropicFilter(desc.MaxAnisotropy)
	}
	return s
}

var wrapModes = map[gfx.WrapMode]int32{
	gfx.WrapClamp:  gl.CLAMP_TO_EDGE,
	gfx.WrapRepeat: gl.REPEAT,
	gfx.WrapMirror: gl.MIRRORED_REPEAT,
}

func minFilter(desc gfx.SamplerDesc) int32 {
	nearest := desc.MinFilter == gfx.FilterNearest
	if !desc.Mipmaps {
		if nearest {
			return gl.NEAREST
		}
		return gl.LINEAR
	}
	mipNearest := desc.MipFilter == gfx.FilterNearest
	switch {
	case nearest && mipNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case nearest:
		return gl.NEAREST_MIPMAP_LINEAR
	case mipNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	}
	return gl.LINEAR_MIPMAP_LINEAR
}

func magFilter(f gfx.Filter) int32 {
	if f == gfx.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func (s *sampler) Id() uint32 {
	return s.glId
}

func (s *sampler) SetDebugLabel(label string) {
	setObjectLabel(gl.SAMPLER, s.glId, label)
}

func (s *sampler) Bind(unit int) BoundSampler {
	State.BindSampler(unit, s.glId)
	return BoundSampler(s)
}

func (s *sampler) FilterMode(min, mag int32) {
	if min != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MIN_FILTER, min)
	}
	if mag != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MAG_FILTER, mag)
	}
}

func (sampler *sampler) WrapMode(s, t, r int32) {
	if s != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_T, t)
	}
	if r != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_R, r)
	}
}

// AnisotropicFilter is clamped to what the driver supports.
func (s *sampler) AnisotropicFilter(quality float32) {
	if max := GlEnv.Features.MaxTextureMaxAnisotropy; max >= 1 && quality > max {
		quality = max
	}
	gl.SamplerParameterf(s.glId, gl.TEXTURE_MAX_ANISOTROPY, quality)
}

func (s *sampler) Release() {
	if s.glId == 0 {
		return
	}
	gl.DeleteSamplers(1, &s.glId)
	State.forgetSampler(s.glId)
	s.glId = 0
}
