package libgl

import (
	"fmt"
	"log"

	"skyibl/gfx"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type glFormat struct {
	internal uint32
	// pixel layout used for uploads
	format uint32
}

var glFormats = map[gfx.Format]glFormat{
	gfx.FormatRGBA8:   {gl.RGBA8, gl.RGBA},
	gfx.FormatRGBA16F: {gl.RGBA16F, gl.RGBA},
	gfx.FormatRGBA32F: {gl.RGBA32F, gl.RGBA},
	gfx.FormatRG16:    {gl.RG16, gl.RG},
	gfx.FormatRG16F:   {gl.RG16F, gl.RG},
}

type texture struct {
	glId   uint32
	target uint32
	desc   gfx.TextureDesc
}

type UnboundTexture interface {
	LabeledGlObject
	gfx.Texture
	Id() uint32
	Type() uint32
	Bind(unit int) BoundTexture
	Load(layer, level int, data any) error
	GenerateMipmap()
}

type BoundTexture interface {
	UnboundTexture
}

// NewTexture allocates immutable storage for desc.
func NewTexture(desc gfx.TextureDesc) (UnboundTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	format, ok := glFormats[desc.Format]
	if !ok {
		return nil, fmt.Errorf("%w: format %v", gfx.ErrUnsupported, desc.Format)
	}
	target := uint32(gl.TEXTURE_2D)
	if desc.Kind == gfx.TextureCube {
		target = gl.TEXTURE_CUBE_MAP
	}
	if max := int(GlEnv.Features.MaxTextureSize); max > 0 && (desc.Width > max || desc.Height > max) {
		return nil, fmt.Errorf("%w: texture %q is %dx%d, the driver allows %d", gfx.ErrUnsupported, desc.Label, desc.Width, desc.Height, max)
	}

	var id uint32
	gl.CreateTextures(target, 1, &id)
	if GlEnv.UseIntelTextureBindingFix {
		GlEnv.IntelTextureBindingTargets[id] = target
	}
	tex := &texture{
		glId:   id,
		target: target,
		desc:   desc,
	}

	// cube maps are allocated as six 2d layers
	gl.TextureStorage2D(id, int32(desc.Levels), format.internal, int32(desc.Width), int32(desc.Height))
	if code := gl.GetError(); code != gl.NO_ERROR {
		tex.Release()
		return nil, fmt.Errorf("could not allocate texture %q: gl error 0x%04x", desc.Label, code)
	}
	gl.TextureParameteri(id, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TextureParameteri(id, gl.TEXTURE_MAX_LEVEL, int32(desc.Levels-1))
	tex.SetDebugLabel(desc.Label)
	return tex, nil
}

func (tex *texture) Desc() gfx.TextureDesc {
	return tex.desc
}

func (tex *texture) Id() uint32 {
	return tex.glId
}

func (tex *texture) Type() uint32 {
	return tex.target
}

func (tex *texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

func (tex *texture) Bind(unit int) BoundTexture {
	State.BindTextureUnit(unit, tex.glId)
	return BoundTexture(tex)
}

func (tex *texture) levelSize(level int) (w, h int) {
	return gfx.LevelSize(tex.desc.Width, level), gfx.LevelSize(tex.desc.Height, level)
}

// Load uploads one layer and level, data is []uint8 or []float32 with the
// channel count of the texture format.
func (tex *texture) Load(layer, level int, data any) error {
	desc := tex.desc
	if layer < 0 || layer >= desc.Layers || level < 0 || level >= desc.Levels {
		return fmt.Errorf("%w: texture %q has no layer %d level %d", gfx.ErrInvalidDescriptor, desc.Label, layer, level)
	}
	w, h := tex.levelSize(level)
	count := w * h * desc.Format.Channels()
	var n int
	switch pix := data.(type) {
	case []uint8:
		n = len(pix)
	case []float32:
		n = len(pix)
	default:
		return fmt.Errorf("%w: pixel type %T", gfx.ErrUnsupported, data)
	}
	if n != count {
		return fmt.Errorf("%w: texture %q expects %d values but got %d", gfx.ErrInvalidDescriptor, desc.Label, count, n)
	}

	dataType, _ := getGlType(data)
	format := glFormats[desc.Format].format
	if tex.target == gl.TEXTURE_CUBE_MAP {
		gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, int32(layer), int32(w), int32(h), 1, format, dataType, Pointer(data))
	} else {
		gl.TextureSubImage2D(tex.glId, int32(level), 0, 0, int32(w), int32(h), format, dataType, Pointer(data))
	}
	return nil
}

func (tex *texture) GenerateMipmap() {
	gl.GenerateTextureMipmap(tex.glId)
}

func (tex *texture) Release() {
	if tex.glId == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.glId)
	State.forgetTexture(tex.glId)
	if GlEnv.UseIntelTextureBindingFix {
		delete(GlEnv.IntelTextureBindingTargets, tex.glId)
	}
	tex.glId = 0
}

func getGlType(data any) (glType uint32, float bool) {
	switch data.(type) {
	case byte, []byte, *byte:
		return gl.UNSIGNED_BYTE, false
	case uint16, []uint16, *uint16:
		return gl.UNSIGNED_SHORT, false
	case float32, []float32, *float32:
		return gl.FLOAT, true
	}
	log.Panicf("invalid type: %T", data)
	return 0, false
}
