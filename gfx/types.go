package gfx

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	ErrUnsupported       = errors.New("unsupported")
)

type TextureKind int

const (
	Texture2D = TextureKind(iota)
	TextureCube
)

func (k TextureKind) String() string {
	switch k {
	case Texture2D:
		return "2d"
	case TextureCube:
		return "cube"
	}
	return fmt.Sprintf("TextureKind(%d)", int(k))
}

type Format int

const (
	FormatUnknown = Format(iota)
	FormatRGBA8
	FormatRGBA16F
	FormatRGBA32F
	FormatRG16
	FormatRG16F
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatRGBA8:   "rgba8",
	FormatRGBA16F: "rgba16f",
	FormatRGBA32F: "rgba32f",
	FormatRG16:    "rg16",
	FormatRG16F:   "rg16f",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) Channels() int {
	switch f {
	case FormatRG16, FormatRG16F:
		return 2
	case FormatRGBA8, FormatRGBA16F, FormatRGBA32F:
		return 4
	}
	return 0
}

func (f Format) MarshalText() ([]byte, error) {
	if f == FormatUnknown {
		return nil, fmt.Errorf("cannot marshal format %v", f)
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	for k, v := range formatNames {
		if k != FormatUnknown && v == string(text) {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("%q is not a valid format", string(text))
}

type Usage uint32

const (
	UsageShaderResource Usage = 1 << iota
	UsageRenderTarget
)

type TextureDesc struct {
	Label  string
	Kind   TextureKind
	Width  int
	Height int
	// Layers is 6 for cube textures and 1 otherwise
	Layers int
	Levels int
	Format Format
	Usage  Usage
}

// MaxLevels is the length of the full mip chain of a w×h image.
func MaxLevels(w, h int) int {
	if h > w {
		w = h
	}
	if w < 1 {
		return 0
	}
	return bits.Len(uint(w))
}

// LevelSize halves size level times, never going below one.
func LevelSize(size, level int) int {
	size >>= level
	if size < 1 {
		return 1
	}
	return size
}

func (desc TextureDesc) Validate() error {
	if desc.Width < 1 || desc.Height < 1 {
		return fmt.Errorf("%w: texture %q has size %dx%d", ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height)
	}
	if desc.Format.Channels() == 0 {
		return fmt.Errorf("%w: texture %q has format %v", ErrInvalidDescriptor, desc.Label, desc.Format)
	}
	if desc.Levels < 1 || desc.Levels > MaxLevels(desc.Width, desc.Height) {
		return fmt.Errorf("%w: texture %q has %d levels, allowed are 1 to %d", ErrInvalidDescriptor, desc.Label, desc.Levels, MaxLevels(desc.Width, desc.Height))
	}
	switch desc.Kind {
	case TextureCube:
		if desc.Layers != 6 {
			return fmt.Errorf("%w: cube texture %q has %d layers", ErrInvalidDescriptor, desc.Label, desc.Layers)
		}
		if desc.Width != desc.Height {
			return fmt.Errorf("%w: cube texture %q faces are not square (%dx%d)", ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height)
		}
	case Texture2D:
		if desc.Layers != 1 {
			return fmt.Errorf("%w: 2d texture %q has %d layers", ErrInvalidDescriptor, desc.Label, desc.Layers)
		}
	default:
		return fmt.Errorf("%w: texture %q has kind %v", ErrInvalidDescriptor, desc.Label, desc.Kind)
	}
	if desc.Usage == 0 {
		return fmt.Errorf("%w: texture %q has no usage", ErrInvalidDescriptor, desc.Label)
	}
	return nil
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

func SquareViewport(size int) Viewport {
	return Viewport{
		Width:    float32(size),
		Height:   float32(size),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

type Filter int

const (
	FilterLinear = Filter(iota)
	FilterNearest
)

type WrapMode int

const (
	WrapClamp = WrapMode(iota)
	WrapRepeat
	WrapMirror
)

type SamplerDesc struct {
	MinFilter Filter
	MagFilter Filter
	// MipFilter only applies when Mipmaps is set
	MipFilter     Filter
	Mipmaps       bool
	Wrap          WrapMode
	MaxAnisotropy float32
}

type CullMode int

const (
	CullBack = CullMode(iota)
	CullFront
	CullNone
)

type FillMode int

const (
	FillSolid = FillMode(iota)
	FillWireframe
)

// RasterDesc zero value is NOT the default state, use DefaultRasterDesc.
type RasterDesc struct {
	Cull      CullMode
	Fill      FillMode
	DepthClip bool
}

func DefaultRasterDesc() RasterDesc {
	return RasterDesc{Cull: CullBack, Fill: FillSolid, DepthClip: true}
}

type CompareFunc int

const (
	CompareLess = CompareFunc(iota)
	CompareLessEqual
	CompareEqual
	CompareGreater
	CompareGreaterEqual
	CompareNotEqual
	CompareAlways
	CompareNever
)

type DepthDesc struct {
	DepthTest  bool
	DepthWrite bool
	Func       CompareFunc
}

func DefaultDepthDesc() DepthDesc {
	return DepthDesc{DepthTest: true, DepthWrite: true, Func: CompareLess}
}

type Stage int

const (
	StageVertex = Stage(iota)
	StagePixel
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

type ShaderDesc struct {
	// Name identifies the program, backends without a compiler resolve programs by it
	Name   string
	Stage  Stage
	Source string
}
