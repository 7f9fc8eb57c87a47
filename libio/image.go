package libio

import (
	goimg "image"

	"github.com/chewxy/math32"
)

const MagicNumberF32 = 0x6d16837d

type FloatImageVersion uint32

const (
	F32Version1_001_000 = FloatImageVersion(1_001_000)
)

type FloatImageCompression uint32

const (
	FloatImageCompressionNone = FloatImageCompression(iota)
	FloatImageCompressionFixedPoint16Lz4
)

type image struct {
	Channels      int
	Width, Height int
}

// Index is the tuple index of pixel x, y. Row 0 is the first row in memory.
func (img *image) Index(x, y int) int {
	return x*img.Channels + y*img.Channels*img.Width
}

func (img *image) Count() int {
	return img.Width * img.Height
}

type IntImage struct {
	image
	Pix []uint8
}

func NewIntImage(pix []uint8, channels int, width, height int) *IntImage {
	return &IntImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *IntImage) Bytes() int {
	return img.Width * img.Height * img.Channels
}

func (img *IntImage) ToChannels(nr int, defaults ...uint8) *IntImage {
	dst := toChannels(img.Channels, nr, img.Count(), img.Pix, defaults...)

	return NewIntImage(dst, nr, img.Width, img.Height)
}

func toChannels[P ~[]E, E any](srcCh, dstCh int, count int, pix P, defaults ...E) P {
	if srcCh == dstCh {
		return pix
	}

	if len(defaults) < dstCh {
		defaults = append(defaults, make([]E, dstCh-len(defaults))...)
	}

	dst := make([]E, count*dstCh)
	for i := 0; i < count; i++ {
		for c := 0; c < dstCh; c++ {
			if c < srcCh {
				dst[i*dstCh+c] = pix[i*srcCh+c]
			} else {
				dst[i*dstCh+c] = defaults[c]
			}
		}
	}

	return dst
}

// ToRGBA converts to a go image, flipY reverses the row order.
func (img *IntImage) ToRGBA(flipY bool) *goimg.RGBA {
	rgba := goimg.NewRGBA(goimg.Rect(0, 0, img.Width, img.Height))

	for y := 0; y < img.Height; y++ {
		dy := y
		if flipY {
			dy = img.Height - y - 1
		}
		for x := 0; x < img.Width; x++ {
			i := img.Index(x, y)
			j := (x + dy*img.Width) * 4
			for c := 0; c < img.Channels && c < 4; c++ {
				rgba.Pix[j+c] = img.Pix[i+c]
			}
			if img.Channels == 1 {
				rgba.Pix[j+1] = img.Pix[i]
				rgba.Pix[j+2] = img.Pix[i]
			}
			if img.Channels < 4 {
				rgba.Pix[j+3] = 0xff
			}
		}
	}

	return rgba
}

type FloatImageHeader struct {
	Check         uint32
	Version       FloatImageVersion
	Width, Height uint32
	Channels      uint8
	Compression   FloatImageCompression
	Unused        [14]uint8
}

type FloatImage struct {
	image
	Pix []float32
}

func NewFloatImage(pix []float32, channels int, width, height int) *FloatImage {
	return &FloatImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *FloatImage) Bytes() int {
	return img.Width * img.Height * img.Channels * 4
}

func (img *FloatImage) ToChannels(nr int, defaults ...float32) *FloatImage {
	dst := toChannels(img.Channels, nr, img.Count(), img.Pix, defaults...)

	return NewFloatImage(dst, nr, img.Width, img.Height)
}

// Shuffle builds a new image whose channel i is the source channel order[i].
func (img *FloatImage) Shuffle(order []int) *FloatImage {
	count := img.Count()
	dst := make([]float32, count*len(order))
	for i := 0; i < count; i++ {
		for c, src := range order {
			dst[i*len(order)+c] = img.Pix[i*img.Channels+src]
		}
	}
	return NewFloatImage(dst, len(order), img.Width, img.Height)
}

// Normalize maps every channel to [0,1] independently, in place.
func (img *FloatImage) Normalize() {
	count := img.Count()
	for c := 0; c < img.Channels; c++ {
		min, max := math32.Inf(1), math32.Inf(-1)
		for i := 0; i < count; i++ {
			v := img.Pix[i*img.Channels+c]
			min = math32.Min(min, v)
			max = math32.Max(max, v)
		}
		r := max - min
		if r == 0 {
			r = 1
		}
		for i := 0; i < count; i++ {
			img.Pix[i*img.Channels+c] = (img.Pix[i*img.Channels+c] - min) / r
		}
	}
}

// Tonemap applies gamma and exposure scale in place and clamps to [0,1].
func (img *FloatImage) Tonemap(gamma, scale float32) {
	for i, v := range img.Pix {
		img.Pix[i] = tonemap(v, 1.0/gamma, scale)
	}
}

// ToIntImage quantizes to 8 bit, values are expected in [0,1].
func (img *FloatImage) ToIntImage() *IntImage {
	pix := make([]uint8, len(img.Pix))

	for i, v := range img.Pix {
		pix[i] = uint8(math32.Round(math32.Min(math32.Max(v, 0.0), 1.0) * 0xff))
	}

	return NewIntImage(pix, img.Channels, img.Width, img.Height)
}

func tonemap(value, gamma, scale float32) float32 {
	value = math32.Pow(math32.Max(value, 0), gamma) * scale
	return math32.Min(math32.Max(0.0, value), 1.0)
}
