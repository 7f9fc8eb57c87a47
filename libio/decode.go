package libio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

// MaxFloatImageSize bounds the width and height read from a header.
const MaxFloatImageSize = 1 << 15

var ErrImageTooLarge = errors.New("image too large")

func DecodeFloatImage(r io.Reader) (img *FloatImage, err error) {
	br := NewBinaryReader(r)
	defer br.Finish(&err)

	header := FloatImageHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected f32 header; byte 0x%08x", br.LastIndex)
	}
	if header.Check != MagicNumberF32 {
		return nil, fmt.Errorf("f32 header is corrupt; byte 0x%08x", br.LastIndex)
	}
	if header.Version != F32Version1_001_000 {
		return nil, fmt.Errorf("f32 version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}
	if header.Width > MaxFloatImageSize || header.Height > MaxFloatImageSize {
		return nil, fmt.Errorf("%w: f32 image is %dx%d", ErrImageTooLarge, header.Width, header.Height)
	}

	channels := int(header.Channels)
	count := int(header.Width) * int(header.Height)
	var pix []float32

	switch header.Compression {
	case FloatImageCompressionNone:
		pix = make([]float32, count*channels)
		if !br.ReadRef(pix) {
			err = fmt.Errorf("expected %d values", len(pix))
		}
	case FloatImageCompressionFixedPoint16Lz4:
		packed := make([]byte, channels*(8+2*count))
		if _, err = io.ReadFull(lz4.NewReader(br.Src), packed); err == nil {
			pix = unpackFixedPoint16(channels, count, packed)
		}
	default:
		err = fmt.Errorf("compression id %d unsupported", header.Compression)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decompress f32 pixels: %w", err)
	}

	return NewFloatImage(pix, channels, int(header.Width), int(header.Height)), nil
}

// unpackFixedPoint16 reverses packFixedPoint16, packed must hold every channel.
func unpackFixedPoint16(channels, count int, packed []byte) []float32 {
	pix := make([]float32, count*channels)
	le := binary.LittleEndian

	for ch := 0; ch < channels; ch++ {
		lo := math32.Float32frombits(le.Uint32(packed))
		hi := math32.Float32frombits(le.Uint32(packed[4:]))
		packed = packed[8:]

		span := hi - lo
		for i := 0; i < count; i++ {
			pix[i*channels+ch] = float32(le.Uint16(packed[2*i:]))/0xffff*span + lo
		}
		packed = packed[2*count:]
	}
	return pix
}
