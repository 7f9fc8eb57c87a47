package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

func EncodeFloatImage(w io.Writer, img *FloatImage, compression FloatImageCompression) (err error) {
	bw := NewBinaryWriter(w)
	defer bw.Finish(&err)

	if len(img.Pix) != img.Count()*img.Channels {
		return fmt.Errorf("f32 image has %d values, expected %d", len(img.Pix), img.Count()*img.Channels)
	}

	var payload []byte
	switch compression {
	case FloatImageCompressionNone:
		buf := bytes.NewBuffer(make([]byte, 0, img.Bytes()))
		err = binary.Write(buf, bw.Order, img.Pix)
		payload = buf.Bytes()
	case FloatImageCompressionFixedPoint16Lz4:
		payload, err = lz4Fast(packFixedPoint16(img))
	default:
		err = fmt.Errorf("compression id %d unsupported", compression)
	}
	if err != nil {
		return fmt.Errorf("could not compress f32 pixels: %w", err)
	}

	header := FloatImageHeader{
		Check:       MagicNumberF32,
		Version:     F32Version1_001_000,
		Width:       uint32(img.Width),
		Height:      uint32(img.Height),
		Channels:    uint8(img.Channels),
		Compression: compression,
	}
	if !bw.WriteRef(header) || !bw.WriteBytes(payload) {
		return fmt.Errorf("could not write f32 image: %w", bw.Err)
	}
	return nil
}

func lz4Fast(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	lzw := lz4.NewWriter(&buf)
	if err := lzw.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
		return nil, err
	}
	if _, err := lzw.Write(data); err != nil {
		return nil, err
	}
	if err := lzw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// packFixedPoint16 stores every channel as its float32 min and max followed
// by all values of the channel mapped to [0, 0xffff].
func packFixedPoint16(img *FloatImage) []byte {
	channels, count := img.Channels, img.Count()
	out := make([]byte, 0, channels*(8+2*count))
	le := binary.LittleEndian

	for ch := 0; ch < channels; ch++ {
		lo, hi := math32.Inf(1), math32.Inf(-1)
		for i := ch; i < len(img.Pix); i += channels {
			lo = math32.Min(lo, img.Pix[i])
			hi = math32.Max(hi, img.Pix[i])
		}
		out = le.AppendUint32(out, math32.Float32bits(lo))
		out = le.AppendUint32(out, math32.Float32bits(hi))

		span := hi - lo
		if span == 0 {
			span = 1
		}
		for i := ch; i < len(img.Pix); i += channels {
			out = le.AppendUint16(out, uint16(math32.Round((img.Pix[i]-lo)/span*0xffff)))
		}
	}
	return out
}
