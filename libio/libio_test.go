package libio_test

import (
	"bytes"
	"encoding/binary"
	goimg "image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"skyibl/libio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func randomFloats(count int, min, max float32) []float32 {
	rng := rand.New(rand.NewSource(0))
	ret := make([]float32, count)
	for i := range ret {
		ret[i] = rng.Float32()*(max-min) + min
	}
	return ret
}

func TestFloatImageUncompressed(t *testing.T) {
	img := libio.NewFloatImage(randomFloats(2*8*4, -3, 5), 2, 8, 4)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, libio.EncodeFloatImage(buf, img, libio.FloatImageCompressionNone))
	// header + payload
	assert.Equal(t, 35+img.Bytes(), buf.Len())

	decoded, err := libio.DecodeFloatImage(buf)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, decoded.Pix)
	assert.Equal(t, 2, decoded.Channels)
	assert.Equal(t, 8, decoded.Width)
	assert.Equal(t, 4, decoded.Height)
}

func TestFloatImageFixedPoint16(t *testing.T) {
	img := libio.NewFloatImage(randomFloats(3*16*16, 0, 10), 3, 16, 16)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, libio.EncodeFloatImage(buf, img, libio.FloatImageCompressionFixedPoint16Lz4))

	decoded, err := libio.DecodeFloatImage(buf)
	require.NoError(t, err)
	require.Len(t, decoded.Pix, len(img.Pix))
	for i := range img.Pix {
		assert.InDelta(t, img.Pix[i], decoded.Pix[i], 10.0/0xffff)
	}
}

func TestFloatImageConstantChannel(t *testing.T) {
	pix := make([]float32, 2*4*4)
	for i := range pix {
		pix[i] = 0.75
	}
	img := libio.NewFloatImage(pix, 2, 4, 4)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, libio.EncodeFloatImage(buf, img, libio.FloatImageCompressionFixedPoint16Lz4))
	decoded, err := libio.DecodeFloatImage(buf)
	require.NoError(t, err)
	assert.Equal(t, pix, decoded.Pix)
}

func TestDecodeFloatImageRejectsCorruptHeader(t *testing.T) {
	_, err := libio.DecodeFloatImage(bytes.NewReader(make([]byte, 35)))
	assert.ErrorContains(t, err, "corrupt")

	_, err = libio.DecodeFloatImage(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestDecodeFloatImageRejectsHugeHeader(t *testing.T) {
	header := libio.FloatImageHeader{
		Check:       libio.MagicNumberF32,
		Version:     libio.F32Version1_001_000,
		Width:       0xffffffff,
		Height:      0xffffffff,
		Channels:    4,
		Compression: libio.FloatImageCompressionNone,
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, header))

	_, err := libio.DecodeFloatImage(buf)
	assert.ErrorIs(t, err, libio.ErrImageTooLarge)
}

func TestEncodeFloatImageRejectsShortPixels(t *testing.T) {
	img := libio.NewFloatImage(make([]float32, 3), 2, 2, 2)
	assert.Error(t, libio.EncodeFloatImage(bytes.NewBuffer(nil), img, libio.FloatImageCompressionNone))
}

func TestShuffleNormalize(t *testing.T) {
	img := libio.NewFloatImage([]float32{1, 10, 3, 20}, 2, 2, 1)
	shuffled := img.Shuffle([]int{1, 0, 0})
	assert.Equal(t, 3, shuffled.Channels)
	assert.Equal(t, []float32{10, 1, 1, 20, 3, 3}, shuffled.Pix)

	shuffled.Normalize()
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1}, shuffled.Pix)

	ints := shuffled.ToIntImage()
	assert.Equal(t, []uint8{0, 0, 0, 255, 255, 255}, ints.Pix)
}

func TestToRGBAFlip(t *testing.T) {
	img := libio.NewIntImage([]uint8{10, 20}, 1, 1, 2)
	rgba := img.ToRGBA(false)
	assert.Equal(t, []uint8{10, 10, 10, 255, 20, 20, 20, 255}, rgba.Pix)

	rgba = img.ToRGBA(true)
	assert.Equal(t, []uint8{20, 20, 20, 255, 10, 10, 10, 255}, rgba.Pix)
}

func testPattern() *goimg.NRGBA {
	img := goimg.NewNRGBA(goimg.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(2, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	return img
}

func TestDecodeImagePng(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, testPattern()))

	img, format, err := libio.DecodeImage(buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, 4, img.Channels)

	i := img.Index(0, 0)
	assert.Equal(t, []uint8{255, 0, 0, 255}, img.Pix[i:i+4])
	i = img.Index(2, 1)
	assert.Equal(t, []uint8{0, 0, 255, 255}, img.Pix[i:i+4])
}

func TestDecodeImageBmp(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	require.NoError(t, bmp.Encode(buf, testPattern()))

	img, format, err := libio.DecodeImage(buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	i := img.Index(1, 0)
	assert.Equal(t, []uint8{0, 255, 0, 255}, img.Pix[i:i+4])
	assert.Len(t, img.Pix, img.Bytes())
}

func TestDecodeImageUnknown(t *testing.T) {
	_, _, err := libio.DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.ErrorIs(t, err, goimg.ErrFormat)
}
