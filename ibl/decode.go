package ibl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"skyibl/libio"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/exp/slices"
)

func DecodeIblEnv(r io.Reader) (env *IblEnv, err error) {
	br := libio.NewBinaryReader(r)
	defer br.Finish(&err)

	header := IblEnvHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected environment header; byte 0x%08x", br.LastIndex)
	}

	if header.Check != MagicNumberIBLENV {
		return nil, fmt.Errorf("environment header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Version != IblEnvVersion1_001_000 {
		return nil, fmt.Errorf("environment version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}

	if header.Size == 0 || header.Size > MaxFaceSize {
		return nil, fmt.Errorf("%w: environment has size %d; byte 0x%08x", ErrInvalidSize, header.Size, br.LastIndex)
	}

	var pixr io.Reader = br.Src
	switch header.Compression {
	case IblEnvCompressionLZ4, IblEnvCompressionLZ4Fast:
		pixr = lz4.NewReader(br.Src)
	case IblEnvCompressionNone:
	default:
		return nil, fmt.Errorf("environment compression id %d unsupported; byte 0x%08x", header.Compression, br.LastIndex)
	}

	pixels := 6 * int(header.Size) * int(header.Size)
	data := make([]byte, pixels*4)
	_, err = io.ReadFull(pixr, data)
	if err != nil {
		return nil, fmt.Errorf("expected %d encoded pixels; %w", pixels, err)
	}

	colors, err := DecodeRgbeBytes(data, false)
	if err != nil {
		return nil, fmt.Errorf("decoding error: %w", err)
	}

	return NewIblEnv(colors, int(header.Size)), nil
}

func DecodeIblEnvFile(path string) (*IblEnv, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env, err := DecodeIblEnv(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return env, nil
}

// DecodeRgbe reads until EOF.
func DecodeRgbe(r io.Reader, hasAlpha bool) ([]float32, error) {
	rbuf := make([]byte, 16384)

	components := 4
	if !hasAlpha {
		components = 3
	}
	var result []float32

	for {
		rn, err := io.ReadFull(r, rbuf)

		if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)) {
			return nil, err
		}

		if rn == 0 {
			break
		}

		if rn%4 != 0 {
			return nil, fmt.Errorf("source not a multiple of 4 bytes")
		}

		start := len(result)
		wn := rn / 4 * components
		result = slices.Grow(result, wn)[:start+wn]
		decodeRgbeChunk(components, rbuf[:rn], result[start:])

		if err != nil {
			break
		}
	}

	return result, nil
}

func DecodeRgbeBytes(data []byte, hasAlpha bool) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("source not a multiple of 4 bytes")
	}

	components := 4
	if !hasAlpha {
		components = 3
	}
	result := make([]float32, components*len(data)/4)

	n := decodeRgbeChunk(components, data, result)

	return result[:n], nil
}
