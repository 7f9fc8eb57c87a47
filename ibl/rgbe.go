package ibl

import "github.com/chewxy/math32"

// See: https://www.graphics.cornell.edu/~bjw/rgbe/rgbe.c
func encodeRgbeChunk(components int, data []float32, buf []byte) int {
	n := len(data) / components
	if n == 0 {
		return 0
	}
	_ = buf[n*4-1]
	for i := 0; i < n; i++ {
		var (
			r = data[i*components+0]
			g = data[i*components+1]
			b = data[i*components+2]
			j = i * 4
		)

		max := math32.Max(r, math32.Max(g, b))

		if max < 1e-32 {
			buf[j+0] = 0
			buf[j+1] = 0
			buf[j+2] = 0
			buf[j+3] = 0
			continue
		}

		frac, exp := math32.Frexp(max)
		f := frac * 256.0 / max
		buf[j+0] = byte(math32.Max(r, 0) * f)
		buf[j+1] = byte(math32.Max(g, 0) * f)
		buf[j+2] = byte(math32.Max(b, 0) * f)
		buf[j+3] = byte(exp + 128)
	}
	return n * 4
}

func decodeRgbeChunk(components int, data []byte, buf []float32) int {
	n := len(data) / 4
	if n == 0 {
		return 0
	}
	_ = buf[n*components-1]
	for i := 0; i < n; i++ {
		j := i * components
		e := data[i*4+3]
		if e == 0 {
			buf[j+0] = 0
			buf[j+1] = 0
			buf[j+2] = 0
		} else {
			f := math32.Ldexp(1.0, int(e)-(128+8))
			buf[j+0] = float32(data[i*4+0]) * f
			buf[j+1] = float32(data[i*4+1]) * f
			buf[j+2] = float32(data[i*4+2]) * f
		}
		if components == 4 {
			buf[j+3] = 1.0
		}
	}
	return n * components
}
