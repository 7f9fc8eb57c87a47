package gfxtest

import (
	"fmt"

	"skyibl/gfx"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Texture stores every subresource as tightly packed RGBA float32 rows,
// row 0 is t = 0.
type Texture struct {
	dev  *Device
	id   int
	desc gfx.TextureDesc
	data [][]float32
}

func (tex *Texture) Desc() gfx.TextureDesc {
	return tex.desc
}

func (tex *Texture) Release() {
	tex.dev.release(tex)
}

func (tex *Texture) Released() bool {
	return !tex.dev.owns(tex)
}

func (tex *Texture) LevelSize(level int) (w, h int) {
	return gfx.LevelSize(tex.desc.Width, level), gfx.LevelSize(tex.desc.Height, level)
}

func (tex *Texture) sub(layer, level int) int {
	return layer*tex.desc.Levels + level
}

// Data returns the backing RGBA storage of one subresource.
func (tex *Texture) Data(layer, level int) []float32 {
	return tex.data[tex.sub(layer, level)]
}

func (tex *Texture) Pixel(layer, level, x, y int) [4]float32 {
	w, _ := tex.LevelSize(level)
	d := tex.Data(layer, level)
	i := (x + y*w) * 4
	return [4]float32{d[i], d[i+1], d[i+2], d[i+3]}
}

func (tex *Texture) SetPixel(layer, level, x, y int, c [4]float32) {
	w, _ := tex.LevelSize(level)
	d := tex.Data(layer, level)
	i := (x + y*w) * 4
	c = quantize(tex.desc.Format, c)
	copy(d[i:i+4], c[:])
}

func (tex *Texture) Fill(layer, level int, c [4]float32) {
	c = quantize(tex.desc.Format, c)
	d := tex.Data(layer, level)
	for i := 0; i < len(d); i += 4 {
		copy(d[i:i+4], c[:])
	}
}

// Sample filters one subresource bilinearly with clamped edges.
func (tex *Texture) Sample(layer, level int, s, t float32) [4]float32 {
	w, h := tex.LevelSize(level)
	return sampleBilinear(w, h, tex.Data(layer, level), s, t)
}

// SampleCube looks up a direction in a cube texture at a fractional lod.
// Filtering does not cross face edges.
func (tex *Texture) SampleCube(dir mgl32.Vec3, lod float32) [4]float32 {
	if tex.desc.Kind != gfx.TextureCube {
		panic(fmt.Errorf("texture %q is not a cube", tex.desc.Label))
	}
	face, s, t := gfx.CubeFaceAt(dir)

	max := float32(tex.desc.Levels - 1)
	lod = math32.Min(math32.Max(lod, 0), max)
	base, frac := math32.Modf(lod)
	lo := tex.Sample(int(face), int(base), s, t)
	if frac == 0 {
		return lo
	}
	hi := tex.Sample(int(face), int(base)+1, s, t)
	var c [4]float32
	for i := range c {
		c[i] = lo[i]*(1-frac) + hi[i]*frac
	}
	return c
}

func sampleBilinear(w, h int, pix []float32, u, v float32) [4]float32 {
	// -0.5 to adjust for the pixel center offset
	u = u*float32(w) - 0.5
	v = v*float32(h) - 0.5
	ufloor, ufrac := math32.Modf(u)
	vfloor, vfrac := math32.Modf(v)
	if u < 0 {
		ufloor, ufrac = -1, u+1
	}
	if v < 0 {
		vfloor, vfrac = -1, v+1
	}
	x0, y0 := clampI(int(ufloor), w), clampI(int(vfloor), h)
	x1, y1 := clampI(int(ufloor)+1, w), clampI(int(vfloor)+1, h)

	var c [4]float32
	for ch := 0; ch < 4; ch++ {
		c00 := pix[(x0+y0*w)*4+ch]
		c10 := pix[(x1+y0*w)*4+ch]
		c01 := pix[(x0+y1*w)*4+ch]
		c11 := pix[(x1+y1*w)*4+ch]
		top := c00*(1-ufrac) + c10*ufrac
		bottom := c01*(1-ufrac) + c11*ufrac
		c[ch] = top*(1-vfrac) + bottom*vfrac
	}
	return c
}

func clampI(v, size int) int {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}

func quantize(format gfx.Format, c [4]float32) [4]float32 {
	switch format {
	case gfx.FormatRGBA8:
		for i := range c {
			c[i] = unorm(c[i], 0xff)
		}
	case gfx.FormatRG16:
		c = [4]float32{unorm(c[0], 0xffff), unorm(c[1], 0xffff), 0, 1}
	case gfx.FormatRG16F:
		c = [4]float32{c[0], c[1], 0, 1}
	}
	return c
}

func unorm(v, max float32) float32 {
	v = math32.Min(math32.Max(v, 0), 1)
	return math32.Round(v*max) / max
}
