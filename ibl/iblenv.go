package ibl

import (
	"fmt"

	"skyibl/gfx"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const MagicNumberIBLENV = 0x78b85411

type IblEnvVersion uint32

const (
	IblEnvVersion1_001_000 = IblEnvVersion(1_001_000)
)

type IblEnvCompression uint32

const (
	IblEnvCompressionNone = IblEnvCompression(iota)
	IblEnvCompressionLZ4Fast
	IblEnvCompressionLZ4
)

type IblEnvHeader struct {
	Check       uint32
	Version     IblEnvVersion
	Compression IblEnvCompression
	Size        uint32
}

// IblEnv is a cube map in host memory. Faces are RGB float triplets in
// canonical layer order, row 0 of a face is t = 0.
type IblEnv struct {
	Faces [6][]float32
	Size  int
	data  []float32
}

func NewIblEnv(data []float32, size int) *IblEnv {
	o := size * size * 3
	if len(data) < 6*o {
		panic(fmt.Errorf("ibl env of size %d needs %d values, got %d", size, 6*o, len(data)))
	}

	faces := [6][]float32{
		data[0*o : 1*o : 1*o],
		data[1*o : 2*o : 2*o],
		data[2*o : 3*o : 3*o],
		data[3*o : 4*o : 4*o],
		data[4*o : 5*o : 5*o],
		data[5*o : 6*o : 6*o],
	}

	return &IblEnv{
		Size:  size,
		data:  data[: 6*o : 6*o],
		Faces: faces,
	}
}

// GenerateIblEnv fills every texel with the value of env in its direction.
func GenerateIblEnv(size int, env Environment) *IblEnv {
	result := make([]float32, 6*size*size*3)
	forEachCubeMapPixel(size, func(face gfx.CubeFace, x, y int, dir mgl32.Vec3, i int) {
		c := env(dir.Normalize())
		result[i*3+0] = c[0]
		result[i*3+1] = c[1]
		result[i*3+2] = c[2]
	})
	return NewIblEnv(result, size)
}

func (env *IblEnv) Concat() []float32 {
	return env.data
}

func (env *IblEnv) Face(face gfx.CubeFace) []float32 {
	return env.Faces[face]
}

// RGBA expands one face to four channels with an alpha of one.
func (env *IblEnv) RGBA(face gfx.CubeFace) []float32 {
	src := env.Faces[face]
	dst := make([]float32, len(src)/3*4)
	for i := 0; i < len(src)/3; i++ {
		dst[i*4+0] = src[i*3+0]
		dst[i*4+1] = src[i*3+1]
		dst[i*4+2] = src[i*3+2]
		dst[i*4+3] = 1.0
	}
	return dst
}

// Sample looks up a direction with bilinear filtering inside the hit face.
// It satisfies Environment.
func (env *IblEnv) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	face, s, t := gfx.CubeFaceAt(dir)
	r, g, b := sampleBilinear(env.Size, env.Size, 3, env.Faces[face], s, t)
	return mgl32.Vec3{r, g, b}
}

func sampleBilinear(w, h int, channels int, pix []float32, u, v float32) (r, g, b float32) {
	// -0.5 to adjust for the pixel center offset
	u = u*float32(w) - 0.5
	v = v*float32(h) - 0.5
	ufloor, ufrac := math32.Floor(u), u-math32.Floor(u)
	vfloor, vfrac := math32.Floor(v), v-math32.Floor(v)
	ufloori, vfloori := int(ufloor), int(vfloor)
	uceili, vceili := ufloori+1, vfloori+1

	if ufloori < 0 {
		ufloori = 0
	}
	if vfloori < 0 {
		vfloori = 0
	}
	if uceili >= w {
		uceili = w - 1
	}
	if ufloori >= uceili {
		ufloori = uceili
		ufrac = 0.0
	}
	if vceili >= h {
		vceili = h - 1
	}
	if vfloori >= vceili {
		vfloori = vceili
		vfrac = 0.0
	}

	colstride := channels
	rowstride := channels * w

	o00 := vfloori*rowstride + ufloori*colstride
	o10 := vfloori*rowstride + uceili*colstride
	o01 := vceili*rowstride + ufloori*colstride
	o11 := vceili*rowstride + uceili*colstride

	r00, g00, b00 := pix[o00+0], pix[o00+1], pix[o00+2]
	r10, g10, b10 := pix[o10+0], pix[o10+1], pix[o10+2]
	r01, g01, b01 := pix[o01+0], pix[o01+1], pix[o01+2]
	r11, g11, b11 := pix[o11+0], pix[o11+1], pix[o11+2]

	rh0 := r00*(1.0-ufrac) + r10*ufrac
	gh0 := g00*(1.0-ufrac) + g10*ufrac
	bh0 := b00*(1.0-ufrac) + b10*ufrac

	rh1 := r01*(1.0-ufrac) + r11*ufrac
	gh1 := g01*(1.0-ufrac) + g11*ufrac
	bh1 := b01*(1.0-ufrac) + b11*ufrac

	return rh0*(1.0-vfrac) + rh1*vfrac, gh0*(1.0-vfrac) + gh1*vfrac, bh0*(1.0-vfrac) + bh1*vfrac
}

// forEachCubeMapPixel visits the texel centers of all faces in storage order.
func forEachCubeMapPixel(size int, cb func(face gfx.CubeFace, x, y int, dir mgl32.Vec3, i int)) {
	index := 0
	for _, face := range gfx.CubeFaces {
		for y := 0; y < size; y++ {
			t := (float32(y) + 0.5) / float32(size)
			for x := 0; x < size; x++ {
				s := (float32(x) + 0.5) / float32(size)
				cb(face, x, y, gfx.CubeDirection(face, s, t), index)
				index++
			}
		}
	}
}
