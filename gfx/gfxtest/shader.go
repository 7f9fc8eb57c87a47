package gfxtest

import (
	"skyibl/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

type values struct {
	ints     map[string]int
	floats   map[string]float32
	matrices map[string]mgl32.Mat4
	textures map[string]gfx.Texture
	samplers map[string]gfx.Sampler
}

func newValues() values {
	return values{
		ints:     map[string]int{},
		floats:   map[string]float32{},
		matrices: map[string]mgl32.Mat4{},
		textures: map[string]gfx.Texture{},
		samplers: map[string]gfx.Sampler{},
	}
}

func (v values) copyTo(dst values) {
	for k, x := range v.ints {
		dst.ints[k] = x
	}
	for k, x := range v.floats {
		dst.floats[k] = x
	}
	for k, x := range v.matrices {
		dst.matrices[k] = x
	}
	for k, x := range v.textures {
		dst.textures[k] = x
	}
	for k, x := range v.samplers {
		dst.samplers[k] = x
	}
}

// Shader records staged values and exposes the uploaded ones to fragment functions.
type Shader struct {
	dev      *Device
	name     string
	stage    gfx.Stage
	Source   string
	Uploads  int
	staged   values
	uploaded values
}

func (sh *Shader) Name() string {
	return sh.name
}

func (sh *Shader) Stage() gfx.Stage {
	return sh.stage
}

func (sh *Shader) Activate() {
	if sh.stage == gfx.StageVertex {
		sh.dev.ctx.vs = sh
	} else {
		sh.dev.ctx.ps = sh
	}
}

func (sh *Shader) SetMatrix(name string, m mgl32.Mat4) {
	sh.staged.matrices[name] = m
}

func (sh *Shader) SetInt(name string, v int) {
	sh.staged.ints[name] = v
}

func (sh *Shader) SetFloat(name string, v float32) {
	sh.staged.floats[name] = v
}

func (sh *Shader) SetTexture(name string, tex gfx.Texture) {
	sh.staged.textures[name] = tex
}

func (sh *Shader) SetSampler(name string, s gfx.Sampler) {
	sh.staged.samplers[name] = s
}

func (sh *Shader) Upload() {
	sh.staged.copyTo(sh.uploaded)
	sh.Uploads++
}

func (sh *Shader) Release() {
	sh.dev.release(sh)
	if sh.dev.ctx.vs == sh {
		sh.dev.ctx.vs = nil
	}
	if sh.dev.ctx.ps == sh {
		sh.dev.ctx.ps = nil
	}
}

func (sh *Shader) Int(name string) int {
	return sh.uploaded.ints[name]
}

func (sh *Shader) Float(name string) float32 {
	return sh.uploaded.floats[name]
}

func (sh *Shader) Matrix(name string) (mgl32.Mat4, bool) {
	m, ok := sh.uploaded.matrices[name]
	return m, ok
}

// Texture returns the uploaded texture, nil when none is set or it was released.
func (sh *Shader) Texture(name string) *Texture {
	tex, ok := sh.uploaded.textures[name].(*Texture)
	if !ok || tex.Released() {
		return nil
	}
	return tex
}

func (sh *Shader) Sampler(name string) *Sampler {
	s, _ := sh.uploaded.samplers[name].(*Sampler)
	return s
}

func (sh *Shader) snapshot() (ints map[string]int, floats map[string]float32) {
	ints = make(map[string]int, len(sh.uploaded.ints))
	for k, v := range sh.uploaded.ints {
		ints[k] = v
	}
	floats = make(map[string]float32, len(sh.uploaded.floats))
	for k, v := range sh.uploaded.floats {
		floats[k] = v
	}
	return
}
