// Package gfxtest implements the gfx device contract on the CPU.
//
// Textures live in host memory and full-screen draws are rasterised by
// calling the FragmentFunc registered under the active pixel shader name.
// Every context call is recorded so tests can assert on the submitted work.
package gfxtest

import (
	"errors"
	"fmt"
	"sort"

	"skyibl/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInjected is returned by operations failed through FailAfter
var ErrInjected = errors.New("injected fault")

// FragmentFunc computes the color of one pixel. uv is the pixel center in [0,1]².
type FragmentFunc func(ps *Shader, uv mgl32.Vec2) [4]float32

const (
	OpCreateTexture      = "CreateTexture"
	OpCreateRenderTarget = "CreateRenderTarget"
	OpCreateSampler      = "CreateSampler"
	OpCreateRasterState  = "CreateRasterState"
	OpCreateDepthState   = "CreateDepthState"
	OpCreateShader       = "CreateShader"
	OpUpdateTexture      = "UpdateTexture"
)

var (
	_ gfx.Device  = (*Device)(nil)
	_ gfx.Context = (*Context)(nil)
)

type Device struct {
	Programs map[string]FragmentFunc
	ctx      *Context
	faults   map[string]int
	calls    map[string]int
	live     map[any]string
	nextId   int
}

func NewDevice() *Device {
	dev := &Device{
		Programs: map[string]FragmentFunc{},
		faults:   map[string]int{},
		calls:    map[string]int{},
		live:     map[any]string{},
	}
	dev.ctx = newContext(dev)
	return dev
}

func (dev *Device) Context() *Context {
	return dev.ctx
}

// FailAfter makes op fail with ErrInjected once it succeeded n times.
func (dev *Device) FailAfter(op string, n int) {
	dev.faults[op] = n
	dev.calls[op] = 0
}

// Calls counts all invocations of op, including failed ones.
func (dev *Device) Calls(op string) int {
	return dev.calls[op]
}

// Live lists the labels of all resources that were created and not released yet.
func (dev *Device) Live() []string {
	labels := make([]string, 0, len(dev.live))
	for _, l := range dev.live {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// LiveTextures lists the unreleased textures.
func (dev *Device) LiveTextures() []*Texture {
	var textures []*Texture
	for r := range dev.live {
		if tex, ok := r.(*Texture); ok {
			textures = append(textures, tex)
		}
	}
	sort.Slice(textures, func(i, j int) bool {
		return textures[i].id < textures[j].id
	})
	return textures
}

func (dev *Device) check(op string) error {
	dev.calls[op]++
	if n, ok := dev.faults[op]; ok && dev.calls[op] > n {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

func (dev *Device) track(r any, label string) {
	dev.live[r] = label
}

func (dev *Device) release(r any) {
	if _, ok := dev.live[r]; !ok {
		panic(fmt.Errorf("release of a dead or foreign resource %T", r))
	}
	delete(dev.live, r)
}

func (dev *Device) owns(r any) bool {
	_, ok := dev.live[r]
	return ok
}

func (dev *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	if err := dev.check(OpCreateTexture); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	dev.nextId++
	tex := &Texture{
		dev:  dev,
		id:   dev.nextId,
		desc: desc,
		data: make([][]float32, desc.Layers*desc.Levels),
	}
	for layer := 0; layer < desc.Layers; layer++ {
		for level := 0; level < desc.Levels; level++ {
			w, h := tex.LevelSize(level)
			tex.data[tex.sub(layer, level)] = make([]float32, w*h*4)
		}
	}
	dev.track(tex, "texture:"+desc.Label)
	return tex, nil
}

func (dev *Device) CreateRenderTarget(t gfx.Texture, layer, level int) (gfx.RenderTarget, error) {
	if err := dev.check(OpCreateRenderTarget); err != nil {
		return nil, err
	}
	tex, ok := t.(*Texture)
	if !ok || !dev.owns(tex) {
		return nil, fmt.Errorf("%w: render target texture %T is not a live texture of this device", gfx.ErrInvalidDescriptor, t)
	}
	desc := tex.desc
	if desc.Usage&gfx.UsageRenderTarget == 0 {
		return nil, fmt.Errorf("%w: texture %q has no render target usage", gfx.ErrInvalidDescriptor, desc.Label)
	}
	if layer < 0 || layer >= desc.Layers || level < 0 || level >= desc.Levels {
		return nil, fmt.Errorf("%w: texture %q has no layer %d level %d", gfx.ErrInvalidDescriptor, desc.Label, layer, level)
	}
	w, h := tex.LevelSize(level)
	rt := &RenderTarget{
		dev:     dev,
		Label:   desc.Label,
		Texture: tex,
		Layer:   layer,
		Level:   level,
		Width:   w,
		Height:  h,
	}
	dev.track(rt, fmt.Sprintf("target:%s:%d:%d", desc.Label, layer, level))
	return rt, nil
}

func (dev *Device) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	if err := dev.check(OpCreateSampler); err != nil {
		return nil, err
	}
	s := &Sampler{dev: dev, Desc: desc}
	dev.track(s, "sampler")
	return s, nil
}

func (dev *Device) CreateRasterState(desc gfx.RasterDesc) (gfx.RasterState, error) {
	if err := dev.check(OpCreateRasterState); err != nil {
		return nil, err
	}
	s := &RasterState{dev: dev, Desc: desc}
	dev.track(s, "raster-state")
	return s, nil
}

func (dev *Device) CreateDepthState(desc gfx.DepthDesc) (gfx.DepthState, error) {
	if err := dev.check(OpCreateDepthState); err != nil {
		return nil, err
	}
	s := &DepthState{dev: dev, Desc: desc}
	dev.track(s, "depth-state")
	return s, nil
}

func (dev *Device) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	if err := dev.check(OpCreateShader); err != nil {
		return nil, err
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: shader has no name", gfx.ErrInvalidDescriptor)
	}
	if desc.Stage != gfx.StageVertex && desc.Stage != gfx.StagePixel {
		return nil, fmt.Errorf("%w: shader %q has stage %v", gfx.ErrInvalidDescriptor, desc.Name, desc.Stage)
	}
	sh := &Shader{
		dev:      dev,
		name:     desc.Name,
		stage:    desc.Stage,
		Source:   desc.Source,
		staged:   newValues(),
		uploaded: newValues(),
	}
	dev.track(sh, "shader:"+desc.Name)
	return sh, nil
}

type Sampler struct {
	dev  *Device
	Desc gfx.SamplerDesc
}

func (s *Sampler) Release() {
	s.dev.release(s)
}

type RasterState struct {
	dev  *Device
	Desc gfx.RasterDesc
}

func (s *RasterState) Release() {
	s.dev.release(s)
}

type DepthState struct {
	dev  *Device
	Desc gfx.DepthDesc
}

func (s *DepthState) Release() {
	s.dev.release(s)
}

// RenderTarget is a view of one texture subresource, or the backbuffer when Texture is nil.
type RenderTarget struct {
	dev           *Device
	Label         string
	Texture       *Texture
	Layer, Level  int
	Width, Height int
}

func (rt *RenderTarget) Release() {
	if rt.Texture == nil {
		panic("the backbuffer cannot be released")
	}
	rt.dev.release(rt)
}

type DepthTarget struct {
	Label string
}

func (dt *DepthTarget) Release() {
	panic("the default depth buffer cannot be released")
}
