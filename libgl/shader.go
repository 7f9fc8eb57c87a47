package libgl

import (
	"fmt"
	"strings"

	"skyibl/gfx"
	"skyibl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// texture units are split between the stages so both can be bound at once
const (
	pixelTextureUnitBase  = 0
	vertexTextureUnitBase = 8
	maxStageTextureUnits  = 8
)

var shaderStages = map[gfx.Stage]struct {
	glType uint32
	bit    uint32
	base   int
}{
	gfx.StageVertex: {gl.VERTEX_SHADER, gl.VERTEX_SHADER_BIT, vertexTextureUnitBase},
	gfx.StagePixel:  {gl.FRAGMENT_SHADER, gl.FRAGMENT_SHADER_BIT, pixelTextureUnitBase},
}

type shaderPipeline struct {
	glId   uint32
	stages map[uint32]uint32
}

func newPipeline() *shaderPipeline {
	var id uint32
	gl.CreateProgramPipelines(1, &id)
	return &shaderPipeline{
		glId:   id,
		stages: map[uint32]uint32{},
	}
}

// attach makes prog the program for stage bit, skipping redundant calls.
func (p *shaderPipeline) attach(bit, prog uint32) {
	if p.stages[bit] == prog {
		return
	}
	gl.UseProgramStages(p.glId, bit, prog)
	p.stages[bit] = prog
}

func (p *shaderPipeline) detach(prog uint32) {
	for bit, id := range p.stages {
		if id == prog {
			gl.UseProgramStages(p.glId, bit, 0)
			delete(p.stages, bit)
		}
	}
}

func (p *shaderPipeline) Bind() {
	State.BindProgramPipeline(p.glId)
}

func (p *shaderPipeline) Delete() {
	gl.DeleteProgramPipelines(1, &p.glId)
	p.glId = 0
}

// program is one separable stage. Uniform values are staged in memory and
// written with glProgramUniform on Upload.
type program struct {
	glId             uint32
	name             string
	stage            gfx.Stage
	pipeline         *shaderPipeline
	uniformLocations map[string]int32
	ints             map[string]int
	floats           map[string]float32
	matrices         map[string]mgl32.Mat4
	// textures are assigned units in the order they are first set
	textureNames []string
	textures     map[string]*texture
	sampler      *sampler
}

func newProgram(pipeline *shaderPipeline, desc gfx.ShaderDesc) (*program, error) {
	stage, ok := shaderStages[desc.Stage]
	if !ok {
		return nil, fmt.Errorf("%w: shader %q has stage %v", gfx.ErrInvalidDescriptor, desc.Name, desc.Stage)
	}
	if desc.Source == "" {
		return nil, fmt.Errorf("%w: shader %q has no source", gfx.ErrInvalidDescriptor, desc.Name)
	}

	cStrs, free := gl.Strs(desc.Source + "\x00")
	id := gl.CreateShaderProgramv(stage.glType, 1, cStrs)
	free()

	var ok32 int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &ok32)
	if ok32 == gl.FALSE {
		log := readProgramInfoLog(id)
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("failed to link %v shader %q, log: %v", desc.Stage, desc.Name, log)
	}
	setObjectLabel(gl.PROGRAM, id, desc.Name)

	return &program{
		glId:             id,
		name:             desc.Name,
		stage:            desc.Stage,
		pipeline:         pipeline,
		uniformLocations: map[string]int32{},
		ints:             map[string]int{},
		floats:           map[string]float32{},
		matrices:         map[string]mgl32.Mat4{},
		textures:         map[string]*texture{},
	}, nil
}

func readProgramInfoLog(id uint32) string {
	var logLength int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (prog *program) Name() string {
	return prog.name
}

func (prog *program) Stage() gfx.Stage {
	return prog.stage
}

func (prog *program) Id() uint32 {
	return prog.glId
}

func (prog *program) Activate() {
	prog.pipeline.attach(shaderStages[prog.stage].bit, prog.glId)
	prog.pipeline.Bind()
}

func (prog *program) SetMatrix(name string, m mgl32.Mat4) {
	prog.matrices[name] = m
}

func (prog *program) SetInt(name string, v int) {
	prog.ints[name] = v
}

func (prog *program) SetFloat(name string, v float32) {
	prog.floats[name] = v
}

func (prog *program) SetTexture(name string, tex gfx.Texture) {
	if _, ok := prog.textures[name]; !ok {
		if len(prog.textureNames) == maxStageTextureUnits {
			liblog.Log.Panic("too many textures for one shader stage", zap.String("shader", prog.name), zap.String("uniform", name))
		}
		prog.textureNames = append(prog.textureNames, name)
	}
	if tex == nil {
		prog.textures[name] = nil
		return
	}
	prog.textures[name] = tex.(*texture)
}

// SetSampler applies to every texture of the stage, glsl has no separate
// sampler objects so the name is not looked up.
func (prog *program) SetSampler(name string, s gfx.Sampler) {
	if s == nil {
		prog.sampler = nil
		return
	}
	prog.sampler = s.(*sampler)
}

func (prog *program) Upload() {
	for name, v := range prog.ints {
		if loc := prog.location(name); loc != -1 {
			gl.ProgramUniform1i(prog.glId, loc, int32(v))
		}
	}
	for name, v := range prog.floats {
		if loc := prog.location(name); loc != -1 {
			gl.ProgramUniform1f(prog.glId, loc, v)
		}
	}
	for name, m := range prog.matrices {
		if loc := prog.location(name); loc != -1 {
			gl.ProgramUniformMatrix4fv(prog.glId, loc, 1, false, &m[0])
		}
	}

	base := shaderStages[prog.stage].base
	var samplerId uint32
	if prog.sampler != nil {
		samplerId = prog.sampler.glId
	}
	for i, name := range prog.textureNames {
		unit := base + i
		var texId uint32
		if tex := prog.textures[name]; tex != nil {
			texId = tex.glId
		}
		State.BindTextureUnit(unit, texId)
		State.BindSampler(unit, samplerId)
		if loc := prog.location(name); loc != -1 {
			gl.ProgramUniform1i(prog.glId, loc, int32(unit))
		}
	}
}

// location logs unknown uniforms once, the compiler removes unused ones.
func (prog *program) location(name string) int32 {
	if location, ok := prog.uniformLocations[name]; ok {
		return location
	}

	location := gl.GetUniformLocation(prog.glId, gl.Str(name+"\x00"))
	prog.uniformLocations[name] = location

	if location == -1 {
		liblog.Log.Debug("could not get uniform location", zap.String("shader", prog.name), zap.String("uniform", name))
	}
	return location
}

func (prog *program) Release() {
	if prog.glId == 0 {
		return
	}
	prog.pipeline.detach(prog.glId)
	gl.DeleteProgram(prog.glId)
	prog.glId = 0
	prog.textures = map[string]*texture{}
	prog.textureNames = nil
	prog.sampler = nil
}
