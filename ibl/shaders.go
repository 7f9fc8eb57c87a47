package ibl

import (
	"embed"
	"fmt"

	"skyibl/gfx"
)

//go:embed shaders/*.glsl
var shaderFiles embed.FS

const (
	ShaderFullscreen = "fullscreen"
	ShaderIrradiance = "irradiance"
	ShaderSpecular   = "specular"
	ShaderBRDF       = "brdf"
	ShaderSkyVertex  = "sky_vs"
	ShaderSkyPixel   = "sky_ps"
	ShaderSkyPreview = "sky_preview"
)

var shaderStages = map[string]gfx.Stage{
	ShaderFullscreen: gfx.StageVertex,
	ShaderIrradiance: gfx.StagePixel,
	ShaderSpecular:   gfx.StagePixel,
	ShaderBRDF:       gfx.StagePixel,
	ShaderSkyVertex:  gfx.StageVertex,
	ShaderSkyPixel:   gfx.StagePixel,
	ShaderSkyPreview: gfx.StagePixel,
}

func ShaderSource(id string) (string, error) {
	if _, ok := shaderStages[id]; !ok {
		return "", fmt.Errorf("unknown shader %q", id)
	}
	src, err := shaderFiles.ReadFile("shaders/" + id + ".glsl")
	if err != nil {
		return "", err
	}
	return string(src), nil
}

// LoadShader compiles one of the embedded programs. The caller owns the result.
func LoadShader(dev gfx.Device, id string) (gfx.Shader, error) {
	src, err := ShaderSource(id)
	if err != nil {
		return nil, err
	}
	sh, err := dev.CreateShader(gfx.ShaderDesc{
		Name:   id,
		Stage:  shaderStages[id],
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create shader %q: %w", id, err)
	}
	return sh, nil
}

// loadPassShaders loads the full-screen vertex stage together with a pixel stage.
func loadPassShaders(dev gfx.Device, pixel string) (vs, ps gfx.Shader, err error) {
	vs, err = LoadShader(dev, ShaderFullscreen)
	if err != nil {
		return nil, nil, err
	}
	ps, err = LoadShader(dev, pixel)
	if err != nil {
		vs.Release()
		return nil, nil, err
	}
	return vs, ps, nil
}
