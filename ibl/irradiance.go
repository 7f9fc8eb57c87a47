package ibl

import (
	"fmt"
	"time"

	"skyibl/gfx"
	"skyibl/liblog"
	"skyibl/libutil"

	"go.uber.org/zap"
)

type IrradianceOptions struct {
	Size int
	// StepPhi and StepTheta are the azimuth and elevation sample spacing in radians
	StepPhi   float32
	StepTheta float32
	Format    gfx.Format
}

func DefaultIrradianceOptions() IrradianceOptions {
	return IrradianceOptions{
		Size:      512,
		StepPhi:   0.025,
		StepTheta: 0.025,
		Format:    gfx.FormatRGBA8,
	}
}

func (opts IrradianceOptions) Validate() error {
	if opts.Size < 1 || opts.Size > MaxFaceSize {
		return fmt.Errorf("%w: irradiance face size %d", ErrInvalidSize, opts.Size)
	}
	if !(opts.StepPhi > 0) || !(opts.StepTheta > 0) {
		return fmt.Errorf("%w: irradiance sample steps %v, %v must be positive", ErrInvalidSize, opts.StepPhi, opts.StepTheta)
	}
	if opts.Format.Channels() != 4 {
		return fmt.Errorf("%w: irradiance format %v", gfx.ErrInvalidDescriptor, opts.Format)
	}
	return nil
}

// BakeIrradiance convolves env over the hemisphere of every texel into a new
// single level cube texture.
func BakeIrradiance(dev gfx.Device, ctx gfx.Context, env gfx.Texture, sampler gfx.Sampler, opts IrradianceOptions) (tex gfx.Texture, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkEnvironment(env); err != nil {
		return nil, err
	}
	start := time.Now()

	var cleanup libutil.Cleanup
	defer func() {
		if err != nil {
			cleanup.Release()
		}
	}()

	vs, ps, err := loadPassShaders(dev, ShaderIrradiance)
	if err != nil {
		return nil, err
	}
	defer vs.Release()
	defer ps.Release()

	tex, err = dev.CreateTexture(gfx.TextureDesc{
		Label:  "irradiance",
		Kind:   gfx.TextureCube,
		Width:  opts.Size,
		Height: opts.Size,
		Layers: 6,
		Levels: 1,
		Format: opts.Format,
		Usage:  gfx.UsageRenderTarget | gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create irradiance map: %w", err)
	}
	cleanup.Add(tex)

	ps.SetTexture("EnvironmentMap", env)
	ps.SetSampler("BasicSampler", sampler)

	passes := make([]pass, 0, 6)
	for _, face := range gfx.CubeFaces {
		face := face
		passes = append(passes, pass{
			layer: int(face),
			size:  opts.Size,
			setup: func(ps gfx.Shader) {
				ps.SetInt("faceIndex", int(face))
				ps.SetFloat("sampleStepPhi", opts.StepPhi)
				ps.SetFloat("sampleStepTheta", opts.StepTheta)
			},
		})
	}

	r := passRenderer{dev: dev, ctx: ctx, vs: vs, ps: ps, target: tex}
	if err = r.run(passes); err != nil {
		return nil, fmt.Errorf("could not bake irradiance map: %w", err)
	}

	liblog.Log.Debug("baked irradiance map",
		zap.Int("size", opts.Size),
		zap.Float32("step_phi", opts.StepPhi),
		zap.Float32("step_theta", opts.StepTheta),
		zap.Duration("took", time.Since(start)))

	return tex, nil
}

func checkEnvironment(env gfx.Texture) error {
	if env == nil {
		return fmt.Errorf("%w: no environment map", gfx.ErrInvalidDescriptor)
	}
	if desc := env.Desc(); desc.Kind != gfx.TextureCube || desc.Usage&gfx.UsageShaderResource == 0 {
		return fmt.Errorf("%w: environment map %q is not a sampled cube texture", gfx.ErrInvalidDescriptor, desc.Label)
	}
	return nil
}
