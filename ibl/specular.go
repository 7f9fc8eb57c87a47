package ibl

import (
	"fmt"
	"time"

	"skyibl/gfx"
	"skyibl/liblog"
	"skyibl/libutil"

	"go.uber.org/zap"
)

type SpecularOptions struct {
	// Size is rounded down to a power of two
	Size       int
	SkipLevels int
	Format     gfx.Format
}

func DefaultSpecularOptions() SpecularOptions {
	return SpecularOptions{
		Size:       512,
		SkipLevels: 3,
		Format:     gfx.FormatRGBA8,
	}
}

func (opts SpecularOptions) Validate() error {
	if opts.Size < 1 || opts.Size > MaxFaceSize {
		return fmt.Errorf("%w: specular face size %d", ErrInvalidSize, opts.Size)
	}
	if opts.SkipLevels < 0 || opts.SkipLevels > MaxSpecularSkipLevels {
		return fmt.Errorf("%w: specular skip levels %d", ErrInvalidSize, opts.SkipLevels)
	}
	if opts.Format.Channels() != 4 {
		return fmt.Errorf("%w: specular format %v", gfx.ErrInvalidDescriptor, opts.Format)
	}
	return nil
}

// BakeSpecular prefilters env for SpecularMipCount roughness levels, one level each.
func BakeSpecular(dev gfx.Device, ctx gfx.Context, env gfx.Texture, sampler gfx.Sampler, opts SpecularOptions) (tex gfx.Texture, err error) {
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

	vs, ps, err := loadPassShaders(dev, ShaderSpecular)
	if err != nil {
		return nil, err
	}
	defer vs.Release()
	defer ps.Release()

	levels := SpecularMipCount(opts.Size, opts.SkipLevels)
	base := specularBaseSize(opts.Size)

	tex, err = dev.CreateTexture(gfx.TextureDesc{
		Label:  "specular",
		Kind:   gfx.TextureCube,
		Width:  base,
		Height: base,
		Layers: 6,
		Levels: levels,
		Format: opts.Format,
		Usage:  gfx.UsageRenderTarget | gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create specular map: %w", err)
	}
	cleanup.Add(tex)

	ps.SetTexture("EnvironmentMap", env)
	ps.SetSampler("BasicSampler", sampler)

	passes := make([]pass, 0, 6*levels)
	for level := 0; level < levels; level++ {
		roughness := MipRoughness(level, levels)
		// only smaller than the chain when the level count was clamped to one
		size := libutil.MinI(MipViewportSize(level, levels, opts.SkipLevels), gfx.LevelSize(base, level))
		for _, face := range gfx.CubeFaces {
			face, level := face, level
			passes = append(passes, pass{
				layer: int(face),
				level: level,
				size:  size,
				setup: func(ps gfx.Shader) {
					ps.SetFloat("roughness", roughness)
					ps.SetInt("faceIndex", int(face))
					ps.SetInt("mipLevel", level)
				},
			})
		}
	}

	r := passRenderer{dev: dev, ctx: ctx, vs: vs, ps: ps, target: tex}
	if err = r.run(passes); err != nil {
		return nil, fmt.Errorf("could not bake specular map: %w", err)
	}

	liblog.Log.Debug("baked specular map",
		zap.Int("size", base),
		zap.Int("levels", levels),
		zap.Int("skip", opts.SkipLevels),
		zap.Duration("took", time.Since(start)))

	return tex, nil
}
