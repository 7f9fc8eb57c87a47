package ibl

import (
	"fmt"
	"time"

	"skyibl/gfx"
	"skyibl/liblog"

	"go.uber.org/zap"
)

type BRDFOptions struct {
	Size int
}

func DefaultBRDFOptions() BRDFOptions {
	return BRDFOptions{Size: 256}
}

func (opts BRDFOptions) Validate() error {
	if opts.Size < 1 || opts.Size > MaxFaceSize {
		return fmt.Errorf("%w: brdf lut size %d", ErrInvalidSize, opts.Size)
	}
	return nil
}

// BakeBRDF renders the split-sum scale and bias into a two channel table.
// Columns are NdotV and rows are roughness, both from 0 to 1.
func BakeBRDF(dev gfx.Device, ctx gfx.Context, opts BRDFOptions) (tex gfx.Texture, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	vs, ps, err := loadPassShaders(dev, ShaderBRDF)
	if err != nil {
		return nil, err
	}
	defer vs.Release()
	defer ps.Release()

	tex, err = dev.CreateTexture(gfx.TextureDesc{
		Label:  "brdf",
		Kind:   gfx.Texture2D,
		Width:  opts.Size,
		Height: opts.Size,
		Layers: 1,
		Levels: 1,
		Format: gfx.FormatRG16,
		Usage:  gfx.UsageRenderTarget | gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create brdf lut: %w", err)
	}

	r := passRenderer{dev: dev, ctx: ctx, vs: vs, ps: ps, target: tex}
	if err = r.run([]pass{{size: opts.Size}}); err != nil {
		tex.Release()
		return nil, fmt.Errorf("could not bake brdf lut: %w", err)
	}

	liblog.Log.Debug("baked brdf lut",
		zap.Int("size", opts.Size),
		zap.Duration("took", time.Since(start)))

	return tex, nil
}
