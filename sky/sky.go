// Package sky draws an environment cube behind the scene and owns the image
// based lighting maps baked from it.
package sky

import (
	"fmt"
	"time"

	"skyibl/gfx"
	"skyibl/ibl"
	"skyibl/liblog"
	"skyibl/libutil"

	"go.uber.org/zap"
)

// Resources are supplied by the caller and stay owned by it.
type Resources struct {
	Mesh         gfx.Mesh
	VertexShader gfx.Shader
	PixelShader  gfx.Shader
	Sampler      gfx.Sampler
}

func (res Resources) validate() error {
	switch {
	case res.Mesh == nil:
		return fmt.Errorf("%w: sky has no mesh", gfx.ErrInvalidDescriptor)
	case res.VertexShader == nil || res.VertexShader.Stage() != gfx.StageVertex:
		return fmt.Errorf("%w: sky needs a vertex shader", gfx.ErrInvalidDescriptor)
	case res.PixelShader == nil || res.PixelShader.Stage() != gfx.StagePixel:
		return fmt.Errorf("%w: sky needs a pixel shader", gfx.ErrInvalidDescriptor)
	case res.Sampler == nil:
		return fmt.Errorf("%w: sky has no sampler", gfx.ErrInvalidDescriptor)
	}
	return nil
}

// LoadResources loads the embedded sky shaders and a trilinear clamped sampler for mesh.
// Release the result once no sky uses it anymore.
func LoadResources(dev gfx.Device, mesh gfx.Mesh) (res Resources, err error) {
	var cleanup libutil.Cleanup
	defer func() {
		if err != nil {
			cleanup.Release()
		}
	}()

	res.Mesh = mesh
	if res.VertexShader, err = ibl.LoadShader(dev, ibl.ShaderSkyVertex); err != nil {
		return Resources{}, err
	}
	cleanup.Add(res.VertexShader)
	if res.PixelShader, err = ibl.LoadShader(dev, ibl.ShaderSkyPixel); err != nil {
		return Resources{}, err
	}
	cleanup.Add(res.PixelShader)
	res.Sampler, err = dev.CreateSampler(gfx.SamplerDesc{
		MinFilter: gfx.FilterLinear,
		MagFilter: gfx.FilterLinear,
		MipFilter: gfx.FilterLinear,
		Mipmaps:   true,
		Wrap:      gfx.WrapClamp,
	})
	if err != nil {
		return Resources{}, fmt.Errorf("could not create sky sampler: %w", err)
	}
	return res, nil
}

// Release frees the shaders and the sampler, the mesh is left alone.
func (res Resources) Release() {
	res.VertexShader.Release()
	res.PixelShader.Release()
	res.Sampler.Release()
}

type Sky struct {
	dev    gfx.Device
	ctx    gfx.Context
	res    Resources
	raster gfx.RasterState
	depth  gfx.DepthState

	env     gfx.Texture
	ownsEnv bool

	irradiance     gfx.Texture
	specular       gfx.Texture
	specularLevels int
	brdf           gfx.Texture
	preview        gfx.Shader
}

// New obtains the environment and bakes all lighting maps. Either every bake
// succeeds or everything created so far is released and the error returned.
func New(dev gfx.Device, ctx gfx.Context, src Source, res Resources, opts Options) (sky *Sky, err error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sky options: %w", err)
	}
	if err := res.validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: sky has no environment source", gfx.ErrInvalidDescriptor)
	}
	start := time.Now()

	var cleanup libutil.Cleanup
	defer func() {
		if err != nil {
			cleanup.Release()
		}
	}()

	sky = &Sky{
		dev: dev,
		ctx: ctx,
		res: res,
	}

	// the cube is seen from the inside and sits on the far plane
	sky.raster, err = dev.CreateRasterState(gfx.RasterDesc{
		Cull:      gfx.CullFront,
		Fill:      gfx.FillSolid,
		DepthClip: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create sky raster state: %w", err)
	}
	cleanup.Add(sky.raster)

	sky.depth, err = dev.CreateDepthState(gfx.DepthDesc{
		DepthTest:  true,
		DepthWrite: true,
		Func:       gfx.CompareLessEqual,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create sky depth state: %w", err)
	}
	cleanup.Add(sky.depth)

	sky.env, sky.ownsEnv, err = src.environment(dev, ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load sky environment from %v: %w", src, err)
	}
	if sky.ownsEnv {
		cleanup.Add(sky.env)
	}

	sky.irradiance, err = ibl.BakeIrradiance(dev, ctx, sky.env, res.Sampler, opts.irradiance())
	if err != nil {
		return nil, err
	}
	cleanup.Add(sky.irradiance)

	sky.specular, err = ibl.BakeSpecular(dev, ctx, sky.env, res.Sampler, opts.specular())
	if err != nil {
		return nil, err
	}
	cleanup.Add(sky.specular)
	sky.specularLevels = sky.specular.Desc().Levels

	sky.brdf, err = ibl.BakeBRDF(dev, ctx, opts.brdf())
	if err != nil {
		return nil, err
	}
	cleanup.Add(sky.brdf)

	sky.preview, err = ibl.LoadShader(dev, ibl.ShaderSkyPreview)
	if err != nil {
		return nil, err
	}
	cleanup.Add(sky.preview)

	liblog.Log.Info("sky ready",
		zap.Stringer("source", src),
		zap.Int("irradiance_size", opts.IrradianceSize),
		zap.Int("specular_levels", sky.specularLevels),
		zap.Int("brdf_size", opts.BRDFSize),
		zap.Duration("took", time.Since(start)))

	return sky, nil
}

// Draw renders the environment with the sky shaders. The default raster and
// depth states are restored afterwards.
func (sky *Sky) Draw(cam gfx.Camera) {
	sky.draw(cam, sky.res.PixelShader, func(ps gfx.Shader) {
		ps.SetTexture("skyTexture", sky.env)
	})
}

// DrawPreview renders any cube texture at a fixed lod in place of the
// environment, nil selects the environment.
func (sky *Sky) DrawPreview(cam gfx.Camera, tex gfx.Texture, lod float32) {
	if tex == nil {
		tex = sky.env
	}
	sky.draw(cam, sky.preview, func(ps gfx.Shader) {
		ps.SetTexture("skyTexture", tex)
		ps.SetFloat("lod", lod)
	})
}

func (sky *Sky) draw(cam gfx.Camera, ps gfx.Shader, bind func(ps gfx.Shader)) {
	ctx := sky.ctx
	ctx.SetRasterState(sky.raster)
	ctx.SetDepthState(sky.depth)
	defer func() {
		ctx.SetRasterState(nil)
		ctx.SetDepthState(nil)
	}()

	vs := sky.res.VertexShader
	vs.Activate()
	ps.Activate()

	vs.SetMatrix("view", cam.View())
	vs.SetMatrix("projection", cam.Projection())
	vs.Upload()

	bind(ps)
	ps.SetSampler("samplerOptions", sky.res.Sampler)
	ps.Upload()

	sky.res.Mesh.Draw(ctx)
}

func (sky *Sky) EnvironmentMap() gfx.Texture {
	return sky.env
}

func (sky *Sky) IrradianceMap() gfx.Texture {
	return sky.irradiance
}

func (sky *Sky) SpecularMap() gfx.Texture {
	return sky.specular
}

// SpecularMipLevels is the level count of SpecularMap, level i holds roughness i/(n-1).
func (sky *Sky) SpecularMipLevels() int {
	return sky.specularLevels
}

func (sky *Sky) BRDFLookUpTexture() gfx.Texture {
	return sky.brdf
}

// Release frees everything the sky created. A cube passed with FromCube is not released.
func (sky *Sky) Release() {
	if sky.raster == nil {
		return
	}
	sky.preview.Release()
	sky.brdf.Release()
	sky.specular.Release()
	sky.irradiance.Release()
	if sky.ownsEnv {
		sky.env.Release()
	}
	sky.depth.Release()
	sky.raster.Release()
	*sky = Sky{}
}
