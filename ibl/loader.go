package ibl

import (
	"fmt"
	"path/filepath"

	"skyibl/gfx"
	"skyibl/libio"
)

// UploadImage creates a sampled RGBA8 2d texture from a decoded image.
func UploadImage(dev gfx.Device, ctx gfx.Context, label string, img *libio.IntImage) (gfx.Texture, error) {
	if img.Channels != 4 {
		img = img.ToChannels(4, 0, 0, 0, 0xff)
	}
	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Label:  filepath.Base(label),
		Kind:   gfx.Texture2D,
		Width:  img.Width,
		Height: img.Height,
		Layers: 1,
		Levels: 1,
		Format: gfx.FormatRGBA8,
		Usage:  gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create texture for %q: %w", label, err)
	}
	if err := ctx.UpdateTexture(tex, 0, 0, img.Pix); err != nil {
		tex.Release()
		return nil, fmt.Errorf("could not upload %q: %w", label, err)
	}
	return tex, nil
}

// LoadImageTexture decodes a png, jpeg, bmp or tiff file into a 2d texture.
func LoadImageTexture(dev gfx.Device, ctx gfx.Context, path string) (gfx.Texture, error) {
	img, err := libio.DecodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return UploadImage(dev, ctx, path, img)
}

// UploadIblEnv creates a sampled RGBA16F cube texture from host faces.
func UploadIblEnv(dev gfx.Device, ctx gfx.Context, label string, env *IblEnv) (gfx.Texture, error) {
	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Label:  label,
		Kind:   gfx.TextureCube,
		Width:  env.Size,
		Height: env.Size,
		Layers: 6,
		Levels: 1,
		Format: gfx.FormatRGBA16F,
		Usage:  gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create cube map %q: %w", label, err)
	}
	for _, face := range gfx.CubeFaces {
		if err := ctx.UpdateTexture(tex, int(face), 0, env.RGBA(face)); err != nil {
			tex.Release()
			return nil, fmt.Errorf("could not upload face %v of %q: %w", face, label, err)
		}
	}
	return tex, nil
}

// LoadPackedCube decodes an .iblenv file into a cube texture.
func LoadPackedCube(dev gfx.Device, ctx gfx.Context, path string) (gfx.Texture, error) {
	env, err := DecodeIblEnvFile(path)
	if err != nil {
		return nil, err
	}
	return UploadIblEnv(dev, ctx, filepath.Base(path), env)
}
