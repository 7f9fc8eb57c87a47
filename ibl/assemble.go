package ibl

import (
	"fmt"

	"skyibl/gfx"
	"skyibl/libio"
	"skyibl/libutil"
)

// validateFaces checks that the faces can be copied into one cube and
// returns the description they share.
func validateFaces(faces [6]gfx.Texture) (gfx.TextureDesc, error) {
	var first gfx.TextureDesc
	for i, face := range faces {
		name := gfx.CubeFaces[i]
		if face == nil {
			return first, fmt.Errorf("%w: face %v is missing", ErrFaceMismatch, name)
		}
		desc := face.Desc()
		if desc.Kind != gfx.Texture2D || desc.Levels != 1 {
			return first, fmt.Errorf("%w: face %v must be a 2d texture with one level, is %v with %d", ErrFaceMismatch, name, desc.Kind, desc.Levels)
		}
		if desc.Width != desc.Height {
			return first, fmt.Errorf("%w: face %v is not square (%dx%d)", ErrFaceMismatch, name, desc.Width, desc.Height)
		}
		if i == 0 {
			first = desc
			continue
		}
		if desc.Width != first.Width || desc.Format != first.Format {
			return first, fmt.Errorf("%w: face %v is %dx%d %v, face %v is %dx%d %v", ErrFaceMismatch,
				name, desc.Width, desc.Height, desc.Format,
				gfx.CubeFaces[0], first.Width, first.Height, first.Format)
		}
	}
	return first, nil
}

// AssembleCubemap copies six face textures into the layers of a new cube texture.
// The faces stay owned by the caller.
func AssembleCubemap(dev gfx.Device, ctx gfx.Context, faces [6]gfx.Texture) (gfx.Texture, error) {
	desc, err := validateFaces(faces)
	if err != nil {
		return nil, err
	}

	cube, err := dev.CreateTexture(gfx.TextureDesc{
		Label:  "environment",
		Kind:   gfx.TextureCube,
		Width:  desc.Width,
		Height: desc.Height,
		Layers: 6,
		Levels: 1,
		Format: desc.Format,
		Usage:  gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create cube map: %w", err)
	}

	for i, face := range faces {
		ctx.CopySubresource(cube, i, 0, face, 0, 0)
	}

	return cube, nil
}

// AssembleCubemapFiles decodes six face images and assembles them. All
// images are decoded and checked before the first texture is created.
func AssembleCubemapFiles(dev gfx.Device, ctx gfx.Context, paths [6]string) (tex gfx.Texture, err error) {
	var images [6]*libio.IntImage
	for i, path := range paths {
		img, err := libio.DecodeImageFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not load face %v: %w", gfx.CubeFaces[i], err)
		}
		ref := img
		if i > 0 {
			ref = images[0]
		}
		if img.Width != img.Height || img.Width != ref.Width {
			return nil, fmt.Errorf("%w: face %v %q is %dx%d, face %v is %dx%d", ErrFaceMismatch,
				gfx.CubeFaces[i], path, img.Width, img.Height,
				gfx.CubeFaces[0], ref.Width, ref.Height)
		}
		images[i] = img
	}

	var cleanup libutil.Cleanup
	defer cleanup.Release()

	var faces [6]gfx.Texture
	for i, img := range images {
		faces[i], err = UploadImage(dev, ctx, paths[i], img)
		if err != nil {
			return nil, err
		}
		cleanup.Add(faces[i])
	}

	return AssembleCubemap(dev, ctx, faces)
}
