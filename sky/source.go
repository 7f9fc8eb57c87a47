package sky

import (
	"fmt"

	"skyibl/gfx"
	"skyibl/ibl"
)

// Source tells New where the environment cube map comes from.
type Source interface {
	fmt.Stringer
	// environment returns the cube map and whether the sky owns it
	environment(dev gfx.Device, ctx gfx.Context) (gfx.Texture, bool, error)
}

type packedFile string

// FromPackedFile loads an .iblenv cube file.
func FromPackedFile(path string) Source {
	return packedFile(path)
}

func (src packedFile) String() string {
	return fmt.Sprintf("packed file %q", string(src))
}

func (src packedFile) environment(dev gfx.Device, ctx gfx.Context) (gfx.Texture, bool, error) {
	tex, err := ibl.LoadPackedCube(dev, ctx, string(src))
	return tex, true, err
}

type loadedCube struct {
	tex gfx.Texture
}

// FromCube uses an existing cube texture. It stays owned by the caller and
// must outlive the sky.
func FromCube(tex gfx.Texture) Source {
	return loadedCube{tex: tex}
}

func (src loadedCube) String() string {
	if src.tex == nil {
		return "cube <nil>"
	}
	return fmt.Sprintf("cube %q", src.tex.Desc().Label)
}

func (src loadedCube) environment(gfx.Device, gfx.Context) (gfx.Texture, bool, error) {
	if src.tex == nil {
		return nil, false, fmt.Errorf("%w: no cube texture", gfx.ErrInvalidDescriptor)
	}
	desc := src.tex.Desc()
	if desc.Kind != gfx.TextureCube {
		return nil, false, fmt.Errorf("%w: texture %q is %v, not a cube", gfx.ErrInvalidDescriptor, desc.Label, desc.Kind)
	}
	return src.tex, false, nil
}

type faceFiles [6]string

// FromFaceFiles loads six face images in layer order +X, -X, +Y, -Y, +Z, -Z.
func FromFaceFiles(paths [6]string) Source {
	return faceFiles(paths)
}

func (src faceFiles) String() string {
	return fmt.Sprintf("face files %q", src[:])
}

func (src faceFiles) environment(dev gfx.Device, ctx gfx.Context) (gfx.Texture, bool, error) {
	tex, err := ibl.AssembleCubemapFiles(dev, ctx, src)
	return tex, true, err
}

type faceTextures [6]gfx.Texture

// FromFaceTextures copies six 2d textures in layer order +X, -X, +Y, -Y, +Z, -Z.
// The faces may be released once New returns.
func FromFaceTextures(faces [6]gfx.Texture) Source {
	return faceTextures(faces)
}

func (src faceTextures) String() string {
	return "face textures"
}

func (src faceTextures) environment(dev gfx.Device, ctx gfx.Context) (gfx.Texture, bool, error) {
	tex, err := ibl.AssembleCubemap(dev, ctx, src)
	return tex, true, err
}
