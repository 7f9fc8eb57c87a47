package gfx_test

import (
	"testing"

	"skyibl/gfx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxLevels(t *testing.T) {
	assert.Equal(t, 1, gfx.MaxLevels(1, 1))
	assert.Equal(t, 10, gfx.MaxLevels(512, 512))
	assert.Equal(t, 9, gfx.MaxLevels(500, 2))
	assert.Equal(t, 0, gfx.MaxLevels(0, 0))
}

func TestLevelSize(t *testing.T) {
	assert.Equal(t, 512, gfx.LevelSize(512, 0))
	assert.Equal(t, 64, gfx.LevelSize(512, 3))
	assert.Equal(t, 1, gfx.LevelSize(512, 12))
}

func TestTextureDescValidate(t *testing.T) {
	valid := gfx.TextureDesc{
		Label:  "cube",
		Kind:   gfx.TextureCube,
		Width:  16,
		Height: 16,
		Layers: 6,
		Levels: 5,
		Format: gfx.FormatRGBA8,
		Usage:  gfx.UsageShaderResource,
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(d *gfx.TextureDesc){
		"zero size":     func(d *gfx.TextureDesc) { d.Width = 0 },
		"no format":     func(d *gfx.TextureDesc) { d.Format = gfx.FormatUnknown },
		"too many mips": func(d *gfx.TextureDesc) { d.Levels = 6 },
		"no mips":       func(d *gfx.TextureDesc) { d.Levels = 0 },
		"cube layers":   func(d *gfx.TextureDesc) { d.Layers = 1 },
		"not square":    func(d *gfx.TextureDesc) { d.Height = 8; d.Levels = 1 },
		"2d layers":     func(d *gfx.TextureDesc) { d.Kind = gfx.Texture2D },
		"no usage":      func(d *gfx.TextureDesc) { d.Usage = 0 },
	}
	for name, mutate := range cases {
		desc := valid
		mutate(&desc)
		assert.ErrorIs(t, desc.Validate(), gfx.ErrInvalidDescriptor, name)
	}
}

func TestFormatText(t *testing.T) {
	var f gfx.Format
	require.NoError(t, f.UnmarshalText([]byte("rgba16f")))
	assert.Equal(t, gfx.FormatRGBA16F, f)
	assert.Error(t, f.UnmarshalText([]byte("bgra")))

	text, err := gfx.FormatRG16.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rg16", string(text))

	assert.Equal(t, 2, gfx.FormatRG16.Channels())
	assert.Equal(t, 4, gfx.FormatRGBA8.Channels())
}
