package libgl

import (
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
)

var GlEnv *GlEnvironment

type GlEnvironment struct {
	Vendor   string
	Renderer string
	// Intel drivers ignore glBindTextureUnit for some targets
	UseIntelTextureBindingFix  bool
	IntelTextureBindingTargets map[uint32]uint32
	// Intel drivers reject cube maps in glNamedFramebufferTextureLayer
	UseIntelCubemapDsaFix bool
	Features              GlFeatures
}

type GlFeatures struct {
	MaxTextureMaxAnisotropy float32
	MaxTextureSize          int32
}

const (
	VendorIntel   = "intel"
	VendorNvidia  = "nvidia"
	VendorAmd     = "ati"
	VendorUnknown = "unknown"
)

func parseVendor(vendor string) string {
	vendor = strings.ToLower(strings.TrimSuffix(vendor, "\x00"))
	switch {
	case strings.Contains(vendor, "intel"):
		return VendorIntel
	case strings.Contains(vendor, "nvidia"):
		return VendorNvidia
	case strings.Contains(vendor, "ati ") || strings.Contains(vendor, "amd"):
		return VendorAmd
	}
	return VendorUnknown
}

// GetGlEnv queries the current context, gl must be initialized.
func GetGlEnv() *GlEnvironment {
	vendor := parseVendor(gl.GoStr(gl.GetString(gl.VENDOR)))

	features := GlFeatures{}
	gl.GetFloatv(gl.MAX_TEXTURE_MAX_ANISOTROPY, &features.MaxTextureMaxAnisotropy)
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &features.MaxTextureSize)

	return &GlEnvironment{
		Vendor:                     vendor,
		Renderer:                   gl.GoStr(gl.GetString(gl.RENDERER)),
		UseIntelTextureBindingFix:  vendor == VendorIntel,
		IntelTextureBindingTargets: map[uint32]uint32{},
		UseIntelCubemapDsaFix:      vendor == VendorIntel,
		Features:                   features,
	}
}
