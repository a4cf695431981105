package libgl

import (
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
)

const (
	VendorIntel   = "intel"
	VendorNvidia  = "nvidia"
	VendorAmd     = "ati"
	VendorUnknown = "unknown"
)

type Environment struct {
	Vendor                     string
	UseIntelTextureBindingFix  bool
	IntelTextureBindingTargets map[uint32]uint32
	MaxTextureMaxAnisotropy    float32
}

var Env *Environment

func GetEnv() *Environment {
	vendor := strings.ToLower(strings.TrimSuffix(gl.GoStr(gl.GetString(gl.VENDOR)), "\x00"))
	vendor = classifyVendor(vendor)

	env := &Environment{
		Vendor:                     vendor,
		UseIntelTextureBindingFix:  vendor == VendorIntel,
		IntelTextureBindingTargets: map[uint32]uint32{},
	}
	gl.GetFloatv(gl.MAX_TEXTURE_MAX_ANISOTROPY, &env.MaxTextureMaxAnisotropy)
	return env
}

func classifyVendor(vendor string) string {
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

// Init must be called once the context is current.
func Init() {
	Env = GetEnv()
	State = NewStateManager()
}
