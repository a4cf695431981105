package sketch

import (
	_ "embed"
	"strconv"
	"strings"

	"refraction-gl/libscn"
)

//go:embed shaders/surface.vert
var surfaceVertexSrc string

//go:embed shaders/plane.vert
var planeVertexSrc string

//go:embed shaders/refraction.frag
var refractionFragmentSrc string

//go:embed shaders/dispersion.frag
var dispersionFragmentSrc string

//go:embed shaders/backface.frag
var backfaceFragmentSrc string

//go:embed shaders/text.frag
var textFragmentSrc string

//go:embed shaders/background.frag
var backgroundFragmentSrc string

const (
	// weight of the surface normal that is removed before refracting
	NormalBlend = 0.4
	// air to water
	IORRatio = 1 / 1.33

	RefractionFresnelBias  = 1.01
	RefractionFresnelPower = 5
	RefractionTiles        = 4

	DispersionFresnelBias  = 1.0
	DispersionFresnelPower = 4
	BackfaceWeight         = 0.25
	ChannelOffset          = 0.02

	TextEdgeLow    = 0.3
	TextEdgeHigh   = 1.0
	TextBrightness = 0.75
)

// glslFloat formats v as a GLSL float literal.
func glslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

var refractionShader = &libscn.ShaderSource{
	Name:     "refraction",
	Vertex:   surfaceVertexSrc,
	Fragment: refractionFragmentSrc,
	Defines: map[string]string{
		"NORMAL_BLEND":  glslFloat(NormalBlend),
		"IOR_RATIO":     glslFloat(IORRatio),
		"FRESNEL_BIAS":  glslFloat(RefractionFresnelBias),
		"FRESNEL_POWER": glslFloat(RefractionFresnelPower),
		"TILES":         glslFloat(RefractionTiles),
	},
}

var dispersionShader = &libscn.ShaderSource{
	Name:     "dispersion",
	Vertex:   surfaceVertexSrc,
	Fragment: dispersionFragmentSrc,
	Defines: map[string]string{
		"NORMAL_BLEND":    glslFloat(NormalBlend),
		"BACKFACE_WEIGHT": glslFloat(BackfaceWeight),
		"IOR_RATIO":       glslFloat(IORRatio),
		"FRESNEL_BIAS":    glslFloat(DispersionFresnelBias),
		"FRESNEL_POWER":   glslFloat(DispersionFresnelPower),
		"CHANNEL_OFFSET":  glslFloat(ChannelOffset),
	},
}

var backfaceShader = &libscn.ShaderSource{
	Name:     "backface normal",
	Vertex:   surfaceVertexSrc,
	Fragment: backfaceFragmentSrc,
}

var textShader = &libscn.ShaderSource{
	Name:     "text overlay",
	Vertex:   planeVertexSrc,
	Fragment: textFragmentSrc,
	Defines: map[string]string{
		"EDGE_LOW":   glslFloat(TextEdgeLow),
		"EDGE_HIGH":  glslFloat(TextEdgeHigh),
		"BRIGHTNESS": glslFloat(TextBrightness),
	},
}

var backgroundShader = &libscn.ShaderSource{
	Name:     "background",
	Vertex:   planeVertexSrc,
	Fragment: backgroundFragmentSrc,
}
