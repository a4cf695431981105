package libgl

import (
	"github.com/go-gl/gl/v4.5-core/gl"
)

type Capability uint32

const (
	DepthTest   Capability = gl.DEPTH_TEST
	Blend       Capability = gl.BLEND
	ScissorTest Capability = gl.SCISSOR_TEST
	CullFace    Capability = gl.CULL_FACE
)

type BlendFactor uint32

const (
	BlendZero             BlendFactor = gl.ZERO
	BlendOne              BlendFactor = gl.ONE
	BlendSrcAlpha         BlendFactor = gl.SRC_ALPHA
	BlendOneMinusSrcAlpha BlendFactor = gl.ONE_MINUS_SRC_ALPHA
)

type BlendEquation uint32

const (
	BlendFuncAdd BlendEquation = gl.FUNC_ADD
)

type DepthFunc uint32

const (
	DepthFuncLess   DepthFunc = gl.LESS
	DepthFuncLEqual DepthFunc = gl.LEQUAL
	DepthFuncAlways DepthFunc = gl.ALWAYS
)

// StateManager shadows the bits of GL state this program touches so that
// redundant driver calls can be skipped.
type StateManager struct {
	Caps                             map[Capability]bool
	TextureUnits, SamplerUnits       []uint32
	DrawFramebuffer, ReadFramebuffer uint32
	Renderbuffer                     uint32
	ProgramPipeline, VertexArray     uint32
	ActiveTextureUnit                int
	ViewportRect, ScissorRect        [4]int
	BlendFactorSrc, BlendFactorDst   BlendFactor
	BlendEquationMode                BlendEquation
	DepthFuncFn                      DepthFunc
	DepthWriteMask                   bool
	CullFaceMask                     uint32
	ClearColorRGBA                   [4]float32
}

var State *StateManager

func NewStateManager() *StateManager {
	return &StateManager{
		Caps:         map[Capability]bool{},
		TextureUnits: make([]uint32, 32),
		SamplerUnits: make([]uint32, 32),
		// GL default
		DepthWriteMask: true,
		CullFaceMask:   gl.BACK,
	}
}

func (s *StateManager) Enable(cap Capability) {
	if s.Caps[cap] {
		return
	}
	gl.Enable(uint32(cap))
	s.Caps[cap] = true
}

func (s *StateManager) Disable(cap Capability) {
	if !s.Caps[cap] {
		return
	}
	gl.Disable(uint32(cap))
	s.Caps[cap] = false
}

// SetEnabled enables exactly the given capabilities and disables every other tracked one.
func (s *StateManager) SetEnabled(caps ...Capability) {
	want := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		want[c] = true
	}
	for c, on := range s.Caps {
		if on && !want[c] {
			s.Disable(c)
		}
	}
	for c := range want {
		s.Enable(c)
	}
}

func (s *StateManager) CullFront() {
	if s.CullFaceMask == gl.FRONT {
		return
	}
	gl.CullFace(gl.FRONT)
	s.CullFaceMask = gl.FRONT
}

func (s *StateManager) CullBack() {
	if s.CullFaceMask == gl.BACK {
		return
	}
	gl.CullFace(gl.BACK)
	s.CullFaceMask = gl.BACK
}

func (s *StateManager) BlendFunc(sfactor, dfactor BlendFactor) {
	if s.BlendFactorSrc == sfactor && s.BlendFactorDst == dfactor {
		return
	}
	gl.BlendFunc(uint32(sfactor), uint32(dfactor))
	s.BlendFactorSrc = sfactor
	s.BlendFactorDst = dfactor
}

func (s *StateManager) BlendEquation(mode BlendEquation) {
	if s.BlendEquationMode == mode {
		return
	}
	gl.BlendEquation(uint32(mode))
	s.BlendEquationMode = mode
}

func (s *StateManager) DepthFunc(fn DepthFunc) {
	if s.DepthFuncFn == fn {
		return
	}
	gl.DepthFunc(uint32(fn))
	s.DepthFuncFn = fn
}

func (s *StateManager) DepthMask(flag bool) {
	if s.DepthWriteMask == flag {
		return
	}
	gl.DepthMask(flag)
	s.DepthWriteMask = flag
}

func (s *StateManager) BindTextureUnit(unit int, texture uint32) {
	if s.TextureUnits[unit] == texture {
		return
	}
	if Env.UseIntelTextureBindingFix {
		s.ActiveTexture(unit)
		if texture != 0 {
			gl.BindTexture(Env.IntelTextureBindingTargets[texture], texture)
		}
		s.TextureUnits[unit] = texture
		return
	}
	gl.BindTextureUnit(uint32(unit), texture)
	s.TextureUnits[unit] = texture
}

// BindTexture binds to the active unit, used by the GUI renderer which
// predates DSA style unit binding.
func (s *StateManager) BindTexture(target uint32, texture uint32) {
	if s.TextureUnits[s.ActiveTextureUnit] == texture {
		return
	}
	gl.BindTexture(target, texture)
	s.TextureUnits[s.ActiveTextureUnit] = texture
}

func (s *StateManager) ActiveTexture(unit int) {
	if s.ActiveTextureUnit == unit {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	s.ActiveTextureUnit = unit
}

func (s *StateManager) BindSampler(unit int, sampler uint32) {
	if s.SamplerUnits[unit] == sampler {
		return
	}
	gl.BindSampler(uint32(unit), sampler)
	s.SamplerUnits[unit] = sampler
}

func (s *StateManager) BindFramebuffer(target, framebuffer uint32) {
	switch target {
	case gl.DRAW_FRAMEBUFFER:
		s.BindDrawFramebuffer(framebuffer)
	case gl.READ_FRAMEBUFFER:
		s.BindReadFramebuffer(framebuffer)
	default:
		if framebuffer == s.DrawFramebuffer && framebuffer == s.ReadFramebuffer {
			return
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		s.DrawFramebuffer = framebuffer
		s.ReadFramebuffer = framebuffer
	}
}

func (s *StateManager) BindDrawFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	s.DrawFramebuffer = framebuffer
}

func (s *StateManager) BindReadFramebuffer(framebuffer uint32) {
	if s.ReadFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	s.ReadFramebuffer = framebuffer
}

func (s *StateManager) BindRenderbuffer(renderbuffer uint32) {
	if s.Renderbuffer == renderbuffer {
		return
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, renderbuffer)
	s.Renderbuffer = renderbuffer
}

func (s *StateManager) BindProgramPipeline(pipeline uint32) {
	if s.ProgramPipeline == pipeline {
		return
	}
	gl.BindProgramPipeline(pipeline)
	s.ProgramPipeline = pipeline
}

func (s *StateManager) BindVertexArray(array uint32) {
	if s.VertexArray == array {
		return
	}
	gl.BindVertexArray(array)
	s.VertexArray = array
}

// Deleting a bound object unbinds it. The Forget methods mirror that in the
// cache so a reused object name is bound again.

func (s *StateManager) ForgetTexture(texture uint32) {
	for unit, id := range s.TextureUnits {
		if id == texture {
			s.TextureUnits[unit] = 0
		}
	}
}

func (s *StateManager) ForgetSampler(sampler uint32) {
	for unit, id := range s.SamplerUnits {
		if id == sampler {
			s.SamplerUnits[unit] = 0
		}
	}
}

func (s *StateManager) ForgetFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		s.DrawFramebuffer = 0
	}
	if s.ReadFramebuffer == framebuffer {
		s.ReadFramebuffer = 0
	}
}

func (s *StateManager) ForgetRenderbuffer(renderbuffer uint32) {
	if s.Renderbuffer == renderbuffer {
		s.Renderbuffer = 0
	}
}

func (s *StateManager) ForgetProgramPipeline(pipeline uint32) {
	if s.ProgramPipeline == pipeline {
		s.ProgramPipeline = 0
	}
}

func (s *StateManager) ForgetVertexArray(array uint32) {
	if s.VertexArray == array {
		s.VertexArray = 0
	}
}

func (s *StateManager) Viewport(x, y, w, h int) {
	if s.ViewportRect == [4]int{x, y, w, h} {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	s.ViewportRect = [4]int{x, y, w, h}
}

func (s *StateManager) Scissor(x, y, w, h int) {
	if s.ScissorRect == [4]int{x, y, w, h} {
		return
	}
	gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	s.ScissorRect = [4]int{x, y, w, h}
}

func (s *StateManager) ClearColor(r, g, b, a float32) {
	if s.ClearColorRGBA == [4]float32{r, g, b, a} {
		return
	}
	gl.ClearColor(r, g, b, a)
	s.ClearColorRGBA = [4]float32{r, g, b, a}
}
