package libgl

import (
	"log"
	"math"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type texture struct {
	glId          uint32
	target        uint32
	width, height int
}

type UnboundTexture interface {
	LabeledGlObject
	Id() uint32
	Bind(unit int) BoundTexture
	// levels == 0 allocates a full mip chain
	Allocate(levels int, internalFormat uint32, width, height int)
	Load(level int, width, height int, format uint32, data any)
	GenerateMipmap()
	Size() (width, height int)
	Delete()
}

type BoundTexture interface {
	UnboundTexture
}

func NewTexture(target uint32) UnboundTexture {
	var id uint32
	gl.CreateTextures(target, 1, &id)
	if Env.UseIntelTextureBindingFix {
		Env.IntelTextureBindingTargets[id] = target
	}
	return &texture{
		glId:   id,
		target: target,
	}
}

func (tex *texture) Id() uint32 {
	return tex.glId
}

func (tex *texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

func (tex *texture) Bind(unit int) BoundTexture {
	State.BindTextureUnit(unit, tex.glId)
	return BoundTexture(tex)
}

func (tex *texture) Size() (int, int) {
	return tex.width, tex.height
}

func (tex *texture) Allocate(levels int, internalFormat uint32, width, height int) {
	if tex.target != gl.TEXTURE_2D {
		log.Panicf("texture %d: only 2D textures can be allocated, target is %04x", tex.glId, tex.target)
	}
	if levels == 0 {
		levels = MipLevels(width, height)
	}
	tex.width = width
	tex.height = height
	gl.TextureStorage2D(tex.glId, int32(levels), internalFormat, int32(width), int32(height))
}

func (tex *texture) Load(level int, width, height int, format uint32, data any) {
	gl.TextureSubImage2D(tex.glId, int32(level), 0, 0, int32(width), int32(height), format, glType(data), Pointer(data))
}

func (tex *texture) GenerateMipmap() {
	gl.GenerateTextureMipmap(tex.glId)
}

func (tex *texture) Delete() {
	if tex.glId == 0 {
		return
	}
	if Env.UseIntelTextureBindingFix {
		delete(Env.IntelTextureBindingTargets, tex.glId)
	}
	State.ForgetTexture(tex.glId)
	gl.DeleteTextures(1, &tex.glId)
	tex.glId = 0
}

// MipLevels is the length of a full mip chain for the given size.
func MipLevels(width, height int) int {
	max := math.Max(float64(width), float64(height))
	levels := int(math.Log2(max)) + 1
	if levels < 1 {
		levels = 1
	}
	return levels
}

func glType(data any) uint32 {
	switch data.(type) {
	case []byte, *byte:
		return gl.UNSIGNED_BYTE
	case []uint16, *uint16:
		return gl.UNSIGNED_SHORT
	case []float32, *float32:
		return gl.FLOAT
	}
	log.Panicf("invalid pixel data type: %T", data)
	return 0
}

type sampler struct {
	glId uint32
}

type UnboundSampler interface {
	Id() uint32
	Bind(unit int) BoundSampler
	FilterMode(min, mag int32)
	WrapMode(s, t, r int32)
	AnisotropicFilter(quality float32)
	Delete()
}

type BoundSampler interface {
	UnboundSampler
}

func NewSampler() UnboundSampler {
	var id uint32
	gl.CreateSamplers(1, &id)
	return &sampler{
		glId: id,
	}
}

func (s *sampler) Id() uint32 {
	return s.glId
}

func (s *sampler) Bind(unit int) BoundSampler {
	State.BindSampler(unit, s.glId)
	return BoundSampler(s)
}

func (s *sampler) FilterMode(min, mag int32) {
	if min != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MIN_FILTER, min)
	}
	if mag != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MAG_FILTER, mag)
	}
}

func (smp *sampler) WrapMode(s, t, r int32) {
	if s != 0 {
		gl.SamplerParameteri(smp.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.SamplerParameteri(smp.glId, gl.TEXTURE_WRAP_T, t)
	}
	if r != 0 {
		gl.SamplerParameteri(smp.glId, gl.TEXTURE_WRAP_R, r)
	}
}

func (s *sampler) AnisotropicFilter(quality float32) {
	if quality > Env.MaxTextureMaxAnisotropy {
		quality = Env.MaxTextureMaxAnisotropy
	}
	gl.SamplerParameterf(s.glId, gl.TEXTURE_MAX_ANISOTROPY, quality)
}

func (s *sampler) Delete() {
	State.ForgetSampler(s.glId)
	gl.DeleteSamplers(1, &s.glId)
	s.glId = 0
}
