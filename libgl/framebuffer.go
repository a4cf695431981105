package libgl

import (
	"fmt"

	"github.com/go-gl/gl/v4.5-core/gl"
)

const MaxAttachments = 8

type framebuffer struct {
	glId uint32
}

type UnboundFramebuffer interface {
	LabeledGlObject
	Id() uint32
	// target must be GL_DRAW_FRAMEBUFFER, GL_READ_FRAMEBUFFER or GL_FRAMEBUFFER
	Bind(target uint32) BoundFramebuffer
	// target must be GL_DRAW_FRAMEBUFFER, GL_READ_FRAMEBUFFER or GL_FRAMEBUFFER
	Check(target uint32) error
	// index is a color attachment number, or GL_DEPTH_ATTACHMENT / GL_STENCIL_ATTACHMENT
	AttachTexture(index int, texture UnboundTexture)
	AttachRenderbuffer(index int, renderbuffer UnboundRenderbuffer)
	BindTargets(attachments ...int)
	Delete()
}

type BoundFramebuffer interface {
	UnboundFramebuffer
}

func NewFramebuffer() UnboundFramebuffer {
	var id uint32
	gl.CreateFramebuffers(1, &id)

	return &framebuffer{glId: id}
}

func (fb *framebuffer) Id() uint32 {
	return fb.glId
}

func (fb *framebuffer) SetDebugLabel(label string) {
	setObjectLabel(gl.FRAMEBUFFER, fb.glId, label)
}

func (fb *framebuffer) BindTargets(indices ...int) {
	attachments := make([]uint32, len(indices))
	for i, v := range indices {
		attachments[i] = attachmentEnum(v)
	}
	gl.NamedFramebufferDrawBuffers(fb.glId, int32(len(attachments)), &attachments[0])
}

func (fb *framebuffer) Check(target uint32) error {
	status := gl.CheckNamedFramebufferStatus(fb.glId, target)
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return nil
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return fmt.Errorf("an attachment is framebuffer incomplete (GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT)")
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return fmt.Errorf("the framebuffer has no attachments (GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT)")
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return fmt.Errorf("the object type of a draw attachment is none (GL_FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER)")
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return fmt.Errorf("the combination of internal formats of the attachments is not supported (GL_FRAMEBUFFER_UNSUPPORTED)")
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return fmt.Errorf("the attachments have different sampling (GL_FRAMEBUFFER_INCOMPLETE_MULTISAMPLE)")
	}
	return fmt.Errorf("unknown framebuffer status: %X", status)
}

func (fb *framebuffer) Bind(target uint32) BoundFramebuffer {
	State.BindFramebuffer(target, fb.glId)
	return BoundFramebuffer(fb)
}

func (fb *framebuffer) AttachTexture(index int, texture UnboundTexture) {
	gl.NamedFramebufferTexture(fb.glId, attachmentEnum(index), texture.Id(), 0)
}

func (fb *framebuffer) AttachRenderbuffer(index int, renderbuffer UnboundRenderbuffer) {
	gl.NamedFramebufferRenderbuffer(fb.glId, attachmentEnum(index), gl.RENDERBUFFER, renderbuffer.Id())
}

// Delete only deletes the framebuffer object, attachments are owned by the caller.
func (fb *framebuffer) Delete() {
	State.ForgetFramebuffer(fb.glId)
	gl.DeleteFramebuffers(1, &fb.glId)
	fb.glId = 0
}

func attachmentEnum(index int) uint32 {
	if index <= MaxAttachments {
		return uint32(gl.COLOR_ATTACHMENT0 + index)
	}
	return uint32(index)
}

type renderbuffer struct {
	glId uint32
}

type UnboundRenderbuffer interface {
	LabeledGlObject
	Id() uint32
	Bind() BoundRenderbuffer
	Allocate(internalFormat uint32, width, height int)
	Delete()
}

type BoundRenderbuffer interface {
	UnboundRenderbuffer
}

func NewRenderbuffer() UnboundRenderbuffer {
	var id uint32
	gl.CreateRenderbuffers(1, &id)
	return &renderbuffer{
		glId: id,
	}
}

func (rb *renderbuffer) Id() uint32 {
	return rb.glId
}

func (rb *renderbuffer) SetDebugLabel(label string) {
	setObjectLabel(gl.RENDERBUFFER, rb.glId, label)
}

func (rb *renderbuffer) Bind() BoundRenderbuffer {
	State.BindRenderbuffer(rb.glId)
	return BoundRenderbuffer(rb)
}

func (rb *renderbuffer) Allocate(internalFormat uint32, width, height int) {
	gl.NamedRenderbufferStorage(rb.glId, internalFormat, int32(width), int32(height))
}

func (rb *renderbuffer) Delete() {
	State.ForgetRenderbuffer(rb.glId)
	gl.DeleteRenderbuffers(1, &rb.glId)
	rb.glId = 0
}
