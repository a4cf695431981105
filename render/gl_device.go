package render

import (
	"fmt"
	"image"
	"log"

	"refraction-gl/libgl"
	"refraction-gl/libscn"
	"refraction-gl/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type glTexture struct {
	tex       libgl.UnboundTexture
	mipmapped bool
}

func (t *glTexture) Size() (int, int) {
	return t.tex.Size()
}

func (t *glTexture) Delete() {
	t.tex.Delete()
}

type glTarget struct {
	name          string
	format        TargetFormat
	width, height int
	framebuffer   libgl.UnboundFramebuffer
	color         *glTexture
	depth         libgl.UnboundRenderbuffer
}

func (t *glTarget) Size() (int, int) {
	return t.width, t.height
}

func (t *glTarget) Format() TargetFormat {
	return t.format
}

func (t *glTarget) Texture() libscn.Texture {
	return t.color
}

func (t *glTarget) Delete() {
	libutil.DeleteAll(t.framebuffer, t.color, t.depth)
}

type glMesh struct {
	vao      libgl.UnboundVertexArray
	vbo, ebo libgl.UnboundBuffer
	count    int32
}

// GLDevice draws scenes with the current OpenGL context. It caches compiled
// pipelines per shader source and uploaded buffers per geometry; both are
// freed by Release.
type GLDevice struct {
	ClearValue    mgl32.Vec4
	screenWidth   int
	screenHeight  int
	pipelines     map[*libscn.ShaderSource]libgl.UnboundShaderPipeline
	meshes        map[*libscn.Geometry]*glMesh
	targetSampler libgl.UnboundSampler
	imageSampler  libgl.UnboundSampler
	current       *glTarget
}

func NewGLDevice() *GLDevice {
	targetSampler := libgl.NewSampler()
	targetSampler.FilterMode(gl.LINEAR, gl.LINEAR)
	targetSampler.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)

	imageSampler := libgl.NewSampler()
	imageSampler.FilterMode(gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR)
	imageSampler.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)
	imageSampler.AnisotropicFilter(4)

	return &GLDevice{
		ClearValue:    mgl32.Vec4{0, 0, 0, 1},
		pipelines:     map[*libscn.ShaderSource]libgl.UnboundShaderPipeline{},
		meshes:        map[*libscn.Geometry]*glMesh{},
		targetSampler: targetSampler,
		imageSampler:  imageSampler,
	}
}

// SetScreenSize sets the default framebuffer size in device pixels.
func (dev *GLDevice) SetScreenSize(width, height int) {
	dev.screenWidth = width
	dev.screenHeight = height
}

func (dev *GLDevice) NewTarget(name string, width, height int, format TargetFormat) (Target, error) {
	internalFormat := uint32(gl.RGBA8)
	if format == FormatRGBA16F {
		internalFormat = gl.RGBA16F
	}

	color := libgl.NewTexture(gl.TEXTURE_2D)
	color.Allocate(1, internalFormat, width, height)
	color.SetDebugLabel(name + " color")

	depth := libgl.NewRenderbuffer()
	depth.Allocate(gl.DEPTH_COMPONENT24, width, height)
	depth.SetDebugLabel(name + " depth")

	fbo := libgl.NewFramebuffer()
	fbo.SetDebugLabel(name)
	fbo.AttachTexture(0, color)
	fbo.AttachRenderbuffer(gl.DEPTH_ATTACHMENT, depth)
	fbo.BindTargets(0)

	if err := fbo.Check(gl.DRAW_FRAMEBUFFER); err != nil {
		libutil.DeleteAll(fbo, color, depth)
		return nil, fmt.Errorf("render target %q (%dx%d %v) is incomplete: %w", name, width, height, format, err)
	}

	return &glTarget{
		name:        name,
		format:      format,
		width:       width,
		height:      height,
		framebuffer: fbo,
		color:       &glTexture{tex: color},
		depth:       depth,
	}, nil
}

func (dev *GLDevice) NewTexture(name string, img *image.RGBA) libscn.Texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.Allocate(0, gl.RGBA8, w, h)
	tex.SetDebugLabel(name)
	// GL expects the bottom row first
	tex.Load(0, w, h, gl.RGBA, flipRows(img))
	tex.GenerateMipmap()
	return &glTexture{tex: tex, mipmapped: true}
}

// ReadPixels copies the color of a target, or of the screen when target is
// nil, into an image whose first row is the top row. Float targets are
// clamped to [0, 1].
func (dev *GLDevice) ReadPixels(target Target) *image.RGBA {
	fbo, w, h := uint32(0), dev.screenWidth, dev.screenHeight
	if target != nil {
		t := target.(*glTarget)
		fbo, w, h = t.framebuffer.Id(), t.width, t.height
	}
	pix := make([]byte, w*h*4)
	libgl.State.BindReadFramebuffer(fbo)
	gl.ReadnPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, int32(len(pix)), libgl.Pointer(pix))

	bottomUp := &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	return &image.RGBA{Pix: flipRows(bottomUp), Stride: w * 4, Rect: bottomUp.Rect}
}

func flipRows(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		copy(pix[(h-1-y)*w*4:], src)
	}
	return pix
}

func (dev *GLDevice) Compile(material *libscn.Material) error {
	_, err := dev.pipeline(material.Shader)
	if err != nil {
		return fmt.Errorf("could not compile material %q: %w", material.Name, err)
	}
	return nil
}

func (dev *GLDevice) pipeline(src *libscn.ShaderSource) (libgl.UnboundShaderPipeline, error) {
	if p, ok := dev.pipelines[src]; ok {
		return p, nil
	}

	vertexSh := libgl.NewShader(src.Vertex, gl.VERTEX_SHADER)
	if err := vertexSh.CompileWith(src.Defines); err != nil {
		return nil, fmt.Errorf("could not compile vertex shader for %q: %w", src.Name, err)
	}
	fragmentSh := libgl.NewShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err := fragmentSh.CompileWith(src.Defines); err != nil {
		vertexSh.Delete()
		return nil, fmt.Errorf("could not compile fragment shader for %q: %w", src.Name, err)
	}

	pipeline := libgl.NewPipeline()
	pipeline.SetDebugLabel(src.Name)
	pipeline.Attach(vertexSh, gl.VERTEX_SHADER_BIT)
	pipeline.Attach(fragmentSh, gl.FRAGMENT_SHADER_BIT)
	dev.pipelines[src] = pipeline
	return pipeline, nil
}

func (dev *GLDevice) mesh(geom *libscn.Geometry) *glMesh {
	if m, ok := dev.meshes[geom]; ok {
		return m
	}

	vbo := libgl.NewBuffer()
	vbo.SetDebugLabel(geom.Name + " vertices")
	vbo.Allocate(geom.Vertices, 0)
	ebo := libgl.NewBuffer()
	ebo.SetDebugLabel(geom.Name + " indices")
	ebo.Allocate(geom.Indices, 0)

	vao := libgl.NewVertexArray()
	vao.SetDebugLabel(geom.Name)
	// position, normal, uv
	vao.Layout(0, 0, 3, gl.FLOAT, false, 0)
	vao.Layout(0, 1, 3, gl.FLOAT, false, 3*4)
	vao.Layout(0, 2, 2, gl.FLOAT, false, 6*4)
	vao.BindBuffer(0, vbo, 0, (3+3+2)*4)
	vao.BindElementBuffer(ebo)

	m := &glMesh{vao: vao, vbo: vbo, ebo: ebo, count: int32(len(geom.Indices))}
	dev.meshes[geom] = m
	return m
}

func (dev *GLDevice) PushGroup(name string) {
	libgl.PushGroup(name)
}

func (dev *GLDevice) PopGroup() {
	libgl.PopGroup()
}

func (dev *GLDevice) SetTarget(target Target) {
	if target == nil {
		dev.current = nil
		libgl.State.BindDrawFramebuffer(0)
		libgl.State.Viewport(0, 0, dev.screenWidth, dev.screenHeight)
		return
	}
	t := target.(*glTarget)
	dev.current = t
	t.framebuffer.Bind(gl.DRAW_FRAMEBUFFER)
	libgl.State.Viewport(0, 0, t.width, t.height)
}

func (dev *GLDevice) Clear(mask ClearMask) {
	libgl.State.Disable(libgl.ScissorTest)
	var bits uint32
	if mask&ClearColor != 0 {
		c := dev.ClearValue
		libgl.State.ClearColor(c[0], c[1], c[2], c[3])
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&ClearDepth != 0 {
		// depth clears are masked by the depth write mask
		libgl.State.DepthMask(true)
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if bits != 0 {
		gl.Clear(bits)
	}
}

func (dev *GLDevice) Draw(scene *libscn.Scene, camera *libscn.OrthographicCamera, layers libscn.Layers, overrides map[*libscn.Mesh]*libscn.Material) {
	viewProjection := camera.ViewProjection()

	libgl.State.DepthFunc(libgl.DepthFuncLEqual)
	libgl.State.DepthMask(true)

	scene.Visit(layers, func(m *libscn.Mesh) {
		material := m.Material
		if o, ok := overrides[m]; ok {
			material = o
		}
		if material == nil || m.Geometry == nil {
			return
		}
		if dev.samplesCurrentTarget(material) {
			// a feedback loop, the mesh is left out of its own environment
			return
		}
		pipeline, err := dev.pipeline(material.Shader)
		if err != nil {
			log.Panicf("mesh %q: %v", m.Name, err)
		}

		switch material.Side {
		case libscn.FrontSide:
			libgl.State.SetEnabled(libgl.DepthTest, libgl.CullFace)
			libgl.State.CullBack()
		case libscn.BackSide:
			libgl.State.SetEnabled(libgl.DepthTest, libgl.CullFace)
			libgl.State.CullFront()
		default:
			libgl.State.SetEnabled(libgl.DepthTest)
		}

		pipeline.Bind()
		vs := pipeline.VertexStage()
		vs.TrySetUniform("u_model_mat", m.ModelMatrix())
		vs.TrySetUniform("u_normal_mat", m.NormalMatrix())
		vs.TrySetUniform("u_view_projection_mat", viewProjection)
		vs.TrySetUniform("u_camera_position", camera.Position)

		fs := pipeline.FragmentStage()
		for name, value := range material.Uniforms {
			fs.SetUniform(name, value)
		}
		for unit, src := range material.Textures {
			tex, _ := src.Texture().(*glTexture)
			if tex == nil {
				libgl.State.BindTextureUnit(unit, 0)
				continue
			}
			tex.tex.Bind(unit)
			if tex.mipmapped {
				dev.imageSampler.Bind(unit)
			} else {
				dev.targetSampler.Bind(unit)
			}
		}

		dev.mesh(m.Geometry).draw()
	})
}

func (dev *GLDevice) samplesCurrentTarget(material *libscn.Material) bool {
	if dev.current == nil {
		return false
	}
	for _, src := range material.Textures {
		if tex, ok := src.Texture().(*glTexture); ok && tex == dev.current.color {
			return true
		}
	}
	return false
}

func (m *glMesh) draw() {
	m.vao.Bind()
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
}

func (dev *GLDevice) Release() {
	for _, p := range dev.pipelines {
		p.Delete()
	}
	for _, m := range dev.meshes {
		libutil.DeleteAll(m.vao, m.vbo, m.ebo)
	}
	dev.pipelines = map[*libscn.ShaderSource]libgl.UnboundShaderPipeline{}
	dev.meshes = map[*libscn.Geometry]*glMesh{}
	libutil.DeleteAll(dev.targetSampler, dev.imageSampler)
}
