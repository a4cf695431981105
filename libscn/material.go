package libscn

// Texture is a GPU texture created by a render device.
type Texture interface {
	Size() (width, height int)
	Delete()
}

// TextureSource is resolved every time a material is drawn so a material can
// follow a render target that gets replaced on resize.
type TextureSource interface {
	Texture() Texture
}

type fixedTexture struct {
	tex Texture
}

func (f fixedTexture) Texture() Texture {
	return f.tex
}

// Fixed wraps a texture that never changes.
func Fixed(tex Texture) TextureSource {
	return fixedTexture{tex: tex}
}

type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

func (s Side) String() string {
	switch s {
	case FrontSide:
		return "front"
	case BackSide:
		return "back"
	case DoubleSide:
		return "double"
	}
	return "unknown"
}

// ShaderSource is a vertex/fragment pair. Defines override #define values of
// the sources when the device compiles them.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
	Defines  map[string]string
}

type Material struct {
	Name   string
	Shader *ShaderSource
	Side   Side
	// Uniforms are applied to the fragment stage before drawing.
	Uniforms map[string]any
	// Textures maps texture units to their sources.
	Textures map[int]TextureSource
}

func NewMaterial(name string, shader *ShaderSource) *Material {
	return &Material{
		Name:     name,
		Shader:   shader,
		Uniforms: map[string]any{},
		Textures: map[int]TextureSource{},
	}
}
