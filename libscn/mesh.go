package libscn

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Mesh struct {
	Name     string
	Geometry *Geometry
	Material *Material
	Layers   Layers
	Visible  bool
	Position mgl32.Vec3
	// Euler angles in radians, applied in X, Y, Z order
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewMesh creates a visible mesh on layer 0 with an identity transform.
func NewMesh(name string, geometry *Geometry, material *Material) *Mesh {
	return &Mesh{
		Name:     name,
		Geometry: geometry,
		Material: material,
		Layers:   Layer(0),
		Visible:  true,
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	r := mgl32.AnglesToQuat(m.Rotation[0], m.Rotation[1], m.Rotation[2], mgl32.XYZ).Mat4()
	s := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix transforms object space normals to world space.
func (m *Mesh) NormalMatrix() mgl32.Mat3 {
	return m.ModelMatrix().Mat3().Inv().Transpose()
}
