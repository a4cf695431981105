package libscn

import (
	"golang.org/x/exp/slices"
)

// Scene is a flat list of meshes drawn in insertion order.
type Scene struct {
	Meshes []*Mesh
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Add(meshes ...*Mesh) {
	for _, m := range meshes {
		if !slices.Contains(s.Meshes, m) {
			s.Meshes = append(s.Meshes, m)
		}
	}
}

func (s *Scene) Remove(meshes ...*Mesh) {
	for _, m := range meshes {
		if i := slices.Index(s.Meshes, m); i >= 0 {
			s.Meshes = slices.Delete(s.Meshes, i, i+1)
		}
	}
}

// Visit calls fn for each visible mesh sharing a layer with mask.
func (s *Scene) Visit(mask Layers, fn func(m *Mesh)) {
	for _, m := range s.Meshes {
		if m.Visible && m.Layers.Test(mask) {
			fn(m)
		}
	}
}
