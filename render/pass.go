package render

import (
	"image"

	"refraction-gl/libscn"
)

type ClearMask uint32

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth

	ClearNone ClearMask = 0
	ClearAll            = ClearColor | ClearDepth
)

// Pass draws the meshes of a scene matching Layers into Target, the screen
// when Target is nil.
type Pass struct {
	Name   string
	Target Target
	Layers libscn.Layers
	// Clear is applied after binding the target, ClearAfter once drawing is done.
	Clear      ClearMask
	ClearAfter ClearMask
	// Overrides replace the material of individual meshes for this pass only.
	Overrides map[*libscn.Mesh]*libscn.Material
}

// Device is the rendering context handed to sketches.
type Device interface {
	NewTarget(name string, width, height int, format TargetFormat) (Target, error)
	// NewTexture uploads an image whose first row is the top row.
	NewTexture(name string, img *image.RGBA) libscn.Texture
	// Compile prepares the shaders of a material, failing on compile errors.
	Compile(material *libscn.Material) error
	SetTarget(target Target)
	Clear(mask ClearMask)
	Draw(scene *libscn.Scene, camera *libscn.OrthographicCamera, layers libscn.Layers, overrides map[*libscn.Mesh]*libscn.Material)
}

// GroupMarker is implemented by devices that can label passes for graphics debuggers.
type GroupMarker interface {
	PushGroup(name string)
	PopGroup()
}

// Run executes passes strictly in order.
func Run(dev Device, scene *libscn.Scene, camera *libscn.OrthographicCamera, passes []Pass) {
	marker, _ := dev.(GroupMarker)
	for _, pass := range passes {
		if marker != nil {
			marker.PushGroup(pass.Name)
		}
		dev.SetTarget(pass.Target)
		if pass.Clear != ClearNone {
			dev.Clear(pass.Clear)
		}
		dev.Draw(scene, camera, pass.Layers, pass.Overrides)
		if pass.ClearAfter != ClearNone {
			dev.Clear(pass.ClearAfter)
		}
		if marker != nil {
			marker.PopGroup()
		}
	}
}
