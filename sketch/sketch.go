// Package sketch holds the refraction sketches and the text overlay they
// share. A sketch only talks to the GPU through the Context it is handed.
package sketch

import (
	"fmt"
	"image"

	"refraction-gl/libscn"
	"refraction-gl/render"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"
)

// TextureLoader resolves texture assets by name.
type TextureLoader interface {
	LoadTexture(name string) (*image.RGBA, error)
}

type Viewport struct {
	// logical pixels
	Width, Height int
	PixelRatio    float32
}

// DeviceSize is the viewport size in device pixels.
func (v Viewport) DeviceSize() (int, int) {
	return render.TargetSize(v.Width, v.Height, v.PixelRatio)
}

// Context is the rendering context threaded through every sketch call.
type Context struct {
	Device   render.Device
	Scene    *libscn.Scene
	Camera   *libscn.OrthographicCamera
	Viewport Viewport
	Assets   TextureLoader
}

type Frame struct {
	// normalized device coordinates, x right and y up
	Pointer mgl32.Vec2
}

type Sketch interface {
	Name() string
	// Mount creates the GPU resources of the sketch and adds its meshes to the scene.
	Mount(ctx *Context) error
	// Frame runs the passes of one frame and then animates the meshes.
	Frame(ctx *Context, frame Frame)
	// Resize is called between frames after the viewport changed.
	Resize(ctx *Context) error
	// Release deletes everything Mount created.
	Release(ctx *Context)
}

var registry = map[string]func() Sketch{
	"single": func() Sketch { return NewRefraction() },
	"dual":   func() Sketch { return NewDispersion() },
	"text":   func() Sketch { return NewTextOverlay() },
}

func New(name string) (Sketch, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown sketch %q, expected one of %v", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// fitPlane scales a unit plane to cover the visible area of the camera.
func fitPlane(mesh *libscn.Mesh, camera *libscn.OrthographicCamera) {
	ext := camera.Extents()
	mesh.Scale = mgl32.Vec3{ext[0], ext[1], 1}
}

func resolution(v Viewport) mgl32.Vec2 {
	w, h := v.DeviceSize()
	return mgl32.Vec2{float32(w), float32(h)}
}
