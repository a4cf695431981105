package sketch

import (
	"refraction-gl/libscn"
	"refraction-gl/render"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	IcosahedronRadius = 5
	IcosahedronDetail = 0
)

// Refraction renders the scene once into an environment target and shows an
// icosahedron that samples it with a tiled, fresnel weighted distortion.
type Refraction struct {
	Text     *TextOverlay
	Mesh     *libscn.Mesh
	env      render.TargetSlot
	material *libscn.Material
}

func NewRefraction() *Refraction {
	return &Refraction{
		Text: NewTextOverlay(),
		env:  render.TargetSlot{Name: "environment", Format: render.FormatRGBA8},
	}
}

func (r *Refraction) Name() string {
	return "single"
}

func (r *Refraction) Mount(ctx *Context) error {
	if err := r.Text.Mount(ctx); err != nil {
		return err
	}

	w, h := ctx.Viewport.DeviceSize()
	if err := r.env.Resize(ctx.Device, w, h); err != nil {
		return err
	}

	r.material = libscn.NewMaterial("refraction", refractionShader)
	r.material.Textures[0] = &r.env
	r.material.Uniforms["u_resolution"] = resolution(ctx.Viewport)
	if err := ctx.Device.Compile(r.material); err != nil {
		return err
	}

	r.Mesh = libscn.NewMesh("icosahedron", libscn.Icosahedron(IcosahedronRadius, IcosahedronDetail), r.material)
	ctx.Scene.Add(r.Mesh)
	return nil
}

func (r *Refraction) Passes() []render.Pass {
	return []render.Pass{
		{
			Name:       "environment",
			Target:     r.env.Target(),
			Layers:     libscn.AllLayers,
			Clear:      render.ClearColor,
			ClearAfter: render.ClearDepth,
		},
		{
			Name:       "screen",
			Layers:     libscn.AllLayers,
			ClearAfter: render.ClearDepth,
		},
	}
}

func (r *Refraction) Frame(ctx *Context, frame Frame) {
	render.Run(ctx.Device, ctx.Scene, ctx.Camera, r.Passes())
	r.Mesh.Rotation = PointerRotation(frame.Pointer)
}

// PointerRotation tilts the mesh by up to a quarter turn about x for the
// vertical pointer position and about z for the horizontal one.
func PointerRotation(pointer mgl32.Vec2) mgl32.Vec3 {
	return mgl32.Vec3{
		pointer[1] * math32.Pi / 2,
		0,
		pointer[0] * math32.Pi / 2,
	}
}

func (r *Refraction) Resize(ctx *Context) error {
	if err := r.Text.Resize(ctx); err != nil {
		return err
	}
	w, h := ctx.Viewport.DeviceSize()
	if err := r.env.Resize(ctx.Device, w, h); err != nil {
		return err
	}
	r.material.Uniforms["u_resolution"] = resolution(ctx.Viewport)
	return nil
}

func (r *Refraction) Release(ctx *Context) {
	r.Text.Release(ctx)
	if r.Mesh != nil {
		ctx.Scene.Remove(r.Mesh)
		r.Mesh = nil
	}
	r.env.Release()
}
