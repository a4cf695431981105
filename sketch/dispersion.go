package sketch

import (
	"fmt"

	"refraction-gl/libscn"
	"refraction-gl/libutil"
	"refraction-gl/render"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// background meshes
	SceneLayer = 0
	// the refractive sphere
	SphereLayer = 1

	SphereRadius   = 2
	SphereSegments = 64
	SphereDepth    = -5
	// fraction of the remaining distance the sphere moves each frame
	FollowFactor = 0.05

	BackgroundTexture  = "background"
	BackgroundDistance = -10
)

// Dispersion renders the background and the back faces of a sphere into two
// targets, then draws the sphere with a per channel offset refraction of the
// background. The sphere eases towards the pointer.
type Dispersion struct {
	Background string
	Sphere     *libscn.Mesh
	Plane      *libscn.Mesh

	env      render.TargetSlot
	backface render.TargetSlot

	refraction *libscn.Material
	backNormal *libscn.Material
	image      *libscn.Material
	texture    libscn.Texture
}

func NewDispersion() *Dispersion {
	return &Dispersion{
		Background: BackgroundTexture,
		env:        render.TargetSlot{Name: "environment", Format: render.FormatRGBA8},
		backface:   render.TargetSlot{Name: "backface normals", Format: render.FormatRGBA16F},
	}
}

func (d *Dispersion) Name() string {
	return "dual"
}

func (d *Dispersion) Mount(ctx *Context) error {
	img, err := ctx.Assets.LoadTexture(d.Background)
	if err != nil {
		return fmt.Errorf("could not load background: %w", err)
	}
	d.texture = ctx.Device.NewTexture(d.Background, img)

	w, h := ctx.Viewport.DeviceSize()
	if err := d.env.Resize(ctx.Device, w, h); err != nil {
		return err
	}
	if err := d.backface.Resize(ctx.Device, w, h); err != nil {
		return err
	}

	d.image = libscn.NewMaterial("background", backgroundShader)
	d.image.Textures[0] = libscn.Fixed(d.texture)

	d.backNormal = libscn.NewMaterial("backface normals", backfaceShader)
	d.backNormal.Side = libscn.BackSide

	d.refraction = libscn.NewMaterial("dispersion", dispersionShader)
	d.refraction.Textures[0] = &d.env
	d.refraction.Textures[1] = &d.backface
	d.refraction.Uniforms["u_resolution"] = resolution(ctx.Viewport)

	for _, m := range []*libscn.Material{d.image, d.backNormal, d.refraction} {
		if err := ctx.Device.Compile(m); err != nil {
			return err
		}
	}

	d.Plane = libscn.NewMesh("background", libscn.Plane(1, 1), d.image)
	d.Plane.Layers = libscn.Layer(SceneLayer)
	d.Plane.Position = mgl32.Vec3{0, 0, BackgroundDistance}
	fitPlane(d.Plane, ctx.Camera)

	d.Sphere = libscn.NewMesh("sphere", libscn.Sphere(SphereRadius, SphereSegments, SphereSegments), d.refraction)
	d.Sphere.Layers = libscn.Layer(SphereLayer)
	d.Sphere.Position = mgl32.Vec3{0, 0, SphereDepth}

	ctx.Scene.Add(d.Plane, d.Sphere)
	return nil
}

func (d *Dispersion) Passes() []render.Pass {
	return []render.Pass{
		{
			Name:   "environment",
			Target: d.env.Target(),
			Layers: libscn.Layer(SceneLayer),
			Clear:  render.ClearAll,
		},
		{
			Name:      "backface normals",
			Target:    d.backface.Target(),
			Layers:    libscn.Layer(SphereLayer),
			Clear:     render.ClearAll,
			Overrides: map[*libscn.Mesh]*libscn.Material{d.Sphere: d.backNormal},
		},
		{
			Name:       "screen",
			Layers:     libscn.Layer(SceneLayer),
			ClearAfter: render.ClearDepth,
		},
		{
			Name:   "refraction",
			Layers: libscn.Layer(SphereLayer),
		},
	}
}

func (d *Dispersion) Frame(ctx *Context, frame Frame) {
	render.Run(ctx.Device, ctx.Scene, ctx.Camera, d.Passes())
	d.Sphere.Position = libutil.Approach(d.Sphere.Position, PointerTarget(ctx.Camera, frame.Pointer), FollowFactor)
}

// PointerTarget is the point under the pointer on the plane the sphere moves in.
func PointerTarget(camera *libscn.OrthographicCamera, pointer mgl32.Vec2) mgl32.Vec3 {
	ext := camera.Extents()
	return mgl32.Vec3{pointer[0] * ext[0] / 2, pointer[1] * ext[1] / 2, SphereDepth}
}

func (d *Dispersion) Resize(ctx *Context) error {
	fitPlane(d.Plane, ctx.Camera)
	w, h := ctx.Viewport.DeviceSize()
	if err := d.env.Resize(ctx.Device, w, h); err != nil {
		return err
	}
	if err := d.backface.Resize(ctx.Device, w, h); err != nil {
		return err
	}
	d.refraction.Uniforms["u_resolution"] = resolution(ctx.Viewport)
	return nil
}

func (d *Dispersion) Release(ctx *Context) {
	if d.Sphere != nil {
		ctx.Scene.Remove(d.Sphere, d.Plane)
		d.Sphere, d.Plane = nil, nil
	}
	d.env.Release()
	d.backface.Release()
	if d.texture != nil {
		d.texture.Delete()
		d.texture = nil
	}
}
