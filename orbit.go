package main

import (
	"refraction-gl/libscn"
	"refraction-gl/libutil"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinZoom = 10
	MaxZoom = 1000
	// keeps the camera off the poles where the up vector degenerates
	polarMargin = 0.001
)

// OrbitControls moves a camera on a sphere around a target. Left drag
// rotates, right drag pans and the wheel changes the zoom.
type OrbitControls struct {
	Enabled bool
	Target  mgl32.Vec3
	Radius  float32
	// angle from +y
	Polar float32
	// angle around +y, 0 looks down -z
	Azimuth     float32
	RotateSpeed float32
	ZoomSpeed   float32
}

func NewOrbitControls(cam *libscn.OrthographicCamera) *OrbitControls {
	o := &OrbitControls{
		RotateSpeed: 1,
		ZoomSpeed:   1,
	}
	o.Reset(cam)
	return o
}

// Reset derives the orbit from the current camera placement.
func (o *OrbitControls) Reset(cam *libscn.OrthographicCamera) {
	o.Target = cam.Target
	offset := cam.Position.Sub(cam.Target)
	o.Radius = offset.Len()
	if o.Radius == 0 {
		o.Polar, o.Azimuth = math32.Pi/2, 0
		return
	}
	o.Polar = math32.Acos(libutil.Clamp(offset[1]/o.Radius, -1, 1))
	o.Azimuth = math32.Atan2(offset[0], offset[2])
}

// Rotate turns the camera by a cursor movement in logical pixels. Moving
// across the full viewport height is one full turn.
func (o *OrbitControls) Rotate(delta mgl32.Vec2, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	o.Azimuth -= 2 * math32.Pi * delta[0] / viewportHeight * o.RotateSpeed
	o.Polar -= 2 * math32.Pi * delta[1] / viewportHeight * o.RotateSpeed
	o.Polar = libutil.Clamp(o.Polar, polarMargin, math32.Pi-polarMargin)
}

// Pan moves the target in the view plane so the scene follows the cursor.
func (o *OrbitControls) Pan(delta mgl32.Vec2, cam *libscn.OrthographicCamera) {
	view := cam.ViewMatrix
	right := mgl32.Vec3{view[0], view[4], view[8]}
	up := mgl32.Vec3{view[1], view[5], view[9]}
	move := right.Mul(-delta[0] / cam.Zoom).Add(up.Mul(delta[1] / cam.Zoom))
	o.Target = o.Target.Add(move)
}

// Zoom scales the camera zoom by 0.95 per wheel step.
func (o *OrbitControls) Zoom(steps float32, cam *libscn.OrthographicCamera) {
	cam.Zoom *= math32.Pow(0.95, -steps*o.ZoomSpeed)
	cam.Zoom = libutil.Clamp(cam.Zoom, MinZoom, MaxZoom)
}

// Apply places the camera on the orbit.
func (o *OrbitControls) Apply(cam *libscn.OrthographicCamera) {
	sinPolar := math32.Sin(o.Polar)
	offset := mgl32.Vec3{
		o.Radius * sinPolar * math32.Sin(o.Azimuth),
		o.Radius * math32.Cos(o.Polar),
		o.Radius * sinPolar * math32.Cos(o.Azimuth),
	}
	cam.Target = o.Target
	cam.Position = o.Target.Add(offset)
	cam.UpdateViewMatrix()
	cam.UpdateProjectionMatrix()
}

func (o *OrbitControls) Update(in InputManager, cam *libscn.OrthographicCamera) {
	if !o.Enabled {
		return
	}
	if in.IsMouseDown(glfw.MouseButtonLeft) {
		o.Rotate(in.CursorDelta(), cam.ViewportDimension[1])
	}
	if in.IsMouseDown(glfw.MouseButtonRight) {
		o.Pan(in.CursorDelta(), cam)
	}
	if scroll := in.ScrollDelta(); scroll != 0 {
		o.Zoom(scroll, cam)
	}
	o.Apply(cam)
}
