package libscn

import (
	"github.com/go-gl/mathgl/mgl32"
)

// OrthographicCamera maps one world unit to Zoom logical pixels. The frustum
// is centered on the view axis and sized to the viewport.
type OrthographicCamera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Zoom     float32
	// logical (not device) pixels
	ViewportDimension mgl32.Vec2
	ClippingPlanes    mgl32.Vec2

	ViewMatrix       mgl32.Mat4
	ProjectionMatrix mgl32.Mat4
}

func NewOrthographicCamera(zoom float32, position mgl32.Vec3, width, height int) *OrthographicCamera {
	cam := &OrthographicCamera{
		Position:          position,
		Up:                mgl32.Vec3{0, 1, 0},
		Zoom:              zoom,
		ViewportDimension: mgl32.Vec2{float32(width), float32(height)},
		ClippingPlanes:    mgl32.Vec2{0.1, 1000},
	}
	cam.UpdateProjectionMatrix()
	cam.UpdateViewMatrix()
	return cam
}

func (cam *OrthographicCamera) UpdateViewMatrix() {
	cam.ViewMatrix = mgl32.LookAtV(cam.Position, cam.Target, cam.Up)
}

func (cam *OrthographicCamera) UpdateProjectionMatrix() {
	ext := cam.Extents()
	hw, hh := ext[0]/2, ext[1]/2
	n, f := cam.ClippingPlanes[0], cam.ClippingPlanes[1]
	cam.ProjectionMatrix = mgl32.Ortho(-hw, hw, -hh, hh, n, f)
}

func (cam *OrthographicCamera) ViewProjection() mgl32.Mat4 {
	return cam.ProjectionMatrix.Mul4(cam.ViewMatrix)
}

// Extents is the visible area in world units.
func (cam *OrthographicCamera) Extents() mgl32.Vec2 {
	return mgl32.Vec2{cam.ViewportDimension[0] / cam.Zoom, cam.ViewportDimension[1] / cam.Zoom}
}

func (cam *OrthographicCamera) Resize(width, height int) {
	cam.ViewportDimension = mgl32.Vec2{float32(width), float32(height)}
	cam.UpdateProjectionMatrix()
}
