package libutil

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// returned for GL functions the driver does not provide
const InvalidAddress uintptr = 0xffff_ffff_ffff_ffff

type Deleter interface {
	Delete()
}

// DeleteAll deletes every non nil resource.
func DeleteAll(resources ...Deleter) {
	for _, r := range resources {
		if r != nil {
			r.Delete()
		}
	}
}

// Approach moves current a fixed fraction of the remaining distance towards
// target. It is applied once per frame, not per second.
func Approach(current, target mgl32.Vec3, factor float32) mgl32.Vec3 {
	return current.Add(target.Sub(current).Mul(factor))
}

func Clamp(v, min, max float32) float32 {
	return math32.Max(min, math32.Min(max, v))
}

// CursorToNDC converts a window cursor position to normalized device
// coordinates, x to the right and y up. Positions outside the window are
// clamped to its edge so both axes stay in [-1, 1].
func CursorToNDC(cursor mgl32.Vec2, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	x := cursor[0]/float32(width)*2 - 1
	y := -(cursor[1]/float32(height)*2 - 1)
	return mgl32.Vec2{Clamp(x, -1, 1), Clamp(y, -1, 1)}
}
