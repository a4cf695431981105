package render

import (
	"refraction-gl/libscn"
)

type TargetFormat int

const (
	// 8 bit unsigned normalized color
	FormatRGBA8 TargetFormat = iota
	// 16 bit float color, keeps signed values such as normals
	FormatRGBA16F
)

func (f TargetFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA16F:
		return "rgba16f"
	}
	return "unknown"
}

// Target is an offscreen color buffer with an implicit depth buffer.
type Target interface {
	Size() (width, height int)
	Format() TargetFormat
	// Texture is the color attachment.
	Texture() libscn.Texture
	Delete()
}

// TargetSize is the device pixel size of a target covering a viewport of
// width x height logical pixels, rounded to the nearest pixel like the
// framebuffer size the window system reports.
func TargetSize(width, height int, pixelRatio float32) (int, int) {
	return int(float32(width)*pixelRatio + 0.5), int(float32(height)*pixelRatio + 0.5)
}

// TargetSlot owns the current target of a sketch. It is a TextureSource so
// materials always sample whatever target is current.
type TargetSlot struct {
	Name   string
	Format TargetFormat
	target Target
}

func (slot *TargetSlot) Target() Target {
	return slot.target
}

func (slot *TargetSlot) Texture() libscn.Texture {
	if slot.target == nil {
		return nil
	}
	return slot.target.Texture()
}

// Resize constructs a new target for the given device pixel size, clears
// it and only then swaps it in and deletes the old one. Nothing is
// recreated when the size did not change.
func (slot *TargetSlot) Resize(dev Device, width, height int) error {
	if slot.target != nil {
		w, h := slot.target.Size()
		if w == width && h == height {
			return nil
		}
	}
	next, err := dev.NewTarget(slot.Name, width, height, slot.Format)
	if err != nil {
		return err
	}
	// a new depth buffer holds undefined values until its first clear
	dev.SetTarget(next)
	dev.Clear(ClearAll)
	prev := slot.target
	slot.target = next
	if prev != nil {
		prev.Delete()
	}
	return nil
}

func (slot *TargetSlot) Release() {
	if slot.target != nil {
		slot.target.Delete()
		slot.target = nil
	}
}
