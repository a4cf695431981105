package sketch

import (
	"fmt"
	"image"
	"image/color"

	"refraction-gl/libscn"
	"refraction-gl/render"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultText       = "FUTURE"
	TextCanvasWidth   = 1024
	TextCanvasHeight  = 512
	TextSizeOfHeight  = 0.95
	TextPlaneDistance = -10
)

// RasterizeText draws text in white Go Bold on black. The font size is
// fontScale times the height, the baseline sits one font size below the top
// and text wider than the image is squeezed horizontally to fit.
func RasterizeText(text string, width, height int, fontScale float32) (*image.RGBA, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse text font: %w", err)
	}
	size := float64(float32(height) * fontScale)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create text face: %w", err)
	}
	defer face.Close()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	advance := font.MeasureString(face, text).Ceil()
	canvas := dst
	if advance > width {
		canvas = image.NewRGBA(image.Rect(0, 0, advance, height))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.Int26_6(size * 64)},
	}
	drawer.DrawString(text)

	if canvas != dst {
		draw.BiLinear.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}
	return dst, nil
}

// TextOverlay is a word drawn once into a texture and shown on a plane
// behind everything else.
type TextOverlay struct {
	Text   string
	Width  int
	Height int
	Mesh   *libscn.Mesh
	// Rasterizations counts how often the text was drawn on the CPU.
	Rasterizations int
	texture        libscn.Texture
	material       *libscn.Material
}

func NewTextOverlay() *TextOverlay {
	return &TextOverlay{
		Text:   DefaultText,
		Width:  TextCanvasWidth,
		Height: TextCanvasHeight,
	}
}

func (t *TextOverlay) Name() string {
	return "text"
}

func (t *TextOverlay) Mount(ctx *Context) error {
	if t.texture == nil {
		img, err := RasterizeText(t.Text, t.Width, t.Height, TextSizeOfHeight)
		if err != nil {
			return err
		}
		t.Rasterizations++
		t.texture = ctx.Device.NewTexture("text "+t.Text, img)
	}

	t.material = libscn.NewMaterial("text", textShader)
	t.material.Textures[0] = libscn.Fixed(t.texture)
	if err := ctx.Device.Compile(t.material); err != nil {
		return err
	}

	t.Mesh = libscn.NewMesh("text", libscn.Plane(1, 1), t.material)
	t.Mesh.Position = mgl32.Vec3{0, 0, TextPlaneDistance}
	fitPlane(t.Mesh, ctx.Camera)
	ctx.Scene.Add(t.Mesh)
	return nil
}

// Frame only draws the scene, the overlay itself is static.
func (t *TextOverlay) Frame(ctx *Context, frame Frame) {
	render.Run(ctx.Device, ctx.Scene, ctx.Camera, []render.Pass{
		{Name: "text", Layers: libscn.AllLayers, Clear: render.ClearAll},
	})
}

func (t *TextOverlay) Resize(ctx *Context) error {
	fitPlane(t.Mesh, ctx.Camera)
	return nil
}

func (t *TextOverlay) Release(ctx *Context) {
	if t.Mesh != nil {
		ctx.Scene.Remove(t.Mesh)
		t.Mesh = nil
	}
	if t.texture != nil {
		t.texture.Delete()
		t.texture = nil
	}
}
