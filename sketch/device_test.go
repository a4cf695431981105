package sketch_test

import (
	"fmt"
	"image"
	"testing"

	"refraction-gl/libscn"
	"refraction-gl/render"
	"refraction-gl/sketch"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture struct {
	name    string
	w, h    int
	deleted int
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }
func (t *fakeTexture) Delete()          { t.deleted++ }

type fakeTarget struct {
	name    string
	w, h    int
	format  render.TargetFormat
	tex     *fakeTexture
	deleted int
}

func (t *fakeTarget) Size() (int, int)            { return t.w, t.h }
func (t *fakeTarget) Format() render.TargetFormat { return t.format }
func (t *fakeTarget) Texture() libscn.Texture     { return t.tex }
func (t *fakeTarget) Delete()                     { t.deleted++ }

type drawCall struct {
	target string
	layers libscn.Layers
	// mesh name to material name
	materials map[string]string
}

type fakeDevice struct {
	targets  []*fakeTarget
	textures []*fakeTexture
	compiled []string
	clears   []string
	draws    []drawCall
	current  string
}

func (d *fakeDevice) NewTarget(name string, w, h int, format render.TargetFormat) (render.Target, error) {
	t := &fakeTarget{name: name, w: w, h: h, format: format, tex: &fakeTexture{name: name, w: w, h: h}}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *fakeDevice) NewTexture(name string, img *image.RGBA) libscn.Texture {
	t := &fakeTexture{name: name, w: img.Rect.Dx(), h: img.Rect.Dy()}
	d.textures = append(d.textures, t)
	return t
}

func (d *fakeDevice) Compile(material *libscn.Material) error {
	d.compiled = append(d.compiled, material.Name)
	return nil
}

func (d *fakeDevice) SetTarget(target render.Target) {
	if target == nil {
		d.current = "screen"
		return
	}
	d.current = target.(*fakeTarget).name
}

func (d *fakeDevice) Clear(mask render.ClearMask) {
	d.clears = append(d.clears, fmt.Sprintf("%s %d", d.current, mask))
}

func (d *fakeDevice) Draw(scene *libscn.Scene, camera *libscn.OrthographicCamera, layers libscn.Layers, overrides map[*libscn.Mesh]*libscn.Material) {
	call := drawCall{target: d.current, layers: layers, materials: map[string]string{}}
	scene.Visit(layers, func(m *libscn.Mesh) {
		mat := m.Material
		if o, ok := overrides[m]; ok {
			mat = o
		}
		call.materials[m.Name] = mat.Name
	})
	d.draws = append(d.draws, call)
}

// live returns the targets that were not deleted yet.
func (d *fakeDevice) live() []*fakeTarget {
	var live []*fakeTarget
	for _, t := range d.targets {
		if t.deleted == 0 {
			live = append(live, t)
		}
	}
	return live
}

type fakeAssets map[string]*image.RGBA

func (a fakeAssets) LoadTexture(name string) (*image.RGBA, error) {
	img, ok := a[name]
	if !ok {
		return nil, fmt.Errorf("texture %q not found", name)
	}
	return img, nil
}

func newContext(width, height int, ratio float32) (*sketch.Context, *fakeDevice) {
	dev := &fakeDevice{}
	return &sketch.Context{
		Device:   dev,
		Scene:    libscn.NewScene(),
		Camera:   libscn.NewOrthographicCamera(100, mgl32.Vec3{0, 0, 500}, width, height),
		Viewport: sketch.Viewport{Width: width, Height: height, PixelRatio: ratio},
		Assets: fakeAssets{
			"background": image.NewRGBA(image.Rect(0, 0, 8, 4)),
		},
	}, dev
}

func resize(t *testing.T, ctx *sketch.Context, s sketch.Sketch, width, height int, ratio float32) {
	t.Helper()
	ctx.Viewport = sketch.Viewport{Width: width, Height: height, PixelRatio: ratio}
	ctx.Camera.Resize(width, height)
	if err := s.Resize(ctx); err != nil {
		t.Fatal(err)
	}
}

func checkClears(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("clears: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clear %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
