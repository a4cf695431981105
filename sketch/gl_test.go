package sketch

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"runtime"
	"testing"
	"unsafe"

	"refraction-gl/libgl"
	"refraction-gl/libscn"
	"refraction-gl/libutil"
	"refraction-gl/render"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

var onMain chan func()
var onMainDone chan struct{}

// set when TestMain could create an OpenGL 4.5 context
var glAvailable bool

// The GL tests draw into targets of glSize x glSize device pixels.
const glSize = 64

func TestMain(m *testing.M) {
	runtime.LockOSThread()

	if err := initGL(); err != nil {
		log.Printf("OpenGL tests are skipped: %v\n", err)
		os.Exit(m.Run())
	}
	glAvailable = true

	onMain = make(chan func())
	onMainDone = make(chan struct{})

	go func() {
		os.Exit(m.Run())
	}()

	for fn := range onMain {
		fn()
		onMainDone <- struct{}{}
	}
}

func initGL() error {
	if err := glfw.Init(); err != nil {
		return err
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	ctx, err := glfw.CreateWindow(glSize, glSize, "Testing Window", nil, nil)
	if err != nil {
		glfw.Terminate()
		return err
	}
	ctx.MakeContextCurrent()

	err = gl.InitWithProcAddrFunc(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			return unsafe.Pointer(libutil.InvalidAddress)
		}
		return addr
	})
	if err != nil {
		return err
	}

	libgl.Init()
	libgl.EnableDebugOutput()
	return nil
}

// runGL runs fn on the thread that owns the context. fn must not call
// t.Fatal, that would stop the main goroutine.
func runGL(t *testing.T, fn func()) {
	t.Helper()
	if !glAvailable {
		t.Skip("no OpenGL 4.5 context")
	}
	onMain <- fn
	<-onMainDone
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// gradientImage stores u in red and v in green at every texel center, in
// texture coordinates with v = 0 at the bottom row. Linear filtering and box
// filtered mip levels both reproduce the same linear function.
func gradientImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		v := 1 - (float32(y)+0.5)/float32(size)
		for x := 0; x < size; x++ {
			u := (float32(x) + 0.5) / float32(size)
			img.SetRGBA(x, y, color.RGBA{R: unorm(u), G: unorm(v), B: 128, A: 255})
		}
	}
	return img
}

func unorm(v float32) uint8 {
	return uint8(libutil.Clamp(v, 0, 1)*255 + 0.5)
}

// gradient samples gradientImage the way a clamped sampler does.
func gradient(uv mgl32.Vec2) mgl32.Vec3 {
	return mgl32.Vec3{libutil.Clamp(uv[0], 0, 1), libutil.Clamp(uv[1], 0, 1), 128.0 / 255}
}

func pixel(img *image.RGBA, x, y int) mgl32.Vec3 {
	c := img.RGBAAt(x, y)
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// drawPlane draws a plane covering the whole target with material and
// returns the target contents. Its rotation tilts the plane normal.
func drawPlane(dev *render.GLDevice, camera *libscn.OrthographicCamera, material *libscn.Material, plane *libscn.Mesh) (*image.RGBA, error) {
	if err := dev.Compile(material); err != nil {
		return nil, err
	}
	target, err := dev.NewTarget("test", glSize, glSize, render.FormatRGBA8)
	if err != nil {
		return nil, err
	}
	defer target.Delete()

	scene := libscn.NewScene()
	scene.Add(plane)
	render.Run(dev, scene, camera, []render.Pass{
		{Name: "test", Target: target, Layers: libscn.AllLayers, Clear: render.ClearAll},
	})
	return dev.ReadPixels(target), nil
}

func newTestPlane(material *libscn.Material, rotation mgl32.Vec3) *libscn.Mesh {
	plane := libscn.NewMesh("plane", libscn.Plane(1, 1), material)
	// wide enough to cover the view while tilted
	plane.Scale = mgl32.Vec3{4, 4, 1}
	plane.Rotation = rotation
	return plane
}

func testCamera() *libscn.OrthographicCamera {
	return libscn.NewOrthographicCamera(100, mgl32.Vec3{0, 0, 500}, glSize, glSize)
}

// fragment returns the gl_FragCoord of an image pixel and the direction from
// the camera to the point of the plane through the origin seen there.
func fragment(camera *libscn.OrthographicCamera, normal mgl32.Vec3, x, y int) (mgl32.Vec2, mgl32.Vec3) {
	fragCoord := mgl32.Vec2{float32(x) + 0.5, float32(glSize-y) - 0.5}
	ext := camera.Extents()
	wx := (fragCoord[0]/glSize*2 - 1) * ext[0] / 2
	wy := (fragCoord[1]/glSize*2 - 1) * ext[1] / 2
	wz := -(normal[0]*wx + normal[1]*wy) / normal[2]
	view := mgl32.Vec3{wx, wy, wz}.Sub(camera.Position).Normalize()
	return fragCoord, view
}

// inside reports whether uv stays clear of the texture border, where the
// clamped mip levels no longer match the linear gradient.
func inside(uvs ...mgl32.Vec2) bool {
	for _, uv := range uvs {
		if uv[0] < 0.08 || uv[0] > 0.92 || uv[1] < 0.08 || uv[1] > 0.92 {
			return false
		}
	}
	return true
}

func compareColors(got, want mgl32.Vec3, tolerance float32) error {
	for i := range got {
		if math32.Abs(got[i]-want[i]) > tolerance {
			return fmt.Errorf("got %v, want %v", got, want)
		}
	}
	return nil
}

func TestTextShaderMatchesShadeText(t *testing.T) {
	levels := []uint8{0, 60, 77, 128, 179, 204, 230, 255}
	results := make([]*image.RGBA, len(levels))
	var err error

	runGL(t, func() {
		dev := render.NewGLDevice()
		defer dev.Release()
		for i, level := range levels {
			tex := dev.NewTexture("text", uniformImage(4, 4, color.RGBA{R: level, A: 255}))
			material := libscn.NewMaterial("text", textShader)
			material.Textures[0] = libscn.Fixed(tex)
			results[i], err = drawPlane(dev, testCamera(), material, newTestPlane(material, mgl32.Vec3{}))
			tex.Delete()
			if err != nil {
				return
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, level := range levels {
		v := ShadeText(float32(level) / 255)
		want := mgl32.Vec3{v, v, v}
		for _, p := range [][2]int{{0, 0}, {glSize / 2, glSize / 2}, {glSize - 1, glSize - 1}} {
			if err := compareColors(pixel(results[i], p[0], p[1]), want, 1.5/255); err != nil {
				t.Errorf("red %d at %v: %v", level, p, err)
			}
		}
	}
}

func TestRefractionShaderMatchesShadeRefraction(t *testing.T) {
	rotation := mgl32.Vec3{0, 0.5, 0}
	camera := testCamera()
	var img *image.RGBA
	var err error

	runGL(t, func() {
		dev := render.NewGLDevice()
		defer dev.Release()
		env := dev.NewTexture("environment", gradientImage(256))
		defer env.Delete()

		material := libscn.NewMaterial("refraction", refractionShader)
		material.Textures[0] = libscn.Fixed(env)
		material.Uniforms["u_resolution"] = mgl32.Vec2{glSize, glSize}
		img, err = drawPlane(dev, camera, material, newTestPlane(material, rotation))
	})
	if err != nil {
		t.Fatal(err)
	}

	plane := newTestPlane(nil, rotation)
	normal := plane.NormalMatrix().Mul3x1(mgl32.Vec3{0, 0, 1}).Normalize()
	resolution := mgl32.Vec2{glSize, glSize}
	compared := 0
	for y := 0; y < glSize; y += 3 {
		for x := 0; x < glSize; x += 3 {
			fragCoord, view := fragment(camera, normal, x, y)
			var sampled mgl32.Vec2
			want := ShadeRefraction(func(uv mgl32.Vec2) mgl32.Vec3 {
				sampled = uv
				return gradient(uv)
			}, fragCoord, resolution, view, normal)

			// skip the tile seams, the derivatives there select the smallest mip level
			tile := mgl32.Vec2{fract(fragCoord[0]/glSize*RefractionTiles + 0.5), fract(fragCoord[1]/glSize*RefractionTiles - 0.5)}
			if !inside(sampled) || tile[0] < 0.1 || tile[0] > 0.9 || tile[1] < 0.1 || tile[1] > 0.9 {
				continue
			}
			compared++
			if err := compareColors(pixel(img, x, y), want, 3.0/255); err != nil {
				t.Errorf("pixel (%d, %d): %v", x, y, err)
			}
		}
	}
	if compared < 20 {
		t.Errorf("only %d pixels were compared", compared)
	}
}

func TestDispersionShaderMatchesShadeDispersion(t *testing.T) {
	rotation := mgl32.Vec3{0, 0.5, 0}
	back := color.RGBA{R: 51, G: 102, B: 153, A: 255}
	camera := testCamera()
	var img *image.RGBA
	var err error

	runGL(t, func() {
		dev := render.NewGLDevice()
		defer dev.Release()
		env := dev.NewTexture("environment", gradientImage(256))
		defer env.Delete()
		backface := dev.NewTexture("backface normals", uniformImage(4, 4, back))
		defer backface.Delete()

		material := libscn.NewMaterial("dispersion", dispersionShader)
		material.Textures[0] = libscn.Fixed(env)
		material.Textures[1] = libscn.Fixed(backface)
		material.Uniforms["u_resolution"] = mgl32.Vec2{glSize, glSize}
		img, err = drawPlane(dev, camera, material, newTestPlane(material, rotation))
	})
	if err != nil {
		t.Fatal(err)
	}

	plane := newTestPlane(nil, rotation)
	normal := plane.NormalMatrix().Mul3x1(mgl32.Vec3{0, 0, 1}).Normalize()
	backNormal := mgl32.Vec3{float32(back.R) / 255, float32(back.G) / 255, float32(back.B) / 255}
	resolution := mgl32.Vec2{glSize, glSize}
	compared := 0
	for y := 0; y < glSize; y += 3 {
		for x := 0; x < glSize; x += 3 {
			fragCoord, view := fragment(camera, normal, x, y)
			var sampled []mgl32.Vec2
			want := ShadeDispersion(func(uv mgl32.Vec2) mgl32.Vec3 {
				sampled = append(sampled, uv)
				return gradient(uv)
			}, fragCoord, resolution, view, normal, backNormal)

			if !inside(sampled...) {
				continue
			}
			compared++
			if err := compareColors(pixel(img, x, y), want, 3.0/255); err != nil {
				t.Errorf("pixel (%d, %d): %v", x, y, err)
			}
		}
	}
	if compared < 20 {
		t.Errorf("only %d pixels were compared", compared)
	}
}

type imageAssets map[string]*image.RGBA

func (a imageAssets) LoadTexture(name string) (*image.RGBA, error) {
	img, ok := a[name]
	if !ok {
		return nil, fmt.Errorf("texture %q not found", name)
	}
	return img, nil
}

func newGLContext(dev *render.GLDevice, width, height int, background color.RGBA) *Context {
	dev.SetScreenSize(width, height)
	return &Context{
		Device:   dev,
		Scene:    libscn.NewScene(),
		Camera:   libscn.NewOrthographicCamera(100, mgl32.Vec3{0, 0, 500}, width, height),
		Viewport: Viewport{Width: width, Height: height, PixelRatio: 1},
		Assets:   imageAssets{BackgroundTexture: uniformImage(8, 4, background)},
	}
}

// renderSketch mounts a sketch, draws a few frames across a resize and
// returns the environment target of the last frame, if the sketch has one.
func renderSketch(name string, background color.RGBA) (*image.RGBA, error) {
	s, err := New(name)
	if err != nil {
		return nil, err
	}
	dev := render.NewGLDevice()
	defer dev.Release()
	ctx := newGLContext(dev, 2*glSize, glSize, background)
	if err := s.Mount(ctx); err != nil {
		return nil, err
	}
	defer s.Release(ctx)

	pointers := []mgl32.Vec2{{0, 0}, {0.5, -0.5}, {-1, 1}}
	for i, pointer := range pointers {
		if i == 1 {
			ctx.Viewport = Viewport{Width: 4 * glSize, Height: 2 * glSize, PixelRatio: 1}
			ctx.Camera.Resize(ctx.Viewport.Width, ctx.Viewport.Height)
			dev.SetScreenSize(ctx.Viewport.DeviceSize())
			if err := s.Resize(ctx); err != nil {
				return nil, err
			}
		}
		dev.SetTarget(nil)
		dev.Clear(render.ClearAll)
		s.Frame(ctx, Frame{Pointer: pointer})
	}

	switch s := s.(type) {
	case *Refraction:
		return dev.ReadPixels(s.env.Target()), nil
	case *Dispersion:
		return dev.ReadPixels(s.env.Target()), nil
	}
	return nil, nil
}

func TestSingleSketchEnvironmentIsText(t *testing.T) {
	var img *image.RGBA
	var err error
	runGL(t, func() {
		img, err = renderSketch("single", color.RGBA{A: 255})
	})
	if err != nil {
		t.Fatal(err)
	}

	if w, h := img.Rect.Dx(), img.Rect.Dy(); w != 4*glSize || h != 2*glSize {
		t.Errorf("environment is %dx%d after the resize", w, h)
	}
	brightest := uint8(0)
	limit := unorm(TextBrightness) + 1
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		if r != g || g != b {
			t.Fatalf("environment pixel %d is not grey: %v %v %v", i/4, r, g, b)
		}
		if r > limit {
			t.Fatalf("environment pixel %d is brighter than the text: %v", i/4, r)
		}
		if r > brightest {
			brightest = r
		}
	}
	if brightest < 64 {
		t.Errorf("no text in the environment, brightest pixel %v", brightest)
	}
}

func TestDualSketchEnvironmentIsBackground(t *testing.T) {
	background := color.RGBA{R: 40, G: 80, B: 120, A: 255}
	var img *image.RGBA
	var err error
	runGL(t, func() {
		img, err = renderSketch("dual", background)
	})
	if err != nil {
		t.Fatal(err)
	}

	want := mgl32.Vec3{40.0 / 255, 80.0 / 255, 120.0 / 255}
	for _, p := range [][2]int{{0, 0}, {img.Rect.Dx() / 2, img.Rect.Dy() / 2}, {img.Rect.Dx() - 1, img.Rect.Dy() - 1}} {
		if err := compareColors(pixel(img, p[0], p[1]), want, 1.5/255); err != nil {
			t.Errorf("environment at %v: %v", p, err)
		}
	}
}

func TestTextSketchRenders(t *testing.T) {
	var err error
	runGL(t, func() {
		_, err = renderSketch("text", color.RGBA{A: 255})
	})
	if err != nil {
		t.Fatal(err)
	}
}
