package main

import (
	_ "embed"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"refraction-gl/libgl"
	"refraction-gl/libscn"
	"refraction-gl/libutil"
	"refraction-gl/render"
	"refraction-gl/sketch"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	im "github.com/inkyblackness/imgui-go/v4"
	"golang.org/x/exp/slices"
)

//go:embed assets/shaders/imgui.vert
var Res_ImguiVshSrc string

//go:embed assets/shaders/imgui.frag
var Res_ImguiFshSrc string

const CameraZoom = 100

var CameraPosition = mgl32.Vec3{0, 0, 500}

var Arguments struct {
	EnableCompatibilityProfile bool
	Sketch                     string
	Orbit                      bool
	NoGui                      bool
	Assets                     string
	Width                      int
	Height                     int
}

func main() {
	flag.BoolVar(&Arguments.EnableCompatibilityProfile, "enable-compatibility-profile", Arguments.EnableCompatibilityProfile, "")
	flag.StringVar(&Arguments.Sketch, "sketch", "single", "sketch to show, one of "+strings.Join(sketch.Names(), ", "))
	flag.BoolVar(&Arguments.Orbit, "orbit", false, "start with orbit controls enabled")
	flag.BoolVar(&Arguments.NoGui, "no-gui", false, "hide the debug window")
	flag.StringVar(&Arguments.Assets, "assets", "assets/index.json", "asset index file")
	flag.IntVar(&Arguments.Width, "width", 1600, "window width")
	flag.IntVar(&Arguments.Height, "height", 900, "window height")
	flag.Parse()

	current, err := sketch.New(Arguments.Sketch)
	check(err)

	runtime.LockOSThread()
	err = glfw.Init()
	check(err)
	defer glfw.Terminate()

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	if Arguments.EnableCompatibilityProfile {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCompatProfile)
	} else {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	}
	ctx, err := glfw.CreateWindow(Arguments.Width, Arguments.Height, fmt.Sprintf("Refraction - %s", current.Name()), nil, nil)
	check(err)
	ctx.MakeContextCurrent()
	glfw.SwapInterval(1)

	err = gl.InitWithProcAddrFunc(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			return unsafe.Pointer(libutil.InvalidAddress)
		}
		return addr
	})
	check(err)

	libgl.Init()
	libgl.EnableDebugOutput()
	log.Printf("OpenGL %v, vendor class %v\n", gl.GoStr(gl.GetString(gl.VERSION)), libgl.Env.Vendor)

	Input = NewInputManager(ctx)

	pack := &libscn.DirPack{}
	check(pack.AddIndexFile(Arguments.Assets))

	dev := render.NewGLDevice()
	viewport := viewportOf(ctx)
	dev.SetScreenSize(ctx.GetFramebufferSize())

	camera := libscn.NewOrthographicCamera(CameraZoom, CameraPosition, viewport.Width, viewport.Height)
	orbit := NewOrbitControls(camera)
	orbit.Enabled = Arguments.Orbit

	sctx := &sketch.Context{
		Device:   dev,
		Scene:    libscn.NewScene(),
		Camera:   camera,
		Viewport: viewport,
		Assets:   pack,
	}
	check(current.Mount(sctx))

	var gui *ImGui
	if !Arguments.NoGui {
		gui, err = NewImGui(Res_ImguiVshSrc, Res_ImguiFshSrc)
		check(err)
	}

	for !ctx.ShouldClose() {
		glfw.PollEvents()
		Input.Update(ctx)

		if Input.IsKeyDown(glfw.KeyEscape) {
			ctx.SetShouldClose(true)
		}
		if Input.IsKeyTap(glfw.KeyTab) {
			current = nextSketch(current, sctx)
			ctx.SetTitle(fmt.Sprintf("Refraction - %s", current.Name()))
		}

		if vp := viewportOf(ctx); vp != sctx.Viewport {
			if vp.Width == 0 || vp.Height == 0 {
				// minimized
				glfw.WaitEvents()
				continue
			}
			sctx.Viewport = vp
			camera.Resize(vp.Width, vp.Height)
			dev.SetScreenSize(ctx.GetFramebufferSize())
			check(current.Resize(sctx))
		}

		if gui == nil || !gui.WantsMouse() {
			orbit.Update(Input, camera)
		}
		camera.UpdateViewMatrix()

		pointer := libutil.CursorToNDC(Input.CursorPos(), sctx.Viewport.Width, sctx.Viewport.Height)

		dev.SetTarget(nil)
		dev.Clear(render.ClearAll)
		current.Frame(sctx, sketch.Frame{Pointer: pointer})

		if Input.IsKeyTap(glfw.KeyF12) {
			capture(dev, "capture.png")
		}

		if gui != nil {
			drawDebugWindow(current, sctx, pointer, orbit)
			gui.Draw()
		}

		ctx.SwapBuffers()
	}

	current.Release(sctx)
	if gui != nil {
		gui.Release()
	}
	dev.Release()
}

// nextSketch replaces the current sketch with the next one by name.
func nextSketch(current sketch.Sketch, sctx *sketch.Context) sketch.Sketch {
	names := sketch.Names()
	i := slices.Index(names, current.Name())
	next, err := sketch.New(names[(i+1)%len(names)])
	check(err)
	current.Release(sctx)
	check(next.Mount(sctx))
	log.Printf("Switched to sketch %s\n", next.Name())
	return next
}

// capture writes the screen as it was drawn this frame, before the debug window.
func capture(dev *render.GLDevice, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Printf("Capture failed: %v\n", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, dev.ReadPixels(nil)); err != nil {
		log.Printf("Capture failed: %v\n", err)
		return
	}
	log.Printf("Captured screen to %s\n", path)
}

func viewportOf(ctx *glfw.Window) sketch.Viewport {
	w, h := ctx.GetSize()
	fbw, _ := ctx.GetFramebufferSize()
	ratio := float32(1)
	if w > 0 {
		ratio = float32(fbw) / float32(w)
	}
	return sketch.Viewport{Width: w, Height: h, PixelRatio: ratio}
}

func drawDebugWindow(current sketch.Sketch, sctx *sketch.Context, pointer mgl32.Vec2, orbit *OrbitControls) {
	im.NewFrame()
	im.Begin("main_window")

	im.Text(fmt.Sprintf("Sketch: %s (Tab for next, F12 to capture)", current.Name()))
	im.Text(fmt.Sprintf("Pointer: %.3f, %.3f", pointer[0], pointer[1]))
	dt := Input.TimeDelta()
	im.Text(fmt.Sprintf("Frame: %.2f ms (%.0f fps)", dt*1000, 1/dt))
	vp := sctx.Viewport
	w, h := vp.DeviceSize()
	im.Text(fmt.Sprintf("Viewport: %dx%d @ %.2f (%dx%d)", vp.Width, vp.Height, vp.PixelRatio, w, h))

	im.PushID("camera")
	if im.CollapsingHeader("Camera") {
		im.Checkbox("Orbit controls", &orbit.Enabled)
		im.DragFloat3("Pos", (*[3]float32)(&sctx.Camera.Position))
		if im.DragFloatV("Zoom", &sctx.Camera.Zoom, 1, MinZoom, MaxZoom, "%.1f", im.SliderFlagsAlwaysClamp) {
			sctx.Camera.UpdateProjectionMatrix()
		}
		if im.Button("Reset") {
			sctx.Camera.Position = CameraPosition
			sctx.Camera.Target = mgl32.Vec3{}
			sctx.Camera.Zoom = CameraZoom
			sctx.Camera.UpdateProjectionMatrix()
			orbit.Reset(sctx.Camera)
		}
	}
	im.PopID()

	im.PushID("scene")
	if im.CollapsingHeader("Scene") {
		for _, m := range sctx.Scene.Meshes {
			var layers []string
			for n := 0; n < 8; n++ {
				if m.Layers.IsEnabled(n) {
					layers = append(layers, strconv.Itoa(n))
				}
			}
			im.Checkbox(fmt.Sprintf("%s (layers %s)", m.Name, strings.Join(layers, " ")), &m.Visible)
		}
	}
	im.PopID()

	im.End()
}

func check(err error) {
	if err != nil {
		log.Panic(err)
	}
}
