package main

import (
	"fmt"

	"refraction-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

type ImGui struct {
	IO        imgui.IO
	context   *imgui.Context
	FrameTime float32
	vao       libgl.UnboundVertexArray
	vbo       libgl.UnboundBuffer
	ebo       libgl.UnboundBuffer
	atlas     libgl.UnboundTexture
	shader    libgl.UnboundShaderPipeline
}

func NewImGui(vertexSrc, fragmentSrc string) (*ImGui, error) {
	vertexSh := libgl.NewShader(vertexSrc, gl.VERTEX_SHADER)
	if err := vertexSh.Compile(); err != nil {
		return nil, fmt.Errorf("could not compile imgui shader: %w", err)
	}
	fragmentSh := libgl.NewShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err := fragmentSh.Compile(); err != nil {
		vertexSh.Delete()
		return nil, fmt.Errorf("could not compile imgui shader: %w", err)
	}
	shader := libgl.NewPipeline()
	shader.SetDebugLabel("imgui")
	shader.Attach(vertexSh, gl.VERTEX_SHADER_BIT)
	shader.Attach(fragmentSh, gl.FRAGMENT_SHADER_BIT)

	context := imgui.CreateContext(nil)

	io := imgui.CurrentIO()
	win := glfw.GetCurrentContext()
	dispWidth, dispHeight := win.GetSize()
	io.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	imgui.StyleColorsDark()

	vao := libgl.NewVertexArray()
	vao.SetDebugLabel("imgui")
	_, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()
	vao.Layout(0, 0, 2, gl.FLOAT, false, vertexOffsetPos)
	vao.Layout(0, 1, 2, gl.FLOAT, false, vertexOffsetUv)
	vao.Layout(0, 2, 4, gl.UNSIGNED_BYTE, true, vertexOffsetCol)

	image := io.Fonts().TextureDataRGBA32()
	atlas := libgl.NewTexture(gl.TEXTURE_2D)
	atlas.SetDebugLabel("imgui font atlas")
	atlas.Allocate(1, gl.RGBA8, image.Width, image.Height)
	gl.TextureSubImage2D(atlas.Id(), 0, 0, 0, int32(image.Width), int32(image.Height), gl.RGBA, gl.UNSIGNED_BYTE, image.Pixels)
	gl.TextureParameteri(atlas.Id(), gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	io.Fonts().SetTextureID(imgui.TextureID(atlas.Id()))

	win.SetCursorPosCallback(func(w *glfw.Window, mx, my float64) {
		io.SetMousePosition(imgui.Vec2{X: float32(mx), Y: float32(my)})
	})
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		io.SetMouseButtonDown(int(button), action == glfw.Press)
	})
	var prevScroll glfw.ScrollCallback
	prevScroll = win.SetScrollCallback(func(w *glfw.Window, x, y float64) {
		io.AddMouseWheelDelta(float32(x), float32(y))
		if prevScroll != nil {
			prevScroll(w, x, y)
		}
	})
	win.SetCharCallback(func(w *glfw.Window, char rune) {
		io.AddInputCharacters(string(char))
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			io.KeyPress(int(key))
		}
		if action == glfw.Release {
			io.KeyRelease(int(key))
		}

		// Modifiers are not reliable across systems
		io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
		io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
		io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
		io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	})

	io.KeyMap(imgui.KeyTab, int(glfw.KeyTab))
	io.KeyMap(imgui.KeyLeftArrow, int(glfw.KeyLeft))
	io.KeyMap(imgui.KeyRightArrow, int(glfw.KeyRight))
	io.KeyMap(imgui.KeyUpArrow, int(glfw.KeyUp))
	io.KeyMap(imgui.KeyDownArrow, int(glfw.KeyDown))
	io.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	io.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	io.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	io.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))

	return &ImGui{
		IO:        io,
		context:   context,
		FrameTime: float32(glfw.GetTime()),
		vao:       vao,
		atlas:     atlas,
		shader:    shader,
	}, nil
}

// WantsMouse reports whether the last frame's GUI is under the cursor.
func (gui *ImGui) WantsMouse() bool {
	return gui.IO.WantCaptureMouse()
}

func (gui *ImGui) Draw() {
	libgl.PushGroup("Draw ImGui")
	defer libgl.PopGroup()

	io := imgui.CurrentIO()
	win := glfw.GetCurrentContext()

	dispWidth, dispHeight := win.GetSize()
	fbWidth, fbHeight := win.GetFramebufferSize()
	libgl.State.BindDrawFramebuffer(0)
	libgl.State.Viewport(0, 0, fbWidth, fbHeight)
	io.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	ortho := mgl32.Ortho2D(0, float32(dispWidth), float32(dispHeight), 0)

	time := float32(glfw.GetTime())
	io.SetDeltaTime(time - gui.FrameTime)
	gui.FrameTime = time

	gui.vao.Bind()
	gui.shader.Bind()
	gui.shader.VertexStage().SetUniform("u_proj_mat", ortho)

	libgl.State.SetEnabled(libgl.Blend, libgl.ScissorTest)
	libgl.State.BlendEquation(libgl.BlendFuncAdd)
	libgl.State.BlendFunc(libgl.BlendSrcAlpha, libgl.BlendOneMinusSrcAlpha)
	libgl.State.ActiveTexture(0)
	libgl.State.BindSampler(0, 0)

	imgui.Render()
	drawData := imgui.RenderedDrawData()
	drawData.ScaleClipRects(imgui.Vec2{
		X: float32(fbWidth) / float32(dispWidth),
		Y: float32(fbHeight) / float32(dispHeight),
	})

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		if gui.vbo == nil || vertexBufferSize > gui.vbo.Size() {
			if gui.vbo != nil {
				gui.vbo.Delete()
			}
			vertexSize, _, _, _ := imgui.VertexBufferLayout()
			gui.vbo = libgl.NewBuffer()
			gui.vbo.AllocateEmpty(vertexBufferSize, gl.DYNAMIC_STORAGE_BIT)
			gui.vao.BindBuffer(0, gui.vbo, 0, vertexSize)
		}
		if vertexBufferSize > 0 {
			gl.NamedBufferSubData(gui.vbo.Id(), 0, vertexBufferSize, vertexBuffer)
		}

		indexBuffer, indexBufferSize := list.IndexBuffer()
		if gui.ebo == nil || indexBufferSize > gui.ebo.Size() {
			if gui.ebo != nil {
				gui.ebo.Delete()
			}
			gui.ebo = libgl.NewBuffer()
			gui.ebo.AllocateEmpty(indexBufferSize, gl.DYNAMIC_STORAGE_BIT)
			gui.vao.BindElementBuffer(gui.ebo)
		}
		if indexBufferSize > 0 {
			gl.NamedBufferSubData(gui.ebo.Id(), 0, indexBufferSize, indexBuffer)
		}

		var indexType uint32
		indexSize := imgui.IndexBufferLayout()
		switch indexSize {
		case 1:
			indexType = gl.UNSIGNED_BYTE
		case 2:
			indexType = gl.UNSIGNED_SHORT
		case 4:
			indexType = gl.UNSIGNED_INT
		}

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				libgl.State.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
				clipRect := cmd.ClipRect()
				x, y := int(clipRect.X), int(fbHeight)-int(clipRect.W)
				if y <= 0 {
					y = 0
				}
				libgl.State.Scissor(x, y, int(clipRect.Z-clipRect.X), int(clipRect.W-clipRect.Y))
				gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, uintptr(cmd.IndexOffset()*indexSize), int32(cmd.VertexOffset()))
			}
		}
	}
}

func (gui *ImGui) Release() {
	gui.vao.Delete()
	if gui.vbo != nil {
		gui.vbo.Delete()
	}
	if gui.ebo != nil {
		gui.ebo.Delete()
	}
	gui.atlas.Delete()
	gui.shader.Delete()
	gui.context.Destroy()
}
