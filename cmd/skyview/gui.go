package main

import (
	_ "embed"
	"fmt"
	"unsafe"

	"skyibl/gfx"
	"skyibl/libgl"
	"skyibl/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

//go:embed shaders/imgui_vs.glsl
var imguiVsSrc string

//go:embed shaders/imgui_ps.glsl
var imguiPsSrc string

const fontAtlasId = imgui.TextureID(1)

type ImGui struct {
	IO        imgui.IO
	FrameTime float32
	context   *imgui.Context
	vao       libgl.UnboundVertexArray
	vbo       libgl.UnboundBuffer
	ebo       libgl.UnboundBuffer
	vs, ps    gfx.Shader
	atlas     gfx.Texture
	sampler   gfx.Sampler
	raster    gfx.RasterState
	depth     gfx.DepthState
}

// NewImGui installs the window callbacks, onScroll receives wheel movement
// imgui did not capture.
func NewImGui(dev *libgl.Device, win *glfw.Window, onScroll func(y float64)) (gui *ImGui, err error) {
	var cleanup libutil.Cleanup
	defer func() {
		if err != nil {
			cleanup.Release()
		}
	}()

	gui = &ImGui{
		context:   imgui.CreateContext(nil),
		FrameTime: float32(glfw.GetTime()),
	}
	cleanup.Add(releaser(gui.context.Destroy))
	io := imgui.CurrentIO()
	gui.IO = io
	io.SetIniFilename("")
	imgui.StyleColorsDark()

	if gui.vs, err = dev.CreateShader(gfx.ShaderDesc{Name: "imgui_vs", Stage: gfx.StageVertex, Source: imguiVsSrc}); err != nil {
		return nil, fmt.Errorf("could not create imgui shader: %w", err)
	}
	cleanup.Add(gui.vs)
	if gui.ps, err = dev.CreateShader(gfx.ShaderDesc{Name: "imgui_ps", Stage: gfx.StagePixel, Source: imguiPsSrc}); err != nil {
		return nil, fmt.Errorf("could not create imgui shader: %w", err)
	}
	cleanup.Add(gui.ps)

	image := io.Fonts().TextureDataRGBA32()
	gui.atlas, err = dev.CreateTexture(gfx.TextureDesc{
		Label:  "imgui_font_atlas",
		Kind:   gfx.Texture2D,
		Width:  image.Width,
		Height: image.Height,
		Layers: 1,
		Levels: 1,
		Format: gfx.FormatRGBA8,
		Usage:  gfx.UsageShaderResource,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create font atlas: %w", err)
	}
	cleanup.Add(gui.atlas)
	pixels := unsafe.Slice((*uint8)(image.Pixels), image.Width*image.Height*4)
	if err = dev.Context().UpdateTexture(gui.atlas, 0, 0, pixels); err != nil {
		return nil, fmt.Errorf("could not upload font atlas: %w", err)
	}
	io.Fonts().SetTextureID(fontAtlasId)

	if gui.sampler, err = dev.CreateSampler(gfx.SamplerDesc{Wrap: gfx.WrapClamp}); err != nil {
		return nil, err
	}
	cleanup.Add(gui.sampler)
	if gui.raster, err = dev.CreateRasterState(gfx.RasterDesc{Cull: gfx.CullNone, Fill: gfx.FillSolid, DepthClip: true}); err != nil {
		return nil, err
	}
	cleanup.Add(gui.raster)
	if gui.depth, err = dev.CreateDepthState(gfx.DepthDesc{Func: gfx.CompareAlways}); err != nil {
		return nil, err
	}
	cleanup.Add(gui.depth)

	gui.vao = libgl.NewVertexArray()
	_, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()
	gui.vao.Layout(0, 0, 2, gl.FLOAT, false, vertexOffsetPos)
	gui.vao.Layout(0, 1, 2, gl.FLOAT, false, vertexOffsetUv)
	gui.vao.Layout(0, 2, 4, gl.UNSIGNED_BYTE, true, vertexOffsetCol)
	cleanup.AddDeleter(gui.vao)
	gui.vbo = libgl.NewBuffer()
	gui.ebo = libgl.NewBuffer()
	cleanup.AddDeleter(gui.vbo)
	cleanup.AddDeleter(gui.ebo)

	// the gui is the only blended pass
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gui.installCallbacks(win, onScroll)
	return gui, nil
}

func (gui *ImGui) installCallbacks(win *glfw.Window, onScroll func(y float64)) {
	io := gui.IO
	win.SetCursorPosCallback(func(w *glfw.Window, mx, my float64) {
		io.SetMousePosition(imgui.Vec2{X: float32(mx), Y: float32(my)})
	})
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		io.SetMouseButtonDown(int(button), action == glfw.Press)
	})
	win.SetScrollCallback(func(w *glfw.Window, x, y float64) {
		io.AddMouseWheelDelta(float32(x), float32(y))
		if !io.WantCaptureMouse() && onScroll != nil {
			onScroll(y)
		}
	})
	win.SetCharCallback(func(w *glfw.Window, char rune) {
		io.AddInputCharacters(string(char))
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyUnknown {
			return
		}
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
	io.KeyMap(imgui.KeyPageUp, int(glfw.KeyPageUp))
	io.KeyMap(imgui.KeyPageDown, int(glfw.KeyPageDown))
	io.KeyMap(imgui.KeyHome, int(glfw.KeyHome))
	io.KeyMap(imgui.KeyEnd, int(glfw.KeyEnd))
	io.KeyMap(imgui.KeyInsert, int(glfw.KeyInsert))
	io.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	io.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	io.KeyMap(imgui.KeySpace, int(glfw.KeySpace))
	io.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	io.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))
	io.KeyMap(imgui.KeyA, int(glfw.KeyA))
	io.KeyMap(imgui.KeyC, int(glfw.KeyC))
	io.KeyMap(imgui.KeyV, int(glfw.KeyV))
	io.KeyMap(imgui.KeyX, int(glfw.KeyX))
	io.KeyMap(imgui.KeyY, int(glfw.KeyY))
	io.KeyMap(imgui.KeyZ, int(glfw.KeyZ))
}

// NewFrame must be called before any widget of the frame.
func (gui *ImGui) NewFrame(win *glfw.Window) {
	dispWidth, dispHeight := win.GetSize()
	gui.IO.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})

	time := float32(glfw.GetTime())
	gui.IO.SetDeltaTime(time - gui.FrameTime)
	gui.FrameTime = time
	imgui.NewFrame()
}

// Draw renders the frame into the backbuffer of ctx.
func (gui *ImGui) Draw(win *glfw.Window, ctx *libgl.Context) {
	defer libgl.PushDebugGroup("Draw ImGui")()

	dispWidth, dispHeight := win.GetSize()
	fbWidth, fbHeight := win.GetFramebufferSize()
	imgui.Render()
	if dispWidth == 0 || dispHeight == 0 {
		return
	}

	prevViewport := ctx.Viewport()
	ctx.SetRenderTargets(ctx.Backbuffer, nil)
	ctx.SetViewport(gfx.Viewport{Width: float32(fbWidth), Height: float32(fbHeight), MaxDepth: 1})
	ctx.SetRasterState(gui.raster)
	ctx.SetDepthState(gui.depth)
	libgl.State.Enable(libgl.Blend)
	libgl.State.Enable(libgl.ScissorTest)
	defer func() {
		libgl.State.Disable(libgl.Blend)
		libgl.State.Disable(libgl.ScissorTest)
		ctx.SetRasterState(nil)
		ctx.SetDepthState(nil)
		ctx.SetRenderTargets(ctx.Backbuffer, ctx.DepthBuffer)
		ctx.SetViewport(prevViewport)
	}()

	gui.vs.SetMatrix("u_proj_mat", mgl32.Ortho2D(0, float32(dispWidth), float32(dispHeight), 0))
	gui.vs.Activate()
	gui.vs.Upload()
	gui.ps.SetTexture("u_texture", gui.atlas)
	gui.ps.SetSampler("u_texture", gui.sampler)
	gui.ps.Activate()
	gui.ps.Upload()
	gui.vao.Bind()

	drawData := imgui.RenderedDrawData()
	drawData.ScaleClipRects(imgui.Vec2{
		X: float32(fbWidth) / float32(dispWidth),
		Y: float32(fbHeight) / float32(dispHeight),
	})

	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	var indexType uint32
	switch indexSize {
	case 1:
		indexType = gl.UNSIGNED_BYTE
	case 2:
		indexType = gl.UNSIGNED_SHORT
	case 4:
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		if vertexBufferSize > gui.vbo.Size() {
			gui.vbo.Delete()
			gui.vbo = libgl.NewBuffer()
			gui.vbo.AllocateEmptyMutable(vertexBufferSize, gl.STREAM_DRAW)
			gui.vao.BindBuffer(0, gui.vbo, 0, vertexSize)
		}
		gui.vbo.WritePointer(0, vertexBufferSize, vertexBuffer)

		indexBuffer, indexBufferSize := list.IndexBuffer()
		if indexBufferSize > gui.ebo.Size() {
			gui.ebo.Delete()
			gui.ebo = libgl.NewBuffer()
			gui.ebo.AllocateEmptyMutable(indexBufferSize, gl.STREAM_DRAW)
			gui.vao.BindElementBuffer(gui.ebo)
		}
		gui.ebo.WritePointer(0, indexBufferSize, indexBuffer)

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}
			clipRect := cmd.ClipRect()
			x, y := int(clipRect.X), fbHeight-int(clipRect.W)
			if y <= 0 {
				y = 0
			}
			libgl.State.Scissor(x, y, int(clipRect.Z-clipRect.X), int(clipRect.W-clipRect.Y))
			// imgui indices are not uint32 so the draw bypasses the gfx context
			gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, uintptr(cmd.IndexOffset()*indexSize), int32(cmd.VertexOffset()))
		}
	}
}

func (gui *ImGui) Delete() {
	gui.vao.Delete()
	gui.vbo.Delete()
	gui.ebo.Delete()
	gui.vs.Release()
	gui.ps.Release()
	gui.atlas.Release()
	gui.sampler.Release()
	gui.raster.Release()
	gui.depth.Release()
	gui.context.Destroy()
}

type releaser func()

func (fn releaser) Release() {
	fn()
}
