package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	"skyibl/libgl"
	"skyibl/liblog"
	"skyibl/libutil"
	"skyibl/sky"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
	"go.uber.org/zap"
)

var args = struct {
	config string
	width  int
	height int
	debug  bool
	watch  bool
}{
	width:  1600,
	height: 900,
	watch:  true,
}

// view modes of the panel
const (
	viewSky = iota
	viewEnvironment
	viewIrradiance
	viewSpecular
)

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <env.iblenv | px nx py ny pz nz>\n\n", exe)
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	flag.CommandLine.SetOutput(os.Stderr)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.StringVar(&args.config, "config", args.config, "toml file with the bake options")
	flag.IntVar(&args.width, "width", args.width, "window width")
	flag.IntVar(&args.height, "height", args.height, "window height")
	flag.BoolVar(&args.debug, "debug", args.debug, "log to the console at debug level")
	flag.BoolVar(&args.watch, "watch", args.watch, "rebuild the sky when an input file changes")
	flag.Parse()

	if (flag.NArg() != 1 && flag.NArg() != 6) || args.width < 1 || args.height < 1 {
		printGeneralUsage()
	}

	harderr(liblog.Init(args.debug))
	defer liblog.Sync()

	inputs := flag.Args()
	opts := loadOptions()

	runtime.LockOSThread()
	harderr(glfw.Init())
	defer glfw.Terminate()

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	win, err := glfw.CreateWindow(args.width, args.height, "Sky Viewer", nil, nil)
	harderr(err)
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	err = gl.InitWithProcAddrFunc(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			return unsafe.Pointer(libutil.InvalidAddress)
		}
		return addr
	})
	harderr(err)
	libgl.EnableDebugOutput()

	fbWidth, fbHeight := win.GetFramebufferSize()
	dev := libgl.NewDevice(fbWidth, fbHeight)
	defer dev.Delete()
	ctx := dev.Context()

	mesh := libgl.NewCubeMesh()
	defer mesh.Delete()
	res, err := sky.LoadResources(dev, mesh)
	harderr(err)
	defer res.Release()

	current, err := sky.New(dev, ctx, newSource(inputs), res, opts)
	harderr(err)
	defer func() { current.Release() }()

	var changes <-chan string
	if args.watch {
		watched := append([]string{}, inputs...)
		if args.config != "" {
			watched = append(watched, args.config)
		}
		watcher, err := NewWatcher(watched...)
		harderr(err)
		defer watcher.Close()
		changes = watcher.Changed
	}

	cam := &Camera{
		VerticalFov:       70,
		ViewportDimension: mgl32.Vec2{float32(fbWidth), float32(fbHeight)},
		ClippingPlanes:    mgl32.Vec2{0.1, 10},
	}
	cam.UpdateViewMatrix()
	cam.UpdateProjectionMatrix()

	input := NewInputManager(win)
	gui, err := NewImGui(dev, win, input.OnScroll)
	harderr(err)
	defer gui.Delete()

	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		ctx.Resize(width, height)
		cam.ViewportDimension = mgl32.Vec2{float32(width), float32(height)}
		cam.UpdateProjectionMatrix()
	})

	mode := viewSky
	var lod float32
	reload := false

	for !win.ShouldClose() {
		glfw.PollEvents()
		input.Update(win)

		select {
		case path := <-changes:
			liblog.Log.Info("input changed", zap.String("path", path))
			reload = true
		default:
		}
		if reload {
			reload = false
			opts = reloadOptions(opts)
			current = rebuild(dev, ctx, inputs, res, opts, current)
		}

		if !gui.IO.WantCaptureKeyboard() {
			if input.IsKeyTap(glfw.KeyEscape) {
				win.SetShouldClose(true)
			}
			if input.IsKeyTap(glfw.KeyR) {
				reload = true
			}
		}
		if !gui.IO.WantCaptureMouse() {
			if input.IsDragging() {
				cam.Look(input.CursorDelta(), 0.25)
			}
			if scroll := input.ScrollDelta(); scroll != 0 {
				cam.Zoom(scroll * 2)
			}
		}
		cam.UpdateViewMatrix()

		libgl.State.DepthMask(true)
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		switch mode {
		case viewEnvironment:
			current.DrawPreview(cam, current.EnvironmentMap(), 0)
		case viewIrradiance:
			current.DrawPreview(cam, current.IrradianceMap(), 0)
		case viewSpecular:
			current.DrawPreview(cam, current.SpecularMap(), lod)
		default:
			current.Draw(cam)
		}

		gui.NewFrame(win)
		imgui.Begin("Sky")
		if imgui.RadioButton("Sky", mode == viewSky) {
			mode = viewSky
		}
		if imgui.RadioButton("Environment", mode == viewEnvironment) {
			mode = viewEnvironment
		}
		if imgui.RadioButton("Irradiance", mode == viewIrradiance) {
			mode = viewIrradiance
		}
		if imgui.RadioButton("Specular", mode == viewSpecular) {
			mode = viewSpecular
		}
		if mode == viewSpecular {
			imgui.SliderFloat("Lod", &lod, 0, float32(current.SpecularMipLevels()-1))
		}
		imgui.Separator()
		imgui.DragFloat("Fov", &cam.VerticalFov)
		imgui.DragFloat3("Dir", (*[3]float32)(&cam.Orientation))
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Irradiance %d, Specular %d (%d mips), BRDF %d",
			opts.IrradianceSize, opts.SpecularSize, current.SpecularMipLevels(), opts.BRDFSize))
		if imgui.Button("Reload") {
			reload = true
		}
		imgui.End()
		cam.VerticalFov = mgl32.Clamp(cam.VerticalFov, 10, 120)
		cam.UpdateProjectionMatrix()

		gui.Draw(win, ctx)
		win.SwapBuffers()
	}
}

func newSource(inputs []string) sky.Source {
	if len(inputs) == 1 {
		return sky.FromPackedFile(inputs[0])
	}
	return sky.FromFaceFiles([6]string(inputs))
}

func loadOptions() sky.Options {
	if args.config == "" {
		return sky.DefaultOptions()
	}
	opts, err := sky.LoadOptions(args.config)
	harderr(err)
	return opts
}

// reloadOptions keeps prev when the config file became invalid.
func reloadOptions(prev sky.Options) sky.Options {
	if args.config == "" {
		return prev
	}
	opts, err := sky.LoadOptions(args.config)
	if err != nil {
		liblog.Log.Error("could not reload options", zap.Error(err))
		return prev
	}
	return opts
}

// rebuild constructs a new sky before releasing prev, prev is kept when construction fails.
func rebuild(dev *libgl.Device, ctx *libgl.Context, inputs []string, res sky.Resources, opts sky.Options, prev *sky.Sky) *sky.Sky {
	next, err := sky.New(dev, ctx, newSource(inputs), res, opts)
	if err != nil {
		liblog.Log.Error("could not rebuild sky", zap.Error(err))
		return prev
	}
	prev.Release()
	return next
}

func harderr(err error) {
	if err != nil {
		liblog.Log.Error("fatal", zap.Error(err))
		liblog.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
