package main

import (
	"context"
	"flag"
	"image/color"
	"os"
	"runtime"
	"time"

	"github.com/gekko3d/trirast"
	"github.com/gekko3d/trirast/rt/gpu"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// options are the command-line settings. Zero values leave the config alone.
type options struct {
	configPath string
	src        string
	timeout    time.Duration
	width      int
	height     int
	out        string
	frames     int
	alt        bool
	caption    string
	debug      bool
}

func parseOptions(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("trirast", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "JSON config file overlaid on the defaults")
	fs.StringVar(&o.src, "url", "", "triangles file: http(s) URL, file:// URL or path")
	fs.DurationVar(&o.timeout, "timeout", 0, "fetch timeout for remote scenes")
	fs.IntVar(&o.width, "width", 0, "window/snapshot width")
	fs.IntVar(&o.height, "height", 0, "window/snapshot height")
	fs.StringVar(&o.out, "out", "", "render headless to this .png/.bmp instead of opening a window")
	fs.IntVar(&o.frames, "frames", 1, "frames to advance before the headless snapshot")
	fs.BoolVar(&o.alt, "alt", false, "toggle the alternate vertex position every two seconds")
	fs.StringVar(&o.caption, "caption", "", "caption stamped on the headless snapshot")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	err := fs.Parse(args)
	return o, err
}

// resolveConfig loads the config file and lets any flag that was set win over it.
func resolveConfig(o options) (trirast.Config, error) {
	cfg, err := trirast.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.src != "" {
		cfg.TrianglesURL = o.src
	}
	if o.timeout > 0 {
		cfg.FetchTimeout = o.timeout
	}
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	cfg.AltPosition = cfg.AltPosition || o.alt
	cfg.Debug = cfg.Debug || o.debug
	return cfg, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger := trirast.NewDefaultLogger("trirast", opts.debug)

	cfg, err := resolveConfig(opts)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	logger.SetDebug(cfg.Debug)

	sets, err := trirast.FetchTriangles(context.Background(), cfg.TrianglesURL, cfg.FetchTimeout, logger)
	if err != nil {
		logger.Errorf("load triangles: %v", err)
		os.Exit(1)
	}
	buffers, err := trirast.BuildBuffers(sets)
	if err != nil {
		logger.Errorf("build buffers: %v", err)
		os.Exit(1)
	}

	clock := &trirast.FrameClock{AltEnabled: cfg.AltPosition}

	if opts.out != "" {
		if err := snapshot(cfg, buffers, clock, opts.frames, opts.out, opts.caption, logger); err != nil {
			logger.Errorf("snapshot: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := view(cfg, buffers, clock, logger); err != nil {
		logger.Errorf("viewer: %v", err)
		os.Exit(1)
	}
}

func snapshot(cfg trirast.Config, buffers *trirast.SceneBuffers, clock *trirast.FrameClock, frames int, out, caption string, logger trirast.Logger) error {
	r, err := trirast.NewSoftwareRenderer(cfg.Camera, buffers, cfg.Width, cfg.Height, logger)
	if err != nil {
		return err
	}
	if frames < 1 {
		frames = 1
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		// Headless frames are spaced at 60 Hz so the alternate-position
		// toggle lands where it would in the viewer.
		if err := r.Render(clock.Next(start.Add(time.Duration(i) * time.Second / 60))); err != nil {
			return err
		}
	}
	trirast.DrawCaption(r.Image(), caption, color.White)
	if err := trirast.WriteImage(out, r.Image()); err != nil {
		return err
	}
	logger.Infof("wrote %s (%dx%d, %d frames)", out, cfg.Width, cfg.Height, frames)
	return nil
}

func view(cfg trirast.Config, buffers *trirast.SceneBuffers, clock *trirast.FrameClock, logger trirast.Logger) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer := gpu.NewRenderer(window, cfg.Camera, buffers, logger)
	if err := renderer.Init(); err != nil {
		return err
	}
	defer renderer.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		renderer.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := renderer.Render(clock.Next(time.Now())); err != nil {
			logger.Warnf("%v", err)
		}
	}
	return nil
}
