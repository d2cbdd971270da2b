// Command litview opens a window and draws a normal-mapped scene lit by one point light.
//
// Controls: drag with the middle mouse button or hold WASD to orbit, scroll or hold Q/E to
// zoom, L toggles the light orbit, M the light marker, R resets the camera, Esc quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine"
	"github.com/Carmen-Shannon/oxy-lit/engine/config"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/lit"
	"github.com/Carmen-Shannon/oxy-lit/engine/scene"
	"github.com/Carmen-Shannon/oxy-lit/engine/window"
)

func init() {
	// glfw must run on the main thread
	runtime.LockOSThread()
}

func run() error {
	configPath := flag.String("config", "", "scene file (YAML); the built-in quad when empty")
	verbose := flag.Bool("v", false, "debug logging")
	marker := flag.Bool("marker", true, "draw a cube at the light")
	profile := flag.Bool("profile", false, "log frame statistics every second")
	software := flag.Bool("software", false, "use the fallback (CPU) adapter")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}

	presentMode := renderer.PresentModeUncapped
	if *cfg.Window.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Window.MSAA)),
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(*software),
	)
	if err != nil {
		win.Close()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	if err := r.RegisterPipelines(lit.NewPipelines(true)...); err != nil {
		r.Release()
		win.Close()
		return err
	}

	aspect := float32(win.Width()) / float32(max(win.Height(), 1))
	s, err := cfg.NewScene(aspect, r, scene.WithLightMarker(*marker))
	if err != nil {
		r.Release()
		win.Close()
		return fmt.Errorf("failed to build scene: %w", err)
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(s),
		engine.WithProfiling(*profile),
	)
	return eng.Run()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "litview: %v\n", err)
		os.Exit(1)
	}
}
