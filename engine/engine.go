// Package engine runs the viewer: a fixed-rate update loop, a render loop and the window event loop.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/profiler"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lit/engine/scene"
	"github.com/Carmen-Shannon/oxy-lit/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration

	input input
	home  cameraPose
}

// Engine is the main entry point for the viewer.
// It owns one scene and drives its update, upload and draw each frame.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil
	Window() window.Window

	// Renderer returns the renderer the scene draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer, or nil
	Renderer() renderer.Renderer

	// Scene returns the scene being drawn.
	//
	// Returns:
	//   - scene.Scene: the scene, or nil
	Scene() scene.Scene

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetTickRate sets the update rate in ticks per second.
	// The scene is advanced and the tick callback called at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after the scene update.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the update and render goroutines and processes window events on the calling
	// goroutine until the window closes. The scene and renderer are released before it returns.
	//
	// Returns:
	//   - error: ErrNoWindow, or nil after a clean shutdown
	Run() error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine with the provided options and wires window input to the
// camera controller and the viewer key bindings.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(time.Second),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if ctrl := e.controller(); ctrl != nil {
		e.home = poseOf(ctrl)
	}
	if e.window != nil {
		e.bindWindow()
	}
	return e
}

func (e *engine) bindWindow() {
	e.window.SetResizeCallback(e.resize)
	e.window.SetKeyDownCallback(e.keyDown)
	e.window.SetKeyUpCallback(e.keyUp)
	e.window.SetScrollCallback(e.scroll)
	e.window.SetMiddleMouseDownCallback(e.dragStart)
	e.window.SetMiddleMouseUpCallback(e.dragEnd)
	e.window.SetMouseMoveCallback(e.mouseMove)
	e.window.SetUpdateCallback(e.pollKeys)
}

// resize reconfigures the surface and the camera aspect. Zero sizes are minimized windows.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		if err := e.renderer.Resize(width, height); err != nil {
			common.Logger().Error("resize failed", "width", width, "height", height, "err", err)
			return
		}
	}
	if e.scene != nil {
		e.scene.Camera().SetAspect(float32(width) / float32(height))
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	common.Logger().Info("engine starting", "tick", e.engineTickRate, "profiling", e.profilingEnabled)
	e.running = true
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	if e.scene != nil {
		e.scene.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	common.Logger().Info("engine stopped")
	return e.window.Close()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
		if e.window != nil {
			e.input.closeRequested.Store(true)
		}
	})
}

// handle launches the engine and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate update loop in its own goroutine.
// It advances the scene, then fires the tick callback, and listens for rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.scene != nil {
				e.scene.Update(dt)
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine: upload, one render pass with every
// draw, then present. A panic is logged and shuts the engine down.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if err := e.renderFrame(); err != nil {
				common.Logger().Error("frame failed", "err", err)
				e.signalQuit()
				return
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame draws the scene once. Frames the surface cannot provide are skipped.
func (e *engine) renderFrame() error {
	if e.renderer == nil || e.scene == nil {
		return nil
	}
	if err := e.scene.Prepare(); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	if err := e.renderer.BeginFrame(); err != nil {
		common.Logger().Debug("frame skipped", "err", err)
		return nil
	}
	drawErr := e.scene.DrawCalls()
	if err := e.renderer.EndFrame(); err != nil {
		return errors.Join(drawErr, fmt.Errorf("end frame: %w", err))
	}
	e.renderer.Present()
	return drawErr
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the update rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// replace any pending update rather than block
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
