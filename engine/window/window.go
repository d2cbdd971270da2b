// Package window opens the viewer window and forwards its input events.
package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window the renderer presents into.
// All methods must be called from the thread that created it.
type Window interface {
	// SetUpdateCallback sets the function called once per loop iteration, after events are polled.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called with the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function called with the vertical scroll offset.
	// Positive values scroll up.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function called on key press and key repeat.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function called on key release.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMiddleMouseDownCallback sets the function called when the middle button goes down.
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback sets the function called when the middle button goes up.
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the function called with the cursor position.
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns the platform surface descriptor for wgpu, or nil once closed.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the window. Calling it twice is a no-op.
	Close() error

	// ProcessMessages polls events and runs the update callback until the window closes.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// callbacks holds the user input handlers. Nil entries are skipped.
type callbacks struct {
	update          func()
	resize          func(width, height int)
	scroll          func(delta float32)
	keyDown         func(keyCode uint32)
	keyUp           func(keyCode uint32)
	middleMouseDown func(x, y int32)
	middleMouseUp   func(x, y int32)
	mouseMove       func(x, y int32)
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	minWidth, minHeight int
	maxWidth, maxHeight int
	width, height       int

	// platform is nil until the native window is created and again after Close.
	platform *glfwWindow

	on callbacks
}

var _ Window = &engineWindow{}

// NewWindow opens a window. Defaults are a 1280x720 framebuffer limited to 320x200..3840x2160.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - Window: the open window
//   - error: GLFW initialization or window creation failure
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-lit",
		minWidth:  320,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width, w.height = clampSize(w.width, w.height, w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// clampSize limits a requested size to the configured bounds. A zero max leaves that axis unbounded.
func clampSize(width, height, minWidth, minHeight, maxWidth, maxHeight int) (int, int) {
	width = max(width, minWidth, 1)
	height = max(height, minHeight, 1)
	if maxWidth > 0 {
		width = min(width, maxWidth)
	}
	if maxHeight > 0 {
		height = min(height, maxHeight)
	}
	return width, height
}

func (w *engineWindow) SetUpdateCallback(callback func()) { w.on.update = callback }

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.on.resize = callback }

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) { w.on.scroll = callback }

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.on.keyDown = callback }

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) { w.on.keyUp = callback }

func (w *engineWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.on.middleMouseDown = callback
}

func (w *engineWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.on.middleMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) { w.on.mouseMove = callback }

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.running()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return nil
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.poll()
		if !w.IsRunning() {
			break
		}
		if w.on.update != nil {
			w.on.update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int { return w.width }

func (w *engineWindow) Height() int { return w.height }

// framebufferResized records a new framebuffer size and notifies the resize callback.
// Zero sizes (minimized) are forwarded so the renderer can skip reconfiguring.
func (w *engineWindow) framebufferResized(width, height int) {
	w.width, w.height = width, height
	if w.on.resize != nil {
		w.on.resize(width, height)
	}
}
