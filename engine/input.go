package engine

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
)

// input tracks held keys and the middle-button drag between window callbacks.
type input struct {
	mu       sync.Mutex
	held     map[uint32]bool
	dragging bool
	lastX    int32
	lastY    int32

	closeRequested atomic.Bool
}

// cameraPose is the controller state restored by the reset key.
type cameraPose struct {
	target    [3]float32
	radius    float32
	azimuth   float32
	elevation float32
}

func poseOf(c camera.OrbitController) cameraPose {
	return cameraPose{
		target:    c.Target(),
		radius:    c.Radius(),
		azimuth:   c.Azimuth(),
		elevation: c.Elevation(),
	}
}

// apply moves c back to the pose.
func (p cameraPose) apply(c camera.OrbitController) {
	c.SetTarget(p.target)
	c.SetRadius(p.radius)
	c.Orbit(p.azimuth-c.Azimuth(), p.elevation-c.Elevation())
}

// controller returns the scene camera's orbit controller, or nil.
func (e *engine) controller() camera.OrbitController {
	if e.scene == nil {
		return nil
	}
	return e.scene.Camera().Controller()
}

// orbitKeys maps held keys to orbit directions.
var orbitKeys = map[uint32][2]float32{
	common.KeyA: {-1, 0},
	common.KeyD: {1, 0},
	common.KeyW: {0, 1},
	common.KeyS: {0, -1},
}

// keyDown handles the one-shot bindings: L toggles the light orbit, M the light marker and
// R resets the camera. Orbit and zoom keys are held and applied in pollKeys.
func (e *engine) keyDown(code uint32) {
	e.input.mu.Lock()
	if e.input.held == nil {
		e.input.held = make(map[uint32]bool)
	}
	repeat := e.input.held[code]
	e.input.held[code] = true
	e.input.mu.Unlock()

	if repeat || e.scene == nil {
		return
	}
	switch code {
	case common.KeyL:
		l := e.scene.Light()
		l.SetOrbiting(!l.Orbiting())
		common.Logger().Info("light orbit", "enabled", l.Orbiting())
	case common.KeyM:
		e.scene.SetLightMarker(!e.scene.LightMarker())
		common.Logger().Info("light marker", "enabled", e.scene.LightMarker())
	case common.KeyR:
		if ctrl := e.controller(); ctrl != nil {
			e.home.apply(ctrl)
		}
	}
}

func (e *engine) keyUp(code uint32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	delete(e.input.held, code)
}

// pollKeys applies held orbit and zoom keys once per window loop iteration. After Quit it
// waits for the render goroutine to stop drawing, then closes the window.
func (e *engine) pollKeys() {
	if e.input.closeRequested.Load() && e.window != nil {
		e.wg.Wait()
		e.window.Close()
		return
	}
	ctrl := e.controller()
	if ctrl == nil {
		return
	}

	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	var x, y float32
	for code, dir := range orbitKeys {
		if e.input.held[code] {
			x += dir[0]
			y += dir[1]
		}
	}
	if x != 0 || y != 0 {
		ctrl.OrbitKey(x, y)
	}
	switch {
	case e.input.held[common.KeyQ]:
		ctrl.Zoom(-1)
	case e.input.held[common.KeyE]:
		ctrl.Zoom(1)
	}
}

func (e *engine) scroll(delta float32) {
	if ctrl := e.controller(); ctrl != nil {
		ctrl.Zoom(delta)
	}
}

func (e *engine) dragStart(x, y int32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	e.input.dragging = true
	e.input.lastX, e.input.lastY = x, y
}

func (e *engine) dragEnd(_, _ int32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	e.input.dragging = false
}

func (e *engine) mouseMove(x, y int32) {
	e.input.mu.Lock()
	if !e.input.dragging {
		e.input.mu.Unlock()
		return
	}
	dx, dy := x-e.input.lastX, y-e.input.lastY
	e.input.lastX, e.input.lastY = x, y
	e.input.mu.Unlock()

	if ctrl := e.controller(); ctrl != nil {
		ctrl.Drag(float32(dx), float32(dy))
	}
}
