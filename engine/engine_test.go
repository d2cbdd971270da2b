package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/scene"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController(camera.WithRadius(4))))
	s, err := scene.NewScene("test", cam, light.NewLight(light.WithOrbit(0)), nil, scene.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(WithScene(s)).(*engine)
}

func TestRunWithoutWindow(t *testing.T) {
	e := NewEngine()
	if err := e.Run(); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("Run\nhave %v\nwant %v", err, ErrNoWindow)
	}
}

func TestToggleKeys(t *testing.T) {
	e := newTestEngine(t)
	l := e.scene.Light()

	e.keyDown(common.KeyL)
	if l.Orbiting() {
		t.Fatal("L: light still orbiting")
	}
	// held key repeats do not toggle again
	e.keyDown(common.KeyL)
	if l.Orbiting() {
		t.Fatal("L repeat toggled the orbit")
	}
	e.keyUp(common.KeyL)
	e.keyDown(common.KeyL)
	if !l.Orbiting() {
		t.Fatal("second L: light not orbiting")
	}

	e.keyDown(common.KeyM)
	if !e.scene.LightMarker() {
		t.Fatal("M: marker not enabled")
	}
}

func TestResetCamera(t *testing.T) {
	e := newTestEngine(t)
	ctrl := e.scene.Camera().Controller()
	want := poseOf(ctrl)

	e.dragStart(10, 10)
	e.mouseMove(60, 30)
	e.scroll(2)
	ctrl.SetTarget([3]float32{1, 2, 3})
	if approx(ctrl.Azimuth(), want.azimuth) {
		t.Fatal("drag did not orbit the camera")
	}

	e.keyDown(common.KeyR)
	have := poseOf(ctrl)
	if have.target != want.target || !approx(have.radius, want.radius) ||
		!approx(have.azimuth, want.azimuth) || !approx(have.elevation, want.elevation) {
		t.Fatalf("reset\nhave %+v\nwant %+v", have, want)
	}
}

func TestMouseMoveWithoutDrag(t *testing.T) {
	e := newTestEngine(t)
	ctrl := e.scene.Camera().Controller()
	before := ctrl.Azimuth()
	e.mouseMove(100, 100)
	e.dragStart(0, 0)
	e.dragEnd(0, 0)
	e.mouseMove(200, 0)
	if have := ctrl.Azimuth(); have != before {
		t.Fatalf("azimuth\nhave %v\nwant %v", have, before)
	}
}

func TestHeldOrbitKeys(t *testing.T) {
	e := newTestEngine(t)
	ctrl := e.scene.Camera().Controller()
	before := ctrl.Azimuth()

	e.keyDown(common.KeyD)
	e.pollKeys()
	e.pollKeys()
	if approx(ctrl.Azimuth(), before) {
		t.Fatal("held D did not orbit")
	}
	e.keyUp(common.KeyD)
	after := ctrl.Azimuth()
	e.pollKeys()
	if have := ctrl.Azimuth(); have != after {
		t.Fatalf("released D still orbits\nhave %v\nwant %v", have, after)
	}
}

func TestResize(t *testing.T) {
	e := newTestEngine(t)
	cam := e.scene.Camera()
	e.resize(800, 400)
	if have := cam.Aspect(); !approx(have, 2) {
		t.Fatalf("aspect\nhave %v\nwant 2", have)
	}
	e.resize(0, 0)
	if have := cam.Aspect(); !approx(have, 2) {
		t.Fatalf("minimized resize changed aspect\nhave %v\nwant 2", have)
	}
}

func TestRenderFrameWithoutRenderer(t *testing.T) {
	e := newTestEngine(t)
	if err := e.renderFrame(); err != nil {
		t.Fatalf("renderFrame\nhave %v\nwant nil", err)
	}
}

func TestTickRate(t *testing.T) {
	e := NewEngine(WithTickRate(0), WithRenderFrameLimit(120)).(*engine)
	if have, want := e.engineTickRate, time.Second/60; have != want {
		t.Fatalf("default tick\nhave %v\nwant %v", have, want)
	}
	e.SetTickRate(30)
	if have, want := e.engineTickRate, time.Second/30; have != want {
		t.Fatalf("tick\nhave %v\nwant %v", have, want)
	}
	if have, want := e.renderFrameLimit, time.Second/120; have != want {
		t.Fatalf("frame limit\nhave %v\nwant %v", have, want)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Fatalf("uncapped frame limit\nhave %v\nwant 0", e.renderFrameLimit)
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.Quit()
	e.Quit()
	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel still open")
	}
}
