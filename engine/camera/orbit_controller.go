package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

// orbitController is the implementation of OrbitController.
// The eye sits on a sphere around the target described by radius, azimuth and elevation.
type orbitController struct {
	mu *sync.Mutex

	target    [3]float32
	position  [3]float32
	radius    float32
	azimuth   float32 // radians about +Y, 0 looks down -Z from +Z
	elevation float32 // radians above the XZ plane

	minRadius, maxRadius       float32
	minElevation, maxElevation float32

	keySpeed         float32 // radians per key step
	mouseSensitivity float32 // radians per pixel of drag
	zoomSpeed        float32 // radius units per scroll step
	panSpeed         float32
}

// OrbitController drives the camera eye around a target point.
// Keys and mouse drags orbit, scroll zooms, and pans move target and eye together.
type OrbitController interface {
	// Position returns the world-space eye position.
	Position() [3]float32

	// Target returns the world-space point the eye looks at.
	Target() [3]float32

	// SetTarget moves the orbit center, keeping radius and angles.
	//
	// Parameters:
	//   - target: the new orbit center
	SetTarget(target [3]float32)

	// Radius returns the eye distance from the target.
	Radius() float32

	// SetRadius sets the eye distance, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the requested distance
	SetRadius(radius float32)

	// Azimuth returns the horizontal orbit angle in radians.
	Azimuth() float32

	// Elevation returns the vertical orbit angle in radians.
	Elevation() float32

	// Orbit adds to the azimuth and elevation. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: radians to add to the azimuth
	//   - dElevation: radians to add to the elevation
	Orbit(dAzimuth, dElevation float32)

	// OrbitKey orbits by one key step in each direction given as -1, 0 or +1.
	//
	// Parameters:
	//   - x: horizontal direction
	//   - y: vertical direction
	OrbitKey(x, y float32)

	// Drag orbits by a mouse movement in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: cursor movement since the previous event
	Drag(dx, dy float32)

	// Zoom moves the eye toward the target by delta scroll steps.
	//
	// Parameters:
	//   - delta: scroll steps, positive zooms in
	Zoom(delta float32)

	// Pan translates target and eye along the view's right and up axes.
	//
	// Parameters:
	//   - right: distance along the right axis, scaled by the pan speed
	//   - up: distance along the up axis, scaled by the pan speed
	Pan(right, up float32)
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller configured with the provided options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu:               &sync.Mutex{},
		radius:           5,
		elevation:        0,
		minRadius:        0.5,
		maxRadius:        100,
		minElevation:     -math.Pi/2 + 0.05,
		maxElevation:     math.Pi/2 - 0.05,
		keySpeed:         0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         0.05,
	}
	for _, opt := range options {
		opt(oc)
	}
	oc.radius = clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	oc.place()
	return oc
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

// place recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (oc *orbitController) place() {
	sinE, cosE := math.Sincos(float64(oc.elevation))
	sinA, cosA := math.Sincos(float64(oc.azimuth))
	offset := [3]float32{
		float32(cosE * sinA),
		float32(sinE),
		float32(cosE * cosA),
	}
	oc.position = common.Add3(oc.target, common.Scale3(offset, oc.radius))
}

func (oc *orbitController) Position() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitController) Target() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target [3]float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.place()
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) SetRadius(radius float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clamp(radius, oc.minRadius, oc.maxRadius)
	oc.place()
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth = float32(math.Remainder(float64(oc.azimuth+dAzimuth), 2*math.Pi))
	oc.elevation = clamp(oc.elevation+dElevation, oc.minElevation, oc.maxElevation)
	oc.place()
}

func (oc *orbitController) OrbitKey(x, y float32) {
	oc.Orbit(x*oc.keySpeed, y*oc.keySpeed)
}

func (oc *orbitController) Drag(dx, dy float32) {
	// dragging right swings the eye left around the target
	oc.Orbit(-dx*oc.mouseSensitivity, dy*oc.mouseSensitivity)
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clamp(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
	oc.place()
}

func (oc *orbitController) Pan(right, up float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	back := common.Sub3(oc.position, oc.target)
	if common.Dot3(back, back) < 1e-12 {
		return
	}
	back = common.Normalize3(back)
	r := common.Cross3([3]float32{0, 1, 0}, back)
	if common.Dot3(r, r) < 1e-12 {
		return
	}
	r = common.Normalize3(r)
	u := common.Cross3(back, r)
	move := common.Add3(common.Scale3(r, right*oc.panSpeed), common.Scale3(u, up*oc.panSpeed))
	oc.target = common.Add3(oc.target, move)
	oc.position = common.Add3(oc.position, move)
}
