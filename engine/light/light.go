package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
)

// OrbitDegreesPerSecond is the default rate at which an orbiting light circles the Y axis.
const OrbitDegreesPerSecond = 60

// ProviderName labels the light's bind group provider.
const ProviderName = "light"

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu        sync.Mutex
	position  [3]float32
	color     [3]float32
	orbit     bool
	orbitRate float32 // degrees per second

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Light is the scene's single point light.
//
// It has no attenuation and no intensity scale: its color feeds every lighting term
// directly. Optionally the light orbits the world Y axis at a constant rate.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Orbiting reports whether Orbit moves the light.
	Orbiting() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position [3]float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - color: the new color
	SetColor(color [3]float32)

	// SetOrbiting enables or disables orbiting.
	//
	// Parameters:
	//   - orbit: true to orbit
	SetOrbiting(orbit bool)

	// Orbit rotates the position about +Y by the orbit rate times dt.
	// The distance from the Y axis and the height are preserved.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Orbit(dt float32)

	// Uniform packs the light for upload.
	//
	// Returns:
	//   - GPULightUniform: the light uniform
	Uniform() GPULightUniform

	// BindGroupProvider returns the provider holding the light's uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider
}

var _ Light = &lightImpl{}

// NewLight creates a white light at (2, 2, 2) with any provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		position:          [3]float32{2, 2, 2},
		color:             [3]float32{1, 1, 1},
		orbitRate:         OrbitDegreesPerSecond,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(ProviderName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Orbiting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orbit
}

func (l *lightImpl) SetPosition(position [3]float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
}

func (l *lightImpl) SetColor(color [3]float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

func (l *lightImpl) SetOrbiting(orbit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orbit = orbit
}

func (l *lightImpl) Orbit(dt float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.orbit || dt == 0 {
		return
	}
	q := common.QuatFromAxisAngle([3]float32{0, 1, 0}, common.Radians(l.orbitRate*dt))
	l.position = q.Rotate(l.position)
}

func (l *lightImpl) Uniform() GPULightUniform {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPULightUniform{Position: l.position, Color: l.color}
}

func (l *lightImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return l.bindGroupProvider
}
