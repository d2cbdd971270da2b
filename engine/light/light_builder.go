package light

// LightBuilderOption is a functional option for configuring a Light via NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
//
// Parameters:
//   - position: the light position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option
func WithPosition(position [3]float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - color: the light color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option
func WithColor(color [3]float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithOrbit enables orbiting about +Y at the given rate.
// A zero rate keeps OrbitDegreesPerSecond.
//
// Parameters:
//   - degreesPerSecond: signed orbit rate
//
// Returns:
//   - LightBuilderOption: a function that applies the orbit option
func WithOrbit(degreesPerSecond float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.orbit = true
		if degreesPerSecond != 0 {
			l.orbitRate = degreesPerSecond
		}
	}
}
