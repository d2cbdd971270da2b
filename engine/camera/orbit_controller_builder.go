package camera

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithTarget sets the orbit center.
//
// Parameters:
//   - target: the world-space point to orbit
//
// Returns:
//   - OrbitControllerOption: functional option to set the target
func WithTarget(target [3]float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadius sets the initial eye distance.
//
// Parameters:
//   - radius: the distance from the target
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
//
// Parameters:
//   - azimuth: horizontal angle about +Y
//   - elevation: vertical angle above the XZ plane
//
// Returns:
//   - OrbitControllerOption: functional option to set the angles
func WithAngles(azimuth, elevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - lo, hi: minimum and maximum radius
//
// Returns:
//   - OrbitControllerOption: functional option to set radius bounds
func WithRadiusBounds(lo, hi float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minRadius = lo
		oc.maxRadius = hi
	}
}

// WithSpeeds sets the key step, mouse sensitivity, zoom step and pan speed.
// Zero values keep the defaults.
//
// Returns:
//   - OrbitControllerOption: functional option to set the speeds
func WithSpeeds(key, mouse, zoom, pan float32) OrbitControllerOption {
	return func(oc *orbitController) {
		if key != 0 {
			oc.keySpeed = key
		}
		if mouse != 0 {
			oc.mouseSensitivity = mouse
		}
		if zoom != 0 {
			oc.zoomSpeed = zoom
		}
		if pan != 0 {
			oc.panSpeed = pan
		}
	}
}
