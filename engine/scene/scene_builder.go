package scene

import "github.com/Carmen-Shannon/automation/tools/worker"

// SceneBuilderOption configures a scene.
type SceneBuilderOption func(s *scene)

// WithLightMarker draws a small unlit cube at the light. It needs the light marker
// pipeline to be registered before the scene is built.
//
// Parameters:
//   - enabled: whether to draw the marker
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightMarker(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.marker = enabled
	}
}

// WithWorkers sets the size of the worker pool that packs instance buffers.
// Defaults to runtime.NumCPU()-1, minimum 1.
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = max(n, 1)
	}
}

// WithPool shares an existing worker pool instead of creating one.
func WithPool(pool worker.DynamicWorkerPool) SceneBuilderOption {
	return func(s *scene) {
		s.pool = pool
	}
}
