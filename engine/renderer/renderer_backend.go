package renderer

// RendererBackendType selects the graphics API implementation behind a Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU renders through wgpu-native.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames are handed to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank (FIFO).
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately and may tear.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel of the main color and depth targets.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
)

// RendererBackend is the API-specific half of the Renderer.
type RendererBackend interface {
	wgpuRendererBackend
}
