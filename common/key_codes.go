package common

// Virtual key codes for the viewer's input handling.
// Printable keys match their ASCII value, which is also what GLFW reports.
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyL     = 76 // toggle light orbit
	KeyM     = 77 // toggle light marker
	KeyR     = 82 // reset camera
	KeySpace = 32
	KeyEsc   = 256 // GLFW escape
)
