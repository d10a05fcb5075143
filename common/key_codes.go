package common

// Key codes follow GLFW, where printable keys use their upper-case ASCII value.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace     = 32
	KeyEsc       = 256
	KeyBackspace = 259

	// KeyA..KeyZ and Key0..Key9 are contiguous ranges.
	KeyA = 'A'
	KeyW = 'W'
	KeyZ = 'Z'
	Key0 = '0'
	Key7 = '7'
	Key9 = '9'
)

// Mouse button codes, matching glfw.MouseButton values.
const (
	MouseButtonLeft   = 0 // paints
	MouseButtonRight  = 1 // orbits the camera
	MouseButtonMiddle = 2
)
