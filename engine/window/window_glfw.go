package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW half of an engineWindow.
// Reference: https://www.glfw.org/docs/latest/window_guide.html
type glfwWindow struct {
	window  *glfw.Window
	closing bool
}

// openPlatformWindow creates a GLFW window without a GL context and routes its events into w.
func openPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	// WebGPU owns the surface.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	l := w.limits
	win.SetSizeLimits(l.minWidth, l.minHeight, l.maxWidth, l.maxHeight)

	gw := &glfwWindow{window: win}
	w.platform = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		if !w.handleKey(uint32(key), action == glfw.Press) {
			gw.requestClose()
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		x, y := gw.cursor()
		w.handleButton(int(button), action == glfw.Press, x, y)
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, _, _ float64) {
		w.handleCursor(gw.cursor())
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.handleScroll(float32(yoff))
	})
	// The framebuffer size, not the window size, is what the surface and the camera use.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.handleResize(width, height)
	})

	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// cursor returns the cursor position scaled from screen coordinates to framebuffer pixels.
func (gw *glfwWindow) cursor() (float32, float32) {
	x, y := gw.window.GetCursorPos()
	ww, wh := gw.window.GetSize()
	fw, fh := gw.window.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return float32(x), float32(y)
	}
	return float32(x) * float32(fw) / float32(ww), float32(y) * float32(fh) / float32(wh)
}

// poll processes pending events and reports whether the window should keep running.
func (gw *glfwWindow) poll() bool {
	glfw.PollEvents()
	return !gw.closing && !gw.window.ShouldClose()
}

func (gw *glfwWindow) requestClose() {
	gw.closing = true
	gw.window.SetShouldClose(true)
}

// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) destroy() error {
	gw.requestClose()
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}
