package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// BackendType identifies the draw backend implementation used by the Renderer.
type BackendType int

const (
	// BackendTypeSoftware selects the CPU rasterizer. Deterministic and headless.
	BackendTypeSoftware BackendType = iota
	// BackendTypeWGPU selects the WebGPU backend.
	BackendTypeWGPU
)

// String returns the configuration name of the backend type.
func (t BackendType) String() string {
	switch t {
	case BackendTypeSoftware:
		return "software"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

var (
	// ErrTargetReleased is returned when a released render target is used.
	ErrTargetReleased = errors.New("render target released")
	// ErrInvalidTarget is returned when a render target was not created by the backend it is used with.
	ErrInvalidTarget = errors.New("invalid render target")
	// ErrNoSurface is returned when presenting on a backend without a display surface.
	ErrNoSurface = errors.New("backend has no display surface")
)

// RenderTarget is an offscreen RGBA8 color target owned by a Backend.
type RenderTarget interface {
	// Name returns the label the target was created with.
	Name() string
	// Width returns the width in pixels.
	Width() int
	// Height returns the height in pixels.
	Height() int
	// Released reports whether the target's storage has been freed.
	Released() bool
}

// Backend is the interface every draw backend implements.
// All methods are called from the frame thread.
type Backend interface {
	// Type returns the backend implementation type.
	//
	// Returns:
	//   - BackendType: the backend type
	Type() BackendType

	// CreateTarget allocates an offscreen color target cleared to transparent black.
	//
	// Parameters:
	//   - name: the label of the target
	//   - width, height: the size in pixels
	//
	// Returns:
	//   - RenderTarget: the new target
	//   - error: error if allocation fails
	CreateTarget(name string, width, height int) (RenderTarget, error)

	// ReleaseTarget frees a target's storage. Releasing twice returns ErrTargetReleased.
	//
	// Parameters:
	//   - t: the target to release
	//
	// Returns:
	//   - error: ErrInvalidTarget, ErrTargetReleased or a backend error
	ReleaseTarget(t RenderTarget) error

	// Draw rasterizes mesh through material into the target and submits the work.
	// Texels the mesh does not cover keep their previous contents.
	//
	// Parameters:
	//   - t: the target to draw into
	//   - mesh: the mesh to draw
	//   - mat: the material supplying the shader and its parameters
	//   - transform: the model matrix handed to the shader
	//
	// Returns:
	//   - error: error if the draw could not be recorded or submitted
	Draw(t RenderTarget, mesh model.Model, mat material.Material, transform mgl32.Mat4) error

	// Readback copies the target's current contents into a new texture. Blocks until the copy completes.
	//
	// Parameters:
	//   - t: the target to read
	//   - name: the name of the resulting texture
	//
	// Returns:
	//   - *common.Texture: a fresh snapshot that shares no storage with the target
	//   - error: error if the copy fails
	Readback(t RenderTarget, name string) (*common.Texture, error)

	// Release frees every resource owned by the backend.
	Release()
}

// DisplayDraw is one mesh to present on screen with its display material.
type DisplayDraw struct {
	Mesh     model.Model
	Material material.Material
	Model    mgl32.Mat4
}

// Presenter is implemented by backends with a display surface.
type Presenter interface {
	// Present draws the display list through the camera and presents the frame.
	//
	// Parameters:
	//   - cam: the camera to view through
	//   - draws: the meshes to draw
	//
	// Returns:
	//   - error: error if the frame could not be acquired or submitted
	Present(cam camera.Camera, draws []DisplayDraw) error

	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)
}
