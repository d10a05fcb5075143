package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraType identifies which view a camera renders. Only CameraTypeGame cameras drive custom render passes.
type CameraType int

const (
	// CameraTypeGame is the camera the player sees.
	CameraTypeGame CameraType = iota
	// CameraTypeSceneView is an editor or debug viewport.
	CameraTypeSceneView
	// CameraTypePreview renders thumbnails and material previews.
	CameraTypePreview
)

// String returns the name of the camera type.
func (t CameraType) String() string {
	switch t {
	case CameraTypeGame:
		return "game"
	case CameraTypeSceneView:
		return "scene_view"
	case CameraTypePreview:
		return "preview"
	default:
		return "unknown"
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	cameraType CameraType

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices from its position and target,
// which are either set directly or pulled from an attached CameraController each frame via Update().
type Camera interface {
	// Type returns the kind of view this camera renders.
	//
	// Returns:
	//   - CameraType: the camera type
	Type() CameraType

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space target position
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current OpenGL-convention perspective projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined projection * view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// ScreenPointToRay builds a world-space ray from the near plane through a window pixel.
	// Window coordinates have their origin at the top-left corner, y growing downward.
	//
	// Parameters:
	//   - x, y: the window coordinates of the pointer
	//   - width, height: the viewport size in pixels
	//
	// Returns:
	//   - common.Ray: the ray with a unit direction
	ScreenPointToRay(x, y float32, width, height int) common.Ray

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position and target from the controller and recomputes matrices.
	// If no controller is attached, this method does nothing.
	Update()

	// SetPosition sets the eye position and recomputes matrices.
	//
	// Parameters:
	//   - p: the world-space position
	SetPosition(p mgl32.Vec3)

	// SetTarget sets the look-at point and recomputes matrices.
	//
	// Parameters:
	//   - t: the world-space target
	SetTarget(t mgl32.Vec3)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new game Camera looking down -Z from (0, 0, 5) with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		cameraType: CameraTypeGame,
		position:   mgl32.Vec3{0, 0, 5},
		up:         mgl32.Vec3{0, 1, 0},
		fov:        mgl32.DegToRad(45),
		aspect:     1.0,
		near:       0.1,
		far:        100.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.pullController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Type() CameraType {
	return c.cameraType
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ScreenPointToRay(x, y float32, width, height int) common.Ray {
	c.mu.Lock()
	view, proj := c.viewMatrix, c.projectionMatrix
	eye := c.position
	c.mu.Unlock()

	// UnProject expects a bottom-left window origin.
	winY := float32(height) - y
	near, errNear := mgl32.UnProject(mgl32.Vec3{x, winY, 0}, view, proj, 0, 0, width, height)
	far, errFar := mgl32.UnProject(mgl32.Vec3{x, winY, 1}, view, proj, 0, 0, width, height)
	if errNear != nil || errFar != nil {
		return common.Ray{Origin: eye, Direction: c.Target().Sub(eye).Normalize()}
	}
	return common.Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.pullController()
	c.updateMatrices()
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

// pullController copies position and target from the attached controller.
// Caller must hold the mutex.
func (c *cameraImpl) pullController() {
	c.position = c.controller.Position()
	c.target = c.controller.Target()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
