package cli

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
)

// orbitBehavior orbits the camera while the right mouse button is dragged.
type orbitBehavior struct {
	cam      camera.Camera
	in       input.Source
	lastX    float32
	lastY    float32
	dragging bool
}

func newOrbitBehavior(cam camera.Camera, in input.Source) *orbitBehavior {
	return &orbitBehavior{cam: cam, in: in}
}

func (o *orbitBehavior) Start() error {
	o.cam.Update()
	return nil
}

func (o *orbitBehavior) Update(dt float32) {
	ctrl := o.cam.Controller()
	if ctrl == nil {
		return
	}

	x, y := o.in.Pointer()
	if o.in.ButtonHeld(common.MouseButtonRight) {
		if o.dragging {
			ctrl.Orbit(x-o.lastX, y-o.lastY)
		}
		o.dragging = true
	} else {
		o.dragging = false
	}
	o.lastX, o.lastY = x, y
	o.cam.Update()
}

func (o *orbitBehavior) LateUpdate(dt float32) {}

func (o *orbitBehavior) Destroy() {}
