package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu        *sync.Mutex
	id        uint64
	name      string
	enabled   atomic.Bool
	mdl       model.Model
	mat       material.Material
	role      surface.SurfaceRole
	transform Transform
}

// GameObject defines the interface for a scene entity: a mesh placed in the world with a display material.
// A GameObject is also a surface.Collider, so rays hit it at its current transform.
type GameObject interface {
	surface.Collider

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is drawn and hit by rays.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the display material, or nil if not set.
	//
	// Returns:
	//   - material.Material: the display material
	Material() material.Material

	// Transform returns a copy of the current transform.
	//
	// Returns:
	//   - Transform: the transform
	Transform() Transform

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is drawn and hit by rays.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to assign
	SetModel(m model.Model)

	// SetMaterial assigns the display material.
	//
	// Parameters:
	//   - m: the material
	SetMaterial(m material.Material)

	// SetTransform replaces the transform.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t Transform)

	// SetRole sets the classification reported when rays hit this object.
	//
	// Parameters:
	//   - r: the role
	SetRole(r surface.SurfaceRole)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object at the origin with the provided options.
//
// Parameters:
//   - options: variadic list of GameObjectBuilderOption functions
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:        &sync.Mutex{},
		transform: NewTransform(mgl32.Vec3{}),
	}
	g.enabled.Store(true)
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) Mesh() model.Model {
	return g.Model()
}

func (g *gameObject) Material() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mat
}

func (g *gameObject) Role() surface.SurfaceRole {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}

func (g *gameObject) Transform() Transform {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transform
}

func (g *gameObject) Matrix() mgl32.Mat4 {
	return g.Transform().Matrix()
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetMaterial(m material.Material) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mat = m
}

func (g *gameObject) SetTransform(t Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform = t
}

func (g *gameObject) SetRole(r surface.SurfaceRole) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.role = r
}
