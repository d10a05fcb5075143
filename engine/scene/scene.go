package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/go-gl/mathgl/mgl32"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu       *sync.RWMutex
	name     string
	active   bool
	cam      camera.Camera
	registry map[uint64]game_object.GameObject
	order    []uint64
	nextID   uint64
	world    *surface.World
}

// Scene defines the interface for a set of game objects viewed through one camera.
// The Scene is also the surface.Query used by painting and projection: every enabled object with a
// mesh can be hit by rays at its current transform.
type Scene interface {
	surface.Query

	// Name returns the scene name.
	Name() string

	// Active returns whether the scene is active.
	Active() bool

	// SetActive sets whether the scene is active.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the scene camera.
	//
	// Parameters:
	//   - cam: the camera
	SetCamera(cam camera.Camera)

	// Count returns the number of objects in the scene.
	Count() int

	// Add registers an object, assigning an ID when it has none.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Find returns the first object with the given name, or nil.
	//
	// Parameters:
	//   - name: the object name
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Find(name string) game_object.GameObject

	// Remove removes the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Objects returns every object in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// DisplayDraws returns the display list: every enabled object with a mesh and a material.
	//
	// Returns:
	//   - []renderer.DisplayDraw: the draws in insertion order
	DisplayDraws() []renderer.DisplayDraw
}

var _ Scene = &scene{}

// NewScene creates a scene viewed through cam.
//
// Parameters:
//   - name: the scene name
//   - cam: the scene camera
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		active:   true,
		cam:      cam,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
		world:    surface.NewWorld(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	id := obj.ID()
	if _, exists := s.registry[id]; !exists {
		s.order = append(s.order, id)
	}
	s.registry[id] = obj
	if obj.Model() != nil {
		s.world.Add(obj)
	}
	return id
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Find(name string) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if obj := s.registry[id]; obj.Name() == name {
			return obj
		}
	}
	return nil
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.world.Remove(obj.Name())
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) DisplayDraws() []renderer.DisplayDraw {
	objects := s.Objects()
	draws := make([]renderer.DisplayDraw, 0, len(objects))
	for _, obj := range objects {
		if !obj.Enabled() || obj.Model() == nil || obj.Material() == nil {
			continue
		}
		draws = append(draws, renderer.DisplayDraw{
			Mesh:     obj.Model(),
			Material: obj.Material(),
			Model:    obj.Matrix(),
		})
	}
	return draws
}

// Raycast queries every object with a mesh and drops hits on disabled objects.
func (s *scene) Raycast(origin, direction mgl32.Vec3, maxDistance float32) []surface.Hit {
	hits := s.world.Raycast(origin, direction, maxDistance)
	if len(hits) == 0 {
		return hits
	}

	disabled := make(map[string]bool)
	for _, obj := range s.Objects() {
		if !obj.Enabled() {
			disabled[obj.Name()] = true
		}
	}
	out := hits[:0]
	for _, h := range hits {
		if !disabled[h.Collider] {
			out = append(out, h)
		}
	}
	return out
}
