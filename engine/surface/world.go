package surface

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const intersectEpsilon = 1e-7

// World is a Query over registered mesh colliders.
// Each collider reports its nearest intersection; triangles are hit from either side.
type World struct {
	mu        sync.RWMutex
	colliders []Collider
}

var _ Query = &World{}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{}
}

// Add registers a collider. Registration order is the order hits are reported in.
//
// Parameters:
//   - c: the collider to add
func (w *World) Add(c Collider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.colliders = append(w.colliders, c)
}

// Remove unregisters every collider with the given name.
//
// Parameters:
//   - name: the collider identifier
func (w *World) Remove(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.colliders[:0]
	for _, c := range w.colliders {
		if c.Name() != name {
			kept = append(kept, c)
		}
	}
	w.colliders = kept
}

// Len returns the number of registered colliders.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

func (w *World) Raycast(origin, direction mgl32.Vec3, maxDistance float32) []Hit {
	if direction.LenSqr() == 0 {
		return nil
	}
	direction = direction.Normalize()

	w.mu.RLock()
	colliders := make([]Collider, len(w.colliders))
	copy(colliders, w.colliders)
	w.mu.RUnlock()

	var hits []Hit
	for _, c := range colliders {
		if hit, ok := raycastCollider(c, origin, direction, maxDistance); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

// raycastCollider intersects the ray with one collider in its model space and returns the nearest hit.
func raycastCollider(c Collider, origin, direction mgl32.Vec3, maxDistance float32) (Hit, bool) {
	mesh := c.Mesh()
	if mesh == nil {
		return Hit{}, false
	}
	matrix := c.Matrix()
	inv := matrix.Inv()
	if inv == (mgl32.Mat4{}) {
		return Hit{}, false
	}
	localOrigin := mgl32.TransformCoordinate(origin, inv)
	localDir := mgl32.TransformNormal(direction, inv)

	positions := mesh.Positions()
	uvs := mesh.UVs()

	best := Hit{Distance: math32.Inf(1)}
	found := false
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := mesh.Triangle(i)
		t, b1, b2, ok := intersectTriangle(localOrigin, localDir, positions[tri[0]], positions[tri[1]], positions[tri[2]])
		if !ok {
			continue
		}
		world := mgl32.TransformCoordinate(localOrigin.Add(localDir.Mul(t)), matrix)
		dist := world.Sub(origin).Len()
		if dist > maxDistance || dist >= best.Distance {
			continue
		}
		b0 := 1 - b1 - b2
		best = Hit{
			Collider: c.Name(),
			Role:     c.Role(),
			UV:       uvs[tri[0]].Mul(b0).Add(uvs[tri[1]].Mul(b1)).Add(uvs[tri[2]].Mul(b2)),
			Point:    world,
			Distance: dist,
		}
		found = true
	}
	return best, found
}

// intersectTriangle is the Möller-Trumbore ray/triangle test without back-face culling.
// It returns the ray parameter and the barycentric weights of v1 and v2.
func intersectTriangle(origin, dir, v0, v1, v2 mgl32.Vec3) (t, u, v float32, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < intersectEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det
	s := origin.Sub(v0)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * invDet
	if t < 0 {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
