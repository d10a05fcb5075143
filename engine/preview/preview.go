// Package preview shows the texture being painted on a flat card next to the painted mesh.
package preview

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// preview is the implementation of the Preview interface.
type preview struct {
	mu     *sync.Mutex
	source game_object.GameObject
	card   game_object.GameObject
	aspect float32
}

// Preview shares the display material of a source object with a card and keeps the card's X scale
// equal to the aspect ratio of the material's _BaseMap.
type Preview interface {
	// Start gives the card the source object's material. The material is shared, not copied.
	//
	// Returns:
	//   - error: error if the source or the card is missing
	Start() error

	// Update rescales the card to the current _BaseMap aspect ratio.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	Update(dt float32)

	// LateUpdate does nothing.
	LateUpdate(dt float32)

	// Destroy does nothing. The card keeps the shared material.
	Destroy()

	// Aspect returns the aspect ratio applied by the latest Update, or 0 before any texture was seen.
	Aspect() float32
}

var _ Preview = &preview{}

// NewPreview creates a preview card behaviour.
//
// Parameters:
//   - source: the object whose material is shown
//   - card: the object that shows it
//
// Returns:
//   - Preview: the behaviour
func NewPreview(source, card game_object.GameObject) Preview {
	return &preview{
		mu:     &sync.Mutex{},
		source: source,
		card:   card,
	}
}

func (p *preview) Start() error {
	if p.source == nil || p.card == nil {
		return errors.New("preview: source and card objects are required")
	}
	p.card.SetMaterial(p.source.Material())
	common.ComponentLogger("preview").Debug("sharing material", "source", p.source.Name(), "card", p.card.Name())
	return nil
}

func (p *preview) Update(dt float32) {
	if p.card == nil {
		return
	}
	mat := p.card.Material()
	if mat == nil {
		return
	}
	tex := mat.Texture(shader.UniformBaseMap)
	if tex == nil || tex.Height() == 0 {
		return
	}

	aspect := float32(tex.Width()) / float32(tex.Height())
	t := p.card.Transform()
	t.Scale = mgl32.Vec3{aspect, 1, 1}
	p.card.SetTransform(t)

	p.mu.Lock()
	p.aspect = aspect
	p.mu.Unlock()
}

func (p *preview) LateUpdate(dt float32) {}

func (p *preview) Destroy() {}

func (p *preview) Aspect() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aspect
}
