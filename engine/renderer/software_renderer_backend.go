package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"
)

// coverageThreshold is the minimum mask coverage at which a texel counts as inside a triangle.
const coverageThreshold = 128

// softwareTarget is a CPU-resident RGBA8 render target.
type softwareTarget struct {
	owner    *softwareRendererBackend
	name     string
	width    int
	height   int
	pix      []byte
	released bool
}

func (t *softwareTarget) Name() string   { return t.name }
func (t *softwareTarget) Width() int     { return t.width }
func (t *softwareTarget) Height() int    { return t.height }
func (t *softwareTarget) Released() bool { return t.released }

// softwareRendererBackend rasterizes meshes in texture space on the CPU.
//
// Like the GPU paint shaders, every vertex is placed at its UV coordinate, so a draw writes exactly the
// texels the mesh's UV layout covers and shades each one with the material's shader program.
// The model transform is handed to the shader but does not move texture-space geometry.
type softwareRendererBackend struct {
	mu   *sync.Mutex
	ras  *vector.Rasterizer
	mask *image.Alpha
}

var _ Backend = &softwareRendererBackend{}

func newSoftwareRendererBackend() *softwareRendererBackend {
	return &softwareRendererBackend{
		mu:  &sync.Mutex{},
		ras: &vector.Rasterizer{},
	}
}

// NewSoftwareBackend creates a CPU Backend. It needs no device and is deterministic.
//
// Returns:
//   - Backend: the software backend
func NewSoftwareBackend() Backend {
	return newSoftwareRendererBackend()
}

func (b *softwareRendererBackend) Type() BackendType {
	return BackendTypeSoftware
}

func (b *softwareRendererBackend) CreateTarget(name string, width, height int) (RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	return &softwareTarget{
		owner:  b,
		name:   name,
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}, nil
}

func (b *softwareRendererBackend) target(t RenderTarget) (*softwareTarget, error) {
	st, ok := t.(*softwareTarget)
	if !ok || st == nil || st.owner != b {
		return nil, ErrInvalidTarget
	}
	if st.released {
		return nil, ErrTargetReleased
	}
	return st, nil
}

func (b *softwareRendererBackend) ReleaseTarget(t RenderTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.target(t)
	if err != nil {
		return err
	}
	st.released = true
	st.pix = nil
	return nil
}

func (b *softwareRendererBackend) Draw(t RenderTarget, mesh model.Model, mat material.Material, transform mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.target(t)
	if err != nil {
		return err
	}
	if mesh == nil || mat == nil {
		return fmt.Errorf("draw into %q: mesh and material are required", st.name)
	}
	if err := mesh.Validate(); err != nil {
		return fmt.Errorf("draw into %q: %w", st.name, err)
	}
	sh, err := shader.Lookup(mat.ShaderKey())
	if err != nil {
		return fmt.Errorf("draw into %q: %w", st.name, err)
	}
	program := sh.Program()
	uniforms := mat.Uniforms()

	if b.mask == nil || b.mask.Rect.Dx() != st.width || b.mask.Rect.Dy() != st.height {
		b.mask = image.NewAlpha(image.Rect(0, 0, st.width, st.height))
	} else {
		clear(b.mask.Pix)
	}

	uvs := mesh.UVs()
	w, h := float32(st.width), float32(st.height)
	bounds := b.mask.Rect
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := mesh.Triangle(i)
		var px, py [3]float32
		for k, idx := range tri {
			px[k] = uvs[idx].X() * w
			py[k] = (1 - uvs[idx].Y()) * h
		}
		b.coverTriangle(px, py, bounds)
	}

	for y := 0; y < st.height; y++ {
		for x := 0; x < st.width; x++ {
			if b.mask.Pix[y*b.mask.Stride+x] < coverageThreshold {
				continue
			}
			uv := mgl32.Vec2{(float32(x) + 0.5) / w, 1 - (float32(y)+0.5)/h}
			c := common.PackColor(program.Shade(uv, uniforms))
			copy(st.pix[(y*st.width+x)*4:], c[:])
		}
	}

	common.ComponentLogger("renderer.software").Debug("draw",
		"target", st.name, "mesh", mesh.Name(), "shader", string(mat.ShaderKey()))
	return nil
}

// coverTriangle accumulates one triangle's coverage into the mask.
// Each triangle is rasterized on its own so opposite windings never cancel along shared edges.
func (b *softwareRendererBackend) coverTriangle(px, py [3]float32, bounds image.Rectangle) {
	minX := math32.Floor(math32.Min(px[0], math32.Min(px[1], px[2])))
	minY := math32.Floor(math32.Min(py[0], math32.Min(py[1], py[2])))
	maxX := math32.Ceil(math32.Max(px[0], math32.Max(px[1], px[2])))
	maxY := math32.Ceil(math32.Max(py[0], math32.Max(py[1], py[2])))

	r := image.Rect(int(minX), int(minY), int(maxX), int(maxY)).Intersect(bounds)
	if r.Empty() {
		return
	}
	ox, oy := float32(r.Min.X), float32(r.Min.Y)

	b.ras.Reset(r.Dx(), r.Dy())
	b.ras.DrawOp = draw.Over
	b.ras.MoveTo(px[0]-ox, py[0]-oy)
	b.ras.LineTo(px[1]-ox, py[1]-oy)
	b.ras.LineTo(px[2]-ox, py[2]-oy)
	b.ras.ClosePath()
	b.ras.Draw(b.mask, r, image.Opaque, image.Point{})
}

func (b *softwareRendererBackend) Readback(t RenderTarget, name string) (*common.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.target(t)
	if err != nil {
		return nil, err
	}
	return common.NewTexture(name, st.width, st.height, st.pix)
}

func (b *softwareRendererBackend) Release() {}
