package material

import (
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// material is the implementation of the Material interface.
type material struct {
	mu        *sync.Mutex
	name      string
	shaderKey shader.Key
	textures  map[string]*common.Texture
	vectors   map[string]mgl32.Vec4
	version   uint64
}

// Material defines the interface for a render material: a shader key plus named texture and vector parameters.
//
// Parameters are written by behaviours on the frame thread and read by backends when a draw is recorded.
// Every mutation bumps Version so backends can cache GPU-side copies of the parameters.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// ShaderKey retrieves the key of the shader this material draws with.
	//
	// Returns:
	//   - shader.Key: the shader key
	ShaderKey() shader.Key

	// Texture retrieves the texture bound to a named channel, or nil if unset.
	//
	// Parameters:
	//   - name: the channel name, e.g. shader.UniformMainTex
	//
	// Returns:
	//   - *common.Texture: the bound texture, or nil
	Texture(name string) *common.Texture

	// SetTexture binds a texture to a named channel. Passing nil unbinds it.
	//
	// Parameters:
	//   - name: the channel name
	//   - tex: the texture to bind
	SetTexture(name string, tex *common.Texture)

	// Vector retrieves the vector bound to a named channel.
	//
	// Parameters:
	//   - name: the channel name, e.g. shader.UniformHitUV
	//
	// Returns:
	//   - mgl32.Vec4: the bound vector
	//   - bool: false if the channel has never been set
	Vector(name string) (mgl32.Vec4, bool)

	// SetVector binds a vector to a named channel.
	//
	// Parameters:
	//   - name: the channel name
	//   - v: the value to bind
	SetVector(name string, v mgl32.Vec4)

	// Uniforms returns a snapshot of every parameter for one draw.
	//
	// Returns:
	//   - shader.Uniforms: the parameter snapshot
	Uniforms() shader.Uniforms

	// Version returns a counter that increases on every parameter change.
	//
	// Returns:
	//   - uint64: the parameter version
	Version() uint64
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.Mutex{},
		shaderKey: shader.KeyDisplay,
		textures:  map[string]*common.Texture{},
		vectors:   map[string]mgl32.Vec4{},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) ShaderKey() shader.Key {
	return m.shaderKey
}

func (m *material) Texture(name string) *common.Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textures[name]
}

func (m *material) SetTexture(name string, tex *common.Texture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tex == nil {
		delete(m.textures, name)
	} else {
		m.textures[name] = tex
	}
	m.version++
}

func (m *material) Vector(name string) (mgl32.Vec4, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vectors[name]
	return v, ok
}

func (m *material) SetVector(name string, v mgl32.Vec4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[name] = v
	m.version++
}

func (m *material) Uniforms() shader.Uniforms {
	m.mu.Lock()
	defer m.mu.Unlock()
	return shader.Uniforms{
		Textures: maps.Clone(m.textures),
		Vectors:  maps.Clone(m.vectors),
	}
}

func (m *material) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
