package material

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithShader is an option builder that sets the shader the material draws with.
//
// Parameters:
//   - key: the shader key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shader option to a material
func WithShader(key shader.Key) MaterialBuilderOption {
	return func(m *material) {
		m.shaderKey = key
	}
}

// WithTexture is an option builder that binds an initial texture to a channel.
//
// Parameters:
//   - name: the channel name
//   - tex: the texture to bind
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(name string, tex *common.Texture) MaterialBuilderOption {
	return func(m *material) {
		if tex != nil {
			m.textures[name] = tex
		}
	}
}

// WithVector is an option builder that binds an initial vector to a channel.
//
// Parameters:
//   - name: the channel name
//   - v: the value to bind
//
// Returns:
//   - MaterialBuilderOption: a function that applies the vector option to a material
func WithVector(name string, v mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.vectors[name] = v
	}
}
