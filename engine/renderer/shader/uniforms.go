package shader

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader parameter channels shared by materials, backends and the paint/projector behaviours.
const (
	// UniformMainTex is the accumulation input of the draw material.
	UniformMainTex = "_MainTex"
	// UniformBaseMap is the texture shown by the display material.
	UniformBaseMap = "_BaseMap"
	// UniformDecalTex is the image projected or stamped onto the surface.
	UniformDecalTex = "_DecalTex"
	// UniformHitUV is the surface coordinate of the last non-projector hit (xy).
	UniformHitUV = "_HitUV"
	// UniformCoordinate is the surface coordinate of the last projector hit (xy).
	UniformCoordinate = "_Coordinate"
	// UniformProjectorUV is the projector rectangle (min.xy, max.xy).
	UniformProjectorUV = "_ProjectorUV"
	// UniformTargetUV is the target rectangle (min.xy, max.xy).
	UniformTargetUV = "_TargetUV"
	// UniformBrushColor is the RGBA brush colour.
	UniformBrushColor = "_BrushColor"
	// UniformBrushRadius holds the brush radius in UV units (x) and the hardness in [0, 1] (y).
	UniformBrushRadius = "_BrushRadius"
)

// Defaults used when a material has not set a vector channel.
var (
	DefaultHitUV       = mgl32.Vec4{-10, -10, 0, 0}
	DefaultBrushColor  = mgl32.Vec4{1, 0.2, 0.2, 1}
	DefaultBrushRadius = mgl32.Vec4{0.02, 0.5, 0, 0}
	DefaultRect        = mgl32.Vec4{0, 0, 1, 1}
)

// Uniforms is an immutable snapshot of a material's parameters handed to a backend for one draw.
type Uniforms struct {
	Textures map[string]*common.Texture
	Vectors  map[string]mgl32.Vec4
}

// Texture returns the texture bound to name, or nil.
func (u Uniforms) Texture(name string) *common.Texture {
	return u.Textures[name]
}

// Vector returns the vector bound to name, or fallback when unset.
func (u Uniforms) Vector(name string, fallback mgl32.Vec4) mgl32.Vec4 {
	if v, ok := u.Vectors[name]; ok {
		return v
	}
	return fallback
}

// HasVector reports whether name has been set.
func (u Uniforms) HasVector(name string) bool {
	_, ok := u.Vectors[name]
	return ok
}
