package shader

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Key identifies a shader across backends: the WebGPU backend compiles its WGSL source,
// the software backend runs its fragment Program.
type Key string

const (
	// KeyPaint accumulates brush strokes at the hit coordinate.
	KeyPaint Key = "paint"
	// KeyUVProject maps the projector rectangle onto the target rectangle.
	KeyUVProject Key = "uv_project"
	// KeyDisplay presents a mesh with its base map through the camera.
	KeyDisplay Key = "display"
)

// Entry points shared by every embedded shader module.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

//go:embed assets/paint.wgsl
var paintSource string

//go:embed assets/uv_project.wgsl
var uvProjectSource string

//go:embed assets/display.wgsl
var displaySource string

// Program is the CPU rendition of a fragment shader used by the software backend.
// Shade is called once per covered texel with the interpolated UV of the texel center.
type Program interface {
	Shade(uv mgl32.Vec2, u Uniforms) mgl32.Vec4
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(uv mgl32.Vec2, u Uniforms) mgl32.Vec4

// Shade calls f.
func (f ProgramFunc) Shade(uv mgl32.Vec2, u Uniforms) mgl32.Vec4 {
	return f(uv, u)
}

// shader is the implementation of the Shader interface.
type shader struct {
	key     Key
	source  string
	program Program
}

// Shader defines a shader known to every backend.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - Key: the shader's unique key
	Key() Key

	// Source retrieves the WGSL shader source code. The module declares VertexEntryPoint and FragmentEntryPoint.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Program retrieves the CPU fragment program for the software backend.
	//
	// Returns:
	//   - Program: the fragment program
	Program() Program
}

var _ Shader = &shader{}

// NewShader creates a Shader from its WGSL source and software fragment program.
//
// Parameters:
//   - key: the unique identifier of the shader
//   - source: the WGSL module source
//   - program: the CPU fragment program
//
// Returns:
//   - Shader: the new shader
func NewShader(key Key, source string, program Program) Shader {
	return &shader{key: key, source: source, program: program}
}

func (s *shader) Key() Key {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Program() Program {
	return s.program
}

var (
	registryMu sync.RWMutex
	registry   = map[Key]Shader{}
)

func init() {
	Register(NewShader(KeyPaint, paintSource, ProgramFunc(Paint)))
	Register(NewShader(KeyUVProject, uvProjectSource, ProgramFunc(UVProject)))
	Register(NewShader(KeyDisplay, displaySource, ProgramFunc(Display)))
}

// Register adds or replaces a shader in the registry.
//
// Parameters:
//   - s: the shader to register
func Register(s Shader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Key()] = s
}

// Lookup finds a registered shader by key.
//
// Parameters:
//   - key: the shader key
//
// Returns:
//   - Shader: the registered shader
//   - error: error if no shader is registered under key
func Lookup(key Key) (Shader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("shader %q is not registered", key)
	}
	return s, nil
}

// Keys returns the registered shader keys in sorted order.
func Keys() []Key {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := make([]Key, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
