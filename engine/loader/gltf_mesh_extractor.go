package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

var errNoTriangles = errors.New("document contains no triangle primitives")

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser

	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
	material  *int
}

// gltfMeshExtractor flattens the node hierarchy of a parsed document into a single static mesh.
type gltfMeshExtractor interface {
	// ExtractModel walks the default scene, bakes every node transform into its primitives and
	// merges all triangle primitives into one Model. Texture coordinates are flipped from the glTF
	// top-left origin to the bottom-left origin used by surface coordinates.
	//
	// Parameters:
	//   - name: the name given to the merged model
	//
	// Returns:
	//   - model.Model: the merged mesh
	//   - error: error if no triangle primitive exists or an accessor cannot be read
	ExtractModel(name string) (model.Model, error)

	// MaterialIndex returns the material of the first merged primitive, or nil when it has none.
	// Only valid after ExtractModel.
	MaterialIndex() *int
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) MaterialIndex() *int {
	return e.material
}

func (e *gltfMeshExtractorImpl) ExtractModel(name string) (model.Model, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	e.positions, e.uvs, e.indices, e.material = nil, nil, nil, nil

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	if roots == nil {
		// No scene graph: every mesh in model space.
		for i := range doc.Meshes {
			if err := e.appendMesh(i, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		visited := make(map[int]bool)
		for _, root := range roots {
			if err := e.walk(doc, root, mgl32.Ident4(), visited); err != nil {
				return nil, err
			}
		}
	}

	if len(e.indices) == 0 {
		return nil, errNoTriangles
	}

	m := model.NewModel(
		model.WithName(name),
		model.WithPositions(e.positions),
		model.WithUVs(e.uvs),
		model.WithIndices(e.indices),
	)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// sceneRoots returns the root nodes of the default scene, or nil when the document has no scenes.
func sceneRoots(doc *gltfDocument) ([]int, error) {
	if len(doc.Scenes) == 0 {
		return nil, nil
	}
	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", idx)
	}
	return doc.Scenes[idx].Nodes, nil
}

func (e *gltfMeshExtractorImpl) walk(doc *gltfDocument, nodeIndex int, parent mgl32.Mat4, visited map[int]bool) error {
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	if visited[nodeIndex] {
		return fmt.Errorf("node %d appears twice in the scene graph", nodeIndex)
	}
	visited[nodeIndex] = true

	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(nodeMatrix(node))
	if node.Mesh != nil {
		if err := e.appendMesh(*node.Mesh, world); err != nil {
			return fmt.Errorf("node %d: %w", nodeIndex, err)
		}
	}
	for _, child := range node.Children {
		if err := e.walk(doc, child, world, visited); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the local transform of a node: its matrix when present, otherwise T * R * S.
func nodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}
	m := mgl32.Ident4()
	if t := node.Translation; t != nil {
		m = m.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}
	if r := node.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := node.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

func (e *gltfMeshExtractorImpl) appendMesh(meshIndex int, world mgl32.Mat4) error {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	mesh := &doc.Meshes[meshIndex]
	for i := range mesh.Primitives {
		if err := e.appendPrimitive(&mesh.Primitives[i], world); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
	}
	return nil
}

// appendPrimitive bakes one triangle primitive into the merged buffers. Non-triangle primitives
// are skipped; primitives without TEXCOORD_0 get zero UVs.
func (e *gltfMeshExtractorImpl) appendPrimitive(prim *gltfPrimitive, world mgl32.Mat4) error {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil
	}

	posAccessor, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return fmt.Errorf("primitive has no %s attribute", gltfAttributePosition)
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return fmt.Errorf("failed to read positions: %w", err)
	}

	uvs := make([]mgl32.Vec2, len(positions))
	if uvAccessor, ok := prim.Attributes[gltfAttributeTexCoord0]; ok {
		texCoords, err := e.parser.ReadVec2Accessor(uvAccessor)
		if err != nil {
			return fmt.Errorf("failed to read texcoords: %w", err)
		}
		if len(texCoords) != len(positions) {
			return fmt.Errorf("%d texcoords for %d positions", len(texCoords), len(positions))
		}
		for i, uv := range texCoords {
			uvs[i] = mgl32.Vec2{uv.X(), 1 - uv.Y()}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	base := uint32(len(e.positions))
	for _, p := range positions {
		e.positions = append(e.positions, mgl32.TransformCoordinate(p, world))
	}
	e.uvs = append(e.uvs, uvs...)
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
		e.indices = append(e.indices, base+idx)
	}
	if e.material == nil && prim.Material != nil {
		m := *prim.Material
		e.material = &m
	}
	return nil
}
