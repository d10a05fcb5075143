package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadBuffer packs a unit quad: 4 VEC3 positions at 0, 4 VEC2 uvs at 48, 6 uint16 indices at 80.
func quadBuffer(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	positions := [4][3]float32{{-1, -1, 0}, {1, -1, 0}, {-1, 1, 0}, {1, 1, 0}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {0, 0}, {1, 0}}
	indices := [6]uint16{0, 1, 2, 2, 1, 3}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, positions))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uvs))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, indices))
	return buf.Bytes()
}

func redPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// quadDocument describes the quad under a node translated by (0, 0, 2) and scaled by 2.
func quadDocument(bufferURI string, bufferLen int) map[string]any {
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{map[string]any{
			"mesh":        0,
			"translation": []float32{0, 0, 2},
			"scale":       []float32{2, 2, 2},
		}},
		"meshes": []any{map[string]any{
			"name": "quad",
			"primitives": []any{map[string]any{
				"attributes": map[string]int{"POSITION": 0, "TEXCOORD_0": 1},
				"indices":    2,
			}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 4, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeFloat, "count": 4, "type": "VEC2"},
			map[string]any{"bufferView": 2, "componentType": gltfComponentTypeUnsignedShort, "count": 6, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 48},
			map[string]any{"buffer": 0, "byteOffset": 48, "byteLength": 32},
			map[string]any{"buffer": 0, "byteOffset": 80, "byteLength": 12},
		},
		"buffers": []any{bufferEntry(bufferURI, bufferLen)},
	}
}

func bufferEntry(uri string, length int) map[string]any {
	b := map[string]any{"byteLength": length}
	if uri != "" {
		b["uri"] = uri
	}
	return b
}

func writeDocument(t *testing.T, dir, name string, doc map[string]any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

// glbContainer wraps a JSON document and a BIN chunk into a GLB file, padding both to 4 bytes.
func glbContainer(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	jsonData, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := uint32(12 + 8 + len(jsonData) + 8 + len(bin))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: total}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestLoadGLTFWithDataURIBuffer(t *testing.T) {
	buf := quadBuffer(t)
	path := writeDocument(t, t.TempDir(), "quad.gltf", quadDocument(dataURI(buf), len(buf)))

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.Load(path)
	require.NoError(t, err)
	require.NotNil(t, asset.Model)
	assert.Nil(t, asset.BaseTexture)

	m := asset.Model
	assert.Equal(t, path, m.Name())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, m.Indices())

	positions := m.Positions()
	require.Len(t, positions, 4)
	assertVec3(t, mgl32.Vec3{-2, -2, 2}, positions[0])
	assertVec3(t, mgl32.Vec3{2, 2, 2}, positions[3])

	uvs := m.UVs()
	assert.Equal(t, mgl32.Vec2{0, 0}, uvs[0], "bottom-left vertex maps to v = 0")
	assert.Equal(t, mgl32.Vec2{1, 1}, uvs[3], "top-right vertex maps to v = 1")

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, asset, again)
	assert.Same(t, asset, l.Get(path))
	assert.Len(t, l.Assets(), 1)
}

func TestLoadGLTFWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	buf := quadBuffer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.bin"), buf, 0o644))
	path := writeDocument(t, dir, "quad.gltf", quadDocument("quad.bin", len(buf)))

	asset, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, asset.Model.TriangleCount())
}

func TestLoadGLBWithEmbeddedTexture(t *testing.T) {
	buf := quadBuffer(t)
	pngData := redPNG(t)
	bin := append(append([]byte{}, buf...), pngData...)

	doc := quadDocument("", len(bin))
	doc["bufferViews"] = append(doc["bufferViews"].([]any),
		map[string]any{"buffer": 0, "byteOffset": len(buf), "byteLength": len(pngData)})
	doc["images"] = []any{map[string]any{"bufferView": 3, "mimeType": "image/png"}}
	doc["textures"] = []any{map[string]any{"source": 0}}
	doc["materials"] = []any{map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
	}}
	doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)["material"] = 0

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.LoadReader("quad", bytes.NewReader(glbContainer(t, doc, bin)), true)
	require.NoError(t, err)
	assert.Equal(t, 2, asset.Model.TriangleCount())

	require.NotNil(t, asset.BaseTexture)
	assert.Equal(t, "quad#baseColor", asset.BaseTexture.Name())
	assert.Equal(t, 2, asset.BaseTexture.Width())
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, asset.BaseTexture.At(1, 1))
	assert.Same(t, asset, l.Get("quad"))
}

func TestLoadBaseColorFactor(t *testing.T) {
	buf := quadBuffer(t)
	doc := quadDocument(dataURI(buf), len(buf))
	doc["materials"] = []any{map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{0, 1, 0, 1}},
	}}
	doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)["material"] = 0
	path := writeDocument(t, t.TempDir(), "green.gltf", doc)

	asset, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)
	require.NotNil(t, asset.BaseTexture)
	assert.Equal(t, 1, asset.BaseTexture.Width())
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, asset.BaseTexture.At(0, 0))
}

func TestLoadNodeMatrixAndNoScene(t *testing.T) {
	buf := quadBuffer(t)

	t.Run("matrix", func(t *testing.T) {
		doc := quadDocument(dataURI(buf), len(buf))
		matrix := mgl32.Translate3D(5, 0, 0)
		doc["nodes"] = []any{map[string]any{"children": []int{1}}, map[string]any{"mesh": 0, "matrix": matrix}}
		path := writeDocument(t, t.TempDir(), "matrix.gltf", doc)

		asset, err := NewLoader(BackendTypeGLTF).Load(path)
		require.NoError(t, err)
		assertVec3(t, mgl32.Vec3{4, -1, 0}, asset.Model.Positions()[0])
	})

	t.Run("no scene", func(t *testing.T) {
		doc := quadDocument(dataURI(buf), len(buf))
		delete(doc, "scene")
		delete(doc, "scenes")
		path := writeDocument(t, t.TempDir(), "flat.gltf", doc)

		asset, err := NewLoader(BackendTypeGLTF).Load(path)
		require.NoError(t, err)
		assertVec3(t, mgl32.Vec3{1, 1, 0}, asset.Model.Positions()[3])
	})
}

func TestLoadErrors(t *testing.T) {
	buf := quadBuffer(t)
	dir := t.TempDir()

	_, err := NewLoader(BackendTypeGLTF).Load(filepath.Join(dir, "mesh.obj"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader(BackendTypeGLTF).Load(filepath.Join(dir, "missing.gltf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	oldVersion := quadDocument(dataURI(buf), len(buf))
	oldVersion["asset"] = map[string]any{"version": "1.0"}
	_, err = NewLoader(BackendTypeGLTF).Load(writeDocument(t, dir, "old.gltf", oldVersion))
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	lines := quadDocument(dataURI(buf), len(buf))
	lines["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)["mode"] = 1
	_, err = NewLoader(BackendTypeGLTF).Load(writeDocument(t, dir, "lines.gltf", lines))
	assert.ErrorIs(t, err, errNoTriangles)

	short := quadDocument(dataURI(buf[:40]), len(buf))
	_, err = NewLoader(BackendTypeGLTF).Load(writeDocument(t, dir, "short.gltf", short))
	assert.ErrorIs(t, err, errBufferSizeMismatch)

	_, err = NewLoader(BackendTypeGLTF).LoadReader("bad", bytes.NewReader(make([]byte, 16)), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)
}

func TestReadComponentNormalized(t *testing.T) {
	v, err := readComponent([]byte{255}, gltfComponentTypeUnsignedByte, true)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	v, err = readComponent([]byte{0x00, 0x80}, gltfComponentTypeUnsignedShort, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-4)

	v, err = readComponent([]byte{0x81}, gltfComponentTypeByte, true)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), v)

	_, err = readComponent([]byte{0, 0, 0, 0}, gltfComponentTypeUnsignedInt, false)
	assert.Error(t, err)
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:application/octet-stream;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = decodeDataURI("data:text/plain,hello")
	assert.ErrorIs(t, err, errInvalidDataURI)

	_, err = decodeDataURI("file.bin")
	assert.ErrorIs(t, err, errInvalidDataURI)
}
