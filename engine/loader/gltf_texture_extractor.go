package loader

import (
	"bytes"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfTextureExtractorImpl is the implementation of the gltfTextureExtractor interface.
type gltfTextureExtractorImpl struct {
	parser gltfParser
}

// gltfTextureExtractor resolves a material's base colour into a texture usable as a canvas base.
type gltfTextureExtractor interface {
	// ExtractBaseColor decodes the baseColorTexture image of a material. A material with only a
	// baseColorFactor yields a 1x1 texture of that colour; a material with neither yields nil.
	//
	// Parameters:
	//   - materialIndex: the index of the material
	//   - name: the name given to the texture
	//
	// Returns:
	//   - *common.Texture: the base colour texture, or nil
	//   - error: error if the image cannot be located or decoded
	ExtractBaseColor(materialIndex int, name string) (*common.Texture, error)
}

var _ gltfTextureExtractor = &gltfTextureExtractorImpl{}

func newGLTFTextureExtractor(parser gltfParser) gltfTextureExtractor {
	return &gltfTextureExtractorImpl{parser: parser}
}

func (e *gltfTextureExtractorImpl) ExtractBaseColor(materialIndex int, name string) (*common.Texture, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}

	pbr := doc.Materials[materialIndex].PbrMetallicRoughness
	if pbr == nil {
		return nil, nil
	}
	if pbr.BaseColorTexture != nil {
		return e.loadTexture(pbr.BaseColorTexture.Index, name)
	}
	if f := pbr.BaseColorFactor; f != nil {
		return common.NewSolidTexture(name, 1, 1, common.PackColor(mgl32.Vec4(*f))), nil
	}
	return nil, nil
}

// loadTexture decodes the image behind a texture from a bufferView, a data URI or a file.
func (e *gltfTextureExtractorImpl) loadTexture(textureIndex int, name string) (*common.Texture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	src := doc.Textures[textureIndex].Source
	if src == nil {
		return nil, fmt.Errorf("texture %d has no image source", textureIndex)
	}
	if *src < 0 || *src >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *src)
	}
	img := &doc.Images[*src]

	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		data, err = e.parser.ReadBufferView(*img.BufferView)
	case img.URI != "":
		data, err = e.parser.ReadURI(img.URI)
	default:
		return nil, fmt.Errorf("image %d has neither a bufferView nor a URI", *src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image %d: %w", *src, err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %d: %w", *src, err)
	}
	return common.NewTextureFromImage(name, decoded), nil
}
