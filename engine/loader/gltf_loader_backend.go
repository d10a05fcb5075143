package loader

import (
	"io"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend for glTF 2.0 JSON and GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}
	return b.extract(parser, path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, err
	}
	return b.extract(parser, name)
}

// extract builds the merged mesh and, when its first primitive has a material, the base colour.
func (b *gltfLoaderBackendImpl) extract(parser gltfParser, name string) (*Asset, error) {
	meshes := newGLTFMeshExtractor(parser)
	m, err := meshes.ExtractModel(name)
	if err != nil {
		return nil, err
	}

	asset := &Asset{Model: m}
	if idx := meshes.MaterialIndex(); idx != nil {
		tex, err := newGLTFTextureExtractor(parser).ExtractBaseColor(*idx, name+"#baseColor")
		if err != nil {
			return nil, err
		}
		asset.BaseTexture = tex
	}
	return asset, nil
}
