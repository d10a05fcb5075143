package loader

import "io"

// loaderBackend decodes one model file format into an Asset.
type loaderBackend interface {
	// Load imports the asset stored at path. The model is named after the path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Asset: the imported mesh and base colour texture
	//   - error: error if loading fails
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a stream.
	//
	// Parameters:
	//   - name: the name given to the imported model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//   - baseDir: directory used to resolve relative URIs
	//
	// Returns:
	//   - *Asset: the imported mesh and base colour texture
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*Asset, error)
}
