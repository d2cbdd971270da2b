package loader

import "io"

// loaderBackend is implemented once per file format.
type loaderBackend interface {
	// Load imports the file at path.
	Load(path string) (*Asset, error)

	// LoadReader imports a stream. Relative URIs resolve against baseDir.
	LoadReader(r io.Reader, baseDir string) (*Asset, error)
}
