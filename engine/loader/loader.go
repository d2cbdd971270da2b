package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Asset is a static model read from disk: one merged mesh plus the textures of its first material.
type Asset struct {
	Name string
	Mesh *model.Mesh
	// Textures holds the slots the file provides. Images are decoded later by material.Load.
	Textures map[material.Slot]*common.ImportedTexture
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      sync.RWMutex
	cache   map[string]*Asset
	backend loaderBackend
}

// Loader imports model files and caches the result by path or name.
type Loader interface {
	// Load imports a model file, or returns the cached asset for the same path.
	// The backend is chosen by extension (.gltf, .glb).
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: an unsupported extension or an import failure
	Load(path string) (*Asset, error)

	// LoadReader imports a model from a stream and caches it under name. glTF JSON and
	// GLB are told apart by content. Relative URIs inside the document resolve against baseDir.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the model bytes
	//   - baseDir: directory for external buffers and images
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: an import failure
	LoadReader(name string, r io.Reader, baseDir string) (*Asset, error)

	// Get returns a cached asset, or nil.
	Get(name string) *Asset

	// Assets returns a copy of the cache.
	Assets() map[string]*Asset
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given backend.
//
// Parameters:
//   - backendType: the format backend (BackendTypeGLTF)
//   - options: LoaderBuilderOption functions applied in order
//
// Returns:
//   - Loader: the loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache: make(map[string]*Asset),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	asset, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	asset.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l.store(path, asset)
	return asset, nil
}

func (l *loader) LoadReader(name string, r io.Reader, baseDir string) (*Asset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("load %q: no backend", name)
	}
	asset, err := l.backend.LoadReader(r, baseDir)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	asset.Name = name
	l.store(name, asset)
	return asset, nil
}

func (l *loader) store(key string, asset *Asset) {
	l.mu.Lock()
	l.cache[key] = asset
	l.mu.Unlock()
	common.Logger().Debug("model loaded", "name", asset.Name, "vertices", len(asset.Mesh.Vertices),
		"triangles", len(asset.Mesh.Indices)/3, "textures", len(asset.Textures))
}

func (l *loader) Get(name string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Asset, len(l.cache))
	for k, v := range l.cache {
		result[k] = v
	}
	return result
}

// resolveBackend selects a backend by file extension. Only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("no backend for %s", ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %q", ext)
	}
}
