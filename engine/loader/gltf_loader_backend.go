package loader

import (
	"io"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend for glTF/GLB files. Each call gets a fresh parser,
// so one backend may serve concurrent loads.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*Asset, error) {
	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, err
	}
	return b.extract(p)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, baseDir string) (*Asset, error) {
	p := newGLTFParser()
	if err := p.ParseReader(r, baseDir); err != nil {
		return nil, err
	}
	return b.extract(p)
}

func (b *gltfLoaderBackendImpl) extract(p gltfParser) (*Asset, error) {
	mesh, materialIndex, err := newGLTFMeshExtractor(p).ExtractMesh()
	if err != nil {
		return nil, err
	}
	textures, err := newGLTFMaterialExtractor(p).ExtractTextures(materialIndex)
	if err != nil {
		return nil, err
	}
	return &Asset{Mesh: mesh, Textures: textures}, nil
}
