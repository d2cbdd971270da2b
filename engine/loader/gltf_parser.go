package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errBufferSizeMismatch = errors.New("buffer shorter than its declared byteLength")
	errNoDocument         = errors.New("no document loaded")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir  string
	document *gltf.Document
}

// gltfParser decodes a glTF or GLB document and resolves its buffers.
type gltfParser interface {
	// Parse loads a .gltf or .glb file. External buffers resolve next to the file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - error: read, decode or validation failure
	Parse(path string) error

	// ParseReader decodes a document from a stream. JSON and GLB are told apart by content.
	//
	// Parameters:
	//   - r: the glTF JSON or GLB bytes
	//   - baseDir: directory for relative URIs, may be empty
	//
	// Returns:
	//   - error: read, decode or validation failure
	ParseReader(r io.Reader, baseDir string) error

	Document() *gltf.Document
	BaseDir() string
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltf.Document {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)
	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return p.accept(doc)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, baseDir string) error {
	p.baseDir = baseDir
	var dec *gltf.Decoder
	if baseDir != "" {
		dec = gltf.NewDecoderFS(r, os.DirFS(baseDir))
	} else {
		dec = gltf.NewDecoder(r)
	}
	doc := new(gltf.Document)
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	return p.accept(doc)
}

// accept checks the version and that every buffer holds its declared length.
func (p *gltfParserImpl) accept(doc *gltf.Document) error {
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	for i, buf := range doc.Buffers {
		if len(buf.Data) < int(buf.ByteLength) {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	p.document = doc
	return nil
}

// gltfAccessor bounds-checks an accessor index.
func gltfAccessor(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return doc.Accessors[index], nil
}
