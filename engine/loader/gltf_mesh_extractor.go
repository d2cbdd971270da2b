package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var errNoTriangles = errors.New("document has no triangle primitives")

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts the triangle primitives of a parsed document into a single indexed mesh.
type gltfMeshExtractor interface {
	// ExtractMesh merges every primitive of every mesh into one model.Mesh in object space.
	// Node transforms are not applied.
	//
	// Returns:
	//   - *model.Mesh: the merged mesh with a full tangent basis per vertex
	//   - int: the material index of the first primitive, or -1 when it has none
	//   - error: an accessor error or errNoTriangles
	ExtractMesh() (*model.Mesh, int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh() (*model.Mesh, int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, -1, errNoDocument
	}

	out := &model.Mesh{}
	materialIndex := -1
	first := true
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, -1, fmt.Errorf("mesh %d primitive %d: unsupported mode %v, only triangles", mi, pi, prim.Mode)
			}
			vertices, indices, err := e.extractPrimitive(doc, prim)
			if err != nil {
				return nil, -1, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if first {
				if prim.Material != nil {
					materialIndex = int(*prim.Material)
				}
				first = false
			}
			base := uint32(len(out.Vertices))
			out.Vertices = append(out.Vertices, vertices...)
			for _, idx := range indices {
				out.Indices = append(out.Indices, idx+base)
			}
		}
	}
	if len(out.Indices) < 3 {
		return nil, -1, errNoTriangles
	}
	return out, materialIndex, nil
}

// extractPrimitive reads one primitive. Missing normals are generated from the faces, missing
// tangents from the UVs. A TANGENT attribute's w sign sets the bitangent handedness.
func (e *gltfMeshExtractorImpl) extractPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]model.GPUVertex, []uint32, error) {
	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, errors.New("primitive has no POSITION attribute")
	}
	acc, err := gltfAccessor(doc, posIndex)
	if err != nil {
		return nil, nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}
	n := len(positions)
	vertices := make([]model.GPUVertex, n)
	for i, p := range positions {
		vertices[i].Position = p
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := gltfAccessor(doc, *prim.Indices)
		if err != nil {
			return nil, nil, err
		}
		if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= n {
				return nil, nil, fmt.Errorf("index %d out of range for %d vertices", idx, n)
			}
		}
	} else {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)/3*3]

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return nil, nil, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("texcoords: %w", err)
		}
		for i := 0; i < n && i < len(uvs); i++ {
			vertices[i].TexCoords = uvs[i]
		}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return nil, nil, err
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("normals: %w", err)
		}
		for i := 0; i < n && i < len(normals); i++ {
			vertices[i].Normal = common.Normalize3(normals[i])
		}
	} else {
		generateNormals(vertices, indices)
	}

	idx, ok := prim.Attributes[gltf.TANGENT]
	if !ok {
		model.ComputeTangents(vertices, indices)
		return vertices, indices, nil
	}
	acc, err = gltfAccessor(doc, idx)
	if err != nil {
		return nil, nil, err
	}
	tangents, err := modeler.ReadTangent(doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("tangents: %w", err)
	}
	for i := 0; i < n && i < len(tangents); i++ {
		t := common.Normalize3([3]float32{tangents[i][0], tangents[i][1], tangents[i][2]})
		w := float32(1)
		if tangents[i][3] < 0 {
			w = -1
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = common.Scale3(common.Cross3(vertices[i].Normal, t), w)
	}
	return vertices, indices, nil
}

// generateNormals writes area-weighted smooth normals. Vertices touched by no
// non-degenerate triangle get +Y.
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	acc := make([][3]float32, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		// unnormalized: length is twice the triangle area
		face := common.Cross3(common.Sub3(vertices[i1].Position, p0), common.Sub3(vertices[i2].Position, p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			acc[idx] = common.Add3(acc[idx], face)
		}
	}
	for i := range vertices {
		if common.Dot3(acc[i], acc[i]) < 1e-12 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = common.Normalize3(acc[i])
	}
}
