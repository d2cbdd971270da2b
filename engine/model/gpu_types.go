package model

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (56 bytes, locations 0..4).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertexSize is the byte stride of one GPUVertex in a vertex buffer.
const GPUVertexSize = 56

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Vertex attributes are tightly packed, so no padding is required.
type GPUVertex struct {
	Position  [3]float32 // offset  0, location 0: object-space position
	TexCoords [2]float32 // offset 12, location 1: UV in [0, 1]
	Normal    [3]float32 // offset 20, location 2: object-space normal
	Tangent   [3]float32 // offset 32, location 3: object-space tangent
	Bitangent [3]float32 // offset 44, location 4: object-space bitangent
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (56)
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	g.put(buf)
	return buf
}

func (g *GPUVertex) put(buf []byte) {
	fields := [...]float32{
		g.Position[0], g.Position[1], g.Position[2],
		g.TexCoords[0], g.TexCoords[1],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.Tangent[0], g.Tangent[1], g.Tangent[2],
		g.Bitangent[0], g.Bitangent[1], g.Bitangent[2],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// MarshalVertices packs a vertex slice into one contiguous vertex buffer.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * 56 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*GPUVertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*GPUVertexSize:])
	}
	return buf
}

// GPUInstanceSource is the canonical WGSL definition of the InstanceInput struct.
// Matches GPUInstance layout exactly (128 bytes, locations 5..12, instance step mode).
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstanceSize is the byte stride of one GPUInstance in an instance buffer.
const GPUInstanceSize = 128

// GPUInstance is the per-instance transform record streamed at instance rate.
// Each matrix travels as four vec4 columns because a mat4 cannot be bound as a
// single vertex attribute. InverseModel must be the exact inverse of Model.
type GPUInstance struct {
	Model        [4][4]float32 // offset  0, locations 5..8: model matrix columns
	InverseModel [4][4]float32 // offset 64, locations 9..12: inverse model matrix columns
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (128)
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// ModelMatrix reassembles the column-major model matrix.
func (g *GPUInstance) ModelMatrix() [16]float32 {
	return common.MatrixFromColumns(g.Model)
}

// InverseModelMatrix reassembles the column-major inverse model matrix.
func (g *GPUInstance) InverseModelMatrix() [16]float32 {
	return common.MatrixFromColumns(g.InverseModel)
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, GPUInstanceSize)
	g.put(buf)
	return buf
}

func (g *GPUInstance) put(buf []byte) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			binary.LittleEndian.PutUint32(buf[(c*4+r)*4:], math.Float32bits(g.Model[c][r]))
			binary.LittleEndian.PutUint32(buf[64+(c*4+r)*4:], math.Float32bits(g.InverseModel[c][r]))
		}
	}
}

// Unmarshal reads a GPUInstance back from its 128-byte buffer form.
//
// Parameters:
//   - buf: a buffer produced by Marshal
//
// Returns:
//   - error: an error if buf is shorter than one instance
func (g *GPUInstance) Unmarshal(buf []byte) error {
	if len(buf) < GPUInstanceSize {
		return fmt.Errorf("instance buffer has %d bytes, want %d", len(buf), GPUInstanceSize)
	}
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			g.Model[c][r] = math.Float32frombits(binary.LittleEndian.Uint32(buf[(c*4+r)*4:]))
			g.InverseModel[c][r] = math.Float32frombits(binary.LittleEndian.Uint32(buf[64+(c*4+r)*4:]))
		}
	}
	return nil
}

// MarshalInstances packs instance records into one contiguous instance buffer.
//
// Parameters:
//   - instances: the instance records to pack
//
// Returns:
//   - []byte: len(instances) * 128 bytes
func MarshalInstances(instances []GPUInstance) []byte {
	buf := make([]byte, len(instances)*GPUInstanceSize)
	for i := range instances {
		instances[i].put(buf[i*GPUInstanceSize:])
	}
	return buf
}
