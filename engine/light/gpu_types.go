package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightUniformSource is the canonical WGSL definition of the Light struct.
// Matches GPULightUniform layout exactly (32 bytes).
//
//go:embed assets/light.wgsl
var GPULightUniformSource string

// GPULightUniformSize is the byte size of the light uniform buffer.
const GPULightUniformSize = 32

// GPULightUniform is the GPU-aligned representation of the single point light.
// Both fields are vec3 with 16-byte alignment, so each is followed by 4 bytes of padding.
type GPULightUniform struct {
	Position [3]float32 // offset  0: world-space position
	_pad0    float32    // offset 12
	Color    [3]float32 // offset 16: linear RGB, used as-is for every lighting term
	_pad1    float32    // offset 28
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the 32-byte buffer
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, GPULightUniformSize)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
