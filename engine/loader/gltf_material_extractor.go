package loader

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor resolves a glTF material's textures into material slots.
type gltfMaterialExtractor interface {
	// ExtractTextures maps baseColorTexture, normalTexture and metallicRoughnessTexture onto
	// the diffuse, normal and metallic-roughness slots. Images are not decoded here.
	// Slots without a texture are absent from the result.
	//
	// Parameters:
	//   - materialIndex: the material, or -1 for none
	//
	// Returns:
	//   - map[material.Slot]*common.ImportedTexture: the textures found
	//   - error: an out-of-range index or unreadable embedded image
	ExtractTextures(materialIndex int) (map[material.Slot]*common.ImportedTexture, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractTextures(materialIndex int) (map[material.Slot]*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	out := make(map[material.Slot]*common.ImportedTexture)
	if materialIndex < 0 {
		return out, nil
	}
	if materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}
	mat := doc.Materials[materialIndex]

	refs := make(map[material.Slot]int)
	if nt := mat.NormalTexture; nt != nil && nt.Index != nil {
		refs[material.SlotNormal] = int(*nt.Index)
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			refs[material.SlotDiffuse] = int(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			refs[material.SlotMetallicRoughness] = int(pbr.MetallicRoughnessTexture.Index)
		}
	}
	for slot, index := range refs {
		tex, err := e.loadTexture(doc, index)
		if err != nil {
			return nil, fmt.Errorf("material %q: %s texture: %w", mat.Name, slot, err)
		}
		if tex == nil {
			continue
		}
		tex.Name = slot.String()
		out[slot] = tex
	}
	return out, nil
}

// loadTexture resolves a texture index. Embedded images (buffer view or data URI) are carried
// as bytes, external images as a path relative to the document. A texture without a source
// yields nil.
func (e *gltfMaterialExtractorImpl) loadTexture(doc *gltf.Document, textureIndex int) (*common.ImportedTexture, error) {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	source := int(*tex.Source)
	if source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", source)
	}
	img := doc.Images[source]

	result := &common.ImportedTexture{}
	if tex.Sampler != nil && int(*tex.Sampler) < len(doc.Samplers) {
		result.SamplerData = gltfSamplerToStagingData(doc.Samplers[*tex.Sampler])
	}

	switch {
	case img.BufferView != nil:
		data, err := readBufferViewRaw(doc, int(*img.BufferView))
		if err != nil {
			return nil, fmt.Errorf("image buffer view: %w", err)
		}
		result.Data = data
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("image data URI: %w", err)
		}
		result.Data = data
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
	default:
		return nil, nil
	}
	return result, nil
}

// readBufferViewRaw copies a whole buffer view. Images are stored without an accessor.
func readBufferViewRaw(doc *gltf.Document, bufferViewIndex int) ([]byte, error) {
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}
	bv := doc.BufferViews[bufferViewIndex]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
	if end > len(buf) {
		return nil, fmt.Errorf("bufferView exceeds buffer: offset=%d length=%d size=%d", bv.ByteOffset, bv.ByteLength, len(buf))
	}
	data := make([]byte, end-start)
	copy(data, buf[start:end])
	return data, nil
}

// gltfSamplerToStagingData converts a glTF sampler. Unset fields keep linear/repeat.
func gltfSamplerToStagingData(s *gltf.Sampler) *common.SamplerStagingData {
	result := material.DefaultSampler()

	if s.MagFilter == gltf.MagNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}
	switch s.MinFilter {
	case gltf.MinNearest, gltf.MinNearestMipMapNearest, gltf.MinNearestMipMapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	}
	switch s.MinFilter {
	case gltf.MinNearest, gltf.MinLinear, gltf.MinNearestMipMapNearest, gltf.MinLinearMipMapNearest:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	}
	result.AddressModeU = gltfWrapToAddressMode(s.WrapS)
	result.AddressModeV = gltfWrapToAddressMode(s.WrapT)
	return &result
}

func gltfWrapToAddressMode(wrap gltf.WrappingMode) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
