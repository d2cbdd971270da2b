package material

import (
	"github.com/Carmen-Shannon/oxy-lit/common"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the Material.
// The name also labels the material's bind group provider.
//
// Parameters:
//   - name: the material identifier
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithTexture is an option builder that sets the encoded image source for a slot.
// The image is decoded by Material.Load.
//
// Parameters:
//   - slot: the texture slot
//   - tex: the image source, or nil to use the slot's default texel
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(slot Slot, tex *common.ImportedTexture) MaterialBuilderOption {
	return func(m *material) {
		m.sources[slot] = tex
	}
}

// WithTextureData is an option builder that sets already-decoded RGBA pixels for a slot.
//
// Parameters:
//   - slot: the texture slot
//   - data: the RGBA pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pixel data to a material
func WithTextureData(slot Slot, data common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		data.Linear = slot != SlotDiffuse
		m.textures[slot] = data
	}
}

// WithSampler is an option builder that overrides the sampler of a slot.
//
// Parameters:
//   - slot: the texture slot
//   - sampler: the sampler configuration
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSampler(slot Slot, sampler common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.samplers[slot] = sampler
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the Material.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}
