package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Slot identifies one of the three texture/sampler pairs of a material.
// Slot s occupies bindings 2s (texture) and 2s+1 (sampler) of the material bind group.
type Slot int

const (
	// SlotDiffuse is the albedo texture. Its alpha becomes the output alpha.
	SlotDiffuse Slot = iota
	// SlotNormal is the tangent-space normal map. The sampled RGB is used as the
	// normal direction without remapping from [0,1] to [-1,1].
	SlotNormal
	// SlotMetallicRoughness is bound for layout compatibility but the lighting
	// equation does not read it.
	SlotMetallicRoughness

	slotCount
)

// TextureBinding returns the binding index of the slot's texture.
func (s Slot) TextureBinding() int { return int(s) * 2 }

// SamplerBinding returns the binding index of the slot's sampler.
func (s Slot) SamplerBinding() int { return int(s)*2 + 1 }

func (s Slot) String() string {
	switch s {
	case SlotDiffuse:
		return "diffuse"
	case SlotNormal:
		return "normal"
	case SlotMetallicRoughness:
		return "metallic_roughness"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Fallback texels used when a slot has no texture.
var (
	// DefaultDiffuse is opaque white.
	DefaultDiffuse = [4]uint8{255, 255, 255, 255}
	// DefaultNormal encodes the tangent-space direction (0,0,1) as stored, with no remap.
	DefaultNormal = [4]uint8{0, 0, 255, 255}
	// DefaultMetallicRoughness is non-metallic, fully rough.
	DefaultMetallicRoughness = [4]uint8{0, 255, 0, 255}
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	sources           [slotCount]*common.ImportedTexture
	textures          [slotCount]common.TextureStagingData
	samplers          [slotCount]common.SamplerStagingData
	loaded            bool
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material: the three texture/sampler pairs
// of the lit pipeline's material bind group and the GPU resources created for them.
//
// Texture sources are decoded once by Load. Slots without a source fall back to a
// 1x1 default texel so the bind group is always complete.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Load decodes every texture source into RGBA staging data. Calling it again is a no-op.
	//
	// Returns:
	//   - error: the first decode error, wrapped with the slot name
	Load() error

	// Texture returns the staged pixels of a slot. Valid after Load.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - common.TextureStagingData: the slot's pixels
	Texture(slot Slot) common.TextureStagingData

	// Sampler returns the sampler configuration of a slot.
	//
	// Parameters:
	//   - slot: the texture slot
	//
	// Returns:
	//   - common.SamplerStagingData: the slot's sampler settings
	Sampler(slot Slot) common.SamplerStagingData

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	PipelineKey() string

	// BindGroupProvider retrieves the provider holding GPU-side resources for this material.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	SetPipelineKey(key string)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		name:        "material",
		pipelineKey: "lit",
	}
	for s := range slotCount {
		m.samplers[s] = DefaultSampler()
	}
	for _, opt := range options {
		opt(m)
	}
	m.bindGroupProvider = bind_group_provider.NewBindGroupProvider(m.name)
	return m
}

// DefaultSampler returns linear filtering with repeat addressing.
func DefaultSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Load() error {
	if m.loaded {
		return nil
	}
	defaults := [slotCount][4]uint8{DefaultDiffuse, DefaultNormal, DefaultMetallicRoughness}
	for s := range slotCount {
		linear := s != SlotDiffuse
		if m.textures[s].Pixels != nil {
			continue
		}
		src := m.sources[s]
		if src == nil {
			m.textures[s] = common.SolidTexture(defaults[s], linear)
			continue
		}
		src.Linear = linear
		data, err := src.Decode()
		if err != nil {
			return fmt.Errorf("material %s: %s texture: %w", m.name, s, err)
		}
		m.textures[s] = data
		if src.SamplerData != nil {
			m.samplers[s] = *src.SamplerData
		}
	}
	m.loaded = true
	return nil
}

func (m *material) Texture(slot Slot) common.TextureStagingData {
	return m.textures[slot]
}

func (m *material) Sampler(slot Slot) common.SamplerStagingData {
	return m.samplers[slot]
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}
