package model

import (
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/bind_group_provider"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMaterialName is an option builder that selects the material the Model is drawn with.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - ModelBuilderOption: a function that applies the material option to a model
func WithMaterialName(name string) ModelBuilderOption {
	return func(m *model) {
		m.materialName = name
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key of the Model.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - ModelBuilderOption: a function that applies the pipeline key option to a model
func WithPipelineKey(key string) ModelBuilderOption {
	return func(m *model) {
		m.pipelineKey = key
	}
}

// WithInstances is an option builder that sets the initial instance list.
//
// Parameters:
//   - instances: the instances to draw
//
// Returns:
//   - ModelBuilderOption: a function that applies the instances option to a model
func WithInstances(instances ...Instance) ModelBuilderOption {
	return func(m *model) {
		m.instances = append(m.instances[:0], instances...)
	}
}

// WithMeshProvider is an option builder that sets the BindGroupProvider for mesh GPU resources.
//
// Parameters:
//   - provider: the BindGroupProvider holding vertex, index and instance buffers
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithBoundingRadius is an option builder that overrides the bounding sphere radius
// computed from the mesh.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.radius = radius
	}
}
