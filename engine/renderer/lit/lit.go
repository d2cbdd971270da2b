// Package lit holds the tangent-space Blinn-Phong pipeline and the unlit light marker
// pipeline, their embedded WGSL and the binding table the scene wires resources to.
package lit

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/shader"
	"github.com/gogpu/naga"
)

const (
	// PipelineKey names the lit pipeline.
	PipelineKey = "lit"

	// LightMarkerKey names the unlit pipeline that draws a cube at the light.
	LightMarkerKey = "light_marker"
)

// Bind group indices of the lit pipeline.
const (
	MaterialGroup = 0
	CameraGroup   = 1
	LightGroup    = 2
)

// Bind group indices of the light marker pipeline.
const (
	MarkerCameraGroup = 0
	MarkerLightGroup  = 1
)

//go:embed assets/lit_vertex.wgsl
var litVertexSource string

//go:embed assets/lit_fragment.wgsl
var litFragmentSource string

//go:embed assets/light_marker.wgsl
var lightMarkerSource string

// source is one embedded shader stage.
type source struct {
	key        string
	shaderType shader.ShaderType
	wgsl       string
}

var sources = []source{
	{key: PipelineKey + "_vertex", shaderType: shader.ShaderTypeVertex, wgsl: litVertexSource},
	{key: PipelineKey + "_fragment", shaderType: shader.ShaderTypeFragment, wgsl: litFragmentSource},
	{key: LightMarkerKey + "_vertex", shaderType: shader.ShaderTypeVertex, wgsl: lightMarkerSource},
	{key: LightMarkerKey + "_fragment", shaderType: shader.ShaderTypeFragment, wgsl: lightMarkerSource},
}

// BindingKind is the resource category bound at a slot.
type BindingKind string

const (
	BindingTexture BindingKind = "texture"
	BindingSampler BindingKind = "sampler"
	BindingUniform BindingKind = "uniform"
)

// Binding is one row of the lit pipeline's resource table.
type Binding struct {
	Group    int
	Binding  int
	Name     string
	Kind     BindingKind
	Provider shader.AnnotationArg
	// Used is false for bindings that are uploaded but never read by the shading equation.
	Used bool
}

// Bindings returns the resource table of the lit pipeline, ordered by group then binding.
//
// Returns:
//   - []Binding: every binding the lit shaders declare
func Bindings() []Binding {
	return []Binding{
		{MaterialGroup, 0, "t_diffuse", BindingTexture, shader.AnnotationArgMaterial, true},
		{MaterialGroup, 1, "s_diffuse", BindingSampler, shader.AnnotationArgMaterial, true},
		{MaterialGroup, 2, "t_normal", BindingTexture, shader.AnnotationArgMaterial, true},
		{MaterialGroup, 3, "s_normal", BindingSampler, shader.AnnotationArgMaterial, true},
		{MaterialGroup, 4, "t_metallic_roughness", BindingTexture, shader.AnnotationArgMaterial, false},
		{MaterialGroup, 5, "s_metallic_roughness", BindingSampler, shader.AnnotationArgMaterial, false},
		{CameraGroup, 0, "camera", BindingUniform, shader.AnnotationArgCamera, true},
		{LightGroup, 0, "light", BindingUniform, shader.AnnotationArgLight, true},
	}
}

// NewLitPipeline builds the lit pipeline: depth-tested, back-face culled, opaque.
//
// Parameters:
//   - opts: extra options applied after the lit defaults
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, not yet created on a device
func NewLitPipeline(opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	base := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(shader.NewShaderFromSource(sources[0].key, sources[0].shaderType, sources[0].wgsl)),
		pipeline.WithFragmentShader(shader.NewShaderFromSource(sources[1].key, sources[1].shaderType, sources[1].wgsl)),
	}
	return pipeline.NewPipeline(PipelineKey, append(base, opts...)...)
}

// NewLightMarkerPipeline builds the unlit marker pipeline. It draws only vertex slot 0.
func NewLightMarkerPipeline(opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	base := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(shader.NewShaderFromSource(sources[2].key, sources[2].shaderType, sources[2].wgsl)),
		pipeline.WithFragmentShader(shader.NewShaderFromSource(sources[3].key, sources[3].shaderType, sources[3].wgsl)),
	}
	return pipeline.NewPipeline(LightMarkerKey, append(base, opts...)...)
}

// NewPipelines returns the lit pipeline and, when marker is set, the light marker pipeline.
func NewPipelines(marker bool) []pipeline.Pipeline {
	out := []pipeline.Pipeline{NewLitPipeline()}
	if marker {
		out = append(out, NewLightMarkerPipeline())
	}
	return out
}

// Validate pre-processes every embedded shader and compiles it to SPIR-V with naga.
//
// Returns:
//   - error: the first failure, prefixed with the shader key
func Validate() error {
	for _, src := range sources {
		s, err := shader.ParseShader(src.key, src.shaderType, src.wgsl)
		if err != nil {
			return err
		}
		if _, err := naga.Compile(s.Source()); err != nil {
			return fmt.Errorf("shader %s: %w", src.key, err)
		}
	}
	return nil
}
