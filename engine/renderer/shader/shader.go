package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader module feeds.
type ShaderType int

const (
	// ShaderTypeVertex marks a module with an @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment marks a module with an @fragment entry point.
	ShaderTypeFragment
)

// String returns the WGSL stage attribute name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Visibility returns the wgpu stage flag for bindings declared by this shader type.
func (t ShaderType) Visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	declarations               []Annotation
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module together with the layout metadata parsed from it.
// Pipelines are built from this metadata, so the WGSL text is the single source of truth
// for bind group layouts and vertex buffer layouts.
type Shader interface {
	// Key returns the unique name of the shader.
	Key() string

	// Source returns the expanded WGSL source (annotations already processed).
	Source() string

	// ShaderType returns the stage this shader feeds.
	ShaderType() ShaderType

	// EntryPoint returns the name of the @vertex or @fragment function, matching ShaderType.
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the parsed layout of one bind group, or an empty
	// descriptor when the shader declares nothing in that group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: entries sorted by binding index
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every parsed bind group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at group/binding, or "".
	BindGroupVarName(group, binding int) string

	// BindGroupVarNames returns all variable names keyed by group then binding.
	BindGroupVarNames() map[int]map[int]string

	// VertexLayouts returns the vertex buffer layouts in slot order. Slot 0 is the per-vertex
	// buffer; structs whose name ends in "Instance" or "InstanceInput" step per instance.
	// Fragment shaders return nil.
	VertexLayouts() []wgpu.VertexBufferLayout

	// Declarations returns the group and provider annotations found in the original source.
	Declarations() []Annotation

	// Provider returns the identity of the resource that owns a bind group, taken from the
	// first annotation declared in that group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - AnnotationArg: the provider identity
	//   - bool: false when no annotation names the group
	Provider(group int) (AnnotationArg, bool)

	// Module returns the shader module descriptor used to create the GPU module.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reads annotated WGSL from disk and parses it.
// It panics if the file cannot be read or an annotation is malformed, since shaders are
// loaded at start-up and a broken shader leaves nothing to render.
//
// Parameters:
//   - key: unique name of the shader
//   - shaderType: the stage the shader feeds
//   - sourcePath: path of the .wgsl file
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader %s: empty source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader %s: read %q: %v", key, sourcePath, err))
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource parses annotated WGSL held in memory, typically an embedded asset.
// It panics on malformed annotations or a missing entry point.
//
// Parameters:
//   - key: unique name of the shader
//   - shaderType: the stage the shader feeds
//   - source: the annotated WGSL source
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	s, err := ParseShader(key, shaderType, source)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// ParseShader is the error-returning form of NewShaderFromSource.
//
// Parameters:
//   - key: unique name of the shader
//   - shaderType: the stage the shader feeds
//   - source: the annotated WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: a malformed annotation or a missing entry point
func ParseShader(key string, shaderType ShaderType, source string) (Shader, error) {
	pp := NewPreProcessor()
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       expanded,
		shaderType:   shaderType,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	s.entryPoint = parseEntryPoint(expanded, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no @%s entry point", key, shaderType)
	}
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(expanded)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(expanded, shaderType.Visibility())
	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: expanded},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Provider(group int) (AnnotationArg, bool) {
	for _, d := range s.declarations {
		if d.Group != nil && *d.Group == group {
			return d.Provider(), true
		}
	}
	return "", false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
