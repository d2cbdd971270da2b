// annotations.go defines the @oxy: comment annotations understood by the WGSL pre-processor.
// An annotation is a single "//@oxy:" comment line. It either pastes a registered struct
// definition into the shader, generates a @group/@binding declaration, or records which
// scene resource owns a hand-written binding.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation.
type AnnotationType string

const (
	// annotationTypeInclude pastes a registered struct definition at the annotation site.
	// It is consumed during pre-processing and never becomes a declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a buffer declaration for a registered struct and
	// records it as a declaration. The struct key doubles as the provider identity.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_type>
	//
	// Example: //@oxy:group 1 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records the owner of a hand-written binding (textures, samplers)
	// without emitting WGSL. An optional role names the binding's purpose inside the group.
	//
	// Syntax: //@oxy:provider <group> <binding> <provider_identity> [binding_role]
	//
	// Example: //@oxy:provider 0 2 material normal_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is one parsed @oxy: line.
type Annotation struct {
	Type AnnotationType

	// Args depends on Type:
	//   - include:  [0] struct key
	//   - group:    [0] address space, [1] var name, [2] struct key
	//   - provider: [0] provider identity, [1] binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line, used in error messages.
	Line int

	// Group and Binding are nil for include annotations.
	Group   *int
	Binding *int
}

// Provider returns the identity of the scene resource that owns the annotated binding.
//
// Returns:
//   - AnnotationArg: the struct key of a group annotation or the identity of a provider annotation
func (a Annotation) Provider() AnnotationArg {
	switch a.Type {
	case AnnotationTypeBindingGroup:
		return a.Args[2]
	case AnnotationTypeProvider:
		return a.Args[0]
	default:
		return ""
	}
}

// Role returns the binding role of a provider annotation, or "" when none was given.
func (a Annotation) Role() AnnotationArg {
	if a.Type == AnnotationTypeProvider && len(a.Args) > 1 {
		return a.Args[1]
	}
	return ""
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Struct keys. Each maps to a Go GPU type with an embedded .wgsl definition.
const (
	// AnnotationArgCamera is the Camera uniform (engine/camera/assets/camera_uniform.wgsl).
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight is the Light uniform (engine/light/assets/light.wgsl).
	AnnotationArgLight AnnotationArg = "light"

	// annotationArgVertex is the per-vertex input (engine/model/assets/vertex.wgsl).
	annotationArgVertex AnnotationArg = "vertex"

	// annotationArgInstance is the per-instance input (engine/model/assets/instance.wgsl).
	annotationArgInstance AnnotationArg = "instance"
)

// Address spaces accepted by group annotations.
const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead    AnnotationArg = "storage_read"
)

// Provider identities. Camera and light double as struct keys.
const (
	// AnnotationArgMaterial owns the texture/sampler pairs of a material.
	AnnotationArgMaterial AnnotationArg = "material"
)

// Material binding roles.
const (
	AnnotationArgDiffuseTexture           AnnotationArg = "diffuse_texture"
	AnnotationArgDiffuseSampler           AnnotationArg = "diffuse_sampler"
	AnnotationArgNormalTexture            AnnotationArg = "normal_texture"
	AnnotationArgNormalSampler            AnnotationArg = "normal_sampler"
	AnnotationArgMetallicRoughnessTexture AnnotationArg = "metallic_roughness_texture"
	AnnotationArgMetallicRoughnessSampler AnnotationArg = "metallic_roughness_sampler"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	annotationArgVertex,
	annotationArgInstance,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgMaterial,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgDiffuseTexture,
	AnnotationArgDiffuseSampler,
	AnnotationArgNormalTexture,
	AnnotationArgNormalSampler,
	AnnotationArgMetallicRoughnessTexture,
	AnnotationArgMetallicRoughnessSampler,
}

// parseAnnotation parses one source line. Lines without the prefix return (nil, nil).
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil
//   - error: a descriptive error for a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one struct type", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy:include", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group takes group, binding, address space, var name and struct type", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy:group", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy:group", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	case AnnotationTypeProvider:
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy:provider takes group, binding, provider identity and an optional role", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy:provider", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy:provider", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseSlot(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
