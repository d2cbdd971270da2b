package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
)

// registryEntry pairs an embedded WGSL struct definition with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

// structRegistry maps struct keys to the definitions owned by the GPU type packages.
var structRegistry = map[AnnotationArg]registryEntry{
	AnnotationArgCamera:   {Source: camera.GPUCameraUniformSource, Type: "Camera"},
	AnnotationArgLight:    {Source: light.GPULightUniformSource, Type: "Light"},
	annotationArgVertex:   {Source: model.GPUVertexSource, Type: "VertexInput"},
	annotationArgInstance: {Source: model.GPUInstanceSource, Type: "InstanceInput"},
}

var addressSpaceRegistry = map[AnnotationArg]string{
	annotationArgStorageTypeUniform: "var<uniform>",
	annotationArgStorageTypeRead:    "var<storage, read>",
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and collects the binding
// declarations the scene uses to match bind groups with resource providers.
type PreProcessor interface {
	// Process expands every annotation in source. Include annotations become the struct
	// definition, group annotations become a declaration line, and provider annotations
	// are removed. The declarations list is reset on each call.
	//
	// Parameters:
	//   - source: the annotated WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: the first malformed annotation
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor.
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			// a struct may only be defined once per module
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			decl := fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, addressSpaceRegistry[a.Args[0]], a.Args[1], structRegistry[a.Args[2]].Type)
			out = append(out, decl)
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
