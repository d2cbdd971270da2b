package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormat is a wgpu vertex format and its packed byte size.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslVertexFormats maps WGSL attribute types to wgpu vertex formats.
var wgslVertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// field is one member of a parsed WGSL struct. location is -1 when absent.
type field struct {
	name     string
	typeName string
	location int
	builtin  bool
}

// wgslStruct is a struct block found in WGSL source.
type wgslStruct struct {
	name   string
	fields []field
}

var (
	structBlockRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex         = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// @group(1) @binding(0) var<uniform> camera: Camera;
	// @group(0) @binding(0) var t_diffuse: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first function tagged with the stage attribute, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct: a struct with
// at least one @location field and no @builtin field. Layouts are ordered by their lowest
// shader location, which assigns buffer slots. Structs named *Instance or *InstanceInput
// advance per instance. Structs with an attribute type that has no vertex format are skipped.
//
// Parameters:
//   - source: expanded WGSL source
//
// Returns:
//   - []wgpu.VertexBufferLayout: layouts in slot order
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	type slotted struct {
		first  int
		layout wgpu.VertexBufferLayout
	}
	var found []slotted

	for _, st := range parseStructs(stripComments(source)) {
		first, ok := vertexInputLocation(st)
		if !ok {
			continue
		}
		layout, ok := vertexBufferLayout(st)
		if !ok {
			continue
		}
		found = append(found, slotted{first: first, layout: layout})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].first < found[j].first })
	layouts := make([]wgpu.VertexBufferLayout, len(found))
	for i, f := range found {
		layouts[i] = f.layout
	}
	return layouts
}

// vertexInputLocation reports whether st is a vertex input struct and returns its lowest location.
func vertexInputLocation(st wgslStruct) (int, bool) {
	first := -1
	for _, f := range st.fields {
		if f.builtin {
			return 0, false
		}
		if f.location >= 0 && (first < 0 || f.location < first) {
			first = f.location
		}
	}
	return first, first >= 0
}

func vertexBufferLayout(st wgslStruct) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(st.fields))
	var offset uint64
	for _, f := range st.fields {
		vf, ok := wgslVertexFormats[f.typeName]
		if !ok || f.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += vf.size
	}

	step := wgpu.VertexStepModeVertex
	if strings.HasSuffix(st.name, "Instance") || strings.HasSuffix(st.name, "InstanceInput") {
		step = wgpu.VertexStepModeInstance
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    step,
		Attributes:  attrs,
	}, true
}

// parseBindGroupLayouts turns every @group/@binding declaration into a layout entry with the
// given visibility. Buffer entries get MinBindingSize from the resolved WGSL type layout.
//
// Parameters:
//   - source: expanded WGSL source
//   - visibility: the stage flag set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group, entries sorted by binding
//   - map[int]map[int]string: variable names keyed by group then binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	sizes := computeStructSizes(parseStructs(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		typeName := strings.TrimSpace(m[5])

		entry := classifyResource(uint32(binding), visibility, strings.TrimSpace(m[3]), typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveTypeLayout(typeName, sizes); ok && l.size > 0 {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		groups[group] = append(groups[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = strings.TrimSpace(m[4])
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out, names
}

// parseStructs extracts struct blocks from comment-free WGSL.
func parseStructs(source string) []wgslStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	out := make([]wgslStruct, 0, len(matches))
	for _, m := range matches {
		out = append(out, wgslStruct{name: m[1], fields: parseFields(m[2])})
	}
	return out
}

func parseFields(body string) []field {
	parts := splitAtTopLevelCommas(body)
	fields := make([]field, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		f := field{
			name:     fm[1],
			typeName: strings.TrimSpace(fm[2]),
			location: -1,
			builtin:  builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}

// splitAtTopLevelCommas splits at commas outside angle brackets, so array<T, N> stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
