package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testVertexSource = `//@oxy:include vertex
//@oxy:include instance
//@oxy:include camera
//@oxy:include camera
//@oxy:group 1 0 storage_uniform camera camera

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

/* /* nested */ @group(9) @binding(9) var<uniform> ghost: Camera; */
@vertex
fn vs_main(vin: VertexInput, inst: InstanceInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_proj * vec4<f32>(vin.position, 1.0);
    out.uv = vin.tex_coords;
    return out;
}
`

const testFragmentSource = `//@oxy:provider 0 0 material diffuse_texture
@group(0) @binding(0) var t_diffuse: texture_2d<f32>;
//@oxy:provider 0 1 material diffuse_sampler
@group(0) @binding(1) var s_diffuse: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, s_diffuse, uv);
}
`

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testVertexSource)
	if err != nil {
		t.Fatalf("Process\nhave %v\nwant nil", err)
	}
	if n := strings.Count(out, "struct Camera"); n != 1 {
		t.Errorf("Camera definitions\nhave %d\nwant 1", n)
	}
	if !strings.Contains(out, "@group(1) @binding(0) var<uniform> camera: Camera;") {
		t.Errorf("missing generated declaration in\n%s", out)
	}
	if strings.Contains(out, "@oxy:") {
		t.Errorf("annotation left in output\n%s", out)
	}
	if n := len(pp.Declarations()); n != 1 {
		t.Errorf("declarations\nhave %d\nwant 1", n)
	}

	// declarations reset between runs
	if _, err := pp.Process(testFragmentSource); err != nil {
		t.Fatal(err)
	}
	if n := len(pp.Declarations()); n != 2 {
		t.Errorf("declarations after second run\nhave %d\nwant 2", n)
	}
}

func TestParseVertexShader(t *testing.T) {
	s := NewShaderFromSource("test_vs", ShaderTypeVertex, testVertexSource)
	if s.EntryPoint() != "vs_main" {
		t.Errorf("EntryPoint\nhave %q\nwant vs_main", s.EntryPoint())
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Error("Module does not carry the expanded source")
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("VertexLayouts\nhave %d\nwant 2", len(layouts))
	}
	if layouts[0].StepMode != wgpu.VertexStepModeVertex || layouts[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("step modes\nhave %v, %v\nwant vertex, instance", layouts[0].StepMode, layouts[1].StepMode)
	}

	groups := s.BindGroupLayoutDescriptors()
	if len(groups) != 1 {
		t.Fatalf("groups\nhave %d\nwant 1 (commented declaration must be ignored)", len(groups))
	}
	e := s.BindGroupLayoutDescriptor(1).Entries[0]
	if e.Visibility != wgpu.ShaderStageVertex || e.Buffer.MinBindingSize != 80 {
		t.Errorf("camera entry\nhave visibility %v size %d\nwant vertex 80", e.Visibility, e.Buffer.MinBindingSize)
	}
	if s.BindGroupVarName(1, 0) != "camera" || s.BindGroupVarName(4, 4) != "" {
		t.Error("BindGroupVarName lookup mismatch")
	}
}

func TestParseFragmentShader(t *testing.T) {
	s := NewShaderFromSource("test_fs", ShaderTypeFragment, testFragmentSource)
	if s.EntryPoint() != "fs_main" {
		t.Errorf("EntryPoint\nhave %q\nwant fs_main", s.EntryPoint())
	}
	if s.VertexLayouts() != nil {
		t.Errorf("fragment VertexLayouts\nhave %v\nwant nil", s.VertexLayouts())
	}
	entries := s.BindGroupLayoutDescriptor(0).Entries
	if len(entries) != 2 {
		t.Fatalf("entries\nhave %d\nwant 2", len(entries))
	}
	if entries[0].Texture.ViewDimension != wgpu.TextureViewDimension2D || entries[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("material entries\nhave %+v", entries)
	}
	if p, ok := s.Provider(0); !ok || p != AnnotationArgMaterial {
		t.Errorf("Provider(0)\nhave %q, %v\nwant material, true", p, ok)
	}
	if _, ok := s.Provider(3); ok {
		t.Error("Provider(3): have true, want false")
	}
}

func TestParseShaderErrors(t *testing.T) {
	if _, err := ParseShader("frag_as_vertex", ShaderTypeVertex, testFragmentSource); err == nil {
		t.Error("missing entry point: have nil, want error")
	}
	if _, err := ParseShader("bad", ShaderTypeFragment, "//@oxy:include nope\n"); err == nil {
		t.Error("bad annotation: have nil, want error")
	}

	defer func() {
		if recover() == nil {
			t.Error("NewShader with empty path: want panic")
		}
	}()
	NewShader("empty", ShaderTypeVertex, "")
}

func TestStructLayout(t *testing.T) {
	structs := parseStructs(stripComments(`
struct Inner { a: vec3<f32>, b: f32, }
struct Outer { m: mat4x4<f32>, inner: Inner, arr: array<vec4<f32>, 3>, }
`))
	sizes := computeStructSizes(structs)
	if have := sizes["Inner"]; have.size != 16 || have.align != 16 {
		t.Errorf("Inner\nhave %+v\nwant size 16 align 16", have)
	}
	if have := sizes["Outer"].size; have != 64+16+48 {
		t.Errorf("Outer size\nhave %d\nwant %d", have, 64+16+48)
	}
}
