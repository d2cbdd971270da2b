package lit

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestBindingsMatchShaders(t *testing.T) {
	p := NewLitPipeline()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate\nhave %v\nwant nil", err)
	}
	vs := p.Shader(shader.ShaderTypeVertex)
	fs := p.Shader(shader.ShaderTypeFragment)

	for _, b := range Bindings() {
		name := vs.BindGroupVarName(b.Group, b.Binding)
		if name == "" {
			name = fs.BindGroupVarName(b.Group, b.Binding)
		}
		if name != b.Name {
			t.Errorf("group %d binding %d\nhave %q\nwant %q", b.Group, b.Binding, name, b.Name)
		}

		provider, ok := fs.Provider(b.Group)
		if !ok {
			provider, ok = vs.Provider(b.Group)
		}
		if !ok || provider != b.Provider {
			t.Errorf("group %d provider\nhave %q\nwant %q", b.Group, provider, b.Provider)
		}
	}

	material := fs.BindGroupLayoutDescriptor(MaterialGroup)
	if len(material.Entries) != 6 {
		t.Fatalf("material entries\nhave %d\nwant 6", len(material.Entries))
	}
	for i, e := range material.Entries {
		isSampler := i%2 == 1
		if isSampler && e.Sampler.Type != wgpu.SamplerBindingTypeFiltering {
			t.Errorf("binding %d: want filtering sampler", e.Binding)
		}
		if !isSampler && e.Texture.SampleType != wgpu.TextureSampleTypeFloat {
			t.Errorf("binding %d: want float texture", e.Binding)
		}
	}
}

func TestUniformSizes(t *testing.T) {
	p := NewLitPipeline()
	vs := p.Shader(shader.ShaderTypeVertex)

	cases := []struct {
		group int
		want  uint64
	}{
		{CameraGroup, camera.GPUCameraUniformSize},
		{LightGroup, light.GPULightUniformSize},
	}
	for _, c := range cases {
		entries := vs.BindGroupLayoutDescriptor(c.group).Entries
		if len(entries) != 1 {
			t.Fatalf("group %d entries\nhave %d\nwant 1", c.group, len(entries))
		}
		if entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
			t.Errorf("group %d: want uniform buffer", c.group)
		}
		if have := entries[0].Buffer.MinBindingSize; have != c.want {
			t.Errorf("group %d MinBindingSize\nhave %d\nwant %d", c.group, have, c.want)
		}
	}
}

func TestVertexLayouts(t *testing.T) {
	layouts := NewLitPipeline().Shader(shader.ShaderTypeVertex).VertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("vertex layouts\nhave %d\nwant 2", len(layouts))
	}

	vertex, instance := layouts[0], layouts[1]
	if vertex.ArrayStride != model.GPUVertexSize || vertex.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("slot 0\nhave stride %d step %v\nwant stride %d per-vertex", vertex.ArrayStride, vertex.StepMode, model.GPUVertexSize)
	}
	if instance.ArrayStride != model.GPUInstanceSize || instance.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("slot 1\nhave stride %d step %v\nwant stride %d per-instance", instance.ArrayStride, instance.StepMode, model.GPUInstanceSize)
	}

	wantOffsets := []uint64{0, 12, 20, 32, 44}
	for i, a := range vertex.Attributes {
		if a.ShaderLocation != uint32(i) || a.Offset != wantOffsets[i] {
			t.Errorf("vertex attribute %d\nhave location %d offset %d\nwant location %d offset %d", i, a.ShaderLocation, a.Offset, i, wantOffsets[i])
		}
	}
	for i, a := range instance.Attributes {
		if a.ShaderLocation != uint32(5+i) || a.Offset != uint64(16*i) {
			t.Errorf("instance attribute %d\nhave location %d offset %d\nwant location %d offset %d", i, a.ShaderLocation, a.Offset, 5+i, 16*i)
		}
	}
}

func TestLightMarkerLayout(t *testing.T) {
	p := NewLightMarkerPipeline()
	vs := p.Shader(shader.ShaderTypeVertex)
	if n := len(vs.VertexLayouts()); n != 1 {
		t.Fatalf("marker vertex layouts\nhave %d\nwant 1", n)
	}
	for group, want := range map[int]shader.AnnotationArg{MarkerCameraGroup: shader.AnnotationArgCamera, MarkerLightGroup: shader.AnnotationArgLight} {
		if have, _ := vs.Provider(group); have != want {
			t.Errorf("marker group %d\nhave %q\nwant %q", group, have, want)
		}
	}
	if have := p.Shader(shader.ShaderTypeFragment).EntryPoint(); have != "fs_main" {
		t.Errorf("marker fragment entry\nhave %q\nwant fs_main", have)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("Validate\nhave %v\nwant nil", err)
	}
}
