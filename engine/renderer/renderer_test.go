package renderer

import (
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/lit"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestPipelineLayoutDescriptorsLit(t *testing.T) {
	layouts := PipelineLayoutDescriptors(lit.NewLitPipeline())

	if have := len(layouts); have != 3 {
		t.Fatalf("groups\nhave %v\nwant 3", have)
	}
	material := layouts[lit.MaterialGroup]
	if have := len(material.Entries); have != 6 {
		t.Fatalf("material entries\nhave %v\nwant 6", have)
	}
	for i, e := range material.Entries {
		if e.Binding != uint32(i) {
			t.Errorf("material entry %d binding\nhave %v\nwant %v", i, e.Binding, i)
		}
	}
	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for g, desc := range layouts {
		for _, e := range desc.Entries {
			if e.Visibility != both {
				t.Errorf("group %d binding %d visibility\nhave %v\nwant %v", g, e.Binding, e.Visibility, both)
			}
		}
	}
	if have := layouts[lit.CameraGroup].Entries[0].Buffer.MinBindingSize; have != 80 {
		t.Fatalf("camera MinBindingSize\nhave %v\nwant 80", have)
	}
}

func TestPipelineLayoutDescriptorsShareCameraAndLight(t *testing.T) {
	litLayouts := PipelineLayoutDescriptors(lit.NewLitPipeline())
	markerLayouts := PipelineLayoutDescriptors(lit.NewLightMarkerPipeline())

	if !reflect.DeepEqual(markerLayouts[lit.MarkerCameraGroup], litLayouts[lit.CameraGroup]) {
		t.Fatalf("camera layout\nhave %+v\nwant %+v", markerLayouts[lit.MarkerCameraGroup], litLayouts[lit.CameraGroup])
	}
	if !reflect.DeepEqual(markerLayouts[lit.MarkerLightGroup], litLayouts[lit.LightGroup]) {
		t.Fatalf("light layout\nhave %+v\nwant %+v", markerLayouts[lit.MarkerLightGroup], litLayouts[lit.LightGroup])
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16}},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16}},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		}},
		3: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if have := len(merged); have != 2 {
		t.Fatalf("groups\nhave %v\nwant 2", have)
	}
	entries := merged[0].Entries
	if len(entries) != 2 || entries[0].Binding != 0 || entries[1].Binding != 2 {
		t.Fatalf("group 0 entries\nhave %+v\nwant bindings [0 2]", entries)
	}
	if have := merged[3].Entries[0].Visibility; have != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("group 3 visibility\nhave %v\nwant vertex|fragment", have)
	}
	if len(mergeBindGroupLayouts()) != 0 {
		t.Fatal("merge of nothing: want empty map")
	}
}

func TestSamplerDescriptorKeepsNearest(t *testing.T) {
	s := material.DefaultSampler()
	s.MagFilter = wgpu.FilterModeNearest
	s.MinFilter = wgpu.FilterModeNearest
	s.MipmapFilter = wgpu.MipmapFilterModeNearest
	s.AddressModeU = wgpu.AddressModeClampToEdge

	d := samplerDescriptor("nearest", s)
	if d.MagFilter != wgpu.FilterModeNearest || d.MinFilter != wgpu.FilterModeNearest || d.MipmapFilter != wgpu.MipmapFilterModeNearest {
		t.Fatalf("filters\nhave %v/%v/%v\nwant nearest/nearest/nearest", d.MagFilter, d.MinFilter, d.MipmapFilter)
	}
	if d.AddressModeU != wgpu.AddressModeClampToEdge || d.AddressModeV != wgpu.AddressModeRepeat {
		t.Fatalf("address modes\nhave %v/%v\nwant clamp-to-edge/repeat", d.AddressModeU, d.AddressModeV)
	}

	lin := samplerDescriptor("default", material.DefaultSampler())
	if lin.MagFilter != wgpu.FilterModeLinear || lin.MipmapFilter != wgpu.MipmapFilterModeLinear {
		t.Fatalf("default filters\nhave %v/%v\nwant linear/linear", lin.MagFilter, lin.MipmapFilter)
	}

	zero := samplerDescriptor("zero", common.SamplerStagingData{})
	if zero.LodMaxClamp != 32 || zero.MaxAnisotropy != 1 || zero.MagFilter != wgpu.FilterModeNearest {
		t.Fatalf("zero sampler\nhave lod %v aniso %v mag %v\nwant 32 1 nearest", zero.LodMaxClamp, zero.MaxAnisotropy, zero.MagFilter)
	}
}
