package shading

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
)

func TestLightingHeadOn(t *testing.T) {
	color := [3]float32{0.8, 0.6, 0.2}
	for _, n := range [][3]float32{{0, 0, 1}, {1, 0, 0}, common.Normalize3([3]float32{1, 2, 3})} {
		terms := Lighting(n, n, n, color)
		if !vecApprox(terms.Diffuse, color, 1e-6) {
			t.Fatalf("N=%v diffuse\nhave %v\nwant %v", n, terms.Diffuse, color)
		}
		if !vecApprox(terms.Specular, color, 1e-5) {
			t.Fatalf("N=%v specular\nhave %v\nwant %v", n, terms.Specular, color)
		}
		if !vecApprox(terms.Ambient, common.Scale3(color, AmbientStrength), 1e-7) {
			t.Fatalf("N=%v ambient\nhave %v", n, terms.Ambient)
		}
	}
}

func TestLightingPerpendicular(t *testing.T) {
	n := [3]float32{0, 0, 1}
	terms := Lighting(n, [3]float32{1, 0, 0}, n, [3]float32{1, 1, 1})
	if terms.Diffuse != ([3]float32{}) {
		t.Fatalf("diffuse with L perpendicular to N\nhave %v\nwant 0", terms.Diffuse)
	}
	behind := Lighting(n, [3]float32{0, 0, -1}, n, [3]float32{1, 1, 1})
	if behind.Diffuse != ([3]float32{}) {
		t.Fatalf("diffuse with light behind\nhave %v\nwant 0", behind.Diffuse)
	}
}

func TestLightingSpecularFalloff(t *testing.T) {
	n := [3]float32{0, 0, 1}
	l := common.Normalize3([3]float32{0.3, 0, 1})
	tight := Lighting(n, l, l, [3]float32{1, 1, 1})
	// V == L puts H at L, so specular is (N.L)^50
	want := float32(1)
	nl := common.Dot3(n, l)
	for range SpecularExponent {
		want *= nl
	}
	if !approx(tight.Specular[0], want, 1e-5) {
		t.Fatalf("specular\nhave %v\nwant %v", tight.Specular[0], want)
	}
}

func TestShadeUsesSampledNormalWithoutRemap(t *testing.T) {
	in := Varyings{TangentLightPosition: [3]float32{0, 0, 5}, TangentViewPosition: [3]float32{0, 0, 5}}
	white := light.GPULightUniform{Color: [3]float32{1, 1, 1}}

	// a stored (0.5,0.5,1) texel is the direction normalize(0.5,0.5,1), not (0,0,1)
	m := MaterialSamplers{
		Diffuse:           Constant{1, 1, 1, 1},
		Normal:            Constant{0.5, 0.5, 1, 1},
		MetallicRoughness: Constant{0, 1, 0, 1},
	}
	terms := FragmentTerms(in, m, white)
	want := common.Normalize3([3]float32{0.5, 0.5, 1})[2]
	if !approx(terms.Diffuse[0], want, 1e-6) {
		t.Fatalf("diffuse\nhave %v\nwant %v", terms.Diffuse[0], want)
	}
}

func TestShadeAlphaAndModulation(t *testing.T) {
	in := Varyings{TangentLightPosition: [3]float32{0, 0, 5}, TangentViewPosition: [3]float32{0, 0, 5}}
	l := light.GPULightUniform{Color: [3]float32{1, 1, 1}}
	m := MaterialSamplers{
		Diffuse:           Constant{0.2, 0.4, 0, 0.3},
		Normal:            Constant{0, 0, 1, 1},
		MetallicRoughness: Constant{},
	}
	out := Shade(in, m, l)
	sum := float32(AmbientStrength + 1 + 1)
	want := [4]float32{0.2 * sum, 0.4 * sum, 0, 0.3}
	for i := range out {
		if !approx(out[i], want[i], 1e-5) {
			t.Fatalf("Shade\nhave %v\nwant %v", out, want)
		}
	}
}

func TestFlatQuadFacingLightAndCamera(t *testing.T) {
	g := mustGPU(t, model.NewInstance([3]float32{}))
	eye := [3]float32{0, 0, 5}
	var view, proj, vp [16]float32
	common.LookAt(view[:], eye, [3]float32{}, [3]float32{0, 1, 0})
	common.Perspective(proj[:], common.Radians(45), 1, 0.1, 100)
	common.Mul4(vp[:], proj[:], view[:])
	cam := camera.GPUCameraUniform{ViewPosition: eye, ViewProj: vp}
	l := light.GPULightUniform{Position: eye, Color: [3]float32{1, 1, 1}}

	white := common.SolidTexture([4]uint8{255, 255, 255, 255}, false)
	flat := common.SolidTexture([4]uint8{0, 0, 255, 255}, true)
	diffuse, err := NewTexture(white, common.SamplerStagingData{})
	if err != nil {
		t.Fatal(err)
	}
	normal, err := NewTexture(flat, common.SamplerStagingData{})
	if err != nil {
		t.Fatal(err)
	}
	m := MaterialSamplers{Diffuse: diffuse, Normal: normal, MetallicRoughness: Constant{0, 1, 0, 1}}

	out := Shade(Transform(flatVertex(), g, cam, l), m, l)
	for i := range 3 {
		if out[i] <= AmbientStrength {
			t.Fatalf("channel %d\nhave %v\nwant > %v", i, out[i], AmbientStrength)
		}
		if c := common.Clamp01(out[i]); c <= AmbientStrength || c > 1 {
			t.Fatalf("clamped channel %d\nhave %v\nwant in (%v, 1]", i, c, AmbientStrength)
		}
	}
	if out[3] != 1 {
		t.Fatalf("alpha\nhave %v\nwant 1", out[3])
	}
}
