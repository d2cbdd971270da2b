package raster

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/shading"
)

func testCamera() camera.GPUCameraUniform {
	ctrl := camera.NewOrbitController(camera.WithRadius(3))
	return camera.NewCamera(camera.WithController(ctrl)).Uniform()
}

func testLight() light.GPULightUniform {
	return light.NewLight(light.WithPosition([3]float32{0, 0, 2})).Uniform()
}

func testQuad(t *testing.T, instances ...model.Instance) []DrawCall {
	t.Helper()
	gpu := make([]model.GPUInstance, len(instances))
	for i, inst := range instances {
		g, err := inst.ToGPU()
		if err != nil {
			t.Fatal(err)
		}
		gpu[i] = g
	}
	return []DrawCall{{
		Mesh:      model.NewQuadMesh(1),
		Instances: gpu,
		Material: shading.MaterialSamplers{
			Diffuse:           shading.Constant{1, 1, 1, 1},
			Normal:            shading.Constant{0, 0, 1, 1},
			MetallicRoughness: shading.Constant{0, 1, 0, 1},
		},
	}}
}

func pixel(t *testing.T, r *Rasterizer, calls []DrawCall, x, y int) [4]uint8 {
	t.Helper()
	img, err := r.Draw(context.Background(), calls, testCamera(), testLight())
	if err != nil {
		t.Fatalf("Draw\nhave %v\nwant nil", err)
	}
	c := img.RGBAAt(x, y)
	return [4]uint8{c.R, c.G, c.B, c.A}
}

func TestDrawQuadFacingCamera(t *testing.T) {
	r, err := NewRasterizer(64, 64, WithSRGB(false), WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	calls := testQuad(t, model.NewInstance([3]float32{}))

	// ambient + diffuse + specular is 2.05 at the center and clamps to white
	if have := pixel(t, r, calls, 32, 32); have != [4]uint8{255, 255, 255, 255} {
		t.Fatalf("center\nhave %v\nwant [255 255 255 255]", have)
	}
	if have := pixel(t, r, calls, 0, 0); have != [4]uint8{0, 0, 0, 255} {
		t.Fatalf("corner\nhave %v\nwant clear color [0 0 0 255]", have)
	}
}

func TestDrawBackFaceCulled(t *testing.T) {
	r, err := NewRasterizer(64, 64, WithSRGB(false))
	if err != nil {
		t.Fatal(err)
	}
	inst := model.NewInstance([3]float32{})
	inst.Rotation = common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi)

	if have := pixel(t, r, testQuad(t, inst), 32, 32); have != [4]uint8{0, 0, 0, 255} {
		t.Fatalf("center of a back face\nhave %v\nwant clear color", have)
	}
}

func TestDrawDepthOrder(t *testing.T) {
	r, err := NewRasterizer(64, 64, WithSRGB(false))
	if err != nil {
		t.Fatal(err)
	}
	near := testQuad(t, model.NewInstance([3]float32{0, 0, 0.5}))
	far := testQuad(t, model.NewInstance([3]float32{}))
	near[0].Material.Diffuse = shading.Constant{0, 1, 0, 1}
	far[0].Material.Diffuse = shading.Constant{1, 0, 0, 1}

	// the nearer quad wins whatever the submission order
	for _, calls := range [][]DrawCall{append(far, near...), append(near, far...)} {
		have := pixel(t, r, calls, 32, 32)
		if have[0] != 0 || have[1] == 0 {
			t.Fatalf("center\nhave %v\nwant green", have)
		}
	}
}

func TestTileSizeDoesNotChangeImage(t *testing.T) {
	inst := model.NewInstance([3]float32{0.2, -0.1, 0})
	inst.Rotation = common.QuatFromAxisAngle([3]float32{1, 1, 0}, 0.6)
	calls := testQuad(t, inst)

	one, err := NewRasterizer(50, 40, WithTileSize(64), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	many, err := NewRasterizer(50, 40, WithTileSize(7), WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	a, err := one.Draw(context.Background(), calls, testCamera(), testLight())
	if err != nil {
		t.Fatal(err)
	}
	b, err := many.Draw(context.Background(), calls, testCamera(), testLight())
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Pix) != string(b.Pix) {
		t.Fatal("images differ between tile sizes")
	}
	if have := many.Tiles(); have != 8*6 {
		t.Fatalf("tiles\nhave %v\nwant 48", have)
	}
}

func TestFrustumCulling(t *testing.T) {
	r, err := NewRasterizer(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	calls := testQuad(t,
		model.NewInstance([3]float32{}),
		model.NewInstance([3]float32{100, 0, 0}),
		model.NewInstance([3]float32{0, 0, 10}),
	)
	tris, stats := r.setup(calls, testCamera(), testLight())
	if stats.instances != 3 || stats.culled != 2 {
		t.Fatalf("have %+v\nwant 3 instances, 2 culled", stats)
	}
	if len(tris) != 2 {
		t.Fatalf("triangles\nhave %v\nwant 2", len(tris))
	}
}

func TestClipNear(t *testing.T) {
	v := func(w float32) shading.Varyings {
		return shading.Varyings{Clip: [4]float32{0, 0, 0, w}}
	}
	cases := []struct {
		name string
		in   []shading.Varyings
		want int
	}{
		{"all in front", []shading.Varyings{v(1), v(2), v(3)}, 3},
		{"one behind", []shading.Varyings{v(1), v(-1), v(2)}, 4},
		{"two behind", []shading.Varyings{v(1), v(-1), v(-2)}, 3},
		{"all behind", []shading.Varyings{v(-1), v(-1), v(-2)}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := clipNear(c.in)
			if len(out) != c.want {
				t.Fatalf("vertices\nhave %v\nwant %v", len(out), c.want)
			}
			for _, o := range out {
				if o.Clip[3] < nearEpsilon*0.999 {
					t.Fatalf("vertex behind the near plane: w=%v", o.Clip[3])
				}
			}
		})
	}
}

func TestDrawCancelled(t *testing.T) {
	r, err := NewRasterizer(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Draw(ctx, testQuad(t, model.NewInstance([3]float32{})), testCamera(), testLight()); !errors.Is(err, context.Canceled) {
		t.Fatalf("have %v\nwant %v", err, context.Canceled)
	}

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	mid, err := NewRasterizer(64, 64, WithTileSize(8), WithProgress(func(done, total int) { cancel() }))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mid.Draw(ctx, testQuad(t, model.NewInstance([3]float32{})), testCamera(), testLight()); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancel mid-draw\nhave %v\nwant %v", err, context.Canceled)
	}
}

func TestDrawProgressInOrder(t *testing.T) {
	var seen []int
	r, err := NewRasterizer(64, 64, WithTileSize(8), WithWorkers(4), WithProgress(func(done, total int) {
		seen = append(seen, done)
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Draw(context.Background(), testQuad(t, model.NewInstance([3]float32{})), testCamera(), testLight()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != r.Tiles() {
		t.Fatalf("progress calls\nhave %d\nwant %d", len(seen), r.Tiles())
	}
	for i, done := range seen {
		if done != i+1 {
			t.Fatalf("progress call %d\nhave %d\nwant %d", i, done, i+1)
		}
	}
}

func TestNewRasterizerEmptyTarget(t *testing.T) {
	if _, err := NewRasterizer(0, 10); !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("have %v\nwant %v", err, ErrEmptyTarget)
	}
}

func TestLinearToSRGB(t *testing.T) {
	for _, c := range []struct{ in, want float32 }{{0, 0}, {1, 1}, {0.5, 0.7354}} {
		if have := linearToSRGB(c.in); math.Abs(float64(have-c.want)) > 1e-3 {
			t.Errorf("linearToSRGB(%v)\nhave %v\nwant %v", c.in, have, c.want)
		}
	}
}
