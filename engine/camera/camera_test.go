package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func vecApprox(a, b [3]float32, eps float32) bool {
	return approx(a[0], b[0], eps) && approx(a[1], b[1], eps) && approx(a[2], b[2], eps)
}

func TestGPUCameraUniformLayout(t *testing.T) {
	u := GPUCameraUniform{ViewPosition: [3]float32{1, 2, 3}}
	u.ViewProj[0] = 7
	u.ViewProj[15] = 9
	if u.Size() != GPUCameraUniformSize {
		t.Fatalf("Size\nhave %d\nwant %d", u.Size(), GPUCameraUniformSize)
	}
	buf := u.Marshal()
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if read(0) != 1 || read(8) != 3 {
		t.Fatalf("view_position\nhave %v %v\nwant 1 3", read(0), read(8))
	}
	if read(16) != 7 || read(76) != 9 {
		t.Fatalf("view_proj\nhave %v %v\nwant 7 9", read(16), read(76))
	}
}

func TestOrbitControllerPlacement(t *testing.T) {
	oc := NewOrbitController(WithRadius(5))
	if !vecApprox(oc.Position(), [3]float32{0, 0, 5}, 1e-6) {
		t.Fatalf("default eye\nhave %v\nwant [0 0 5]", oc.Position())
	}
	oc.Orbit(math.Pi/2, 0)
	if !vecApprox(oc.Position(), [3]float32{5, 0, 0}, 1e-5) {
		t.Fatalf("eye after quarter orbit\nhave %v\nwant [5 0 0]", oc.Position())
	}
	oc.Orbit(0, 10)
	if oc.Elevation() >= math.Pi/2 {
		t.Fatalf("elevation not clamped: %v", oc.Elevation())
	}
	oc.SetTarget([3]float32{1, 1, 1})
	d := common.Length3(common.Sub3(oc.Position(), oc.Target()))
	if !approx(d, 5, 1e-5) {
		t.Fatalf("distance to target\nhave %v\nwant 5", d)
	}
}

func TestOrbitControllerZoomPan(t *testing.T) {
	oc := NewOrbitController(WithRadius(5), WithRadiusBounds(1, 6), WithSpeeds(0, 0, 1, 1))
	oc.Zoom(100)
	if oc.Radius() != 1 {
		t.Fatalf("zoom in clamp\nhave %v\nwant 1", oc.Radius())
	}
	oc.Zoom(-100)
	if oc.Radius() != 6 {
		t.Fatalf("zoom out clamp\nhave %v\nwant 6", oc.Radius())
	}
	before := oc.Position()
	oc.Pan(2, 0)
	if !vecApprox(oc.Target(), [3]float32{2, 0, 0}, 1e-5) {
		t.Fatalf("pan target\nhave %v\nwant [2 0 0]", oc.Target())
	}
	if !vecApprox(common.Sub3(oc.Position(), before), [3]float32{2, 0, 0}, 1e-5) {
		t.Fatal("pan moved eye and target differently")
	}
}

func TestCameraUniform(t *testing.T) {
	c := NewCamera(WithController(NewOrbitController(WithRadius(5))))
	u := c.Uniform()
	if !vecApprox(u.ViewPosition, [3]float32{0, 0, 5}, 1e-6) {
		t.Fatalf("view_position\nhave %v\nwant [0 0 5]", u.ViewPosition)
	}
	clip := common.Mul4Vec4(u.ViewProj[:], [4]float32{0, 0, 0, 1})
	if !approx(clip[0], 0, 1e-6) || !approx(clip[1], 0, 1e-6) || clip[3] <= 0 {
		t.Fatalf("target should project to the screen center\nhave %v", clip)
	}
	f := c.Frustum()
	if !f.SphereVisible([3]float32{}, 0.5) {
		t.Fatal("target sphere reported outside the frustum")
	}
}

func TestCameraSetAspectIgnoresZero(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	if c.Aspect() != 2 {
		t.Fatalf("Aspect\nhave %v\nwant 2", c.Aspect())
	}
	c.SetAspect(1.5)
	p := c.ProjectionMatrix()
	if !approx(p[5]/p[0], 1.5, 1e-5) {
		t.Fatalf("projection x/y scale\nhave %v\nwant 1.5", p[5]/p[0])
	}
}
