package light

import (
	"encoding/binary"
	"math"
	"testing"
)

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestGPULightUniformLayout(t *testing.T) {
	u := GPULightUniform{Position: [3]float32{1, 2, 3}, Color: [3]float32{0.5, 0.25, 1}}
	if u.Size() != GPULightUniformSize {
		t.Fatalf("Size\nhave %d\nwant %d", u.Size(), GPULightUniformSize)
	}
	buf := u.Marshal()
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	for i, c := range []struct {
		off  int
		want float32
	}{{0, 1}, {8, 3}, {16, 0.5}, {20, 0.25}, {24, 1}} {
		if have := read(c.off); have != c.want {
			t.Errorf("field %d at offset %d\nhave %v\nwant %v", i, c.off, have, c.want)
		}
	}
}

func TestOrbit(t *testing.T) {
	l := NewLight(WithPosition([3]float32{2, 1, 0}), WithOrbit(0))
	l.Orbit(1.5) // 90 degrees at the default rate
	p := l.Position()
	if !approx(p[0], 0, 1e-5) || !approx(p[1], 1, 1e-6) || !approx(p[2], -2, 1e-5) {
		t.Fatalf("position after 1.5s orbit\nhave %v\nwant [0 1 -2]", p)
	}

	still := NewLight(WithPosition([3]float32{2, 1, 0}))
	still.Orbit(1)
	if still.Position() != [3]float32{2, 1, 0} {
		t.Fatalf("non-orbiting light moved to %v", still.Position())
	}
}

func TestUniformAndProvider(t *testing.T) {
	l := NewLight(WithColor([3]float32{1, 0, 0}))
	l.SetPosition([3]float32{0, 0, 5})
	u := l.Uniform()
	if u.Position != [3]float32{0, 0, 5} || u.Color != [3]float32{1, 0, 0} {
		t.Fatalf("Uniform\nhave %+v", u)
	}
	if l.BindGroupProvider().Label() != ProviderName {
		t.Fatalf("provider label\nhave %q\nwant %q", l.BindGroupProvider().Label(), ProviderName)
	}
}
