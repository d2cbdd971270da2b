package common

import (
	"math"
	"testing"
)

func approxEqual(a, b, epsilon float32) bool {
	return float32(math.Abs(float64(a-b))) <= epsilon
}

func matApprox(a, b []float32, epsilon float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !approxEqual(a[i], b[i], epsilon) {
			return false
		}
	}
	return true
}

func TestMatrixColumnsRoundTrip(t *testing.T) {
	var m [16]float32
	for i := range m {
		m[i] = float32(i)*1.25 - 7
	}
	cols := MatrixColumns(m[:])
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if cols[c][r] != m[c*4+r] {
				t.Fatalf("MatrixColumns: col %d row %d\nhave %v\nwant %v", c, r, cols[c][r], m[c*4+r])
			}
		}
	}
	if back := MatrixFromColumns(cols); back != m {
		t.Fatalf("MatrixFromColumns(MatrixColumns(m))\nhave %v\nwant %v", back, m)
	}
}

func TestInvert4(t *testing.T) {
	var m, inv, prod, id [16]float32
	ComposeTRS(m[:], [3]float32{1, -2, 3}, QuatFromAxisAngle([3]float32{1, 1, 0}, 0.7), [3]float32{2, 0.5, 3})
	if !Invert4(inv[:], m[:]) {
		t.Fatal("Invert4: have false, want true")
	}
	Mul4(prod[:], m[:], inv[:])
	Identity(id[:])
	if !matApprox(prod[:], id[:], 1e-5) {
		t.Fatalf("m * Invert4(m)\nhave %v\nwant %v", prod, id)
	}

	var singular [16]float32
	ComposeTRS(singular[:], [3]float32{}, QuatIdentity(), [3]float32{1, 0, 1})
	out := [16]float32{42}
	if Invert4(out[:], singular[:]) {
		t.Fatal("Invert4(singular): have true, want false")
	}
	if out[0] != 42 {
		t.Fatalf("Invert4(singular) wrote output\nhave %v\nwant untouched", out)
	}
}

func TestNormalMatrixRigidEqualsRotation(t *testing.T) {
	q := QuatFromAxisAngle([3]float32{0.3, 1, -0.2}, 1.1)
	var m, inv [16]float32
	ComposeTRS(m[:], [3]float32{5, 6, 7}, q, [3]float32{1, 1, 1})
	if !Invert4(inv[:], m[:]) {
		t.Fatal("Invert4: singular rigid transform")
	}
	var nm [9]float32
	NormalMatrix(nm[:], inv[:])
	rot := q.Mat3()
	if !matApprox(nm[:], rot[:], 1e-5) {
		t.Fatalf("NormalMatrix(rigid)\nhave %v\nwant %v", nm, rot)
	}
}

func TestTranspose(t *testing.T) {
	m := [16]float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	var tr [16]float32
	Transpose4(tr[:], m[:])
	if tr[1] != 4 || tr[4] != 1 || tr[14] != 11 {
		t.Fatalf("Transpose4\nhave %v", tr)
	}
	Transpose4(tr[:], tr[:])
	if tr != m {
		t.Fatalf("Transpose4 twice\nhave %v\nwant %v", tr, m)
	}

	m3 := Mat3FromColumns([3]float32{1, 2, 3}, [3]float32{4, 5, 6}, [3]float32{7, 8, 9})
	Transpose3(m3[:], m3[:])
	want := [9]float32{1, 4, 7, 2, 5, 8, 3, 6, 9}
	if m3 != want {
		t.Fatalf("Transpose3\nhave %v\nwant %v", m3, want)
	}
}

func TestQuatMat3RoundTrip(t *testing.T) {
	cases := []struct {
		axis  [3]float32
		angle float32
	}{
		{[3]float32{0, 1, 0}, 0},
		{[3]float32{0, 1, 0}, 1.2},
		{[3]float32{1, 0, 0}, 3.0},
		{[3]float32{0, 0, 1}, -2.9},
		{[3]float32{1, 2, 3}, 2.5},
	}
	for _, c := range cases {
		q := QuatFromAxisAngle(c.axis, c.angle)
		r := q.Mat3()
		back := QuatFromMat3(r[:])
		rb := back.Mat3()
		if !matApprox(r[:], rb[:], 1e-5) {
			t.Errorf("QuatFromMat3(%v, %v)\nhave %v\nwant %v", c.axis, c.angle, rb, r)
		}
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/2)
	v := q.Rotate([3]float32{1, 0, 0})
	want := [3]float32{0, 0, -1}
	if !matApprox(v[:], want[:], 1e-6) {
		t.Fatalf("rotate +X by 90 deg about +Y\nhave %v\nwant %v", v, want)
	}

	composed := q.Mul(q).Rotate([3]float32{1, 0, 0})
	want = [3]float32{-1, 0, 0}
	if !matApprox(composed[:], want[:], 1e-6) {
		t.Fatalf("q.Mul(q)\nhave %v\nwant %v", composed, want)
	}
}

func TestLookAtPerspective(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], [3]float32{0, 0, 5}, [3]float32{}, [3]float32{0, 1, 0})
	Perspective(proj[:], Radians(45), 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])

	clip := Mul4Vec4(vp[:], [4]float32{0, 0, 0, 1})
	if !approxEqual(clip[0], 0, 1e-6) || !approxEqual(clip[1], 0, 1e-6) {
		t.Fatalf("origin should project to the screen center\nhave %v", clip)
	}
	if z := clip[2] / clip[3]; z <= 0 || z >= 1 {
		t.Fatalf("origin depth outside [0,1]\nhave %v", z)
	}
}

func TestFrustumSphereVisible(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], [3]float32{0, 0, 5}, [3]float32{}, [3]float32{0, 1, 0})
	Perspective(proj[:], Radians(45), 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])
	f := ExtractFrustumFromMatrix(vp[:])

	if !f.SphereVisible([3]float32{}, 1) {
		t.Fatal("SphereVisible(origin): have false, want true")
	}
	if f.SphereVisible([3]float32{0, 0, 10}, 1) {
		t.Fatal("SphereVisible(behind camera): have true, want false")
	}
	if f.SphereVisible([3]float32{100, 0, 0}, 1) {
		t.Fatal("SphereVisible(far right): have true, want false")
	}
}

func TestClamp01(t *testing.T) {
	for _, c := range []struct{ in, want float32 }{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2.05, 1}, {float32(math.NaN()), 0},
	} {
		if have := Clamp01(c.in); have != c.want {
			t.Errorf("Clamp01(%v)\nhave %v\nwant %v", c.in, have, c.want)
		}
	}
}
