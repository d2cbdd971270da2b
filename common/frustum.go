package common

// Plane is the set of points p where Dot3(Normal, p) + Distance = 0.
// Points on the Normal side are inside.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum is the six inward-facing clip planes of a camera, in the order
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustumFromMatrix derives world-space planes from a column-major view-projection
// matrix (Gribb/Hartmann). The near plane is row 2 alone because clip depth runs over [0, w].
//
// Parameters:
//   - viewProj: the 16-element view-projection matrix
//
// Returns:
//   - Frustum: the planes with unit normals
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	var rows [4][4]float32
	for r := range rows {
		rows[r] = [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	combine := func(a [4]float32, b [4]float32, sign float32) [4]float32 {
		return [4]float32{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2], a[3] + sign*b[3]}
	}
	w := rows[3]
	planes := [6][4]float32{
		combine(w, rows[0], 1),
		combine(w, rows[0], -1),
		combine(w, rows[1], 1),
		combine(w, rows[1], -1),
		rows[2],
		combine(w, rows[2], -1),
	}

	var f Frustum
	for i, p := range planes {
		n := [3]float32{p[0], p[1], p[2]}
		d := p[3]
		if l := Length3(n); l > 0 {
			n = Scale3(n, 1/l)
			d /= l
		}
		f.Planes[i] = Plane{Normal: n, Distance: d}
	}
	return f
}

// SphereVisible reports whether a sphere touches the frustum. It is conservative near
// corners, where a sphere outside every plane pair can still pass.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only if the sphere lies entirely behind one plane
func (f *Frustum) SphereVisible(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		if Dot3(p.Normal, center)+p.Distance < -radius {
			return false
		}
	}
	return true
}
