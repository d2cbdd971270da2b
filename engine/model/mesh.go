package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

// Mesh is indexed triangle geometry in object space.
// Triangles wind counter-clockwise when seen from the side their normals face.
type Mesh struct {
	Vertices []GPUVertex
	Indices  []uint32
}

// VertexData returns the packed vertex buffer contents.
func (m *Mesh) VertexData() []byte {
	return MarshalVertices(m.Vertices)
}

// IndexData returns the packed uint32 index buffer contents.
func (m *Mesh) IndexData() []byte {
	out := make([]byte, 0, len(m.Indices)*4)
	return append(out, common.SliceToBytes(m.Indices)...)
}

// BoundingRadius returns the largest distance from the object-space origin to any vertex.
// Used for frustum culling of instances.
//
// Returns:
//   - float32: the bounding sphere radius
func (m *Mesh) BoundingRadius() float32 {
	var maxDistSq float32
	for _, v := range m.Vertices {
		p := v.Position
		if d := common.Dot3(p, p); d > maxDistSq {
			maxDistSq = d
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// face appends one square face centered at c with the given basis.
// Corners are laid out so the face winds counter-clockwise seen from +n,
// with V running from the +b edge (V=0) to the -b edge (V=1).
func (m *Mesh) face(c, n, t [3]float32, half float32) {
	b := common.Cross3(n, t)
	base := uint32(len(m.Vertices))
	corners := [4]struct {
		st [2]float32
		uv [2]float32
	}{
		{[2]float32{-1, -1}, [2]float32{0, 1}},
		{[2]float32{1, -1}, [2]float32{1, 1}},
		{[2]float32{1, 1}, [2]float32{1, 0}},
		{[2]float32{-1, 1}, [2]float32{0, 0}},
	}
	for _, k := range corners {
		p := common.Add3(c, common.Add3(common.Scale3(t, k.st[0]*half), common.Scale3(b, k.st[1]*half)))
		m.Vertices = append(m.Vertices, GPUVertex{
			Position:  p,
			TexCoords: k.uv,
			Normal:    n,
			Tangent:   t,
			Bitangent: b,
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// NewQuadMesh builds a square in the XY plane centered at the origin, facing +Z.
// Its tangent basis is T=+X, B=+Y, N=+Z.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - *Mesh: the quad (4 vertices, 6 indices)
func NewQuadMesh(size float32) *Mesh {
	m := &Mesh{}
	m.face([3]float32{}, [3]float32{0, 0, 1}, [3]float32{1, 0, 0}, size/2)
	return m
}

// NewCubeMesh builds an axis-aligned cube centered at the origin with one
// independently textured face per side (24 vertices).
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - *Mesh: the cube (24 vertices, 36 indices)
func NewCubeMesh(size float32) *Mesh {
	h := size / 2
	m := &Mesh{
		Vertices: make([]GPUVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	faces := [6]struct{ n, t [3]float32 }{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}},
	}
	for _, f := range faces {
		m.face(common.Scale3(f.n, h), f.n, f.t, h)
	}
	return m
}

// ComputeTangents regenerates per-vertex tangents and bitangents from positions and UVs.
// Tangents are accumulated per triangle, then orthogonalized against the normal
// (Gram-Schmidt). The bitangent is always N x T, so every vertex ends up with a
// right-handed orthonormal basis. Triangles with zero UV area contribute nothing.
//
// Parameters:
//   - vertices: the vertices to update in place (normals must already be set)
//   - indices: triangle list indices; when empty, vertices are read as a plain triangle list
func ComputeTangents(vertices []GPUVertex, indices []uint32) {
	acc := make([][3]float32, len(vertices))

	accum := func(i0, i1, i2 uint32) {
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			return
		}
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := common.Sub3(v1.Position, v0.Position)
		e2 := common.Sub3(v2.Position, v0.Position)

		du1 := v1.TexCoords[0] - v0.TexCoords[0]
		dv1 := v1.TexCoords[1] - v0.TexCoords[1]
		du2 := v2.TexCoords[0] - v0.TexCoords[0]
		dv2 := v2.TexCoords[1] - v0.TexCoords[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		r := 1 / denom
		t := common.Sub3(common.Scale3(e1, dv2*r), common.Scale3(e2, dv1*r))

		acc[i0] = common.Add3(acc[i0], t)
		acc[i1] = common.Add3(acc[i1], t)
		acc[i2] = common.Add3(acc[i2], t)
	}

	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			accum(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(vertices); i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	for i := range vertices {
		n := common.Normalize3(vertices[i].Normal)
		t := common.Sub3(acc[i], common.Scale3(n, common.Dot3(n, acc[i])))
		if common.Dot3(t, t) < 1e-8 {
			// pick any direction perpendicular to N
			if float32(math.Abs(float64(n[0]))) < 0.9 {
				t = common.Sub3([3]float32{1, 0, 0}, common.Scale3(n, n[0]))
			} else {
				t = common.Sub3([3]float32{0, 1, 0}, common.Scale3(n, n[1]))
			}
		}
		t = common.Normalize3(t)
		vertices[i].Normal = n
		vertices[i].Tangent = t
		vertices[i].Bitangent = common.Cross3(n, t)
	}
}
