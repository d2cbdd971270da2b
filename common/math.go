package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Mul4Vec4 multiplies a column-major 4x4 matrix by a column vector.
//
// Parameters:
//   - m: the matrix (16 elements)
//   - v: the vector to transform
//
// Returns:
//   - [4]float32: m * v
func Mul4Vec4(m []float32, v [4]float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}

// Transpose4 writes the transpose of a 4x4 matrix into out. out and m may alias.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements)
func Transpose4(out, m []float32) {
	var buf [16]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			buf[r*4+c] = m[c*4+r]
		}
	}
	copy(out, buf[:])
}

// Upper3 extracts the upper-left 3x3 block of a column-major 4x4 matrix
// as a column-major 3x3 matrix.
//
// Parameters:
//   - out: destination slice (must be at least 9 elements)
//   - m: source matrix (16 elements)
func Upper3(out, m []float32) {
	out[0], out[1], out[2] = m[0], m[1], m[2]
	out[3], out[4], out[5] = m[4], m[5], m[6]
	out[6], out[7], out[8] = m[8], m[9], m[10]
}

// NormalMatrix computes the matrix that carries object-space direction vectors
// (normals, tangents, bitangents) into world space: the upper-left 3x3 block of
// transpose(inverseModel). The inverse is taken as an input so no per-vertex
// inversion is required.
//
// Parameters:
//   - out: destination slice (must be at least 9 elements), column-major
//   - inverseModel: the inverse of the model matrix (16 elements, column-major)
func NormalMatrix(out, inverseModel []float32) {
	var t [16]float32
	Transpose4(t[:], inverseModel)
	Upper3(out, t[:])
}

// Transpose3 writes the transpose of a 3x3 matrix into out. out and m may alias.
//
// Parameters:
//   - out: destination slice (must be at least 9 elements)
//   - m: source matrix (9 elements)
func Transpose3(out, m []float32) {
	var buf [9]float32
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			buf[r*3+c] = m[c*3+r]
		}
	}
	copy(out, buf[:])
}

// Mat3FromColumns builds a column-major 3x3 matrix from three column vectors.
//
// Parameters:
//   - c0, c1, c2: the matrix columns
//
// Returns:
//   - [9]float32: the assembled matrix
func Mat3FromColumns(c0, c1, c2 [3]float32) [9]float32 {
	return [9]float32{
		c0[0], c0[1], c0[2],
		c1[0], c1[1], c1[2],
		c2[0], c2[1], c2[2],
	}
}

// Mul3Vec3 multiplies a column-major 3x3 matrix by a column vector.
//
// Parameters:
//   - m: the matrix (9 elements)
//   - v: the vector to transform
//
// Returns:
//   - [3]float32: m * v
func Mul3Vec3(m []float32, v [3]float32) [3]float32 {
	return [3]float32{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

// MatrixColumns splits a column-major 4x4 matrix into its four column vectors.
// This is the layout used to stream a matrix through per-instance vertex attributes.
//
// Parameters:
//   - m: source matrix (16 elements)
//
// Returns:
//   - [4][4]float32: the four columns in order
func MatrixColumns(m []float32) [4][4]float32 {
	var cols [4][4]float32
	for c := 0; c < 4; c++ {
		copy(cols[c][:], m[c*4:c*4+4])
	}
	return cols
}

// MatrixFromColumns reassembles a column-major 4x4 matrix from four column vectors.
// It is the exact inverse of MatrixColumns.
//
// Parameters:
//   - cols: the four matrix columns
//
// Returns:
//   - [16]float32: the assembled matrix
func MatrixFromColumns(cols [4][4]float32) [16]float32 {
	var m [16]float32
	for c := 0; c < 4; c++ {
		copy(m[c*4:c*4+4], cols[c][:])
	}
	return m
}

// Perspective creates a perspective projection matrix.
// Maps view-space depth into the WebGPU clip space range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// ComposeTRS builds a model matrix as Translation * Rotation * Scale.
// All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - position: translation in world space
//   - rotation: unit quaternion orientation
//   - scale: per-axis scale factors
func ComposeTRS(out []float32, position [3]float32, rotation Quat, scale [3]float32) {
	r := rotation.Mat3()

	out[0], out[1], out[2], out[3] = r[0]*scale[0], r[1]*scale[0], r[2]*scale[0], 0
	out[4], out[5], out[6], out[7] = r[3]*scale[1], r[4]*scale[1], r[5]*scale[1], 0
	out[8], out[9], out[10], out[11] = r[6]*scale[2], r[7]*scale[2], r[8]*scale[2], 0
	out[12], out[13], out[14], out[15] = position[0], position[1], position[2], 1
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular the output is left
// unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	// 2x2 sub-determinants of the upper and lower halves.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 || math.IsNaN(float64(det)) || math.IsInf(float64(det), 0) {
		return false
	}

	invDet := 1.0 / det

	var buf [16]float32
	buf[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	buf[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	buf[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	buf[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	buf[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	buf[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	buf[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	buf[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	buf[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	buf[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	buf[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	buf[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	buf[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	buf[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	buf[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	buf[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	copy(out, buf[:])
	return true
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eye, center, up [3]float32) {
	z := Normalize3(Sub3(eye, center))
	if z == ([3]float32{}) {
		z = [3]float32{0, 0, 1}
	}
	x := Normalize3(Cross3(up, z))
	if x == ([3]float32{}) {
		x = [3]float32{1, 0, 0}
	}
	y := Cross3(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -Dot3(x, eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -Dot3(y, eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -Dot3(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// Add3 returns a + b.
func Add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns v * s.
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Mul3 returns the component-wise product of a and b.
func Mul3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a x b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the Euclidean length of v.
func Length3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the unit vector, or the zero vector if v has no length
func Normalize3(v [3]float32) [3]float32 {
	l := Length3(v)
	if l == 0 {
		return v
	}
	inv := 1 / l
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// QuatIdentity returns the rotation that leaves vectors unchanged.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle builds a unit quaternion rotating by angle radians about axis.
// A zero axis yields the identity rotation.
//
// Parameters:
//   - axis: rotation axis (need not be normalized)
//   - angle: rotation angle in radians, counter-clockwise looking down the axis
//
// Returns:
//   - Quat: the rotation
func QuatFromAxisAngle(axis [3]float32, angle float32) Quat {
	n := Normalize3(axis)
	if n == ([3]float32{}) {
		return QuatIdentity()
	}
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	return Quat{n[0] * s, n[1] * s, n[2] * s, float32(math.Cos(half))}
}

// Mul returns the Hamilton product q * r, which applies r first and then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		q[3]*r[0] + q[0]*r[3] + q[1]*r[2] - q[2]*r[1],
		q[3]*r[1] - q[0]*r[2] + q[1]*r[3] + q[2]*r[0],
		q[3]*r[2] + q[0]*r[1] - q[1]*r[0] + q[2]*r[3],
		q[3]*r[3] - q[0]*r[0] - q[1]*r[1] - q[2]*r[2],
	}
}

// Normalize returns q scaled to unit length, or the identity if q is zero.
func (q Quat) Normalize() Quat {
	l := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// Rotate applies the rotation q to v.
func (q Quat) Rotate(v [3]float32) [3]float32 {
	m := q.Mat3()
	return Mul3Vec3(m[:], v)
}

// Mat3 converts a unit quaternion to a column-major 3x3 rotation matrix.
func (q Quat) Mat3() [9]float32 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return [9]float32{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy),
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx),
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy),
	}
}

// QuatFromMat3 extracts a unit quaternion from a column-major 3x3 rotation matrix.
// The input must be orthonormal; scale has to be divided out beforehand.
//
// Parameters:
//   - m: rotation matrix (9 elements, column-major)
//
// Returns:
//   - Quat: the equivalent unit quaternion
func QuatFromMat3(m []float32) Quat {
	// m[c*3+r]
	m00, m11, m22 := m[0], m[4], m[8]
	trace := m00 + m11 + m22

	var q Quat
	switch {
	case trace > 0:
		s := float32(math.Sqrt(float64(trace+1))) * 2
		q = Quat{(m[5] - m[7]) / s, (m[6] - m[2]) / s, (m[1] - m[3]) / s, 0.25 * s}
	case m00 > m11 && m00 > m22:
		s := float32(math.Sqrt(float64(1+m00-m11-m22))) * 2
		q = Quat{0.25 * s, (m[3] + m[1]) / s, (m[6] + m[2]) / s, (m[5] - m[7]) / s}
	case m11 > m22:
		s := float32(math.Sqrt(float64(1+m11-m00-m22))) * 2
		q = Quat{(m[3] + m[1]) / s, 0.25 * s, (m[7] + m[5]) / s, (m[6] - m[2]) / s}
	default:
		s := float32(math.Sqrt(float64(1+m22-m00-m11))) * 2
		q = Quat{(m[6] + m[2]) / s, (m[7] + m[5]) / s, 0.25 * s, (m[1] - m[3]) / s}
	}
	return q.Normalize()
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}
