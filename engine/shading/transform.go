// Package shading is the host-side reference of the lit pipeline's two shader stages.
//
// Transform mirrors vs_main and Shade mirrors fs_main of the lit WGSL shaders, operating
// on the same packed records the GPU receives. The CPU rasterizer runs them per vertex
// and per pixel, and tests use them to pin down the lighting math.
package shading

import (
	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
)

// Varyings is the vertex stage output interpolated across a triangle.
// All lighting positions are expressed in the vertex's tangent space.
type Varyings struct {
	Clip                 [4]float32
	TexCoords            [2]float32
	TangentPosition      [3]float32
	TangentLightPosition [3]float32
	TangentViewPosition  [3]float32
}

// NormalMatrix returns the matrix that carries object-space normals to world space:
// the upper-left 3x3 of the transposed inverse model matrix.
//
// Parameters:
//   - inst: the packed instance
//
// Returns:
//   - [9]float32: the column-major normal matrix
func NormalMatrix(inst model.GPUInstance) [9]float32 {
	inv := inst.InverseModelMatrix()
	var nm [9]float32
	common.NormalMatrix(nm[:], inv[:])
	return nm
}

// TangentBasis builds the world-to-tangent matrix of a vertex. The vertex basis is carried
// to world space by the normal matrix and renormalized, then the matrix with columns
// T, B, N is transposed so its rows are T, B, N.
//
// Parameters:
//   - v: the vertex
//   - inst: the packed instance
//
// Returns:
//   - [9]float32: the column-major TBN matrix
func TangentBasis(v model.GPUVertex, inst model.GPUInstance) [9]float32 {
	nm := NormalMatrix(inst)
	t := common.Normalize3(common.Mul3Vec3(nm[:], v.Tangent))
	b := common.Normalize3(common.Mul3Vec3(nm[:], v.Bitangent))
	n := common.Normalize3(common.Mul3Vec3(nm[:], v.Normal))
	tbn := common.Mat3FromColumns(t, b, n)
	common.Transpose3(tbn[:], tbn[:])
	return tbn
}

// Transform runs the vertex stage for one vertex of one instance.
// It never fails; a degenerate instance produces meaningless values.
//
// Parameters:
//   - v: the object-space vertex
//   - inst: the instance transform and its inverse
//   - cam: the camera uniform
//   - l: the light uniform
//
// Returns:
//   - Varyings: clip position, UV and tangent-space positions
func Transform(v model.GPUVertex, inst model.GPUInstance, cam camera.GPUCameraUniform, l light.GPULightUniform) Varyings {
	m := inst.ModelMatrix()
	tbn := TangentBasis(v, inst)

	world := common.Mul4Vec4(m[:], [4]float32{v.Position[0], v.Position[1], v.Position[2], 1})
	world3 := [3]float32{world[0], world[1], world[2]}

	return Varyings{
		Clip:                 common.Mul4Vec4(cam.ViewProj[:], world),
		TexCoords:            v.TexCoords,
		TangentPosition:      common.Mul3Vec3(tbn[:], world3),
		TangentLightPosition: common.Mul3Vec3(tbn[:], l.Position),
		TangentViewPosition:  common.Mul3Vec3(tbn[:], cam.ViewPosition),
	}
}
