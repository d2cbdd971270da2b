package model

import (
	"errors"
	"math"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

// ErrSingularTransform is returned when an instance's model matrix has no inverse,
// for example when one of its scale components is zero.
var ErrSingularTransform = errors.New("instance transform is not invertible")

// Spin describes a constant angular velocity applied to an instance every update.
type Spin struct {
	// Axis is the world-space rotation axis. A zero axis disables spinning.
	Axis [3]float32
	// DegreesPerSecond is the signed rotation rate about Axis.
	DegreesPerSecond float32
}

// Instance is the host-side description of one copy of a mesh.
// It is converted into a GPUInstance before upload.
type Instance struct {
	Position [3]float32
	Rotation common.Quat
	Scale    [3]float32
	Spin     Spin
}

// NewInstance returns an instance at position with identity rotation and unit scale.
//
// Parameters:
//   - position: world-space translation
//
// Returns:
//   - Instance: the instance
func NewInstance(position [3]float32) Instance {
	return Instance{
		Position: position,
		Rotation: common.QuatIdentity(),
		Scale:    [3]float32{1, 1, 1},
	}
}

// Matrix builds the model matrix Translation * Rotation * Scale.
//
// Returns:
//   - [16]float32: the column-major model matrix
func (i Instance) Matrix() [16]float32 {
	var m [16]float32
	common.ComposeTRS(m[:], i.Position, i.Rotation.Normalize(), i.Scale)
	return m
}

// ToGPU computes the model matrix and its inverse and packs both as column vectors.
// A non-invertible transform is rejected rather than uploaded.
//
// Returns:
//   - GPUInstance: the packed instance record
//   - error: ErrSingularTransform if the model matrix has no inverse
func (i Instance) ToGPU() (GPUInstance, error) {
	m := i.Matrix()
	var inv [16]float32
	if !common.Invert4(inv[:], m[:]) {
		return GPUInstance{}, ErrSingularTransform
	}
	return GPUInstance{
		Model:        common.MatrixColumns(m[:]),
		InverseModel: common.MatrixColumns(inv[:]),
	}, nil
}

// Advance applies the instance's spin for a time step.
//
// Parameters:
//   - dt: elapsed time in seconds
//
// Returns:
//   - Instance: the rotated instance
func (i Instance) Advance(dt float32) Instance {
	if i.Spin.DegreesPerSecond == 0 || i.Spin.Axis == ([3]float32{}) {
		return i
	}
	step := common.QuatFromAxisAngle(i.Spin.Axis, common.Radians(i.Spin.DegreesPerSecond*dt))
	i.Rotation = step.Mul(i.Rotation).Normalize()
	return i
}

// InstanceFromGPU decomposes a packed instance back into position, rotation and scale.
// Scale is recovered per axis from the column lengths, so only transforms built from
// positive scale and a pure rotation round-trip exactly. Spin is not stored on the GPU
// and comes back zero.
//
// Parameters:
//   - g: the packed instance record
//
// Returns:
//   - Instance: the decomposed instance
func InstanceFromGPU(g GPUInstance) Instance {
	m := g.ModelMatrix()
	var scale [3]float32
	var rot [9]float32
	for c := 0; c < 3; c++ {
		col := [3]float32{m[c*4], m[c*4+1], m[c*4+2]}
		s := common.Length3(col)
		scale[c] = s
		if s == 0 || math.IsNaN(float64(s)) {
			continue
		}
		rot[c*3], rot[c*3+1], rot[c*3+2] = col[0]/s, col[1]/s, col[2]/s
	}
	return Instance{
		Position: [3]float32{m[12], m[13], m[14]},
		Rotation: common.QuatFromMat3(rot[:]),
		Scale:    scale,
	}
}
