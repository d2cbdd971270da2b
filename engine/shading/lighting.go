package shading

import (
	"math"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
)

const (
	// AmbientStrength scales the light color into the constant ambient term.
	AmbientStrength = 0.05
	// SpecularExponent is the Blinn-Phong shininess.
	SpecularExponent = 50
)

// MaterialSamplers are the three textures of a lit material.
// MetallicRoughness is carried for binding parity and is not read.
type MaterialSamplers struct {
	Diffuse           Sampler
	Normal            Sampler
	MetallicRoughness Sampler
}

// Terms are the three light contributions before they modulate the diffuse texel.
type Terms struct {
	Ambient  [3]float32
	Diffuse  [3]float32
	Specular [3]float32
}

// Sum returns ambient + diffuse + specular.
func (t Terms) Sum() [3]float32 {
	return common.Add3(t.Ambient, common.Add3(t.Diffuse, t.Specular))
}

// Lighting evaluates Blinn-Phong for unit vectors in a common space.
//
// Parameters:
//   - normal: the surface normal
//   - lightDir: direction from the surface to the light
//   - viewDir: direction from the surface to the eye
//   - color: the light color
//
// Returns:
//   - Terms: the ambient, diffuse and specular contributions
func Lighting(normal, lightDir, viewDir, color [3]float32) Terms {
	half := common.Normalize3(common.Add3(viewDir, lightDir))
	diffuse := max(common.Dot3(normal, lightDir), 0)
	specular := float32(math.Pow(float64(max(common.Dot3(normal, half), 0)), SpecularExponent))
	return Terms{
		Ambient:  common.Scale3(color, AmbientStrength),
		Diffuse:  common.Scale3(color, diffuse),
		Specular: common.Scale3(color, specular),
	}
}

// FragmentTerms computes the lighting terms of one fragment.
// The sampled normal texel is normalized as stored, with no [0,1] to [-1,1] remap.
//
// Parameters:
//   - in: the interpolated varyings
//   - m: the material textures
//   - l: the light uniform
//
// Returns:
//   - Terms: the ambient, diffuse and specular contributions
func FragmentTerms(in Varyings, m MaterialSamplers, l light.GPULightUniform) Terms {
	texel := m.Normal.Sample(in.TexCoords)
	normal := common.Normalize3([3]float32{texel[0], texel[1], texel[2]})
	lightDir := common.Normalize3(common.Sub3(in.TangentLightPosition, in.TangentPosition))
	viewDir := common.Normalize3(common.Sub3(in.TangentViewPosition, in.TangentPosition))
	return Lighting(normal, lightDir, viewDir, l.Color)
}

// Shade runs the fragment stage. The result is not clamped; values above 1 are
// expected where ambient, diffuse and specular overlap.
//
// Parameters:
//   - in: the interpolated varyings
//   - m: the material textures
//   - l: the light uniform
//
// Returns:
//   - [4]float32: linear RGBA, alpha taken from the diffuse texel
func Shade(in Varyings, m MaterialSamplers, l light.GPULightUniform) [4]float32 {
	albedo := m.Diffuse.Sample(in.TexCoords)
	rgb := common.Mul3(FragmentTerms(in, m, l).Sum(), [3]float32{albedo[0], albedo[1], albedo[2]})
	return [4]float32{rgb[0], rgb[1], rgb[2], albedo[3]}
}
