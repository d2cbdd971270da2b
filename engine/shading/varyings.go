package shading

// Lerp interpolates linearly between two vertex outputs, including the clip position.
// Used to split triangles at the near plane.
//
// Parameters:
//   - a, b: the endpoints
//   - t: 0 yields a, 1 yields b
//
// Returns:
//   - Varyings: the interpolated outputs
func Lerp(a, b Varyings, t float32) Varyings {
	return Blend(a, b, Varyings{}, 1-t, t, 0)
}

// Blend returns w0*a + w1*b + w2*c for every field. Weights are used as given, so
// perspective correction is the caller's job.
//
// Parameters:
//   - a, b, c: the triangle's vertex outputs
//   - w0, w1, w2: the per-vertex weights
//
// Returns:
//   - Varyings: the weighted sum
func Blend(a, b, c Varyings, w0, w1, w2 float32) Varyings {
	var out Varyings
	for i := range 4 {
		out.Clip[i] = a.Clip[i]*w0 + b.Clip[i]*w1 + c.Clip[i]*w2
	}
	for i := range 2 {
		out.TexCoords[i] = a.TexCoords[i]*w0 + b.TexCoords[i]*w1 + c.TexCoords[i]*w2
	}
	for i := range 3 {
		out.TangentPosition[i] = a.TangentPosition[i]*w0 + b.TangentPosition[i]*w1 + c.TangentPosition[i]*w2
		out.TangentLightPosition[i] = a.TangentLightPosition[i]*w0 + b.TangentLightPosition[i]*w1 + c.TangentLightPosition[i]*w2
		out.TangentViewPosition[i] = a.TangentViewPosition[i]*w0 + b.TangentViewPosition[i]*w1 + c.TangentViewPosition[i]*w2
	}
	return out
}
