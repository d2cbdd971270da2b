package raster

import (
	"image"
	"math"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/shading"
)

// nearEpsilon is the smallest clip-space w kept after near-plane clipping.
const nearEpsilon = 1e-5

type screenVertex struct {
	x, y, z float32
	invW    float32
	v       shading.Varyings
}

// triangle is a projected, front-facing triangle ready for scan conversion.
type triangle struct {
	p                      [3]screenVertex
	area                   float32
	minX, minY, maxX, maxY int
	material               *shading.MaterialSamplers
}

type setupStats struct {
	instances int
	culled    int
	clipped   int
	backfaces int
}

// setup runs the vertex stage, clips, projects and back-face culls every triangle.
// Output order follows draw call, instance and index order.
func (r *Rasterizer) setup(calls []DrawCall, cam camera.GPUCameraUniform, l light.GPULightUniform) ([]triangle, setupStats) {
	var (
		tris  []triangle
		stats setupStats
	)
	frustum := common.ExtractFrustumFromMatrix(cam.ViewProj[:])

	for ci := range calls {
		call := &calls[ci]
		if call.Mesh == nil || len(call.Mesh.Vertices) == 0 {
			continue
		}
		radius := call.BoundingRadius
		if radius == 0 {
			radius = call.Mesh.BoundingRadius()
		}

		out := make([]shading.Varyings, len(call.Mesh.Vertices))
		for _, inst := range call.Instances {
			stats.instances++
			if !sphereVisible(&frustum, inst, radius) {
				stats.culled++
				continue
			}
			for i, v := range call.Mesh.Vertices {
				out[i] = shading.Transform(v, inst, cam, l)
			}

			idx := call.Mesh.Indices
			for t := 0; t+2 < len(idx); t += 3 {
				i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
				if int(max(i0, i1, i2)) >= len(out) {
					continue
				}
				a, b, c := out[i0], out[i1], out[i2]
				poly := []shading.Varyings{a, b, c}
				if min(a.Clip[3], b.Clip[3], c.Clip[3]) < nearEpsilon {
					stats.clipped++
					poly = clipNear(poly)
				}
				// fan triangulation keeps the winding
				for k := 1; k+1 < len(poly); k++ {
					tri, ok := r.project(poly[0], poly[k], poly[k+1])
					if !ok {
						stats.backfaces++
						continue
					}
					tri.material = &call.Material
					tris = append(tris, tri)
				}
			}
		}
	}
	return tris, stats
}

// sphereVisible tests the instance's world-space bounding sphere against the frustum.
// The radius grows with the largest axis scale of the model matrix.
func sphereVisible(f *common.Frustum, inst model.GPUInstance, radius float32) bool {
	m := inst.ModelMatrix()
	scale := max(
		common.Length3([3]float32{m[0], m[1], m[2]}),
		common.Length3([3]float32{m[4], m[5], m[6]}),
		common.Length3([3]float32{m[8], m[9], m[10]}),
	)
	return f.SphereVisible([3]float32{m[12], m[13], m[14]}, radius*scale)
}

// clipNear clips a convex polygon against w >= nearEpsilon (Sutherland-Hodgman).
// A triangle comes back with 0, 3 or 4 vertices.
func clipNear(in []shading.Varyings) []shading.Varyings {
	out := make([]shading.Varyings, 0, len(in)+1)
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := a.Clip[3]-nearEpsilon, b.Clip[3]-nearEpsilon
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, shading.Lerp(a, b, da/(da-db)))
		}
	}
	return out
}

// project maps clip-space vertices to pixels and rejects back faces.
// Front faces wind counter-clockwise in NDC, which is clockwise (negative area)
// once y points down.
func (r *Rasterizer) project(a, b, c shading.Varyings) (triangle, bool) {
	var tri triangle
	w, h := float32(r.width), float32(r.height)
	for i, v := range [3]shading.Varyings{a, b, c} {
		invW := 1 / v.Clip[3]
		tri.p[i] = screenVertex{
			x:    (v.Clip[0]*invW*0.5 + 0.5) * w,
			y:    (0.5 - v.Clip[1]*invW*0.5) * h,
			z:    v.Clip[2] * invW,
			invW: invW,
			v:    v,
		}
	}
	tri.area = edge(tri.p[0], tri.p[1], tri.p[2].x, tri.p[2].y)
	if !(tri.area < 0) {
		return tri, false
	}

	// pixel x is covered when its center x+0.5 lies inside
	lo := func(v float32) int { return int(math.Ceil(float64(v - 0.5))) }
	hi := func(v float32) int { return int(math.Floor(float64(v - 0.5))) }
	tri.minX = max(lo(min(tri.p[0].x, tri.p[1].x, tri.p[2].x)), 0)
	tri.maxX = min(hi(max(tri.p[0].x, tri.p[1].x, tri.p[2].x)), r.width-1)
	tri.minY = max(lo(min(tri.p[0].y, tri.p[1].y, tri.p[2].y)), 0)
	tri.maxY = min(hi(max(tri.p[0].y, tri.p[1].y, tri.p[2].y)), r.height-1)
	return tri, true
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// bin lists, per tile, the triangles whose bounds overlap it, in draw order.
func (r *Rasterizer) bin(tris []triangle) [][]int {
	tx := r.tilesX()
	bins := make([][]int, r.Tiles())
	for i := range tris {
		t := &tris[i]
		if t.minX > t.maxX || t.minY > t.maxY {
			continue
		}
		for y := t.minY / r.tileSize; y <= t.maxY/r.tileSize; y++ {
			for x := t.minX / r.tileSize; x <= t.maxX/r.tileSize; x++ {
				bins[y*tx+x] = append(bins[y*tx+x], i)
			}
		}
	}
	return bins
}

// shadeTile clears one tile, then depth-tests and shades every binned triangle over it.
// It writes only the tile's own pixels.
func (r *Rasterizer) shadeTile(img *image.RGBA, tile int, indices []int, tris []triangle, background [4]uint8, l light.GPULightUniform) {
	x0 := (tile % r.tilesX()) * r.tileSize
	y0 := (tile / r.tilesX()) * r.tileSize
	x1 := min(x0+r.tileSize, r.width)
	y1 := min(y0+r.tileSize, r.height)
	tw := x1 - x0

	depth := make([]float32, tw*(y1-y0))
	for i := range depth {
		depth[i] = 1
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o := img.PixOffset(x, y)
			copy(img.Pix[o:o+4], background[:])
		}
	}

	for _, ti := range indices {
		t := &tris[ti]
		p0, p1, p2 := t.p[0], t.p[1], t.p[2]
		for y := max(y0, t.minY); y <= min(y1-1, t.maxY); y++ {
			py := float32(y) + 0.5
			for x := max(x0, t.minX); x <= min(x1-1, t.maxX); x++ {
				px := float32(x) + 0.5
				b0 := edge(p1, p2, px, py) / t.area
				b1 := edge(p2, p0, px, py) / t.area
				b2 := edge(p0, p1, px, py) / t.area
				if b0 < 0 || b1 < 0 || b2 < 0 {
					continue
				}
				// depth test: Less against a buffer cleared to 1
				z := b0*p0.z + b1*p1.z + b2*p2.z
				di := (y-y0)*tw + (x - x0)
				if z < 0 || z >= depth[di] {
					continue
				}
				depth[di] = z

				q0, q1, q2 := b0*p0.invW, b1*p1.invW, b2*p2.invW
				s := q0 + q1 + q2
				in := shading.Blend(p0.v, p1.v, p2.v, q0/s, q1/s, q2/s)
				c := r.encode(shading.Shade(in, *t.material, l))
				o := img.PixOffset(x, y)
				copy(img.Pix[o:o+4], c[:])
			}
		}
	}
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}
