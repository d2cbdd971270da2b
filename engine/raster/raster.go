// Package raster renders lit draw calls on the CPU into an image.
//
// It runs the same vertex and fragment math as the lit GPU pipeline (package shading)
// and is used for headless rendering and as a reference in tests.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/camera"
	"github.com/Carmen-Shannon/oxy-lit/engine/light"
	"github.com/Carmen-Shannon/oxy-lit/engine/model"
	"github.com/Carmen-Shannon/oxy-lit/engine/shading"
)

// ErrEmptyTarget is returned when the output image would have no pixels.
var ErrEmptyTarget = errors.New("render target has zero area")

// DrawCall is one instanced draw of a mesh with a material.
type DrawCall struct {
	Mesh      *model.Mesh
	Instances []model.GPUInstance
	Material  shading.MaterialSamplers
	// BoundingRadius is the object-space bounding sphere used for culling.
	// Zero means Mesh.BoundingRadius().
	BoundingRadius float32
}

// Rasterizer renders into a fixed-size RGBA image.
type Rasterizer struct {
	width, height int
	tileSize      int
	workers       int
	srgb          bool
	clearColor    [4]float32
	pool          worker.DynamicWorkerPool
	progress      func(done, total int)
}

// NewRasterizer creates a rasterizer for a width x height target.
// Defaults are 64 pixel tiles, one worker per CPU, sRGB output and an opaque black clear color.
//
// Parameters:
//   - width, height: the output size in pixels
//   - options: functional options applied after the defaults
//
// Returns:
//   - *Rasterizer: the rasterizer
//   - error: ErrEmptyTarget for a non-positive size
func NewRasterizer(width, height int, options ...RasterizerOption) (*Rasterizer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyTarget, width, height)
	}
	r := &Rasterizer{
		width:      width,
		height:     height,
		tileSize:   64,
		workers:    runtime.NumCPU(),
		srgb:       true,
		clearColor: [4]float32{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(r)
	}
	r.tileSize = max(r.tileSize, 1)
	r.workers = max(r.workers, 1)
	if r.pool == nil {
		r.pool = worker.NewDynamicWorkerPool(r.workers, 256, time.Second)
	}
	return r, nil
}

// Tiles returns the number of tiles a Draw schedules.
func (r *Rasterizer) Tiles() int {
	return r.tilesX() * r.tilesY()
}

func (r *Rasterizer) tilesX() int { return (r.width + r.tileSize - 1) / r.tileSize }
func (r *Rasterizer) tilesY() int { return (r.height + r.tileSize - 1) / r.tileSize }

// Draw renders the draw calls in order and returns the finished image.
// Instances whose bounding sphere lies outside the view frustum are skipped.
// Tiles are shaded concurrently on the worker pool; no two tiles share a pixel.
//
// Parameters:
//   - ctx: cancels tile scheduling
//   - calls: the draw calls
//   - cam: the camera uniform
//   - l: the light uniform
//
// Returns:
//   - *image.RGBA: the rendered image, opaque
//   - error: ctx.Err() on cancellation
func (r *Rasterizer) Draw(ctx context.Context, calls []DrawCall, cam camera.GPUCameraUniform, l light.GPULightUniform) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tris, stats := r.setup(calls, cam, l)
	bins := r.bin(tris)
	common.Logger().Debug("raster setup",
		"instances", stats.instances,
		"culled", stats.culled,
		"triangles", len(tris),
		"clipped", stats.clipped,
		"backfaces", stats.backfaces,
		"tiles", len(bins),
	)

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	background := r.encode(r.clearColor)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	total := len(bins)
	for i := range bins {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if ctx.Err() != nil {
					return nil, nil
				}
				r.shadeTile(img, i, bins[i], tris, background, l)
				mu.Lock()
				done++
				if r.progress != nil {
					r.progress(done, total)
				}
				mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	common.Logger().Debug("raster done", "tiles", done)
	return img, nil
}

// encode clamps a linear color and converts it to 8-bit output, sRGB encoded when enabled.
func (r *Rasterizer) encode(c [4]float32) [4]uint8 {
	var out [4]uint8
	for i := range 3 {
		v := common.Clamp01(c[i])
		if r.srgb {
			v = linearToSRGB(v)
		}
		out[i] = uint8(v*255 + 0.5)
	}
	out[3] = 255
	return out
}
