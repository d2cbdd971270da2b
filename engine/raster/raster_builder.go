package raster

import "github.com/Carmen-Shannon/automation/tools/worker"

// RasterizerOption configures a Rasterizer.
type RasterizerOption func(*Rasterizer)

// WithTileSize sets the edge length of a square tile in pixels.
func WithTileSize(size int) RasterizerOption {
	return func(r *Rasterizer) {
		r.tileSize = size
	}
}

// WithWorkers sets the size of the pool the rasterizer creates. Ignored with WithPool.
func WithWorkers(n int) RasterizerOption {
	return func(r *Rasterizer) {
		r.workers = n
	}
}

// WithPool shades tiles on an existing worker pool.
func WithPool(pool worker.DynamicWorkerPool) RasterizerOption {
	return func(r *Rasterizer) {
		r.pool = pool
	}
}

// WithSRGB toggles sRGB encoding of the output. Without it linear values are written as is.
func WithSRGB(enabled bool) RasterizerOption {
	return func(r *Rasterizer) {
		r.srgb = enabled
	}
}

// WithClearColor sets the linear RGBA the target is cleared to.
func WithClearColor(c [4]float32) RasterizerOption {
	return func(r *Rasterizer) {
		r.clearColor = c
	}
}

// WithProgress sets a callback invoked after each tile. Calls come from worker goroutines
// but never overlap, and the finished count grows by one per call.
//
// Parameters:
//   - fn: receives the number of finished tiles and the total
//
// Returns:
//   - RasterizerOption: option function to apply
func WithProgress(fn func(done, total int)) RasterizerOption {
	return func(r *Rasterizer) {
		r.progress = fn
	}
}
