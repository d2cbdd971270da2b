// Package profiler reports frame rate and memory statistics through the engine logger.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-lit/common"
)

// Stats is one reporting window.
type Stats struct {
	FPS          float64
	FrameMillis  float64
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	MaxPauseUs   uint64
	Goroutines   int
	Frames       int
	WindowLength time.Duration
}

// Profiler counts frames and logs Stats once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now    func() time.Time
	logger func() *slog.Logger
}

// NewProfiler returns a profiler reporting every interval. A non-positive interval means one second.
//
// Parameters:
//   - interval: time between reports
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	p := &Profiler{
		updateInterval: interval,
		now:            time.Now,
		logger:         common.Logger,
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame. When the interval has elapsed it logs the window at Info
// and starts a new one.
//
// Returns:
//   - Stats: the finished window, valid only when the bool is true
//   - bool: whether a report was produced this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	now := p.now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameMillis:  float64(elapsed.Microseconds()) / 1000 / float64(p.frameCount),
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
		MaxPauseUs:   maxPause(&p.memStats, p.lastGCCount),
		Goroutines:   runtime.NumGoroutine(),
		Frames:       p.frameCount,
		WindowLength: elapsed,
	}

	p.logger().Info("frame stats",
		"fps", s.FPS,
		"frame_ms", s.FrameMillis,
		"heap_mb", s.HeapMB,
		"alloc_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"max_pause_us", s.MaxPauseUs,
		"goroutines", s.Goroutines,
	)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}

// maxPause returns the longest GC pause since the given GC count. PauseNs is a 256-entry ring.
func maxPause(m *runtime.MemStats, since uint32) uint64 {
	start := since
	if m.NumGC-start > 256 {
		start = m.NumGC - 256
	}
	var longest uint64
	for i := start; i < m.NumGC; i++ {
		longest = max(longest, m.PauseNs[i%256]/1000)
	}
	return longest
}
