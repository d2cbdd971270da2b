package profiler

import (
	"bytes"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestTickReportsPerInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	clock := time.Unix(0, 0)
	p := NewProfiler(time.Second)
	p.now = func() time.Time { return clock }
	p.lastTime = clock
	p.logger = func() *slog.Logger { return logger }

	for i := 0; i < 59; i++ {
		clock = clock.Add(10 * time.Millisecond)
		if _, ok := p.Tick(); ok {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}
	clock = clock.Add(410 * time.Millisecond)
	s, ok := p.Tick()
	if !ok {
		t.Fatal("Tick after 1s: have no report, want one")
	}
	if s.Frames != 60 || s.FPS != 60 {
		t.Fatalf("have frames %v fps %v\nwant 60 60", s.Frames, s.FPS)
	}
	if want := 1000.0 / 60; s.FrameMillis < want-0.01 || s.FrameMillis > want+0.01 {
		t.Fatalf("frame_ms\nhave %v\nwant %v", s.FrameMillis, want)
	}

	out := buf.String()
	for _, key := range []string{"fps=60", "frame_ms=", "heap_mb=", "goroutines="} {
		if !strings.Contains(out, key) {
			t.Errorf("log output missing %q\nhave %s", key, out)
		}
	}

	clock = clock.Add(time.Millisecond)
	if _, ok := p.Tick(); ok {
		t.Fatal("window did not reset after a report")
	}
}

func TestNewProfilerDefaultInterval(t *testing.T) {
	if have := NewProfiler(0).updateInterval; have != time.Second {
		t.Fatalf("have %v\nwant %v", have, time.Second)
	}
}

func TestMaxPause(t *testing.T) {
	var m runtime.MemStats
	m.NumGC = 3
	m.PauseNs[0] = 5000
	m.PauseNs[1] = 90000
	m.PauseNs[2] = 7000
	if have := maxPause(&m, 0); have != 90 {
		t.Fatalf("have %v\nwant 90", have)
	}
	if have := maxPause(&m, 2); have != 7 {
		t.Fatalf("since 2\nhave %v\nwant 7", have)
	}
}
