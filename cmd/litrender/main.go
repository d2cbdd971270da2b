// Command litrender renders a scene file offline with the CPU rasterizer and writes a PNG.
// With -check it only validates the embedded shaders and prints the lit binding table.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/Carmen-Shannon/oxy-lit/engine/config"
	"github.com/Carmen-Shannon/oxy-lit/engine/raster"
	"github.com/Carmen-Shannon/oxy-lit/engine/renderer/lit"
	"github.com/schollz/progressbar/v3"
	xdraw "golang.org/x/image/draw"
)

// check validates every embedded shader and prints the lit pipeline's resource table.
func check() error {
	if err := lit.Validate(); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tBINDING\tNAME\tKIND\tPROVIDER\tUSED")
	for _, b := range lit.Bindings() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%v\n", b.Group, b.Binding, b.Name, b.Kind, b.Provider, b.Used)
	}
	return tw.Flush()
}

// downscale resamples img to fit within maxSide pixels, keeping the aspect ratio.
func downscale(img *image.RGBA, maxSide int) *image.RGBA {
	b := img.Bounds()
	side := max(b.Dx(), b.Dy())
	if maxSide <= 0 || side <= maxSide {
		return img
	}
	w := max(b.Dx()*maxSide/side, 1)
	h := max(b.Dy()*maxSide/side, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func run() error {
	configPath := flag.String("config", "", "scene file (YAML); the built-in quad when empty")
	out := flag.String("out", "out.png", "output PNG")
	preview := flag.Int("preview", 0, "also write <out>.preview.png no larger than this many pixels per side")
	checkOnly := flag.Bool("check", false, "validate the shaders and print the binding table")
	quiet := flag.Bool("q", false, "no progress bar")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *checkOnly {
		return check()
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	rc := cfg.Render

	s, err := cfg.NewScene(float32(rc.Width)/float32(rc.Height), nil)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	defer s.Release()
	calls, err := s.RasterCalls()
	if err != nil {
		return err
	}

	opts := []raster.RasterizerOption{
		raster.WithTileSize(rc.TileSize),
		raster.WithSRGB(*rc.SRGB),
	}
	if rc.Workers > 0 {
		opts = append(opts, raster.WithWorkers(rc.Workers))
	}
	var bar *progressbar.ProgressBar
	if !*quiet {
		opts = append(opts, raster.WithProgress(func(done, _ int) {
			bar.Set(done)
		}))
	}
	r, err := raster.NewRasterizer(rc.Width, rc.Height, opts...)
	if err != nil {
		return err
	}
	if !*quiet {
		bar = progressbar.Default(int64(r.Tiles()), "rendering")
		defer bar.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := r.Draw(ctx, calls, s.Camera().Uniform(), s.Light().Uniform())
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	if err := writePNG(*out, img); err != nil {
		return err
	}
	common.Logger().Info("wrote image", "path", *out, "width", rc.Width, "height", rc.Height)

	if *preview > 0 {
		path := *out + ".preview.png"
		if err := writePNG(path, downscale(img, *preview)); err != nil {
			return err
		}
		common.Logger().Info("wrote preview", "path", path)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "litrender: %v\n", err)
		os.Exit(1)
	}
}
