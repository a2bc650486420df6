// Package render drives an integrator over a film, one tile per goroutine.
package render

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"runtime"

	"toftracer/film"
	"toftracer/integration"
	"toftracer/vmath/vec2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Integrator estimates the radiance through a film position.  It is called
// concurrently from several tiles, each with its own rng.
type Integrator interface {
	Li(pFilm vec2.T, rng *rand.Rand) (integration.Result, []integration.Splat)
}

type Options struct {
	// TileSize is the edge length of a tile in pixels.  Zero means 16.
	TileSize int

	// SamplesPerPixel is the number of camera samples in each pixel.  Zero
	// means 1.
	SamplesPerPixel int

	// Workers bounds the number of tiles in flight.  Zero means one per CPU.
	Workers int

	// Seed picks the sample sequence.  Renders with the same seed and options
	// take the same samples whatever the worker count.
	Seed int64
}

func (o Options) tileSize() int {
	if o.TileSize <= 0 {
		return 16
	}
	return o.TileSize
}

func (o Options) spp() int {
	if o.SamplesPerPixel <= 0 {
		return 1
	}
	return o.SamplesPerPixel
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// SplatScale is the factor WriteImage should apply to splats after rendering
// spp samples per pixel.
func SplatScale(spp int) float64 {
	if spp <= 0 {
		return 1
	}
	return 1 / float64(spp)
}

type Tile struct {
	ID     int
	Bounds image.Rectangle
}

// NewTileGrid cuts bounds into row-major tiles of at most tileSize on a side.
// Tiles on the right and bottom edges are clipped to bounds.
func NewTileGrid(bounds image.Rectangle, tileSize int) []Tile {
	if bounds.Empty() || tileSize <= 0 {
		return nil
	}
	size := bounds.Size()
	tilesX := (size.X + tileSize - 1) / tileSize
	tilesY := (size.Y + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := bounds.Min.X + tx*tileSize
			y0 := bounds.Min.Y + ty*tileSize
			x1 := min(x0+tileSize, bounds.Max.X)
			y1 := min(y0+tileSize, bounds.Max.Y)
			tiles = append(tiles, Tile{
				ID:     len(tiles),
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}
	return tiles
}

// Render samples every pixel of f's sample bounds, merging each tile as it
// finishes.  The first failing tile cancels the rest, and its error is
// returned.
func Render(ctx context.Context, f film.Film, integ Integrator, opts Options) (err error) {
	tracer := otel.Tracer("toftracer/render")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Render")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	tiles := NewTileGrid(f.SampleBounds(), opts.tileSize())
	span.SetAttributes(
		attribute.Int("tiles", len(tiles)),
		attribute.Int("samples_per_pixel", opts.spp()),
		attribute.Int("workers", opts.workers()),
	)

	prog := newProgress(len(tiles))
	defer prog.finish()

	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(opts.workers()))

	for _, tile := range tiles {
		tile := tile
		if err := sem.Acquire(egCtx, 1); err != nil {
			// A failed tile cancelled egCtx; Wait reports why.
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			if err := renderTile(egCtx, tracer, f, integ, tile, opts); err != nil {
				return err
			}
			prog.tileDone()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("render interrupted: %w", err)
	}
	return nil
}

func renderTile(ctx context.Context, tracer trace.Tracer, f film.Film, integ Integrator, tile Tile, opts Options) (err error) {
	ctx, span := tracer.Start(ctx, "Render.tile")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tile", tile.ID),
		attribute.String("bounds", tile.Bounds.String()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	// Seeded per tile so that scheduling order does not change the samples.
	rng := rand.New(rand.NewSource(opts.Seed + int64(tile.ID)))
	ft := f.GetFilmTile(tile.Bounds)
	spp := opts.spp()

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			for s := 0; s < spp; s++ {
				pFilm := vec2.T{float64(x) + rng.Float64(), float64(y) + rng.Float64()}
				result, splats := integ.Li(pFilm, rng)
				ft.AddSample(pFilm, result, 1)
				for _, sp := range splats {
					f.AddSplat(sp.PFilm, sp.Result)
				}
			}
		}
	}

	if err := f.MergeFilmTile(ft); err != nil {
		return fmt.Errorf("while merging tile %d %v: %w", tile.ID, tile.Bounds, err)
	}
	return nil
}
