package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"toftracer/film/films"
	"toftracer/filter"
	"toftracer/integrator"
	"toftracer/paramset"
	"toftracer/render"
	"toftracer/scene"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var (
	renderParams      string
	renderFilm        string
	renderScene       string
	renderIntegrator  string
	renderSPP         int
	renderTileSize    int
	renderWorkers     int
	renderSeed        int64
	renderMaxDepth    int
	renderLightSplats bool
	renderOutput      string
)

func init() {
	flags := cmdRender.Flags()
	flags.StringVar(&renderParams, "params", "", "JSON parameter file with \"film\" and \"filter\" objects.")
	flags.StringVar(&renderFilm, "film", "image", fmt.Sprintf("Film encoding, one of %v.", films.Names()))
	flags.StringVar(&renderScene, "scene", "corner", fmt.Sprintf("Built-in scene, one of %v.", scene.BuiltinNames()))
	flags.StringVar(&renderIntegrator, "integrator", "path", fmt.Sprintf("Integrator, one of %v.", integrator.Names()))
	flags.IntVar(&renderSPP, "spp", 16, "Samples per pixel.")
	flags.IntVar(&renderTileSize, "tile-size", 16, "Tile edge length in pixels.")
	flags.IntVar(&renderWorkers, "workers", runtime.NumCPU(), "Tiles rendered concurrently.")
	flags.Int64Var(&renderSeed, "seed", 0, "Random seed.")
	flags.IntVar(&renderMaxDepth, "max-depth", 5, "Maximum number of surface vertices on a path.")
	flags.BoolVar(&renderLightSplats, "light-splats", false, "Add light-traced splats to the path integrator.")
	flags.StringVar(&renderOutput, "output", "", "Output path or gs://bucket/object URL.  Overrides the film's filename parameter.")
}

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a built-in scene to an ASCII film dump",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		stopMonitoring, err := startMonitoring(ctx)
		defer stopMonitoring()
		if err != nil {
			return err
		}

		return runRender(ctx)
	},
}

func runRender(ctx context.Context) error {
	ctx, span := otel.Tracer("toftracer").Start(ctx, "toftracer.render")
	defer span.End()

	params := paramset.Empty()
	if renderParams != "" {
		var err error
		params, err = paramset.Load(renderParams)
		if err != nil {
			return err
		}
	}
	filmParams := params.Sub("film")
	filterParams := params.Sub("filter")
	if renderOutput != "" {
		if err := filmParams.Set("filename", renderOutput); err != nil {
			return err
		}
	}

	flt, err := filter.Create(filterParams)
	if err != nil {
		return fmt.Errorf("while creating filter: %w", err)
	}
	fm, err := films.Create(renderFilm, filmParams, flt)
	if err != nil {
		return err
	}
	params.ReportUnused("params")
	filmParams.ReportUnused("film")
	filterParams.ReportUnused("filter")

	res := fm.FullResolution()
	s, err := scene.Builtin(renderScene, float64(res.X)/float64(res.Y))
	if err != nil {
		return err
	}

	// Light paths land anywhere on the full film but are only traced for
	// the sampled pixels.
	sampled := fm.SampleBounds().Size()
	if sampled.X <= 0 || sampled.Y <= 0 {
		return fmt.Errorf("%s film samples no pixels", renderFilm)
	}
	integ, err := integrator.Create(renderIntegrator, s, res, integrator.Options{
		MaxDepth:    renderMaxDepth,
		LightSplats: renderLightSplats,
		SplatWeight: float64(res.X*res.Y) / float64(sampled.X*sampled.Y),
	})
	if err != nil {
		return err
	}

	glog.Infof("Rendering scene %q with %s integrator into %s film: %v pixels, %d spp, %d workers",
		renderScene, renderIntegrator, renderFilm, fm.SampleBounds(), renderSPP, renderWorkers)
	start := time.Now()

	if err := render.Render(ctx, fm, integ, render.Options{
		TileSize:        renderTileSize,
		SamplesPerPixel: renderSPP,
		Workers:         renderWorkers,
		Seed:            renderSeed,
	}); err != nil {
		return fmt.Errorf("while rendering: %w", err)
	}
	glog.Infof("Rendered in %v", time.Since(start).Round(time.Millisecond))

	if err := fm.WriteImage(ctx, render.SplatScale(renderSPP)); err != nil {
		return fmt.Errorf("while writing film: %w", err)
	}
	return nil
}
