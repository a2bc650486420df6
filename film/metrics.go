package film

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	encodingKey = tag.MustNewKey("encoding")
	reasonKey   = tag.MustNewKey("reason")

	splatsDropped = stats.Int64("toftracer/film/splats_dropped", "Splats discarded before reaching a splat buffer", stats.UnitDimensionless)
	tilesMerged   = stats.Int64("toftracer/film/tiles_merged", "Tiles merged into a film", stats.UnitDimensionless)
	tilesSkipped  = stats.Int64("toftracer/film/tiles_skipped", "Tiles of a foreign type passed to MergeFilmTile", stats.UnitDimensionless)
)

var (
	SplatsDroppedView = &view.View{
		Name:        "toftracer/film/splats_dropped",
		Description: "Count of splats discarded, by reason",
		TagKeys:     []tag.Key{encodingKey, reasonKey},
		Measure:     splatsDropped,
		Aggregation: view.Count(),
	}

	TilesMergedView = &view.View{
		Name:        "toftracer/film/tiles_merged",
		Description: "Count of tiles merged",
		TagKeys:     []tag.Key{encodingKey},
		Measure:     tilesMerged,
		Aggregation: view.Count(),
	}

	TilesSkippedView = &view.View{
		Name:        "toftracer/film/tiles_skipped",
		Description: "Count of foreign tiles ignored by MergeFilmTile",
		TagKeys:     []tag.Key{encodingKey},
		Measure:     tilesSkipped,
		Aggregation: view.Count(),
	}
)

// RegisterViews makes the film counters available to exporters.
func RegisterViews() error {
	return view.Register(SplatsDroppedView, TilesMergedView, TilesSkippedView)
}

func recordSplatDropped(encoding, reason string) {
	stats.RecordWithOptions(
		context.Background(),
		stats.WithTags(
			tag.Upsert(encodingKey, encoding),
			tag.Upsert(reasonKey, reason),
		),
		stats.WithMeasurements(splatsDropped.M(1)))
}

func recordTileMerged(encoding string) {
	stats.RecordWithOptions(
		context.Background(),
		stats.WithTags(tag.Upsert(encodingKey, encoding)),
		stats.WithMeasurements(tilesMerged.M(1)))
}

func recordTileSkipped(encoding string) {
	stats.RecordWithOptions(
		context.Background(),
		stats.WithTags(tag.Upsert(encodingKey, encoding)),
		stats.WithMeasurements(tilesSkipped.M(1)))
}
