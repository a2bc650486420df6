// Package films builds any of the film encodings by name.
package films

import (
	"fmt"
	"sort"

	"toftracer/film"
	"toftracer/film/groundtruth"
	"toftracer/film/histogram"
	"toftracer/film/imagefilm"
	"toftracer/film/signal"
	"toftracer/filter"
	"toftracer/paramset"
)

type factory func(params *paramset.ParamSet, f filter.Filter) (film.Film, error)

var factories = map[string]factory{
	"image": func(params *paramset.ParamSet, f filter.Filter) (film.Film, error) {
		return imagefilm.Create(params, f)
	},
	"groundtruth": func(params *paramset.ParamSet, f filter.Filter) (film.Film, error) {
		return groundtruth.Create(params, f)
	},
	"histogram": func(params *paramset.ParamSet, f filter.Filter) (film.Film, error) {
		return histogram.Create(params, f)
	},
	"signal": func(params *paramset.ParamSet, f filter.Filter) (film.Film, error) {
		return signal.Create(params, f)
	},
}

// Names lists the accepted film names.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the named film from params.
func Create(name string, params *paramset.ParamSet, f filter.Filter) (film.Film, error) {
	fac, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown film %q; want one of %v", name, Names())
	}
	fm, err := fac(params, f)
	if err != nil {
		return nil, fmt.Errorf("while creating %s film: %w", name, err)
	}
	return fm, nil
}
