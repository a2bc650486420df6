package film

import (
	"fmt"
	"image"
	"math"

	"toftracer/filter"
	"toftracer/paramset"
	"toftracer/vmath/vec2"

	"github.com/golang/glog"
)

// DefaultFilename is used when the parameters name no output.
const DefaultFilename = "toftracer.dat"

// ConfigFromParams reads the variant-independent film parameters:
//
//	xresolution, yresolution  full image size (1280x720)
//	cropwindow                [x0 x1 y0 y1] in [0,1] (whole image)
//	filename                  output path or gs:// URL
//	scale                     exposure multiplier (1), must be positive
//	diagonal                  sensor diagonal in mm (35)
func ConfigFromParams(params *paramset.ParamSet, f filter.Filter) (Config, error) {
	cfg := Config{
		FullResolution: image.Pt(
			params.FindOneInt("xresolution", 1280),
			params.FindOneInt("yresolution", 720),
		),
		CropWindow: FullWindow,
		Filter:     f,
		Filename:   params.FindOneString("filename", DefaultFilename),
		Scale:      params.FindOneFloat("scale", 1),
		Diagonal:   params.FindOneFloat("diagonal", 35),
	}

	if cr := params.FindFloats("cropwindow"); cr != nil {
		if len(cr) == 4 {
			cfg.CropWindow = Bounds2f{
				Min: vec2.T{cr[0], cr[2]},
				Max: vec2.T{cr[1], cr[3]},
			}.Clamp()
		} else {
			glog.Warningf("cropwindow needs 4 values, got %d; using the whole image", len(cr))
		}
	}

	if !(cfg.Scale > 0) || math.IsInf(cfg.Scale, 0) {
		return Config{}, fmt.Errorf("film: scale %v must be positive and finite", cfg.Scale)
	}

	return cfg, nil
}
