// Package datfile reads the ASCII film dumps and compares them by luminance.
//
// A dump is a whitespace-separated stream of records, each "# x y" followed
// by the values the film wrote for that pixel.
package datfile

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strconv"

	"toftracer/spectrum"

	"gonum.org/v1/gonum/stat"
)

type Record struct {
	X, Y   int
	Values []float64
}

func (r Record) Point() image.Point {
	return image.Pt(r.X, r.Y)
}

type parseState int

const (
	inValues parseState = iota
	wantX
	wantY
)

// Read parses every record in r.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var recs []Record
	state := inValues
	for n := 0; sc.Scan(); n++ {
		tok := sc.Text()
		switch {
		case tok == "#":
			if state != inValues {
				return nil, fmt.Errorf("token %d: record header cut short", n)
			}
			recs = append(recs, Record{})
			state = wantX
		case state == wantX:
			x, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("token %d: bad x coordinate: %w", n, err)
			}
			recs[len(recs)-1].X = x
			state = wantY
		case state == wantY:
			y, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("token %d: bad y coordinate: %w", n, err)
			}
			recs[len(recs)-1].Y = y
			state = inValues
		case len(recs) == 0:
			return nil, fmt.Errorf("token %d: %q before the first record", n, tok)
		default:
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("token %d: %w", n, err)
			}
			last := &recs[len(recs)-1]
			last.Values = append(last.Values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("while scanning: %w", err)
	}
	if state != inValues {
		return nil, fmt.Errorf("record header cut short at end of input")
	}
	return recs, nil
}

// ReadFile parses the dump at name.
func ReadFile(name string) ([]Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening dump: %w", err)
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", name, err)
	}
	return recs, nil
}

// Layout says how to read luminance out of a record's values.
type Layout int

const (
	// Image records are "r g b".
	Image Layout = iota
	// GroundTruth records are "distance luminance".
	GroundTruth
	// Histogram records are "offset luminance" pairs.
	Histogram
)

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "image":
		return Image, nil
	case "groundtruth":
		return GroundTruth, nil
	case "histogram":
		return Histogram, nil
	}
	return 0, fmt.Errorf("unknown dump layout %q; want image, groundtruth, or histogram", s)
}

func (l Layout) String() string {
	switch l {
	case Image:
		return "image"
	case GroundTruth:
		return "groundtruth"
	case Histogram:
		return "histogram"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Luminance extracts one pixel's luminance.  Histograms sum every bin.
func (l Layout) Luminance(values []float64) (float64, error) {
	switch l {
	case Image:
		if len(values) != 3 {
			return 0, fmt.Errorf("image record has %d values, want 3", len(values))
		}
		return spectrum.T{values[0], values[1], values[2]}.Y(), nil
	case GroundTruth:
		if len(values) != 2 {
			return 0, fmt.Errorf("ground truth record has %d values, want 2", len(values))
		}
		return values[1], nil
	case Histogram:
		if len(values)%2 != 0 {
			return 0, fmt.Errorf("histogram record has odd value count %d", len(values))
		}
		sum := 0.0
		for i := 1; i < len(values); i += 2 {
			sum += values[i]
		}
		return sum, nil
	}
	return 0, fmt.Errorf("no luminance for layout %v", l)
}

// Luminances maps every record's pixel to its luminance.
func Luminances(recs []Record, l Layout) (map[image.Point]float64, error) {
	out := make(map[image.Point]float64, len(recs))
	for _, r := range recs {
		lum, err := l.Luminance(r.Values)
		if err != nil {
			return nil, fmt.Errorf("pixel (%d, %d): %w", r.X, r.Y, err)
		}
		out[r.Point()] += lum
	}
	return out, nil
}

// Stats summarizes the per-pixel difference first - second.
type Stats struct {
	Pixels         int
	MeanDifference float64
	// StdDev is the population standard deviation of the difference.
	StdDev float64
	// PercentError is |mean difference / mean of first| * 100, or 0 when the
	// first mean is 0.
	PercentError float64
}

// Compare diffs two luminance maps over the union of their pixels.  A pixel
// missing from one side counts as black there, since films omit pixels they
// have nothing to say about.
func Compare(first, second map[image.Point]float64) Stats {
	keys := map[image.Point]bool{}
	for p := range first {
		keys[p] = true
	}
	for p := range second {
		keys[p] = true
	}
	if len(keys) == 0 {
		return Stats{}
	}

	diff := make([]float64, 0, len(keys))
	firsts := make([]float64, 0, len(keys))
	for p := range keys {
		diff = append(diff, first[p]-second[p])
		firsts = append(firsts, first[p])
	}

	n := float64(len(diff))
	mean := stat.Mean(diff, nil)
	popVariance := 0.0
	if len(diff) > 1 {
		popVariance = stat.Variance(diff, nil) * (n - 1) / n
	}

	// A black first dump has no scale to be a percentage of.
	percent := 0.0
	if m := stat.Mean(firsts, nil); m != 0 {
		percent = math.Abs(mean / m * 100)
	}

	return Stats{
		Pixels:         len(diff),
		MeanDifference: mean,
		StdDev:         math.Sqrt(popVariance),
		PercentError:   percent,
	}
}
