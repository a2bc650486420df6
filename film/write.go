package film

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"strconv"

	"toftracer/sink"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WriteImage resolves every pixel and writes the ASCII dump to the film's
// configured filename.  splatScale multiplies every splat buffer, typically
// 1/samples-per-pixel.
func (f *Accumulator[P]) WriteImage(ctx context.Context, splatScale float64) (err error) {
	tracer := otel.Tracer("toftracer/film")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Accumulator.WriteImage")
	defer span.End()
	span.SetAttributes(
		attribute.String("encoding", f.enc.Name()),
		attribute.String("filename", f.filename),
		attribute.Float64("splat_scale", splatScale),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	w, err := sink.Create(ctx, f.filename)
	if err != nil {
		return fmt.Errorf("while opening film output: %w", err)
	}
	if err := f.writeTo(w, splatScale); err != nil {
		return err
	}

	glog.Infof("Wrote %s film to %q", f.enc.Name(), f.filename)
	return nil
}

// writeTo encodes into w and closes it.  If encoding fails the close error is
// only logged, since the encode error says why the output is unusable.
func (f *Accumulator[P]) writeTo(w io.WriteCloser, splatScale float64) error {
	if err := f.Encode(w, splatScale); err != nil {
		if cerr := w.Close(); cerr != nil {
			glog.Errorf("Failed to close %q after write error: %v", f.filename, cerr)
		}
		return fmt.Errorf("while writing %q: %w", f.filename, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing %q: %w", f.filename, err)
	}
	return nil
}

// Encode writes one record per pixel to w:
//
//	# x y v0 v1 ...
//
// Pixels whose encoding resolves to no values are skipped.  Encode does not
// modify the film, so encoding twice yields identical output.
func (f *Accumulator[P]) Encode(w io.Writer, splatScale float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bw := bufio.NewWriter(w)
	var vals []float64
	var line []byte
	b := f.croppedPixelBounds
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(x, y)

			var err error
			vals, err = f.resolve(vals[:0], p, splatScale)
			if err != nil {
				return err
			}
			if len(vals) == 0 {
				continue
			}

			line = append(line[:0], "# "...)
			line = strconv.AppendInt(line, int64(x), 10)
			line = append(line, ' ')
			line = strconv.AppendInt(line, int64(y), 10)
			for _, v := range vals {
				line = append(line, ' ')
				line = strconv.AppendFloat(line, v, 'g', -1, 64)
			}
			line = append(line, '\n')
			if _, err := bw.Write(line); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Resolve returns the values Encode would write for pixel p.
func (f *Accumulator[P]) Resolve(p image.Point, splatScale float64) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolve(nil, p, splatScale)
}

func (f *Accumulator[P]) resolve(dst []float64, p image.Point, splatScale float64) ([]float64, error) {
	px := f.Pixel(p)
	idx := f.offset(p)

	f.splatLocks.lock(idx)
	defer f.splatLocks.unlock(idx)

	if err := f.enc.Compatible(&px.Value, &px.Splat); err != nil {
		return nil, newMismatchError("splat", p, err)
	}
	return f.enc.Resolve(dst, px, splatScale, f.scale)
}
