package film

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/xerrors"
)

// ErrIncompatibleBuffers matches every MismatchError.
var ErrIncompatibleBuffers = errors.New("incompatible pixel buffers")

// MismatchError reports two pixel buffers that cannot be combined because
// their layouts differ.  A film in this state cannot produce a meaningful
// image.
type MismatchError struct {
	// Op is "merge" for tile merges and "splat" for combining a pixel with
	// its splat buffer.
	Op    string
	Pixel image.Point
	Err   error
	frame xerrors.Frame
}

func newMismatchError(op string, p image.Point, err error) *MismatchError {
	return &MismatchError{
		Op:    op,
		Pixel: p,
		Err:   err,
		frame: xerrors.Caller(1),
	}
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s at pixel (%d, %d): %v: %v", e.Op, e.Pixel.X, e.Pixel.Y, ErrIncompatibleBuffers, e.Err)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrIncompatibleBuffers
}

func (e *MismatchError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e *MismatchError) FormatError(p xerrors.Printer) error {
	p.Printf("%s at pixel (%d, %d): %v", e.Op, e.Pixel.X, e.Pixel.Y, ErrIncompatibleBuffers)
	e.frame.Format(p)
	return e.Err
}
