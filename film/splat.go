package film

import (
	"sync"

	"toftracer/integration"
	"toftracer/vmath/vec2"

	"github.com/golang/glog"
)

// numSplatShards must be a power of two.
const numSplatShards = 256

// shardLocks guards splat buffers.  Pixel offsets map onto a fixed set of
// mutexes so concurrent splats on the same pixel serialize while splats on
// most other pixels do not contend.
type shardLocks struct{ mu [numSplatShards]sync.Mutex }

func (sl *shardLocks) lock(idx int)   { sl.mu[idx&(numSplatShards-1)].Lock() }
func (sl *shardLocks) unlock(idx int) { sl.mu[idx&(numSplatShards-1)].Unlock() }

// AddSplat adds an unfiltered contribution to the splat buffer of the pixel
// containing p.  It is safe to call from any goroutine, concurrently with
// other splats and with tile merges.
func (f *Accumulator[P]) AddSplat(p vec2.T, r integration.Result) {
	if !r.IsFinite() || !p.IsFinite() {
		if f.warnings.Allow() {
			glog.Warningf("%s film ignoring splat with non-finite values at %v", f.enc.Name(), p)
		}
		recordSplatDropped(f.enc.Name(), "nonfinite")
		return
	}

	pi := floorPoint(p)
	if !pi.In(f.croppedPixelBounds) {
		recordSplatDropped(f.enc.Name(), "outside")
		return
	}

	ok, msg := f.enc.Admit(&r, true)
	if msg != "" && f.warnings.Allow() {
		glog.Warningf("%s film: %s", f.enc.Name(), msg)
	}
	if !ok {
		recordSplatDropped(f.enc.Name(), "rejected")
		return
	}

	idx := f.offset(pi)
	f.splatLocks.lock(idx)
	defer f.splatLocks.unlock(idx)
	f.enc.AddSplat(&f.pixels[idx].Splat, &r)
}
