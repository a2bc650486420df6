package render

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// progress reports finished tiles at most twice a second.  On a terminal it
// redraws one status line; otherwise it logs.
type progress struct {
	total   int
	started time.Time
	limiter *rate.Limiter

	mu    sync.Mutex
	done  int
	out   io.Writer
	drawn bool
}

func newProgress(total int) *progress {
	p := &progress{
		total:   total,
		started: time.Now(),
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		p.out = os.Stderr
	}
	return p
}

func (p *progress) tileDone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.done < p.total && !p.limiter.Allow() {
		return
	}

	pct := 100 * float64(p.done) / float64(p.total)
	elapsed := time.Since(p.started).Round(time.Second)
	if p.out != nil {
		fmt.Fprintf(p.out, "\r%d/%d tiles (%.1f%%) %v", p.done, p.total, pct, elapsed)
		p.drawn = true
		return
	}
	glog.Infof("Rendered %d/%d tiles (%.1f%%) in %v", p.done, p.total, pct, elapsed)
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.out)
	}
}
