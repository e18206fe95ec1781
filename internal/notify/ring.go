package notify

import (
	"sync"
	"time"
)

const DefaultRingSize = 50

// Ring keeps the most recent notices for the API.
type Ring struct {
	mu    sync.Mutex
	buf   []Notice
	size  int
	seq   uint64
	clock func() time.Time
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{size: size, clock: func() time.Time { return time.Now().UTC() }}
}

func (r *Ring) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.Seq = r.seq
	if n.At.IsZero() {
		n.At = r.clock()
	}
	r.buf = append(r.buf, n)
	if len(r.buf) > r.size {
		r.buf = append([]Notice(nil), r.buf[len(r.buf)-r.size:]...)
	}
}

// List returns held notices oldest first, limited to those after seq.
func (r *Ring) List(after uint64) []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, 0, len(r.buf))
	for _, n := range r.buf {
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}
