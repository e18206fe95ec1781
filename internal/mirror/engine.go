package mirror

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"terranova/internal/game"
	"terranova/internal/persistence"
)

const (
	DefaultDebounce     = time.Second
	DefaultWriteTimeout = 30 * time.Second
)

type Stats struct {
	Configured       bool   `json:"configured"`
	Hydrated         bool   `json:"hydrated"`
	Pending          int    `json:"pending"`
	Batches          uint64 `json:"batches"`
	DocumentsWritten uint64 `json:"documentsWritten"`
	Failures         uint64 `json:"failures"`
	LastSuccessUnix  int64  `json:"lastSuccessUnix"`
	LastErrorUnix    int64  `json:"lastErrorUnix"`
}

// Batch describes one completed write round.
type Batch struct {
	Written []game.Slice
	Failed  []game.Slice
	Err     error
}

type Options struct {
	Debounce     time.Duration
	WriteTimeout time.Duration
	Logger       *log.Logger
	// OnBatch runs after every write round, outside the engine lock.
	OnBatch func(Batch)
}

// Engine mirrors store changes into a document store. Changes are coalesced
// per document and written after the debounce window goes quiet.
type Engine struct {
	store *game.Store
	docs  persistence.Store

	debounce     time.Duration
	writeTimeout time.Duration
	logger       *log.Logger
	onBatch      func(Batch)

	mu     sync.Mutex
	dirty  map[game.Slice]bool
	timer  *time.Timer
	closed bool

	// flushMu serializes write rounds.
	flushMu sync.Mutex

	unsubscribe func()

	batches          atomic.Uint64
	documentsWritten atomic.Uint64
	failures         atomic.Uint64
	lastSuccessUnix  atomic.Int64
	lastErrorUnix    atomic.Int64
}

func New(store *game.Store, docs persistence.Store, opts Options) *Engine {
	if docs == nil {
		docs = persistence.Unconfigured{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	e := &Engine{
		store:        store,
		docs:         docs,
		debounce:     opts.Debounce,
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger,
		onBatch:      opts.OnBatch,
		dirty:        map[game.Slice]bool{},
	}
	e.unsubscribe = store.Subscribe(e.onChange)
	return e
}

// Hydrate reads every document in parallel and merges what was found into
// the store. A read error counts as an absent document. Without a configured
// document store the store is simply marked hydrated.
func (e *Engine) Hydrate(ctx context.Context) error {
	if !e.docs.IsConfigured() {
		e.printf("sync hydrate skipped reason=not_configured")
		e.store.Hydrate(game.Remote{})
		return nil
	}

	bodies := make([][]byte, len(game.AllSlices))
	var wg sync.WaitGroup
	for i, sl := range game.AllSlices {
		wg.Add(1)
		go func(i int, sl game.Slice) {
			defer wg.Done()
			b, ok, err := e.docs.Load(ctx, string(sl))
			if err != nil {
				e.printf("sync hydrate read failed doc=%s err=%v", sl, err)
				return
			}
			if ok {
				bodies[i] = b
			}
		}(i, sl)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	var remote game.Remote
	found := 0
	for i, sl := range game.AllSlices {
		if bodies[i] == nil {
			continue
		}
		if err := game.DecodeSlice(sl, bodies[i], &remote); err != nil {
			e.printf("sync hydrate decode failed doc=%s err=%v", sl, err)
			continue
		}
		found++
	}
	e.store.Hydrate(remote)
	e.printf("sync hydrated docs=%d", found)
	return nil
}

func (e *Engine) onChange(st game.State, ch game.Change) {
	if !st.Hydrated || len(ch.Dirty) == 0 || !e.docs.IsConfigured() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	for _, sl := range ch.Dirty {
		e.dirty[sl] = true
	}
	if e.timer == nil {
		e.timer = time.AfterFunc(e.debounce, e.fire)
		return
	}
	e.timer.Reset(e.debounce)
}

func (e *Engine) fire() {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.writeTimeout)
	defer cancel()
	_ = e.flush(ctx)
}

// Flush writes pending documents now instead of waiting for the timer.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()
	return e.flush(ctx)
}

func (e *Engine) flush(ctx context.Context) error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	e.mu.Lock()
	pending := e.dirty
	e.dirty = map[game.Slice]bool{}
	e.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	snap := e.store.Snapshot()
	var b Batch
	for _, sl := range game.AllSlices {
		if !pending[sl] {
			continue
		}
		body, err := game.EncodeSlice(snap, sl)
		if err == nil {
			err = e.docs.Save(ctx, string(sl), body)
		}
		if err != nil {
			b.Failed = append(b.Failed, sl)
			if b.Err == nil {
				b.Err = err
			}
			e.printf("sync write failed doc=%s err=%v", sl, err)
			continue
		}
		b.Written = append(b.Written, sl)
	}

	e.batches.Add(1)
	e.documentsWritten.Add(uint64(len(b.Written)))
	now := time.Now().UTC().Unix()
	if len(b.Failed) > 0 {
		e.failures.Add(1)
		e.lastErrorUnix.Store(now)
		// Failed documents stay dirty and go out with the next round.
		e.mu.Lock()
		for _, sl := range b.Failed {
			e.dirty[sl] = true
		}
		e.mu.Unlock()
	} else {
		e.lastSuccessUnix.Store(now)
	}
	e.printf("sync batch written=%v failed=%v", b.Written, b.Failed)

	if e.onBatch != nil {
		e.onBatch(b)
	}
	return b.Err
}

// Close stops listening and writes whatever is still pending.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()
	e.unsubscribe()
	return e.flush(ctx)
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	pending := len(e.dirty)
	e.mu.Unlock()
	return Stats{
		Configured:       e.docs.IsConfigured(),
		Hydrated:         e.store.Hydrated(),
		Pending:          pending,
		Batches:          e.batches.Load(),
		DocumentsWritten: e.documentsWritten.Load(),
		Failures:         e.failures.Load(),
		LastSuccessUnix:  e.lastSuccessUnix.Load(),
		LastErrorUnix:    e.lastErrorUnix.Load(),
	}
}

func (e *Engine) printf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
