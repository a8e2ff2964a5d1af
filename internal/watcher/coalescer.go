package watcher

import (
	"sync"
	"time"
)

// Op is the settled kind of change to a file.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// change is a raw or settled change to one path.
type change struct {
	path string
	op   Op
}

// Coalescer holds changes per path until they settle: a path is emitted
// once no new change has arrived for the settle window (the remove grace
// for removals). Bursts of writes collapse into one change and a file
// created then removed inside the window is never emitted.
type Coalescer struct {
	settle      time.Duration
	removeGrace time.Duration

	mu      sync.Mutex
	pending map[string]*pendingChange
	out     chan change
	stopCh  chan struct{}
	stopped bool
}

type pendingChange struct {
	op    Op
	timer *time.Timer
}

// NewCoalescer creates a coalescer with the given windows.
func NewCoalescer(settle, removeGrace time.Duration) *Coalescer {
	return &Coalescer{
		settle:      settle,
		removeGrace: removeGrace,
		pending:     make(map[string]*pendingChange),
		out:         make(chan change, 256),
		stopCh:      make(chan struct{}),
	}
}

// Add records a change to path.
func (c *Coalescer) Add(path string, op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if p, ok := c.pending[path]; ok {
		p.timer.Stop()
		merged, keep := merge(p.op, op)
		if !keep {
			delete(c.pending, path)
			return
		}
		p.op = merged
		p.timer = time.AfterFunc(c.delay(merged), func() { c.emit(path) })
		return
	}

	c.pending[path] = &pendingChange{
		op:    op,
		timer: time.AfterFunc(c.delay(op), func() { c.emit(path) }),
	}
}

// merge folds a new op into a pending one. keep is false when the pair
// cancels out.
func merge(prev, next Op) (op Op, keep bool) {
	switch {
	case prev == OpCreate && next == OpRemove:
		return 0, false
	case prev == OpCreate && next == OpWrite:
		return OpCreate, true
	case prev == OpRemove && next != OpRemove:
		// replaced in place
		return OpWrite, true
	default:
		return next, true
	}
}

func (c *Coalescer) delay(op Op) time.Duration {
	if op == OpRemove {
		return c.removeGrace
	}
	return c.settle
}

func (c *Coalescer) emit(path string) {
	c.mu.Lock()
	p, ok := c.pending[path]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, path)
	c.mu.Unlock()

	select {
	case c.out <- change{path: path, op: p.op}:
	case <-c.stopCh:
	}
}

// Pending returns the number of paths waiting to settle.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop discards pending changes. Settled changes not yet read are dropped.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	for path, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, path)
	}
	close(c.stopCh)
}
