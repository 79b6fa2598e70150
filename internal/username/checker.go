package username

import (
	"context"
	"sync"
	"time"

	"github.com/xrclskn/biolink/internal/logger"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusChecking  Status = "checking"
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
	StatusInvalid   Status = "invalid"
)

// Result is the outcome attached to one submitted candidate.
type Result struct {
	Candidate string
	Status    Status
	Err       error
	Seq       uint64
}

// Lookup asks the backend whether a normalized candidate is free.
type Lookup interface {
	CheckUsername(ctx context.Context, candidate string) (bool, error)
}

type LookupFunc func(ctx context.Context, candidate string) (bool, error)

func (f LookupFunc) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	return f(ctx, candidate)
}

const DefaultDelay = 400 * time.Millisecond

type CheckerOption func(*Checker)

// WithDelay sets how long input must be stable before a lookup fires.
func WithDelay(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// Checker is a debounced availability checker. Every Submit takes a new
// sequence number and only the result carrying the latest number is ever
// applied; superseded lookups have their context cancelled.
type Checker struct {
	lookup Lookup
	delay  time.Duration
	log    *logger.Logger

	mu        sync.Mutex
	seq       uint64
	timer     *time.Timer
	cancel    context.CancelFunc
	current   Result
	listeners []func(Result)
	closed    bool

	// pending is the newest result not yet handed to listeners; delivering
	// is set while one goroutine drains it.
	pending    *Result
	delivering bool
}

func NewChecker(lookup Lookup, opts ...CheckerOption) *Checker {
	c := &Checker{
		lookup:  lookup,
		delay:   DefaultDelay,
		log:     logger.Default().WithPrefix("username"),
		current: Result{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to be called after every applied state change.
func (c *Checker) OnChange(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Status returns the currently displayed result.
func (c *Checker) Status() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Submit records new raw input. Invalid input resolves immediately without a
// request; valid input moves to checking and schedules a lookup.
func (c *Checker) Submit(raw string) uint64 {
	name := Normalize(raw)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.seq++
	seq := c.seq
	c.stopPendingLocked()

	if err := Validate(name); err != nil {
		c.current = Result{Candidate: name, Status: StatusInvalid, Err: err, Seq: seq}
		c.notifyLocked()
		return seq
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.current = Result{Candidate: name, Status: StatusChecking, Seq: seq}
	c.timer = time.AfterFunc(c.delay, func() { c.run(ctx, seq, name) })
	c.notifyLocked()
	return seq
}

// Check runs one immediate lookup without touching the displayed state.
func (c *Checker) Check(ctx context.Context, raw string) Result {
	name := Normalize(raw)
	if err := Validate(name); err != nil {
		return Result{Candidate: name, Status: StatusInvalid, Err: err}
	}
	return c.resolve(ctx, name, 0)
}

// Close stops pending work; later results and submissions are ignored.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopPendingLocked()
	c.listeners = nil
}

func (c *Checker) run(ctx context.Context, seq uint64, name string) {
	if ctx.Err() != nil {
		return
	}
	res := c.resolve(ctx, name, seq)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("discarding stale result for %q: seq=%d", name, seq)
		return
	}
	c.current = res
	c.notifyLocked()
}

func (c *Checker) resolve(ctx context.Context, name string, seq uint64) Result {
	res := Result{Candidate: name, Seq: seq}
	available, err := c.lookup.CheckUsername(ctx, name)
	switch {
	case err != nil:
		c.log.Warn("username lookup failed for %q: %v", name, err)
		res.Status = StatusInvalid
		res.Err = err
	case available:
		res.Status = StatusAvailable
	default:
		res.Status = StatusTaken
		res.Err = ErrTaken
	}
	return res
}

func (c *Checker) stopPendingLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// notifyLocked publishes c.current and releases c.mu. Only one goroutine
// delivers at a time; others just replace pending, so listeners see results
// in sequence order and never one older than a result already delivered.
func (c *Checker) notifyLocked() {
	res := c.current
	c.pending = &res
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for c.pending != nil {
		next := *c.pending
		c.pending = nil
		listeners := append([]func(Result){}, c.listeners...)
		c.mu.Unlock()
		for _, fn := range listeners {
			fn(next)
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}
