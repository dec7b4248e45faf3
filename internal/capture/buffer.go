package capture

import (
	"sync"
	"time"

	"github.com/abhisek/changeagent/internal/progress"
)

// DefaultDelay is the trailing debounce applied to free-text input.
const DefaultDelay = 500 * time.Millisecond

// Option configures a Buffer.
type Option func(*Buffer)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(b *Buffer) { b.delay = d }
}

// WithErrorHandler receives errors from timer-driven commits.
func WithErrorHandler(fn func(error)) Option {
	return func(b *Buffer) { b.onError = fn }
}

// Manual disables the internal timer. The caller schedules commits itself
// and calls CommitIf with the generation Set returned; the TUI does this
// with tea.Tick.
func Manual() Option {
	return func(b *Buffer) { b.manual = true }
}

// Buffer holds one input's local value and commits it to the store after
// a quiet period. Value never lags behind Set; a newer Set supersedes any
// pending commit.
type Buffer struct {
	mu           sync.Mutex
	value        progress.Value
	gen          uint64
	committedGen uint64
	timer        *time.Timer

	// commitMu orders commits of this buffer. It is never held while mu is.
	commitMu sync.Mutex

	delay   time.Duration
	manual  bool
	commit  func(progress.Value) error
	onError func(error)
}

// NewBuffer returns a buffer seeded with initial. commit persists a value.
func NewBuffer(initial progress.Value, commit func(progress.Value) error, opts ...Option) *Buffer {
	b := &Buffer{value: initial, delay: DefaultDelay, commit: commit}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Value returns the latest local value.
func (b *Buffer) Value() progress.Value {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Delay returns the debounce delay.
func (b *Buffer) Delay() time.Duration {
	return b.delay
}

// Dirty reports whether the local value has not been committed yet.
func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committedGen != b.gen
}

// Set updates the local value and re-arms the debounce. It returns the new
// generation.
func (b *Buffer) Set(v progress.Value) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.value = v
	b.gen++
	gen := b.gen
	if b.manual {
		return gen
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, func() {
		if err := b.CommitIf(gen); err != nil && b.onError != nil {
			b.onError(err)
		}
	})
	return gen
}

// CommitIf commits when gen is still the latest generation. Stale
// generations are ignored.
func (b *Buffer) CommitIf(gen uint64) error {
	b.mu.Lock()
	stale := gen != b.gen
	b.mu.Unlock()
	if stale {
		return nil
	}
	return b.Flush()
}

// Flush commits the current value now if it has changed, cancelling any
// pending timer. Called on blur.
func (b *Buffer) Flush() error {
	b.commitMu.Lock()
	defer b.commitMu.Unlock()

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.committedGen == b.gen {
		b.mu.Unlock()
		return nil
	}
	v, gen := b.value, b.gen
	b.mu.Unlock()

	if err := b.commit(v); err != nil {
		return err
	}

	b.mu.Lock()
	if gen > b.committedGen {
		b.committedGen = gen
	}
	b.mu.Unlock()
	return nil
}

// Replace sets and commits immediately. Used for choices and components.
func (b *Buffer) Replace(v progress.Value) error {
	b.Set(v)
	return b.Flush()
}
