package tex2pdf

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ConverterPool manages Converters for parallel exports. Each converter
// owns its own browser. Converters are created lazily on first acquire
// with the pool's options.
//
// The slot channel starts with size empty slots (nil). A slot holds a
// converter once one has been created for it; a failed creation puts the
// empty slot back so the next waiter can retry.
type ConverterPool struct {
	size       int
	opts       []Option
	converters []*Converter
	slots      chan *Converter
	create     func(...Option) (*Converter, error)
	mu         sync.Mutex
	closed     bool
}

// NewConverterPool creates a pool with capacity for n converters.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	if n < 1 {
		n = 1
	}
	slots := make(chan *Converter, n)
	for range n {
		slots <- nil
	}
	return &ConverterPool{
		size:       n,
		opts:       opts,
		converters: make([]*Converter, 0, n),
		slots:      slots,
		create:     NewConverter,
	}
}

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("converter pool is closed")

// Acquire gets a converter from the pool, creating one if needed.
// Blocks if all converters are in use.
func (p *ConverterPool) Acquire() (*Converter, error) {
	c, ok := <-p.slots
	if !ok {
		return nil, ErrPoolClosed
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}
	if c != nil {
		return c, nil
	}

	// Create outside the lock.
	c, err := p.create(p.opts...)
	if err != nil {
		p.putSlot(nil)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = c.Close()
		return nil, ErrPoolClosed
	}
	p.converters = append(p.converters, c)
	return c, nil
}

// Release returns a converter to the pool.
func (p *ConverterPool) Release(c *Converter) {
	if c == nil {
		return
	}
	p.putSlot(c)
}

// putSlot sends a slot back. The lock is held while sending so Close
// cannot close the channel under a pending send; the send never blocks
// because at most size slots are ever out.
func (p *ConverterPool) putSlot(c *Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.slots <- c
}

// Close releases all browser resources.
// Returns an aggregated error if several converters fail to close.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.slots)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, c := range converters {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, MinPoolSize), MaxPoolSize)
}
