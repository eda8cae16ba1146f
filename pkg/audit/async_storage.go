package audit

import (
	"context"
	"sync"
	"time"
)

// AsyncOptions tunes the buffering behavior of AsyncStorage.
type AsyncOptions struct {
	// BufferSize is the number of events queued in memory before writes
	// fall back to synchronous storage.
	BufferSize int

	// StorageTimeout bounds each background write so a stalled backend
	// cannot wedge the worker.
	StorageTimeout time.Duration
}

// AsyncStorage decouples audit writes from the request path with a buffered
// channel and a single background worker. When the buffer is full the write
// happens synchronously instead of being dropped: audit completeness wins
// over latency.
type AsyncStorage struct {
	backend Storage
	events  chan Event
	wg      sync.WaitGroup
	opts    AsyncOptions

	// mu orders Store sends against Close: Close must not close the
	// channel while a send is in flight.
	mu     sync.RWMutex
	closed bool
}

// NewAsyncStorage wraps backend with a buffered async writer. Call Close to
// drain the buffer before shutdown.
func NewAsyncStorage(backend Storage, opts AsyncOptions) *AsyncStorage {
	if backend == nil {
		panic("audit: backend storage cannot be nil")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	s := &AsyncStorage{
		backend: backend,
		events:  make(chan Event, opts.BufferSize),
		opts:    opts,
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// Store queues the event for background persistence. Falls back to a
// synchronous write when the buffer is full, and fails once the storage has
// been closed.
func (s *AsyncStorage) Store(ctx context.Context, event Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStorageNotAvailable
	}

	select {
	case s.events <- event:
		return nil
	default:
		return s.backend.Store(ctx, event)
	}
}

// Close stops accepting events and drains the buffer. Returns the context's
// error if draining does not finish in time.
func (s *AsyncStorage) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncStorage) worker() {
	defer s.wg.Done()

	for event := range s.events {
		// Detach from request contexts so client cancellation does not
		// drop already-accepted audit records.
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.StorageTimeout)
		_ = s.backend.Store(ctx, event)
		cancel()
	}
}
