package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor pulls a string value out of the request context.
type contextExtractor func(context.Context) (string, bool)

// Logger builds audit events and hands them to a Storage.
type Logger struct {
	storage            Storage
	requestIDExtractor contextExtractor
	now                func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithRequestIDExtractor registers a function that pulls the request id out
// of the context so every event carries it without callers passing it around.
func WithRequestIDExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *Logger) { l.requestIDExtractor = fn }
}

// WithClock overrides the event timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger creates an audit logger over the given storage.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Success records an action with outcome SUCCESS.
func (l *Logger) Success(ctx context.Context, action string, opts ...EventOption) error {
	return l.log(ctx, action, OutcomeSuccess, opts)
}

// Failure records an action with outcome FAILURE and the given message.
func (l *Logger) Failure(ctx context.Context, action, message string, opts ...EventOption) error {
	opts = append(opts, WithMessage(message))
	return l.log(ctx, action, OutcomeFailure, opts)
}

func (l *Logger) log(ctx context.Context, action string, outcome Outcome, opts []EventOption) error {
	event := Event{
		ID:        uuid.New(),
		Action:    action,
		Outcome:   outcome,
		CreatedAt: l.now().UTC(),
	}

	if l.requestIDExtractor != nil {
		if rid, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = rid
		}
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}
