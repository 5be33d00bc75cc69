package alert

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"lostfound-desk/internal/logging"
)

// Severity classifies a surfaced message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Title is the heading shown above the message.
func (s Severity) Title() string {
	switch s {
	case SeveritySuccess:
		return "¡Éxito!"
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Advertencia"
	default:
		return "Información"
	}
}

// Alert is the one message currently surfaced to the user.
type Alert struct {
	Open     bool
	Message  string
	Severity Severity
}

// CloseReason says what asked for the alert to go away.
type CloseReason int

const (
	// ReasonExplicit is a deliberate close gesture.
	ReasonExplicit CloseReason = iota
	// ReasonTimeout is the auto-dismiss timer firing.
	ReasonTimeout
	// ReasonClickAway is an incidental interaction elsewhere on screen. It
	// never dismisses the alert.
	ReasonClickAway
)

// Option customises a Queue.
type Option func(*Queue)

// WithObserver registers fn to be called, outside the lock, after every
// change of the current alert.
func WithObserver(fn func(Alert)) Option {
	return func(q *Queue) { q.observer = fn }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// Queue is a single-slot, latest-wins message channel. Show replaces
// whatever is displayed; there is never more than one pending message.
type Queue struct {
	mu       sync.Mutex
	current  Alert
	gen      uint64
	timer    *time.Timer
	autoHide time.Duration
	observer func(Alert)
	logger   *zap.Logger
}

// New creates a Queue whose alerts dismiss themselves after autoHide.
// A non-positive autoHide disables auto-dismiss.
func New(autoHide time.Duration, opts ...Option) *Queue {
	q := &Queue{autoHide: autoHide}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = logging.OrNop(q.logger)
	return q
}

// Show overwrites the current alert and opens it.
func (q *Queue) Show(message string, severity Severity) {
	q.mu.Lock()
	q.gen++
	gen := q.gen
	q.current = Alert{Open: true, Message: message, Severity: severity}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.autoHide > 0 {
		q.timer = time.AfterFunc(q.autoHide, func() { q.expire(gen) })
	}
	snapshot := q.current
	q.mu.Unlock()

	q.logger.Debug("alert shown", zap.String("severity", string(severity)), zap.String("message", message))
	q.notify(snapshot)
}

// Close dismisses the current alert. Closing an already closed alert is a
// no-op, and ReasonClickAway is ignored.
func (q *Queue) Close(reason CloseReason) {
	if reason == ReasonClickAway {
		return
	}
	q.mu.Lock()
	if !q.current.Open {
		q.mu.Unlock()
		return
	}
	q.closeLocked()
	snapshot := q.current
	q.mu.Unlock()
	q.notify(snapshot)
}

// Current returns a copy of the current alert.
func (q *Queue) Current() Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

func (q *Queue) expire(gen uint64) {
	q.mu.Lock()
	if gen != q.gen || !q.current.Open {
		q.mu.Unlock()
		return
	}
	q.closeLocked()
	snapshot := q.current
	q.mu.Unlock()
	q.notify(snapshot)
}

// closeLocked keeps the text so a closing animation can still render it.
func (q *Queue) closeLocked() {
	q.current.Open = false
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

func (q *Queue) notify(a Alert) {
	if q.observer != nil {
		q.observer(a)
	}
}
