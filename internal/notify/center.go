// Package notify is the transient user-feedback surface. Notices stack,
// each expires on its own timer, and business logic never depends on
// one being seen.
package notify

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Severity of a notice.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Default display durations. Errors linger longer.
const (
	DefaultDuration      = 4 * time.Second
	DefaultErrorDuration = 7 * time.Second
)

// Notice is one transient message.
type Notice struct {
	ID       string
	Text     string
	Severity Severity
	PostedAt time.Time
}

// Center holds the currently visible notices. Show enqueues one and
// arms its expiry timer; Active snapshots what is visible right now.
type Center struct {
	log *zap.SugaredLogger

	mu        sync.Mutex
	seq       int64
	notices   []Notice
	timers    map[string]*time.Timer
	listeners []func(Notice)
	closed    bool
}

// NewCenter creates an empty message center.
func NewCenter(log *zap.SugaredLogger) *Center {
	return &Center{
		log:    log.Named("notify"),
		timers: map[string]*time.Timer{},
	}
}

// Show enqueues a notice for the given duration (0 picks the default
// for the severity) and returns its id. Each notice self-removes
// independently of any further activity.
func (c *Center) Show(text string, severity Severity, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
		if severity == Error {
			duration = DefaultErrorDuration
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	c.seq++
	notice := Notice{
		ID:       strconv.FormatInt(c.seq, 10),
		Text:     text,
		Severity: severity,
		PostedAt: time.Now(),
	}
	c.notices = append(c.notices, notice)
	c.timers[notice.ID] = time.AfterFunc(duration, func() { c.dismiss(notice.ID) })
	listeners := append([]func(Notice){}, c.listeners...)
	c.mu.Unlock()

	c.log.Debugw("notice", "severity", severity, "text", text)
	for _, fn := range listeners {
		fn(notice)
	}
	return notice.ID
}

// Active returns the notices currently visible, oldest first.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice{}, c.notices...)
}

// Subscribe registers a listener invoked for every posted notice.
func (c *Center) Subscribe(fn func(Notice)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Dismiss removes a notice before its timer fires. Unknown ids are
// ignored.
func (c *Center) Dismiss(id string) { c.dismiss(id) }

func (c *Center) dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			break
		}
	}
}

// Close stops all pending timers and drops remaining notices.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.notices = nil
}
