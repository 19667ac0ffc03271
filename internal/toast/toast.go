// Package toast holds the single visible notification of a page. Showing a
// toast replaces the current one; every toast expires after a fixed TTL.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the visual severity of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultTTL is how long a toast stays visible when no TTL is configured.
const DefaultTTL = 3 * time.Second

// Toast is one ephemeral message.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Listener observes changes of the visible toast. t is nil when cleared.
type Listener func(t *Toast)

// Notifier is a one-slot toast holder with automatic expiry.
type Notifier struct {
	mu        sync.Mutex
	ttl       time.Duration
	current   *Toast
	timer     *time.Timer
	listeners map[int]Listener
	nextID    int
	closed    bool
}

// New returns a notifier whose toasts live for ttl (DefaultTTL when <= 0).
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl, listeners: make(map[int]Listener)}
}

// Show replaces the visible toast. No queueing.
func (n *Notifier) Show(message string, kind Kind) Toast {
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		ExpiresAt: time.Now().Add(n.ttl),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return t
	}
	n.stopTimerLocked()
	n.current = &t
	id := t.ID
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(id) })
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	notify(listeners, &t)
	return t
}

// Success shows a success toast.
func (n *Notifier) Success(message string) Toast {
	return n.Show(message, KindSuccess)
}

// Error shows an error toast.
func (n *Notifier) Error(message string) Toast {
	return n.Show(message, KindError)
}

// Dismiss clears the visible toast immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	n.stopTimerLocked()
	n.current = nil
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	notify(listeners, nil)
}

// Current returns the visible toast, if any.
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Subscribe registers l and returns a function that removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Close stops the expiry timer; later Show calls are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimerLocked()
	n.closed = true
	n.current = nil
}

func (n *Notifier) expire(id string) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	notify(listeners, nil)
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(n.listeners))
	for _, l := range n.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, t *Toast) {
	for _, l := range listeners {
		if t == nil {
			l(nil)
			continue
		}
		copied := *t
		l(&copied)
	}
}
