package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

type Kind string

const (
	KindInfo  Kind = "info"
	KindError Kind = "error"
)

type Notification struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Feed collects user-visible notifications. Expiry is evaluated when the feed
// is read, so no timers are involved.
type Feed struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	nextID uint64
	items  []Notification
	log    logrus.FieldLogger
}

func NewFeed(ttl time.Duration, log logrus.FieldLogger) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{ttl: ttl, now: time.Now, log: log}
}

func (f *Feed) Info(msg string) {
	f.log.Info(msg)
	f.push(KindInfo, msg)
}

func (f *Feed) Error(msg string) {
	f.log.Warn(msg)
	f.push(KindError, msg)
}

func (f *Feed) push(kind Kind, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	f.nextID++
	f.items = append(f.items, Notification{
		ID:        f.nextID,
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(f.ttl),
	})
}

// Active returns the unexpired notifications, oldest first, and drops the rest.
func (f *Feed) Active() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	kept := f.items[:0]
	for _, n := range f.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	f.items = kept
	return append([]Notification(nil), kept...)
}
