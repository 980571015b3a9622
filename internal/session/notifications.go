package session

import (
	"sync"
	"time"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/shared"
)

// notificationTTL is how long an entry stays visible without dismissal.
const notificationTTL = 5 * time.Second

type queuedNotification struct {
	models.Notification
	expiresAt time.Time
}

// notificationQueue holds user-visible events. Entries auto-expire and
// duplicate messages are suppressed while one is already queued.
type notificationQueue struct {
	mu      sync.Mutex
	entries []queuedNotification
	ttl     time.Duration
	now     func() time.Time
}

func newNotificationQueue(ttl time.Duration, now func() time.Time) *notificationQueue {
	if ttl <= 0 {
		ttl = notificationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &notificationQueue{ttl: ttl, now: now}
}

// push enqueues a notification unless one with the same message is still
// live. Returns the entry id, or "" when suppressed as a duplicate.
func (q *notificationQueue) push(severity models.Severity, message string) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked()

	for _, e := range q.entries {
		if e.Message == message {
			return ""
		}
	}

	n := models.Notification{ID: shared.GenerateID(), Severity: severity, Message: message}
	q.entries = append(q.entries, queuedNotification{
		Notification: n,
		expiresAt:    q.now().Add(q.ttl),
	})
	return n.ID
}

// active returns the live entries in arrival order, dropping expired ones.
func (q *notificationQueue) active() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked()

	out := make([]models.Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Notification
	}
	return out
}

// dismiss removes an entry by id. Unknown ids are ignored.
func (q *notificationQueue) dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}

func (q *notificationQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}

func (q *notificationQueue) pruneLocked() {
	now := q.now()
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.expiresAt.After(now) {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}
