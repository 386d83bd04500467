package database

import "sync"

// Table names used for invalidation notifications.
const (
	TableStories    = "stories"
	TableRemoteKeys = "remote_keys"
)

// Tracker broadcasts table invalidation events to subscribers. Writers call
// Notify after their changes are committed; observed queries re-run on each
// notification. Notifications are edge-triggered and coalesce: a subscriber
// that has not drained its channel sees at most one pending signal.
type Tracker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

func NewTracker() *Tracker {
	return &Tracker{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers interest in writes to table. The returned cancel
// function must be called to release the subscription.
func (t *Tracker) Subscribe(table string) (<-chan struct{}, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.subs[table] == nil {
		t.subs[table] = make(map[int]chan struct{})
	}

	id := t.nextID
	t.nextID++

	ch := make(chan struct{}, 1)
	t.subs[table][id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs[table], id)
	}
	return ch, cancel
}

// Notify signals all subscribers of the given tables.
func (t *Tracker) Notify(tables ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, table := range tables {
		for _, ch := range t.subs[table] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
