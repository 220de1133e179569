package slotcache

import (
	"sync"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

type Kind string

const (
	KindAppointmentCreated Kind = "appointment_created"
	KindAppointmentStatus  Kind = "appointment_status_changed"
	KindBlockChanged       Kind = "block_changed"
)

// Change says the availability of DesignerID on Date may differ from what was cached.
type Change struct {
	DesignerID string
	Date       model.Date
	Kind       Kind
}

// Notifier fans changes out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the change.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	buffer int
}

type subscription struct {
	designerID string
	ch         chan Change
}

func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &Notifier{subs: make(map[int]*subscription), buffer: buffer}
}

// Subscribe returns changes for designerID, or for every designer when designerID is empty.
// cancel closes the channel and may be called more than once.
func (n *Notifier) Subscribe(designerID string) (<-chan Change, func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	sub := &subscription{designerID: designerID, ch: make(chan Change, n.buffer)}
	n.subs[id] = sub
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			close(sub.ch)
			n.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish returns the number of subscribers that received c.
func (n *Notifier) Publish(c Change) int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	delivered := 0
	for _, sub := range n.subs {
		if sub.designerID != "" && sub.designerID != c.DesignerID {
			continue
		}
		select {
		case sub.ch <- c:
			delivered++
		default:
		}
	}
	return delivered
}

func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
