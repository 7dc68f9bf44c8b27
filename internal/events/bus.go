// Package events fans out catalog changes to interested listeners.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Type is the closed set of things that can happen to the catalog.
type Type int

const (
	RecipeSaved Type = iota
	RecipeDeleted
	RoasterSaved
	RoasterDeleted
	GrinderSaved
	GrinderDeleted
	BrewLogged
	BrewUpdated
	BrewDeleted
	ChartSaved
	ChartDeleted
	DataImported
)

// String returns a human-readable event type.
func (t Type) String() string {
	switch t {
	case RecipeSaved:
		return "recipe.saved"
	case RecipeDeleted:
		return "recipe.deleted"
	case RoasterSaved:
		return "roaster.saved"
	case RoasterDeleted:
		return "roaster.deleted"
	case GrinderSaved:
		return "grinder.saved"
	case GrinderDeleted:
		return "grinder.deleted"
	case BrewLogged:
		return "brew.logged"
	case BrewUpdated:
		return "brew.updated"
	case BrewDeleted:
		return "brew.deleted"
	case ChartSaved:
		return "chart.saved"
	case ChartDeleted:
		return "chart.deleted"
	case DataImported:
		return "data.imported"
	default:
		return "unknown"
	}
}

// Event is one change notification.
type Event struct {
	Seq      uint64
	Type     Type
	EntityID string // empty for DataImported
	At       time.Time
}

// Bus delivers events to subscribers in publish order. Safe for
// concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	next uint64
	seq  atomic.Uint64
	log  *logger.Logger
	now  func() time.Time
}

// NewBus creates a bus with no subscribers.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[uint64]chan Event),
		log:  log,
		now:  time.Now,
	}
}

// Subscribe registers a listener with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call
// more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish sends an event to every subscriber without blocking. A
// subscriber whose buffer is full misses the event.
func (b *Bus) Publish(typ Type, entityID string) {
	ev := Event{
		Seq:      b.seq.Add(1),
		Type:     typ,
		EntityID: entityID,
		At:       b.now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn("event %s dropped for subscriber %d (buffer full)", typ, id)
		}
	}
	b.log.Debug("published %s %s to %d subscriber(s)", typ, entityID, len(b.subs))
}
