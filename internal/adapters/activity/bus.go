// Package activity fans out user interaction events to subscribers.
package activity

import (
	"log/slog"
	"sync"
	"time"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

var _ ports.ActivitySource = (*Bus)(nil)

const defaultBuffer = 64

// Bus delivers published interactions to every subscriber. Publishing never blocks;
// an event is dropped for a subscriber whose buffer is full.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan domainsession.Interaction
	nextID uint64
	buffer int
	now    func() time.Time
	logger *slog.Logger
}

// BusOptions configures a Bus.
type BusOptions struct {
	Buffer int              // per-subscriber channel size; defaults to 64
	Now    func() time.Time // optional
	Logger *slog.Logger     // optional
}

// NewBus creates an activity bus.
func NewBus(opts BusOptions) *Bus {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[uint64]chan domainsession.Interaction),
		buffer: buffer,
		now:    now,
		logger: logger.With("component", "activity_bus"),
	}
}

// Subscribe registers a listener. cancel closes the channel and may be called more than once.
func (b *Bus) Subscribe() (<-chan domainsession.Interaction, func()) {
	ch := make(chan domainsession.Interaction, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish records an interaction of kind observed now.
func (b *Bus) Publish(kind domainsession.InteractionKind) {
	b.PublishAt(kind, b.now())
}

// PublishAt records an interaction observed at the given time.
func (b *Bus) PublishAt(kind domainsession.InteractionKind, at time.Time) {
	ev := domainsession.Interaction{Kind: kind, At: at}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropping interaction for slow subscriber", "subscriber", id, "kind", kind)
		}
	}
}

// Subscribers returns the number of active listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
