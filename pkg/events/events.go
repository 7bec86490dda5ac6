package events

import (
	"sync"
	"time"
)

// Name identifies the event being published.
type Name string

const (
	// SyncUpdate carries a SyncRecord snapshot, published after
	// SaveModel/DeleteModel complete and the sync dispatcher has applied it.
	SyncUpdate Name = "sync:update"
	// ProfileUpdate fires whenever the in-memory profile (spaces, boards,
	// notes) changes, whether from a local edit or an incoming sync record.
	ProfileUpdate Name = "profile:update"
	// AppShutdown fires once, as the engine begins tearing down.
	AppShutdown Name = "app:shutdown"
)

// Event is a single published notification.
type Event struct {
	Name      Name
	Timestamp time.Time
	Payload   any
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker manages event subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker constructs a Broker. Call Start before publishing.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start launches the broadcast goroutine.
func (b *Broker) Start() {
	go b.run()
}

// Stop halts the broadcast goroutine. Subscriber channels are left open;
// callers should Unsubscribe before or after Stop, not rely on ordering.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe registers a new subscriber with its own buffered channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub)
}

// Publish enqueues an event for broadcast. Blocks only if the intake buffer
// itself is full, never on a subscriber.
func (b *Broker) Publish(name Name, payload any) {
	event := &Event{Name: name, Timestamp: time.Now(), Payload: payload}
	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
