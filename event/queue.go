package event

import (
	"fmt"
	"sync"
)

// subscriberQueueSize is how many events a slow subscriber may lag behind
// before Notify blocks.
const subscriberQueueSize = 1024

type EventFunc func(v interface{})

type subscriber struct {
	f      EventFunc
	events chan interface{}
}

func newSubscriber(f EventFunc) *subscriber {
	sub := &subscriber{
		f:      f,
		events: make(chan interface{}, subscriberQueueSize),
	}
	go sub.run()
	return sub
}

func (sub *subscriber) run() {
	for v := range sub.events {
		sub.f(v)
	}
}

// EventQueue fans ledger events out to subscribers. Every subscriber has its
// own goroutine and sees events in the order they were notified.
type EventQueue struct {
	sync.RWMutex
	subscribers map[EventType][]*subscriber
}

var Queue = NewEventQueue()

func NewEventQueue() *EventQueue {
	return &EventQueue{
		subscribers: make(map[EventType][]*subscriber),
	}
}

// Subscribe adds a new subscriber to Event.
func (eq *EventQueue) Subscribe(eventType EventType, eventFunc EventFunc) int {
	eq.Lock()
	defer eq.Unlock()

	eq.subscribers[eventType] = append(eq.subscribers[eventType], newSubscriber(eventFunc))

	return len(eq.subscribers[eventType]) - 1
}

// Unsubscribe removes the specified subscriber. Events already queued for it
// are still delivered.
func (eq *EventQueue) Unsubscribe(eventType EventType, subscriberIdx int) error {
	eq.Lock()
	defer eq.Unlock()

	if subscriberIdx < 0 || subscriberIdx >= len(eq.subscribers[eventType]) {
		return fmt.Errorf("no subscriber %v", subscriberIdx)
	}
	sub := eq.subscribers[eventType][subscriberIdx]
	if sub == nil {
		return fmt.Errorf("subscriber %v already removed", subscriberIdx)
	}

	close(sub.events)
	eq.subscribers[eventType][subscriberIdx] = nil

	return nil
}

// Notify queues value for every subscriber of eventType.
func (eq *EventQueue) Notify(eventType EventType, value interface{}) {
	eq.RLock()
	defer eq.RUnlock()

	for _, sub := range eq.subscribers[eventType] {
		if sub != nil {
			sub.events <- value
		}
	}
}
