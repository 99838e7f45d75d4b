package ecs

import "reflect"

// EventBus decouples systems through queued, typed events. Publish enqueues;
// Drain dispatches everything queued so far, in FIFO order. The orchestrator
// drains an attached bus at the start of every tick, so events published
// during one frame are visible to systems on the next.
//
// Handler panics are contained the same way system failures are: counted,
// never propagated.
type EventBus struct {
	handlers map[reflect.Type][]any
	queue    []func(bus *EventBus)
	panics   int64
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a handler for events of type T. Handlers run in
// subscription order.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish queues an event of type T for the next Drain. Events with no
// subscribers are still queued and simply dispatch to nobody.
func Publish[T any](bus *EventBus, event T) {
	t := reflect.TypeFor[T]()
	bus.queue = append(bus.queue, func(b *EventBus) {
		for _, h := range b.handlers[t] {
			b.call(func() { h.(func(T))(event) })
		}
	})
}

func (b *EventBus) call(fn func()) {
	defer func() {
		if recover() != nil {
			b.panics++
		}
	}()
	fn()
}

// Drain dispatches every event queued before the call and returns the count.
// Events published by handlers during the drain wait for the next Drain,
// keeping per-frame dispatch deterministic.
func (b *EventBus) Drain() int {
	pending := b.queue
	b.queue = nil
	for _, dispatch := range pending {
		dispatch(b)
	}
	return len(pending)
}

// Pending returns the number of queued, undispatched events.
func (b *EventBus) Pending() int {
	return len(b.queue)
}

// Clear drops all queued events without dispatching them.
func (b *EventBus) Clear() {
	b.queue = nil
}

// HandlerPanics returns the number of handler panics contained so far.
func (b *EventBus) HandlerPanics() int64 {
	return b.panics
}
