package physics

// TriggerEventKind identifies trigger edge events.
type TriggerEventKind string

const (
	TriggerEnter TriggerEventKind = "enter"
	TriggerExit  TriggerEventKind = "exit"
)

// TriggerEvent is emitted when an entity starts or stops overlapping a trigger.
type TriggerEvent struct {
	Kind    TriggerEventKind
	Trigger EntityID
	Entity  EntityID
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []TriggerEvent
}

// Push adds an event.
func (q *EventQueue) Push(evt TriggerEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []TriggerEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
