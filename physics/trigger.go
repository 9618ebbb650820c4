package physics

import "slices"

// Trigger keeps the set of entities overlapping one trigger collider.
// Enter and Exit are idempotent, so a caller can report the current overlap
// state every frame and only real changes produce notifications.
type Trigger interface {
	Enter(entity EntityID)
	Exit(entity EntityID)
	Overlapping() []EntityID
}

var _ Trigger = (*Zone)(nil)

// Zone is the default Trigger bound to a trigger entity id.
type Zone struct {
	id          EntityID
	overlapping []EntityID
	notify      func(TriggerEvent)
}

// NewZone creates a zone for trigger id. notify may be nil.
func NewZone(id EntityID, notify func(TriggerEvent)) *Zone {
	return &Zone{id: id, notify: notify}
}

// ID returns the trigger entity id.
func (z *Zone) ID() EntityID {
	return z.id
}

// Enter records entity and notifies, unless it is already inside.
func (z *Zone) Enter(entity EntityID) {
	if z.Contains(entity) {
		return
	}
	z.overlapping = append(z.overlapping, entity)
	if z.notify != nil {
		z.notify(TriggerEvent{Kind: TriggerEnter, Trigger: z.id, Entity: entity})
	}
}

// Exit forgets entity and notifies, unless it was not inside.
func (z *Zone) Exit(entity EntityID) {
	idx := slices.Index(z.overlapping, entity)
	if idx < 0 {
		return
	}
	last := len(z.overlapping) - 1
	z.overlapping[idx] = z.overlapping[last]
	z.overlapping = z.overlapping[:last]
	if z.notify != nil {
		z.notify(TriggerEvent{Kind: TriggerExit, Trigger: z.id, Entity: entity})
	}
}

// Contains reports whether entity is currently recorded inside the zone.
func (z *Zone) Contains(entity EntityID) bool {
	return slices.Contains(z.overlapping, entity)
}

// Overlapping returns a copy of the entities inside the zone.
func (z *Zone) Overlapping() []EntityID {
	return slices.Clone(z.overlapping)
}

// Tracker turns per-frame overlap queries into Enter/Exit calls on the
// registered triggers.
type Tracker struct {
	ids      []EntityID
	triggers map[EntityID]Trigger
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{triggers: make(map[EntityID]Trigger)}
}

// Register binds t to trigger id. Registering an id twice replaces the
// previous trigger but keeps its place in the update order.
func (t *Tracker) Register(id EntityID, trig Trigger) {
	if t == nil || trig == nil {
		return
	}
	if _, ok := t.triggers[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.triggers[id] = trig
}

// Trigger returns the trigger registered for id.
func (t *Tracker) Trigger(id EntityID) (Trigger, bool) {
	if t == nil {
		return nil, false
	}
	trig, ok := t.triggers[id]
	return trig, ok
}

// Update queries the world for each entity and reports the result to every
// registered trigger in registration order.
func (t *Tracker) Update(w *World, entities ...EntityID) {
	if t == nil || w == nil {
		return
	}
	for _, e := range entities {
		current := w.OverlappingTriggers(e)
		for _, id := range t.ids {
			trig := t.triggers[id]
			if slices.Contains(current, id) {
				trig.Enter(e)
			} else {
				trig.Exit(e)
			}
		}
	}
}
