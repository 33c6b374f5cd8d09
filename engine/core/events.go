package core

import "github.com/1siamBot/hex-engine/engine/hexgeom"

// Event represents a map event
type Event struct {
	Type EventType
	Tick uint64
	ID   uint32 // critter or item id, zero for map events
	Hex  hexgeom.Hex
	// Payload carries event specific data, such as the map pid on load
	Payload interface{}
}

type EventType uint16

const (
	EvtMapLoaded EventType = iota
	EvtMapUnloaded
	EvtCritterAdded
	EvtCritterRemoved
	EvtCritterMoved
	EvtItemAdded
	EvtItemRemoved
	EvtLightRebuilt
	EvtViewChanged
)

var eventNames = [...]string{
	EvtMapLoaded:      "map_loaded",
	EvtMapUnloaded:    "map_unloaded",
	EvtCritterAdded:   "critter_added",
	EvtCritterRemoved: "critter_removed",
	EvtCritterMoved:   "critter_moved",
	EvtItemAdded:      "item_added",
	EvtItemRemoved:    "item_removed",
	EvtLightRebuilt:   "light_rebuilt",
	EvtViewChanged:    "view_changed",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// EventBus dispatches events to listeners
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int { return len(eb.queue) }

// Dispatch processes all queued events. Events emitted by handlers are
// delivered in the same call.
func (eb *EventBus) Dispatch() {
	for i := 0; i < len(eb.queue); i++ {
		e := eb.queue[i]
		for _, h := range eb.listeners[e.Type] {
			h(e)
		}
	}
	eb.queue = eb.queue[:0]
}
