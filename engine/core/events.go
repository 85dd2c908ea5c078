package core

import "github.com/1siamBot/hivebattle/engine/grid"

// Event represents a game event
type Event struct {
	Type    EventType
	Turn    uint64
	Payload interface{}
}

// Action is the payload of agent events
type Action struct {
	Player int
	Agent  EntityID
	Kind   grid.CellType
	From   grid.Pos
	To     grid.Pos
	Amount int
}

type EventType uint16

const (
	EvtBotBuilt EventType = iota
	EvtBotDestroyed
	EvtBotMoved
	EvtShot
	EvtDamaged
	EvtMined
	EvtMineralPickedUp
	EvtMineralsUnloaded
	EvtHealed
	EvtMotherShipDestroyed
	EvtPlayerLost
	EvtTurnStart
	EvtTurnEnd
	EvtGameEnd
)

var eventNames = [...]string{
	"bot_built", "bot_destroyed", "bot_moved", "shot", "damaged", "mined",
	"mineral_picked_up", "minerals_unloaded", "healed", "mothership_destroyed",
	"player_lost", "turn_start", "turn_end", "game_end",
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
	any       []EventHandler
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

// OnAny registers a handler for every event type
func (eb *EventBus) OnAny(h EventHandler) {
	eb.any = append(eb.any, h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int { return len(eb.queue) }

// Dispatch processes all queued events
func (eb *EventBus) Dispatch() {
	// handlers may emit; those land in the next Dispatch
	queue := eb.queue
	eb.queue = nil
	for _, e := range queue {
		for _, h := range eb.listeners[e.Type] {
			h(e)
		}
		for _, h := range eb.any {
			h(e)
		}
	}
}
