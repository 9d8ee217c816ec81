package proximity

import (
	"github.com/akmonengine/proximity/actor"
)

const (
	OVERLAP_ENTER EventType = iota
	OVERLAP_STAY
	OVERLAP_EXIT
	NON_CONVERGENT
)

type pairKey struct {
	bodyA *actor.Body
	bodyB *actor.Body
}

// makePairKey creates a normalized pair key, lowest ID first
func makePairKey(bodyA, bodyB *actor.Body) pairKey {
	if bodyB.ID < bodyA.ID {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

type OverlapEnterEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e OverlapEnterEvent) Type() EventType { return OVERLAP_ENTER }

type OverlapStayEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e OverlapStayEvent) Type() EventType { return OVERLAP_STAY }

type OverlapExitEvent struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

func (e OverlapExitEvent) Type() EventType { return OVERLAP_EXIT }

// NonConvergentEvent reports a query that hit its iteration cap
type NonConvergentEvent struct {
	BodyA      *actor.Body
	BodyB      *actor.Body
	Iterations int
}

func (e NonConvergentEvent) Type() EventType { return NON_CONVERGENT }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers the events of one detection pass and dispatches them to the
// listeners at flush time.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// Overlap tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// record registers the overlapping pairs of the current pass and buffers the
// non-convergence reports
func (e *Events) record(results []Proximity) {
	e.init()
	for _, p := range results {
		if !p.Converged() {
			e.buffer = append(e.buffer, NonConvergentEvent{
				BodyA:      p.BodyA,
				BodyB:      p.BodyB,
				Iterations: p.Result.Iterations,
			})
		}
		if p.Overlap {
			e.currentActivePairs[makePairKey(p.BodyA, p.BodyB)] = true
		}
	}
}

// processOverlapEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processOverlapEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, OverlapStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, OverlapEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, OverlapExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next pass and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// forget drops every tracked pair involving body, without emitting Exit
func (e *Events) forget(body *actor.Body) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.init()
	e.processOverlapEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
