package world

import (
	"unsafe"

	"github.com/akmonengine/motor/actor"
	"github.com/akmonengine/motor/constraint"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case TRIGGER_ENTER:
		return "trigger_enter"
	case COLLISION_ENTER:
		return "collision_enter"
	case TRIGGER_STAY:
		return "trigger_stay"
	case COLLISION_STAY:
		return "collision_stay"
	case TRIGGER_EXIT:
		return "trigger_exit"
	case COLLISION_EXIT:
		return "collision_exit"
	default:
		return "unknown"
	}
}

// Event is a contact transition between two bodies, reported once per Step
type Event struct {
	Kind  EventType
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e Event) Type() EventType { return e.Kind }

// Other returns the body of the pair that is not body, or nil when body is not part of it
func (e Event) Other(body *actor.RigidBody) *actor.RigidBody {
	switch body {
	case e.BodyA:
		return e.BodyB
	case e.BodyB:
		return e.BodyA
	default:
		return nil
	}
}

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		*e = NewEvents()
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions marks every contact pair active for this step and drops the
// constraints involving a trigger, which only report overlaps
func (e *Events) recordCollisions(constraints []*constraint.ContactConstraint) []*constraint.ContactConstraint {
	if e.currentActivePairs == nil {
		*e = NewEvents()
	}

	n := 0
	for _, c := range constraints {
		e.currentActivePairs[makePairKey(c.BodyA, c.BodyB)] = true

		if !c.BodyA.IsTrigger && !c.BodyB.IsTrigger {
			constraints[n] = c
			n++
		}
	}

	return constraints[:n]
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processCollisionEvents() {
	for pair := range e.currentActivePairs {
		isTrigger := pair.bodyA.IsTrigger || pair.bodyB.IsTrigger

		kind := COLLISION_ENTER
		switch {
		case e.previousActivePairs[pair] && isTrigger:
			kind = TRIGGER_STAY
		case e.previousActivePairs[pair]:
			kind = COLLISION_STAY
		case isTrigger:
			kind = TRIGGER_ENTER
		}
		e.buffer = append(e.buffer, Event{Kind: kind, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	for pair := range e.previousActivePairs {
		if e.currentActivePairs[pair] {
			continue
		}

		kind := COLLISION_EXIT
		if pair.bodyA.IsTrigger || pair.bodyB.IsTrigger {
			kind = TRIGGER_EXIT
		}
		e.buffer = append(e.buffer, Event{Kind: kind, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	// Swap for next step and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// forget drops every tracked pair involving body, without emitting exits
func (e *Events) forget(body *actor.RigidBody) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	if e.currentActivePairs == nil {
		return
	}
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
