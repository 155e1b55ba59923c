// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
)

// Type represents the type of event
type Type string

// Event types published by a simulation
const (
	CollisionEntered Type = "collision_enter"
	CollisionStayed  Type = "collision_stay"
	CollisionExited  Type = "collision_exit"
	TriggerEntered   Type = "trigger_enter"
	TriggerStayed    Type = "trigger_stay"
	TriggerExited    Type = "trigger_exit"
	StepCompleted    Type = "step_completed"
	OwnerRemoved     Type = "owner_removed"
)

// TypeOf maps a pair-state transition to its event type
func TypeOf(kind collision.EventKind) Type {
	return Type(kind.String())
}

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]entry
	nextID   uint64
	guard    *Guard
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]entry),
		nextID:   1,
	}
}

// SetGuard makes the bus run every handler through g, so a handler that
// keeps panicking is cut off instead of taking the publisher down.
func (b *Bus) SetGuard(g *Guard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.guard = g
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], entry{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, e := range handlers {
		if e.id == id {
			b.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// Publish sends an event to all subscribed handlers, in subscription order
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	guard := b.guard
	b.mu.RUnlock()

	for _, e := range handlers {
		if guard == nil {
			e.handler(event)
			continue
		}
		h := e.handler
		_ = guard.Call(e.id, func() error {
			h(event)
			return nil
		})
	}
}

// CollisionEvent reports one side of a pair-state transition
type CollisionEvent struct {
	BaseEvent
	Kind collision.EventKind
	Info collision.Info
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, kind collision.EventKind, info collision.Info) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: TypeOf(kind),
			Source:    source,
		},
		Kind: kind,
		Info: info,
	}
}

// StepEvent is published after every fixed step
type StepEvent struct {
	BaseEvent
	Tick     uint64
	Substeps int
	Contacts int
}

// NewStepEvent creates a new step event
func NewStepEvent(source interface{}, tick uint64, substeps, contacts int) *StepEvent {
	return &StepEvent{
		BaseEvent: BaseEvent{
			EventType: StepCompleted,
			Source:    source,
		},
		Tick:     tick,
		Substeps: substeps,
		Contacts: contacts,
	}
}

// OwnerEvent is published when an owner leaves the simulation
type OwnerEvent struct {
	BaseEvent
	Owner collision.ID
}

// NewOwnerEvent creates a new owner event
func NewOwnerEvent(eventType Type, source interface{}, owner collision.ID) *OwnerEvent {
	return &OwnerEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Owner: owner,
	}
}
