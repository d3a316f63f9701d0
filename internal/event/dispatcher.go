package event

import (
	"errors"
	"fmt"
	"slices"

	"dungeoncore/internal/ecs"
)

var (
	// ErrUnknownEvent is returned for names that are not declared or not
	// registered with the dispatcher.
	ErrUnknownEvent = errors.New("event: unknown event name")
	// ErrPayloadMismatch is returned when an event carries the payload of
	// another name.
	ErrPayloadMismatch = errors.New("event: payload does not match name")
)

// Handler receives dispatched events.
type Handler func(Event)

// SubscriptionID identifies one Subscribe call.
type SubscriptionID uint64

type subscription struct {
	id     SubscriptionID
	name   Name
	source *ecs.Entity
	fn     Handler
	active bool
}

// Dispatcher is a synchronous publish/subscribe bus. It does not queue:
// Fire runs every matching handler before returning.
type Dispatcher struct {
	registered map[Name]bool
	subs       map[Name][]*subscription
	byID       map[SubscriptionID]*subscription
	nextID     SubscriptionID
}

// NewDispatcher creates a dispatcher with the given names registered.
// Invalid names panic.
func NewDispatcher(names ...Name) *Dispatcher {
	d := &Dispatcher{
		registered: make(map[Name]bool),
		subs:       make(map[Name][]*subscription),
		byID:       make(map[SubscriptionID]*subscription),
	}
	if err := d.Register(names...); err != nil {
		panic(err)
	}
	return d
}

// Register declares event names the dispatcher accepts.
func (d *Dispatcher) Register(names ...Name) error {
	for _, n := range names {
		if !n.Valid() {
			return fmt.Errorf("register %v: %w", n, ErrUnknownEvent)
		}
		d.registered[n] = true
	}
	return nil
}

// Subscribe adds fn for events called name. With a non-nil source only
// events fired by that entity are delivered.
func (d *Dispatcher) Subscribe(name Name, source *ecs.Entity, fn Handler) (SubscriptionID, error) {
	if !d.registered[name] {
		return 0, fmt.Errorf("subscribe %v: %w", name, ErrUnknownEvent)
	}
	d.nextID++
	s := &subscription{id: d.nextID, name: name, source: source, fn: fn, active: true}
	d.subs[name] = append(d.subs[name], s)
	d.byID[s.id] = s
	return s.id, nil
}

// Unsubscribe removes a subscription. A handler removed while an event is
// being dispatched is not called for it. It reports whether id was active.
func (d *Dispatcher) Unsubscribe(id SubscriptionID) bool {
	s, ok := d.byID[id]
	if !ok {
		return false
	}
	s.active = false
	delete(d.byID, id)
	list := d.subs[s.name]
	if i := slices.Index(list, s); i >= 0 {
		d.subs[s.name] = slices.Delete(slices.Clone(list), i, i+1)
	}
	return true
}

// Subscribers returns how many subscriptions exist for name.
func (d *Dispatcher) Subscribers(name Name) int {
	return len(d.subs[name])
}

// Fire calls every subscriber of ev.Name in subscription order.
// Subscriptions made during the call see the next event, not this one.
func (d *Dispatcher) Fire(ev Event) error {
	if !d.registered[ev.Name] {
		return fmt.Errorf("fire %v: %w", ev.Name, ErrUnknownEvent)
	}
	if ev.Payload == nil || ev.Payload.Name() != ev.Name {
		return fmt.Errorf("fire %v: %w", ev.Name, ErrPayloadMismatch)
	}
	for _, s := range d.subs[ev.Name] {
		if !s.active {
			continue
		}
		if s.source != nil && s.source != ev.Source {
			continue
		}
		s.fn(ev)
	}
	return nil
}
