// Package event defines the fixed set of gameplay events, their payloads,
// and the dispatcher behaviors and observers subscribe through.
package event

import (
	"fmt"

	"dungeoncore/internal/ecs"
	"dungeoncore/internal/gamemap"
)

// Name identifies an event kind. The set is fixed.
type Name uint8

const (
	// EntityMoved: Source stepped from one cell to another.
	EntityMoved Name = iota + 1
	// EntityBumped: Source tried to move into something it could not enter.
	EntityBumped
	// EntityAttacking: Source starts an attack on Target.
	EntityAttacking
	// EntityAttacked: Source is being attacked.
	EntityAttacked
	// EntityTookDamage: Source lost hit points.
	EntityTookDamage
	// EntityDied: Source reached zero hit points and is leaving the level.
	EntityDied
	// EntityPickedUpItem: Source moved an item from the floor to its inventory.
	EntityPickedUpItem
	// EntityDroppedItem: an item was put on the floor, by Source if set.
	EntityDroppedItem
	// DoorOpen: Source opened a door.
	DoorOpen
	// PlayerTookAction: the player finished a turn; monsters react to it.
	PlayerTookAction
	// ScoreIncreased: the player's score went up.
	ScoreIncreased
)

var names = map[Name]string{
	EntityMoved:        "entity_moved",
	EntityBumped:       "entity_bumped",
	EntityAttacking:    "entity_attacking",
	EntityAttacked:     "entity_attacked",
	EntityTookDamage:   "entity_took_damage",
	EntityDied:         "entity_died",
	EntityPickedUpItem: "entity_picked_up_item",
	EntityDroppedItem:  "entity_dropped_item",
	DoorOpen:           "door_open",
	PlayerTookAction:   "player_took_action",
	ScoreIncreased:     "score_increased",
}

// AllNames returns every event name in declaration order.
func AllNames() []Name {
	out := make([]Name, 0, len(names))
	for n := EntityMoved; n <= ScoreIncreased; n++ {
		out = append(out, n)
	}
	return out
}

func (n Name) String() string {
	if s, ok := names[n]; ok {
		return s
	}
	return fmt.Sprintf("Name(%d)", uint8(n))
}

// Valid reports whether n is one of the declared names.
func (n Name) Valid() bool {
	_, ok := names[n]
	return ok
}

// ParseName converts a snake_case event name.
func ParseName(s string) (Name, error) {
	for n, str := range names {
		if str == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownEvent)
}

// Payload is the data carried by one kind of event. Each payload type
// belongs to exactly one Name.
type Payload interface {
	Name() Name
	payload()
}

// Moved is the payload of EntityMoved.
type Moved struct{ From, To gamemap.Point }

// Bumped is the payload of EntityBumped. Blocker is set when another entity
// was in the way.
type Bumped struct {
	At      gamemap.Point
	Terrain gamemap.Terrain
	Blocker *ecs.Entity
}

// Attacking is the payload of EntityAttacking.
type Attacking struct{ Target *ecs.Entity }

// Attacked is the payload of EntityAttacked.
type Attacked struct{ Attacker *ecs.Entity }

// TookDamage is the payload of EntityTookDamage. HP is what is left.
type TookDamage struct {
	Attacker *ecs.Entity
	Amount   int
	HP       int
}

// Died is the payload of EntityDied.
type Died struct {
	At     gamemap.Point
	Killer *ecs.Entity
}

// PickedUpItem is the payload of EntityPickedUpItem.
type PickedUpItem struct {
	Item *ecs.Item
	At   gamemap.Point
}

// DroppedItem is the payload of EntityDroppedItem.
type DroppedItem struct {
	Item *ecs.Item
	At   gamemap.Point
}

// DoorOpened is the payload of DoorOpen.
type DoorOpened struct{ At gamemap.Point }

// TookAction is the payload of PlayerTookAction.
type TookAction struct{ At gamemap.Point }

// ScoreChange is the payload of ScoreIncreased.
type ScoreChange struct{ Delta, Score int }

func (Moved) Name() Name        { return EntityMoved }
func (Bumped) Name() Name       { return EntityBumped }
func (Attacking) Name() Name    { return EntityAttacking }
func (Attacked) Name() Name     { return EntityAttacked }
func (TookDamage) Name() Name   { return EntityTookDamage }
func (Died) Name() Name         { return EntityDied }
func (PickedUpItem) Name() Name { return EntityPickedUpItem }
func (DroppedItem) Name() Name  { return EntityDroppedItem }
func (DoorOpened) Name() Name   { return DoorOpen }
func (TookAction) Name() Name   { return PlayerTookAction }
func (ScoreChange) Name() Name  { return ScoreIncreased }

func (Moved) payload()        {}
func (Bumped) payload()       {}
func (Attacking) payload()    {}
func (Attacked) payload()     {}
func (TookDamage) payload()   {}
func (Died) payload()         {}
func (PickedUpItem) payload() {}
func (DroppedItem) payload()  {}
func (DoorOpened) payload()   {}
func (TookAction) payload()   {}
func (ScoreChange) payload()  {}

// Event is one fired (or queued) event.
type Event struct {
	Name    Name
	Payload Payload
	Source  *ecs.Entity // may be nil
}

// New builds an event whose name is taken from the payload.
func New(p Payload, source *ecs.Entity) Event {
	return Event{Name: p.Name(), Payload: p, Source: source}
}

func (e Event) String() string {
	if e.Source == nil {
		return e.Name.String()
	}
	return fmt.Sprintf("%s(%v)", e.Name, e.Source)
}
