package ecs

import (
	"fmt"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/gamemap"
)

// EntityID uniquely identifies an entity in the world.
type EntityID uint64

// NilEntity is the zero value: no valid entity has this ID.
const NilEntity EntityID = 0

// Mode is the coarse AI state of an entity.
type Mode uint8

const (
	ModeDefault Mode = iota
	ModeSleeping
	ModeChasing
	ModeFleeing
	ModeStunned
)

var modeNames = [...]string{"default", "sleeping", "chasing", "fleeing", "stunned"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Stats are derived from the monster type when the entity is created.
type Stats struct {
	HPMax    int
	Strength int
}

// Behavior is a strategy attached to an entity. The behavior package
// defines the full event-handling contract.
type Behavior interface {
	ID() string
}

// Entity is an actor: the player or a monster.
type Entity struct {
	ID            EntityID
	Type          *catalog.MonsterType
	Stats         Stats
	HP            int
	Inventory     []*Item
	Behaviors     []Behavior
	BehaviorState map[string]any
	Mode          Mode

	pos    gamemap.Point
	placed bool
}

// Position returns where the entity stands; ok is false once it has been
// removed or before it is placed.
func (e *Entity) Position() (p gamemap.Point, ok bool) {
	return e.pos, e.placed
}

// IsPlayer reports whether the entity is the player.
func (e *Entity) IsPlayer() bool {
	return e.Type != nil && e.Type.ID == catalog.PlayerID
}

// Alive reports whether the entity still has hit points.
func (e *Entity) Alive() bool { return e.HP > 0 }

// FindItem returns the first carried item of the given type id.
func (e *Entity) FindItem(typeID string) *Item {
	for _, it := range e.Inventory {
		if it.Type.ID == typeID {
			return it
		}
	}
	return nil
}

// RemoveItem takes it out of the inventory, keeping the order of the rest.
func (e *Entity) RemoveItem(it *Item) bool {
	for i, held := range e.Inventory {
		if held == it {
			e.Inventory = append(e.Inventory[:i], e.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Entity) String() string {
	if e.Type == nil {
		return fmt.Sprintf("Entity(%d)", e.ID)
	}
	return fmt.Sprintf("%s(%d)", e.Type.ID, e.ID)
}

// Item is a thing lying on the floor or carried in an inventory.
type Item struct {
	Type *catalog.ItemType

	pos    gamemap.Point
	placed bool
}

// Position returns where the item lies; ok is false while it is carried.
func (it *Item) Position() (p gamemap.Point, ok bool) {
	return it.pos, it.placed
}

func (it *Item) String() string { return it.Type.ID }
