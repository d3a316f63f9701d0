package ecs

import (
	"errors"
	"fmt"
	"slices"

	"dungeoncore/internal/gamemap"
)

var (
	// ErrOccupied is returned when the target cell already holds an entity
	// (or, for items, an item).
	ErrOccupied = errors.New("ecs: cell occupied")
	// ErrNotInWorld is returned for entities the world does not hold.
	ErrNotInWorld = errors.New("ecs: entity not in world")
	// ErrAlreadyPlaced is returned when adding something that already has a
	// position.
	ErrAlreadyPlaced = errors.New("ecs: already placed")
)

// World is the registry of live entities and floor items. It owns both
// position indices: every method that changes a position updates the
// entity or item field and the index together.
type World struct {
	nextID   EntityID
	entities []*Entity
	items    []*Item
	entityAt map[gamemap.Point]*Entity
	itemAt   map[gamemap.Point]*Item
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		nextID:   1,
		entityAt: make(map[gamemap.Point]*Entity),
		itemAt:   make(map[gamemap.Point]*Item),
	}
}

// CreateEntity mints a new entity ID.
func (w *World) CreateEntity() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// Add places e at p and appends it to the entity list. An entity without an
// ID is given one; one carried over from another world keeps its ID and
// new IDs are minted past it.
func (w *World) Add(e *Entity, p gamemap.Point) error {
	if e.placed {
		return fmt.Errorf("add %v: %w", e, ErrAlreadyPlaced)
	}
	if other := w.entityAt[p]; other != nil {
		return fmt.Errorf("add %v at %v held by %v: %w", e, p, other, ErrOccupied)
	}
	if e.ID == NilEntity {
		e.ID = w.CreateEntity()
	} else if e.ID >= w.nextID {
		w.nextID = e.ID + 1
	}
	e.pos, e.placed = p, true
	w.entityAt[p] = e
	w.entities = append(w.entities, e)
	return nil
}

// Move relocates e to p.
func (w *World) Move(e *Entity, p gamemap.Point) error {
	if !w.Contains(e) {
		return fmt.Errorf("move %v: %w", e, ErrNotInWorld)
	}
	if other := w.entityAt[p]; other != nil && other != e {
		return fmt.Errorf("move %v to %v held by %v: %w", e, p, other, ErrOccupied)
	}
	delete(w.entityAt, e.pos)
	e.pos = p
	w.entityAt[p] = e
	return nil
}

// Remove detaches e from the list and the index and clears its position.
func (w *World) Remove(e *Entity) error {
	i := slices.Index(w.entities, e)
	if i < 0 {
		return fmt.Errorf("remove %v: %w", e, ErrNotInWorld)
	}
	w.entities = slices.Delete(w.entities, i, i+1)
	if w.entityAt[e.pos] == e {
		delete(w.entityAt, e.pos)
	}
	e.placed = false
	return nil
}

// Contains reports whether e is a live entity of this world.
func (w *World) Contains(e *Entity) bool {
	return e != nil && e.placed && w.entityAt[e.pos] == e
}

// EntityAt returns the entity standing at p, or nil.
func (w *World) EntityAt(p gamemap.Point) *Entity { return w.entityAt[p] }

// Entities returns the live entities in the order they were added.
func (w *World) Entities() []*Entity { return slices.Clone(w.entities) }

// PlaceItem puts an unplaced item on the floor at p. A cell holds at most
// one item.
func (w *World) PlaceItem(it *Item, p gamemap.Point) error {
	if it.placed {
		return fmt.Errorf("place %v: %w", it, ErrAlreadyPlaced)
	}
	if other := w.itemAt[p]; other != nil {
		return fmt.Errorf("place %v at %v held by %v: %w", it, p, other, ErrOccupied)
	}
	it.pos, it.placed = p, true
	w.itemAt[p] = it
	w.items = append(w.items, it)
	return nil
}

// TakeItem lifts the item at p off the floor and returns it, or nil when
// the cell is empty.
func (w *World) TakeItem(p gamemap.Point) *Item {
	it := w.itemAt[p]
	if it == nil {
		return nil
	}
	delete(w.itemAt, p)
	if i := slices.Index(w.items, it); i >= 0 {
		w.items = slices.Delete(w.items, i, i+1)
	}
	it.placed = false
	return it
}

// ItemAt returns the item lying at p, or nil.
func (w *World) ItemAt(p gamemap.Point) *Item { return w.itemAt[p] }

// Items returns the floor items in the order they were placed.
func (w *World) Items() []*Item { return slices.Clone(w.items) }

// CheckConsistency verifies that both indices agree with the position
// fields of every live entity and floor item.
func (w *World) CheckConsistency() error {
	if len(w.entityAt) != len(w.entities) {
		return fmt.Errorf("entity index has %d entries for %d entities", len(w.entityAt), len(w.entities))
	}
	for _, e := range w.entities {
		if !e.placed {
			return fmt.Errorf("live entity %v has no position", e)
		}
		if w.entityAt[e.pos] != e {
			return fmt.Errorf("entity index at %v does not map back to %v", e.pos, e)
		}
	}
	if len(w.itemAt) != len(w.items) {
		return fmt.Errorf("item index has %d entries for %d items", len(w.itemAt), len(w.items))
	}
	for _, it := range w.items {
		if !it.placed || w.itemAt[it.pos] != it {
			return fmt.Errorf("item index at %v does not map back to %v", it.pos, it)
		}
	}
	return nil
}
