// Package factory turns catalog records into fresh entities and items.
package factory

import (
	"fmt"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
)

// NewEntity creates an unplaced entity of type mt with full hit points and
// its starting inventory. The ID is minted from w.
func NewEntity(w *ecs.World, cat *catalog.Catalog, mt *catalog.MonsterType) (*ecs.Entity, error) {
	e := &ecs.Entity{
		ID:            w.CreateEntity(),
		Type:          mt,
		Stats:         ecs.Stats{HPMax: mt.HPMax, Strength: mt.Strength},
		HP:            mt.HPMax,
		BehaviorState: make(map[string]any),
	}
	for _, id := range mt.Items {
		it, err := cat.ItemType(id)
		if err != nil {
			return nil, fmt.Errorf("starting inventory of %s: %w", mt.ID, err)
		}
		e.Inventory = append(e.Inventory, NewItem(it))
	}
	return e, nil
}

// NewItem creates an unplaced item of the given type.
func NewItem(it *catalog.ItemType) *ecs.Item {
	return &ecs.Item{Type: it}
}
