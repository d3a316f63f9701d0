package level

import (
	"math/rand"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/gamemap"
)

// SightRange caps line of sight, in Manhattan distance.
const SightRange = 20

// Map returns the level's tiles.
func (l *Level) Map() *gamemap.TileMap { return l.tiles }

// Rand returns the level's random source.
func (l *Level) Rand() *rand.Rand { return l.rng }

// Player returns the player entity. It stays set after the player dies;
// check Alive or Position.
func (l *Level) Player() *ecs.Entity { return l.player }

// Controller returns the player's command controller.
func (l *Level) Controller() *behavior.Controller { return l.controller }

// StairsUp and StairsDown return the stair positions.
func (l *Level) StairsUp() gamemap.Point   { return l.stairsUp }
func (l *Level) StairsDown() gamemap.Point { return l.stairsDown }

// Score is the total banked on this level.
func (l *Level) Score() int { return l.score }

// Entities returns the entities on the level in the order they were added.
func (l *Level) Entities() []*ecs.Entity { return l.world.Entities() }

// Items returns the items lying on the floor.
func (l *Level) Items() []*ecs.Item { return l.world.Items() }

// EntityAt returns the entity standing at p, if any.
func (l *Level) EntityAt(p gamemap.Point) *ecs.Entity { return l.world.EntityAt(p) }

// ItemAt returns the item lying at p, if any.
func (l *Level) ItemAt(p gamemap.Point) *ecs.Item { return l.world.ItemAt(p) }

// Passable reports whether terrain at p can be walked on.
func (l *Level) Passable(p gamemap.Point) bool { return l.tiles.Passable(p) }

// CheckConsistency verifies the entity and item indexes agree.
func (l *Level) CheckConsistency() error { return l.world.CheckConsistency() }

// CanSee reports whether a clear line runs from a to b: within SightRange
// and over passable terrain at every cell strictly between them.
func (l *Level) CanSee(a, b gamemap.Point) bool {
	if a.Manhattan(b) > SightRange {
		return false
	}
	for p := range gamemap.Line(a, b) {
		if p != a && p != b && !l.tiles.Passable(p) {
			return false
		}
	}
	return true
}

// LineOfSight reports whether a and b, both on the level, can see each
// other.
func (l *Level) LineOfSight(a, b *ecs.Entity) bool {
	pa, ok := a.Position()
	if !ok {
		return false
	}
	pb, ok := b.Position()
	if !ok {
		return false
	}
	return l.CanSee(pa, pb)
}

// CanMove reports whether e could step into p: the terrain is passable (or
// a door e can open) and p is empty, or holds the player when allowPlayer
// is set.
func (l *Level) CanMove(e *ecs.Entity, p gamemap.Point, allowPlayer bool) bool {
	cell, err := l.tiles.Cell(p)
	if err != nil {
		return false
	}
	if !cell.Terrain.Passable() && !(cell.Terrain == gamemap.TerrainDoorClosed && l.CanOpenDoor(e)) {
		return false
	}
	other := l.world.EntityAt(p)
	return other == nil || other == e || (allowPlayer && other.IsPlayer())
}

// PassableNeighbors returns the cells among e's eight neighbors that e
// could move into.
func (l *Level) PassableNeighbors(e *ecs.Entity, allowPlayer bool) []gamemap.Point {
	pos, ok := e.Position()
	if !ok {
		return nil
	}
	var out []gamemap.Point
	for _, d := range gamemap.Directions {
		if p := pos.Add(d); l.CanMove(e, p, allowPlayer) {
			out = append(out, p)
		}
	}
	return out
}

// CanPlayerSee reports whether p is in the player's field of view.
func (l *Level) CanPlayerSee(p gamemap.Point) bool { return l.visible.Has(p) }

// CanPlayerRemember reports whether the player has ever seen p.
func (l *Level) CanPlayerRemember(p gamemap.Point) bool { return l.remembered.Has(p) }
