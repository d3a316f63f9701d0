package level

import (
	"slices"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/gamemap"
)

// Move sends e into p and reports whether the turn was spent.
//
// An occupied cell is attacked when exactly one of e and the occupant is
// the player; otherwise e bumps. A passable cell is entered. A closed door
// is opened by an entity that can open doors. Anything else is a bump. A
// move onto e's own cell does nothing.
// Only the player's successful moves fire player_took_action.
func (l *Level) Move(e *ecs.Entity, p gamemap.Point) bool {
	from, ok := e.Position()
	if !ok || !l.world.Contains(e) || p == from {
		return false
	}
	cell, err := l.tiles.Cell(p)
	if err != nil {
		l.Fire(event.Bumped{At: p, Terrain: gamemap.TerrainEmpty}, e)
		return false
	}

	if target := l.world.EntityAt(p); target != nil && target != e {
		if e.IsPlayer() == target.IsPlayer() {
			l.Fire(event.Bumped{At: p, Terrain: cell.Terrain, Blocker: target}, e)
			return false
		}
		l.Attack(e, target)
		l.tookAction(e)
		return true
	}

	switch {
	case cell.Terrain.Passable():
		if err := l.world.Move(e, p); err != nil {
			return false
		}
		l.Fire(event.Moved{From: from, To: p}, e)
	case cell.Terrain == gamemap.TerrainDoorClosed && l.CanOpenDoor(e):
		if !l.OpenDoor(e, p) {
			return false
		}
	default:
		l.Fire(event.Bumped{At: p, Terrain: cell.Terrain}, e)
		return false
	}
	l.tookAction(e)
	return true
}

// CanOpenDoor reports whether e may open closed doors.
func (l *Level) CanOpenDoor(e *ecs.Entity) bool {
	return e.IsPlayer() || (e.Type != nil && e.Type.OpensDoors)
}

// OpenDoor opens the closed door at p. It does not spend the player's turn
// by itself; Move does.
func (l *Level) OpenDoor(e *ecs.Entity, p gamemap.Point) bool {
	if !l.CanOpenDoor(e) {
		return false
	}
	cell, err := l.tiles.Cell(p)
	if err != nil {
		return false
	}
	if err := cell.OpenDoor(); err != nil {
		return false
	}
	l.Fire(event.DoorOpened{At: p}, e)
	return true
}

// CloseDoor closes the open door at p. The doorway must be empty.
func (l *Level) CloseDoor(e *ecs.Entity, p gamemap.Point) bool {
	cell, err := l.tiles.Cell(p)
	if err != nil || cell.Terrain != gamemap.TerrainDoorOpen {
		return false
	}
	if l.world.EntityAt(p) != nil || l.world.ItemAt(p) != nil {
		return false
	}
	if err := cell.CloseDoor(); err != nil {
		return false
	}
	l.tookAction(e)
	return true
}

// Attack has a hit b for a's strength. The target dies at zero hit points:
// it is removed from the level and its inventory is dropped around where
// it stood.
func (l *Level) Attack(a, b *ecs.Entity) bool {
	if a == nil || b == nil || a == b || !l.world.Contains(b) {
		return false
	}
	l.Fire(event.Attacking{Target: b}, a)
	l.Fire(event.Attacked{Attacker: a}, b)
	damage := a.Stats.Strength
	b.HP -= damage
	l.Fire(event.TookDamage{Attacker: a, Amount: damage, HP: b.HP}, b)
	if b.HP > 0 {
		return true
	}

	at, _ := b.Position()
	l.Fire(event.Died{At: at, Killer: a}, b)
	l.RemoveEntity(b)
	inventory := b.Inventory
	b.Inventory = nil
	for _, it := range inventory {
		l.DropNear(it, at)
	}
	l.log.Debug("entity died", "entity", b, "killer", a, "at", at)
	return true
}

// Pickup moves the item under e into its inventory. Score items are
// banked by the player instead and left alone by monsters.
func (l *Level) Pickup(e *ecs.Entity) bool {
	pos, ok := e.Position()
	if !ok {
		return false
	}
	it := l.world.ItemAt(pos)
	if it == nil {
		return false
	}
	if it.Type.Score > 0 {
		if !e.IsPlayer() {
			return false
		}
		l.world.TakeItem(pos)
		l.score += it.Type.Score
		l.Fire(event.ScoreChange{Delta: it.Type.Score, Score: l.score}, e)
	} else {
		l.world.TakeItem(pos)
		e.Inventory = append(e.Inventory, it)
		l.Fire(event.PickedUpItem{Item: it, At: pos}, e)
	}
	l.tookAction(e)
	return true
}

// Drop puts it on the floor at p. When e is not nil the item must come from
// its inventory. A cell holds one item at most.
func (l *Level) Drop(e *ecs.Entity, it *ecs.Item, p gamemap.Point) bool {
	if !l.tiles.InBounds(p) || l.world.ItemAt(p) != nil {
		return false
	}
	if e != nil && !slices.Contains(e.Inventory, it) {
		return false
	}
	if err := l.world.PlaceItem(it, p); err != nil {
		return false
	}
	if e != nil {
		e.RemoveItem(it)
	}
	l.Fire(event.DroppedItem{Item: it, At: p}, e)
	return true
}

// DropNear drops an unowned item at p or, when that cell is taken, at the
// nearest free passable cell around it.
func (l *Level) DropNear(it *ecs.Item, p gamemap.Point) bool {
	if l.Drop(nil, it, p) {
		return true
	}
	for ring := 1; ring <= 3; ring++ {
		for dy := -ring; dy <= ring; dy++ {
			for dx := -ring; dx <= ring; dx++ {
				q := gamemap.Point{X: p.X + dx, Y: p.Y + dy}
				if max(abs(dx), abs(dy)) != ring || !l.tiles.Passable(q) {
					continue
				}
				if l.Drop(nil, it, q) {
					return true
				}
			}
		}
	}
	l.log.Debug("nowhere to drop item", "item", it, "near", p)
	return false
}

// Throw launches it from e toward target as a projectile entity covering
// speed cells per turn. The first cell of the path must be free.
func (l *Level) Throw(e *ecs.Entity, it *ecs.Item, target gamemap.Point, speed int) bool {
	from, ok := e.Position()
	if !ok || !slices.Contains(e.Inventory, it) {
		return false
	}
	var path []gamemap.Point
	for p := range gamemap.Line(from, target) {
		if p != from {
			path = append(path, p)
		}
	}
	if len(path) == 0 || !l.tiles.Passable(path[0]) || l.world.EntityAt(path[0]) != nil {
		return false
	}
	mt, err := l.cat.MonsterType(it.Type.ID + catalog.InFlightSuffix)
	if err != nil {
		l.log.Debug("item cannot be thrown", "item", it, "err", err)
		return false
	}
	projectile, err := l.CreateEntity(mt, path[0])
	if err != nil {
		return false
	}
	e.RemoveItem(it)
	projectile.Inventory = []*ecs.Item{it}
	projectile.Stats.Strength = e.Stats.Strength
	projectile.BehaviorState[behavior.FlightKey] = &behavior.Flight{Path: path[1:], Speed: speed, Wait: true}
	l.tookAction(e)
	return true
}

// Wait passes the turn.
func (l *Level) Wait(e *ecs.Entity) bool {
	if !l.world.Contains(e) {
		return false
	}
	l.tookAction(e)
	return true
}

// tookAction fires player_took_action when e is the player and still on
// the level.
func (l *Level) tookAction(e *ecs.Entity) {
	if !e.IsPlayer() {
		return
	}
	if pos, ok := e.Position(); ok {
		l.Fire(event.TookAction{At: pos}, e)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
