package behavior

import (
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/gamemap"
)

const (
	// WakeRadius is how close the player must come to wake a sleeper.
	WakeRadius = 8
	// HearingRadius is how far away an opening door wakes a sleeper.
	HearingRadius = 10
	// RoamRadius bounds random walking; beyond it a wanderer dozes.
	RoamRadius = 40
	// StunTurns is how many player actions a stunned entity sits out.
	StunTurns = 2
	// ThrowCooldown is the number of turns between rock throws.
	ThrowCooldown = 6
)

// Behavior state keys.
const (
	stunCooldownKey  = "stun_cooldown"
	stunResumeKey    = "stun_resume_mode"
	throwCooldownKey = "throw_rock_cooldown"
)

var onPlayerAction = []event.Name{event.PlayerTookAction}

// sleep keeps a monster inert until the player comes near or a door opens
// within earshot.
type sleep struct{ base }

func newSleep(e *ecs.Entity, lv Level) Behavior {
	return &sleep{base{id: "sleep", entity: e, level: lv,
		events: []event.Name{event.PlayerTookAction, event.DoorOpen}}}
}

func (b *sleep) HandleEvent(ev event.Event) bool {
	if b.entity.Mode != ecs.ModeSleeping {
		return false
	}
	pos, ok := b.entity.Position()
	if !ok {
		return false
	}
	switch p := ev.Payload.(type) {
	case event.TookAction:
		if pos.Manhattan(p.At) <= WakeRadius && b.canSeePlayer() {
			b.enter(ecs.ModeDefault)
		}
	case event.DoorOpened:
		if pos.Manhattan(p.At) <= HearingRadius {
			b.enter(ecs.ModeDefault)
		}
	}
	// Waking up takes the turn too.
	return true
}

// stunnable freezes a monster for StunTurns after every hit.
type stunnable struct{ base }

func newStunnable(e *ecs.Entity, lv Level) Behavior {
	return &stunnable{base{id: "stunnable", entity: e, level: lv,
		events: []event.Name{event.EntityAttacked, event.PlayerTookAction}}}
}

func (b *stunnable) HandleEvent(ev event.Event) bool {
	state := b.entity.BehaviorState
	switch ev.Name {
	case event.EntityAttacked:
		if !b.self(ev) {
			return false
		}
		if b.entity.Mode != ecs.ModeStunned {
			state[stunResumeKey] = b.entity.Mode
		}
		state[stunCooldownKey] = StunTurns
		b.entity.Mode = ecs.ModeStunned
		return false
	case event.PlayerTookAction:
		cooldown, _ := state[stunCooldownKey].(int)
		if cooldown <= 0 {
			return false
		}
		cooldown--
		state[stunCooldownKey] = cooldown
		if cooldown == 0 {
			resume, _ := state[stunResumeKey].(ecs.Mode)
			b.entity.Mode = resume
			delete(state, stunResumeKey)
		}
		return true
	}
	return false
}

// randomWalk steps to a random free neighbor, dozing while the player is
// far away.
type randomWalk struct{ base }

func newRandomWalk(e *ecs.Entity, lv Level) Behavior {
	return &randomWalk{base{id: "random_walk", entity: e, level: lv, events: onPlayerAction}}
}

func (b *randomWalk) HandleEvent(event.Event) bool {
	pos, ok := b.entity.Position()
	target, seen := b.playerPos()
	if !ok || !seen {
		return false
	}
	if pos.Manhattan(target) > RoamRadius {
		b.enter(ecs.ModeSleeping)
		return true
	}
	b.enter(ecs.ModeDefault)
	options := b.level.PassableNeighbors(b.entity, false)
	if len(options) == 0 {
		return false
	}
	b.level.Move(b.entity, options[b.level.Rand().Intn(len(options))])
	return true
}

// beeline closes in on a visible player one step at a time, attacking once
// adjacent.
type beeline struct{ base }

func newBeeline(e *ecs.Entity, lv Level) Behavior {
	return &beeline{base{id: "beeline_visible", entity: e, level: lv, events: onPlayerAction}}
}

func (b *beeline) HandleEvent(event.Event) bool {
	target, ok := b.playerPos()
	if !ok || !b.canSeePlayer() {
		return false
	}
	options := b.level.PassableNeighbors(b.entity, true)
	if len(options) == 0 {
		return false
	}
	b.enter(ecs.ModeChasing)
	b.level.Move(b.entity, target.Closest(options))
	return true
}

// flee backs away from a visible player.
type flee struct{ base }

func newFlee(e *ecs.Entity, lv Level) Behavior {
	return &flee{base{id: "flee_visible", entity: e, level: lv, events: onPlayerAction}}
}

func (b *flee) HandleEvent(event.Event) bool {
	target, ok := b.playerPos()
	if !ok || !b.canSeePlayer() {
		return false
	}
	options := b.level.PassableNeighbors(b.entity, false)
	if len(options) == 0 {
		return false
	}
	b.level.Move(b.entity, target.Farthest(options))
	return true
}

// keepRange holds a visible player at a fixed Manhattan distance. At the
// preferred range it declines the event so a ranged attack can follow.
// While fleeing it only backs away.
type keepRange struct {
	base
	best int
}

func newKeepRange(best int) Constructor {
	return func(e *ecs.Entity, lv Level) Behavior {
		id := "range_5_visible"
		if best == 7 {
			id = "range_7_visible"
		}
		return &keepRange{base: base{id: id, entity: e, level: lv, events: onPlayerAction}, best: best}
	}
}

func (b *keepRange) HandleEvent(event.Event) bool {
	target, ok := b.playerPos()
	pos, placed := b.entity.Position()
	if !ok || !placed || !b.canSeePlayer() {
		return false
	}
	options := b.level.PassableNeighbors(b.entity, false)
	if len(options) == 0 {
		return false
	}
	// Manhattan distance overstates diagonal moves, so allow one tile of
	// slack on the near side.
	switch dist := pos.Manhattan(target); {
	case b.entity.Mode == ecs.ModeFleeing || dist < b.best-1:
		b.level.Move(b.entity, target.Farthest(options))
	case dist > b.best:
		b.enter(ecs.ModeChasing)
		b.level.Move(b.entity, target.Closest(options))
	default:
		return false
	}
	return true
}

// pickUpRocks gathers rocks lying underfoot or one step away.
type pickUpRocks struct{ base }

func newPickUpRocks(e *ecs.Entity, lv Level) Behavior {
	return &pickUpRocks{base{id: "pick_up_rocks", entity: e, level: lv, events: onPlayerAction}}
}

func (b *pickUpRocks) HandleEvent(event.Event) bool {
	pos, ok := b.entity.Position()
	if !ok {
		return false
	}
	if isRock(b.level.ItemAt(pos)) {
		return b.level.Pickup(b.entity)
	}
	for _, p := range b.level.PassableNeighbors(b.entity, false) {
		if isRock(b.level.ItemAt(p)) {
			b.enter(ecs.ModeDefault)
			return b.level.Move(b.entity, p)
		}
	}
	return false
}

func isRock(it *ecs.Item) bool { return it != nil && it.Type.ID == catalog.RockID }

// throwRock lobs a slow rock at a visible player every ThrowCooldown turns.
type throwRock struct {
	base
	speed int
}

func newThrowRock(e *ecs.Entity, lv Level) Behavior {
	return &throwRock{base: base{id: "throw_rock_slow", entity: e, level: lv, events: onPlayerAction}, speed: 1}
}

func (b *throwRock) HandleEvent(event.Event) bool {
	target, ok := b.playerPos()
	if !ok || !b.canSeePlayer() {
		return false
	}
	state := b.entity.BehaviorState
	cooldown, seen := state[throwCooldownKey].(int)
	if !seen {
		cooldown = 1
	}
	cooldown--
	state[throwCooldownKey] = cooldown
	if cooldown > 0 {
		return false
	}
	rock := b.entity.FindItem(catalog.RockID)
	if rock == nil {
		return false
	}
	if !b.level.Throw(b.entity, rock, target, b.speed) {
		return false
	}
	state[throwCooldownKey] = ThrowCooldown
	return true
}

// Flight is the behavior state of a thrown item in the air: the cells still
// ahead of it and how many it covers per turn. Wait holds it in place for
// its first turn.
type Flight struct {
	Path  []gamemap.Point
	Speed int
	Wait  bool
}

// FlightKey is the behavior state key holding a projectile's *Flight.
const FlightKey = "flight"

// pathUntilHit flies a projectile along its Flight path. It hits the first
// entity in the way and lands when the path runs out or meets a wall,
// leaving the carried item behind.
type pathUntilHit struct{ base }

func newPathUntilHit(e *ecs.Entity, lv Level) Behavior {
	return &pathUntilHit{base{id: "path_until_hit", entity: e, level: lv, events: onPlayerAction}}
}

func (b *pathUntilHit) HandleEvent(event.Event) bool {
	f, ok := b.entity.BehaviorState[FlightKey].(*Flight)
	if !ok {
		return false
	}
	for range max(f.Speed, 1) {
		if !b.step(f) {
			break
		}
	}
	return true
}

// step advances one cell and reports whether the projectile is still flying.
func (b *pathUntilHit) step(f *Flight) bool {
	pos, ok := b.entity.Position()
	if !ok {
		return false
	}
	if f.Wait {
		f.Wait = false
		return true
	}
	if len(f.Path) == 0 {
		b.land(pos)
		return false
	}
	next := f.Path[0]
	f.Path = f.Path[1:]
	if target := b.level.EntityAt(next); target != nil {
		b.level.Attack(b.entity, target)
		b.land(next)
		return false
	}
	if b.level.Passable(next) && b.level.Move(b.entity, next) {
		return true
	}
	b.land(pos)
	return false
}

func (b *pathUntilHit) land(at gamemap.Point) {
	b.level.RemoveEntity(b.entity)
	for _, it := range b.entity.Inventory {
		b.level.DropNear(it, at)
	}
	b.entity.Inventory = nil
}
