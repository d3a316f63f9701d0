// Package behavior holds the strategies that drive entities: the
// command-driven player controller and the monster AIs. Behaviors react to
// events and act through the Level interface.
package behavior

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/gamemap"
)

// ErrUnknownBehavior is returned for ids with no registered constructor.
var ErrUnknownBehavior = errors.New("behavior: unknown behavior id")

// Behavior is a strategy attached to one entity.
type Behavior interface {
	ID() string
	// Events lists the event names the behavior must be subscribed to.
	Events() []event.Name
	// HandleEvent reacts to an event. It reports whether the event was
	// handled, which stops a Composite from offering it further.
	HandleEvent(ev event.Event) bool
}

// Level is the part of a level that behaviors read and act on.
type Level interface {
	Player() *ecs.Entity
	Rand() *rand.Rand

	EntityAt(p gamemap.Point) *ecs.Entity
	ItemAt(p gamemap.Point) *ecs.Item
	Passable(p gamemap.Point) bool
	LineOfSight(a, b *ecs.Entity) bool
	PassableNeighbors(e *ecs.Entity, allowPlayer bool) []gamemap.Point

	Move(e *ecs.Entity, p gamemap.Point) bool
	Attack(a, b *ecs.Entity) bool
	Pickup(e *ecs.Entity) bool
	CloseDoor(e *ecs.Entity, p gamemap.Point) bool
	Throw(e *ecs.Entity, it *ecs.Item, target gamemap.Point, speed int) bool
	Wait(e *ecs.Entity) bool
	DropNear(it *ecs.Item, p gamemap.Point) bool
	RemoveEntity(e *ecs.Entity)
}

// Constructor builds a behavior for entity e on level lv.
type Constructor func(e *ecs.Entity, lv Level) Behavior

type registration struct {
	ctor  Constructor
	modes []ecs.Mode // modes the behavior runs in inside a Composite; nil: all
}

var (
	awake    = []ecs.Mode{ecs.ModeDefault, ecs.ModeChasing, ecs.ModeFleeing}
	hunting  = []ecs.Mode{ecs.ModeDefault, ecs.ModeChasing}
	roaming  = []ecs.Mode{ecs.ModeDefault, ecs.ModeSleeping, ecs.ModeChasing}
	sleeping = []ecs.Mode{ecs.ModeSleeping}
	fleeing  = []ecs.Mode{ecs.ModeFleeing}
	idle     = []ecs.Mode{ecs.ModeDefault}
)

var registry = map[string]registration{
	PlayerID:          {ctor: newController},
	"sleep":           {ctor: newSleep, modes: sleeping},
	"stunnable":       {ctor: newStunnable},
	"random_walk":     {ctor: newRandomWalk, modes: roaming},
	"beeline_visible": {ctor: newBeeline, modes: hunting},
	"flee_visible":    {ctor: newFlee, modes: fleeing},
	"range_5_visible": {ctor: newKeepRange(5), modes: awake},
	"range_7_visible": {ctor: newKeepRange(7), modes: awake},
	"pick_up_rocks":   {ctor: newPickUpRocks, modes: idle},
	"throw_rock_slow": {ctor: newThrowRock, modes: hunting},
	"path_until_hit":  {ctor: newPathUntilHit},
}

// Known reports whether id names a registered behavior.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// IDs returns every registered behavior id, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// New builds the behavior registered as id.
func New(id string, e *ecs.Entity, lv Level) (Behavior, error) {
	reg, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownBehavior)
	}
	return reg.ctor(e, lv), nil
}

// Build turns a monster type's behavior ids into the single behavior that
// is subscribed for the entity: the behavior itself for one id, a Composite
// for several. No ids yields nil.
func Build(ids []string, e *ecs.Entity, lv Level) (Behavior, error) {
	switch len(ids) {
	case 0:
		return nil, nil
	case 1:
		return New(ids[0], e, lv)
	}
	subs := make([]gated, 0, len(ids))
	for _, id := range ids {
		b, err := New(id, e, lv)
		if err != nil {
			return nil, err
		}
		subs = append(subs, gated{Behavior: b, modes: registry[id].modes})
	}
	return newComposite(e, lv, subs, DefaultTransitions), nil
}

// InitialMode is the mode an entity with the given behavior ids starts in.
func InitialMode(ids []string) ecs.Mode {
	if slices.Contains(ids, "sleep") {
		return ecs.ModeSleeping
	}
	return ecs.ModeDefault
}

// base carries what every strategy needs.
type base struct {
	id     string
	entity *ecs.Entity
	level  Level
	events []event.Name
}

func (b *base) ID() string               { return b.id }
func (b *base) Events() []event.Name     { return b.events }
func (b *base) self(ev event.Event) bool { return ev.Source == b.entity }

// playerPos returns the player's position while the player is on the level.
func (b *base) playerPos() (gamemap.Point, bool) {
	p := b.level.Player()
	if p == nil {
		return gamemap.Point{}, false
	}
	return p.Position()
}

// enter switches the entity to mode m. Fleeing is left only through a
// Composite transition.
func (b *base) enter(m ecs.Mode) {
	if b.entity.Mode != ecs.ModeFleeing {
		b.entity.Mode = m
	}
}

func (b *base) canSeePlayer() bool {
	p := b.level.Player()
	return p != nil && b.level.LineOfSight(b.entity, p)
}
