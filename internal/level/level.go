// Package level holds the live state of one dungeon level: the tile map,
// the entities and items on it, the event queue and the rules every action
// goes through.
package level

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/factory"
	"dungeoncore/internal/gamemap"
	"dungeoncore/internal/generate"
)

// DefaultFOVRadius is how far the player sees.
const DefaultFOVRadius = 10

var (
	// ErrNoPlayer is returned when a level is built without a player to seed.
	ErrNoPlayer = errors.New("level: no player")
	// ErrNoCatalog is returned when Config.Catalog is nil.
	ErrNoCatalog = errors.New("level: nil catalog")
)

// Config carries what a level needs beyond its generated layout.
type Config struct {
	Catalog   *catalog.Catalog
	Rand      *rand.Rand
	Logger    *slog.Logger
	FOVRadius int
	// Player is carried in from another level. When nil a fresh player is
	// created from the catalog.
	Player *ecs.Entity
}

// Level is one dungeon level in play.
type Level struct {
	tiles      *gamemap.TileMap
	world      *ecs.World
	dispatcher *event.Dispatcher
	cat        *catalog.Catalog
	rng        *rand.Rand
	log        *slog.Logger

	player     *ecs.Entity
	controller *behavior.Controller
	stairsUp   gamemap.Point
	stairsDown gamemap.Point

	subs      map[*ecs.Entity][]event.SubscriptionID
	queue     []event.Event
	consuming bool
	score     int

	fovRadius  int
	visible    mapset.Set[gamemap.Point]
	remembered mapset.Set[gamemap.Point]
}

// New seeds a level from a generated layout: the player at the up stairs,
// then the items, then the monsters. Every behavior id the placed monster
// types name must be known.
func New(gen *generate.Result, cfg Config) (_ *Level, err error) {
	if cfg.Catalog == nil {
		return nil, ErrNoCatalog
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	radius := cfg.FOVRadius
	if radius <= 0 {
		radius = DefaultFOVRadius
	}
	l := &Level{
		tiles:      gen.Map,
		world:      ecs.NewWorld(),
		dispatcher: event.NewDispatcher(event.AllNames()...),
		cat:        cfg.Catalog,
		rng:        rng,
		log:        logger,
		stairsUp:   gen.StairsUp,
		stairsDown: gen.StairsDown,
		subs:       make(map[*ecs.Entity][]event.SubscriptionID),
		fovRadius:  radius,
		visible:    mapset.New[gamemap.Point](),
		remembered: mapset.New[gamemap.Point](),
	}

	player := cfg.Player
	if player == nil {
		mt := cfg.Catalog.Player()
		if mt == nil {
			return nil, ErrNoPlayer
		}
		if player, err = factory.NewEntity(l.world, cfg.Catalog, mt); err != nil {
			return nil, err
		}
	}
	if err := l.AddEntity(player, gen.StairsUp); err != nil {
		return nil, fmt.Errorf("seed player: %w", err)
	}
	l.player = player
	// A carried player must stay free to go back to its old level.
	defer func() {
		if err != nil {
			l.RemoveEntity(player)
		}
	}()

	for _, spawn := range gen.Items {
		if err := l.world.PlaceItem(factory.NewItem(spawn.Type), spawn.Pos); err != nil {
			return nil, fmt.Errorf("seed item %s: %w", spawn.Type.ID, err)
		}
	}
	for _, spawn := range gen.Monsters {
		if _, err := l.CreateEntity(spawn.Type, spawn.Pos); err != nil {
			return nil, err
		}
	}
	l.refreshFOV()
	logger.Debug("level seeded",
		"monsters", len(gen.Monsters), "items", len(gen.Items),
		"stairs_up", gen.StairsUp, "stairs_down", gen.StairsDown)
	return l, nil
}

// CreateEntity builds an entity of type mt and places it at p.
func (l *Level) CreateEntity(mt *catalog.MonsterType, p gamemap.Point) (*ecs.Entity, error) {
	e, err := factory.NewEntity(l.world, l.cat, mt)
	if err != nil {
		return nil, err
	}
	e.Mode = behavior.InitialMode(mt.Behaviors)
	if err := l.AddEntity(e, p); err != nil {
		return nil, err
	}
	return e, nil
}

// AddEntity places e at p, builds its behaviors from its type and
// subscribes them. Behaviors left over from another level are replaced.
func (l *Level) AddEntity(e *ecs.Entity, p gamemap.Point) error {
	b, err := behavior.Build(e.Type.Behaviors, e, l)
	if err != nil {
		return fmt.Errorf("entity %v: %w", e, err)
	}
	if err := l.world.Add(e, p); err != nil {
		return err
	}
	e.Behaviors = nil
	if b == nil {
		return nil
	}
	e.Behaviors = []ecs.Behavior{b}
	if c, ok := b.(*behavior.Controller); ok {
		l.controller = c
	}
	for _, name := range b.Events() {
		id, err := l.dispatcher.Subscribe(name, nil, func(ev event.Event) { b.HandleEvent(ev) })
		if err != nil {
			return err
		}
		l.subs[e] = append(l.subs[e], id)
	}
	return nil
}

// RemoveEntity takes e off the level and unsubscribes its behaviors. Events
// already queued are no longer delivered to them.
func (l *Level) RemoveEntity(e *ecs.Entity) {
	for _, id := range l.subs[e] {
		l.dispatcher.Unsubscribe(id)
	}
	delete(l.subs, e)
	if err := l.world.Remove(e); err != nil {
		l.log.Debug("remove entity", "entity", e, "err", err)
	}
}

// Subscribe registers fn for events named name, optionally only those
// sourced by source.
func (l *Level) Subscribe(name event.Name, source *ecs.Entity, fn event.Handler) (event.SubscriptionID, error) {
	return l.dispatcher.Subscribe(name, source, fn)
}

// Unsubscribe cancels a subscription made with Subscribe.
func (l *Level) Unsubscribe(id event.SubscriptionID) bool {
	return l.dispatcher.Unsubscribe(id)
}

// Fire queues an event for the next ConsumeEvents.
func (l *Level) Fire(p event.Payload, source *ecs.Entity) {
	ev := event.New(p, source)
	l.log.Debug("event", "event", ev)
	l.queue = append(l.queue, ev)
}

// Pending is the number of queued events.
func (l *Level) Pending() int { return len(l.queue) }

// ConsumeEvents dispatches queued events in order until the queue is empty,
// including events fired by handlers along the way. Calling it from inside
// a handler panics.
func (l *Level) ConsumeEvents() {
	if l.consuming {
		panic("level: ConsumeEvents called while consuming events")
	}
	l.consuming = true
	defer func() { l.consuming = false }()
	for len(l.queue) > 0 {
		ev := l.queue[0]
		l.queue = l.queue[1:]
		if err := l.dispatcher.Fire(ev); err != nil {
			panic(err)
		}
	}
	l.refreshFOV()
}

func (l *Level) refreshFOV() {
	pos, ok := l.player.Position()
	if !ok {
		l.visible = mapset.New[gamemap.Point]()
		return
	}
	l.visible = l.tiles.VisiblePoints(pos, l.fovRadius)
	l.visible.Each(func(p gamemap.Point) { l.remembered.Put(p) })
}
