package level

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/factory"
	"dungeoncore/internal/gamemap"
	"dungeoncore/internal/generate"
)

func testCatalog(t *testing.T, extra ...catalog.MonsterType) *catalog.Catalog {
	t.Helper()
	monsters := append([]catalog.MonsterType{
		{ID: catalog.PlayerID, Char: "@", Difficulty: catalog.AnyDifficulty,
			Behaviors: []string{behavior.PlayerID}, HPMax: 10, Strength: 3, OpensDoors: true},
		{ID: "ROCK_IN_FLIGHT", Char: "*", Difficulty: catalog.AnyDifficulty,
			Behaviors: []string{"path_until_hit"}, HPMax: 1},
		{ID: "BRUTE", Char: "B", Difficulty: 0, HPMax: 6, Strength: 5},
		{ID: "PACKRAT", Char: "p", Difficulty: 0, HPMax: 3, Strength: 1, Items: []string{catalog.RockID}},
		{ID: "RAT", Char: "r", Difficulty: 0, HPMax: 3, Strength: 1, Behaviors: []string{"beeline_visible"}},
	}, extra...)
	items := []catalog.ItemType{
		{ID: catalog.GoldID, Char: "$", Score: 1},
		{ID: catalog.RockID, Char: "*"},
	}
	rooms := []catalog.RoomType{{ID: "ROOM", Difficulty: catalog.AnyDifficulty, Chance: 1}}
	cat, err := catalog.New(monsters, items, rooms)
	require.NoError(t, err)
	return cat
}

// arena is a walled w x h room with the up stairs at (1,1).
func arena(w, h int) *generate.Result {
	m := gamemap.New(w, h)
	for p := range m.Bounds().Points() {
		c, _ := m.Cell(p)
		if m.Bounds().OnEdge(p) {
			c.Terrain = gamemap.TerrainWall
		} else {
			c.Terrain = gamemap.TerrainFloor
		}
	}
	return &generate.Result{Map: m, StairsUp: gamemap.Point{X: 1, Y: 1}, StairsDown: gamemap.Point{X: w - 2, Y: h - 2}}
}

func newLevel(t *testing.T, gen *generate.Result, extra ...catalog.MonsterType) *Level {
	t.Helper()
	l, err := New(gen, Config{Catalog: testCatalog(t, extra...), Rand: rand.New(rand.NewSource(7))})
	require.NoError(t, err)
	return l
}

func spawn(t *testing.T, l *Level, id string, p gamemap.Point) *ecs.Entity {
	t.Helper()
	mt, err := l.cat.MonsterType(id)
	require.NoError(t, err)
	e, err := l.CreateEntity(mt, p)
	require.NoError(t, err)
	return e
}

func giveItem(t *testing.T, l *Level, e *ecs.Entity, id string) *ecs.Item {
	t.Helper()
	it, err := l.cat.ItemType(id)
	require.NoError(t, err)
	item := factory.NewItem(it)
	e.Inventory = append(e.Inventory, item)
	return item
}

func setTerrain(t *testing.T, l *Level, p gamemap.Point, terrain gamemap.Terrain) {
	t.Helper()
	c, err := l.tiles.Cell(p)
	require.NoError(t, err)
	c.Terrain = terrain
}

// record subscribes to every event and collects the names in order.
func record(t *testing.T, l *Level) *[]event.Event {
	t.Helper()
	var seen []event.Event
	for _, n := range event.AllNames() {
		_, err := l.Subscribe(n, nil, func(ev event.Event) { seen = append(seen, ev) })
		require.NoError(t, err)
	}
	return &seen
}

func names(evs []event.Event) []event.Name {
	out := make([]event.Name, len(evs))
	for i, ev := range evs {
		out[i] = ev.Name
	}
	return out
}

func pt(x, y int) gamemap.Point { return gamemap.Point{X: x, Y: y} }

func TestNewSeedsPlayerAtStairs(t *testing.T) {
	gen := arena(10, 8)
	cat := testCatalog(t)
	rat, err := cat.MonsterType("RAT")
	require.NoError(t, err)
	gold, err := cat.ItemType(catalog.GoldID)
	require.NoError(t, err)
	gen.Monsters = []generate.MonsterSpawn{{Pos: pt(5, 5), Type: rat}}
	gen.Items = []generate.ItemSpawn{{Pos: pt(3, 3), Type: gold}}

	l, err := New(gen, Config{Catalog: cat})
	require.NoError(t, err)

	pos, ok := l.Player().Position()
	require.True(t, ok)
	assert.Equal(t, gen.StairsUp, pos)
	assert.Len(t, l.Entities(), 2)
	assert.Equal(t, l.Player(), l.Entities()[0])
	assert.Equal(t, "RAT", l.EntityAt(pt(5, 5)).Type.ID)
	assert.Equal(t, catalog.GoldID, l.ItemAt(pt(3, 3)).Type.ID)
	assert.NotNil(t, l.Controller())
	assert.NoError(t, l.CheckConsistency())
}

func TestNewRejectsUnknownBehavior(t *testing.T) {
	gen := arena(10, 8)
	cat := testCatalog(t, catalog.MonsterType{ID: "DANCER", Char: "d", HPMax: 1, Behaviors: []string{"dance"}})
	dancer, err := cat.MonsterType("DANCER")
	require.NoError(t, err)
	gen.Monsters = []generate.MonsterSpawn{{Pos: pt(4, 4), Type: dancer}}

	_, err = New(gen, Config{Catalog: cat})
	assert.ErrorIs(t, err, behavior.ErrUnknownBehavior)
}

func TestNewFailureReleasesCarriedPlayer(t *testing.T) {
	first := newLevel(t, arena(10, 8))
	player := first.Player()
	first.RemoveEntity(player)

	gen := arena(10, 8)
	cat := testCatalog(t, catalog.MonsterType{ID: "DANCER", Char: "d", HPMax: 1, Behaviors: []string{"dance"}})
	dancer, err := cat.MonsterType("DANCER")
	require.NoError(t, err)
	gen.Monsters = []generate.MonsterSpawn{{Pos: pt(4, 4), Type: dancer}}

	_, err = New(gen, Config{Catalog: cat, Player: player})
	require.ErrorIs(t, err, behavior.ErrUnknownBehavior)

	_, placed := player.Position()
	assert.False(t, placed)
	require.NoError(t, first.AddEntity(player, pt(2, 2)))
	assert.NoError(t, first.CheckConsistency())
}

func TestMonsterAttacksPlayer(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	brute := spawn(t, l, "BRUTE", pt(2, 1))
	seen := record(t, l)

	assert.True(t, l.Move(brute, pt(1, 1)))
	l.ConsumeEvents()

	assert.Equal(t, 5, l.Player().HP)
	assert.Equal(t, []event.Name{event.EntityAttacking, event.EntityAttacked, event.EntityTookDamage}, names(*seen))
	pos, _ := brute.Position()
	assert.Equal(t, pt(2, 1), pos, "attacking does not move")
}

func TestPlayerKillsMonster(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	rat := spawn(t, l, "PACKRAT", pt(2, 1))
	seen := record(t, l)

	assert.True(t, l.Move(l.Player(), pt(2, 1)))
	l.ConsumeEvents()

	assert.False(t, rat.Alive())
	assert.Nil(t, l.EntityAt(pt(2, 1)))
	assert.NotContains(t, l.Entities(), rat)
	assert.Equal(t, catalog.RockID, l.ItemAt(pt(2, 1)).Type.ID, "inventory drops where it died")
	assert.Equal(t, []event.Name{
		event.EntityAttacking, event.EntityAttacked, event.EntityTookDamage,
		event.EntityDied, event.EntityDroppedItem, event.PlayerTookAction,
	}, names(*seen))
	assert.NoError(t, l.CheckConsistency())
}

func TestDeadMonsterStopsActing(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	before := l.dispatcher.Subscribers(event.PlayerTookAction)
	rat := spawn(t, l, "RAT", pt(2, 1))
	require.Equal(t, before+1, l.dispatcher.Subscribers(event.PlayerTookAction))

	rat.HP = 1
	l.Move(l.Player(), pt(2, 1))
	l.ConsumeEvents()

	assert.Equal(t, before, l.dispatcher.Subscribers(event.PlayerTookAction))
	assert.Equal(t, 10, l.Player().HP)
}

func TestMonsterBumpsMonster(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	a := spawn(t, l, "BRUTE", pt(4, 4))
	b := spawn(t, l, "BRUTE", pt(5, 4))
	seen := record(t, l)

	assert.False(t, l.Move(a, pt(5, 4)))
	l.ConsumeEvents()

	require.Len(t, *seen, 1)
	bump := (*seen)[0]
	assert.Equal(t, event.EntityBumped, bump.Name)
	assert.Same(t, a, bump.Source)
	assert.Same(t, b, bump.Payload.(event.Bumped).Blocker)
	assert.Equal(t, 6, b.HP)
}

func TestPlayerMoves(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	seen := record(t, l)

	assert.True(t, l.Move(l.Player(), pt(2, 2)))
	l.ConsumeEvents()

	assert.Equal(t, []event.Name{event.EntityMoved, event.PlayerTookAction}, names(*seen))
	assert.Equal(t, event.Moved{From: pt(1, 1), To: pt(2, 2)}, (*seen)[0].Payload)
	assert.Equal(t, l.Player(), l.EntityAt(pt(2, 2)))
	assert.Nil(t, l.EntityAt(pt(1, 1)))
}

func TestMoveInPlaceFails(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	seen := record(t, l)

	assert.False(t, l.Move(l.Player(), pt(1, 1)))
	assert.False(t, l.Controller().Perform(behavior.Move(gamemap.Point{})))
	l.ConsumeEvents()

	assert.Empty(t, *seen)
	assert.Equal(t, l.Player(), l.EntityAt(pt(1, 1)))
}

func TestBumpWall(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	seen := record(t, l)

	assert.False(t, l.Move(l.Player(), pt(0, 1)))
	assert.False(t, l.Move(l.Player(), pt(-1, 1)))
	l.ConsumeEvents()

	assert.Equal(t, []event.Name{event.EntityBumped, event.EntityBumped}, names(*seen))
	assert.Equal(t, gamemap.TerrainWall, (*seen)[0].Payload.(event.Bumped).Terrain)
}

func TestDoors(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	door := pt(2, 1)
	setTerrain(t, l, door, gamemap.TerrainDoorClosed)
	seen := record(t, l)

	assert.True(t, l.Move(l.Player(), door))
	l.ConsumeEvents()
	cell, _ := l.tiles.Cell(door)
	assert.Equal(t, gamemap.TerrainDoorOpen, cell.Terrain)
	pos, _ := l.Player().Position()
	assert.Equal(t, pt(1, 1), pos, "opening a door does not step through it")
	assert.Equal(t, []event.Name{event.DoorOpen, event.PlayerTookAction}, names(*seen))

	*seen = nil
	assert.True(t, l.CloseDoor(l.Player(), door))
	assert.False(t, l.CloseDoor(l.Player(), door), "already closed")
	assert.False(t, l.CloseDoor(l.Player(), pt(1, 2)), "floor is not a door")
	l.ConsumeEvents()
	assert.Equal(t, gamemap.TerrainDoorClosed, cell.Terrain)
	assert.Equal(t, []event.Name{event.PlayerTookAction}, names(*seen))

	brute := spawn(t, l, "BRUTE", pt(3, 1))
	assert.False(t, l.Move(brute, door), "brutes cannot open doors")
	assert.Equal(t, gamemap.TerrainDoorClosed, cell.Terrain)
}

func TestCloseDoorNeedsEmptyDoorway(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	door := pt(3, 3)
	setTerrain(t, l, door, gamemap.TerrainDoorOpen)
	spawn(t, l, "BRUTE", door)
	assert.False(t, l.CloseDoor(l.Player(), door))
}

func TestLineOfSight(t *testing.T) {
	l := newLevel(t, arena(30, 8))
	player := l.Player()

	near := spawn(t, l, "BRUTE", pt(6, 1))
	assert.True(t, l.LineOfSight(player, near))
	assert.True(t, l.LineOfSight(near, player))

	far := spawn(t, l, "BRUTE", pt(22, 1))
	assert.False(t, l.LineOfSight(player, far), "distance 21 is out of sight")

	setTerrain(t, l, pt(4, 1), gamemap.TerrainWall)
	assert.False(t, l.LineOfSight(player, near))
}

func TestPickup(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	gold, _ := l.cat.ItemType(catalog.GoldID)
	rock, _ := l.cat.ItemType(catalog.RockID)
	require.NoError(t, l.world.PlaceItem(factory.NewItem(gold), pt(1, 1)))
	require.NoError(t, l.world.PlaceItem(factory.NewItem(rock), pt(2, 1)))
	require.NoError(t, l.world.PlaceItem(factory.NewItem(gold), pt(5, 5)))
	seen := record(t, l)

	assert.True(t, l.Pickup(l.Player()))
	assert.Equal(t, 1, l.Score())
	assert.Nil(t, l.ItemAt(pt(1, 1)))
	assert.Empty(t, l.Player().Inventory, "gold is banked, not carried")
	assert.False(t, l.Pickup(l.Player()), "nothing left underfoot")

	l.Move(l.Player(), pt(2, 1))
	assert.True(t, l.Pickup(l.Player()))
	require.Len(t, l.Player().Inventory, 1)
	assert.Equal(t, catalog.RockID, l.Player().Inventory[0].Type.ID)

	brute := spawn(t, l, "BRUTE", pt(5, 5))
	assert.False(t, l.Pickup(brute), "monsters leave gold")
	assert.NotNil(t, l.ItemAt(pt(5, 5)))

	l.ConsumeEvents()
	assert.Equal(t, []event.Name{
		event.ScoreIncreased, event.PlayerTookAction,
		event.EntityMoved, event.PlayerTookAction,
		event.EntityPickedUpItem, event.PlayerTookAction,
	}, names(*seen))
	assert.Equal(t, event.ScoreChange{Delta: 1, Score: 1}, (*seen)[0].Payload)
}

func TestDrop(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	rock := giveItem(t, l, l.Player(), catalog.RockID)
	other := giveItem(t, l, l.Player(), catalog.RockID)

	assert.True(t, l.Drop(l.Player(), rock, pt(1, 1)))
	assert.Equal(t, rock, l.ItemAt(pt(1, 1)))
	assert.False(t, l.Drop(l.Player(), other, pt(1, 1)), "one item per cell")
	assert.False(t, l.Drop(l.Player(), rock, pt(2, 1)), "no longer carried")
	assert.Equal(t, []*ecs.Item{other}, l.Player().Inventory)
}

func TestDropNearFindsFreeCell(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	rock, _ := l.cat.ItemType(catalog.RockID)
	first, second := factory.NewItem(rock), factory.NewItem(rock)

	assert.True(t, l.DropNear(first, pt(4, 4)))
	assert.True(t, l.DropNear(second, pt(4, 4)))
	pos, ok := second.Position()
	require.True(t, ok)
	assert.NotEqual(t, pt(4, 4), pos)
	assert.LessOrEqual(t, pos.Manhattan(pt(4, 4)), 2)
}

func TestConsumeEventsProcessesHandlerEvents(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	var got []event.Name
	_, err := l.Subscribe(event.EntityMoved, l.Player(), func(ev event.Event) {
		got = append(got, ev.Name)
		l.Fire(event.ScoreChange{Delta: 0}, nil)
	})
	require.NoError(t, err)
	_, err = l.Subscribe(event.ScoreIncreased, nil, func(ev event.Event) { got = append(got, ev.Name) })
	require.NoError(t, err)

	l.Move(l.Player(), pt(2, 1))
	assert.Equal(t, 2, l.Pending())
	l.ConsumeEvents()

	assert.Zero(t, l.Pending())
	assert.Equal(t, []event.Name{event.EntityMoved, event.ScoreIncreased}, got)
}

func TestConsumeEventsReentryPanics(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	_, err := l.Subscribe(event.PlayerTookAction, nil, func(event.Event) { l.ConsumeEvents() })
	require.NoError(t, err)

	l.Wait(l.Player())
	assert.Panics(t, l.ConsumeEvents)
	assert.NotPanics(t, l.ConsumeEvents, "the guard resets after a panic")
}

func TestSubscribeSourceFilter(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	a := spawn(t, l, "BRUTE", pt(4, 4))
	spawn(t, l, "BRUTE", pt(6, 6))
	var moved []*ecs.Entity
	_, err := l.Subscribe(event.EntityMoved, a, func(ev event.Event) { moved = append(moved, ev.Source) })
	require.NoError(t, err)

	for _, e := range l.Entities()[1:] {
		p, _ := e.Position()
		l.Move(e, p.Add(gamemap.North))
	}
	l.ConsumeEvents()
	assert.Equal(t, []*ecs.Entity{a}, moved)
}

func TestThrowRockHitsMonster(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	brute := spawn(t, l, "BRUTE", pt(5, 1))
	giveItem(t, l, l.Player(), catalog.RockID)

	require.True(t, l.Controller().Perform(behavior.Command{Kind: behavior.CmdThrow, Target: pt(5, 1)}))
	assert.Empty(t, l.Player().Inventory)
	l.ConsumeEvents()

	// The first turn is spent leaving the hand, then two cells.
	rock := l.EntityAt(pt(4, 1))
	require.NotNil(t, rock)
	assert.Equal(t, "ROCK_IN_FLIGHT", rock.Type.ID)

	l.Wait(l.Player())
	l.ConsumeEvents()

	assert.Equal(t, 3, brute.HP)
	assert.Nil(t, l.EntityAt(pt(4, 1)))
	assert.NotContains(t, l.Entities(), rock)
	it := l.ItemAt(pt(5, 1))
	require.NotNil(t, it)
	assert.Equal(t, catalog.RockID, it.Type.ID)
	assert.NoError(t, l.CheckConsistency())
}

func TestThrowRockLandsAtWall(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	giveItem(t, l, l.Player(), catalog.RockID)
	setTerrain(t, l, pt(4, 1), gamemap.TerrainWall)

	require.True(t, l.Controller().Perform(behavior.Command{Kind: behavior.CmdThrow, Target: pt(8, 1)}))
	l.ConsumeEvents()
	l.Wait(l.Player())
	l.ConsumeEvents()

	assert.Len(t, l.Entities(), 1)
	assert.NotNil(t, l.ItemAt(pt(3, 1)))
}

func TestThrowNeedsRock(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	assert.False(t, l.Controller().Perform(behavior.Command{Kind: behavior.CmdThrow, Target: pt(5, 1)}))
}

func TestFieldOfView(t *testing.T) {
	gen := arena(30, 10)
	for y := 0; y < 10; y++ {
		c, _ := gen.Map.Cell(pt(10, y))
		c.Terrain = gamemap.TerrainWall
	}
	l := newLevel(t, gen)

	assert.True(t, l.CanPlayerSee(pt(1, 1)))
	assert.True(t, l.CanPlayerSee(pt(5, 5)))
	assert.False(t, l.CanPlayerSee(pt(15, 5)), "behind the wall")

	for range 5 {
		p, _ := l.Player().Position()
		l.Move(l.Player(), p.Add(gamemap.SouthEast))
		l.ConsumeEvents()
	}
	assert.True(t, l.CanPlayerRemember(pt(1, 1)))
	assert.False(t, l.CanPlayerRemember(pt(15, 5)))
}

func TestCanMove(t *testing.T) {
	l := newLevel(t, arena(10, 8))
	brute := spawn(t, l, "BRUTE", pt(2, 2))

	assert.False(t, l.CanMove(brute, pt(1, 1), false))
	assert.True(t, l.CanMove(brute, pt(1, 1), true))
	assert.False(t, l.CanMove(brute, pt(0, 0), true))
	assert.Len(t, l.PassableNeighbors(brute, false), 7)
	assert.Len(t, l.PassableNeighbors(brute, true), 8)
}
