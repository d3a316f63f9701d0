package gamemap

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"dungeoncore/internal/catalog"
)

var testRoomType = &catalog.RoomType{ID: "TEST", Shape: catalog.ShapeBoxFull, Difficulty: catalog.AnyDifficulty}

func TestInBounds(t *testing.T) {
	m := New(10, 8)
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{9, 7}, true},
		{Point{-1, 0}, false},
		{Point{10, 0}, false},
		{Point{0, 8}, false},
	}
	for _, c := range cases {
		if got := m.InBounds(c.p); got != c.want {
			t.Errorf("InBounds(%v)=%v, want %v", c.p, got, c.want)
		}
	}
}

func TestCellOutOfBounds(t *testing.T) {
	m := New(5, 5)
	for _, p := range []Point{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if _, err := m.Cell(p); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Cell(%v) err=%v, want ErrOutOfBounds", p, err)
		}
	}
	c, err := m.Cell(Point{4, 4})
	if err != nil {
		t.Fatalf("Cell(4,4): %v", err)
	}
	if c.Terrain != TerrainEmpty || c.RoomID != 0 {
		t.Errorf("new cell = %+v, want empty with no room", *c)
	}
}

func TestCellMutatesInPlace(t *testing.T) {
	m := New(5, 5)
	c, _ := m.Cell(Point{2, 3})
	c.Terrain = TerrainFloor
	if !m.Passable(Point{2, 3}) {
		t.Fatal("terrain change through Cell should be visible to Passable")
	}
	if m.Passable(Point{-1, 3}) {
		t.Error("out-of-bounds should not be passable")
	}
}

func TestTerrainPassable(t *testing.T) {
	cases := []struct {
		terrain Terrain
		want    bool
	}{
		{TerrainEmpty, false},
		{TerrainFloor, true},
		{TerrainWall, false},
		{TerrainDoorClosed, false},
		{TerrainDoorOpen, true},
		{TerrainCorridor, true},
	}
	for _, tc := range cases {
		t.Run(tc.terrain.String(), func(t *testing.T) {
			if got := tc.terrain.Passable(); got != tc.want {
				t.Errorf("Passable() = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestDoorTransitions(t *testing.T) {
	c := Cell{Terrain: TerrainDoorClosed}
	if err := c.CloseDoor(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("closing a closed door: err=%v", err)
	}
	if err := c.OpenDoor(); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if c.Terrain != TerrainDoorOpen {
		t.Fatalf("terrain = %v, want door_open", c.Terrain)
	}
	if err := c.OpenDoor(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("opening an open door: err=%v", err)
	}
	if err := c.CloseDoor(); err != nil || c.Terrain != TerrainDoorClosed {
		t.Fatalf("CloseDoor: err=%v terrain=%v", err, c.Terrain)
	}
	floor := Cell{Terrain: TerrainFloor}
	if err := floor.OpenDoor(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("opening floor: err=%v", err)
	}
}

func TestAssignRoomOnce(t *testing.T) {
	m := New(10, 10)
	a := m.AddRoom(testRoomType, Rect{0, 0, 4, 4}, 0)
	b := m.AddRoom(testRoomType, Rect{3, 3, 8, 8}, 1)

	if err := m.AssignRoom(Point{3, 3}, a.ID); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	err := m.AssignRoom(Point{3, 3}, b.ID)
	if !errors.Is(err, ErrRoomAssigned) || !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second assignment err=%v, want ErrRoomAssigned", err)
	}
	if err := m.AssignRoom(Point{20, 3}, a.ID); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out-of-bounds assignment err=%v", err)
	}
	if err := m.AssignRoom(Point{1, 1}, 99); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("unknown room err=%v", err)
	}

	got, err := m.Room(Point{3, 3})
	if err != nil || got != a {
		t.Fatalf("Room(3,3) = %v, %v; want room %d", got, err, a.ID)
	}
	if _, err := m.Room(Point{7, 7}); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("Room on untagged cell err=%v", err)
	}
	if cells := m.RoomCells(a.ID); len(cells) != 1 || cells[0] != (Point{3, 3}) {
		t.Fatalf("RoomCells = %v", cells)
	}
	if m.CanAssign(Rect{2, 2, 4, 4}) {
		t.Error("CanAssign should report the overlap at (3,3)")
	}
	if !m.CanAssign(Rect{5, 5, 8, 8}) {
		t.Error("CanAssign should accept an unclaimed rect")
	}
	if m.CanAssign(Rect{8, 8, 10, 10}) {
		t.Error("CanAssign should reject a rect leaving the map")
	}
}

func TestConnectIsSymmetric(t *testing.T) {
	m := New(10, 10)
	a := m.AddRoom(testRoomType, Rect{0, 0, 3, 3}, 0)
	b := m.AddRoom(testRoomType, Rect{5, 5, 8, 8}, 0)
	c := m.AddRoom(testRoomType, Rect{5, 0, 8, 3}, 0)
	m.Connect(a.ID, b.ID)
	m.Connect(c.ID, a.ID)
	m.Connect(a.ID, a.ID)

	if !slices.Equal(a.NeighborIDs(), []int{b.ID, c.ID}) {
		t.Errorf("a neighbors = %v", a.NeighborIDs())
	}
	if !b.IsNeighbor(a.ID) || !c.IsNeighbor(a.ID) {
		t.Error("edges must be recorded on both rooms")
	}
	if b.IsNeighbor(c.ID) {
		t.Error("b and c were never connected")
	}
}

func TestOccupied(t *testing.T) {
	m := New(5, 5)
	m.Occupy(Point{1, 1})
	m.Occupy(Point{1, 1})
	if !m.Occupied(Point{1, 1}) || m.Occupied(Point{2, 2}) {
		t.Fatal("occupied set mismatch")
	}
	if m.OccupiedCount() != 1 {
		t.Fatalf("OccupiedCount = %d, want 1", m.OccupiedCount())
	}
}

func TestFindFeature(t *testing.T) {
	m := New(5, 5)
	if _, ok := m.Find(FeatureStairsDown); ok {
		t.Fatal("no stairs yet")
	}
	c, _ := m.Cell(Point{3, 2})
	c.Feature = FeatureStairsDown
	if p, ok := m.Find(FeatureStairsDown); !ok || p != (Point{3, 2}) {
		t.Fatalf("Find = %v, %v", p, ok)
	}
}

func TestRender(t *testing.T) {
	m := New(3, 2)
	for p := range m.Bounds().Points() {
		c, _ := m.Cell(p)
		c.Terrain = TerrainFloor
	}
	c, _ := m.Cell(Point{0, 1})
	c.Feature = FeatureStairsUp

	var sb strings.Builder
	err := m.Render(&sb, func(p Point) (string, bool) {
		if p == (Point{2, 0}) {
			return "🐀", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := ". . 🐀\n< . . \n"
	if sb.String() != want {
		t.Errorf("Render =\n%q\nwant\n%q", sb.String(), want)
	}
}
