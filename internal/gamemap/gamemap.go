// Package gamemap is the tile grid a level is played on: cells, rooms and
// their adjacency, plus the geometry used to trace lines across it.
package gamemap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/zyedidia/generic/mapset"

	"dungeoncore/internal/catalog"
)

// Default level size.
const (
	DefaultWidth  = 160
	DefaultHeight = 80
)

var (
	// ErrOutOfBounds is returned for points outside the grid.
	ErrOutOfBounds = errors.New("gamemap: point out of bounds")
	// ErrInvalidTransition marks a state change that is not allowed from the
	// current state: reopening an open door, tagging a cell twice.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrRoomAssigned is returned when a cell already belongs to a room.
	ErrRoomAssigned = fmt.Errorf("gamemap: cell already belongs to a room: %w", ErrInvalidTransition)
	// ErrNoRoom is returned by Room for cells outside every room.
	ErrNoRoom = errors.New("gamemap: cell has no room")
)

// Room is a region of the map created by the generator.
type Room struct {
	ID         int
	Type       *catalog.RoomType
	Rect       Rect
	Difficulty catalog.Difficulty
	neighbors  mapset.Set[int]
}

// Shape returns the shape the room was carved with.
func (r *Room) Shape() catalog.Shape { return r.Type.Shape }

// Color returns the room type's display color.
func (r *Room) Color() tcell.Color { return r.Type.Color }

// IsNeighbor reports whether a corridor joins r and the room with id.
func (r *Room) IsNeighbor(id int) bool { return r.neighbors.Has(id) }

// NeighborIDs returns the ids of adjacent rooms in ascending order.
func (r *Room) NeighborIDs() []int {
	ids := make([]int, 0, r.neighbors.Size())
	r.neighbors.Each(func(id int) {
		ids = append(ids, id)
	})
	slices.Sort(ids)
	return ids
}

// TileMap holds the cells and rooms of one level.
type TileMap struct {
	Width, Height int

	cells     []Cell
	rooms     []*Room
	roomByID  map[int]*Room
	roomCells map[int][]Point
	occupied  mapset.Set[Point]
}

// New creates an empty TileMap.
func New(width, height int) *TileMap {
	return &TileMap{
		Width:     width,
		Height:    height,
		cells:     make([]Cell, width*height),
		roomByID:  make(map[int]*Room),
		roomCells: make(map[int][]Point),
		occupied:  mapset.New[Point](),
	}
}

// InBounds reports whether p is within the map boundaries.
func (m *TileMap) InBounds(p Point) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// Bounds returns the rectangle covering the whole map.
func (m *TileMap) Bounds() Rect {
	return Rect{0, 0, m.Width - 1, m.Height - 1}
}

// Cell returns the cell at p for reading or in-place mutation.
func (m *TileMap) Cell(p Point) (*Cell, error) {
	if !m.InBounds(p) {
		return nil, fmt.Errorf("cell %v in %dx%d map: %w", p, m.Width, m.Height, ErrOutOfBounds)
	}
	return &m.cells[p.Y*m.Width+p.X], nil
}

// Passable is true when p is in bounds and its terrain can be walked on.
func (m *TileMap) Passable(p Point) bool {
	c, err := m.Cell(p)
	return err == nil && c.Terrain.Passable()
}

// Transparent is true when p is in bounds and does not block sight.
func (m *TileMap) Transparent(p Point) bool {
	c, err := m.Cell(p)
	return err == nil && c.Terrain.Transparent()
}

// AddRoom registers a new room and returns it. Cells are tagged separately
// with AssignRoom.
func (m *TileMap) AddRoom(rt *catalog.RoomType, r Rect, d catalog.Difficulty) *Room {
	room := &Room{
		ID:         len(m.rooms) + 1,
		Type:       rt,
		Rect:       r,
		Difficulty: d,
		neighbors:  mapset.New[int](),
	}
	m.rooms = append(m.rooms, room)
	m.roomByID[room.ID] = room
	return room
}

// CanAssign reports whether every cell of r is in bounds and unclaimed.
func (m *TileMap) CanAssign(r Rect) bool {
	for p := range r.Points() {
		c, err := m.Cell(p)
		if err != nil || c.RoomID != 0 {
			return false
		}
	}
	return true
}

// AssignRoom tags the cell at p with room id. A cell can be tagged once.
func (m *TileMap) AssignRoom(p Point, id int) error {
	c, err := m.Cell(p)
	if err != nil {
		return err
	}
	if c.RoomID != 0 {
		return fmt.Errorf("assign %v to room %d, held by room %d: %w", p, id, c.RoomID, ErrRoomAssigned)
	}
	if _, ok := m.roomByID[id]; !ok {
		return fmt.Errorf("assign %v: room %d: %w", p, id, ErrNoRoom)
	}
	c.RoomID = id
	m.roomCells[id] = append(m.roomCells[id], p)
	return nil
}

// Room returns the room the cell at p belongs to.
func (m *TileMap) Room(p Point) (*Room, error) {
	c, err := m.Cell(p)
	if err != nil {
		return nil, err
	}
	if c.RoomID == 0 {
		return nil, fmt.Errorf("room at %v: %w", p, ErrNoRoom)
	}
	return m.roomByID[c.RoomID], nil
}

// RoomByID returns the room with the given id, or nil.
func (m *TileMap) RoomByID(id int) *Room { return m.roomByID[id] }

// Rooms returns every room in creation order.
func (m *TileMap) Rooms() []*Room { return m.rooms }

// RoomCells returns the cells tagged with the room id, in tagging order.
func (m *TileMap) RoomCells(id int) []Point { return m.roomCells[id] }

// Connect records a corridor between two rooms on both of them.
func (m *TileMap) Connect(a, b int) {
	if a == b {
		return
	}
	ra, rb := m.roomByID[a], m.roomByID[b]
	if ra == nil || rb == nil {
		return
	}
	ra.neighbors.Put(b)
	rb.neighbors.Put(a)
}

// Occupy reserves p so nothing else is spawned there.
func (m *TileMap) Occupy(p Point) { m.occupied.Put(p) }

// Occupied reports whether p has been reserved.
func (m *TileMap) Occupied(p Point) bool { return m.occupied.Has(p) }

// OccupiedCount returns how many cells are reserved.
func (m *TileMap) OccupiedCount() int { return m.occupied.Size() }

// Find returns the first cell, in row-major order, carrying feature f.
func (m *TileMap) Find(f Feature) (Point, bool) {
	for i, c := range m.cells {
		if c.Feature == f {
			return Point{i % m.Width, i / m.Width}, true
		}
	}
	return Point{}, false
}
