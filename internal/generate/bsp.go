package generate

import (
	"fmt"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/gamemap"
)

// bspLeaf is a node in the BSP tree.
type bspLeaf struct {
	X, Y, W, H  int
	left, right *bspLeaf
	difficulty  catalog.Difficulty
	room        *gamemap.Room
}

func (l *bspLeaf) rect() gamemap.Rect {
	return gamemap.Rect{X1: l.X, Y1: l.Y, X2: l.X + l.W - 1, Y2: l.Y + l.H - 1}
}

func (l *bspLeaf) isLeaf() bool { return l.left == nil && l.right == nil }

// divide splits the leaf at offset at, stacking the children vertically
// when horizontal is set.
func (l *bspLeaf) divide(horizontal bool, at int) {
	if horizontal {
		l.left = &bspLeaf{X: l.X, Y: l.Y, W: l.W, H: at}
		l.right = &bspLeaf{X: l.X, Y: l.Y + at, W: l.W, H: l.H - at}
	} else {
		l.left = &bspLeaf{X: l.X, Y: l.Y, W: at, H: l.H}
		l.right = &bspLeaf{X: l.X + at, Y: l.Y, W: l.W - at, H: l.H}
	}
	l.left.difficulty = l.difficulty
	l.right.difficulty = l.difficulty
}

// split divides the leaf into two children, returning false when leaf is too small.
func (l *bspLeaf) split(cfg *Config) bool {
	if !l.isLeaf() {
		return false
	}
	// Horizontal when taller, vertical when wider.
	splitH := cfg.Rand.Intn(2) == 0
	if l.W > l.H && float64(l.W)/float64(l.H) >= 1.25 {
		splitH = false
	} else if l.H > l.W && float64(l.H)/float64(l.W) >= 1.25 {
		splitH = true
	}

	maxSize := l.H
	if !splitH {
		maxSize = l.W
	}
	if maxSize <= cfg.MinLeafSize*2 {
		return false
	}

	lo := cfg.MinLeafSize
	hi := maxSize - cfg.MinLeafSize
	if lo >= hi {
		return false
	}
	l.divide(splitH, lo+cfg.Rand.Intn(hi-lo+1))
	return true
}

// grow keeps splitting leaves below l until none are oversized and the coin
// flips stop asking for more.
func (l *bspLeaf) grow(cfg *Config) {
	leaves := []*bspLeaf{l}
	splitAny := true
	for splitAny {
		splitAny = false
		var next []*bspLeaf
		for _, leaf := range leaves {
			if !leaf.isLeaf() {
				next = append(next, leaf.left, leaf.right)
				continue
			}
			if leaf.W > cfg.MaxLeafSize || leaf.H > cfg.MaxLeafSize ||
				cfg.Rand.Float64() > 0.25 {
				if leaf.split(cfg) {
					next = append(next, leaf.left, leaf.right)
					splitAny = true
					continue
				}
			}
			next = append(next, leaf)
		}
		leaves = next
	}
}

// leaves returns the terminal nodes under l, left to right.
func (l *bspLeaf) leaves() []*bspLeaf {
	if l.isLeaf() {
		return []*bspLeaf{l}
	}
	return append(l.left.leaves(), l.right.leaves()...)
}

func (l *bspLeaf) leftmost() *bspLeaf {
	for !l.isLeaf() {
		l = l.left
	}
	return l
}

// buildTree splits the map into four difficulty quadrants (top-left,
// bottom-left, bottom-right, top-right) and grows a BSP tree in each. The
// quadrants are returned in difficulty order.
func buildTree(cfg *Config) (*bspLeaf, []*bspLeaf) {
	root := &bspLeaf{X: 0, Y: 0, W: cfg.Width, H: cfg.Height}
	root.divide(false, cfg.Width/2)
	root.left.divide(true, cfg.Height/2)
	root.right.divide(true, cfg.Height/2)

	quadrants := []*bspLeaf{root.left.left, root.left.right, root.right.right, root.right.left}
	for i, q := range quadrants {
		q.difficulty = catalog.Difficulty(i)
		q.grow(cfg)
	}
	return root, quadrants
}

// placeRooms picks a room type for every leaf, carves it and tags its cells.
func placeRooms(m *gamemap.TileMap, root *bspLeaf, cfg *Config) error {
	noise := newCaveNoise(cfg.Rand.Int63())
	for _, leaf := range root.leaves() {
		room, err := placeRoom(m, leaf, cfg)
		if err != nil {
			return err
		}
		if err := engraveRoom(m, room); err != nil {
			return err
		}
		if room.Shape() == catalog.ShapeCave {
			carveCave(m, room, noise)
		}
		leaf.room = room
	}
	return nil
}

func placeRoom(m *gamemap.TileMap, leaf *bspLeaf, cfg *Config) (*gamemap.Room, error) {
	types := cfg.Catalog.Rooms()
	for try := 0; try < cfg.MaxPlacementTries; try++ {
		rt, ok := weightedChoice(cfg.Rand, types, func(rt *catalog.RoomType) int {
			if !rt.Difficulty.Matches(leaf.difficulty) {
				return 0
			}
			return rt.Chance
		})
		if !ok {
			return nil, fmt.Errorf("no room type for difficulty %d", leaf.difficulty)
		}
		r := leaf.rect()
		if rt.Shape == catalog.ShapeBoxRandom {
			r = r.RandomRect(cfg.Rand, cfg.MinRoomSize)
		}
		if m.CanAssign(r) {
			return m.AddRoom(rt, r, leaf.difficulty), nil
		}
	}
	return nil, fmt.Errorf("leaf %v: %w", leaf.rect(), errOverlap)
}

// engraveRoom draws walls on the room border and floor inside, then tags
// every cell with the room id.
func engraveRoom(m *gamemap.TileMap, room *gamemap.Room) error {
	for p := range room.Rect.Points() {
		c, err := m.Cell(p)
		if err != nil {
			return err
		}
		if room.Rect.OnEdge(p) {
			c.Terrain = gamemap.TerrainWall
		} else {
			c.Terrain = gamemap.TerrainFloor
		}
		if err := m.AssignRoom(p, room.ID); err != nil {
			return fmt.Errorf("room %d: %w", room.ID, errOverlap)
		}
	}
	return nil
}

// floorCells returns the room's interior cells that are plain floor.
func floorCells(m *gamemap.TileMap, room *gamemap.Room) []gamemap.Point {
	var out []gamemap.Point
	for p := range room.Rect.Inset(1).Points() {
		if c, err := m.Cell(p); err == nil && c.Terrain == gamemap.TerrainFloor {
			out = append(out, p)
		}
	}
	return out
}

// roomNearest returns the room under one of the leaves whose center is
// closest to target.
func roomNearest(leaves []*bspLeaf, target gamemap.Point) *gamemap.Room {
	best := leaves[0].room
	for _, l := range leaves[1:] {
		if l.room.Rect.Center().Manhattan(target) < best.Rect.Center().Manhattan(target) {
			best = l.room
		}
	}
	return best
}

// placeStairs puts a staircase on a free floor cell of the quadrant room
// nearest target.
func placeStairs(m *gamemap.TileMap, quadrant *bspLeaf, target gamemap.Point, f gamemap.Feature, cfg *Config) (gamemap.Point, error) {
	room := roomNearest(quadrant.leaves(), target)
	p, ok := freeCell(m, floorCells(m, room), cfg)
	if !ok {
		return p, fmt.Errorf("%s in room %d: %w", f, room.ID, errNoFloor)
	}
	c, _ := m.Cell(p)
	c.Feature = f
	m.Occupy(p)
	return p, nil
}
