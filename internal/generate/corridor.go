package generate

import (
	"dungeoncore/internal/gamemap"
)

// engraveCorridors joins every pair of BSP siblings inside a quadrant, then
// chains the quadrants together: top-left to bottom-left to bottom-right to
// top-right.
func engraveCorridors(m *gamemap.TileMap, quadrants []*bspLeaf, cfg *Config) {
	for _, q := range quadrants {
		connectSiblings(m, q, cfg)
	}

	w, h := cfg.Width, cfg.Height
	targets := []gamemap.Point{
		{X: 0, Y: h / 2},
		{X: w / 2, Y: h},
		{X: w, Y: h / 2},
	}
	for i, target := range targets {
		from := roomNearest(quadrants[i].leaves(), target)
		to := roomNearest(quadrants[i+1].leaves(), from.Rect.Center())
		engraveCorridor(m, from, to, cfg)
	}
}

func connectSiblings(m *gamemap.TileMap, l *bspLeaf, cfg *Config) {
	if l.isLeaf() {
		return
	}
	connectSiblings(m, l.left, cfg)
	connectSiblings(m, l.right, cfg)
	engraveCorridor(m, l.left.leftmost().room, l.right.leftmost().room, cfg)
}

// corridorPlan is the terrain changes an L-shaped path would make.
type corridorPlan struct {
	doors     []gamemap.Point // room walls the path cuts through
	floors    []gamemap.Point // cave pillars inside a room
	corridors []gamemap.Point // empty cells between rooms
	rooms     []int           // every room the path passes
}

// engraveCorridor digs an L-shaped path between random floor cells of a and
// b. The path is re-rolled while it would cut too many doors; the last roll
// is used regardless. Every room the path crosses becomes a neighbor of a.
func engraveCorridor(m *gamemap.TileMap, a, b *gamemap.Room, cfg *Config) {
	if a == b {
		return
	}
	plan := planCorridor(m, a, b, cfg)
	for roll := 0; roll < cfg.MaxPathRolls && len(plan.doors) > cfg.MaxDoorsPerCorridor; roll++ {
		plan = planCorridor(m, a, b, cfg)
	}

	for _, p := range plan.doors {
		c, _ := m.Cell(p)
		c.Terrain = gamemap.TerrainDoorClosed
	}
	for _, p := range plan.floors {
		c, _ := m.Cell(p)
		c.Terrain = gamemap.TerrainFloor
	}
	for _, p := range plan.corridors {
		c, _ := m.Cell(p)
		c.Terrain = gamemap.TerrainCorridor
	}
	for _, id := range plan.rooms {
		m.Connect(a.ID, id)
	}
}

func planCorridor(m *gamemap.TileMap, a, b *gamemap.Room, cfg *Config) corridorPlan {
	start := pathEnd(m, a, cfg)
	end := pathEnd(m, b, cfg)

	var plan corridorPlan
	seen := make(map[int]bool)
	for p := range gamemap.LPath(start, end, cfg.Rand.Intn(2) == 0) {
		c, err := m.Cell(p)
		if err != nil {
			continue
		}
		if c.RoomID != 0 && !seen[c.RoomID] {
			seen[c.RoomID] = true
			plan.rooms = append(plan.rooms, c.RoomID)
		}
		switch c.Terrain {
		case gamemap.TerrainWall:
			if room := m.RoomByID(c.RoomID); room != nil && !room.Rect.OnEdge(p) {
				plan.floors = append(plan.floors, p)
			} else {
				plan.doors = append(plan.doors, p)
			}
		case gamemap.TerrainEmpty:
			plan.corridors = append(plan.corridors, p)
		}
	}
	return plan
}

// pathEnd picks a random floor cell of room, falling back to its center.
func pathEnd(m *gamemap.TileMap, room *gamemap.Room, cfg *Config) gamemap.Point {
	floors := floorCells(m, room)
	if len(floors) == 0 {
		return room.Rect.Center()
	}
	return floors[cfg.Rand.Intn(len(floors))]
}
