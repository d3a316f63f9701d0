package generate

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"dungeoncore/internal/gamemap"
)

// verifyConnected checks both views of connectivity: every room is reachable
// in the adjacency graph, and every room floor cell can be walked to from
// start when doors are treated as open.
func verifyConnected(m *gamemap.TileMap, start gamemap.Point) error {
	rooms := m.Rooms()
	if len(rooms) == 0 {
		return fmt.Errorf("no rooms: %w", errDisconnected)
	}
	if got := reachableRooms(m, rooms[0].ID).Size(); got != len(rooms) {
		return fmt.Errorf("room graph reaches %d of %d rooms: %w", got, len(rooms), errDisconnected)
	}

	walked := walkable(m, start)
	for _, room := range rooms {
		for _, p := range floorCells(m, room) {
			if !walked.Has(p) {
				return fmt.Errorf("room %d floor %v unreachable: %w", room.ID, p, errDisconnected)
			}
		}
	}
	return nil
}

// reachableRooms runs a BFS over the room adjacency graph.
func reachableRooms(m *gamemap.TileMap, from int) mapset.Set[int] {
	visited := mapset.New[int]()
	visited.Put(from)
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.RoomByID(cur).NeighborIDs() {
			if !visited.Has(n) {
				visited.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return visited
}

// walkable flood-fills in eight directions from start over passable terrain
// and closed doors.
func walkable(m *gamemap.TileMap, start gamemap.Point) mapset.Set[gamemap.Point] {
	visited := mapset.New[gamemap.Point]()
	visited.Put(start)
	queue := []gamemap.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range gamemap.Directions {
			next := cur.Add(d)
			if visited.Has(next) {
				continue
			}
			c, err := m.Cell(next)
			if err != nil {
				continue
			}
			if c.Terrain.Passable() || c.Terrain == gamemap.TerrainDoorClosed {
				visited.Put(next)
				queue = append(queue, next)
			}
		}
	}
	return visited
}
