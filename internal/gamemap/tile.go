package gamemap

import "fmt"

// Terrain is the ground type of a cell.
type Terrain uint8

const (
	TerrainEmpty Terrain = iota
	TerrainFloor
	TerrainWall
	TerrainDoorClosed
	TerrainDoorOpen
	TerrainCorridor
)

var terrainNames = [...]string{"empty", "floor", "wall", "door_closed", "door_open", "corridor"}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("Terrain(%d)", uint8(t))
}

// Passable reports whether entities can stand on the terrain.
func (t Terrain) Passable() bool {
	return t == TerrainFloor || t == TerrainCorridor || t == TerrainDoorOpen
}

// Transparent reports whether light passes through the terrain.
func (t Terrain) Transparent() bool {
	return t.Passable()
}

// Glyph is the single-column character used by Render.
func (t Terrain) Glyph() string {
	switch t {
	case TerrainFloor:
		return "."
	case TerrainWall:
		return "#"
	case TerrainDoorClosed:
		return "+"
	case TerrainDoorOpen:
		return "'"
	case TerrainCorridor:
		return ","
	}
	return " "
}

// Feature is a fixture placed on top of the terrain.
type Feature uint8

const (
	FeatureNone Feature = iota
	FeatureStairsUp
	FeatureStairsDown
)

func (f Feature) String() string {
	switch f {
	case FeatureStairsUp:
		return "stairs_up"
	case FeatureStairsDown:
		return "stairs_down"
	}
	return "none"
}

// Cell is one square of the grid.
type Cell struct {
	Terrain Terrain
	Feature Feature
	RoomID  int // 0: not part of any room
}

// OpenDoor turns a closed door into an open one.
func (c *Cell) OpenDoor() error {
	if c.Terrain != TerrainDoorClosed {
		return fmt.Errorf("open %s: %w", c.Terrain, ErrInvalidTransition)
	}
	c.Terrain = TerrainDoorOpen
	return nil
}

// CloseDoor turns an open door into a closed one.
func (c *Cell) CloseDoor() error {
	if c.Terrain != TerrainDoorOpen {
		return fmt.Errorf("close %s: %w", c.Terrain, ErrInvalidTransition)
	}
	c.Terrain = TerrainDoorClosed
	return nil
}
