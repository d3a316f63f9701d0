package gamemap

import "testing"

// openMap builds a w×h map of floor with a wall border.
func openMap(w, h int) *TileMap {
	m := New(w, h)
	for p := range m.Bounds().Points() {
		c, _ := m.Cell(p)
		if m.Bounds().OnEdge(p) {
			c.Terrain = TerrainWall
		} else {
			c.Terrain = TerrainFloor
		}
	}
	return m
}

func TestFOVOpenRoom(t *testing.T) {
	m := openMap(21, 21)
	vis := m.VisiblePoints(Point{10, 10}, 8)
	for _, p := range []Point{{10, 10}, {10, 4}, {14, 10}, {7, 13}} {
		if !vis.Has(p) {
			t.Errorf("%v should be visible in an open room", p)
		}
	}
	if vis.Has(Point{10, 1}) {
		t.Error("(10,1) is beyond the radius")
	}
}

func TestFOVWallBlocks(t *testing.T) {
	m := openMap(21, 21)
	for y := 1; y < 20; y++ {
		c, _ := m.Cell(Point{12, y})
		c.Terrain = TerrainWall
	}
	vis := m.VisiblePoints(Point{10, 10}, 8)
	if !vis.Has(Point{12, 10}) {
		t.Error("the wall itself should be lit")
	}
	if vis.Has(Point{14, 10}) {
		t.Error("cells behind the wall should be dark")
	}
}

func TestFOVStaysInBounds(t *testing.T) {
	m := openMap(5, 5)
	vis := m.VisiblePoints(Point{1, 1}, 10)
	vis.Each(func(p Point) {
		if !m.InBounds(p) {
			t.Errorf("out-of-bounds point %v returned", p)
		}
	})
}
