package generate

import (
	"github.com/ojrac/opensimplex-go"
	"github.com/zyedidia/generic/mapset"

	"dungeoncore/internal/gamemap"
)

const (
	caveScale     = 0.25
	cavePillarMin = 0.3
)

type caveNoise struct {
	noise opensimplex.Noise
}

func newCaveNoise(seed int64) caveNoise {
	return caveNoise{noise: opensimplex.New(seed)}
}

func (n caveNoise) pillar(p gamemap.Point) bool {
	return n.noise.Eval2(float64(p.X)*caveScale, float64(p.Y)*caveScale) > cavePillarMin
}

// carveCave raises noise pillars inside a room, keeping a ring of floor
// along the inner side of its walls, then fills any floor the ring cannot
// reach so the room stays one connected region.
func carveCave(m *gamemap.TileMap, room *gamemap.Room, n caveNoise) {
	inner := room.Rect.Inset(1)
	core := room.Rect.Inset(2)
	if core.Area() == 0 {
		return
	}
	for p := range core.Points() {
		if n.pillar(p) {
			c, _ := m.Cell(p)
			c.Terrain = gamemap.TerrainWall
		}
	}

	reached := mapset.New[gamemap.Point]()
	var queue []gamemap.Point
	for p := range inner.Points() {
		if inner.OnEdge(p) {
			reached.Put(p)
			queue = append(queue, p)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range gamemap.Directions {
			next := cur.Add(d)
			if reached.Has(next) || !core.Contains(next) {
				continue
			}
			if c, _ := m.Cell(next); c.Terrain == gamemap.TerrainFloor {
				reached.Put(next)
				queue = append(queue, next)
			}
		}
	}
	for p := range core.Points() {
		if c, _ := m.Cell(p); c.Terrain == gamemap.TerrainFloor && !reached.Has(p) {
			c.Terrain = gamemap.TerrainWall
		}
	}
}
