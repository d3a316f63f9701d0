package gamemap

import "github.com/zyedidia/generic/mapset"

// octant transform matrices.
// For each octant, a (dx, dy) sweep pair maps to a world offset via:
//
//	worldX = cx + dx*xx + dy*xy
//	worldY = cy + dx*yx + dy*yy
var octants = [8][4]int{
	{1, 0, 0, 1},
	{0, 1, 1, 0},
	{0, -1, 1, 0},
	{-1, 0, 0, 1},
	{-1, 0, 0, -1},
	{0, -1, -1, 0},
	{0, 1, -1, 0},
	{1, 0, 0, -1},
}

// VisiblePoints runs recursive shadowcasting from origin and returns every
// cell lit within radius. Opaque cells that bound the view are included.
func VisiblePoints(origin Point, radius int, transparent func(Point) bool) mapset.Set[Point] {
	lit := mapset.New[Point]()
	lit.Put(origin)
	for _, m := range octants {
		castLight(lit, transparent, origin, 1, 1.0, 0.0, radius, m[0], m[1], m[2], m[3])
	}
	return lit
}

// VisiblePoints is the TileMap flavor of the package function: only in-bounds
// cells are returned and terrain decides transparency.
func (m *TileMap) VisiblePoints(origin Point, radius int) mapset.Set[Point] {
	lit := VisiblePoints(origin, radius, m.Transparent)
	out := mapset.New[Point]()
	lit.Each(func(p Point) {
		if m.InBounds(p) {
			out.Put(p)
		}
	})
	return out
}

// castLight casts light for one octant.
//   - j is the current row (distance from origin along the main axis)
//   - dy = -j is fixed for the entire inner sweep
//   - dx sweeps from -j to 0 within the row
//   - lSlope = (dx - 0.5) / (dy + 0.5)   rSlope = (dx + 0.5) / (dy - 0.5)
func castLight(lit mapset.Set[Point], transparent func(Point) bool, c Point, row int, start, end float64, radius, xx, xy, yx, yy int) {
	if start < end {
		return
	}
	radiusSq := float64(radius * radius)
	newStart := start

	for j := row; j <= radius; j++ {
		dy := -j
		blocked := false

		for dx := -j; dx <= 0; dx++ {
			p := Point{c.X + dx*xx + dy*xy, c.Y + dx*yx + dy*yy}

			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			if float64(dx*dx+dy*dy) < radiusSq {
				lit.Put(p)
			}

			opaque := !transparent(p)
			if blocked {
				if opaque {
					newStart = rSlope
				} else {
					blocked = false
					start = newStart
				}
			} else if opaque && j < radius {
				blocked = true
				castLight(lit, transparent, c, j+1, start, lSlope, radius, xx, xy, yx, yy)
				newStart = rSlope
			}
		}
		if blocked {
			break
		}
	}
}
