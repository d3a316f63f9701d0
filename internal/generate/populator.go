package generate

import (
	"math"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/gamemap"
)

// spawnCount is the number of spawns a room of floor cells gets at the given
// density per 100 cells, never less than one.
func spawnCount(floor, density int) int {
	return max(1, int(math.Round(float64(floor*density)/100)))
}

// freeCell draws random cells from candidates until one is unoccupied and
// has no feature, giving up after cfg.MaxPlacementTries draws.
func freeCell(m *gamemap.TileMap, candidates []gamemap.Point, cfg *Config) (gamemap.Point, bool) {
	if len(candidates) == 0 {
		return gamemap.Point{}, false
	}
	for try := 0; try < cfg.MaxPlacementTries; try++ {
		p := candidates[cfg.Rand.Intn(len(candidates))]
		if m.Occupied(p) {
			continue
		}
		if c, err := m.Cell(p); err == nil && c.Feature == gamemap.FeatureNone {
			return p, true
		}
	}
	return gamemap.Point{}, false
}

// placeMonsters chooses monster spawns room by room. Types are limited to
// those the room type allows at the room's difficulty and weighted by
// their chance.
func placeMonsters(m *gamemap.TileMap, cfg *Config) []MonsterSpawn {
	log := cfg.logger()
	monsters := cfg.Catalog.Monsters()
	var out []MonsterSpawn
	for _, room := range m.Rooms() {
		floors := floorCells(m, room)
		n := spawnCount(len(floors), room.Type.MonsterDensity)
		for range n {
			mt, ok := weightedChoice(cfg.Rand, monsters, func(mt *catalog.MonsterType) int {
				if mt.ID == catalog.PlayerID || !room.Type.AllowsMonster(mt.ID) || !mt.Difficulty.Matches(room.Difficulty) {
					return 0
				}
				return mt.Chance
			})
			if !ok {
				log.Debug("no eligible monster type", "room", room.ID, "type", room.Type.ID)
				break
			}
			p, ok := freeCell(m, floors, cfg)
			if !ok {
				log.Debug("unable to place monster; skipping", "room", room.ID, "monster", mt.ID)
				continue
			}
			m.Occupy(p)
			out = append(out, MonsterSpawn{Pos: p, Type: mt, Difficulty: room.Difficulty})
		}
	}
	return out
}

// placeItems chooses item spawns room by room: one gold, then density-many
// items weighted by their chance at the room's difficulty.
func placeItems(m *gamemap.TileMap, cfg *Config) []ItemSpawn {
	log := cfg.logger()
	items := cfg.Catalog.Items()
	gold, _ := cfg.Catalog.ItemType(catalog.GoldID)
	var out []ItemSpawn
	for _, room := range m.Rooms() {
		floors := floorCells(m, room)
		n := spawnCount(len(floors), room.Type.ItemDensity)
		for i := range n + 1 {
			it := gold
			if i > 0 {
				var ok bool
				it, ok = weightedChoice(cfg.Rand, items, func(it *catalog.ItemType) int {
					return it.ChanceByDifficulty[room.Difficulty]
				})
				if !ok {
					continue
				}
			}
			if it == nil {
				continue
			}
			p, ok := freeCell(m, floors, cfg)
			if !ok {
				log.Debug("unable to place item; skipping", "room", room.ID, "item", it.ID)
				continue
			}
			m.Occupy(p)
			out = append(out, ItemSpawn{Pos: p, Type: it})
		}
	}
	return out
}
