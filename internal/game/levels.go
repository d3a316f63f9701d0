package game

import (
	"math"
	"math/rand"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/generate"
)

// MaxDepth is the depth at which level layouts stop getting denser.
const MaxDepth = 10

// levelConfig builds a generate.Config for the given depth. Deeper levels
// use smaller BSP leaves and so pack in more rooms.
func levelConfig(depth int, cfg Config, cat *catalog.Catalog, rng *rand.Rand) *generate.Config {
	t := 0.0
	if MaxDepth > 1 {
		t = float64(min(depth, MaxDepth)-1) / float64(MaxDepth-1)
	}
	gc := generate.DefaultConfig(cat, rng)
	if cfg.Width > 0 {
		gc.Width = cfg.Width
	}
	if cfg.Height > 0 {
		gc.Height = cfg.Height
	}
	gc.MaxLeafSize = lerpi(20, 12, t)
	gc.Logger = cfg.Logger
	return gc
}

func lerpi(a, b int, t float64) int {
	return int(math.Round(float64(a) + t*float64(b-a)))
}
