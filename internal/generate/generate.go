// Package generate builds dungeon levels: a quadrant-split BSP layout of
// rooms joined by corridors, stairs, and the spawn points a level is seeded
// from. It never creates live entities.
package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/gamemap"
)

var (
	// ErrGenerationFailed is returned when no attempt produced a valid level.
	ErrGenerationFailed = errors.New("generate: dungeon generation failed")
	// ErrInvalidConfig is returned for configs that can never succeed.
	ErrInvalidConfig = errors.New("generate: invalid config")

	errOverlap      = errors.New("room placement overlaps another room")
	errDisconnected = errors.New("rooms are not all connected")
	errNoFloor      = errors.New("room has no free floor")
)

// Config drives procedural generation for one level.
type Config struct {
	Width, Height       int
	MinLeafSize         int
	MaxLeafSize         int
	MinRoomSize         int // smallest BOX_RANDOM room side, walls included
	MaxAttempts         int // whole-level attempts before giving up
	MaxPlacementTries   int // per room, monster or item
	MaxDoorsPerCorridor int
	MaxPathRolls        int
	Catalog             *catalog.Catalog
	Rand                *rand.Rand
	Logger              *slog.Logger
}

// DefaultConfig returns the standard 160x80 layout settings.
func DefaultConfig(cat *catalog.Catalog, rng *rand.Rand) *Config {
	return &Config{
		Width:               gamemap.DefaultWidth,
		Height:              gamemap.DefaultHeight,
		MinLeafSize:         8,
		MaxLeafSize:         20,
		MinRoomSize:         5,
		MaxAttempts:         20,
		MaxPlacementTries:   10,
		MaxDoorsPerCorridor: 4,
		MaxPathRolls:        10,
		Catalog:             cat,
		Rand:                rng,
	}
}

func (cfg *Config) validate() error {
	switch {
	case cfg.Catalog == nil:
		return fmt.Errorf("%w: no catalog", ErrInvalidConfig)
	case cfg.Rand == nil:
		return fmt.Errorf("%w: no random source", ErrInvalidConfig)
	case cfg.MinRoomSize < 3:
		return fmt.Errorf("%w: rooms need at least 3 cells per side", ErrInvalidConfig)
	case cfg.MinLeafSize < cfg.MinRoomSize:
		return fmt.Errorf("%w: leaves smaller than rooms", ErrInvalidConfig)
	case cfg.Width/2 < cfg.MinLeafSize || cfg.Height/2 < cfg.MinLeafSize:
		return fmt.Errorf("%w: %dx%d map cannot hold four quadrants", ErrInvalidConfig, cfg.Width, cfg.Height)
	case cfg.MaxAttempts < 1:
		return fmt.Errorf("%w: need at least one attempt", ErrInvalidConfig)
	}
	return nil
}

func (cfg *Config) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger
}

// MonsterSpawn is a monster the level should create.
type MonsterSpawn struct {
	Pos        gamemap.Point
	Type       *catalog.MonsterType
	Difficulty catalog.Difficulty
}

// ItemSpawn is an item the level should place.
type ItemSpawn struct {
	Pos  gamemap.Point
	Type *catalog.ItemType
}

// Result is a finished level layout and its points of interest.
type Result struct {
	Map        *gamemap.TileMap
	StairsUp   gamemap.Point
	StairsDown gamemap.Point
	Monsters   []MonsterSpawn
	Items      []ItemSpawn
}

// Generate builds a level. Attempts that overlap rooms or leave a room
// unreachable are thrown away; after cfg.MaxAttempts failures it returns
// ErrGenerationFailed and no map.
func Generate(cfg *Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		res, err := buildAttempt(cfg)
		if err == nil {
			log.Debug("dungeon generated",
				"attempt", attempt,
				"rooms", len(res.Map.Rooms()),
				"monsters", len(res.Monsters),
				"items", len(res.Items))
			return res, nil
		}
		log.Debug("discarding dungeon attempt", "attempt", attempt, "err", err)
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationFailed, cfg.MaxAttempts, lastErr)
}

// buildAttempt builds one candidate level. Tests swap it out.
var buildAttempt = generateOnce

func generateOnce(cfg *Config) (*Result, error) {
	m := gamemap.New(cfg.Width, cfg.Height)
	root, quadrants := buildTree(cfg)

	if err := placeRooms(m, root, cfg); err != nil {
		return nil, err
	}
	engraveCorridors(m, quadrants, cfg)

	res := &Result{Map: m}
	var err error
	res.StairsUp, err = placeStairs(m, quadrants[0], gamemap.Point{X: cfg.Width / 2, Y: cfg.Height / 4}, gamemap.FeatureStairsUp, cfg)
	if err != nil {
		return nil, err
	}
	res.StairsDown, err = placeStairs(m, quadrants[len(quadrants)-1], gamemap.Point{X: cfg.Width / 2, Y: cfg.Height / 2}, gamemap.FeatureStairsDown, cfg)
	if err != nil {
		return nil, err
	}
	if err := verifyConnected(m, res.StairsUp); err != nil {
		return nil, err
	}

	res.Monsters = placeMonsters(m, cfg)
	res.Items = placeItems(m, cfg)
	return res, nil
}

// weightedChoice picks one of choices with probability proportional to its
// weight. Non-positive weights are never picked; ok is false when nothing
// has weight.
func weightedChoice[T any](rng *rand.Rand, choices []T, weight func(T) int) (choice T, ok bool) {
	total := 0
	for _, c := range choices {
		if w := weight(c); w > 0 {
			total += w
		}
	}
	if total == 0 {
		return choice, false
	}
	r := rng.Intn(total)
	for _, c := range choices {
		w := weight(c)
		if w <= 0 {
			continue
		}
		if r < w {
			return c, true
		}
		r -= w
	}
	return choice, false
}
