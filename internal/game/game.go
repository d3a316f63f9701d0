// Package game ties levels together into a run: it owns every generated
// level, routes player commands to the current one and keeps the turn
// counter and run statistics.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/oklog/ulid/v2"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/generate"
	"dungeoncore/internal/level"
)

// Status is the run's top-level state.
type Status uint8

const (
	StatusPlaying Status = iota
	StatusDead
)

func (s Status) String() string {
	if s == StatusDead {
		return "dead"
	}
	return "playing"
}

var (
	// ErrNotOnStairs is returned by Descend when the player is elsewhere.
	ErrNotOnStairs = errors.New("game: player is not on the down stairs")
	// ErrGameOver is returned for actions after the player died.
	ErrGameOver = errors.New("game: game over")
)

// Config drives a run.
type Config struct {
	Catalog       *catalog.Catalog // nil uses catalog.Default()
	Seed          int64
	Width, Height int // zero keeps the generator defaults
	FOVRadius     int
	Logger        *slog.Logger
}

// State is one run in progress.
type State struct {
	Turn   int
	Depth  int
	Status Status

	cfg     Config
	cat     *catalog.Catalog
	rng     *rand.Rand
	log     *slog.Logger
	levels  map[ulid.ULID]*level.Level
	order   []ulid.ULID
	current ulid.ULID
	runLog  RunLog
}

// New starts a run on a freshly generated first level.
func New(cfg Config) (*State, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &State{
		cfg:    cfg,
		cat:    cat,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    logger,
		levels: make(map[ulid.ULID]*level.Level),
		runLog: RunLog{Seed: cfg.Seed, Killed: make(map[string]int)},
	}
	if _, _, err := s.AddLevel(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// AddLevel generates the next level down, makes it current and seeds it
// with player, or with a fresh player when nil.
func (s *State) AddLevel(player *ecs.Entity) (ulid.ULID, *level.Level, error) {
	depth := s.Depth + 1
	gen, err := generate.Generate(levelConfig(depth, s.cfg, s.cat, s.rng))
	if err != nil {
		return ulid.ULID{}, nil, fmt.Errorf("generate depth %d: %w", depth, err)
	}
	lv, err := level.New(gen, level.Config{
		Catalog:   s.cat,
		Rand:      s.rng,
		Logger:    s.log.With("depth", depth),
		FOVRadius: s.cfg.FOVRadius,
		Player:    player,
	})
	if err != nil {
		return ulid.ULID{}, nil, fmt.Errorf("seed depth %d: %w", depth, err)
	}
	if err := s.track(lv); err != nil {
		lv.RemoveEntity(lv.Player())
		return ulid.ULID{}, nil, err
	}

	id := ulid.Make()
	s.levels[id] = lv
	s.order = append(s.order, id)
	s.current = id
	s.Depth = depth
	s.runLog.Depth = depth
	s.log.Info("level ready", "id", id, "depth", depth, "monsters", len(lv.Entities())-1)
	return id, lv, nil
}

// track keeps the run log current from the level's events.
func (s *State) track(lv *level.Level) error {
	if _, err := lv.Subscribe(event.EntityDied, nil, func(ev event.Event) {
		died := ev.Payload.(event.Died)
		switch {
		case ev.Source != nil && ev.Source.IsPlayer():
			if died.Killer != nil && died.Killer.Type != nil {
				s.runLog.CauseOfDeath = died.Killer.Type.ID
			}
		case died.Killer != nil && died.Killer.IsPlayer():
			s.runLog.Killed[ev.Source.Type.ID]++
		}
	}); err != nil {
		return err
	}
	_, err := lv.Subscribe(event.EntityTookDamage, nil, func(ev event.Event) {
		hit := ev.Payload.(event.TookDamage)
		switch {
		case ev.Source != nil && ev.Source.IsPlayer():
			s.runLog.DamageTaken += hit.Amount
		case hit.Attacker != nil && hit.Attacker.IsPlayer():
			s.runLog.DamageDealt += hit.Amount
		}
	})
	return err
}

// Level returns the current level.
func (s *State) Level() *level.Level { return s.levels[s.current] }

// LevelID returns the current level's id.
func (s *State) LevelID() ulid.ULID { return s.current }

// LevelByID looks a level up by id.
func (s *State) LevelByID(id ulid.ULID) (*level.Level, bool) {
	lv, ok := s.levels[id]
	return lv, ok
}

// LevelIDs returns level ids from the first level down.
func (s *State) LevelIDs() []ulid.ULID { return append([]ulid.ULID(nil), s.order...) }

// Player returns the player entity.
func (s *State) Player() *ecs.Entity { return s.Level().Player() }

// Perform carries out a player command on the current level and lets the
// level react. The turn counter advances only when the command took effect.
func (s *State) Perform(cmd behavior.Command) bool {
	if s.Status != StatusPlaying {
		return false
	}
	lv := s.Level()
	ok := lv.Controller().Perform(cmd)
	lv.ConsumeEvents()
	if ok {
		s.Turn++
	}
	if !lv.Player().Alive() {
		s.Status = StatusDead
		s.log.Info("player died", "turn", s.Turn, "depth", s.Depth, "score", s.Score())
	}
	return ok
}

// Descend takes the player down the stairs to a new level, keeping hit
// points and inventory.
func (s *State) Descend() error {
	if s.Status != StatusPlaying {
		return ErrGameOver
	}
	lv := s.Level()
	player := lv.Player()
	pos, ok := player.Position()
	if !ok || pos != lv.StairsDown() {
		return ErrNotOnStairs
	}
	lv.RemoveEntity(player)
	if _, _, err := s.AddLevel(player); err != nil {
		if rerr := lv.AddEntity(player, pos); rerr != nil {
			return errors.Join(err, fmt.Errorf("restore player: %w", rerr))
		}
		return err
	}
	s.Turn++
	return nil
}

// Score is the total banked across every level.
func (s *State) Score() int {
	total := 0
	for _, lv := range s.levels {
		total += lv.Score()
	}
	return total
}

// Over reports whether the run has ended.
func (s *State) Over() bool { return s.Status != StatusPlaying }

// RunLog returns the statistics gathered so far.
func (s *State) RunLog() RunLog {
	log := s.runLog
	log.Turns = s.Turn
	log.Score = s.Score()
	log.Killed = make(map[string]int, len(s.runLog.Killed))
	for k, v := range s.runLog.Killed {
		log.Killed[k] = v
	}
	return log
}
