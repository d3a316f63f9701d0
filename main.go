// dungeoncore generates a dungeon level and prints it. Build:
//
//	go build -o dungeoncore .
//
// Usage:
//
//	./dungeoncore [-seed 42] [-catalog content.lua] [-turns 20] [-v]
//
// With -turns the player stands still while the monsters act, and the run
// log is printed after the map.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"dungeoncore/internal/behavior"
	"dungeoncore/internal/catalog"
	"dungeoncore/internal/game"
	"dungeoncore/internal/gamemap"
	"dungeoncore/internal/level"
)

func main() {
	seed := flag.Int64("seed", 1, "random seed")
	catalogFile := flag.String("catalog", "", "Lua content file (built-in content if empty)")
	width := flag.Int("width", gamemap.DefaultWidth, "map width")
	height := flag.Int("height", gamemap.DefaultHeight, "map height")
	turns := flag.Int("turns", 0, "idle player turns to simulate before printing")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	if err := run(logger, *seed, *catalogFile, *width, *height, *turns); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, seed int64, catalogFile string, width, height, turns int) error {
	cat := catalog.Default()
	if catalogFile != "" {
		var err error
		if cat, err = catalog.LoadLuaFile(catalogFile); err != nil {
			return err
		}
	}
	s, err := game.New(game.Config{Catalog: cat, Seed: seed, Width: width, Height: height, Logger: logger})
	if err != nil {
		return err
	}
	for range turns {
		if s.Over() {
			break
		}
		s.Perform(behavior.Command{Kind: behavior.CmdWait})
	}

	lv := s.Level()
	if err := lv.Map().Render(os.Stdout, overlay(lv)); err != nil {
		return err
	}
	fmt.Printf("level %s  depth %d  turn %d  hp %d  score %d  %s\n",
		s.LevelID(), s.Depth, s.Turn, s.Player().HP, s.Score(), s.Status)
	if turns > 0 {
		return game.WriteRunLog(os.Stdout, s.RunLog())
	}
	return nil
}

// overlay draws entities over items over terrain.
func overlay(lv *level.Level) func(gamemap.Point) (string, bool) {
	return func(p gamemap.Point) (string, bool) {
		if e := lv.EntityAt(p); e != nil {
			return e.Type.Char, true
		}
		if it := lv.ItemAt(p); it != nil {
			return it.Type.Char, true
		}
		return "", false
	}
}
