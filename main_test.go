package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/game"
)

func TestRunDefaultContent(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	if err := run(logger, 3, "", 80, 40, 2); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunMissingCatalog(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	missing := filepath.Join(t.TempDir(), "nope.lua")
	if err := run(logger, 3, missing, 80, 40, 0); err == nil {
		t.Fatal("expected an error for a missing content file")
	}
}

func TestOverlay(t *testing.T) {
	s, err := game.New(game.Config{Catalog: catalog.Default(), Seed: 5, Width: 80, Height: 40})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	lv := s.Level()
	draw := overlay(lv)

	if g, ok := draw(lv.StairsUp()); !ok || g != "@" {
		t.Errorf("player cell = %q, %v; want @", g, ok)
	}
	if _, ok := draw(lv.StairsDown()); ok {
		t.Error("stairs down should fall through to terrain")
	}
	if err := lv.Map().Render(io.Discard, draw); err != nil {
		t.Fatalf("Render: %v", err)
	}
}
