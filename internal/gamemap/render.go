package gamemap

import (
	"bufio"
	"io"

	"github.com/mattn/go-runewidth"
)

// cellWidth is the number of terminal columns each cell takes in Render, so
// that double-width glyphs line up with single-width terrain.
const cellWidth = 2

// Render writes the map as text, one row per line. overlay may supply a glyph
// for a cell (an entity or item); otherwise the terrain glyph is used, with
// stairs drawn as < and >.
func (m *TileMap) Render(w io.Writer, overlay func(Point) (string, bool)) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Point{x, y}
			glyph, ok := "", false
			if overlay != nil {
				glyph, ok = overlay(p)
			}
			if !ok {
				glyph = m.glyphAt(p)
			}
			if runewidth.StringWidth(glyph) > cellWidth {
				glyph = runewidth.Truncate(glyph, cellWidth, "")
			}
			if _, err := bw.WriteString(runewidth.FillRight(glyph, cellWidth)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (m *TileMap) glyphAt(p Point) string {
	c := m.cells[p.Y*m.Width+p.X]
	switch c.Feature {
	case FeatureStairsUp:
		return "<"
	case FeatureStairsDown:
		return ">"
	}
	return c.Terrain.Glyph()
}
