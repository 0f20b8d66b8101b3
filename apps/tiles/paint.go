// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/tiles/paint.go
// Summary: Cell painting for tiles, their artwork and the add slot.

package tiles

import (
	"github.com/framegrace/texeltiles/registry"
	"github.com/framegrace/texelui/core"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// drawCentered writes s centered in the width columns starting at x,
// truncated to fit. Wide runes take two cells.
func drawCentered(p *core.Painter, x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	col := x + (width-runewidth.StringWidth(s))/2
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		p.SetCell(col, y, ch, style)
		if w == 2 {
			p.SetCell(col+1, y, 0, style)
		}
		col += w
	}
}

// paint draws the visible slots into area. Called by the root widget
// while the UIManager renders.
func (t *Tiles) paint(p *core.Painter, area core.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if area.W <= 0 || area.H <= 0 {
		return
	}
	p.Fill(area, ' ', t.styles.Background)

	g := t.layoutLocked()
	slots := t.slotsLocked()
	first := t.scroll * g.cols
	last := (t.scroll + g.visible) * g.cols
	if last > slots {
		last = slots
	}
	for i := first; i < last; i++ {
		r := g.slotRect(i, t.scroll)
		r.X += area.X
		r.Y += area.Y
		if i == len(t.tiles) {
			t.paintAddSlot(p, r, i == t.selected)
			continue
		}
		t.paintTile(p, r, t.tiles[i], i == t.selected)
	}
}

func (t *Tiles) paintTile(p *core.Painter, r core.Rect, tile registry.Tile, selected bool) {
	body := t.styles.Tile
	label := t.styles.Label
	if selected {
		label = t.styles.Selected
	}
	p.Fill(r, ' ', body)

	art := core.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H - 1}
	if tile.HasArtwork() && art.H > 0 {
		thumb := t.thumbnailLocked(tile.Artwork, art.W, art.H)
		if thumb.err == nil {
			for y := 0; y < art.H; y++ {
				for x := 0; x < art.W; x++ {
					style := tcell.StyleDefault.Foreground(thumb.top(x, y)).Background(thumb.bottom(x, y))
					p.SetCell(art.X+x, art.Y+y, '▀', style)
				}
			}
		} else {
			drawCentered(p, art.X, art.Y+art.H/2, art.W, "artwork unreadable", body.Dim(true))
		}
	} else if art.H > 0 {
		drawCentered(p, art.X, art.Y+art.H/2, art.W, tile.Label, body.Bold(true))
		if art.H > 2 {
			drawCentered(p, art.X, art.Y+art.H/2+1, art.W, tile.Path, body.Dim(true))
		}
	}

	p.Fill(core.Rect{X: r.X, Y: r.Y + r.H - 1, W: r.W, H: 1}, ' ', label)
	drawCentered(p, r.X, r.Y+r.H-1, r.W, tile.Label, label)
}

func (t *Tiles) paintAddSlot(p *core.Painter, r core.Rect, selected bool) {
	body := t.styles.Tile.Dim(true)
	label := t.styles.Label
	if selected {
		label = t.styles.Selected
	}
	p.Fill(r, ' ', body)
	if r.H > 1 {
		drawCentered(p, r.X, r.Y+(r.H-1)/2, r.W, "+", t.styles.Tile.Bold(true))
	}
	p.Fill(core.Rect{X: r.X, Y: r.Y + r.H - 1, W: r.W, H: 1}, ' ', label)
	drawCentered(p, r.X, r.Y+r.H-1, r.W, "Add", label)
}

// thumbnailLocked returns the cached thumbnail for path at the given size,
// decoding it on first use. Failures are cached as well.
func (t *Tiles) thumbnailLocked(path string, cols, rows int) *thumbnail {
	key := thumbKey{path: path, cols: cols, rows: rows}
	if th, ok := t.thumbs[key]; ok {
		return th
	}
	th := loadThumbnail(path, cols, rows)
	t.thumbs[key] = th
	return th
}
