// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/tiles/layout.go
// Summary: Grid geometry for the tile view.

package tiles

import "github.com/framegrace/texelui/core"

// grid places slots (tiles plus the trailing add slot) on the content area
// above the status bar.
type grid struct {
	cols      int
	tileW     int
	tileH     int
	gap       int
	visible   int // grid rows that fit on screen
	gridWidth int
}

func newGrid(width, height, tileW, tileH, gap, columns int) grid {
	if gap < 0 {
		gap = 0
	}
	if tileW < 3 {
		tileW = 3
	}
	if tileH < 2 {
		tileH = 2
	}
	if limit := width - 2*gap; tileW > limit && limit >= 3 {
		tileW = limit
	}

	cols := columns
	if cols <= 0 {
		cols = (width - gap) / (tileW + gap)
	}
	if cols < 1 {
		cols = 1
	}

	visible := (height - gap) / (tileH + gap)
	if visible < 1 {
		visible = 1
	}

	return grid{
		cols:      cols,
		tileW:     tileW,
		tileH:     tileH,
		gap:       gap,
		visible:   visible,
		gridWidth: width,
	}
}

// slotRect returns the rectangle of slot i when the grid is scrolled so
// that row scroll is the first visible row.
func (g grid) slotRect(i, scroll int) core.Rect {
	col := i % g.cols
	row := i/g.cols - scroll
	return core.Rect{
		X: g.gap + col*(g.tileW+g.gap),
		Y: g.gap + row*(g.tileH+g.gap),
		W: g.tileW,
		H: g.tileH,
	}
}

// slotAt returns the slot under (x, y), or -1.
func (g grid) slotAt(x, y, scroll, slots int) int {
	first := scroll * g.cols
	last := (scroll + g.visible) * g.cols
	if last > slots {
		last = slots
	}
	for i := first; i < last; i++ {
		if g.slotRect(i, scroll).Contains(x, y) {
			return i
		}
	}
	return -1
}

// follow returns the scroll offset that keeps slot sel visible.
func (g grid) follow(sel, scroll int) int {
	row := sel / g.cols
	if row < scroll {
		return row
	}
	if row >= scroll+g.visible {
		return row - g.visible + 1
	}
	return scroll
}

// move returns the slot reached from sel by dx columns and dy rows,
// clamped to [0, slots).
func (g grid) move(sel, dx, dy, slots int) int {
	if slots == 0 {
		return 0
	}
	next := sel + dx + dy*g.cols
	if dy != 0 && (next < 0 || next >= slots) {
		return sel
	}
	if next < 0 {
		next = 0
	}
	if next >= slots {
		next = slots - 1
	}
	return next
}
