// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/tiles/view.go
// Summary: Root widget that hosts the tile grid in the UIManager.

package tiles

import (
	"github.com/framegrace/texelui/core"
	"github.com/gdamore/tcell/v2"
)

var (
	_ core.Widget           = (*tileView)(nil)
	_ core.KeyHintsProvider = (*tileView)(nil)
)

// tileView fills the content area above the status bar. The UIManager
// sizes it, draws it and hands it keys while it has focus; the state it
// shows lives in Tiles.
type tileView struct {
	core.BaseWidget
	t *Tiles
}

func newTileView(t *Tiles) *tileView {
	v := &tileView{t: t}
	v.SetFocusable(true)
	return v
}

func (v *tileView) Resize(w, h int) {
	v.BaseWidget.Resize(w, h)
	v.t.setArea(v.Rect.W, v.Rect.H)
}

func (v *tileView) Draw(p *core.Painter) {
	v.t.paint(p, v.Rect)
}

func (v *tileView) HandleKey(ev *tcell.EventKey) bool {
	return v.t.gridKey(ev)
}

// GetKeyHints implements core.KeyHintsProvider.
func (v *tileView) GetKeyHints() []core.KeyHint {
	return []core.KeyHint{
		{Key: "←↑↓→", Label: "Move"},
		{Key: "Enter", Label: "Launch"},
		{Key: "a", Label: "Add"},
		{Key: "i", Label: "Artwork"},
	}
}
