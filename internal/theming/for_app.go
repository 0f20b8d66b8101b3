// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/for_app.go
// Summary: Theme resolution and tile styles for texeltiles apps.

package theming

import (
	"github.com/framegrace/texeltiles/config"
	"github.com/framegrace/texelui/theme"
	"github.com/gdamore/tcell/v2"
)

// ForApp returns the base theme merged with any per-app overrides.
func ForApp(app string) theme.Config {
	base := theme.Get()
	overrides := overridesForApp(app)
	if len(overrides) == 0 {
		return base
	}
	return theme.WithOverrides(base, overrides)
}

func overridesForApp(app string) theme.Config {
	if app == "" {
		return nil
	}
	cfg := config.App(app)
	if cfg == nil {
		return nil
	}
	return theme.ParseOverrides(cfg["theme_overrides"])
}

// Styles are the resolved cell styles used to paint the tile grid and the
// picker backdrop. The status bar takes its colors from the theme.
type Styles struct {
	Background tcell.Style
	Tile       tcell.Style
	Selected   tcell.Style
	Label      tcell.Style
	Prompt     tcell.Style
}

// StylesFor resolves the grid styles for app from its theme.
func StylesFor(app string) Styles {
	tm := ForApp(app)
	surface := tm.GetSemanticColor("bg.surface")
	mantle := tm.GetSemanticColor("bg.mantle")
	text := tm.GetSemanticColor("text.primary")
	inverse := tm.GetSemanticColor("text.inverse")
	accent := tm.GetSemanticColor("accent.primary")

	base := tcell.StyleDefault
	return Styles{
		Background: base.Background(surface).Foreground(text),
		Tile:       base.Background(mantle).Foreground(text),
		Selected:   base.Background(accent).Foreground(inverse),
		Label:      base.Background(mantle).Foreground(text).Bold(true),
		Prompt:     base.Background(mantle).Foreground(text),
	}
}
