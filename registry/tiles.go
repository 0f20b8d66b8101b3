// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/tiles.go
// Summary: Pure projection from entries to tile descriptions.

package registry

// Tile describes how one entry is shown in the grid.
type Tile struct {
	Index   int
	Label   string
	Path    string
	Artwork string
}

// HasArtwork reports whether the tile should be drawn over its artwork.
func (t Tile) HasArtwork() bool {
	return t.Artwork != ""
}

// Project builds one tile per entry, in entry order.
func Project(entries []Entry) []Tile {
	tiles := make([]Tile, len(entries))
	for i, e := range entries {
		tiles[i] = Tile{
			Index:   i,
			Label:   e.Name,
			Path:    e.Path,
			Artwork: e.Artwork,
		}
	}
	return tiles
}
