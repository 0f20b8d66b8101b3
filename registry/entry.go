// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/entry.go
// Summary: Entry type and display-name derivation for registered executables.

package registry

import "strings"

// executableSuffixes are stripped from the final path segment to build a
// display name. Matching is case-insensitive.
var executableSuffixes = []string{".exe", ".bat", ".cmd", ".com", ".appimage"}

// Entry binds a display name to an executable path and optional artwork.
type Entry struct {
	// Name is the display label, derived from Path when the entry is added.
	Name string

	// Path is the executable path exactly as it was added. Never validated.
	Path string

	// Artwork is the path of the copied image, or "" when none is assigned.
	Artwork string
}

// HasArtwork reports whether artwork has been assigned to the entry.
func (e Entry) HasArtwork() bool {
	return e.Artwork != ""
}

// EntryRef identifies an entry by its position in the registry.
type EntryRef struct {
	Index int
	Name  string
}

// NameFromPath returns the display name for an executable path: the final
// path segment with a known executable suffix removed. Both '/' and '\' are
// treated as separators so Windows paths picked on any host get sensible
// labels.
func NameFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	lower := strings.ToLower(base)
	for _, suffix := range executableSuffixes {
		if strings.HasSuffix(lower, suffix) && len(base) > len(suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}
