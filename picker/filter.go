// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: picker/filter.go
// Summary: File classification for the executable and image pickers.

package picker

import (
	"io/fs"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Kind selects which files a prompt offers.
type Kind int

const (
	// KindExecutable offers files with an execute bit or a known
	// executable suffix.
	KindExecutable Kind = iota

	// KindImage offers image files.
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindImage:
		return "image"
	default:
		return "file"
	}
}

var executableSuffixes = []string{".exe", ".bat", ".cmd", ".com", ".appimage", ".sh"}

// Accepts reports whether a non-directory entry matches the kind.
func (k Kind) Accepts(name string, mode fs.FileMode) bool {
	switch k {
	case KindExecutable:
		return IsExecutable(name, mode)
	case KindImage:
		return IsImage(name)
	default:
		return true
	}
}

// IsExecutable reports whether a file looks launchable.
func IsExecutable(name string, mode fs.FileMode) bool {
	if mode.IsRegular() && mode.Perm()&0o111 != 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range executableSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// IsImage reports whether name has an image extension.
func IsImage(name string) bool {
	return enry.IsImage(strings.ToLower(name))
}

// hidden reports whether a name should be left out of completions for the
// typed prefix.
func hidden(name, prefix string) bool {
	return enry.IsDotFile(name) && !strings.HasPrefix(prefix, ".")
}
