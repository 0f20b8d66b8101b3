// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeltiles/paths.go
// Summary: Standard paths for texeltiles logs, journal and artwork.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/framegrace/texeltiles/config"
)

// Paths holds the resolved file locations for one run.
type Paths struct {
	ConfigDir   string // <UserConfigDir>/texeltiles
	LogPath     string // <ConfigDir>/logs/texeltiles.log
	JournalPath string // empty when the journal is disabled
	ArtworkDir  string // <install root>/artwork
}

// resolvePaths combines flags, system config and defaults. Flags win over
// config values, config values win over defaults.
func resolvePaths(f *flags, sys config.Config) (*Paths, error) {
	root, err := config.Root()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	p := &Paths{ConfigDir: root}

	p.LogPath = firstNonEmpty(f.logPath, sys.GetString("log", "path", ""),
		filepath.Join(root, "logs", "texeltiles.log"))

	p.ArtworkDir = firstNonEmpty(f.artworkDir, sys.GetString("artwork", "dir", ""))
	if p.ArtworkDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		p.ArtworkDir = filepath.Join(filepath.Dir(exe), "artwork")
	}

	switch {
	case f.journalPath != "":
		p.JournalPath = f.journalPath
	case sys.GetBool("journal", "enabled", false):
		p.JournalPath = firstNonEmpty(sys.GetString("journal", "path", ""),
			filepath.Join(root, "journal.db"))
	}

	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// setupLogging redirects the standard logger to path, since the terminal
// belongs to the UI.
func setupLogging(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return file, nil
}
