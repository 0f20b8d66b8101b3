// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Default configuration shipped inside the binary.
// Usage: config falls back to these files when the user has none.

package defaults

import (
	"embed"
	"path"
)

// SystemFile is the name of the system config, both embedded and on disk.
const SystemFile = "texeltiles.json"

//go:embed texeltiles.json apps/*/config.json
var files embed.FS

// SystemConfig returns the embedded system config JSON.
func SystemConfig() ([]byte, error) {
	return files.ReadFile(SystemFile)
}

// AppConfig returns the embedded config JSON for app. Apps without
// shipped defaults return an fs.ErrNotExist error.
func AppConfig(app string) ([]byte, error) {
	return files.ReadFile(path.Join("apps", app, "config.json"))
}
