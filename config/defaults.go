// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for system and app configuration files.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("artwork", Section{
		"dir": "",
	})
	cfg.RegisterDefaults("journal", Section{
		"enabled": false,
		"path":    "",
	})
	cfg.RegisterDefaults("log", Section{
		"path": "",
	})
}

func applyAppDefaults(app string, cfg Config) {
	if cfg == nil {
		return
	}
	switch app {
	case "tiles":
		cfg.RegisterDefaults("tiles", Section{
			"width":   22,
			"height":  7,
			"gap":     1,
			"columns": 0,
		})
	}
}
