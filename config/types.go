// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/types.go
// Summary: Typed getters and copy helpers for config maps.

package config

import (
	"encoding/json"
	"strconv"
)

// Section returns the named section or nil if missing. An empty name
// addresses the top level.
func (c Config) Section(sectionName string) Section {
	if c == nil {
		return nil
	}
	if sectionName == "" {
		return Section(c)
	}
	return asSection(c[sectionName])
}

func asSection(raw interface{}) Section {
	switch v := raw.(type) {
	case Section:
		return v
	case map[string]interface{}:
		return Section(v)
	}
	return nil
}

// RegisterDefaults fills missing keys of a section without overwriting
// existing ones.
func (c Config) RegisterDefaults(sectionName string, defaults Section) {
	if c == nil || defaults == nil {
		return
	}
	section := c.Section(sectionName)
	if section == nil {
		section = make(Section, len(defaults))
		c[sectionName] = section
	}
	for key, value := range defaults {
		if _, ok := section[key]; !ok {
			section[key] = value
		}
	}
}

func (c Config) lookup(sectionName, key string) (interface{}, bool) {
	section := c.Section(sectionName)
	if section == nil {
		return nil, false
	}
	val, ok := section[key]
	return val, ok
}

// GetString returns a string value, or defaultValue when missing or not a
// string.
func (c Config) GetString(sectionName, key, defaultValue string) string {
	if v, ok := c.lookup(sectionName, key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetInt returns an integer value. JSON numbers and numeric strings are
// accepted.
func (c Config) GetInt(sectionName, key string, defaultValue int) int {
	v, ok := c.lookup(sectionName, key)
	if !ok {
		return defaultValue
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		if parsed, err := n.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetBool returns a boolean value. Numbers are true when non-zero.
func (c Config) GetBool(sectionName, key string, defaultValue bool) bool {
	v, ok := c.lookup(sectionName, key)
	if !ok {
		return defaultValue
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return defaultValue
}

// Clone copies cfg one level deep so sections can be modified without
// touching the original.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	out := make(Config, len(cfg))
	for name, raw := range cfg {
		section := asSection(raw)
		if section == nil {
			out[name] = raw
			continue
		}
		copied := make(Section, len(section))
		for key, value := range section {
			copied[key] = value
		}
		out[name] = copied
	}
	return out
}
