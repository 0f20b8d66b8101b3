// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/registry.go
// Summary: Implements the tile registry holding launchable executables.
// Usage: The tiles app adds entries from the executable picker and binds
// artwork from the image picker; every mutation re-renders the grid.

package registry

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrClosed is returned by mutations after Close, i.e. once the
	// launcher has handed off to a launched program.
	ErrClosed = errors.New("registry closed")

	// ErrNoEntry is returned when an index does not name an entry.
	ErrNoEntry = errors.New("no such entry")
)

// Renderer receives the full tile projection after every mutation.
type Renderer func(tiles []Tile)

// Recorder stores operator-visible outcome events.
type Recorder interface {
	Record(kind, subject string, cause error) error
}

// Options configures a Registry.
type Options struct {
	// Artwork is the store used by AssignArtwork. Required for artwork.
	Artwork *ArtworkStore

	// Logger receives error reports. Defaults to the standard logger.
	Logger *log.Logger

	// Recorder, when set, receives artwork outcome events.
	Recorder Recorder
}

// Registry holds the ordered list of registered executables.
type Registry struct {
	mu       sync.RWMutex
	entries  []Entry
	artwork  *ArtworkStore
	logger   *log.Logger
	recorder Recorder
	renderer Renderer
	closed   bool
}

// New creates an empty registry.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		artwork:  opts.Artwork,
		logger:   logger,
		recorder: opts.Recorder,
	}
}

// SetRenderer installs the function that receives tile projections.
func (r *Registry) SetRenderer(fn Renderer) {
	r.mu.Lock()
	r.renderer = fn
	r.mu.Unlock()
}

// Add appends an entry for path and re-renders. The path is not checked;
// a nonexistent program is only discovered when it is launched.
func (r *Registry) Add(path string) (EntryRef, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return EntryRef{Index: -1}, ErrClosed
	}
	entry := Entry{Name: NameFromPath(path), Path: path}
	r.entries = append(r.entries, entry)
	ref := EntryRef{Index: len(r.entries) - 1, Name: entry.Name}
	r.mu.Unlock()

	r.logger.Printf("Registry: Added '%s' (%s) at %d", entry.Name, path, ref.Index)
	r.Render()
	return ref, nil
}

// AssignArtwork copies source into the artwork directory for the entry at
// index and records the copy as that entry's artwork. On failure the entry
// keeps its previous artwork and the error is logged and returned.
func (r *Registry) AssignArtwork(index int, source string) error {
	r.mu.RLock()
	closed := r.closed
	var entry Entry
	ok := index >= 0 && index < len(r.entries)
	if ok {
		entry = r.entries[index]
	}
	store := r.artwork
	r.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !ok {
		return r.artworkFailed(&ArtworkError{Index: index, Source: source, Err: ErrNoEntry})
	}
	if store == nil {
		return r.artworkFailed(&ArtworkError{Index: index, Source: source, Err: errors.New("no artwork store")})
	}

	dest, err := store.Copy(source, entry.Name, index)
	if err != nil {
		return r.artworkFailed(&ArtworkError{Index: index, Source: source, Dest: dest, Err: err})
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.entries[index].Artwork = dest
	r.mu.Unlock()

	r.logger.Printf("Registry: Artwork for '%s' saved to %s", entry.Name, dest)
	r.record("artwork", dest, nil)
	r.Render()
	return nil
}

func (r *Registry) artworkFailed(err *ArtworkError) error {
	r.logger.Printf("Registry: Error saving artwork: %v", err)
	r.record("artwork", err.Source, err)
	return err
}

func (r *Registry) record(kind, subject string, cause error) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(kind, subject, cause); err != nil {
		r.logger.Printf("Registry: Failed to record %s event: %v", kind, err)
	}
}

// Render hands the current projection to the renderer, if one is set.
func (r *Registry) Render() {
	r.mu.RLock()
	fn := r.renderer
	tiles := Project(r.entries)
	r.mu.RUnlock()

	if fn != nil {
		fn(tiles)
	}
}

// Tiles returns the current projection without notifying the renderer.
func (r *Registry) Tiles() []Tile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Project(r.entries)
}

// Entries returns a copy of the entries in insertion order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Entry returns the entry at index.
func (r *Registry) Entry(index int) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.entries) {
		return Entry{}, fmt.Errorf("entry %d: %w", index, ErrNoEntry)
	}
	return r.entries[index], nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close seals the registry. Later mutations return ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
