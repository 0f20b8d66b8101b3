// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/tiles/tiles.go
// Summary: Implements the tile grid app that lists registered executables.
// Usage: Arrows or the mouse select a tile, Enter or a click launches it,
// 'a' adds an executable and 'i' binds artwork to the selected tile.

package tiles

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/framegrace/texeltiles/internal/theming"
	"github.com/framegrace/texeltiles/picker"
	"github.com/framegrace/texeltiles/registry"
	"github.com/framegrace/texelui/adapter"
	texelcore "github.com/framegrace/texelui/core"
	"github.com/framegrace/texelui/widgets"
	"github.com/gdamore/tcell/v2"
)

// Control identifiers registered on the app's bus.
const (
	ControlLaunch        = "tiles.launch"
	ControlAdd           = "tiles.add"
	ControlAssignArtwork = "tiles.assign-artwork"
)

// errorDuration keeps failures on the status bar longer than notices.
const errorDuration = 10 * time.Second

// Compile-time interface checks
var _ texelcore.App = (*Tiles)(nil)
var _ texelcore.ControlBusProvider = (*Tiles)(nil)

// Launcher starts the program behind a tile.
type Launcher interface {
	Launch(path string) error
}

// ArtworkRequest is the payload of ControlAssignArtwork.
type ArtworkRequest struct {
	Index  int
	Source string
}

// Options configures the tile grid.
type Options struct {
	Registry *registry.Registry
	Launcher Launcher

	TileWidth  int
	TileHeight int
	Gap        int
	Columns    int // 0 fits as many as the width allows

	// Styles defaults to the "tiles" theme.
	Styles *theming.Styles

	// StartDir is where the pickers open first.
	StartDir string
}

// Tiles is the launcher grid.
type Tiles struct {
	*adapter.UIApp

	reg      *registry.Registry
	launcher Launcher
	bus      texelcore.ControlBus
	styles   theming.Styles

	view      *tileView
	prompt    *picker.Prompt
	statusBar *widgets.StatusBar

	tileW, tileH, gap, columns int

	mu            sync.Mutex
	tiles         []registry.Tile
	selected      int
	scroll        int
	width, height int

	promptTarget int // tile index for the image picker, -1 for the executable picker
	lastDir      string
	pending      []action

	status    string
	statusErr bool

	thumbs      map[thumbKey]*thumbnail
	prevButtons tcell.ButtonMask

	stopOnce sync.Once
}

// New creates the grid and subscribes it to registry changes.
func New(opts Options) *Tiles {
	styles := opts.Styles
	if styles == nil {
		s := theming.StylesFor("tiles")
		styles = &s
	}
	t := &Tiles{
		reg:          opts.Registry,
		launcher:     opts.Launcher,
		bus:          texelcore.NewControlBus(),
		styles:       *styles,
		tileW:        opts.TileWidth,
		tileH:        opts.TileHeight,
		gap:          opts.Gap,
		columns:      opts.Columns,
		promptTarget: -1,
		lastDir:      opts.StartDir,
		thumbs:       make(map[thumbKey]*thumbnail),
	}
	if t.tileW <= 0 {
		t.tileW = 22
	}
	if t.tileH <= 0 {
		t.tileH = 7
	}
	if t.gap < 0 {
		t.gap = 1
	}

	ui := texelcore.NewUIManager()
	// Enter activates tiles; it never moves focus.
	ui.AdvanceFocusOnEnter = false
	t.UIApp = adapter.NewUIApp("Tiles", ui)
	t.buildUI()

	t.registerControls()
	if t.reg != nil {
		t.reg.SetRenderer(t.onTiles)
		t.reg.Render()
	}
	return t
}

// buildUI installs the grid as root widget, the picker above it and the
// status bar hints.
func (t *Tiles) buildUI() {
	ui := t.UI()

	t.view = newTileView(t)
	ui.SetRootWidget(t.view)

	t.prompt = picker.New()
	t.prompt.SetStyle(t.styles.Prompt)
	ui.AddWidget(t.prompt)

	t.statusBar = t.StatusBar()
	t.statusBar.SetHintText("Ctrl-C quit")

	t.SetOnResize(t.layoutPrompt)
	ui.Focus(t.view)
}

// layoutPrompt places the picker box near the top so its dropdown has
// room below.
func (t *Tiles) layoutPrompt(cols, rows int) {
	w := cols - 4
	if w < 8 {
		w = cols
	}
	t.prompt.SetPosition((cols-w)/2, 1)
	t.prompt.Resize(w, 3)
}

func (t *Tiles) registerControls() {
	_ = t.bus.Register(ControlLaunch, "Launch the executable at the given path", func(payload interface{}) error {
		path, ok := payload.(string)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", ControlLaunch, payload)
		}
		return t.launch(path)
	})
	_ = t.bus.Register(ControlAdd, "Register an executable as a new tile", func(payload interface{}) error {
		path, ok := payload.(string)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", ControlAdd, payload)
		}
		return t.add(path)
	})
	_ = t.bus.Register(ControlAssignArtwork, "Bind an image to a tile", func(payload interface{}) error {
		req, ok := payload.(ArtworkRequest)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", ControlAssignArtwork, payload)
		}
		return t.assignArtwork(req)
	})
}

// ControlBus returns the app's control bus for external registration.
func (t *Tiles) ControlBus() texelcore.ControlBus {
	return t.bus
}

// RegisterControl implements texelcore.ControlBusProvider.
func (t *Tiles) RegisterControl(id, description string, handler func(payload interface{}) error) error {
	return t.bus.Register(id, description, texelcore.ControlHandler(handler))
}

// onTiles receives the registry projection. It is called without t.mu held.
func (t *Tiles) onTiles(tiles []registry.Tile) {
	t.mu.Lock()
	t.tiles = tiles
	if t.selected > len(tiles) {
		t.selected = len(tiles)
	}
	// Artwork files may be rewritten in place.
	t.thumbs = make(map[thumbKey]*thumbnail)
	t.followLocked()
	t.mu.Unlock()
	t.UI().InvalidateAll()
}

func (t *Tiles) launch(path string) error {
	if t.launcher == nil {
		return fmt.Errorf("no launcher configured")
	}
	t.showStatus("Launching "+registry.NameFromPath(path), widgets.MessageInfo)
	if err := t.launcher.Launch(path); err != nil {
		t.showStatus(err.Error(), widgets.MessageError)
		return err
	}
	return nil
}

func (t *Tiles) add(path string) error {
	if t.reg == nil {
		return fmt.Errorf("no registry configured")
	}
	ref, err := t.reg.Add(path)
	if err != nil {
		t.showStatus(err.Error(), widgets.MessageError)
		return err
	}
	t.mu.Lock()
	t.selected = ref.Index
	t.followLocked()
	t.mu.Unlock()
	t.showStatus(fmt.Sprintf("Added %s", ref.Name), widgets.MessageSuccess)
	return nil
}

func (t *Tiles) assignArtwork(req ArtworkRequest) error {
	if t.reg == nil {
		return fmt.Errorf("no registry configured")
	}
	if err := t.reg.AssignArtwork(req.Index, req.Source); err != nil {
		t.showStatus(err.Error(), widgets.MessageError)
		return err
	}
	t.showStatus("Artwork updated", widgets.MessageSuccess)
	return nil
}

// showStatus replaces the status bar message.
func (t *Tiles) showStatus(msg string, level widgets.MessageLevel) {
	t.mu.Lock()
	t.status = msg
	t.statusErr = level == widgets.MessageError
	t.mu.Unlock()

	t.statusBar.ClearMessages()
	switch level {
	case widgets.MessageError:
		t.statusBar.ShowErrorWithDuration(msg, errorDuration)
	case widgets.MessageSuccess:
		t.statusBar.ShowSuccess(msg)
	default:
		t.statusBar.ShowMessage(msg)
	}
}

func (t *Tiles) clearStatus() {
	t.mu.Lock()
	t.status = ""
	t.statusErr = false
	t.mu.Unlock()
	t.statusBar.ClearMessages()
}

// Status returns the last status bar message and whether it reports an
// error.
func (t *Tiles) Status() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.statusErr
}

// Selected returns the highlighted slot. len(tiles) is the add slot.
func (t *Tiles) Selected() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// Prompting reports whether a picker is open.
func (t *Tiles) Prompting() bool {
	return t.prompt.IsOpen()
}

// setArea records the content area given to the root widget.
func (t *Tiles) setArea(w, h int) {
	t.mu.Lock()
	t.width, t.height = w, h
	t.followLocked()
	t.mu.Unlock()
}

func (t *Tiles) layoutLocked() grid {
	return newGrid(t.width, t.height, t.tileW, t.tileH, t.gap, t.columns)
}

func (t *Tiles) followLocked() {
	if t.width <= 0 || t.height <= 0 {
		return
	}
	t.scroll = t.layoutLocked().follow(t.selected, t.scroll)
}

func (t *Tiles) slotsLocked() int {
	return len(t.tiles) + 1
}

// action is work decided under t.mu and carried out once no lock is held:
// bus handlers re-enter the registry, which re-enters onTiles, and opening
// the picker moves UIManager focus.
type action func()

func (t *Tiles) queueLocked(a action) {
	t.pending = append(t.pending, a)
}

func (t *Tiles) runPending() {
	t.mu.Lock()
	acts := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, act := range acts {
		act()
	}
}

func (t *Tiles) activateLocked(slot int) {
	if slot == len(t.tiles) {
		t.queueLocked(func() { t.openPrompt(picker.KindExecutable, "Add executable", -1) })
		return
	}
	if slot < 0 || slot > len(t.tiles) {
		return
	}
	path := t.tiles[slot].Path
	bus := t.bus
	t.queueLocked(func() {
		log.Printf("Tiles: Signaling launch of '%s'", path)
		_ = bus.Trigger(ControlLaunch, path)
	})
}

func (t *Tiles) openArtworkPromptLocked(slot int) {
	if slot < 0 || slot >= len(t.tiles) {
		t.queueLocked(func() { t.showStatus("Select a tile before choosing artwork", widgets.MessageError) })
		return
	}
	title := "Artwork for " + t.tiles[slot].Label
	t.queueLocked(func() { t.openPrompt(picker.KindImage, title, slot) })
}

func (t *Tiles) openPrompt(kind picker.Kind, title string, target int) {
	t.mu.Lock()
	t.promptTarget = target
	start := t.lastDir
	t.mu.Unlock()

	t.prompt.Open(kind, title, start)
	t.UI().Focus(t.prompt)
	t.UI().InvalidateAll()
}

// settlePrompt closes the picker once it has an outcome and acts on it.
func (t *Tiles) settlePrompt() {
	if !t.prompt.IsOpen() {
		return
	}
	path, state := t.prompt.Result()
	if state == picker.Pending {
		return
	}
	t.prompt.Close()
	t.UI().Focus(t.view)
	t.UI().InvalidateAll()

	t.mu.Lock()
	target := t.promptTarget
	t.promptTarget = -1
	if state == picker.Picked {
		t.lastDir = filepath.Dir(path) + string(filepath.Separator)
	}
	t.mu.Unlock()

	if state != picker.Picked {
		return
	}
	if target < 0 {
		_ = t.bus.Trigger(ControlAdd, path)
		return
	}
	_ = t.bus.Trigger(ControlAssignArtwork, ArtworkRequest{Index: target, Source: path})
}

// HandleKey routes keys through the UIManager to the grid or, while it is
// open, the picker. Work they queue runs afterwards.
func (t *Tiles) HandleKey(ev *tcell.EventKey) {
	t.UIApp.HandleKey(ev)
	t.settlePrompt()
	t.runPending()
}

// gridKey handles a key for the focused grid. It runs under the
// UIManager lock.
func (t *Tiles) gridKey(ev *tcell.EventKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := t.layoutLocked()
	slots := t.slotsLocked()
	handled := true

	switch ev.Key() {
	case tcell.KeyLeft:
		t.selected = g.move(t.selected, -1, 0, slots)
	case tcell.KeyRight:
		t.selected = g.move(t.selected, 1, 0, slots)
	case tcell.KeyUp:
		t.selected = g.move(t.selected, 0, -1, slots)
	case tcell.KeyDown:
		t.selected = g.move(t.selected, 0, 1, slots)
	case tcell.KeyHome:
		t.selected = 0
	case tcell.KeyEnd:
		t.selected = slots - 1
	case tcell.KeyEnter:
		t.activateLocked(t.selected)
	case tcell.KeyEsc:
		t.queueLocked(t.clearStatus)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a', '+':
			t.queueLocked(func() { t.openPrompt(picker.KindExecutable, "Add executable", -1) })
		case 'i':
			t.openArtworkPromptLocked(t.selected)
		case 'h':
			t.selected = g.move(t.selected, -1, 0, slots)
		case 'l':
			t.selected = g.move(t.selected, 1, 0, slots)
		case 'k':
			t.selected = g.move(t.selected, 0, -1, slots)
		case 'j':
			t.selected = g.move(t.selected, 0, 1, slots)
		default:
			handled = false
		}
	default:
		handled = false
	}
	t.followLocked()
	return handled
}

// HandleMouse selects and activates tiles. The primary button launches,
// the secondary button opens the artwork picker and the wheel scrolls.
// While the picker is open, events go to it through the UIManager; a
// click outside cancels it.
func (t *Tiles) HandleMouse(ev *tcell.EventMouse) {
	if t.prompt.IsOpen() {
		t.mu.Lock()
		t.prevButtons = ev.Buttons()
		t.mu.Unlock()
		t.UIApp.HandleMouse(ev)
		t.settlePrompt()
		t.runPending()
		return
	}

	// The UIManager only routes primary presses to widgets, so the grid
	// reads mouse events itself.
	if t.gridMouse(ev) {
		t.UI().InvalidateAll()
	}
	t.runPending()
}

func (t *Tiles) gridMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	buttons := ev.Buttons()

	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.prevButtons
	t.prevButtons = buttons
	if t.width <= 0 || t.height <= 0 {
		return false
	}

	g := t.layoutLocked()
	slots := t.slotsLocked()

	switch {
	case buttons&tcell.WheelUp != 0:
		if t.scroll > 0 {
			t.scroll--
		}
	case buttons&tcell.WheelDown != 0:
		maxScroll := (slots-1)/g.cols - g.visible + 1
		if t.scroll < maxScroll {
			t.scroll++
		}
	case buttons&tcell.ButtonPrimary != 0 && prev&tcell.ButtonPrimary == 0:
		slot := g.slotAt(x, y, t.scroll, slots)
		if slot < 0 {
			return false
		}
		t.selected = slot
		t.activateLocked(slot)
	case buttons&tcell.ButtonSecondary != 0 && prev&tcell.ButtonSecondary == 0:
		slot := g.slotAt(x, y, t.scroll, slots)
		if slot < 0 {
			return false
		}
		t.selected = slot
		t.openArtworkPromptLocked(slot)
	default:
		return false
	}
	return true
}

// Stop ends Run and the status bar ticker. It is safe to call more than
// once.
func (t *Tiles) Stop() {
	t.stopOnce.Do(func() {
		t.statusBar.Stop()
		t.UIApp.Stop()
	})
}
