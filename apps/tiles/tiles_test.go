// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package tiles

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/framegrace/texeltiles/gateway"
	"github.com/framegrace/texeltiles/internal/theming"
	"github.com/framegrace/texeltiles/registry"
	texelcore "github.com/framegrace/texelui/core"
	"github.com/gdamore/tcell/v2"
)

type fakeLauncher struct {
	launched []string
	err      error
}

func (f *fakeLauncher) Launch(path string) error {
	f.launched = append(f.launched, path)
	return f.err
}

var testStyles = theming.Styles{
	Background: tcell.StyleDefault,
	Tile:       tcell.StyleDefault.Background(tcell.ColorGray),
	Selected:   tcell.StyleDefault.Background(tcell.ColorBlue),
	Label:      tcell.StyleDefault.Bold(true),
	Prompt:     tcell.StyleDefault.Background(tcell.ColorGray),
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeText(app *Tiles, s string) {
	for _, r := range s {
		app.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(registry.Options{
		Artwork: registry.NewArtworkStore(filepath.Join(t.TempDir(), "artwork")),
		Logger:  log.New(io.Discard, "", 0),
	})
}

func newTestApp(t *testing.T, reg *registry.Registry, l Launcher) *Tiles {
	t.Helper()
	app := New(Options{
		Registry:   reg,
		Launcher:   l,
		TileWidth:  10,
		TileHeight: 4,
		Gap:        1,
		Styles:     &testStyles,
	})
	t.Cleanup(app.Stop)
	app.Resize(80, 24)
	return app
}

// stopped reports whether Run returns promptly.
func stopped(app *Tiles) bool {
	done := make(chan struct{})
	go func() {
		_ = app.Run()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func cloneCells(buf [][]texelcore.Cell) [][]texelcore.Cell {
	out := make([][]texelcore.Cell, len(buf))
	for y, row := range buf {
		out[y] = append([]texelcore.Cell(nil), row...)
	}
	return out
}

func mustAdd(t *testing.T, reg *registry.Registry, path string) {
	t.Helper()
	if _, err := reg.Add(path); err != nil {
		t.Fatalf("Add(%q): %v", path, err)
	}
}

func writePNG(t *testing.T, path string, w, h int, at func(x, y int) color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, at(x, y))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func solid(c color.Color) func(x, y int) color.Color {
	return func(x, y int) color.Color { return c }
}

func TestTiles_RenderDimensions(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	app.Resize(40, 10)
	buf := app.Render()
	if len(buf) != 10 || len(buf[0]) != 40 {
		t.Fatalf("unexpected buffer dimensions: %dx%d", len(buf), len(buf[0]))
	}
	app.Stop()
}

func TestTiles_RenderBeforeResize(t *testing.T) {
	app := New(Options{Registry: newTestRegistry(t), Styles: &testStyles})
	defer app.Stop()
	if buf := app.Render(); len(buf) != 0 {
		t.Fatalf("expected empty buffer before resize, got %d rows", len(buf))
	}
}

func TestTiles_RenderIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/opt/games/doom.exe")
	mustAdd(t, reg, "/usr/bin/htop")
	app := newTestApp(t, reg, &fakeLauncher{})

	first := cloneCells(app.Render())
	second := app.Render()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rendering twice produced different output")
	}
}

func TestTiles_LabelsAreRendered(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/opt/games/doom.exe")
	app := newTestApp(t, reg, &fakeLauncher{})

	if !screenContains(app.Render(), "doom") {
		t.Fatalf("expected tile label on screen")
	}
	if !screenContains(app.Render(), "Add") {
		t.Fatalf("expected add slot on screen")
	}
}

func TestTiles_StatusBarShowsGridHints(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	buf := app.Render()
	if !screenContains(buf, "Enter:Launch") {
		t.Fatalf("expected grid key hints in the status bar")
	}
	if !screenContains(buf, "Ctrl-C quit") {
		t.Fatalf("expected the quit hint in the status bar")
	}
	// 24 rows minus the two status bar rows leave 22 for the grid.
	if app.height != 22 {
		t.Fatalf("expected the grid to get the content height, got %d", app.height)
	}
}

func TestTiles_NavigationIncludesAddSlot(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	mustAdd(t, reg, "/bin/b")
	app := newTestApp(t, reg, &fakeLauncher{})

	steps := []struct {
		key  tcell.Key
		want int
	}{
		{tcell.KeyRight, 1},
		{tcell.KeyRight, 2},
		{tcell.KeyRight, 2},
		{tcell.KeyLeft, 1},
		{tcell.KeyHome, 0},
		{tcell.KeyEnd, 2},
		{tcell.KeyDown, 2},
	}
	for i, step := range steps {
		app.HandleKey(key(step.key))
		if got := app.Selected(); got != step.want {
			t.Fatalf("step %d: expected selection %d, got %d", i, step.want, got)
		}
	}
}

func TestTiles_EnterLaunchesSelected(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	mustAdd(t, reg, "/bin/b")
	fake := &fakeLauncher{}
	app := newTestApp(t, reg, fake)

	app.HandleKey(key(tcell.KeyRight))
	app.HandleKey(key(tcell.KeyEnter))

	if len(fake.launched) != 1 || fake.launched[0] != "/bin/b" {
		t.Fatalf("expected /bin/b to be launched, got %v", fake.launched)
	}
}

func TestTiles_LaunchFailureKeepsRunning(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	fake := &fakeLauncher{err: errors.New("launch \"/bin/a\": permission denied")}
	app := newTestApp(t, reg, fake)

	app.HandleKey(key(tcell.KeyEnter))

	msg, isErr := app.Status()
	if !isErr || !strings.Contains(msg, "permission denied") {
		t.Fatalf("expected error status, got %q (err=%v)", msg, isErr)
	}
	if !screenContains(app.Render(), "permission denied") {
		t.Fatalf("expected the error on the status bar")
	}
	if stopped(app) {
		t.Fatalf("app must keep running after a failed launch")
	}
	if reg.Closed() {
		t.Fatalf("registry must stay open after a failed launch")
	}

	app.HandleKey(key(tcell.KeyEsc))
	if msg, _ := app.Status(); msg != "" {
		t.Fatalf("expected Esc to clear the status, got %q", msg)
	}
	if screenContains(app.Render(), "permission denied") {
		t.Fatalf("expected Esc to clear the status bar message")
	}
}

func TestTiles_SuccessfulLaunchHandsOff(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}

	reg := newTestRegistry(t)
	mustAdd(t, reg, truePath)

	var app *Tiles
	var logBuf bytes.Buffer
	gw := gateway.New(gateway.Options{
		Logger: log.New(&logBuf, "", 0),
		Terminate: func() {
			reg.Close()
			app.Stop()
		},
	})
	app = newTestApp(t, reg, gw)

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	app.HandleKey(key(tcell.KeyEnter))

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return after a successful launch")
	}
	if !gw.Terminated() {
		t.Fatalf("expected gateway to report termination")
	}
	if _, err := reg.Add("/bin/other"); !errors.Is(err, registry.ErrClosed) {
		t.Fatalf("expected ErrClosed after hand-off, got %v", err)
	}
	if !strings.Contains(logBuf.String(), "Launching") {
		t.Fatalf("expected launch to be logged, got %q", logBuf.String())
	}
}

func TestTiles_FailedGatewayLaunchKeepsRunning(t *testing.T) {
	reg := newTestRegistry(t)
	missing := filepath.Join(t.TempDir(), "missing.exe")
	mustAdd(t, reg, missing)

	var logBuf bytes.Buffer
	gw := gateway.New(gateway.Options{
		Logger:    log.New(&logBuf, "", 0),
		Terminate: func() { t.Fatalf("terminate must not be called") },
	})
	app := newTestApp(t, reg, gw)

	app.HandleKey(key(tcell.KeyEnter))

	if gw.Terminated() {
		t.Fatalf("gateway must not terminate on failure")
	}
	if _, isErr := app.Status(); !isErr {
		t.Fatalf("expected error status")
	}
	if !strings.Contains(logBuf.String(), "Error launching app") {
		t.Fatalf("expected failure to be logged, got %q", logBuf.String())
	}
}

func TestTiles_AddThroughPrompt(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	reg := newTestRegistry(t)
	app := newTestApp(t, reg, &fakeLauncher{})

	app.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	if !app.Prompting() {
		t.Fatalf("expected executable picker to open")
	}
	typeText(app, tool)
	app.HandleKey(key(tcell.KeyEnter))

	if app.Prompting() {
		t.Fatalf("expected picker to close after a pick")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one entry, got %d", reg.Len())
	}
	entry, _ := reg.Entry(0)
	if entry.Name != "tool" || entry.Path != tool {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if app.Selected() != 0 {
		t.Fatalf("expected new tile to be selected, got %d", app.Selected())
	}
	if msg, _ := app.Status(); msg != "Added tool" {
		t.Fatalf("unexpected status %q", msg)
	}
	if !screenContains(app.Render(), "Added tool") {
		t.Fatalf("expected the notice on the status bar")
	}
}

func TestTiles_PickerTakesFocusAndHints(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})

	app.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	buf := app.Render()
	if !screenContains(buf, "Add executable") {
		t.Fatalf("expected the picker title on screen")
	}
	if !screenContains(buf, "Enter:Pick") {
		t.Fatalf("expected picker key hints in the status bar")
	}

	// Grid keys go to the picker while it is open.
	app.HandleKey(key(tcell.KeyRight))
	if app.Selected() != 0 {
		t.Fatalf("grid must not move while the picker is open")
	}

	app.HandleKey(key(tcell.KeyEsc))
	if app.Prompting() {
		t.Fatalf("expected Esc to cancel the picker")
	}
	if !screenContains(app.Render(), "Enter:Launch") {
		t.Fatalf("expected grid hints once the picker closes")
	}
}

func TestTiles_ClickOutsidePickerCancels(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	fake := &fakeLauncher{}
	app := newTestApp(t, reg, fake)

	app.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	if !app.Prompting() {
		t.Fatalf("expected executable picker to open")
	}

	// (2, 8) lies below the picker box.
	app.HandleMouse(tcell.NewEventMouse(2, 8, tcell.ButtonPrimary, tcell.ModNone))
	app.HandleMouse(tcell.NewEventMouse(2, 8, tcell.ButtonNone, tcell.ModNone))

	if app.Prompting() {
		t.Fatalf("expected a click outside the picker to cancel it")
	}
	if len(fake.launched) != 0 {
		t.Fatalf("the cancelling click must not launch, got %v", fake.launched)
	}
	if reg.Len() != 1 {
		t.Fatalf("cancelled picker must not add entries")
	}
}

func TestTiles_EnterOnAddSlotOpensPicker(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	app.HandleKey(key(tcell.KeyEnter))
	if !app.Prompting() {
		t.Fatalf("expected executable picker on the add slot")
	}
	app.HandleKey(key(tcell.KeyEsc))
	if app.Prompting() {
		t.Fatalf("expected Esc to cancel the picker")
	}
}

func TestTiles_ArtworkThroughPrompt(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/opt/games/doom.exe")
	app := newTestApp(t, reg, &fakeLauncher{})

	src := filepath.Join(t.TempDir(), "cover.png")
	writePNG(t, src, 8, 8, solid(color.RGBA{R: 255, A: 255}))

	app.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'i', tcell.ModNone))
	if !app.Prompting() {
		t.Fatalf("expected image picker to open")
	}
	typeText(app, src)
	app.HandleKey(key(tcell.KeyEnter))

	entry, err := reg.Entry(0)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if !entry.HasArtwork() || filepath.Base(entry.Artwork) != "doom-0.jpg" {
		t.Fatalf("unexpected artwork %q", entry.Artwork)
	}

	red := tcell.NewRGBColor(255, 0, 0)
	found := false
	for _, row := range app.Render() {
		for _, cell := range row {
			fg, bg, _ := cell.Style.Decompose()
			if cell.Ch == '▀' && fg == red && bg == red {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected artwork to be painted in red half blocks")
	}
}

func TestTiles_ArtworkNeedsTile(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	app.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'i', tcell.ModNone))
	if app.Prompting() {
		t.Fatalf("image picker must not open on the add slot")
	}
	if _, isErr := app.Status(); !isErr {
		t.Fatalf("expected error status")
	}
}

func TestTiles_ArtworkFailureShowsStatus(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	app := newTestApp(t, reg, &fakeLauncher{})

	err := app.ControlBus().Trigger(ControlAssignArtwork, ArtworkRequest{Index: 0, Source: "/nonexistent/cover.jpg"})
	if err == nil {
		t.Fatalf("expected artwork error")
	}
	var artErr *registry.ArtworkError
	if !errors.As(err, &artErr) {
		t.Fatalf("expected *registry.ArtworkError, got %T", err)
	}
	if _, isErr := app.Status(); !isErr {
		t.Fatalf("expected error status")
	}
	if screenContains(app.Render(), "artwork unreadable") {
		t.Fatalf("failed assignment must not bind artwork")
	}
}

func TestTiles_ControlRejectsBadPayload(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	if err := app.ControlBus().Trigger(ControlLaunch, 42); err == nil {
		t.Fatalf("expected payload error")
	}
	if err := app.ControlBus().Trigger(ControlAssignArtwork, "x"); err == nil {
		t.Fatalf("expected payload error")
	}
}

func TestTiles_MouseClickLaunches(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	mustAdd(t, reg, "/bin/b")
	fake := &fakeLauncher{}
	app := newTestApp(t, reg, fake)

	// Slot 1 starts at x = gap + tileW + gap = 12, y = gap = 1.
	app.HandleMouse(tcell.NewEventMouse(13, 2, tcell.ButtonPrimary, tcell.ModNone))
	app.HandleMouse(tcell.NewEventMouse(13, 2, tcell.ButtonPrimary, tcell.ModNone))
	app.HandleMouse(tcell.NewEventMouse(13, 2, tcell.ButtonNone, tcell.ModNone))

	if len(fake.launched) != 1 || fake.launched[0] != "/bin/b" {
		t.Fatalf("expected one launch of /bin/b, got %v", fake.launched)
	}
	if app.Selected() != 1 {
		t.Fatalf("expected clicked tile to be selected, got %d", app.Selected())
	}

	// Gaps are not tiles.
	app.HandleMouse(tcell.NewEventMouse(11, 2, tcell.ButtonPrimary, tcell.ModNone))
	if len(fake.launched) != 1 {
		t.Fatalf("click on a gap must not launch, got %v", fake.launched)
	}
}

func TestTiles_SecondaryClickOpensImagePicker(t *testing.T) {
	reg := newTestRegistry(t)
	mustAdd(t, reg, "/bin/a")
	app := newTestApp(t, reg, &fakeLauncher{})

	app.HandleMouse(tcell.NewEventMouse(2, 2, tcell.ButtonSecondary, tcell.ModNone))
	if !app.Prompting() {
		t.Fatalf("expected image picker to open")
	}
}

func TestTiles_SelectionFollowsScroll(t *testing.T) {
	reg := newTestRegistry(t)
	for i := 0; i < 20; i++ {
		mustAdd(t, reg, filepath.Join("/bin", string(rune('a'+i))))
	}
	app := newTestApp(t, reg, &fakeLauncher{})
	// 80x10 with 10x4 tiles: 7 columns, 1 visible row.
	app.Resize(80, 10)

	app.HandleKey(key(tcell.KeyDown))
	if app.Selected() != 7 {
		t.Fatalf("expected selection 7, got %d", app.Selected())
	}
	if app.scroll != 1 {
		t.Fatalf("expected second row to be scrolled into view, scroll=%d", app.scroll)
	}

	app.HandleKey(key(tcell.KeyUp))
	if app.Selected() != 0 || app.scroll != 0 {
		t.Fatalf("expected to scroll back, selection=%d scroll=%d", app.Selected(), app.scroll)
	}
}

func TestTiles_RefreshOnRegistryChange(t *testing.T) {
	reg := newTestRegistry(t)
	app := newTestApp(t, reg, &fakeLauncher{})
	refresh := make(chan bool, 1)
	app.SetRefreshNotifier(refresh)

	mustAdd(t, reg, "/bin/a")

	select {
	case <-refresh:
	default:
		t.Fatalf("expected a refresh request after Add")
	}
}

func TestTiles_StopIsIdempotent(t *testing.T) {
	app := newTestApp(t, newTestRegistry(t), &fakeLauncher{})
	app.Stop()
	app.Stop()
	if err := app.Run(); err != nil {
		t.Fatalf("Run after Stop: %v", err)
	}
}

func screenContains(buf [][]texelcore.Cell, s string) bool {
	for _, row := range buf {
		var sb strings.Builder
		for _, cell := range row {
			if cell.Ch != 0 {
				sb.WriteRune(cell.Ch)
			}
		}
		if strings.Contains(sb.String(), s) {
			return true
		}
	}
	return false
}
