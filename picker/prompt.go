// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: picker/prompt.go
// Summary: Path picker widget built on an editable ComboBox.
// Usage: The tiles app adds one Prompt to its UIManager, opens it for the
// executable or image picker and reads Result after each event.

package picker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/framegrace/texelui/core"
	"github.com/framegrace/texelui/widgets"
	"github.com/gdamore/tcell/v2"
)

// maxCandidates bounds how many directory entries are offered.
const maxCandidates = 1000

// State is the outcome of the events fed to a Prompt so far.
type State int

const (
	// Pending means the prompt is still open.
	Pending State = iota
	// Picked means a path was chosen.
	Picked
	// Cancelled means the prompt was dismissed without a path.
	Cancelled
)

var (
	_ core.Widget           = (*Prompt)(nil)
	_ core.Modal            = (*Prompt)(nil)
	_ core.MouseAware       = (*Prompt)(nil)
	_ core.KeyHintsProvider = (*Prompt)(nil)
)

// Prompt collects at most one path per Open. It is modal while open, so
// the UIManager hands it every key.
type Prompt struct {
	core.BaseWidget

	kind  Kind
	open  bool
	state State
	path  string

	frame *widgets.Pane
	title *widgets.Label
	combo *widgets.ComboBox

	listed string // listing key of combo.Items
	home   string
	inv    func(core.Rect)
}

// New creates a closed prompt.
func New() *Prompt {
	home, _ := os.UserHomeDir()
	p := &Prompt{
		frame: widgets.NewPane(),
		title: widgets.NewLabel(""),
		combo: widgets.NewComboBox(nil, true),
		home:  home,
	}
	p.SetZIndex(50)
	p.Resize(40, 3)
	return p
}

// SetStyle sets the backdrop and title colors.
func (p *Prompt) SetStyle(style tcell.Style) {
	p.frame.Style = style
	p.title.Style = style.Bold(true)
}

// Open resets the prompt for a new pick of the given kind. A start ending
// in a separator lists that directory right away.
func (p *Prompt) Open(kind Kind, title, start string) {
	p.kind = kind
	p.open = true
	p.state = Pending
	p.path = ""
	p.title.Text = " " + title + " (" + kind.String() + ")"

	// A fresh combo drops the dropdown position of the previous pick.
	p.combo = widgets.NewComboBox(nil, true)
	p.combo.Placeholder = "path"
	if p.inv != nil {
		p.combo.SetInvalidator(p.inv)
	}
	p.layout()

	p.listed = ""
	p.combo.SetValue(start)
	p.sync(true)
	p.SetFocusable(true)
	p.invalidate()
}

// Close hides the prompt. Result keeps the last outcome.
func (p *Prompt) Close() {
	p.open = false
	p.SetFocusable(false)
	p.Blur()
	p.invalidate()
}

// IsOpen reports whether the prompt is shown.
func (p *Prompt) IsOpen() bool {
	return p.open
}

// Result returns the outcome so far. When the state is Picked, path holds
// the chosen file as an absolute path.
func (p *Prompt) Result() (string, State) {
	return p.path, p.state
}

// Kind returns the kind of files offered.
func (p *Prompt) Kind() Kind {
	return p.kind
}

// Input returns the text typed so far.
func (p *Prompt) Input() string {
	return p.combo.Value()
}

// Candidates returns the entries matching the input. Directories come
// first and end with a separator. The slice is newly allocated.
func (p *Prompt) Candidates() []string {
	lower := strings.ToLower(p.combo.Value())
	out := make([]string, 0, len(p.combo.Items))
	for _, item := range p.combo.Items {
		if strings.HasPrefix(strings.ToLower(item), lower) {
			out = append(out, item)
		}
	}
	return out
}

// Browsing reports whether the candidate dropdown is expanded.
func (p *Prompt) Browsing() bool {
	return p.combo.IsModal()
}

func (p *Prompt) SetPosition(x, y int) {
	p.BaseWidget.SetPosition(x, y)
	p.layout()
}

func (p *Prompt) Resize(w, h int) {
	p.BaseWidget.Resize(w, h)
	p.layout()
}

func (p *Prompt) layout() {
	r := p.Rect
	inner := r.W - 2
	if inner < 4 {
		inner = 4
	}
	p.frame.SetPosition(r.X, r.Y)
	p.frame.Resize(r.W, r.H)
	p.title.SetPosition(r.X+1, r.Y)
	p.title.Resize(inner, 1)
	p.combo.SetPosition(r.X+1, r.Y+1)
	p.combo.Resize(inner, 1)
}

func (p *Prompt) Focus() {
	p.BaseWidget.Focus()
	p.combo.Focus()
}

// Blur skips ComboBox.Blur, which would commit the autocomplete suggestion.
func (p *Prompt) Blur() {
	p.BaseWidget.Blur()
	p.combo.BaseWidget.Blur()
}

// SetInvalidator implements core.InvalidationAware.
func (p *Prompt) SetInvalidator(fn func(core.Rect)) {
	p.inv = fn
	p.frame.SetInvalidator(fn)
	p.title.SetInvalidator(fn)
	p.combo.SetInvalidator(fn)
}

func (p *Prompt) invalidate() {
	if p.inv != nil {
		p.inv(p.Rect)
	}
}

// IsModal implements core.Modal.
func (p *Prompt) IsModal() bool {
	return p.open
}

// DismissModal cancels the pick. The UIManager calls it for clicks
// outside the prompt.
func (p *Prompt) DismissModal() {
	if p.open {
		p.finish("", Cancelled)
	}
}

// GetKeyHints implements core.KeyHintsProvider.
func (p *Prompt) GetKeyHints() []core.KeyHint {
	if p.combo.IsModal() {
		return p.combo.GetKeyHints()
	}
	return []core.KeyHint{
		{Key: "Tab", Label: "Complete"},
		{Key: "↑↓", Label: "Browse"},
		{Key: "Enter", Label: "Pick"},
		{Key: "Esc", Label: "Cancel"},
	}
}

func (p *Prompt) Draw(painter *core.Painter) {
	if !p.open {
		return
	}
	p.frame.Draw(painter)
	p.title.Draw(painter)
	p.combo.Draw(painter)
}

func (p *Prompt) HitTest(x, y int) bool {
	if !p.open {
		return false
	}
	return p.Rect.Contains(x, y) || p.combo.HitTest(x, y)
}

// HandleMouse forwards clicks to the combo box. Choosing a directory from
// the dropdown lists it.
func (p *Prompt) HandleMouse(ev *tcell.EventMouse) bool {
	if !p.open {
		return false
	}
	handled := p.combo.HandleMouse(ev)
	p.sync(false)
	return handled
}

// HandleKey applies a key event. Every key is consumed while the prompt
// is open.
func (p *Prompt) HandleKey(ev *tcell.EventKey) bool {
	if !p.open {
		return false
	}
	switch ev.Key() {
	case tcell.KeyEsc:
		if p.combo.IsModal() {
			p.combo.HandleKey(ev)
			return true
		}
		p.finish("", Cancelled)

	case tcell.KeyEnter:
		if p.combo.IsModal() {
			p.combo.HandleKey(ev)
			if choice := p.combo.Value(); !isDirText(choice) {
				p.finish(p.resolve(choice), Picked)
				return true
			}
			p.sync(false)
			return true
		}
		text := strings.TrimSpace(p.combo.Value())
		switch {
		case text == "":
			p.finish("", Cancelled)
		case isDirText(text):
			p.sync(false)
		default:
			p.finish(p.resolve(text), Picked)
		}

	case tcell.KeyTab:
		p.complete()

	case tcell.KeyCtrlU:
		p.combo.SetValue("")
		p.sync(false)

	default:
		p.combo.HandleKey(ev)
		p.sync(false)
	}
	return true
}

func (p *Prompt) finish(path string, st State) {
	p.path = path
	p.state = st
}

// complete extends the input with the longest prefix shared by all
// candidates.
func (p *Prompt) complete() {
	matches := p.Candidates()
	if len(matches) == 0 {
		return
	}
	common := matches[0]
	for _, c := range matches[1:] {
		common = commonPrefix(common, c)
	}
	if len(common) > len(p.combo.Value()) {
		p.combo.SetValue(common)
		p.sync(false)
	}
}

// resolve turns a picked path into an absolute one so it does not depend
// on PATH lookup or the working directory at launch time.
func (p *Prompt) resolve(path string) string {
	path = p.expand(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (p *Prompt) expand(path string) string {
	if p.home != "" && (path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator))) {
		return filepath.Join(p.home, path[1:])
	}
	return path
}

// split separates the typed text into the directory to list and the name
// prefix to match.
func (p *Prompt) split() (display, dir, prefix string) {
	text := p.combo.Value()
	sep := string(filepath.Separator)
	if text == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", ""
		}
		return cwd + sep, cwd, ""
	}
	if i := strings.LastIndex(text, sep); i >= 0 {
		display = text[:i+1]
		prefix = text[i+1:]
	} else {
		prefix = text
	}
	dir = p.expand(display)
	if dir == "" {
		dir = "."
	}
	return display, dir, prefix
}

// sync relists the directory when the input moved to another one or
// started asking for dotfiles.
func (p *Prompt) sync(force bool) {
	display, dir, prefix := p.split()
	key := "\x00" + display
	if strings.HasPrefix(prefix, ".") {
		key += "\x00."
	}
	if key == p.listed && !force {
		return
	}
	p.listed = key
	p.combo.Items = p.list(display, dir, prefix)
	// SetValue refilters the dropdown against the new items.
	p.combo.SetValue(p.combo.Value())
}

// list returns the directories and accepted files in dir as display
// paths, in a newly allocated slice.
func (p *Prompt) list(display, dir, prefix string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var dirs, files []string
	for _, entry := range entries {
		name := entry.Name()
		if hidden(name, prefix) {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if info.IsDir() {
			dirs = append(dirs, display+name+string(filepath.Separator))
			continue
		}
		if p.kind.Accepts(name, info.Mode()) {
			files = append(files, display+name)
		}
	}

	sort.Strings(dirs)
	sort.Strings(files)
	items := make([]string, 0, len(dirs)+len(files))
	items = append(items, dirs...)
	items = append(items, files...)
	if len(items) > maxCandidates {
		items = items[:maxCandidates]
	}
	return items
}

func isDirText(text string) bool {
	return strings.HasSuffix(text, string(filepath.Separator))
}

func commonPrefix(a, b string) string {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	i := 0
	for i < n && ar[i] == br[i] {
		i++
	}
	return string(ar[:i])
}
