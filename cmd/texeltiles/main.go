// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeltiles/main.go
// Summary: Entry point for the texeltiles launcher.
// Usage: texeltiles [flags] [executable...]. Each positional path becomes a
// tile. Launching a tile starts it and exits the launcher.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/framegrace/texeltiles/apps/tiles"
	"github.com/framegrace/texeltiles/config"
	"github.com/framegrace/texeltiles/gateway"
	"github.com/framegrace/texeltiles/journal"
	"github.com/framegrace/texeltiles/registry"
	texelcore "github.com/framegrace/texelui/core"
	"github.com/framegrace/texelui/runtime"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

type flags struct {
	artworkDir  string
	logPath     string
	journalPath string
	columns     int
	history     int
	paths       []string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("texeltiles", flag.ContinueOnError)
	fs.StringVar(&f.artworkDir, "artwork-dir", "", "directory artwork is copied into (default: artwork/ next to the binary)")
	fs.StringVar(&f.logPath, "log", "", "log file path")
	fs.StringVar(&f.journalPath, "journal", "", "record launch and artwork outcomes in this SQLite file")
	fs.IntVar(&f.columns, "columns", -1, "fixed number of tile columns (0 fits the width)")
	fs.IntVar(&f.history, "history", 0, "print the last N journal events and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: texeltiles [flags] [executable...]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.paths = fs.Args()
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "texeltiles: %v\n", err)
		os.Exit(1)
	}
}

func run(f *flags) error {
	sys := config.System()
	if err := config.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "texeltiles: config: %v (using defaults)\n", err)
	}

	paths, err := resolvePaths(f, sys)
	if err != nil {
		return err
	}

	if f.history > 0 {
		return printHistory(os.Stdout, paths.JournalPath, f.history)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	logFile, err := setupLogging(paths.LogPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log.Printf("Tiles: Starting (artwork dir %s)", paths.ArtworkDir)

	artwork := registry.NewArtworkStore(paths.ArtworkDir)
	if err := artwork.EnsureDir(); err != nil {
		// Not fatal: assignment retries and reports the failure.
		log.Printf("Tiles: Cannot create artwork dir %s: %v", paths.ArtworkDir, err)
	}

	regOpts := registry.Options{Artwork: artwork}
	gwOpts := gateway.Options{}
	if paths.JournalPath != "" {
		j, err := journal.Open(paths.JournalPath)
		if err != nil {
			log.Printf("Tiles: Journal disabled: %v", err)
		} else {
			defer j.Close()
			regOpts.Recorder = j
			gwOpts.Recorder = j
		}
	}

	reg := registry.New(regOpts)
	addInitial(reg, f.paths)

	appCfg := config.App("tiles")
	columns := appCfg.GetInt("tiles", "columns", 0)
	if f.columns >= 0 {
		columns = f.columns
	}
	startDir, _ := os.Getwd()
	if startDir != "" {
		startDir += string(filepath.Separator)
	}

	var app *tiles.Tiles
	gwOpts.Terminate = func() {
		reg.Close()
		app.Stop()
	}
	gw := gateway.New(gwOpts)

	app = tiles.New(tiles.Options{
		Registry:   reg,
		Launcher:   gw,
		TileWidth:  appCfg.GetInt("tiles", "width", 22),
		TileHeight: appCfg.GetInt("tiles", "height", 7),
		Gap:        appCfg.GetInt("tiles", "gap", 1),
		Columns:    columns,
		StartDir:   startDir,
	})

	builder := func(_ []string) (texelcore.App, error) {
		return app, nil
	}
	opts := runtime.Options{ExitKey: tcell.KeyCtrlC}
	if err := runtime.RunWithOptions(builder, opts); err != nil {
		return err
	}
	if gw.Terminated() {
		log.Printf("Tiles: Handed off, exiting")
	}
	return nil
}

// addInitial registers the executables named on the command line.
func addInitial(reg *registry.Registry, paths []string) {
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, err := reg.Add(p); err != nil {
			log.Printf("Tiles: Cannot add %s: %v", p, err)
		}
	}
}

func printHistory(w io.Writer, path string, limit int) error {
	if path == "" {
		return fmt.Errorf("journal is disabled; enable journal.enabled or pass -journal")
	}
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	events, err := j.Recent("", limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tSUBJECT\tRESULT")
	for _, ev := range events {
		result := "ok"
		if ev.Failed() {
			result = ev.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.Timestamp.Format(time.DateTime), ev.Kind, ev.Subject, result)
	}
	return tw.Flush()
}
