// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: gateway/gateway.go
// Summary: Starts a selected executable and hands control over to it.
// Usage: The tiles app routes launch requests here; a confirmed start
// terminates the launcher, a failure is logged and the launcher keeps going.

package gateway

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"sync"
	"sync/atomic"
)

// ErrEmptyPath is returned when a launch request carries no path.
var ErrEmptyPath = errors.New("empty executable path")

// LaunchError reports a failed launch.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Recorder stores operator-visible outcome events.
type Recorder interface {
	Record(kind, subject string, cause error) error
}

// Options configures a Gateway.
type Options struct {
	// Logger is the operator log channel. Defaults to the standard logger.
	Logger *log.Logger

	// Recorder, when set, receives one event per launch attempt.
	Recorder Recorder

	// Terminate is called once, after the first successful launch.
	Terminate func()
}

// Gateway turns launch requests into process starts.
type Gateway struct {
	logger    *log.Logger
	recorder  Recorder
	terminate func()

	once       sync.Once
	terminated atomic.Bool
}

// New creates a gateway.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{
		logger:    logger,
		recorder:  opts.Recorder,
		terminate: opts.Terminate,
	}
}

// Launch starts path as a new process with no arguments. The path is used
// as the program itself and is never passed through a shell. The child is
// not waited on; once it has started the launcher terminates.
func (g *Gateway) Launch(path string) error {
	if path == "" {
		return g.fail(&LaunchError{Path: path, Err: ErrEmptyPath})
	}

	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return g.fail(&LaunchError{Path: path, Err: err})
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		g.logger.Printf("Gateway: Failed to release pid %d: %v", pid, err)
	}

	g.logger.Printf("Gateway: Launching %s (pid %d)", path, pid)
	g.record(path, nil)
	g.handOff()
	return nil
}

// Terminated reports whether a launch has succeeded and the launcher has
// been told to exit.
func (g *Gateway) Terminated() bool {
	return g.terminated.Load()
}

func (g *Gateway) handOff() {
	g.once.Do(func() {
		g.terminated.Store(true)
		if g.terminate != nil {
			g.terminate()
		}
	})
}

func (g *Gateway) fail(err *LaunchError) error {
	g.logger.Printf("Gateway: Error launching app: %v", err)
	g.record(err.Path, err)
	return err
}

func (g *Gateway) record(path string, cause error) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Record("launch", path, cause); err != nil {
		g.logger.Printf("Gateway: Failed to record launch event: %v", err)
	}
}
