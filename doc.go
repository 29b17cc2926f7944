/*
Package splash drives the staged-loading screen shown while a point-of-sale
terminal starts up.

A splash walks an ordered catalog of steps ("Initializing system", "Loading
assets", ...) on a randomized timer, may inject one cosmetic transient fault on a
designated step that always recovers, and hides itself after a fixed display
timeout whether or not every step has finished. Hosts only ever read immutable
snapshots; the controller owns all mutation.

# Concept

The package separates the sequence (steps advancing over time) from its
presentation. A host starts a controller, subscribes to snapshots, and renders
them however it likes: the bundled CLI draws them in the terminal, the HTTP
adapter streams them as Server-Sent Events, and the MCP adapter exposes them as
tools.

# Key Features

  - Injectable clock and random source: every scenario is reproducible in tests.
  - Explicit task set: disposal cancels every pending tick, recovery and timeout at once.
  - Immutable snapshots with a revision counter, safe to share across goroutines.
  - Lifecycle hooks for logging and Prometheus metrics.
  - Session hosting with snapshot persistence (memory, Redis, SQLite).

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/splash"
	)

	func main() {
		s, err := splash.New(splash.WithID("pos-1"))
		if err != nil {
			panic(err)
		}

		ctx := context.Background()
		updates, stop := s.Subscribe()
		defer stop()

		if err := s.Start(ctx); err != nil {
			panic(err)
		}

		for snap := range updates {
			p := splash.ProgressOf(snap)
			fmt.Printf("%3.0f%% %s\n", p.Percent, snap.ErrorMessage)
		}
	}
*/
package splash
