/*
Package lattice is a block page builder: landing and quiz-result pages assembled from
typed content blocks (headline, pricing, call to action, FAQ, ...), edited through
per-type property forms and rendered into themed HTML or a terminal preview.

# Concept

A page is an ordered list of blocks. The block list store is the only thing that changes
block identity, order and visibility; every block type maps to a property editor and a
renderer through an open registry with a mandatory fallback, so an unknown type still
renders a placeholder instead of failing. Pages are persisted as blobs behind a port
(memory, JSON files or Redis), and the same Builder drives the HTTP API, the MCP server
and the CLI.

# Key Features

  - Dense ordering: after any mutation, block order is 0..N-1 in slice position.
  - Declared defaults: each type declares its content and style defaults once.
  - Presets and templates: quick content patches per type and a searchable template catalog.
  - Safe persistence: per-page locks, optional Redis locks, encryption at rest and retries.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/lattice"
		"github.com/aretw0/lattice/pkg/render"
	)

	func main() {
		b, err := lattice.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if _, err := b.ApplyTemplate(ctx, "launch", "sales-page"); err != nil {
			log.Fatal(err)
		}

		if err := b.Render(ctx, os.Stdout, "launch", render.ModeView); err != nil {
			log.Fatal(err)
		}
	}
*/
package lattice
