// Package render turns blocks into HTML fragments and pages.
//
// Renderers are presentational: they decode the (already defaulted) content of a block into a
// typed view and execute an html/template. Ephemeral presentation state that does not belong
// to the block, such as hover, image load completion and countdown ticks, travels in Context.
//
// A renderer failure never takes down the page. Page recovers errors and panics per block and
// replaces the faulty block with an inline placeholder.
package render
