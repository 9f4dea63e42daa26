/*
Package domain contains the core domain models for the Lattice page builder.

It defines the fundamental entities of a page, such as Blocks, Pages, Templates and
Themes, together with the sentinel errors and lifecycle hooks shared by every layer.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Block: the atomic content unit (headline, pricing, CTA, ...).
  - Patch: a partial update applied to a Block by a property editor.
  - Page: an ordered list of Blocks plus the Theme used to render it.
  - Template: a named bundle of pre-filled Blocks appended together.
  - Theme: color/typography tokens and quiz-result styles used by renderers.
*/
package domain
