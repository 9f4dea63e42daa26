/*
Package ports defines the driven ports (interfaces) of the Lattice builder.

These interfaces decouple the builder from external implementations, allowing
pages to be persisted in various backends and templates to come from various sources.

# Key Interfaces

  - PageStore: Responsible for persisting and loading pages (block lists and theme).
  - DistributedLocker: Provides distributed locking for concurrent edits of the same page.
  - TemplateSource: Supplies extra templates to the catalog (e.g., from a Loam repository).
*/
package ports
