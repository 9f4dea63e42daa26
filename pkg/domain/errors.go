package domain

import "errors"

// ErrPageNotFound is returned when a page ID cannot be found in the store.
var ErrPageNotFound = errors.New("page not found")

// ErrTemplateNotFound is returned when a template ID is not part of the catalog.
var ErrTemplateNotFound = errors.New("template not found")

// ErrInvalidBlock is returned when a block list violates the block invariants
// (missing id or type, duplicated id).
var ErrInvalidBlock = errors.New("invalid block")

// ErrBlockNotFound is returned by operations that need an existing block to produce a value
// (checkout, editor forms). Plain mutations report a missing block with a false result instead.
var ErrBlockNotFound = errors.New("block not found")
