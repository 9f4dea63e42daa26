// Package editor describes the property forms of blocks and builds the patches they emit.
//
// An editor never mutates a block. Every change is expressed as a domain.Patch that the
// caller applies through the block list (blocklist.List.Update):
//
//	form := ed.Form(block)
//	patch := editor.SetContent("title", "Hello")
//	list.Update(block.ID, patch)
//
// List-valued content (benefits items, FAQ entries, stats) uses the AddItem / UpdateItem /
// RemoveItem builders, which always return fresh slices.
package editor
