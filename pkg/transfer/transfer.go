// Package transfer exports block lists as JSON documents and imports them back.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

var (
	// ErrInvalidJSON is returned when the document is not valid JSON.
	ErrInvalidJSON = errors.New("import file is not valid JSON")
	// ErrNotArray is returned when the top-level value is not an array of blocks.
	ErrNotArray = errors.New("import file must contain an array of blocks")
)

// Export serializes blocks as a pretty-printed JSON array (two-space indent).
func Export(blocks []domain.Block) ([]byte, error) {
	if blocks == nil {
		blocks = []domain.Block{}
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export blocks: %w", err)
	}
	return append(data, '\n'), nil
}

// Import parses a document produced by Export. The caller replaces its list only when
// Import succeeds, so a bad file never alters the current blocks.
//
// Errors wrap ErrInvalidJSON, ErrNotArray or domain.ErrInvalidBlock.
func Import(data []byte) ([]domain.Block, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotArray, kind(raw))
	}
	// Decode again with the typed decoder so field types (order, visible) are checked.
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	blocks := make([]domain.Block, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if _, ok := items[i].(map[string]any); !ok {
			return nil, fmt.Errorf("%w: entry %d is %s, not an object", domain.ErrInvalidBlock, i, kind(items[i]))
		}
		var b domain.Block
		if err := json.Unmarshal(entry, &b); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidBlock, i, err)
		}
		switch {
		case b.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", domain.ErrInvalidBlock, i)
		case b.Type == "":
			return nil, fmt.Errorf("%w: block %q has no type", domain.ErrInvalidBlock, b.ID)
		case seen[b.ID]:
			return nil, fmt.Errorf("%w: duplicated id %q", domain.ErrInvalidBlock, b.ID)
		}
		seen[b.ID] = true
		if b.Content == nil {
			b.Content = map[string]any{}
		}
		if b.Style == nil {
			b.Style = map[string]any{}
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}
