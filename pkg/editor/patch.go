package editor

import (
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// SetContent returns a patch setting one content key.
func SetContent(key string, v any) domain.Patch {
	return domain.Patch{Content: map[string]any{key: v}}
}

// SetStyle returns a patch carrying the whole style of b with key set to v.
func SetStyle(b domain.Block, key string, v any) domain.Patch {
	style := domain.CopyMap(b.Style)
	style[key] = v
	return domain.Patch{Style: style}
}

// SetVisible returns a patch setting the visible flag.
func SetVisible(v bool) domain.Patch {
	return domain.Patch{Visible: &v}
}

// AddItem returns a patch appending a default-shaped entry to the list key.
// The entry shape comes from the schema; lists of strings get an empty string.
func AddItem(b domain.Block, s schema.BlockSchema, key string) domain.Patch {
	items := Items(b, key)
	next := make([]any, 0, len(items)+1)
	next = append(next, items...)
	if item := s.NewItem(key); item != nil {
		next = append(next, item)
	} else {
		next = append(next, "")
	}
	return SetContent(key, next)
}

// UpdateItem returns a patch replacing field of entry i in the list key.
// For lists of scalars field is ignored and the entry itself is replaced.
// An out of range index yields an empty patch.
func UpdateItem(b domain.Block, key string, i int, field string, v any) domain.Patch {
	items := Items(b, key)
	if i < 0 || i >= len(items) {
		return domain.Patch{}
	}
	next := make([]any, len(items))
	copy(next, items)
	if m, ok := items[i].(map[string]any); ok {
		entry := domain.CopyMap(m)
		entry[field] = v
		next[i] = entry
	} else {
		next[i] = v
	}
	return SetContent(key, next)
}

// RemoveItem returns a patch without entry i of the list key. Order is preserved.
func RemoveItem(b domain.Block, key string, i int) domain.Patch {
	items := Items(b, key)
	if i < 0 || i >= len(items) {
		return domain.Patch{}
	}
	next := make([]any, 0, len(items)-1)
	next = append(next, items[:i]...)
	next = append(next, items[i+1:]...)
	return SetContent(key, next)
}

// Items returns a deep copy of the list stored under key, whatever its concrete slice type.
func Items(b domain.Block, key string) []any {
	switch v := domain.CopyValue(b.Content[key]).(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	default:
		return []any{}
	}
}
