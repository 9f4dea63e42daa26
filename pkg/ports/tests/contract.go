package tests

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/ports"
)

// TemplateSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateSource.
// expected maps template IDs to their number of blocks.
func TemplateSourceContractTest(t *testing.T, source ports.TemplateSource, expected map[string]int) {
	t.Helper()

	templates, err := source.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error listing templates: %v", err)
	}

	t.Run("ListTemplates_Count", func(t *testing.T) {
		if len(templates) != len(expected) {
			t.Errorf("expected %d templates, got %d", len(expected), len(templates))
		}
	})

	t.Run("ListTemplates_Blocks", func(t *testing.T) {
		for _, tmpl := range templates {
			want, ok := expected[tmpl.ID]
			if !ok {
				t.Errorf("unexpected template %s", tmpl.ID)
				continue
			}
			if len(tmpl.Blocks) != want {
				t.Errorf("template %s: expected %d blocks, got %d", tmpl.ID, want, len(tmpl.Blocks))
			}
			for i, b := range tmpl.Blocks {
				if b.ID == "" || b.Type == "" {
					t.Errorf("template %s block %d: missing id or type", tmpl.ID, i)
				}
			}
		}
	})
}
