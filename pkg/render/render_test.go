package render_test

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// builtinResolver resolves built-in renderers and falls back to the placeholder.
type builtinResolver struct {
	extra map[string]render.Renderer
}

func (r builtinResolver) Renderer(blockType string) render.Renderer {
	if x, ok := r.extra[blockType]; ok {
		return x
	}
	if x, ok := render.For(blockType); ok {
		return x
	}
	return render.Placeholder{}
}

func block(id, typ string, content map[string]any) domain.Block {
	return domain.Block{ID: id, Type: typ, Content: content, Style: map[string]any{}, Visible: true, Editable: true}
}

func TestBuiltinsRenderEmptyContent(t *testing.T) {
	types := []string{
		domain.BlockHeadline, domain.BlockText, domain.BlockImage, domain.BlockBenefits,
		domain.BlockPricing, domain.BlockCTA, domain.BlockGuarantee, domain.BlockTestimonial,
		domain.BlockVideo, domain.BlockFAQ, domain.BlockCountdown, domain.BlockStats,
		domain.BlockContact, domain.BlockDivider, domain.BlockSpacer, domain.BlockSocialProof,
		domain.BlockNewsletter, domain.BlockChecklist, domain.BlockComparison,
		domain.BlockFeatureGrid, domain.BlockHero,
	}
	rc := render.NewContext(domain.DefaultTheme(), render.ModeView)
	for _, typ := range types {
		t.Run(typ, func(t *testing.T) {
			r, ok := render.For(typ)
			require.True(t, ok)
			html, err := r.Render(block(typ+"-1", typ, nil), rc)
			require.NoError(t, err)
			assert.NotEmpty(t, html)

			mr, ok := r.(render.MarkdownRenderer)
			require.True(t, ok)
			_, err = mr.Markdown(block(typ+"-1", typ, nil), rc)
			assert.NoError(t, err)
		})
	}
}

func TestHeadline(t *testing.T) {
	r, _ := render.For(domain.BlockHeadline)
	b := block("h", domain.BlockHeadline, map[string]any{"title": "Hello <world>", "level": "h2"})
	b.Style = map[string]any{"textColor": "#ff0000", "borderRadius": "medium"}

	html, err := r.Render(b, render.NewContext(domain.Theme{}, render.ModeView))
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "<h2>Hello &lt;world&gt;</h2>")
	assert.Contains(t, out, "color: #ff0000")
	assert.Contains(t, out, "border-radius: 8px")
}

func TestHeadlineResultVariant(t *testing.T) {
	r, _ := render.For(domain.BlockHeadline)
	b := block("h", domain.BlockHeadline, map[string]any{"title": "You are a planner", "variant": "secondary"})

	html, err := r.Render(b, render.NewContext(domain.Theme{}, render.ModeView))
	require.NoError(t, err)
	assert.Contains(t, string(html), domain.DefaultTheme().Result.Secondary.Background)
}

func TestTextIsSanitizedMarkdown(t *testing.T) {
	r, _ := render.For(domain.BlockText)
	b := block("t", domain.BlockText, map[string]any{"text": "**bold** <script>alert(1)</script>"})

	html, err := r.Render(b, nil)
	require.NoError(t, err)

	assert.Contains(t, string(html), "<strong>bold</strong>")
	assert.NotContains(t, string(html), "<script>")
}

func TestCTAButtonTarget(t *testing.T) {
	r, _ := render.For(domain.BlockCTA)
	b := block("cta-1", domain.BlockCTA, map[string]any{"buttonText": "Buy", "buttonUrl": "https://pay.example.com/x"})

	t.Run("link", func(t *testing.T) {
		html, err := r.Render(b, render.NewContext(domain.Theme{}, render.ModeView))
		require.NoError(t, err)
		assert.Contains(t, string(html), `href="https://pay.example.com/x"`)
		assert.Contains(t, string(html), domain.DefaultTheme().PrimaryColor)
	})

	t.Run("checkout", func(t *testing.T) {
		rc := render.NewContext(domain.Theme{}, render.ModeView)
		rc.CheckoutPath = func(id string) string { return "/pages/p/checkout/" + id }
		rc.Hovered = "cta-1"
		html, err := r.Render(b, rc)
		require.NoError(t, err)
		assert.Contains(t, string(html), `action="/pages/p/checkout/cta-1"`)
		assert.Contains(t, string(html), "is-hovered")
	})

	t.Run("unsafe url", func(t *testing.T) {
		evil := block("cta-2", domain.BlockCTA, map[string]any{"buttonUrl": "javascript:alert(1)"})
		html, err := r.Render(evil, nil)
		require.NoError(t, err)
		assert.NotContains(t, string(html), "javascript:")
	})
}

func TestImageLoadState(t *testing.T) {
	r, _ := render.For(domain.BlockImage)
	b := block("img", domain.BlockImage, map[string]any{"src": "https://cdn.example.com/a.png"})
	rc := render.NewContext(domain.Theme{}, render.ModeView)

	html, _ := r.Render(b, rc)
	assert.Contains(t, string(html), "loading")
	assert.Contains(t, string(html), `loading="lazy"`)

	rc.Loaded["img"] = true
	html, _ = r.Render(b, rc)
	assert.Contains(t, string(html), " loaded")
}

func TestCountdown(t *testing.T) {
	r, _ := render.For(domain.BlockCountdown)
	b := block("cd", domain.BlockCountdown, map[string]any{"title": "Ends in", "minutes": 15.0, "expiredText": "Gone"})
	rc := render.NewContext(domain.Theme{}, render.ModeView)

	html, _ := r.Render(b, rc)
	assert.Contains(t, string(html), "15:00")

	rc.Countdown["cd"] = 90 * time.Second
	html, _ = r.Render(b, rc)
	assert.Contains(t, string(html), "01:30")

	rc.Countdown["cd"] = 0
	html, _ = r.Render(b, rc)
	assert.Contains(t, string(html), "Gone")
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:05", render.Clock(5*time.Second))
	assert.Equal(t, "01:02:03", render.Clock(time.Hour+2*time.Minute+3*time.Second))
}

func TestPlaceholderContainsType(t *testing.T) {
	b := block("x", "quantum-carousel", map[string]any{"slides": 3.0})

	html, err := render.Block(b, builtinResolver{}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(html), "quantum-carousel")
	assert.Contains(t, string(html), `&#34;slides&#34;: 3`)
}

func TestBlockRecoversPanics(t *testing.T) {
	res := builtinResolver{extra: map[string]render.Renderer{
		"boom": render.Func(func(domain.Block, *render.Context) (template.HTML, error) {
			panic("kaboom")
		}),
	}}

	html, err := render.Block(block("b", "boom", nil), res, nil)
	require.Error(t, err)
	assert.Contains(t, string(html), "lattice-error")
	assert.Contains(t, err.Error(), "kaboom")
}

func TestPageModes(t *testing.T) {
	res := builtinResolver{extra: map[string]render.Renderer{
		"boom": render.Func(func(domain.Block, *render.Context) (template.HTML, error) {
			panic("kaboom")
		}),
	}}
	hidden := block("hidden-1", domain.BlockText, map[string]any{"text": "secret"})
	hidden.Visible = false
	locked := block("locked-1", domain.BlockHeadline, map[string]any{"title": "Locked"})
	locked.Editable = false
	page := domain.Page{
		ID:   "landing",
		Name: "Landing",
		Blocks: []domain.Block{
			locked,
			hidden,
			block("boom-1", "boom", nil),
			block("cta-1", domain.BlockCTA, map[string]any{"buttonText": "Go"}),
		},
	}

	t.Run("view", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render.Page(&buf, page, res, render.NewContext(page.Theme, render.ModeView)))
		out := buf.String()
		assert.Contains(t, out, "<title>Landing</title>")
		assert.NotContains(t, out, "secret")
		assert.Contains(t, out, "lattice-error", "a broken block degrades in place")
		assert.Contains(t, out, ">Go<", "blocks after the broken one still render")
		assert.NotContains(t, out, `class="lattice-chrome"`)
	})

	t.Run("edit", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render.Page(&buf, page, res, render.NewContext(page.Theme, render.ModeEdit)))
		out := buf.String()
		assert.Contains(t, out, "secret")
		assert.Contains(t, out, `class="badge">hidden`)
		assert.NotContains(t, out, `class="delete" data-block="locked-1"`)
		assert.Contains(t, out, `class="delete" data-block="hidden-1"`)
	})
}

func TestMarkdownPreview(t *testing.T) {
	hidden := block("h2", domain.BlockText, map[string]any{"text": "hidden text"})
	hidden.Visible = false
	page := domain.Page{Name: "Quiz result", Blocks: []domain.Block{
		block("h1", domain.BlockHeadline, map[string]any{"title": "You scored high"}),
		hidden,
		block("f1", domain.BlockFAQ, map[string]any{"title": "FAQ", "items": []any{
			map[string]any{"question": "Why?", "answer": "Because."},
		}}),
		block("u1", "unknown", nil),
	}}

	md := render.Markdown(page, builtinResolver{}, nil)

	assert.True(t, strings.HasPrefix(md, "# Quiz result"))
	assert.Contains(t, md, "# You scored high")
	assert.Contains(t, md, "**Why?**")
	assert.Contains(t, md, `"unknown"`)
	assert.NotContains(t, md, "hidden text")
}

func TestParseMode(t *testing.T) {
	m, err := render.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, render.ModeView, m)

	m, err = render.ParseMode("edit")
	require.NoError(t, err)
	assert.Equal(t, render.ModeEdit, m)

	_, err = render.ParseMode("print")
	assert.Error(t, err)
}
