package registry

import (
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/editor"
	"github.com/aretw0/lattice/pkg/render"
	s "github.com/aretw0/lattice/pkg/schema"
)

// Palette categories.
const (
	CategoryContent    = "content"
	CategoryMedia      = "media"
	CategoryConversion = "conversion"
	CategorySocial     = "social"
	CategoryLayout     = "layout"
)

// builtin describes a shipped block type. Defaults live only in the schema.
type builtin struct {
	typ      string
	label    string
	category string
	icon     string
	content  []s.Field
	opts     []editor.Option
}

func item(fields ...s.Field) map[string]any {
	return s.Fill(fields, nil)
}

var (
	benefitItem  = []s.Field{s.Text("icon", "✓"), s.Text("text", "New benefit")}
	faqItem      = []s.Field{s.Text("question", "New question"), s.Text("answer", "Write the answer here.")}
	statItem     = []s.Field{s.Text("value", "100+"), s.Text("label", "Happy customers")}
	checkItem    = []s.Field{s.Text("text", "New item"), s.Flag("checked", true)}
	compareRow   = []s.Field{s.Text("label", "Feature"), s.Text("left", "No"), s.Text("right", "Yes")}
	featureEntry = []s.Field{s.Text("icon", "⚡"), s.Text("title", "Feature"), s.Text("description", "Describe this feature.")}
)

// Builtins lists the shipped block types in palette order.
func Builtins() []Entry {
	out := make([]Entry, 0, len(builtins))
	for _, b := range builtins {
		sc := s.BlockSchema{Content: b.content, Style: s.CommonStyle()}
		r, ok := render.For(b.typ)
		if !ok {
			r = render.Placeholder{}
		}
		out = append(out, Entry{
			Type:     b.typ,
			Label:    b.label,
			Category: b.category,
			Icon:     b.icon,
			Schema:   sc,
			Editor:   editor.New(b.label, sc, b.opts...),
			Renderer: r,
		})
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry holding every built-in type. It is built once.
// Callers that register custom types should use NewDefault to get their own copy.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewDefault()
	})
	return defaultReg
}

// NewDefault builds a fresh registry with every built-in type.
func NewDefault() *Registry {
	r := New()
	for _, e := range Builtins() {
		_ = r.Register(e)
	}
	return r
}

var builtins = []builtin{
	{
		typ: domain.BlockHeadline, label: "Headline", category: CategoryContent, icon: "H",
		content: []s.Field{
			s.Text("title", "Your headline here"),
			s.Text("subtitle", ""),
			s.Choice("level", "h1", "h1", "h2", "h3"),
			s.Choice("variant", "default", "default", "primary", "secondary"),
		},
		opts: []editor.Option{
			editor.WithLabel("variant", "Result style"),
			editor.WithPresets(
				editor.Preset{Name: "Question hook", Content: map[string]any{
					"title":    "Do you want to double your results in 30 days?",
					"subtitle": "Discover the method thousands already use",
				}},
				editor.Preset{Name: "Result", Content: map[string]any{
					"title":   "Your result is ready!",
					"variant": "primary",
				}},
			),
		},
	},
	{
		typ: domain.BlockText, label: "Text", category: CategoryContent, icon: "¶",
		content: []s.Field{
			s.Text("text", "Write your text here. **Markdown** is supported."),
			s.Choice("variant", "default", "default", "primary", "secondary"),
		},
		opts: []editor.Option{
			editor.WithKind(editor.KindTextarea, "text"),
			editor.WithLabel("variant", "Result style"),
		},
	},
	{
		typ: domain.BlockImage, label: "Image", category: CategoryMedia, icon: "🖼",
		content: []s.Field{
			s.Text("src", ""),
			s.Text("alt", ""),
			s.Text("caption", ""),
			s.Choice("width", "full", "full", "wide", "medium", "small"),
		},
		opts: []editor.Option{editor.WithKind(editor.KindURL, "src"), editor.WithLabel("src", "Image URL")},
	},
	{
		typ: domain.BlockBenefits, label: "Benefits", category: CategoryContent, icon: "✓",
		content: []s.Field{
			s.Text("title", "Why choose us"),
			s.List("items", benefitItem...).WithDefault([]any{
				map[string]any{"icon": "✓", "text": "Fast results"},
				map[string]any{"icon": "✓", "text": "Proven method"},
				map[string]any{"icon": "✓", "text": "Full support"},
			}),
		},
		opts: []editor.Option{editor.WithLabel("items", "Benefits")},
	},
	{
		typ: domain.BlockPricing, label: "Pricing", category: CategoryConversion, icon: "$",
		content: []s.Field{
			s.Text("title", "Special offer"),
			s.Num("price", 97),
			s.Num("originalPrice", 197),
			s.Text("currency", "$"),
			s.Text("period", ""),
			s.StringList("features", "Lifetime access", "Bonus materials", "7-day guarantee"),
			s.Text("buttonText", "Buy now"),
			s.Text("buttonUrl", ""),
			s.Flag("highlight", true),
		},
		opts: []editor.Option{
			editor.WithPresets(
				editor.Preset{Name: "Launch offer", Content: map[string]any{
					"title":         "Launch offer",
					"price":         47.0,
					"originalPrice": 97.0,
					"buttonText":    "Grab the launch price",
				}},
				editor.Preset{Name: "Subscription", Content: map[string]any{
					"title":         "Monthly plan",
					"price":         19.0,
					"originalPrice": 0.0,
					"period":        "/month",
					"buttonText":    "Subscribe",
				}},
			),
		},
	},
	{
		typ: domain.BlockCTA, label: "Call to action", category: CategoryConversion, icon: "➜",
		content: []s.Field{
			s.Text("title", "Ready to get started?"),
			s.Text("subtitle", ""),
			s.Text("buttonText", "Click here"),
			s.Text("buttonUrl", ""),
			s.Hex("buttonColor", ""),
			s.Choice("size", "medium", "small", "medium", "large"),
		},
		opts: []editor.Option{
			editor.WithPresets(
				editor.Preset{Name: "Urgency", Content: map[string]any{
					"title":      "Only a few spots left",
					"subtitle":   "The offer closes tonight",
					"buttonText": "Secure my spot",
					"size":       "large",
				}},
				editor.Preset{Name: "Soft", Content: map[string]any{
					"title":      "Want to know more?",
					"buttonText": "Learn more",
					"size":       "medium",
				}},
			),
		},
	},
	{
		typ: domain.BlockGuarantee, label: "Guarantee", category: CategoryConversion, icon: "🛡",
		content: []s.Field{
			s.Text("title", "7-day money-back guarantee"),
			s.Text("text", "If you are not satisfied, ask for a full refund within 7 days."),
			s.Num("days", 7),
			s.Text("icon", "🛡"),
		},
		opts: []editor.Option{editor.WithKind(editor.KindTextarea, "text")},
	},
	{
		typ: domain.BlockTestimonial, label: "Testimonial", category: CategorySocial, icon: "❝",
		content: []s.Field{
			s.Text("quote", "This changed the way I work."),
			s.Text("author", "Happy customer"),
			s.Text("role", ""),
			s.Text("avatar", ""),
			s.Num("rating", 5),
		},
		opts: []editor.Option{
			editor.WithKind(editor.KindTextarea, "quote"),
			editor.WithKind(editor.KindURL, "avatar"),
		},
	},
	{
		typ: domain.BlockVideo, label: "Video", category: CategoryMedia, icon: "▶",
		content: []s.Field{
			s.Text("url", ""),
			s.Text("title", ""),
			s.Flag("autoplay", false),
			s.Choice("aspectRatio", "16:9", "16:9", "4:3", "1:1"),
		},
	},
	{
		typ: domain.BlockFAQ, label: "FAQ", category: CategoryContent, icon: "?",
		content: []s.Field{
			s.Text("title", "Frequently asked questions"),
			s.List("items", faqItem...).WithDefault([]any{
				map[string]any{"question": "How do I get access?", "answer": "Right after the purchase, by email."},
				map[string]any{"question": "Is there a guarantee?", "answer": "Yes, 7 days with a full refund."},
			}),
		},
		opts: []editor.Option{editor.WithLabel("items", "Questions")},
	},
	{
		typ: domain.BlockCountdown, label: "Countdown", category: CategoryConversion, icon: "⏱",
		content: []s.Field{
			s.Text("title", "This offer ends in"),
			s.Num("minutes", 15),
			s.Text("expiredText", "This offer has expired"),
		},
	},
	{
		typ: domain.BlockStats, label: "Stats", category: CategorySocial, icon: "#",
		content: []s.Field{
			s.Text("title", ""),
			s.List("items", statItem...).WithDefault([]any{
				map[string]any{"value": "10k+", "label": "Students"},
				map[string]any{"value": "98%", "label": "Satisfaction"},
				map[string]any{"value": "24/7", "label": "Support"},
			}),
		},
	},
	{
		typ: domain.BlockContact, label: "Contact", category: CategoryContent, icon: "✉",
		content: []s.Field{
			s.Text("title", "Get in touch"),
			s.Text("email", ""),
			s.Text("phone", ""),
			s.Text("whatsapp", ""),
			s.Text("address", ""),
		},
		opts: []editor.Option{editor.WithLabel("whatsapp", "WhatsApp")},
	},
	{
		typ: domain.BlockDivider, label: "Divider", category: CategoryLayout, icon: "—",
		content: []s.Field{
			s.Num("thickness", 1),
			s.Hex("color", "#e5e7eb"),
			s.Choice("lineStyle", "solid", "solid", "dashed", "dotted"),
		},
	},
	{
		typ: domain.BlockSpacer, label: "Spacer", category: CategoryLayout, icon: "↕",
		content: []s.Field{
			s.Num("height", 32),
		},
	},
	{
		typ: domain.BlockSocialProof, label: "Social proof", category: CategorySocial, icon: "★",
		content: []s.Field{
			s.Text("text", "Join 10,000+ happy customers"),
			s.Num("count", 10000),
			s.Num("rating", 4.9),
			s.StringList("avatars"),
		},
	},
	{
		typ: domain.BlockNewsletter, label: "Newsletter", category: CategoryConversion, icon: "📨",
		content: []s.Field{
			s.Text("title", "Subscribe to our newsletter"),
			s.Text("placeholder", "your@email.com"),
			s.Text("buttonText", "Subscribe"),
			s.Text("actionUrl", ""),
		},
	},
	{
		typ: domain.BlockChecklist, label: "Checklist", category: CategoryContent, icon: "☑",
		content: []s.Field{
			s.Text("title", "What you get"),
			s.List("items", checkItem...).WithDefault([]any{
				item(checkItem...),
			}),
		},
	},
	{
		typ: domain.BlockComparison, label: "Comparison", category: CategoryContent, icon: "⇄",
		content: []s.Field{
			s.Text("title", "Before and after"),
			s.Text("leftTitle", "Before"),
			s.Text("rightTitle", "After"),
			s.List("rows", compareRow...).WithDefault([]any{
				item(compareRow...),
			}),
		},
	},
	{
		typ: domain.BlockFeatureGrid, label: "Feature grid", category: CategoryContent, icon: "▦",
		content: []s.Field{
			s.Text("title", "Features"),
			s.Num("columns", 3),
			s.List("features", featureEntry...).WithDefault([]any{
				item(featureEntry...),
				item(featureEntry...),
				item(featureEntry...),
			}),
		},
		opts: []editor.Option{editor.WithKind(editor.KindTextarea, "description")},
	},
	{
		typ: domain.BlockHero, label: "Hero", category: CategoryLayout, icon: "▣",
		content: []s.Field{
			s.Text("title", "Transform your results"),
			s.Text("subtitle", "The complete method to get you there"),
			s.Text("buttonText", "Get started"),
			s.Text("buttonUrl", ""),
			s.Text("image", ""),
			s.Flag("overlay", false),
		},
		opts: []editor.Option{editor.WithKind(editor.KindURL, "image")},
	},
}
