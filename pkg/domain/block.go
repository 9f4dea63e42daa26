package domain

// Built-in block types. The registry is open, so a Block may carry any type string;
// these are the ones shipped with Lattice.
const (
	BlockHeadline    = "headline"
	BlockText        = "text"
	BlockImage       = "image"
	BlockBenefits    = "benefits"
	BlockPricing     = "pricing"
	BlockCTA         = "cta"
	BlockGuarantee   = "guarantee"
	BlockTestimonial = "testimonial"
	BlockVideo       = "video"
	BlockFAQ         = "faq"
	BlockCountdown   = "countdown"
	BlockStats       = "stats"
	BlockContact     = "contact"
	BlockDivider     = "divider"
	BlockSpacer      = "spacer"
	BlockSocialProof = "social-proof"
	BlockNewsletter  = "newsletter"
	BlockChecklist   = "checklist"
	BlockComparison  = "comparison"
	BlockFeatureGrid = "feature-grid"
	BlockHero        = "hero"
)

// Block is one content unit of a page.
type Block struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`

	// Content holds the type-specific payload (e.g. title, items, buttonText).
	Content map[string]any `json:"content" yaml:"content"`

	// Style holds free-form visual overrides merged onto defaults at render time.
	Style map[string]any `json:"style" yaml:"style"`

	// Order is the zero-based position of the block in its list.
	Order int `json:"order" yaml:"order"`

	// Visible controls whether the block is part of the view-mode output.
	Visible bool `json:"visible" yaml:"visible"`

	// Editable controls whether destructive actions (delete) are permitted.
	Editable bool `json:"editable" yaml:"editable"`
}

// Clone returns a deep copy of the block so that nested content (lists, maps)
// is never shared between two blocks.
func (b Block) Clone() Block {
	out := b
	out.Content = CopyMap(b.Content)
	out.Style = CopyMap(b.Style)
	return out
}

// Patch is a partial update for a Block.
// Content and Style keys are shallow-merged: keys not present are left untouched.
type Patch struct {
	Content map[string]any `json:"content,omitempty"`
	Style   map[string]any `json:"style,omitempty"`
	Visible *bool          `json:"visible,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Content) == 0 && len(p.Style) == 0 && p.Visible == nil
}

// Apply returns a copy of b with the patch merged in. b itself is not modified.
func (p Patch) Apply(b Block) Block {
	out := b
	if len(p.Content) > 0 {
		out.Content = merge(b.Content, p.Content)
	}
	if len(p.Style) > 0 {
		out.Style = merge(b.Style, p.Style)
	}
	if p.Visible != nil {
		out.Visible = *p.Visible
	}
	return out
}

func merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = CopyValue(v)
	}
	return out
}
