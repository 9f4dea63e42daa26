package render

import (
	"fmt"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
)

var builtins = map[string]Renderer{
	domain.BlockHeadline: &viewRenderer[headlineView]{
		name:    "headline",
		variant: func(v headlineView) string { return v.Variant },
	},
	domain.BlockText: &viewRenderer[textView]{
		name:    "text",
		variant: func(v textView) string { return v.Variant },
	},
	domain.BlockImage:       &viewRenderer[imageView]{name: "image"},
	domain.BlockBenefits:    &viewRenderer[benefitsView]{name: "benefits"},
	domain.BlockPricing:     &viewRenderer[pricingView]{name: "pricing"},
	domain.BlockCTA:         &viewRenderer[ctaView]{name: "cta"},
	domain.BlockGuarantee:   &viewRenderer[guaranteeView]{name: "guarantee"},
	domain.BlockTestimonial: &viewRenderer[testimonialView]{name: "testimonial"},
	domain.BlockVideo:       &viewRenderer[videoView]{name: "video"},
	domain.BlockFAQ:         &viewRenderer[faqView]{name: "faq"},
	domain.BlockCountdown: &viewRenderer[countdownView]{
		name:    "countdown",
		prepare: prepareCountdown,
	},
	domain.BlockStats:       &viewRenderer[statsView]{name: "stats"},
	domain.BlockContact:     &viewRenderer[contactView]{name: "contact"},
	domain.BlockDivider:     &viewRenderer[dividerView]{name: "divider"},
	domain.BlockSpacer:      &viewRenderer[spacerView]{name: "spacer"},
	domain.BlockSocialProof: &viewRenderer[socialProofView]{name: "social-proof"},
	domain.BlockNewsletter:  &viewRenderer[newsletterView]{name: "newsletter"},
	domain.BlockChecklist:   &viewRenderer[checklistView]{name: "checklist"},
	domain.BlockComparison:  &viewRenderer[comparisonView]{name: "comparison"},
	domain.BlockFeatureGrid: &viewRenderer[featureGridView]{name: "feature-grid"},
	domain.BlockHero:        &viewRenderer[heroView]{name: "hero"},
}

// For returns the built-in renderer of blockType.
func For(blockType string) (Renderer, bool) {
	r, ok := builtins[blockType]
	return r, ok
}

func prepareCountdown(v *countdownView, b domain.Block, rc *Context) {
	d := rc.remaining(b.ID, time.Duration(v.Minutes*float64(time.Minute)))
	if d <= 0 {
		v.Expired = true
		v.Remaining = "00:00"
		return
	}
	v.Remaining = Clock(d)
}

// Clock formats a duration as mm:ss, or hh:mm:ss from one hour up.
func Clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
