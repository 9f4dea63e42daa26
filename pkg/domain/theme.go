package domain

// ResultStyle is the palette used for quiz-result sections.
type ResultStyle struct {
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
	Accent     string `json:"accent,omitempty" yaml:"accent,omitempty"`
}

// ResultStyles groups the primary and secondary quiz-result palettes.
type ResultStyles struct {
	Primary   ResultStyle `json:"primary" yaml:"primary"`
	Secondary ResultStyle `json:"secondary" yaml:"secondary"`
}

// Theme holds the design tokens shared by every renderer of a page.
type Theme struct {
	PrimaryColor    string       `json:"primaryColor,omitempty" yaml:"primary_color,omitempty"`
	SecondaryColor  string       `json:"secondaryColor,omitempty" yaml:"secondary_color,omitempty"`
	BackgroundColor string       `json:"backgroundColor,omitempty" yaml:"background_color,omitempty"`
	TextColor       string       `json:"textColor,omitempty" yaml:"text_color,omitempty"`
	FontFamily      string       `json:"fontFamily,omitempty" yaml:"font_family,omitempty"`
	BorderRadius    string       `json:"borderRadius,omitempty" yaml:"border_radius,omitempty"`
	Result          ResultStyles `json:"result" yaml:"result"`
}

// DefaultTheme returns the literal theme used when a page does not override a token.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#2563eb",
		SecondaryColor:  "#16a34a",
		BackgroundColor: "#ffffff",
		TextColor:       "#1f2937",
		FontFamily:      "Inter, system-ui, sans-serif",
		BorderRadius:    "8px",
		Result: ResultStyles{
			Primary:   ResultStyle{Background: "#eff6ff", Text: "#1e3a8a", Accent: "#2563eb"},
			Secondary: ResultStyle{Background: "#f0fdf4", Text: "#14532d", Accent: "#16a34a"},
		},
	}
}

// WithDefaults fills every empty token of t from DefaultTheme.
func (t Theme) WithDefaults() Theme {
	d := DefaultTheme()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	pickStyle := func(v, def ResultStyle) ResultStyle {
		return ResultStyle{
			Background: pick(v.Background, def.Background),
			Text:       pick(v.Text, def.Text),
			Accent:     pick(v.Accent, def.Accent),
		}
	}
	return Theme{
		PrimaryColor:    pick(t.PrimaryColor, d.PrimaryColor),
		SecondaryColor:  pick(t.SecondaryColor, d.SecondaryColor),
		BackgroundColor: pick(t.BackgroundColor, d.BackgroundColor),
		TextColor:       pick(t.TextColor, d.TextColor),
		FontFamily:      pick(t.FontFamily, d.FontFamily),
		BorderRadius:    pick(t.BorderRadius, d.BorderRadius),
		Result: ResultStyles{
			Primary:   pickStyle(t.Result.Primary, d.Result.Primary),
			Secondary: pickStyle(t.Result.Secondary, d.Result.Secondary),
		},
	}
}
