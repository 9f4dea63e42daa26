package render

import (
	"fmt"
	"strings"
)

// Typed content views, one per built-in block type. Field names follow the content keys.

type headlineView struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
	Level    string `mapstructure:"level"`
	Variant  string `mapstructure:"variant"`
}

func (v headlineView) markdown() string {
	prefix := "#"
	switch v.Level {
	case "h2":
		prefix = "##"
	case "h3":
		prefix = "###"
	}
	out := prefix + " " + v.Title + "\n"
	if v.Subtitle != "" {
		out += "\n_" + v.Subtitle + "_\n"
	}
	return out
}

type textView struct {
	Text    string `mapstructure:"text"`
	Variant string `mapstructure:"variant"`
}

func (v textView) markdown() string { return v.Text + "\n" }

type imageView struct {
	Src     string `mapstructure:"src"`
	Alt     string `mapstructure:"alt"`
	Caption string `mapstructure:"caption"`
	Width   string `mapstructure:"width"`
}

func (v imageView) markdown() string {
	if v.Src == "" {
		return "_(image not set)_\n"
	}
	out := fmt.Sprintf("![%s](%s)\n", v.Alt, v.Src)
	if v.Caption != "" {
		out += "\n_" + v.Caption + "_\n"
	}
	return out
}

type iconItem struct {
	Icon string `mapstructure:"icon"`
	Text string `mapstructure:"text"`
}

type benefitsView struct {
	Title string     `mapstructure:"title"`
	Items []iconItem `mapstructure:"items"`
}

func (v benefitsView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", v.Title)
	for _, it := range v.Items {
		fmt.Fprintf(&sb, "- %s %s\n", it.Icon, it.Text)
	}
	return sb.String()
}

type pricingView struct {
	Title         string   `mapstructure:"title"`
	Price         float64  `mapstructure:"price"`
	OriginalPrice float64  `mapstructure:"originalPrice"`
	Currency      string   `mapstructure:"currency"`
	Period        string   `mapstructure:"period"`
	Features      []string `mapstructure:"features"`
	ButtonText    string   `mapstructure:"buttonText"`
	ButtonURL     string   `mapstructure:"buttonUrl"`
	Highlight     bool     `mapstructure:"highlight"`
}

// Amount formats a price without trailing zeros.
func (v pricingView) Amount(p float64) string {
	return v.Currency + formatNumber(p)
}

// Discounted reports whether an original price greater than the price is set.
func (v pricingView) Discounted() bool { return v.OriginalPrice > v.Price }

func (v pricingView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", v.Title)
	if v.Discounted() {
		fmt.Fprintf(&sb, "~~%s~~ ", v.Amount(v.OriginalPrice))
	}
	fmt.Fprintf(&sb, "**%s**%s\n\n", v.Amount(v.Price), v.Period)
	for _, f := range v.Features {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	fmt.Fprintf(&sb, "\n[%s](%s)\n", v.ButtonText, v.ButtonURL)
	return sb.String()
}

type ctaView struct {
	Title       string `mapstructure:"title"`
	Subtitle    string `mapstructure:"subtitle"`
	ButtonText  string `mapstructure:"buttonText"`
	ButtonURL   string `mapstructure:"buttonUrl"`
	ButtonColor string `mapstructure:"buttonColor"`
	Size        string `mapstructure:"size"`
}

func (v ctaView) markdown() string {
	out := ""
	if v.Title != "" {
		out += "## " + v.Title + "\n\n"
	}
	if v.Subtitle != "" {
		out += v.Subtitle + "\n\n"
	}
	return out + fmt.Sprintf("[**%s**](%s)\n", v.ButtonText, v.ButtonURL)
}

type guaranteeView struct {
	Title string  `mapstructure:"title"`
	Text  string  `mapstructure:"text"`
	Days  float64 `mapstructure:"days"`
	Icon  string  `mapstructure:"icon"`
}

func (v guaranteeView) markdown() string {
	return fmt.Sprintf("> %s **%s**\n>\n> %s\n", v.Icon, v.Title, v.Text)
}

type testimonialView struct {
	Quote  string  `mapstructure:"quote"`
	Author string  `mapstructure:"author"`
	Role   string  `mapstructure:"role"`
	Avatar string  `mapstructure:"avatar"`
	Rating float64 `mapstructure:"rating"`
}

// Stars renders the rating as stars, clamped to 0..5.
func (v testimonialView) Stars() string {
	n := int(v.Rating)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func (v testimonialView) markdown() string {
	who := v.Author
	if v.Role != "" {
		who += ", " + v.Role
	}
	return fmt.Sprintf("> %s\n>\n> %s - %s\n", v.Quote, v.Stars(), who)
}

type videoView struct {
	URL         string `mapstructure:"url"`
	Title       string `mapstructure:"title"`
	Autoplay    bool   `mapstructure:"autoplay"`
	AspectRatio string `mapstructure:"aspectRatio"`
}

// Ratio returns the padding-top that keeps the frame at its aspect ratio.
func (v videoView) Ratio() string {
	switch v.AspectRatio {
	case "4:3":
		return "75%"
	case "1:1":
		return "100%"
	}
	return "56.25%"
}

func (v videoView) markdown() string {
	if v.URL == "" {
		return "_(video not set)_\n"
	}
	return fmt.Sprintf("▶ [%s](%s)\n", firstNonEmpty(v.Title, "Watch the video"), v.URL)
}

type faqItem struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

type faqView struct {
	Title string    `mapstructure:"title"`
	Items []faqItem `mapstructure:"items"`
}

func (v faqView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", v.Title)
	for _, it := range v.Items {
		fmt.Fprintf(&sb, "\n**%s**\n\n%s\n", it.Question, it.Answer)
	}
	return sb.String()
}

type countdownView struct {
	Title       string  `mapstructure:"title"`
	Minutes     float64 `mapstructure:"minutes"`
	ExpiredText string  `mapstructure:"expiredText"`
	Remaining   string  `mapstructure:"-"`
	Expired     bool    `mapstructure:"-"`
}

func (v countdownView) markdown() string {
	if v.Expired {
		return "**" + v.ExpiredText + "**\n"
	}
	return fmt.Sprintf("**%s** `%s`\n", v.Title, v.Remaining)
}

type statItem struct {
	Value string `mapstructure:"value"`
	Label string `mapstructure:"label"`
}

type statsView struct {
	Title string     `mapstructure:"title"`
	Items []statItem `mapstructure:"items"`
}

func (v statsView) markdown() string {
	var sb strings.Builder
	if v.Title != "" {
		fmt.Fprintf(&sb, "## %s\n\n", v.Title)
	}
	for _, it := range v.Items {
		fmt.Fprintf(&sb, "- **%s** %s\n", it.Value, it.Label)
	}
	return sb.String()
}

type contactView struct {
	Title    string `mapstructure:"title"`
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
	WhatsApp string `mapstructure:"whatsapp"`
	Address  string `mapstructure:"address"`
}

func (v contactView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", v.Title)
	for _, line := range [][2]string{{"Email", v.Email}, {"Phone", v.Phone}, {"WhatsApp", v.WhatsApp}, {"Address", v.Address}} {
		if line[1] != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", line[0], line[1])
		}
	}
	return sb.String()
}

type dividerView struct {
	Thickness float64 `mapstructure:"thickness"`
	Color     string  `mapstructure:"color"`
	LineStyle string  `mapstructure:"lineStyle"`
}

// Border renders the CSS border-top declaration.
func (v dividerView) Border() string {
	return fmt.Sprintf("%spx %s %s", formatNumber(v.Thickness), v.LineStyle, v.Color)
}

func (v dividerView) markdown() string { return "---\n" }

type spacerView struct {
	Height float64 `mapstructure:"height"`
}

func (v spacerView) CSSHeight() string { return formatNumber(v.Height) + "px" }

func (v spacerView) markdown() string { return "\n" }

type socialProofView struct {
	Text    string   `mapstructure:"text"`
	Count   float64  `mapstructure:"count"`
	Rating  float64  `mapstructure:"rating"`
	Avatars []string `mapstructure:"avatars"`
}

func (v socialProofView) FormattedCount() string { return formatNumber(v.Count) }

func (v socialProofView) FormattedRating() string { return formatNumber(v.Rating) }

func (v socialProofView) markdown() string {
	return fmt.Sprintf("%s · ★ %s\n", v.Text, v.FormattedRating())
}

type newsletterView struct {
	Title       string `mapstructure:"title"`
	Placeholder string `mapstructure:"placeholder"`
	ButtonText  string `mapstructure:"buttonText"`
	ActionURL   string `mapstructure:"actionUrl"`
}

func (v newsletterView) markdown() string {
	return fmt.Sprintf("## %s\n\n`%s` [%s]\n", v.Title, v.Placeholder, v.ButtonText)
}

type checkItem struct {
	Text    string `mapstructure:"text"`
	Checked bool   `mapstructure:"checked"`
}

type checklistView struct {
	Title string      `mapstructure:"title"`
	Items []checkItem `mapstructure:"items"`
}

func (v checklistView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", v.Title)
	for _, it := range v.Items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Fprintf(&sb, "- [%s] %s\n", mark, it.Text)
	}
	return sb.String()
}

type comparisonRow struct {
	Label string `mapstructure:"label"`
	Left  string `mapstructure:"left"`
	Right string `mapstructure:"right"`
}

type comparisonView struct {
	Title      string          `mapstructure:"title"`
	LeftTitle  string          `mapstructure:"leftTitle"`
	RightTitle string          `mapstructure:"rightTitle"`
	Rows       []comparisonRow `mapstructure:"rows"`
}

func (v comparisonView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n| | %s | %s |\n|---|---|---|\n", v.Title, v.LeftTitle, v.RightTitle)
	for _, r := range v.Rows {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", r.Label, r.Left, r.Right)
	}
	return sb.String()
}

type feature struct {
	Icon        string `mapstructure:"icon"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
}

type featureGridView struct {
	Title    string    `mapstructure:"title"`
	Columns  float64   `mapstructure:"columns"`
	Features []feature `mapstructure:"features"`
}

// GridColumns clamps the column count to 1..4.
func (v featureGridView) GridColumns() int {
	n := int(v.Columns)
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}

func (v featureGridView) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", v.Title)
	for _, f := range v.Features {
		fmt.Fprintf(&sb, "\n### %s %s\n\n%s\n", f.Icon, f.Title, f.Description)
	}
	return sb.String()
}

type heroView struct {
	Title      string `mapstructure:"title"`
	Subtitle   string `mapstructure:"subtitle"`
	ButtonText string `mapstructure:"buttonText"`
	ButtonURL  string `mapstructure:"buttonUrl"`
	Image      string `mapstructure:"image"`
	Overlay    bool   `mapstructure:"overlay"`
}

func (v heroView) markdown() string {
	out := "# " + v.Title + "\n\n"
	if v.Subtitle != "" {
		out += v.Subtitle + "\n\n"
	}
	if v.ButtonText != "" {
		out += fmt.Sprintf("[**%s**](%s)\n", v.ButtonText, v.ButtonURL)
	}
	return out
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
