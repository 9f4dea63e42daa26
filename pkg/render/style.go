package render

import (
	"fmt"
	"html/template"
	"strings"
)

// styleView is the common style bag of every block.
type styleView struct {
	BackgroundColor string `mapstructure:"backgroundColor"`
	TextColor       string `mapstructure:"textColor"`
	Alignment       string `mapstructure:"alignment"`
	Padding         string `mapstructure:"padding"`
	BorderRadius    string `mapstructure:"borderRadius"`
}

var radii = map[string]string{
	"none":   "0",
	"small":  "4px",
	"medium": "8px",
	"large":  "16px",
	"full":   "9999px",
}

// Radius converts a border radius token into a CSS length. Unknown tokens pass through.
func Radius(token string) string {
	if r, ok := radii[token]; ok {
		return r
	}
	return token
}

// CSS renders the style as an inline declaration list.
func (s styleView) CSS() template.CSS {
	var decls []string
	add := func(prop, value string) {
		if value != "" && safeCSSValue(value) {
			decls = append(decls, fmt.Sprintf("%s: %s", prop, value))
		}
	}
	add("background-color", s.BackgroundColor)
	add("color", s.TextColor)
	add("text-align", s.Alignment)
	add("padding", s.Padding)
	add("border-radius", Radius(s.BorderRadius))
	return template.CSS(strings.Join(decls, "; "))
}

// safeCSSValue rejects values that could escape the declaration.
func safeCSSValue(v string) bool {
	return !strings.ContainsAny(v, ";{}<>\"'\\") && !strings.Contains(strings.ToLower(v), "url(")
}
