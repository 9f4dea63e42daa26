package render

import "html/template"

var funcs = template.FuncMap{
	"rich":   RichText,
	"radius": Radius,
	"css": func(v string) template.CSS {
		if !safeCSSValue(v) {
			return ""
		}
		return template.CSS(v)
	},
}

var blockTemplates = template.Must(template.New("blocks").Funcs(funcs).Parse(blockHTML))

const blockHTML = `
{{define "headline"}}<div class="lattice-headline"{{with .Result}} data-variant="result"{{end}} style="{{.Style}}{{with .Result}}; background-color: {{css .Background}}; color: {{css .Text}}{{end}}">
{{- if eq .V.Level "h2"}}<h2>{{.V.Title}}</h2>{{else if eq .V.Level "h3"}}<h3>{{.V.Title}}</h3>{{else}}<h1>{{.V.Title}}</h1>{{end}}
{{- with .V.Subtitle}}<p class="subtitle">{{.}}</p>{{end}}</div>{{end}}

{{define "text"}}<div class="lattice-text" style="{{.Style}}{{with .Result}}; background-color: {{css .Background}}; color: {{css .Text}}{{end}}">{{rich .V.Text}}</div>{{end}}

{{define "image"}}<figure class="lattice-image width-{{.V.Width}}{{if .Loaded}} loaded{{else}} loading{{end}}" style="{{.Style}}">
{{- if .V.Src}}<img src="{{.V.Src}}" alt="{{.V.Alt}}" loading="lazy" data-block="{{.ID}}">{{else}}<div class="lattice-image-empty">No image selected</div>{{end}}
{{- with .V.Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>{{end}}

{{define "benefits"}}<div class="lattice-benefits" style="{{.Style}}"><h2>{{.V.Title}}</h2><ul>
{{- range .V.Items}}<li><span class="icon" style="color: {{css $.Theme.PrimaryColor}}">{{.Icon}}</span> {{.Text}}</li>{{end}}</ul></div>{{end}}

{{define "button"}}{{if .Checkout}}<form method="post" action="{{.Checkout}}" class="lattice-checkout"><button type="submit" class="lattice-button{{if .Hovered}} is-hovered{{end}}" style="background-color: {{css .Color}}; border-radius: {{css (radius .Radius)}}">{{.Text}}</button></form>
{{- else}}<a class="lattice-button{{if .Hovered}} is-hovered{{end}}" href="{{or .URL "#"}}" style="background-color: {{css .Color}}; border-radius: {{css (radius .Radius)}}">{{.Text}}</a>{{end}}{{end}}

{{define "pricing"}}<div class="lattice-pricing{{if .V.Highlight}} highlight{{end}}" style="{{.Style}}"><h2>{{.V.Title}}</h2>
{{- if .V.Discounted}}<p class="original"><s>{{.V.Amount .V.OriginalPrice}}</s></p>{{end}}
<p class="price" style="color: {{css .Theme.PrimaryColor}}">{{.V.Amount .V.Price}}{{with .V.Period}}<span class="period">{{.}}</span>{{end}}</p>
<ul>{{range .V.Features}}<li>{{.}}</li>{{end}}</ul>
{{template "button" (.Button .V.ButtonText .V.ButtonURL "")}}</div>{{end}}

{{define "cta"}}<div class="lattice-cta size-{{.V.Size}}" style="{{.Style}}">{{with .V.Title}}<h2>{{.}}</h2>{{end}}{{with .V.Subtitle}}<p>{{.}}</p>{{end}}
{{template "button" (.Button .V.ButtonText .V.ButtonURL .V.ButtonColor)}}</div>{{end}}

{{define "guarantee"}}<div class="lattice-guarantee" style="{{.Style}}"><span class="icon">{{.V.Icon}}</span><h3>{{.V.Title}}</h3><p>{{.V.Text}}</p></div>{{end}}

{{define "testimonial"}}<blockquote class="lattice-testimonial" style="{{.Style}}">
{{- with .V.Avatar}}<img class="avatar" src="{{.}}" alt="">{{end}}
<p class="rating" style="color: {{css .Theme.PrimaryColor}}">{{.V.Stars}}</p><p>{{.V.Quote}}</p>
<footer>{{.V.Author}}{{with .V.Role}}, <span class="role">{{.}}</span>{{end}}</footer></blockquote>{{end}}

{{define "video"}}<div class="lattice-video" style="{{.Style}}">{{with .V.Title}}<h3>{{.}}</h3>{{end}}
{{- if .V.URL}}<div class="frame" style="position: relative; padding-top: {{css .V.Ratio}}"><iframe src="{{.V.URL}}" title="{{.V.Title}}" allowfullscreen{{if .V.Autoplay}} allow="autoplay"{{end}}></iframe></div>{{else}}<div class="lattice-video-empty">No video selected</div>{{end}}</div>{{end}}

{{define "faq"}}<div class="lattice-faq" style="{{.Style}}"><h2>{{.V.Title}}</h2>
{{- range .V.Items}}<details><summary>{{.Question}}</summary><p>{{.Answer}}</p></details>{{end}}</div>{{end}}

{{define "countdown"}}<div class="lattice-countdown" data-block="{{.ID}}" style="{{.Style}}">
{{- if .V.Expired}}<p class="expired">{{.V.ExpiredText}}</p>{{else}}<p>{{.V.Title}}</p><time class="clock" style="color: {{css .Theme.PrimaryColor}}">{{.V.Remaining}}</time>{{end}}</div>{{end}}

{{define "stats"}}<div class="lattice-stats" style="{{.Style}}">{{with .V.Title}}<h2>{{.}}</h2>{{end}}<dl>
{{- range .V.Items}}<div><dt style="color: {{css $.Theme.PrimaryColor}}">{{.Value}}</dt><dd>{{.Label}}</dd></div>{{end}}</dl></div>{{end}}

{{define "contact"}}<div class="lattice-contact" style="{{.Style}}"><h2>{{.V.Title}}</h2><ul>
{{- with .V.Email}}<li><a href="mailto:{{.}}">{{.}}</a></li>{{end}}
{{- with .V.Phone}}<li><a href="tel:{{.}}">{{.}}</a></li>{{end}}
{{- with .V.WhatsApp}}<li class="whatsapp">{{.}}</li>{{end}}
{{- with .V.Address}}<li><address>{{.}}</address></li>{{end}}</ul></div>{{end}}

{{define "divider"}}<hr class="lattice-divider" style="border: 0; border-top: {{css .V.Border}}">{{end}}

{{define "spacer"}}<div class="lattice-spacer" style="height: {{css .V.CSSHeight}}"></div>{{end}}

{{define "social-proof"}}<div class="lattice-social-proof" style="{{.Style}}">
{{- range .V.Avatars}}<img class="avatar" src="{{.}}" alt="">{{end}}
<p>{{.V.Text}}</p><p class="rating">★ {{.V.FormattedRating}}</p></div>{{end}}

{{define "newsletter"}}<form class="lattice-newsletter" method="post" action="{{or .V.ActionURL "#"}}" style="{{.Style}}"><h2>{{.V.Title}}</h2>
<input type="email" name="email" placeholder="{{.V.Placeholder}}" required><button type="submit" style="background-color: {{css .Theme.PrimaryColor}}">{{.V.ButtonText}}</button></form>{{end}}

{{define "checklist"}}<div class="lattice-checklist" style="{{.Style}}"><h2>{{.V.Title}}</h2><ul>
{{- range .V.Items}}<li class="{{if .Checked}}checked{{else}}unchecked{{end}}">{{if .Checked}}✔{{else}}✘{{end}} {{.Text}}</li>{{end}}</ul></div>{{end}}

{{define "comparison"}}<div class="lattice-comparison" style="{{.Style}}"><h2>{{.V.Title}}</h2><table>
<thead><tr><th></th><th>{{.V.LeftTitle}}</th><th>{{.V.RightTitle}}</th></tr></thead><tbody>
{{- range .V.Rows}}<tr><th>{{.Label}}</th><td>{{.Left}}</td><td>{{.Right}}</td></tr>{{end}}</tbody></table></div>{{end}}

{{define "feature-grid"}}<div class="lattice-feature-grid" style="{{.Style}}"><h2>{{.V.Title}}</h2><div class="grid cols-{{.V.GridColumns}}">
{{- range .V.Features}}<article><span class="icon">{{.Icon}}</span><h3>{{.Title}}</h3><p>{{.Description}}</p></article>{{end}}</div></div>{{end}}

{{define "hero"}}<header class="lattice-hero{{if .V.Overlay}} overlay{{end}}" style="{{.Style}}">
{{- with .V.Image}}<img class="background" src="{{.}}" alt="">{{end}}
<h1>{{.V.Title}}</h1>{{with .V.Subtitle}}<p class="subtitle">{{.}}</p>{{end}}
{{- if .V.ButtonText}}{{template "button" (.Button .V.ButtonText .V.ButtonURL "")}}{{end}}</header>{{end}}

{{define "placeholder"}}<div class="lattice-placeholder" data-block="{{.ID}}"><p>{{.Message}}</p><pre>{{.Raw}}</pre></div>{{end}}
`
