package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
)

// Stylesheet is the component's own CSS. Token values come from the theme.
const Stylesheet = `link-preview-card {
  display: block;
  color: var(--ddd-theme-primary);
  background-color: var(--ddd-theme-accent);
  font-family: var(--ddd-font-navigation);
  border-radius: var(--ddd-radius-sm);
  padding: var(--ddd-spacing-3);
  max-width: 400px;
  border: var(--ddd-border-xs);
}
link-preview-card img {
  max-width: 100%;
  border-radius: var(--ddd-radius-sm);
}
link-preview-card .content {
  margin: var(--ddd-spacing-2);
  padding: var(--ddd-spacing-4);
}
link-preview-card .title {
  font-size: var(--link-preview-card-label-font-size, var(--ddd-font-size-s));
}
link-preview-card .loading-spinner {
  margin: 20px auto;
  border: 4px solid #f3f3f3;
  border-top: 4px solid #3498db;
  border-radius: 50%;
  width: 30px;
  height: 30px;
  animation: link-preview-card-spin 2s linear infinite;
}
@keyframes link-preview-card-spin {
  0% { transform: rotate(0deg); }
  100% { transform: rotate(360deg); }
}
`

var cardTemplate = template.Must(template.New(Tag).Parse(
	`{{if .State.Loading}}<link-preview-card loading=""{{with .Style}} style="{{.}}"{{end}}>` +
		`{{else}}<link-preview-card{{with .Style}} style="{{.}}"{{end}}>{{end}}` +
		`<div class="preview" part="preview">` +
		`{{if .State.Loading}}` +
		`<div class="loading-spinner" part="loading-spinner" role="status" aria-label="{{.Text.Loading}}"></div>` +
		`{{else}}` +
		`{{with .State.Image}}<img src="{{.}}" alt="{{$.Text.PreviewImage}}" />{{end}}` +
		`<div class="content" part="content">` +
		`<h3 class="title" part="title">{{.Title}}</h3>` +
		`<p class="desc" part="desc">{{.State.Description}}</p>` +
		`<a href="{{.State.Link}}" target="_blank" rel="noopener noreferrer" class="url" part="url">{{.Text.VisitSite}}</a>` +
		`</div>` +
		`{{end}}` +
		`</div>` +
		`</link-preview-card>`))

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithTheme injects the design-token provider.
func WithTheme(t ThemeProvider) RenderOption {
	return func(r *Renderer) { r.theme = t }
}

// WithLocalization injects the translation provider.
func WithLocalization(l LocalizationProvider) RenderOption {
	return func(r *Renderer) { r.loc = l }
}

// Renderer projects a State into an HTML fragment. It never mutates the
// card or triggers fetches.
type Renderer struct {
	theme ThemeProvider
	loc   LocalizationProvider
}

// NewRenderer builds a renderer; missing providers render untranslated and unthemed.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{theme: noTheme{}, loc: noLocalization{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type viewData struct {
	State State
	Title string
	Text  Texts
	Style template.CSS
}

// Render writes the fragment for s in language lang.
func (r *Renderer) Render(w io.Writer, s State, lang string) error {
	text := TextsFor(r.loc, lang)
	data := viewData{
		State: s,
		Title: text.DisplayTitle(s),
		Text:  text,
		Style: InlineStyle(r.theme.Tokens()),
	}
	if err := cardTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render %s: %w", Tag, err)
	}
	return nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(s State, lang string) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, s, lang); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InlineStyle formats tokens as a style attribute value in a stable order.
// Token values are expected to be validated by the provider.
func InlineStyle(tokens map[string]string) template.CSS {
	if len(tokens) == 0 {
		return ""
	}
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+tokens[name])
	}
	// #nosec G203 -- names and values are validated by the theme loader
	return template.CSS(strings.Join(parts, "; "))
}
