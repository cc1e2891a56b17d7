package preview

// ThemeProvider supplies design tokens as CSS custom properties
// (name including the leading "--" mapped to value).
type ThemeProvider interface {
	Tokens() map[string]string
}

// LocalizationProvider translates UI strings. Implementations return
// fallback when no translation exists for lang.
type LocalizationProvider interface {
	Translate(lang, key, fallback string) string
}

// Message keys used by the renderers.
const (
	MsgVisitSite    = "visit_site"
	MsgNoPreview    = "no_preview"
	MsgPreviewImage = "preview_image"
	MsgLoading      = "loading"
)

// Default texts for the message keys.
var defaultTexts = map[string]string{
	MsgVisitSite:    "Visit Site",
	MsgNoPreview:    FallbackTitle,
	MsgPreviewImage: "Preview Image",
	MsgLoading:      "Loading preview",
}

type noTheme struct{}

func (noTheme) Tokens() map[string]string { return nil }

type noLocalization struct{}

func (noLocalization) Translate(_, _, fallback string) string { return fallback }

// Texts holds the localized strings for one render.
type Texts struct {
	VisitSite    string
	NoPreview    string
	PreviewImage string
	Loading      string
}

// TextsFor resolves every renderer string for lang.
func TextsFor(loc LocalizationProvider, lang string) Texts {
	if loc == nil {
		loc = noLocalization{}
	}
	t := func(key string) string { return loc.Translate(lang, key, defaultTexts[key]) }
	return Texts{
		VisitSite:    t(MsgVisitSite),
		NoPreview:    t(MsgNoPreview),
		PreviewImage: t(MsgPreviewImage),
		Loading:      t(MsgLoading),
	}
}

// DisplayTitle returns the title to show, localizing the fallback text.
func (t Texts) DisplayTitle(s State) string {
	if s.Title == FallbackTitle {
		return t.NoPreview
	}
	return s.Title
}
