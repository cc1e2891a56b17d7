// Package i18n loads the card's translation catalogues and implements
// preview.LocalizationProvider on top of go-i18n.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog holds every loaded language.
type Catalog struct {
	bundle    *goi18n.Bundle
	fallback  language.Tag
	languages []string
	supported []language.Tag // fallback first
	matcher   language.Matcher
}

// New loads the embedded catalogues. defaultLang is used when a request
// names no language or one without a catalogue.
func New(defaultLang string) (*Catalog, error) {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	languages := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		languages = append(languages, strings.TrimSuffix(path.Base(file), ".json"))
	}
	sort.Strings(languages)

	supported := []language.Tag{fallback}
	for _, l := range languages {
		if tag := language.Make(l); tag != fallback {
			supported = append(supported, tag)
		}
	}

	return &Catalog{
		bundle:    bundle,
		fallback:  fallback,
		languages: languages,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Match returns the catalogue language that best serves prefs, taken in
// order. Each pref is a single tag or an Accept-Language value; malformed
// ones are skipped. The default language wins when nothing matches.
func (c *Catalog) Match(prefs ...string) string {
	var desired []language.Tag
	for _, p := range prefs {
		if tags, _, err := language.ParseAcceptLanguage(p); err == nil {
			desired = append(desired, tags...)
		}
	}
	if len(desired) == 0 {
		return c.fallback.String()
	}
	_, i, confidence := c.matcher.Match(desired...)
	if confidence == language.No {
		return c.fallback.String()
	}
	return c.supported[i].String()
}

// Translate returns the message for key in lang, falling back to the default
// language and finally to fallback. lang may be an Accept-Language value.
func (c *Catalog) Translate(lang, key, fallback string) string {
	loc := goi18n.NewLocalizer(c.bundle, lang, c.fallback.String())
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID: key,
		DefaultMessage: &goi18n.Message{
			ID:    key,
			Other: fallback,
		},
	})
	if err != nil && msg == "" {
		return fallback
	}
	return msg
}

// Languages lists the loaded language codes.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.languages))
	copy(out, c.languages)
	return out
}
