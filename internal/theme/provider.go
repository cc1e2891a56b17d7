package theme

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Provider serves the active token set. Loaded tokens are merged over the
// defaults, so a theme file only needs the values it changes.
type Provider struct {
	mu         sync.RWMutex
	tokens     map[string]string
	lastReload time.Time
}

// NewProvider starts with the default tokens.
func NewProvider() *Provider {
	return &Provider{tokens: Defaults()}
}

// Tokens returns a copy of the active tokens.
func (p *Provider) Tokens() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]string, len(p.tokens))
	for k, v := range p.tokens {
		out[k] = v
	}
	return out
}

// Replace installs overrides on top of the defaults.
func (p *Provider) Replace(overrides map[string]string) {
	merged := Defaults()
	for k, v := range overrides {
		merged[k] = v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = merged
	p.lastReload = time.Now()
}

// LastReload returns when tokens were last replaced; zero if never.
func (p *Provider) LastReload() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReload
}

// CSS renders the tokens as a :root rule.
func (p *Provider) CSS() string {
	tokens := p.Tokens()
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(tokens[name])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
