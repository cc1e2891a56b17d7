package theme

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tokenName = regexp.MustCompile(`^--[a-zA-Z0-9-]+$`)

// Loader reads a theme file from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the theme file.
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme yaml: %w", err)
	}

	if err := Validate(f.Tokens); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate rejects token names that are not custom properties and values
// that could break out of a declaration.
func Validate(tokens map[string]string) error {
	for name, value := range tokens {
		if !tokenName.MatchString(name) {
			return fmt.Errorf("invalid token name %q", name)
		}
		if value == "" {
			return fmt.Errorf("token %s has an empty value", name)
		}
		if strings.ContainsAny(value, ";{}<>\"'\\`") {
			return fmt.Errorf("token %s has a forbidden character in %q", name, value)
		}
		for _, r := range value {
			if r < 0x20 || r == 0x7f {
				return fmt.Errorf("token %s contains a control character", name)
			}
		}
	}
	return nil
}
