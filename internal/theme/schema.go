package theme

// File is the on-disk theme document:
//
//	tokens:
//	  --ddd-theme-primary: "#001e44"
//	  --ddd-radius-sm: 4px
type File struct {
	Name   string            `yaml:"name"`
	Tokens map[string]string `yaml:"tokens"`
}

// Defaults are the design tokens the card stylesheet reads.
func Defaults() map[string]string {
	return map[string]string{
		"--ddd-theme-primary":                 "#001e44",
		"--ddd-theme-accent":                  "#ffffff",
		"--ddd-font-navigation":               "Roboto Condensed, sans-serif",
		"--ddd-radius-sm":                     "4px",
		"--ddd-spacing-2":                     "8px",
		"--ddd-spacing-3":                     "12px",
		"--ddd-spacing-4":                     "16px",
		"--ddd-border-xs":                     "1px solid #d9d9d9",
		"--ddd-font-size-s":                   "18px",
		"--link-preview-card-label-font-size": "18px",
	}
}
