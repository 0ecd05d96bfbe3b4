package i18n

import (
	"embed"
	"io/fs"
)

//go:embed locales/*.json
var localeFS embed.FS

// Default loads the embedded French/Arabic bundle with French as fallback.
func Default() (*Bundle, error) {
	sub, err := fs.Sub(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub, LocaleFR, []string{LocaleFR, LocaleAR})
}
