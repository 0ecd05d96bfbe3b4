package content

import (
	"embed"
	"io/fs"
)

//go:embed sites/*.yaml
var siteFS embed.FS

// Default loads the embedded French/Arabic site copy with French fallback.
func Default() (*Library, error) {
	sub, err := fs.Sub(siteFS, "sites")
	if err != nil {
		return nil, err
	}
	return Load(sub, "fr", []string{"fr", "ar"})
}
