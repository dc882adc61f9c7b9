package render

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

// Templates returns the page templates shipped with the package.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
