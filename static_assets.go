package hacksite

import (
	"embed"
	"io/fs"
)

//go:embed static/*.css
var embeddedStatic embed.FS

// StaticFS exposes the site stylesheet so it can be served without a build
// step.
//
// Typical mount:
//
//	mux.Handle("/static/",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(hacksite.StaticFS()),
//	  ),
//	)
func StaticFS() fs.FS {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return embeddedStatic
	}
	return sub
}
