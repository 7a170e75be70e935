package frontend

import (
	"embed"
	"io/fs"
)

// The bundled page only displays the published configuration; deployments
// point --dist at the real application build.
//
//go:embed dist
var dist embed.FS

// DefaultDist returns the bundled placeholder application.
func DefaultDist() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
