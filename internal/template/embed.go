package template

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embedded embed.FS

// Templates returns the embedded project templates rooted at the
// templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		// fs.Sub only fails for invalid paths; "templates" is a constant.
		panic(err)
	}
	return sub
}
