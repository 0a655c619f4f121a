package blog

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed content/*.md
var embedded embed.FS

// Embedded is the article snapshot compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source picks dir when set, the embedded snapshot otherwise.
func Source(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}
