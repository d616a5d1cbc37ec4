// Package partials loads the shared HTML fragments that get injected into
// page templates. Partials are read once per build run and are immutable for
// the duration of the run.
package partials

import (
	"os"
	"path/filepath"

	siteerrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Marker strings recognized in source files. Replacement is plain literal
// substitution; no other markers exist.
const (
	HeaderMarker = "<!-- HEADER -->"
	FooterMarker = "<!-- FOOTER -->"
)

// File names expected inside the partials directory.
const (
	HeaderFile = "header.html"
	FooterFile = "footer.html"
)

// Partial is a named text fragment.
type Partial struct {
	Name    string
	Path    string
	Content string
}

// Set holds the partials for one build run.
type Set struct {
	Header Partial
	Footer Partial
}

// Load reads header.html and footer.html from dir. A missing or unreadable
// partial fails the whole run; no build output is produced before this
// succeeds.
func Load(dir string) (*Set, error) {
	header, err := loadOne(dir, HeaderFile)
	if err != nil {
		return nil, err
	}
	footer, err := loadOne(dir, FooterFile)
	if err != nil {
		return nil, err
	}
	return &Set{Header: header, Footer: footer}, nil
}

func loadOne(dir, name string) (Partial, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return Partial{}, siteerrors.FileSystemError(err, "read partial").WithContext("path", path)
	}
	return Partial{
		Name:    name[:len(name)-len(filepath.Ext(name))],
		Path:    path,
		Content: string(data),
	}, nil
}
