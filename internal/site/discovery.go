package site

import (
	"io/fs"
	"path/filepath"
	"sort"

	siteerrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// SourceFile represents a discovered HTML page template under the source tree.
type SourceFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Path relative to the source directory
}

// Discover recursively finds all *.html files under sourceDir. Results are
// sorted by relative path so build logs are deterministic regardless of
// directory traversal order.
func Discover(sourceDir string) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{Path: path, RelativePath: rel})
		return nil
	})
	if err != nil {
		return nil, siteerrors.FileSystemError(err, "scan source directory").WithContext("source", sourceDir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	return files, nil
}
