// Package check inspects a generated site for leftover marker comments and
// broken internal links.
package check

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/partials"
)

// Issue kinds reported by Run.
const (
	KindLeftoverMarker = "leftover-marker"
	KindBrokenLink     = "broken-link"
)

// Issue is one finding in a generated page.
type Issue struct {
	Page   string // page path relative to the output root
	Kind   string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Page, i.Kind, i.Detail)
}

// Run scans every HTML file under outputDir. Findings are sorted by page path.
func Run(outputDir string) ([]Issue, error) {
	var issues []Issue

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".html" {
			return nil
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}

		pageIssues, err := checkPage(outputDir, p, rel)
		if err != nil {
			return err
		}
		issues = append(issues, pageIssues...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan output directory: %w", err)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Page != issues[j].Page {
			return issues[i].Page < issues[j].Page
		}
		return issues[i].Detail < issues[j].Detail
	})
	return issues, nil
}

func checkPage(outputDir, absPath, relPath string) ([]Issue, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	var issues []Issue

	content := string(data)
	for _, marker := range []string{partials.HeaderMarker, partials.FooterMarker} {
		if strings.Contains(content, marker) {
			issues = append(issues, Issue{Page: relPath, Kind: KindLeftoverMarker, Detail: marker})
		}
	}

	for _, ref := range extractRefs(content) {
		if !isInternal(ref) {
			continue
		}
		if !targetExists(outputDir, relPath, ref) {
			issues = append(issues, Issue{Page: relPath, Kind: KindBrokenLink, Detail: ref})
		}
	}

	return issues, nil
}

// extractRefs returns href/src values from a, img, link, and script elements.
func extractRefs(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v := getAttr(n, "href"); v != "" {
					refs = append(refs, v)
				}
			case "img", "script":
				if v := getAttr(n, "src"); v != "" {
					refs = append(refs, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// isInternal reports whether ref points inside the generated site.
func isInternal(ref string) bool {
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "tel:") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// targetExists resolves ref against the page location and checks the output
// tree. Directory targets count as present when they hold an index.html.
func targetExists(outputDir, pagePath, ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	target := u.Path
	if target == "" {
		return true // pure fragment or query
	}

	var resolved string
	if path.IsAbs(target) {
		resolved = filepath.Join(outputDir, filepath.FromSlash(target))
	} else {
		resolved = filepath.Join(outputDir, filepath.Dir(pagePath), filepath.FromSlash(target))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err := os.Stat(filepath.Join(resolved, "index.html"))
		return err == nil
	}
	return true
}
