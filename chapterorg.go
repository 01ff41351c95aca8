package epub

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// chapterFilename derives the extracted Markdown filename for the spine item
// at index, preferring the chapter's TOC label (slugified) and falling back
// to the manifest href's file stem. Ties across a single extraction are
// disambiguated by the caller via disambiguateFilename.
func chapterFilename(index int, toc []NavPoint, href string) string {
	base := ""
	if label := findTOCLabel(toc, href); label != "" {
		base = slug.Make(label)
	} else {
		base = slug.Make(stemOf(href))
	}

	if base == "" {
		base = fmt.Sprintf("chapter-%d", index)
	}

	return fmt.Sprintf("%02d-%s.md", index, base)
}

func stemOf(href string) string {
	name := href
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

// findTOCLabel recursively searches toc for an entry whose target (ignoring
// fragment) matches href, returning its label.
func findTOCLabel(toc []NavPoint, href string) string {
	target := hrefWithoutFragment(href)
	for _, point := range toc {
		pointHref := hrefWithoutFragment(point.Target)
		if pointHref == target || strings.HasSuffix(target, pointHref) || strings.HasSuffix(pointHref, "/"+target) {
			return point.Label
		}
		if label := findTOCLabel(point.Children, href); label != "" {
			return label
		}
	}
	return ""
}

// disambiguateFilename appends "-2", "-3", ... to name (before the
// extension) until it is not already present in used, then records it.
func disambiguateFilename(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	ext := ""
	stem := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
		stem = name[:i]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
