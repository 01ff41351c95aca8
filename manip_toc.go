package epub

import (
	"fmt"
	"regexp"
	"strconv"
)

// SetTOCFromMarkdown replaces book's table of contents with the tree parsed
// from tocContent, a Markdown nested-link list in the same grammar as
// SUMMARY.md.
func SetTOCFromMarkdown(book *Book, tocContent string) error {
	_, toc := parseSummary(tocContent)
	book.Navigation.TOC = toc
	return nil
}

var (
	headingTagRe  = regexp.MustCompile(`(?is)<(h[1-6])([^>]*?)(\sid="[^"]*")?([^>]*)>(.*?)</h[1-6]>`)
	headingIDAttr = regexp.MustCompile(`(?:^|\s)id="([^"]*)"`)
)

// GenerateTOC rebuilds book's table of contents from the <h1>-<h6> headings
// found in each spine document, in spine order, keeping only headings at or
// above maxDepth (e.g. maxDepth=3 keeps h1-h3). Each entry's target is
// "<chapter-href>#<id>": headings that already carry an id keep it; a
// heading with none is assigned "heading-N" (N counting up across the whole
// book) and that id is written back into the source document so the
// fragment actually resolves.
func GenerateTOC(book *Book, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = 3
	}

	var toc []NavPoint
	headingCounter := 0

	for _, si := range book.Spine {
		mi := book.manifestByID(si.IDRef)
		if mi == nil || !containsFold(mi.MediaType, "html") {
			continue
		}

		key := findResourceKey(book.Resources, mi.Href)
		if key == "" {
			continue
		}
		xhtml := string(book.Resources[key])

		changed := false
		xhtml = headingTagRe.ReplaceAllStringFunc(xhtml, func(m string) string {
			g := headingTagRe.FindStringSubmatch(m)
			tag, preAttrs, idAttr, postAttrs, inner := g[1], g[2], g[3], g[4], g[5]

			level, _ := strconv.Atoi(tag[1:])
			text, _ := extractText([]byte(inner))

			if idAttr == "" && !headingIDAttr.MatchString(preAttrs+postAttrs) && text != "" && level <= maxDepth {
				headingCounter++
				idAttr = fmt.Sprintf(` id="heading-%d"`, headingCounter)
				changed = true
			}

			return fmt.Sprintf("<%s%s%s%s>%s</%s>", tag, preAttrs, idAttr, postAttrs, inner, tag)
		})

		if changed {
			book.Resources[key] = []byte(xhtml)
		}

		for _, m := range headingTagRe.FindAllStringSubmatch(xhtml, -1) {
			level, _ := strconv.Atoi(m[1][1:])
			if level > maxDepth {
				continue
			}
			text, _ := extractText([]byte(m[5]))
			if text == "" {
				continue
			}

			id := ""
			if idMatch := headingIDAttr.FindStringSubmatch(m[2] + m[3] + m[4]); idMatch != nil {
				id = idMatch[1]
			}
			if id == "" {
				continue
			}

			toc = append(toc, NavPoint{
				Label:         text,
				Target:        mi.Href + "#" + id,
				SpineIndex:    -1,
				SpineEndIndex: -1,
			})
		}
	}

	book.Navigation.TOC = toc
	return nil
}
