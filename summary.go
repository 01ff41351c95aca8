package epub

import (
	"fmt"
	"regexp"
	"strings"
)

// generateSummary renders SUMMARY.md for toc, linking each entry to its
// extracted chapter file through the parallel chapterHrefs (manifest href)
// and chapterFiles (Markdown filename) slices.
// Chapters present in the spine but absent from toc are appended at the
// root level, after the tree, in spine order (§4.4).
func generateSummary(toc []NavPoint, chapterFiles []string, chapterHrefs []string) string {
	var sb strings.Builder
	sb.WriteString("# Summary\n\n")

	linked := make(map[string]bool, len(chapterFiles))
	writeNavEntries(&sb, toc, chapterHrefs, chapterFiles, 0, linked)

	for i, href := range chapterHrefs {
		if linked[href] {
			continue
		}
		sb.WriteString(fmt.Sprintf("- [%s](chapters/%s)\n", stemOf(href), chapterFiles[i]))
	}

	return sb.String()
}

func writeNavEntries(sb *strings.Builder, points []NavPoint, chapterHrefs, chapterFiles []string, indent int, linked map[string]bool) {
	prefix := strings.Repeat("  ", indent)
	for _, point := range points {
		href := hrefWithoutFragment(point.Target)
		mdFile := ""
		for i, ch := range chapterHrefs {
			if href == ch || strings.HasSuffix(ch, href) || strings.HasSuffix(href, "/"+ch) {
				mdFile = chapterFiles[i]
				linked[ch] = true
				break
			}
		}
		if mdFile != "" {
			sb.WriteString(fmt.Sprintf("%s- [%s](chapters/%s)\n", prefix, point.Label, mdFile))
		} else {
			sb.WriteString(fmt.Sprintf("%s- %s\n", prefix, point.Label))
		}
		writeNavEntries(sb, point.Children, chapterHrefs, chapterFiles, indent+1, linked)
	}
}

var summaryLinkRe = regexp.MustCompile(`^(\s*)-\s+\[([^\]]*)\]\(([^)]+)\)\s*$`)
var summaryPlainRe = regexp.MustCompile(`^(\s*)-\s+(.+?)\s*$`)

// parseSummary parses a SUMMARY.md document (the grammar of §6: nested
// Markdown list of [label](chapters/file.md[#fragment]) links, indentation
// defines nesting, a leading "# Summary" header is ignored) into the chapter
// file order and a TOC tree with Target set to the chapter-relative href.
func parseSummary(content string) (chapterOrder []string, toc []NavPoint) {
	type stackEntry struct {
		indent int
		point  *NavPoint
	}

	var roots []NavPoint
	var stack []stackEntry

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		var label, target string
		var indent int
		if m := summaryLinkRe.FindStringSubmatch(line); m != nil {
			indent = len(m[1])
			label = strings.TrimSpace(m[2])
			target = strings.TrimSpace(m[3])
			chapterOrder = append(chapterOrder, strings.TrimPrefix(target, "chapters/"))
		} else if m := summaryPlainRe.FindStringSubmatch(line); m != nil {
			indent = len(m[1])
			label = strings.TrimSpace(m[2])
		} else {
			continue
		}

		depth := indent / 2
		point := NavPoint{Label: label, Target: target, SpineIndex: -1, SpineEndIndex: -1}

		for len(stack) > 0 && stack[len(stack)-1].indent >= depth {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, point)
			stack = append(stack, stackEntry{indent: depth, point: &roots[len(roots)-1]})
		} else {
			parent := stack[len(stack)-1].point
			parent.Children = append(parent.Children, point)
			stack = append(stack, stackEntry{indent: depth, point: &parent.Children[len(parent.Children)-1]})
		}
	}

	return chapterOrder, roots
}
