package epub

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// xhtmlToMarkdown converts one EPUB XHTML chapter document to Markdown
// (§4.4). pathMap rewrites asset and inter-chapter hrefs found in the
// source to their extracted-tree-relative equivalents; referencedIDs names
// every fragment id anywhere in the book that is the target of some
// href="...#id" — elements carrying one of these ids are preserved as
// anchor placeholders so existing fragment links keep resolving after
// conversion, and are otherwise dropped.
func xhtmlToMarkdown(xhtml string, pathMap map[string]string, referencedIDs map[string]bool) string {
	preprocessed := preprocessXHTML(xhtml, pathMap)
	doc, err := html.Parse(strings.NewReader(preprocessed))
	if err != nil {
		return "\n"
	}

	body := findElement(doc, atom.Body)
	var sb strings.Builder
	if body != nil {
		renderChildrenMarkdown(&sb, body, referencedIDs, mdListState{})
	}

	return postprocessMarkdown(sb.String())
}

var (
	footnoteDefRe = regexp.MustCompile(`(?is)<aside[^>]*data-epub-type="footnote"[^>]*id="([^"]*)"[^>]*>(.*?)</aside>`)
	footnoteRefRe = regexp.MustCompile(`(?is)<a[^>]*data-epub-type="noteref"[^>]*href="#([^"]*)"[^>]*>[^<]*</a>`)
)

// preprocessXHTML strips the XML prolog, normalizes epub: attribute
// prefixes (encoding/xml and x/net/html both choke on unbound "epub:"
// namespaces), rewrites asset/chapter references through pathMap, and turns
// epub:type footnote markup into Markdown footnote syntax.
func preprocessXHTML(xhtml string, pathMap map[string]string) string {
	out := xhtml

	if strings.HasPrefix(out, "<?xml") {
		if end := strings.Index(out, "?>"); end >= 0 {
			out = out[end+2:]
		}
	}
	if idx := strings.Index(strings.ToUpper(out), "<!DOCTYPE"); idx >= 0 {
		if end := strings.Index(out[idx:], ">"); end >= 0 {
			out = out[:idx] + out[idx+end+1:]
		}
	}

	out = strings.ReplaceAll(out, "epub:", "data-epub-")

	for oldPath, newPath := range pathMap {
		out = strings.ReplaceAll(out, oldPath, newPath)
	}

	out = footnoteDefRe.ReplaceAllStringFunc(out, func(m string) string {
		g := footnoteDefRe.FindStringSubmatch(m)
		text, _ := extractText([]byte(g[2]))
		return fmt.Sprintf("[^%s]: %s", g[1], text)
	})
	out = footnoteRefRe.ReplaceAllStringFunc(out, func(m string) string {
		g := footnoteRefRe.FindStringSubmatch(m)
		return fmt.Sprintf("[^%s]", g[1])
	})

	return out
}

type mdListState struct {
	ordered bool
	index   int
	depth   int
}

// renderChildrenMarkdown walks n's children, emitting Markdown for each.
func renderChildrenMarkdown(sb *strings.Builder, n *html.Node, referencedIDs map[string]bool, list mdListState) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNodeMarkdown(sb, c, referencedIDs, list)
	}
}

func renderNodeMarkdown(sb *strings.Builder, n *html.Node, referencedIDs map[string]bool, list mdListState) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if id := attrVal(n, "id"); id != "" && referencedIDs[id] {
		fmt.Fprintf(sb, `<a id="%s"></a>`, id)
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom - atom.H1 + 1)
		sb.WriteString("\n\n")
		sb.WriteString(strings.Repeat("#", level))
		sb.WriteByte(' ')
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("\n\n")

	case atom.P, atom.Div:
		sb.WriteString("\n\n")
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("\n\n")

	case atom.Br:
		sb.WriteString("  \n")

	case atom.Hr:
		sb.WriteString("\n\n---\n\n")

	case atom.Strong, atom.B:
		sb.WriteString("**")
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("**")

	case atom.Em, atom.I:
		sb.WriteString("_")
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("_")

	case atom.Code:
		sb.WriteString("`")
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("`")

	case atom.Pre:
		sb.WriteString("\n\n```\n")
		var inner strings.Builder
		extractRawText(&inner, n)
		sb.WriteString(inner.String())
		sb.WriteString("\n```\n\n")

	case atom.Blockquote:
		sb.WriteString("\n\n")
		var inner strings.Builder
		renderChildrenMarkdown(&inner, n, referencedIDs, list)
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteString("\n")

	case atom.A:
		href := attrVal(n, "href")
		var inner strings.Builder
		renderChildrenMarkdown(&inner, n, referencedIDs, list)
		text := inner.String()
		if href == "" {
			sb.WriteString(text)
		} else {
			fmt.Fprintf(sb, "[%s](%s)", text, href)
		}

	case atom.Img:
		src := attrVal(n, "src")
		alt := attrVal(n, "alt")
		fmt.Fprintf(sb, "![%s](%s)", alt, src)

	case atom.Image:
		src := attrVal(n, "href")
		if src == "" {
			src = attrValNS(n, "xlink", "href")
		}
		fmt.Fprintf(sb, "![](%s)", src)

	case atom.Ul:
		sb.WriteString("\n\n")
		renderChildrenMarkdown(sb, n, referencedIDs, mdListState{ordered: false, depth: list.depth + 1})
		sb.WriteString("\n")

	case atom.Ol:
		sb.WriteString("\n\n")
		renderChildrenMarkdown(sb, n, referencedIDs, mdListState{ordered: true, index: 1, depth: list.depth + 1})
		sb.WriteString("\n")

	case atom.Li:
		indent := strings.Repeat("  ", list.depth-1)
		if list.ordered {
			fmt.Fprintf(sb, "%s%d. ", indent, list.index)
		} else {
			sb.WriteString(indent + "- ")
		}
		renderChildrenMarkdown(sb, n, referencedIDs, list)
		sb.WriteString("\n")

	case atom.Table:
		renderTableMarkdown(sb, n, referencedIDs)

	case atom.Script, atom.Style:
		return

	default:
		renderChildrenMarkdown(sb, n, referencedIDs, list)
	}
}

func renderTableMarkdown(sb *strings.Builder, table *html.Node, referencedIDs map[string]bool) {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					var cell strings.Builder
					renderChildrenMarkdown(&cell, c, referencedIDs, mdListState{})
					row = append(row, strings.TrimSpace(collapseWhitespace(cell.String())))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	if len(rows) == 0 {
		return
	}

	sb.WriteString("\n\n")
	for i, row := range rows {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	sb.WriteString("\n")
}

func extractRawText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractRawText(sb, c)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val
		}
	}
	return ""
}

func attrValNS(n *html.Node, ns, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == ns && a.Key == key {
			return a.Val
		}
		if a.Key == ns+":"+key {
			return a.Val
		}
	}
	return ""
}

var blankLineRunRe = regexp.MustCompile(`\n{3,}`)

// postprocessMarkdown collapses any run of two or more empty lines to a
// single empty line, trims trailing whitespace from every line, and ensures
// the result ends in a single newline.
func postprocessMarkdown(md string) string {
	result := blankLineRunRe.ReplaceAllString(md, "\n\n")

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	result = strings.Join(lines, "\n")

	result = strings.TrimSpace(result)
	if result == "" {
		return "\n"
	}
	return result + "\n"
}

// collectReferencedIDs scans every spine document in book for
// href="...#fragment" references and returns the set of referenced
// fragment ids, so xhtmlToMarkdown knows which id attributes to preserve.
func collectReferencedIDs(book *Book) map[string]bool {
	ids := make(map[string]bool)
	hrefFragRe := regexp.MustCompile(`href="[^"]*#([^"]+)"`)

	for _, si := range book.Spine {
		mi := book.manifestByID(si.IDRef)
		if mi == nil {
			continue
		}
		data, ok := book.Resources[book.resolveOPFPath(mi.Href)]
		if !ok {
			continue
		}
		for _, m := range hrefFragRe.FindAllSubmatch(data, -1) {
			ids[string(m[1])] = true
		}
	}
	return ids
}

// LinkValidationReport lists Markdown links produced by extraction whose
// target file could not be found in the extracted tree.
type LinkValidationReport struct {
	BrokenLinks []string
}

var mdLinkRe = regexp.MustCompile(`\]\(([^)]+)\)`)

// validateExtractionLinks scans the generated Markdown in chapterContents
// and reports each distinct link target (ignoring any #fragment) for which
// exists returns false; URLs and same-file "#..." links are skipped, and
// outputDir is not consulted. It is advisory: broken links are reported,
// never treated as a fatal error.
func validateExtractionLinks(outputDir string, chapterContents map[string]string, exists func(relPath string) bool) LinkValidationReport {
	var report LinkValidationReport
	seen := make(map[string]bool)

	for _, content := range chapterContents {
		for _, m := range mdLinkRe.FindAllStringSubmatch(content, -1) {
			target := m[1]
			if strings.Contains(target, "://") || strings.HasPrefix(target, "#") {
				continue
			}
			clean := target
			if i := strings.Index(clean, "#"); i >= 0 {
				clean = clean[:i]
			}
			clean = strings.TrimPrefix(clean, "./")
			if clean == "" || seen[clean] {
				continue
			}
			seen[clean] = true
			if !exists(clean) {
				report.BrokenLinks = append(report.BrokenLinks, target)
			}
		}
	}
	return report
}
