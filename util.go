package epub

import (
	"path"
	"strings"
	"time"
)

// hasToken reports whether the whitespace-separated token list s contains tok.
func hasToken(s, tok string) bool {
	for _, f := range strings.Fields(s) {
		if f == tok {
			return true
		}
	}
	return false
}

// joinOPFPath joins an OPF directory and an OPF-relative href into a
// container-relative path, per §4.1.
func joinOPFPath(opfDir, href string) string {
	if href == "" {
		return ""
	}
	if opfDir == "" || opfDir == "." {
		return href
	}
	return path.Join(opfDir, href)
}

// findResourceKey locates the container-relative resource key for href,
// shared by C5 and C7 per spec.md §9's call for a single shared lookup
// (grounded in original_source's util::find_resource_key). It tries, in
// order: "{href}" as given, "{href}" under each common ePub content-directory
// prefix (OEBPS/, OPS/, EPUB/, content/), and then any key ending in
// "/{href}". It takes no OPF directory, so an OPF-relative href in another
// directory resolves only through that last suffix match.
func findResourceKey(resources map[string][]byte, href string) string {
	if href == "" {
		return ""
	}
	if _, ok := resources[href]; ok {
		return href
	}
	for _, prefix := range []string{"OEBPS/", "OPS/", "EPUB/", "content/"} {
		candidate := prefix + href
		if _, ok := resources[candidate]; ok {
			return candidate
		}
	}
	// Suffix match: a resource key that ends with the requested href.
	for k := range resources {
		if strings.HasSuffix(k, "/"+href) || k == href {
			return k
		}
	}
	return ""
}

// hrefWithoutFragment strips a trailing "#fragment" from href.
func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

// buildNavTree builds a hierarchical NavPoint tree from a flat list of
// (label, target, depth) entries. Nothing in the package calls it: SUMMARY.md
// parsing and the "toc set" import both go through parseSummary. Grounded in
// original_source's util::build_nav_tree: items are grouped by a
// depth-tracking stack; a return to a shallower depth pops and merges
// accumulated children into their parent.
func buildNavTree(entries []navEntry) []NavPoint {
	type frame struct {
		depth    int
		children []NavPoint
	}
	var root []NavPoint
	var stack []frame

	flush := func() {
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				if n := len(parent.children); n > 0 {
					parent.children[n-1].Children = top.children
				}
			} else {
				root = append(root, top.children...)
			}
		}
	}

	for _, e := range entries {
		point := NavPoint{Label: e.label, Target: e.target, SpineIndex: -1, SpineEndIndex: -1}

		for len(stack) > 0 && stack[len(stack)-1].depth >= e.depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				if n := len(parent.children); n > 0 {
					parent.children[n-1].Children = top.children
				}
			} else {
				root = append(root, top.children...)
			}
		}

		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.children = append(top.children, point)
		} else {
			stack = append(stack, frame{depth: e.depth, children: []NavPoint{point}})
		}
	}

	flush()
	return root
}

// navEntry is the flat input to buildNavTree.
type navEntry struct {
	label  string
	target string
	depth  int
}

// formatISO8601 returns the current UTC time formatted as
// "YYYY-MM-DDThh:mm:ssZ" (§4.2's dcterms:modified format).
func formatISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// formatISO8601Date returns the current UTC date as "YYYY-MM-DD" (used in
// the epx.extracted_date provenance field, §6).
func formatISO8601Date() string {
	return time.Now().UTC().Format("2006-01-02")
}

// flattenNavPoints collects pointers to every node in the tree (including
// nested children) into flat, depth-first.
func flattenNavPoints(flat *[]*NavPoint, items []NavPoint) {
	for i := range items {
		*flat = append(*flat, &items[i])
		if len(items[i].Children) > 0 {
			flattenNavPoints(flat, items[i].Children)
		}
	}
}
