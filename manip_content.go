package epub

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SearchMatch is one line of chapter text matching a search pattern.
type SearchMatch struct {
	ChapterID   string
	ChapterHref string
	LineNumber  int
	Context     string
}

// Search scans every spine document's plain text for pattern, optionally
// restricted to a single chapter (by manifest id or spine index) and
// either as a literal substring or, if useRegex, a regular expression.
func Search(book *Book, pattern string, chapterFilter string, useRegex bool) ([]SearchMatch, error) {
	re, err := compileSearchPattern(pattern, useRegex)
	if err != nil {
		return nil, err
	}

	var matches []SearchMatch
	for i, si := range book.Spine {
		if !chapterMatchesFilter(book, i, si.IDRef, chapterFilter) {
			continue
		}

		mi := book.manifestByID(si.IDRef)
		if mi == nil || !containsFold(mi.MediaType, "html") {
			continue
		}
		key := findResourceKey(book.Resources, mi.Href)
		if key == "" {
			continue
		}

		text, err := extractText(book.Resources[key])
		if err != nil {
			continue
		}

		for lineNo, line := range strings.Split(text, "\n") {
			if re.MatchString(line) {
				matches = append(matches, SearchMatch{
					ChapterID:   si.IDRef,
					ChapterHref: mi.Href,
					LineNumber:  lineNo + 1,
					Context:     strings.TrimSpace(line),
				})
			}
		}
	}

	return matches, nil
}

// Replace substitutes pattern with replacement in every spine document's
// text nodes (never inside tags or attributes), optionally restricted to a
// single chapter. Returns the total number of matches replaced.
func Replace(book *Book, pattern, replacement string, chapterFilter string, useRegex bool) (int, error) {
	re, err := compileSearchPattern(pattern, useRegex)
	if err != nil {
		return 0, err
	}

	total := 0
	for i, si := range book.Spine {
		if !chapterMatchesFilter(book, i, si.IDRef, chapterFilter) {
			continue
		}

		mi := book.manifestByID(si.IDRef)
		if mi == nil || !containsFold(mi.MediaType, "html") {
			continue
		}
		key := findResourceKey(book.Resources, mi.Href)
		if key == "" {
			continue
		}

		xhtml := string(book.Resources[key])
		total += countTextMatches(xhtml, re)
		book.Resources[key] = []byte(replaceInTextNodes(xhtml, re, replacement))
	}

	return total, nil
}

// Heading is one heading found by ListHeadings.
type Heading struct {
	ChapterHref string
	Level       int
	Text        string
}

var plainHeadingRe = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)

// ListHeadings returns every <h1>-<h6> heading across the spine, in spine
// order, with its nesting level and plain text.
func ListHeadings(book *Book) []Heading {
	var out []Heading
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

		for _, m := range plainHeadingRe.FindAllStringSubmatch(xhtml, -1) {
			level, _ := strconv.Atoi(m[1])
			text, _ := extractText([]byte(m[2]))
			out = append(out, Heading{ChapterHref: mi.Href, Level: level, Text: text})
		}
	}
	return out
}

var headingLevelMapPairRe = regexp.MustCompile(`^h([1-6])$`)

// RestructureHeadings renames heading tags across every resource according
// to mapping, a comma-separated list of "hN->hM" pairs (e.g.
// "h2->h1,h3->h2"). Returns the total number of headings rewritten.
func RestructureHeadings(book *Book, mapping string) (int, error) {
	levelMap := make(map[int]int)
	for _, pair := range strings.Split(mapping, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "->", 2)
		if len(parts) != 2 {
			return 0, errors.Wrapf(ErrInvalidArgument, "invalid mapping format: %s", pair)
		}
		from, err := parseHeadingLevel(parts[0])
		if err != nil {
			return 0, err
		}
		to, err := parseHeadingLevel(parts[1])
		if err != nil {
			return 0, err
		}
		levelMap[from] = to
	}

	total := 0
	tagRe := regexp.MustCompile(`(?i)<(/?)h([1-6])([^>]*)>`)
	for key, data := range book.Resources {
		xhtml := string(data)
		modified := tagRe.ReplaceAllStringFunc(xhtml, func(m string) string {
			g := tagRe.FindStringSubmatch(m)
			from, _ := strconv.Atoi(g[2])
			to, ok := levelMap[from]
			if !ok {
				return m
			}
			if g[1] == "" {
				total++
			}
			return "<" + g[1] + "h" + strconv.Itoa(to) + g[3] + ">"
		})

		if modified != xhtml {
			book.Resources[key] = []byte(modified)
		}
	}

	return total, nil
}

func parseHeadingLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	m := headingLevelMapPairRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Wrapf(ErrInvalidArgument, "heading levels must be 1-6: %q", s)
	}
	return strconv.Atoi(m[1])
}

func chapterMatchesFilter(book *Book, index int, idref, filter string) bool {
	if filter == "" {
		return true
	}
	if filter == idref {
		return true
	}
	if n, err := strconv.Atoi(filter); err == nil {
		return n == index
	}
	return false
}

func compileSearchPattern(pattern string, useRegex bool) (*regexp.Regexp, error) {
	if !useRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid pattern: %v", err)
	}
	return re, nil
}

func countTextMatches(xhtml string, re *regexp.Regexp) int {
	text, err := extractText([]byte(xhtml))
	if err != nil {
		return 0
	}
	return len(re.FindAllString(text, -1))
}

// replaceInTextNodes applies re to xhtml's text content only, leaving tag
// names and attribute values untouched (content-edit invariant: a
// replacement must never corrupt markup).
func replaceInTextNodes(xhtml string, re *regexp.Regexp, replacement string) string {
	var result strings.Builder
	var textBuf strings.Builder
	inTag := false

	flush := func() {
		if textBuf.Len() > 0 {
			result.WriteString(re.ReplaceAllString(textBuf.String(), replacement))
			textBuf.Reset()
		}
	}

	for _, ch := range xhtml {
		switch {
		case ch == '<':
			flush()
			inTag = true
			result.WriteRune(ch)
		case ch == '>':
			inTag = false
			result.WriteRune(ch)
		case inTag:
			result.WriteRune(ch)
		default:
			textBuf.WriteRune(ch)
		}
	}
	flush()

	return result.String()
}
