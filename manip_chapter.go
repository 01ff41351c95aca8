package epub

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

// AddChapter reads a Markdown file, converts it to XHTML, and inserts it
// into book as a new spine item and manifest entry. If after is non-empty,
// the chapter is placed immediately after the spine item it identifies (id
// or index); otherwise it is appended at the end. title overrides the
// chapter's first Markdown heading (or its file stem, if neither is
// available). Returns the new manifest id.
func AddChapter(book *Book, mdPath string, after, title string) (string, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", mdPath)
	}

	chapterTitle := title
	if chapterTitle == "" {
		chapterTitle = extractMarkdownTitle(string(data), filepath.Base(mdPath))
	}

	xhtml := markdownToXHTML(string(data), chapterTitle, "")

	id := "chapter-added-" + slug.Make(chapterTitle)
	href := slug.Make(chapterTitle) + ".xhtml"

	insertPos := -1
	if after != "" {
		if pos, ok := findSpinePosition(book, after); ok {
			insertPos = pos + 1
		}
	}

	book.Resources[book.resolveOPFPath(href)] = []byte(xhtml)
	book.Manifest = append(book.Manifest, ManifestItem{ID: id, Href: href, MediaType: "application/xhtml+xml"})

	item := SpineItem{IDRef: id, Linear: true}
	if insertPos >= 0 && insertPos <= len(book.Spine) {
		book.Spine = append(book.Spine, SpineItem{})
		copy(book.Spine[insertPos+1:], book.Spine[insertPos:])
		book.Spine[insertPos] = item
	} else {
		book.Spine = append(book.Spine, item)
	}

	navPoint := NavPoint{Label: chapterTitle, Target: href, SpineIndex: -1, SpineEndIndex: -1}
	navPos := -1
	if insertPos > 0 {
		if prev := book.manifestByID(book.Spine[insertPos-1].IDRef); prev != nil {
			for i, point := range book.Navigation.TOC {
				target := hrefWithoutFragment(point.Target)
				if target == prev.Href || target == book.resolveOPFPath(prev.Href) {
					navPos = i + 1
					break
				}
			}
		}
	}
	if navPos >= 0 {
		book.Navigation.TOC = append(book.Navigation.TOC, NavPoint{})
		copy(book.Navigation.TOC[navPos+1:], book.Navigation.TOC[navPos:])
		book.Navigation.TOC[navPos] = navPoint
	} else {
		book.Navigation.TOC = append(book.Navigation.TOC, navPoint)
	}

	return id, nil
}

// RemoveChapter removes the spine item identified by idOrIndex, its
// manifest entry, its resource bytes, and any navigation entries pointing
// at it. Returns the removed manifest id.
func RemoveChapter(book *Book, idOrIndex string) (string, error) {
	spineIdx, idref, ok := resolveChapter(book, idOrIndex)
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "chapter not found: %s", idOrIndex)
	}

	item := book.manifestByID(idref)

	book.Spine = append(book.Spine[:spineIdx], book.Spine[spineIdx+1:]...)

	filtered := book.Manifest[:0]
	for _, mi := range book.Manifest {
		if mi.ID != idref {
			filtered = append(filtered, mi)
		}
	}
	book.Manifest = filtered

	if item != nil {
		delete(book.Resources, book.resolveOPFPath(item.Href))
		delete(book.Resources, item.Href)
		book.Navigation.TOC = removeFromNav(book.Navigation.TOC, item.Href)
	}

	return idref, nil
}

// ReorderChapter moves the spine item at index from to index to.
func ReorderChapter(book *Book, from, to int) error {
	if from < 0 || from >= len(book.Spine) {
		return errors.Wrapf(ErrInvalidArgument, "source index %d out of range (0..%d)", from, len(book.Spine))
	}
	if to < 0 || to >= len(book.Spine) {
		return errors.Wrapf(ErrInvalidArgument, "target index %d out of range (0..%d)", to, len(book.Spine))
	}
	item := book.Spine[from]
	book.Spine = append(book.Spine[:from], book.Spine[from+1:]...)
	book.Spine = append(book.Spine[:to], append([]SpineItem{item}, book.Spine[to:]...)...)
	return nil
}

func findSpinePosition(book *Book, idOrIndex string) (int, bool) {
	if n, err := strconv.Atoi(idOrIndex); err == nil && n >= 0 && n < len(book.Spine) {
		return n, true
	}
	for i, si := range book.Spine {
		if si.IDRef == idOrIndex {
			return i, true
		}
	}
	return 0, false
}

func resolveChapter(book *Book, idOrIndex string) (int, string, bool) {
	if n, err := strconv.Atoi(idOrIndex); err == nil && n >= 0 && n < len(book.Spine) {
		return n, book.Spine[n].IDRef, true
	}
	for i, si := range book.Spine {
		if si.IDRef == idOrIndex {
			return i, si.IDRef, true
		}
	}
	return 0, "", false
}

func removeFromNav(toc []NavPoint, href string) []NavPoint {
	filtered := toc[:0]
	for _, point := range toc {
		if hrefWithoutFragment(point.Target) == href {
			continue
		}
		point.Children = removeFromNav(point.Children, href)
		filtered = append(filtered, point)
	}
	return filtered
}
