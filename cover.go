package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cover detects and returns the cover image using multiple strategies, tried
// in priority order:
//  1. ePub 3 manifest item with properties="cover-image"
//  2. Metadata.CoverID (ePub 2 <meta name="cover" content="ID"/>)
//  3. <guide> reference type="cover" → parse XHTML for first <img>
//  4. Manifest item whose ID or href contains "cover" with image/* media-type
//  5. First spine item's XHTML → first <img>
//
// Returns ErrNoCover if no strategy succeeds.
func (b *Book) Cover() (CoverImage, error) {
	if item := b.coverFromManifestProperties(); item != nil {
		return b.loadCoverImage(item)
	}
	if item := b.coverFromMetaCover(); item != nil {
		return b.loadCoverImage(item)
	}
	if item := b.coverFromGuide(); item != nil {
		return b.loadCoverImage(item)
	}
	if item := b.coverFromManifestHeuristic(); item != nil {
		return b.loadCoverImage(item)
	}
	if item := b.coverFromFirstSpine(); item != nil {
		return b.loadCoverImage(item)
	}
	return CoverImage{}, ErrNoCover
}

func (b *Book) coverFromManifestProperties() *ManifestItem {
	for i := range b.Manifest {
		if b.Manifest[i].HasProperty("cover-image") {
			return &b.Manifest[i]
		}
	}
	return nil
}

func (b *Book) coverFromMetaCover() *ManifestItem {
	if b.Metadata.CoverID == "" {
		return nil
	}
	item := b.manifestByID(b.Metadata.CoverID)
	if item == nil {
		return nil
	}
	if isImageMediaType(item.MediaType) {
		return item
	}
	xhtmlPath := b.resolveOPFPath(item.Href)
	data, err := b.readFile(xhtmlPath)
	if err != nil {
		return nil
	}
	imgPath := findFirstImageInHTML(data, xhtmlPath)
	if imgPath != "" {
		return b.resolveImageManifestItem(imgPath)
	}
	return nil
}

func (b *Book) coverFromGuide() *ManifestItem {
	for _, ref := range b.Guide {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		href := hrefWithoutFragment(ref.Href)
		xhtmlPath := b.resolveOPFPath(href)

		data, err := b.readFile(xhtmlPath)
		if err != nil {
			continue
		}
		imgPath := findFirstImageInHTML(data, xhtmlPath)
		if imgPath == "" {
			continue
		}
		if item := b.resolveImageManifestItem(imgPath); item != nil {
			return item
		}
	}
	return nil
}

func (b *Book) coverFromManifestHeuristic() *ManifestItem {
	for i := range b.Manifest {
		item := &b.Manifest[i]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		if containsFold(item.ID, "cover") || containsFold(item.Href, "cover") {
			return item
		}
	}
	return nil
}

func (b *Book) coverFromFirstSpine() *ManifestItem {
	if len(b.Spine) == 0 {
		return nil
	}
	mi := b.manifestByID(b.Spine[0].IDRef)
	if mi == nil {
		return nil
	}
	xhtmlPath := b.resolveOPFPath(mi.Href)
	data, err := b.readFile(xhtmlPath)
	if err != nil {
		return nil
	}
	imgPath := findFirstImageInHTML(data, xhtmlPath)
	if imgPath == "" {
		return nil
	}
	return b.resolveImageManifestItem(imgPath)
}

func (b *Book) loadCoverImage(item *ManifestItem) (CoverImage, error) {
	imgPath := b.resolveOPFPath(item.Href)
	data, err := b.readFile(imgPath)
	if err != nil {
		return CoverImage{}, err
	}
	return CoverImage{Path: imgPath, MediaType: item.MediaType, Data: data}, nil
}

// resolveImageManifestItem resolves a container-relative image path to a
// ManifestItem, trying an OPF-dir-relative match first, then a
// case-insensitive scan.
func (b *Book) resolveImageManifestItem(absPath string) *ManifestItem {
	rel := absPath
	if b.OPFDir != "" {
		prefix := b.OPFDir + "/"
		if strings.HasPrefix(absPath, prefix) {
			rel = absPath[len(prefix):]
		}
	}

	if item := b.manifestItemByHref(rel); item != nil && isImageMediaType(item.MediaType) {
		return item
	}
	if item := b.manifestItemByHref(absPath); item != nil && isImageMediaType(item.MediaType) {
		return item
	}

	lowerAbs := strings.ToLower(absPath)
	lowerRel := strings.ToLower(rel)
	for i := range b.Manifest {
		item := &b.Manifest[i]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		itemHrefLower := strings.ToLower(item.Href)
		if itemHrefLower == lowerRel || itemHrefLower == lowerAbs {
			return item
		}
		if strings.EqualFold(b.resolveOPFPath(item.Href), absPath) {
			return item
		}
	}
	return nil
}

// findFirstImageInHTML parses HTML data and returns the resolved
// container-relative path of the first <img> or SVG <image> element.
func findFirstImageInHTML(htmlData []byte, basePath string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			a := atom.Lookup(tn)
			if a == atom.Img && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					if string(key) == "src" && string(val) != "" {
						return resolveRelativePath(basePath, string(val))
					}
					if !more {
						break
					}
				}
			}
			if a == atom.Image && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					k := string(key)
					if (k == "href" || k == "xlink:href") && string(val) != "" {
						return resolveRelativePath(basePath, string(val))
					}
					if !more {
						break
					}
				}
			}
		}
	}
}

func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
