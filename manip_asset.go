package epub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

// ListAssets enumerates book's manifest items, optionally restricted to a
// broad type: "image", "css", "font", or "audio".
func ListAssets(book *Book, filter string) []ManifestItem {
	if filter == "" {
		out := make([]ManifestItem, len(book.Manifest))
		copy(out, book.Manifest)
		return out
	}

	var want assetKind
	switch filter {
	case "image":
		want = assetImage
	case "css":
		want = assetCSS
	case "font":
		want = assetFont
	case "audio":
		want = assetAudio
	default:
		return nil
	}

	var out []ManifestItem
	for _, mi := range book.Manifest {
		if classifyAsset(mi.MediaType) == want {
			out = append(out, mi)
		}
	}
	return out
}

// ExtractAsset writes the bytes of the manifest item identified by href (or
// manifest id) to outPath. If outPath is empty, the bytes are returned
// instead of written.
func ExtractAsset(book *Book, href, outPath string) ([]byte, error) {
	mi := findAssetItem(book, href)
	if mi == nil {
		return nil, errors.Wrapf(ErrNotFound, "asset not found: %s", href)
	}

	key := findResourceKey(book.Resources, mi.Href)
	if key == "" {
		return nil, errors.Wrapf(ErrNotFound, "asset resource missing: %s", mi.Href)
	}
	data := book.Resources[key]

	if outPath == "" {
		return data, nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", outPath)
	}
	return data, nil
}

// ExtractAllAssets categorizes every image, font, and stylesheet manifest
// item and writes it under dir, following the extracted-tree layout
// (assets/images, assets/fonts, styles).
func ExtractAllAssets(book *Book, dir string) error {
	return extractAssets(book, dir)
}

// AddAsset reads file, infers a media type (override permitted), assigns a
// unique manifest id, and adds it to book under the OPF dir. Returns the new
// manifest id.
func AddAsset(book *Book, filePath, mediaTypeOverride string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", filePath)
	}

	filename := filepath.Base(filePath)

	mediaType := mediaTypeOverride
	if mediaType == "" {
		mediaType = inferMediaType(filename, data)
	}

	id := "asset-" + slug.Make(filename)
	for n := 2; book.manifestByID(id) != nil; n++ {
		id = fmt.Sprintf("asset-%s-%d", slug.Make(filename), n)
	}
	href := filename

	book.Resources[book.resolveOPFPath(href)] = data
	book.Manifest = append(book.Manifest, ManifestItem{ID: id, Href: href, MediaType: mediaType})

	return id, nil
}

// RemoveAsset removes the manifest item and resource bytes identified by
// href (or manifest id). If the href is still referenced in any XHTML
// resource, the removal proceeds but the returned bool is true so callers
// can surface a non-fatal warning.
func RemoveAsset(book *Book, href string) (stillReferenced bool, err error) {
	mi := findAssetItem(book, href)
	if mi == nil {
		return false, errors.Wrapf(ErrNotFound, "asset not found: %s", href)
	}

	for key, data := range book.Resources {
		if !isHTMLLike(mediaTypeForResourceKey(key)) {
			continue
		}
		if strings.Contains(string(data), mi.Href) {
			stillReferenced = true
			break
		}
	}

	filtered := book.Manifest[:0]
	for _, item := range book.Manifest {
		if item.ID != mi.ID {
			filtered = append(filtered, item)
		}
	}
	book.Manifest = filtered

	delete(book.Resources, book.resolveOPFPath(mi.Href))
	delete(book.Resources, mi.Href)

	return stillReferenced, nil
}

func findAssetItem(book *Book, hrefOrID string) *ManifestItem {
	for i, mi := range book.Manifest {
		if mi.Href == hrefOrID || mi.ID == hrefOrID {
			return &book.Manifest[i]
		}
	}
	return nil
}

func mediaTypeForResourceKey(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	switch ext {
	case ".xhtml", ".html", ".htm":
		return "application/xhtml+xml"
	default:
		return ""
	}
}
